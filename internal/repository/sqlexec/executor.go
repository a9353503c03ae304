// Package sqlexec runs the SQL agent's tool queries against PostgreSQL
// and renders results as text the model can read.
package sqlexec

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultMaxRows = 100

// Executor executes read-only queries over a pgx connection pool.
type Executor struct {
	pool    *pgxpool.Pool
	maxRows int
}

// New connects to PostgreSQL and returns an Executor. Sessions run with
// default_transaction_read_only so the server rejects writes that slip
// past the statement gate.
func New(ctx context.Context, dsn string) (*Executor, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	cfg.ConnConfig.RuntimeParams["default_transaction_read_only"] = "on"

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Executor{pool: pool, maxRows: defaultMaxRows}, nil
}

// WithMaxRows caps how many result rows are rendered per query.
func (e *Executor) WithMaxRows(n int) *Executor {
	if n > 0 {
		e.maxRows = n
	}
	return e
}

// Close releases the connection pool.
func (e *Executor) Close() {
	e.pool.Close()
}

// ExecuteSQL runs one SELECT statement and returns the result set as a
// tab-separated text block. Statements that could mutate data are
// rejected before reaching the database.
func (e *Executor) ExecuteSQL(ctx context.Context, query string) (string, error) {
	if err := checkReadOnly(query); err != nil {
		return "", err
	}

	rows, err := e.pool.Query(ctx, query)
	if err != nil {
		return "", fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	var b strings.Builder
	fields := rows.FieldDescriptions()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	b.WriteString(strings.Join(names, "\t"))
	b.WriteByte('\n')

	count := 0
	truncated := false
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return "", fmt.Errorf("read row: %w", err)
		}
		if count >= e.maxRows {
			truncated = true
			break
		}
		cells := make([]string, len(values))
		for i, v := range values {
			cells[i] = fmt.Sprint(v)
		}
		b.WriteString(strings.Join(cells, "\t"))
		b.WriteByte('\n')
		count++
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("read rows: %w", err)
	}

	if truncated {
		fmt.Fprintf(&b, "... (truncated at %d rows)\n", e.maxRows)
	} else {
		fmt.Fprintf(&b, "(%d rows)\n", count)
	}
	return b.String(), nil
}

var mutationKeywords = map[string]struct{}{
	"insert": {}, "update": {}, "delete": {}, "merge": {},
	"truncate": {}, "drop": {}, "alter": {}, "create": {},
	"grant": {}, "revoke": {}, "copy": {}, "call": {}, "vacuum": {},
}

// checkReadOnly rejects anything that is not a plain SELECT or WITH
// statement. WITH admits data-modifying CTEs, so every word of the
// statement is checked against the mutation keywords, not just the
// prefix.
func checkReadOnly(query string) error {
	denied := fmt.Errorf("permission denied: only SELECT statements are allowed")

	trimmed := strings.TrimSpace(strings.ToLower(query))
	if !strings.HasPrefix(trimmed, "select") && !strings.HasPrefix(trimmed, "with") {
		return denied
	}
	words := strings.FieldsFunc(trimmed, func(r rune) bool {
		return r < 'a' || r > 'z'
	})
	for _, w := range words {
		if _, bad := mutationKeywords[w]; bad {
			return denied
		}
	}
	return nil
}
