package sqlexec

import (
	"strings"
	"testing"
)

func TestCheckReadOnly(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		allowed bool
	}{
		{"select", "SELECT * FROM tv_shows", true},
		{"select lowercase", "select avg(grp) from tv_shows", true},
		{"with cte", "WITH top AS (SELECT 1) SELECT * FROM top", true},
		{"leading whitespace", "  \n SELECT 1", true},
		{"keyword-like identifiers", "SELECT created_at FROM updates", true},
		{"insert", "INSERT INTO tv_shows VALUES (1)", false},
		{"update", "UPDATE tv_shows SET grp = 0", false},
		{"delete", "DELETE FROM tv_shows", false},
		{"drop", "DROP TABLE tv_shows", false},
		{"data-modifying cte", "WITH gone AS (DELETE FROM tv_shows RETURNING *) SELECT * FROM gone", false},
		{"insert from cte", "WITH src AS (SELECT 1) INSERT INTO tv_shows SELECT * FROM src", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkReadOnly(tt.query)
			if tt.allowed && err != nil {
				t.Errorf("expected %q to be allowed: %v", tt.query, err)
			}
			if !tt.allowed && err == nil {
				t.Errorf("expected %q to be rejected", tt.query)
			}
		})
	}
}

func TestCheckReadOnly_RejectionClassifiesAsDatabaseError(t *testing.T) {
	err := checkReadOnly("TRUNCATE tv_shows")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "permission denied") {
		t.Errorf("rejection should read as a permission error: %v", err)
	}
}
