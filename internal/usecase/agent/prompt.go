package agent

import (
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/askdex/internal/domain"
)

// BuildSystemPrompt assembles the agent's system message: the tables in
// scope, the current-date context, and the ground rules for issuing SQL.
func BuildSystemPrompt(tables []domain.TableInfo, now time.Time) string {
	var b strings.Builder

	b.WriteString("You are a SQL expert assistant analyzing structured data.\n\n")
	b.WriteString("**Available Tables in Database:**\n")
	for _, t := range tables {
		fmt.Fprintf(&b, "\nTable: %s\nFrom file: %s\nRows: %d\nColumns: %s\n",
			t.Name, t.Filename, t.RowCount, strings.Join(t.Columns, ", "))
	}

	b.WriteString(temporalContext(tables, now))

	b.WriteString("\n**CRITICAL INSTRUCTIONS:**\n")
	fmt.Fprintf(&b, "1. You have access to %d table(s) - analyze the question to determine which to use\n", len(tables))
	b.WriteString(`2. Column names may contain spaces - use double quotes: "Column Name"
3. Table names are already lowercase - use them as-is
4. For "top N" queries: ORDER BY [metric] DESC LIMIT N
5. For "bottom N" queries: ORDER BY [metric] ASC LIMIT N
6. You can JOIN tables if the question requires data from multiple files
7. Be precise - return exact numbers, not approximations
8. Provide clear, complete answers with data
9. FORMAT NUMBERS AS WHOLE INTEGERS - do not include decimal places in your responses
   Example: Say "GRPS is 3159" NOT "GRPS is 3159.682"

**Your task:** Answer the user's question using SQL queries on the available tables.
`)
	return b.String()
}

func temporalContext(tables []domain.TableInfo, now time.Time) string {
	var b strings.Builder
	date := now.Format("2006-01-02")

	b.WriteString("\n**Temporal Context:**\n")
	fmt.Fprintf(&b, "- Current Date: %s\n", date)
	fmt.Fprintf(&b, "- Current Year: %d\n", now.Year())
	fmt.Fprintf(&b, "- When user asks for 'last N years', calculate from %d backwards\n", now.Year())
	fmt.Fprintf(&b, "- 'Recent' or 'latest' means closer to %s\n", date)
	b.WriteString("\n**PostgreSQL Date Functions:**\n")
	b.WriteString("- For 'last N years': Use \"date_column\" >= NOW() - INTERVAL 'N years'\n")
	b.WriteString("- Current timestamp: NOW() or CURRENT_DATE\n")
	b.WriteString("- Extract year: EXTRACT(YEAR FROM \"date_column\") or DATE_PART('year', \"date_column\")\n")

	if len(tables) > 0 {
		b.WriteString("\n**Dataset Statistics:**\n")
		for _, t := range tables {
			fmt.Fprintf(&b, "- %s (%s): %d rows\n", t.Name, t.Filename, t.RowCount)
		}
	}
	return b.String()
}
