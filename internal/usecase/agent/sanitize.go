package agent

import (
	"regexp"
	"strings"

	"github.com/kailas-cloud/askdex/internal/domain"
)

var numberToken = regexp.MustCompile(`\d+(?:\.\d+)+`)

// StripDecimals truncates standalone decimal numbers in answer text to
// their integer part: "GRPS is 3159.682" becomes "GRPS is 3159".
// Multi-dot tokens such as "3.14.2" and digits glued to word characters
// are left untouched.
func StripDecimals(text string) string {
	locs := numberToken.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return text
	}

	var b strings.Builder
	last := 0
	for _, loc := range locs {
		start, end := loc[0], loc[1]
		token := text[start:end]
		if strings.Count(token, ".") != 1 || !standalone(text, start, end) {
			continue
		}
		b.WriteString(text[last:start])
		b.WriteString(token[:strings.IndexByte(token, '.')])
		last = end
	}
	if last == 0 {
		return text
	}
	b.WriteString(text[last:])
	return b.String()
}

func standalone(s string, start, end int) bool {
	if start > 0 && isWordByte(s[start-1]) {
		return false
	}
	if end < len(s) && isWordByte(s[end]) {
		return false
	}
	return true
}

func isWordByte(c byte) bool {
	return c == '_' ||
		('0' <= c && c <= '9') ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z')
}

// TablesUsed reports which in-scope tables the agent actually touched,
// by case-insensitive substring match of table names inside the issued
// tool inputs. Filenames are returned deduplicated, in invocation order.
func TablesUsed(invocations []string, tables []domain.TableInfo) []string {
	var used []string
	seen := make(map[string]bool, len(tables))
	for _, invocation := range invocations {
		lower := strings.ToLower(invocation)
		for _, table := range tables {
			if !strings.Contains(lower, strings.ToLower(table.Name)) {
				continue
			}
			if seen[table.Filename] {
				continue
			}
			seen[table.Filename] = true
			used = append(used, table.Filename)
		}
	}
	return used
}
