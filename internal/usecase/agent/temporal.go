package agent

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	lastYearsRe  = regexp.MustCompile(`(?i)last (\d+) years?`)
	lastMonthsRe = regexp.MustCompile(`(?i)last (\d+) months?`)
	thisYearRe   = regexp.MustCompile(`(?i)\bthis year\b`)
	recentRe     = regexp.MustCompile(`(?i)\brecent(ly)?\b`)
	explicitYear = regexp.MustCompile(`(?i)\b(?:in|year) (20\d{2})\b`)
)

// EnhanceTemporal appends calculated date hints for time-based phrases,
// so the agent gets explicit ranges instead of having to derive
// "last N years" from the current date itself. Queries without temporal
// phrases pass through unchanged.
func EnhanceTemporal(query string, now time.Time) string {
	var hints []string

	if m := lastYearsRe.FindStringSubmatch(query); m != nil {
		n, _ := strconv.Atoi(m[1])
		hints = append(hints, fmt.Sprintf("last %d year(s) = %d to %d", n, now.Year()-n, now.Year()))
	}
	if m := lastMonthsRe.FindStringSubmatch(query); m != nil {
		n, _ := strconv.Atoi(m[1])
		year, month := now.Year(), int(now.Month())-n
		for month <= 0 {
			month += 12
			year--
		}
		hints = append(hints, fmt.Sprintf("last %d month(s) = %04d-%02d to %s",
			n, year, month, now.Format("2006-01")))
	}
	if thisYearRe.MatchString(query) {
		hints = append(hints, fmt.Sprintf("this year = %d", now.Year()))
	}
	if recentRe.MatchString(query) {
		hints = append(hints, fmt.Sprintf("recent = closer to %s", now.Format("2006-01-02")))
	}
	if m := explicitYear.FindStringSubmatch(query); m != nil {
		hints = append(hints, fmt.Sprintf("specific year = %s", m[1]))
	}

	if len(hints) == 0 {
		return query
	}
	return query + " [Date context: " + strings.Join(hints, "; ") + "]"
}
