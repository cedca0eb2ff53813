// internal/classifier/dates.go
package classifier

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Ordered so that classification stays deterministic when a query somehow
// names two months; the earliest calendar month wins.
var monthNames = []struct {
	name  string
	month time.Month
}{
	{"january", time.January},
	{"february", time.February},
	{"march", time.March},
	{"april", time.April},
	{"may", time.May},
	{"june", time.June},
	{"july", time.July},
	{"august", time.August},
	{"september", time.September},
	{"october", time.October},
	{"november", time.November},
	{"december", time.December},
}

var lastNDaysPattern = regexp.MustCompile(`last\s+(\d{1,3})\s+days?`)

// extractDateRange resolves relative date expressions in the query text
// against the supplied reference time. Both bounds are nil when no
// expression is recognized.
func extractDateRange(text string, now time.Time) (*time.Time, *time.Time) {
	lower := strings.ToLower(text)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch {
	case strings.Contains(lower, "today"):
		to := today.AddDate(0, 0, 1)
		return &today, &to

	case strings.Contains(lower, "yesterday"):
		from := today.AddDate(0, 0, -1)
		return &from, &today

	case strings.Contains(lower, "this week"):
		from := startOfWeek(today)
		to := from.AddDate(0, 0, 7)
		return &from, &to

	case strings.Contains(lower, "last week"):
		to := startOfWeek(today)
		from := to.AddDate(0, 0, -7)
		return &from, &to

	case strings.Contains(lower, "this month"):
		from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		to := from.AddDate(0, 1, 0)
		return &from, &to

	case strings.Contains(lower, "last month"):
		to := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		from := to.AddDate(0, -1, 0)
		return &from, &to

	case strings.Contains(lower, "this quarter"):
		from := startOfQuarter(now)
		to := from.AddDate(0, 3, 0)
		return &from, &to

	case strings.Contains(lower, "last quarter"):
		to := startOfQuarter(now)
		from := to.AddDate(0, -3, 0)
		return &from, &to

	case strings.Contains(lower, "this year"):
		from := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		to := from.AddDate(1, 0, 0)
		return &from, &to

	case strings.Contains(lower, "last year"):
		to := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		from := to.AddDate(-1, 0, 0)
		return &from, &to
	}

	if m := lastNDaysPattern.FindStringSubmatch(lower); m != nil {
		days, err := strconv.Atoi(m[1])
		if err == nil && days > 0 {
			from := today.AddDate(0, 0, -days)
			to := today.AddDate(0, 0, 1)
			return &from, &to
		}
	}

	// Bare month names resolve to that month of the current year. "may" is
	// too ambiguous as a bare word and only counts after a preposition.
	for _, entry := range monthNames {
		if entry.name == "may" && !strings.Contains(lower, "in may") && !strings.Contains(lower, "during may") {
			continue
		}
		if containsWord(lower, entry.name) {
			from := time.Date(now.Year(), entry.month, 1, 0, 0, 0, 0, now.Location())
			to := from.AddDate(0, 1, 0)
			return &from, &to
		}
	}

	return nil, nil
}

// startOfWeek treats Monday as the first day.
func startOfWeek(day time.Time) time.Time {
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return day.AddDate(0, 0, -(weekday - 1))
}

func startOfQuarter(now time.Time) time.Time {
	quarterMonth := time.Month(((int(now.Month())-1)/3)*3 + 1)
	return time.Date(now.Year(), quarterMonth, 1, 0, 0, 0, 0, now.Location())
}

func containsWord(text, word string) bool {
	idx := strings.Index(text, word)
	if idx < 0 {
		return false
	}
	before := idx == 0 || !isLetter(text[idx-1])
	afterIdx := idx + len(word)
	after := afterIdx >= len(text) || !isLetter(text[afterIdx])
	return before && after
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
