package pipeline

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Present is the normalized sentinel for an open-ended date range.
const Present = "present"

var reOpenEnd = regexp.MustCompile(`(?i)^(нині|тепер|сьогодні|дотепер|present|now)$`)

// monthNames maps Ukrainian and Russian month-name prefixes to month
// numbers. Lookup is by prefix so that both nominative and genitive forms
// resolve ("березень", "березня" -> 3).
var monthNames = map[string]int{
	"січ": 1, "янв": 1,
	"лют": 2, "фев": 2,
	"бер": 3, "мар": 3,
	"квіт": 4, "апр": 4,
	"трав": 5, "мая": 5, "май": 5,
	"черв": 6, "июн": 6,
	"лип": 7, "июл": 7,
	"серп": 8, "авг": 8,
	"вер": 9, "сен": 9,
	"жовт": 10, "окт": 10,
	"лист": 11, "ноя": 11,
	"груд": 12, "дек": 12,
}

func monthByName(word string) (int, bool) {
	w := strings.ToLower(strings.TrimSpace(word))
	for prefix, m := range monthNames {
		if strings.HasPrefix(w, prefix) {
			return m, true
		}
	}
	return 0, false
}

// dateTokenPattern pairs a token shape with its parser. The table is tried
// in order; the first matching shape wins.
type dateTokenPattern struct {
	re    *regexp.Regexp
	parse func(m []string) (year, month int, ok bool)
}

var dateTokenPatterns = []dateTokenPattern{
	// 03.2018
	{
		re: regexp.MustCompile(`^(\d{2})\.(\d{4})$`),
		parse: func(m []string) (int, int, bool) {
			return atoi(m[2]), atoi(m[1]), true
		},
	},
	// 15.03.2018, day discarded
	{
		re: regexp.MustCompile(`^(\d{2})\.(\d{2})\.(\d{4})$`),
		parse: func(m []string) (int, int, bool) {
			return atoi(m[3]), atoi(m[2]), true
		},
	},
	// 2018-03
	{
		re: regexp.MustCompile(`^(\d{4})-(\d{2})$`),
		parse: func(m []string) (int, int, bool) {
			return atoi(m[1]), atoi(m[2]), true
		},
	},
	// березня 2018, март 2018
	{
		re: regexp.MustCompile(`^(\p{L}+)\s+(\d{4})$`),
		parse: func(m []string) (int, int, bool) {
			mon, ok := monthByName(m[1])
			return atoi(m[2]), mon, ok
		},
	},
	// bare year, assume January
	{
		re: regexp.MustCompile(`^(\d{4})$`),
		parse: func(m []string) (int, int, bool) {
			return atoi(m[1]), 1, true
		},
	},
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// NormalizeDateToken canonicalizes a free-text date token to "YYYY-MM" or
// Present. Unrecognized tokens return "", false.
func NormalizeDateToken(token string) (string, bool) {
	tok := strings.TrimSpace(token)
	if tok == "" {
		return "", false
	}
	if reOpenEnd.MatchString(tok) {
		return Present, true
	}
	for _, p := range dateTokenPatterns {
		if m := p.re.FindStringSubmatch(tok); m != nil {
			year, month, ok := p.parse(m)
			if !ok || month < 1 || month > 12 || year < 1900 || year > 2100 {
				return "", false
			}
			return fmt.Sprintf("%04d-%02d", year, month), true
		}
	}
	return "", false
}

func ymValue(ym string) (int, bool) {
	if len(ym) != 7 || ym[4] != '-' {
		return 0, false
	}
	year, err := strconv.Atoi(ym[:4])
	if err != nil {
		return 0, false
	}
	month, err := strconv.Atoi(ym[5:])
	if err != nil || month < 1 || month > 12 {
		return 0, false
	}
	return year*12 + (month - 1), true
}

func nowYM(now time.Time) string {
	return fmt.Sprintf("%04d-%02d", now.Year(), int(now.Month()))
}

// MonthsBetween returns the inclusive month count of [start, end]: a range
// that starts and ends in the same month counts as 1. The Present sentinel
// in end resolves against now. Invalid or inverted ranges return 0.
func MonthsBetween(start, end string, now time.Time) int {
	if end == Present {
		end = nowYM(now)
	}
	a, ok := ymValue(start)
	if !ok {
		return 0
	}
	b, ok := ymValue(end)
	if !ok {
		return 0
	}
	if b < a {
		return 0
	}
	return b - a + 1
}

func monthsToYears(months int) float64 {
	if months <= 0 {
		return 0
	}
	return float64(int(float64(months)/12*10+0.5)) / 10
}
