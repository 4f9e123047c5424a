package scrape

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	reSpaces      = regexp.MustCompile(`[ \t]+`)
	reBulletLead  = regexp.MustCompile(`^[•\-\*\x{2022}]\s*`)
	reCSVSep      = regexp.MustCompile(`[,;•\n]+`)
	reHumanDate   = regexp.MustCompile(`(\d{1,2})\s+(\p{L}+)\s+(\d{4})`)
	reSalary      = regexp.MustCompile(`(?i)(\d[\d\s]{2,})\s*грн`)
	reSalaryTail  = regexp.MustCompile(`(?i)[\s,–—-]*\d[\d\s]{2,}\s*грн.*$`)
	reVeteranWord = regexp.MustCompile(`(?i)(^|[^\p{L}])ветеран([^\p{L}]|$)`)
)

// Genitive month names as they appear in "Резюме від 26 січня 2026" lines.
var monthNames = map[string]time.Month{
	"січня": time.January, "лютого": time.February, "березня": time.March,
	"квітня": time.April, "травня": time.May, "червня": time.June,
	"липня": time.July, "серпня": time.August, "вересня": time.September,
	"жовтня": time.October, "листопада": time.November, "грудня": time.December,

	"января": time.January, "февраля": time.February, "марта": time.March,
	"апреля": time.April, "мая": time.May, "июня": time.June,
	"июля": time.July, "августа": time.August, "сентября": time.September,
	"октября": time.October, "ноября": time.November, "декабря": time.December,
}

// Section titles that terminate free-text section extraction.
var sectionTitles = []string{
	"досвід роботи",
	"освіта",
	"додаткова освіта",
	"знання і навички",
	"знання мов",
	"рекомендації",
	"додаткова інформація",
	"контактна інформація",
	"інвалідність",
}

func normalizeWS(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func splitNonemptyLines(text string) []string {
	var out []string
	for _, ln := range strings.Split(text, "\n") {
		if n := normalizeWS(ln); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func stripBullet(line string) string {
	return strings.TrimSpace(reBulletLead.ReplaceAllString(normalizeWS(line), ""))
}

func splitCSVList(v string) []string {
	var out []string
	for _, part := range reCSVSep.Split(v, -1) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func looksLikeSectionTitle(s string) bool {
	t := strings.ToLower(normalizeWS(s))
	if t == "" {
		return false
	}
	for _, title := range sectionTitles {
		if t == title || strings.Contains(t, title) {
			return true
		}
	}
	return false
}

// labelValue finds "Label: Value" on one line or a label line followed by its
// value on the next line.
func labelValue(lines []string, labels ...string) string {
	lowered := make([]string, len(labels))
	for i, l := range labels {
		lowered[i] = strings.TrimSuffix(strings.ToLower(normalizeWS(l)), ":")
	}

	matches := func(s string) bool {
		for _, lbl := range lowered {
			if s == lbl || strings.Contains(s, lbl) {
				return true
			}
		}
		return false
	}

	for i, ln := range lines {
		s := stripBullet(ln)

		if left, right, ok := strings.Cut(s, ":"); ok {
			if matches(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(left)), ":")) {
				if v := strings.TrimSpace(right); v != "" {
					return v
				}
			}
		}

		if matches(strings.TrimSuffix(strings.ToLower(s), ":")) && i+1 < len(lines) {
			if v := stripBullet(lines[i+1]); v != "" {
				return v
			}
		}
	}
	return ""
}

// labelValueNextLine only accepts the two-line "Label" / "Value" shape.
func labelValueNextLine(lines []string, labels ...string) string {
	lowered := make([]string, len(labels))
	for i, l := range labels {
		lowered[i] = strings.TrimSuffix(strings.ToLower(normalizeWS(l)), ":")
	}

	for i := 0; i+1 < len(lines); i++ {
		a := strings.TrimSuffix(strings.ToLower(stripBullet(lines[i])), ":")
		for _, lbl := range lowered {
			if a == lbl || strings.Contains(a, lbl) {
				if v := stripBullet(lines[i+1]); v != "" {
					return v
				}
				break
			}
		}
	}
	return ""
}

// sectionByTitle returns the text of a titled section, up to the next
// known section header.
func sectionByTitle(cleaned string, titles ...string) string {
	lines := splitNonemptyLines(cleaned)
	lowered := make([]string, len(titles))
	for i, t := range titles {
		lowered[i] = strings.ToLower(normalizeWS(t))
	}

	start := -1
	for i, ln := range lines {
		lnl := strings.ToLower(stripBullet(ln))
		for _, t := range lowered {
			if strings.Contains(lnl, t) {
				start = i + 1
				break
			}
		}
		if start >= 0 {
			break
		}
	}
	if start < 0 {
		return ""
	}

	var out []string
	for j := start; j < len(lines); j++ {
		if looksLikeSectionTitle(stripBullet(lines[j])) {
			break
		}
		out = append(out, lines[j])
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func parseBullets(sectionText string) []string {
	if sectionText == "" {
		return nil
	}
	var items []string
	seen := make(map[string]struct{})
	for _, ln := range splitNonemptyLines(sectionText) {
		item := stripBullet(ln)
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		items = append(items, item)
	}
	return items
}

// parseSalary looks for "N NNN грн" near the top of the resume and applies
// loose sanity bounds.
func parseSalary(cleaned string) *int {
	lines := splitNonemptyLines(cleaned)
	if len(lines) > 40 {
		lines = lines[:40]
	}
	for _, ln := range lines {
		if looksLikeSectionTitle(ln) {
			continue
		}
		m := reSalary.FindStringSubmatch(ln)
		if m == nil {
			continue
		}
		val, err := strconv.Atoi(strings.ReplaceAll(m[1], " ", ""))
		if err != nil {
			continue
		}
		if val >= 1_000 && val <= 1_000_000 {
			return &val
		}
	}
	return nil
}

func stripSalaryTail(pos string) string {
	return strings.TrimSpace(reSalaryTail.ReplaceAllString(normalizeWS(pos), ""))
}

// parseEmploymentFlags reads "повна, неповна, віддалена" style values.
func parseEmploymentFlags(text string) (fullTime, partTime, fromHome bool) {
	t := strings.ToLower(text)
	partTime = strings.Contains(t, "неповна")
	fullTime = strings.Contains(strings.ReplaceAll(t, "неповна", ""), "повна")
	fromHome = strings.Contains(t, "віддал")
	return fullTime, partTime, fromHome
}

// parseResumeDate reads the "Резюме від 26 січня 2026" header date.
func parseResumeDate(cleaned string) *time.Time {
	lines := splitNonemptyLines(cleaned)
	if len(lines) > 20 {
		lines = lines[:20]
	}
	for _, ln := range lines {
		m := reHumanDate.FindStringSubmatch(ln)
		if m == nil {
			continue
		}
		mon, ok := monthNames[strings.ToLower(m[2])]
		if !ok {
			continue
		}
		day, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[3])
		if day < 1 || day > 31 {
			continue
		}
		d := time.Date(year, mon, day, 0, 0, 0, 0, time.UTC)
		return &d
	}
	return nil
}

func cleanPersonName(name string) string {
	s := reVeteranWord.ReplaceAllString(normalizeWS(name), "$1$2")
	s = normalizeWS(s)
	if s == "" {
		return "unknown"
	}
	return s
}
