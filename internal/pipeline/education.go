package pipeline

import (
	"regexp"
	"strings"
	"time"
)

var (
	reEduYears = regexp.MustCompile(`(?i)(^|[^\p{L}])(з|із|с)\s+(\d{4})\s+(по|до)\s+(\d{4}|нині|тепер|сьогодні|дотепер|present|now)`)

	eduInstitutionWords = []string{
		"університет", "інститут", "академі", "коледж", "технікум",
		"училищ", "ліцей", "школ", "курси",
		"university", "institute", "academy", "college",
	}

	// degreeMap keys must be lowercase; scanned in listed order so longer
	// phrases win over their substrings.
	degreeMap = []struct{ marker, degree string }{
		{"незакінчена вища", "незакінчена вища"},
		{"неповна вища", "неповна вища"},
		{"повна вища", "повна вища"},
		{"базова вища", "базова вища"},
		{"вища", "вища"},
		{"середня спеціальна", "середня спеціальна"},
		{"середня технічна", "середня технічна"},
		{"середня", "середня"},
		{"магістр", "магістр"},
		{"бакалавр", "бакалавр"},
		{"спеціаліст", "спеціаліст"},
	}

	reEduSpecialty = regexp.MustCompile(`(?i)спеціальність\s*[:–—-]?\s*(.+)$`)
)

func looksLikeInstitution(line string) bool {
	low := strings.ToLower(line)
	for _, w := range eduInstitutionWords {
		if strings.Contains(low, w) {
			return true
		}
	}
	return false
}

func degreeIn(line string) string {
	low := strings.ToLower(line)
	for _, d := range degreeMap {
		if strings.Contains(low, d.marker) {
			return d.degree
		}
	}
	return ""
}

// ParseEducationSection structures an education section. Each block is
// anchored on a line naming an institution; year ranges in or around the
// block give the period. Education durations stay out of skill accounting
// and are totaled separately.
func ParseEducationSection(text string, now time.Time) []StructuredItem {
	lines := strings.Split(text, "\n")

	var items []StructuredItem
	var cur *StructuredItem
	flush := func() {
		if cur != nil {
			items = append(items, *cur)
			cur = nil
		}
	}

	for _, raw := range lines {
		ln := strings.TrimSpace(raw)
		if ln == "" {
			continue
		}
		if looksLikeInstitution(ln) {
			flush()
			cur = &StructuredItem{Title: ln, RawBlock: ln}
			if d := degreeIn(ln); d != "" {
				cur.Degree = d
			}
			attachEduYears(cur, ln, now)
			continue
		}
		if cur == nil {
			// degree or year line before any institution line
			cur = &StructuredItem{Title: ln, RawBlock: ln}
			if d := degreeIn(ln); d != "" {
				cur.Degree = d
			}
			attachEduYears(cur, ln, now)
			continue
		}
		cur.RawBlock += "\n" + ln
		attachEduYears(cur, ln, now)
		if cur.Degree == "" {
			cur.Degree = degreeIn(ln)
		}
		if m := reEduSpecialty.FindStringSubmatch(ln); m != nil && cur.Specialty == "" {
			cur.Specialty = strings.Trim(m[1], " .")
			continue
		}
		// a plain line that is neither a degree marker nor a year range
		// is taken as the specialty
		if cur.Specialty == "" && degreeIn(ln) == "" && !reEduYears.MatchString(ln) {
			cur.Specialty = strings.Trim(ln, " .")
		}
	}
	flush()
	return items
}

func attachEduYears(it *StructuredItem, line string, now time.Time) {
	if it.Range != nil {
		return
	}
	m := reEduYears.FindStringSubmatch(line)
	if m == nil {
		return
	}
	start, ok1 := NormalizeDateToken(m[3])
	end, ok2 := NormalizeDateToken(m[5])
	if !ok1 || !ok2 {
		return
	}
	it.Range = &DateRange{Start: start, End: end}
	it.DurationMonths = MonthsBetween(start, end, now)
}
