package pipeline

import (
	"regexp"
	"strings"
	"time"
)

// WarnUnparsableRange marks an item whose date range could not be read.
// Such items keep duration 0 and a nil range but are never dropped.
const WarnUnparsableRange = "unparsable date range"

var (
	reMMYYYY       = regexp.MustCompile(`(\d{2})\.(\d{4})`)
	reMetaPrefix   = regexp.MustCompile(`(?i)^\s*(з|із|с)\s`)
	reOpenEndWord  = regexp.MustCompile(`(?i)(нині|тепер|сьогодні|дотепер|present|now)`)
	reDurationNote = regexp.MustCompile(`(?i)^\s*\([^()]*(рок|рік|роки|міс|year|month)[^()]*\)`)
	reTailParen    = regexp.MustCompile(`\(([^()]*)\)\s*$`)

	reInlineYears = regexp.MustCompile(`(?i)^(.+?)\s*\(\s*(\d{4})\s*[–—-]\s*(\d{4}|нині|тепер|сьогодні|дотепер|present|now)\s*\)\s*(.*)$`)
	reOneLine     = regexp.MustCompile(`(?i)^\s*(?:з|із|с)\s+(.+?)\s+(?:по|до)\s+(.+?)\s*[-–—]\s*(.+)$`)

	reBulletPrefix = regexp.MustCompile(`^\s*(?:[•*‣·\-]+|\d+[.):])\s*`)
	reDutiesHeader = regexp.MustCompile(`(?i)^\s*(функціональні\s+)?(обов['’]?язки|обязанности|особисті якості)\s*:?\s*$`)
)

// opfTokens are legal-form abbreviations that mark a company name rather
// than a city in the tail of a dates line.
var opfTokens = []string{"тов", "тзов", "пп", "фоп", "пат", "прат", "ооо", "llc", "спд", "кп", "дп", "ат"}

type datesMeta struct {
	start, end string
	company    string
	city       string
	industry   string
	warnings   []string
}

func isDatesMetaLine(line string) bool {
	if !reMetaPrefix.MatchString(line) {
		return false
	}
	return reMMYYYY.MatchString(line)
}

// parseDatesMetaLine reads lines of the shape
//
//	з 03.2015 по 11.2019 (4 роки 8 місяців) ТОВ «Транс», Київ (Транспорт)
//
// into a normalized range plus company, city and industry. The human
// duration note in parentheses is discarded; durations are always
// recomputed from the range.
func parseDatesMetaLine(line string) *datesMeta {
	dm := &datesMeta{}

	idx := reMMYYYY.FindAllStringSubmatchIndex(line, 2)
	if len(idx) == 0 {
		dm.warnings = append(dm.warnings, WarnUnparsableRange)
		return dm
	}
	first := line[idx[0][0]:idx[0][1]]
	dm.start, _ = NormalizeDateToken(first)
	tailFrom := idx[0][1]

	if len(idx) >= 2 {
		second := line[idx[1][0]:idx[1][1]]
		dm.end, _ = NormalizeDateToken(second)
		tailFrom = idx[1][1]
	} else if loc := reOpenEndWord.FindStringIndex(line[tailFrom:]); loc != nil {
		dm.end = Present
		tailFrom += loc[1]
	} else {
		dm.warnings = append(dm.warnings, WarnUnparsableRange)
	}

	tail := strings.TrimSpace(line[tailFrom:])
	if m := reDurationNote.FindStringIndex(tail); m != nil {
		tail = strings.TrimSpace(tail[m[1]:])
	}
	dm.company, dm.city, dm.industry = splitCompanyTail(tail)
	return dm
}

// splitCompanyTail takes "ТОВ «Транс», Київ (Транспорт, логістика)" apart.
// A trailing parenthesized group is the industry; a final comma-separated
// token that looks like a place name is the city; the rest is the company.
func splitCompanyTail(tail string) (company, city, industry string) {
	if m := reTailParen.FindStringSubmatchIndex(tail); m != nil {
		industry = strings.TrimSpace(tail[m[2]:m[3]])
		tail = strings.TrimSpace(tail[:m[0]])
	}
	if i := strings.LastIndex(tail, ","); i >= 0 {
		last := strings.TrimSpace(tail[i+1:])
		if looksLikeCity(last) {
			city = last
			tail = strings.TrimSpace(tail[:i])
		}
	}
	company = strings.Trim(tail, " ,")
	return company, city, industry
}

func looksLikeCity(s string) bool {
	runes := []rune(s)
	if len(runes) == 0 || len(runes) > 30 {
		return false
	}
	words := strings.Fields(s)
	if len(words) == 0 || len(words) > 2 {
		return false
	}
	lower := strings.ToLower(words[0])
	for _, opf := range opfTokens {
		if lower == opf {
			return false
		}
	}
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return false
		}
	}
	return true
}

func looksLikeWorkTitle(line string) bool {
	runes := []rune(line)
	if len(runes) == 0 || len(runes) > 120 {
		return false
	}
	if isDatesMetaLine(line) || reDutiesHeader.MatchString(line) {
		return false
	}
	return true
}

type workBlock struct {
	title  string
	meta   *datesMeta
	duties []string
	raw    []string
}

// ParseWorkSection structures the free text of a work-experience section.
// Three grammars are tried from most to least specific; blocks whose dates
// cannot be read still yield an item with a warning so no entry disappears
// silently.
func ParseWorkSection(text string, now time.Time) []StructuredItem {
	lines := strings.Split(text, "\n")

	blocks := scanWorkBlocks(lines)
	if len(blocks) > 0 {
		var items []StructuredItem
		for _, b := range blocks {
			items = append(items, buildWorkItems(*b, now)...)
		}
		return items
	}

	if items := parseInlineYearItems(lines, now); len(items) > 0 {
		return items
	}
	if items := parseOneLineItems(lines, now); len(items) > 0 {
		return items
	}
	return parseDegradedItem(text)
}

func scanWorkBlocks(lines []string) []*workBlock {
	var blocks []*workBlock
	var cur *workBlock
	for i := 0; i < len(lines); i++ {
		ln := strings.TrimSpace(lines[i])
		if ln == "" {
			continue
		}
		if i+1 < len(lines) {
			next := strings.TrimSpace(lines[i+1])
			if isDatesMetaLine(next) && looksLikeWorkTitle(ln) {
				cur = &workBlock{
					title: ln,
					meta:  parseDatesMetaLine(next),
					raw:   []string{ln, next},
				}
				blocks = append(blocks, cur)
				i++
				continue
			}
		}
		if isDatesMetaLine(ln) {
			// dates line with no title above it
			cur = &workBlock{
				meta: parseDatesMetaLine(ln),
				raw:  []string{ln},
			}
			blocks = append(blocks, cur)
			continue
		}
		if cur != nil {
			cur.raw = append(cur.raw, ln)
			if !reDutiesHeader.MatchString(ln) {
				cur.duties = append(cur.duties, ln)
			}
		}
	}
	return blocks
}

func buildWorkItems(b workBlock, now time.Time) []StructuredItem {
	base := StructuredItem{
		Title:    b.title,
		RawBlock: strings.Join(b.raw, "\n"),
	}
	if b.meta != nil {
		base.Company = b.meta.company
		base.City = b.meta.city
		base.Industry = b.meta.industry
		base.Warnings = append(base.Warnings, b.meta.warnings...)
		if b.meta.start != "" && b.meta.end != "" {
			base.Range = &DateRange{Start: b.meta.start, End: b.meta.end}
			base.DurationMonths = MonthsBetween(b.meta.start, b.meta.end, now)
		} else if len(base.Warnings) == 0 {
			base.Warnings = append(base.Warnings, WarnUnparsableRange)
		}
	} else {
		base.Warnings = append(base.Warnings, WarnUnparsableRange)
	}

	roles := splitTitleRoles(b.title)
	if len(roles) < 2 {
		base.Duties = splitDuties(b.duties)
		base.DutiesText = strings.Join(base.Duties, "\n")
		return []StructuredItem{base}
	}

	// A combined title like "Водій, експедитор" becomes one item per role.
	// Each role keeps the full range, so concurrent roles double-count in
	// the totals. Duties prefixed "Role:" are partitioned; unprefixed
	// duties are shared.
	segments := splitDutiesByRole(roles, b.duties)
	items := make([]StructuredItem, 0, len(roles))
	for _, role := range roles {
		it := base
		it.Title = role
		it.Warnings = append([]string(nil), base.Warnings...)
		it.Duties = splitDuties(segments[strings.ToLower(role)])
		it.DutiesText = strings.Join(it.Duties, "\n")
		items = append(items, it)
	}
	return items
}

func splitTitleRoles(title string) []string {
	parts := strings.FieldsFunc(title, func(r rune) bool {
		return r == ',' || r == '/'
	})
	if len(parts) < 2 {
		return nil
	}
	var roles []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil
		}
		if len(strings.Fields(p)) > 3 {
			return nil
		}
		roles = append(roles, p)
	}
	return roles
}

func splitDutiesByRole(roles []string, duties []string) map[string][]string {
	segments := make(map[string][]string, len(roles))
	var shared []string
	current := ""
	prefixed := false
	for _, ln := range duties {
		matched := false
		for _, role := range roles {
			prefix := strings.ToLower(role)
			low := strings.ToLower(ln)
			if strings.HasPrefix(low, prefix+":") || strings.HasPrefix(low, prefix+" :") {
				current = prefix
				prefixed = true
				rest := strings.TrimSpace(ln[strings.Index(ln, ":")+1:])
				if rest != "" {
					segments[current] = append(segments[current], rest)
				}
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		if current != "" {
			segments[current] = append(segments[current], ln)
		} else {
			shared = append(shared, ln)
		}
	}
	for _, role := range roles {
		key := strings.ToLower(role)
		if !prefixed {
			segments[key] = duties
			continue
		}
		segments[key] = append(append([]string(nil), shared...), segments[key]...)
	}
	return segments
}

func splitDuties(lines []string) []string {
	var out []string
	for _, ln := range lines {
		ln = strings.TrimSpace(ln)
		if ln == "" || reDutiesHeader.MatchString(ln) {
			continue
		}
		stripped := reBulletPrefix.ReplaceAllString(ln, "")
		stripped = strings.TrimSpace(stripped)
		if stripped == "" {
			continue
		}
		if strings.Contains(stripped, ";") {
			for _, part := range strings.Split(stripped, ";") {
				part = strings.Trim(part, " .")
				if part != "" {
					out = append(out, part)
				}
			}
			continue
		}
		out = append(out, strings.TrimRight(stripped, "."))
	}
	return out
}

func parseInlineYearItems(lines []string, now time.Time) []StructuredItem {
	var items []StructuredItem
	for _, ln := range lines {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			continue
		}
		m := reInlineYears.FindStringSubmatch(ln)
		if m == nil {
			continue
		}
		start, _ := NormalizeDateToken(m[2])
		end, _ := NormalizeDateToken(m[3])
		it := StructuredItem{
			Title:    strings.TrimSpace(m[1]),
			RawBlock: ln,
		}
		if start != "" && end != "" {
			it.Range = &DateRange{Start: start, End: end}
			it.DurationMonths = MonthsBetween(start, end, now)
		} else {
			it.Warnings = append(it.Warnings, WarnUnparsableRange)
		}
		it.Company, it.City, it.Industry = splitCompanyTail(strings.TrimSpace(m[4]))
		items = append(items, it)
	}
	return items
}

func parseOneLineItems(lines []string, now time.Time) []StructuredItem {
	var items []StructuredItem
	for _, ln := range lines {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			continue
		}
		m := reOneLine.FindStringSubmatch(ln)
		if m == nil {
			continue
		}
		start, _ := NormalizeDateToken(strings.TrimSpace(m[1]))
		end, _ := NormalizeDateToken(strings.TrimSpace(m[2]))
		it := StructuredItem{
			Title:    strings.TrimSpace(m[3]),
			RawBlock: ln,
		}
		if start != "" && end != "" {
			it.Range = &DateRange{Start: start, End: end}
			it.DurationMonths = MonthsBetween(start, end, now)
		} else {
			it.Warnings = append(it.Warnings, WarnUnparsableRange)
		}
		items = append(items, it)
	}
	return items
}

func parseDegradedItem(text string) []StructuredItem {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	title := trimmed
	if i := strings.IndexByte(trimmed, '\n'); i >= 0 {
		title = strings.TrimSpace(trimmed[:i])
	}
	return []StructuredItem{{
		Title:    title,
		RawBlock: trimmed,
		Warnings: []string{WarnUnparsableRange},
	}}
}
