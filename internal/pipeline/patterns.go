package pipeline

import "regexp"

// SkillPattern maps a regular expression over duty text to a canonical
// skill name. Patterns run against the whole duties text of a work item;
// a match credits the item's full duration to Canonical.
type SkillPattern struct {
	Canonical string
	Pattern   *regexp.Regexp
}

// drivingCategoryOrder is the fixed output order for license categories.
var drivingCategoryOrder = []string{"A", "B", "BE", "C", "CE", "D", "DE"}

// Cyrillic text defeats \b (it is ASCII-only in regexp), so the patterns
// guard with explicit non-letter classes instead.
var (
	reDrivingCatPrefixed = regexp.MustCompile(`(?i)(^|[^\p{L}])кат(егор\p{L}*|\.)?\s*([A-Za-zА-Яа-я]{1,2})([^\p{L}\p{N}]|$)`)
	reDrivingCatBare     = regexp.MustCompile(`\b(BE|CE|DE|A|B|C|D)\b`)
)

func drivingCategoryPattern(cat string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(^|[^\p{L}])кат(егор\p{L}*|\.)?\s*` + cat + `([^\p{L}\p{N}]|$)`)
}

// DefaultSkillPatterns is the built-in pattern table. Driving categories
// use canonical names like "category_b" so they key cleanly in skill-month
// maps alongside free-text skills.
func DefaultSkillPatterns() []SkillPattern {
	pats := []SkillPattern{
		{Canonical: "перевезення вантажів", Pattern: regexp.MustCompile(`(?i)перевезенн\p{L}*\s+вантаж`)},
		{Canonical: "перевезення пасажирів", Pattern: regexp.MustCompile(`(?i)перевезенн\p{L}*\s+пасажир`)},
		{Canonical: "ремонт автомобілів", Pattern: regexp.MustCompile(`(?i)ремонт\p{L}*\s+(авто|автомобіл|вантажів)`)},
		{Canonical: "міжнародні перевезення", Pattern: regexp.MustCompile(`(?i)міжнародн\p{L}*\s+(перевезенн|рейс)`)},
		{Canonical: "експедирування", Pattern: regexp.MustCompile(`(?i)експедир`)},
		{Canonical: "логістика", Pattern: regexp.MustCompile(`(?i)логіст`)},
	}
	for _, cat := range drivingCategoryOrder {
		pats = append(pats, SkillPattern{
			Canonical: "category_" + lowerASCII(cat),
			Pattern:   drivingCategoryPattern(cat),
		})
	}
	return pats
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// extractDrivingCategories scans free text for license mentions and returns
// the recognized categories in their fixed canonical order.
func extractDrivingCategories(texts ...string) []string {
	seen := map[string]bool{}
	for _, txt := range texts {
		for _, m := range reDrivingCatPrefixed.FindAllStringSubmatch(txt, -1) {
			seen[normalizeCategory(m[3])] = true
		}
		for _, m := range reDrivingCatBare.FindAllStringSubmatch(txt, -1) {
			seen[m[1]] = true
		}
	}
	var out []string
	for _, cat := range drivingCategoryOrder {
		if seen[cat] {
			out = append(out, cat)
		}
	}
	return out
}

// normalizeCategory folds Cyrillic lookalike letters so "кат. В" and
// "кат. B" land on the same category.
func normalizeCategory(raw string) string {
	repl := map[rune]rune{
		'А': 'A', 'а': 'A',
		'В': 'B', 'в': 'B',
		'С': 'C', 'с': 'C',
		'Е': 'E', 'е': 'E',
	}
	out := make([]rune, 0, len(raw))
	for _, r := range raw {
		if mapped, ok := repl[r]; ok {
			r = mapped
		}
		if r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		out = append(out, r)
	}
	return string(out)
}
