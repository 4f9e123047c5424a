package pipeline

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/dkachan/workua-toolkit/internal/scrape"
	"github.com/dkachan/workua-toolkit/internal/similarity"
)

const (
	// DefaultSkillThreshold gates fuzzy duty-to-skill matches.
	DefaultSkillThreshold = 0.78
	// DefaultTitleThreshold gates fuzzy title clustering.
	DefaultTitleThreshold = 0.82
)

// Processor turns a parsed payload into a ProcessedResume. It is safe for
// concurrent use once constructed. The clock is injectable so durations of
// open-ended positions are reproducible in tests.
type Processor struct {
	matcher        similarity.Matcher
	skillThreshold float64
	titleThreshold float64
	patterns       []SkillPattern
	now            func() time.Time
}

type Option func(*Processor)

// WithMatcher sets the similarity backend for fuzzy skill and title
// matching. The default exact matcher keeps processing deterministic and
// dependency-free.
func WithMatcher(m similarity.Matcher) Option {
	return func(p *Processor) { p.matcher = m }
}

func WithNow(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

func WithSkillPatterns(pats []SkillPattern) Option {
	return func(p *Processor) { p.patterns = pats }
}

func WithSkillThreshold(t float64) Option {
	return func(p *Processor) { p.skillThreshold = t }
}

func WithTitleThreshold(t float64) Option {
	return func(p *Processor) { p.titleThreshold = t }
}

func NewProcessor(opts ...Option) *Processor {
	p := &Processor{
		matcher:        similarity.None(),
		skillThreshold: DefaultSkillThreshold,
		titleThreshold: DefaultTitleThreshold,
		patterns:       DefaultSkillPatterns(),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process structures one payload. It never fails: inputs that cannot be
// structured produce an empty result carrying warnings, so a single bad
// resume cannot halt a batch.
func (p *Processor) Process(payload *scrape.Payload) *ProcessedResume {
	res := &ProcessedResume{}
	if payload == nil || payload.Parsed == nil {
		res.Warnings = append(res.Warnings, "no_parsed_fields")
		return res
	}
	parsed := payload.Parsed
	now := p.now()

	if parsed.WorkExperience != nil {
		res.WorkItems = ParseWorkSection(*parsed.WorkExperience, now)
	}
	for i := range res.WorkItems {
		if res.WorkItems[i].Title == "" && parsed.Position != nil {
			res.WorkItems[i].Title = *parsed.Position
		}
	}

	if parsed.Education != nil {
		res.EducationItems = ParseEducationSection(*parsed.Education, now)
	}
	if parsed.AdditionalEducation != nil {
		res.EducationItems = append(res.EducationItems,
			ParseEducationSection(*parsed.AdditionalEducation, now)...)
	}

	for _, it := range res.WorkItems {
		res.TotalExperienceMonths += it.DurationMonths
		res.Warnings = appendUnique(res.Warnings, it.Warnings...)
	}
	res.TotalExperienceYears = monthsToYears(res.TotalExperienceMonths)
	for _, it := range res.EducationItems {
		res.TotalEducationMonths += it.DurationMonths
	}

	res.NormalizedSkills = normalizeSkills(parsed.Skills)
	skillsText := strings.Join(parsed.Skills, "\n")

	res.SkillMonths = p.tallySkillMonths(res.WorkItems, res.NormalizedSkills, skillsText)
	res.MonthsByPosition = p.groupByPosition(res.WorkItems)

	catTexts := []string{skillsText}
	for _, it := range res.WorkItems {
		catTexts = append(catTexts, it.Title, it.DutiesText)
	}
	if parsed.AdditionalInfo != nil {
		catTexts = append(catTexts, *parsed.AdditionalInfo)
	}
	res.DrivingCategories = extractDrivingCategories(catTexts...)

	return res
}

// tallySkillMonths credits each work item's full duration to every skill it
// evidences. A duty hit, a pattern hit and a license carried on the skills
// list all count, each skill at most once per item; overlapping items are
// not corrected, mirroring the experience totals.
func (p *Processor) tallySkillMonths(items []StructuredItem, knownSkills []string, skillsText string) map[string]int {
	tally := newOrderedTally()

	// licenses and other pattern skills declared outside the work history
	// apply to every position
	var resumeWide []string
	for _, pat := range p.patterns {
		if pat.Pattern.MatchString(skillsText) {
			resumeWide = append(resumeWide, pat.Canonical)
		}
	}

	for _, it := range items {
		if it.DurationMonths <= 0 {
			continue
		}
		credited := map[string]bool{}
		credit := func(name string) {
			if !credited[name] {
				credited[name] = true
				tally.add(name, it.DurationMonths)
			}
		}

		for _, duty := range it.Duties {
			nd := normSkill(duty)
			if nd == "" {
				continue
			}
			if best, score := p.bestMatch(knownSkills, nd); score >= p.skillThreshold {
				credit(best)
			}
		}

		scan := it.Title + "\n" + it.DutiesText
		for _, pat := range p.patterns {
			if pat.Pattern.MatchString(scan) {
				credit(pat.Canonical)
			}
		}
		for _, canonical := range resumeWide {
			credit(canonical)
		}
	}

	return p.clusterTally(tally, p.skillThreshold)
}

// clusterTally merges near-duplicate skill names. The first-seen spelling
// is the canonical representative; later variants fold into it. Pattern
// canonicals are already canonical and stay out of the fuzzy merge, which
// otherwise would collapse near-identical names like the license keys.
func (p *Processor) clusterTally(t *orderedTally, threshold float64) map[string]int {
	if len(t.order) == 0 {
		return nil
	}
	fixed := make(map[string]bool, len(p.patterns))
	for _, pat := range p.patterns {
		fixed[pat.Canonical] = true
	}
	var reps []string
	out := make(map[string]int, len(t.order))
	for _, name := range t.order {
		target := name
		if !fixed[name] {
			if best, score := p.bestMatch(reps, name); score >= threshold {
				target = best
			} else {
				reps = append(reps, name)
			}
		}
		out[target] += t.months[name]
	}
	return out
}

func (p *Processor) groupByPosition(items []StructuredItem) []PositionMonths {
	var groups []PositionMonths
	index := map[string]int{}
	var reps []string

	for _, it := range items {
		title := strings.TrimSpace(it.Title)
		if title == "" {
			continue
		}
		norm := normSkill(title)
		rep := norm
		if best, score := p.bestMatch(reps, norm); score >= p.titleThreshold {
			rep = best
		} else {
			reps = append(reps, norm)
			index[norm] = len(groups)
			groups = append(groups, PositionMonths{
				Position:        norm,
				DisplayPosition: title,
			})
		}
		g := &groups[index[rep]]
		g.Months += it.DurationMonths
		g.Titles = appendUnique(g.Titles, title)
	}

	for i := range groups {
		groups[i].Years = monthsToYears(groups[i].Months)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Months > groups[j].Months
	})
	if len(groups) == 0 {
		return nil
	}
	return groups
}

func (p *Processor) bestMatch(candidates []string, s string) (string, float64) {
	best := ""
	bestScore := -1.0
	for _, c := range candidates {
		score := p.matcher.Similarity(c, s)
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	return best, bestScore
}

var reSkillWS = regexp.MustCompile(`\s+`)

func normSkill(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Trim(s, ".•- ")
	return reSkillWS.ReplaceAllString(s, " ")
}

func normalizeSkills(raw []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, s := range raw {
		ns := normSkill(s)
		if ns == "" || seen[ns] {
			continue
		}
		seen[ns] = true
		out = append(out, ns)
	}
	return out
}

type orderedTally struct {
	order  []string
	months map[string]int
}

func newOrderedTally() *orderedTally {
	return &orderedTally{months: map[string]int{}}
}

func (t *orderedTally) add(name string, months int) {
	if _, ok := t.months[name]; !ok {
		t.order = append(t.order, name)
	}
	t.months[name] += months
}

func appendUnique(dst []string, vals ...string) []string {
	for _, v := range vals {
		found := false
		for _, existing := range dst {
			if existing == v {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, v)
		}
	}
	return dst
}
