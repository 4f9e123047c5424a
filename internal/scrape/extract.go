package scrape

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dkachan/workua-toolkit/internal/htmltext"
)

// Skip reasons for document shapes the extractor deliberately excludes.
const (
	SkipUploadedFile = "uploaded_file"
	SkipBusinessCard = "business_card"
)

// SkippedFormatError marks a resume whose document shape is not supported:
// a resume stored as an uploaded file or a minimal business-card resume.
// It is a deliberate exclusion, distinct from both success and failure.
type SkippedFormatError struct {
	URL    string
	Reason string
}

func (e *SkippedFormatError) Error() string {
	return fmt.Sprintf("resume %s skipped: %s", e.URL, e.Reason)
}

// IsSkippedFormat reports whether err signals a deliberately skipped resume.
func IsSkippedFormat(err error) bool {
	var se *SkippedFormatError
	return errors.As(err, &se)
}

var (
	reResumeID     = regexp.MustCompile(`/resumes/(\d+)/`)
	reUploadedFile = regexp.MustCompile(`(?i)(файл резюме|завантажити файл|прикріплен(ий|і)\s+файл)`)
	reBusinessCard = regexp.MustCompile(`(?i)• Візитка`)
)

func resumeIDFromURL(url string) string {
	m := reResumeID.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return m[1]
}

// BuildPayload turns one fetched resume page into a Payload at the requested
// fidelity level. It returns *SkippedFormatError for unsupported document
// shapes; any other failure degrades to a payload with warnings.
func BuildPayload(pageHTML, sourceURL string, mode PayloadMode, meta Meta) (*Payload, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse resume page %s: %w", sourceURL, err)
	}

	var container *goquery.Selection
	if rid := resumeIDFromURL(sourceURL); rid != "" {
		if sel := doc.Find("div#resume_" + rid); sel.Length() > 0 {
			container = sel.First()
			meta.ParseMode = "resume_id_block"
		} else {
			meta.Warnings = append(meta.Warnings, "missing_main_resume_block")
		}
	}

	rawHTML := pageHTML
	if container != nil {
		if h, err := goquery.OuterHtml(container); err == nil {
			rawHTML = h
		}
	} else {
		container = doc.Selection
		meta.ParseMode = "whole_page_fallback"
		meta.Warnings = append(meta.Warnings, "used_whole_page_fallback")
	}

	// Cleaning is cheap and decides skipping even in RAW mode.
	cleaned, err := htmltext.ToText(rawHTML)
	if err != nil {
		cleaned = ""
		meta.Warnings = append(meta.Warnings, "text_normalization_failed")
	}

	if reUploadedFile.MatchString(cleaned) {
		return nil, &SkippedFormatError{URL: sourceURL, Reason: SkipUploadedFile}
	}
	if reBusinessCard.MatchString(cleaned) {
		return nil, &SkippedFormatError{URL: sourceURL, Reason: SkipBusinessCard}
	}

	p := &Payload{
		SchemaVersion: SchemaVersion,
		SourceURL:     sourceURL,
		RawHTML:       rawHTML,
	}

	if mode == ModeRawCleaned || mode == ModeRawCleanedParsed {
		p.CleanedText = cleaned
	}
	if mode == ModeRawCleanedParsed {
		p.Parsed = parseFields(container, cleaned)
		if p.Parsed.PersonName == "unknown" {
			meta.Warnings = append(meta.Warnings, "unknown_person_name")
		}
	}

	meta.PayloadMode = string(mode)
	p.Meta = meta
	return p, nil
}

// parseFields extracts the best-effort flat field set from the resume
// container markup and its cleaned text.
func parseFields(container *goquery.Selection, cleaned string) *ParsedFields {
	f := &ParsedFields{PersonName: "unknown"}

	if container != nil {
		if h1 := container.Find("h1").First(); h1.Length() > 0 {
			if nm := cleanPersonName(h1.Text()); nm != "unknown" {
				f.PersonName = nm
			}
		}
		posH2 := container.Find("h2.title-print").First()
		if posH2.Length() == 0 {
			posH2 = container.Find("h2").First()
		}
		if posH2.Length() > 0 {
			if pos := normalizeWS(posH2.Text()); pos != "" {
				f.Position = &pos
			}
		}
		f.Veteran = parseVeteran(container)
	}

	lines := splitNonemptyLines(cleaned)

	if name, pos := fallbackNamePosition(lines); true {
		if f.PersonName == "unknown" && name != "" {
			f.PersonName = name
		}
		if f.Position == nil && pos != "" {
			f.Position = &pos
		}
	}

	if f.Position != nil {
		if stripped := stripSalaryTail(*f.Position); stripped != "" {
			f.Position = &stripped
		}
	}

	f.Salary = parseSalary(cleaned)
	f.ResumeDate = parseResumeDate(cleaned)

	if emp := labelValueNextLine(lines, "Вид зайнятості", "Зайнятість"); emp != "" {
		f.FullTime, f.PartTime, f.FromHome = parseEmploymentFlags(emp)
	}

	if city := labelValueNextLine(lines, "Місто проживання", "Місто"); city != "" {
		f.City = &city
	}
	if v := labelValue(lines, "Готовий працювати"); v != "" {
		f.ReadyToWork = splitCSVList(v)
	}
	if v := labelValue(lines, "Розглядає посади"); v != "" {
		f.ConsideredPositions = splitCSVList(v)
	}
	if sec := sectionByTitle(cleaned, "Інвалідність"); sec != "" {
		if ls := splitNonemptyLines(sec); len(ls) > 0 {
			f.Disability = &ls[0]
		}
	}

	f.WorkExperience = optionalSection(cleaned, "Досвід роботи")
	f.Education = optionalSection(cleaned, "Освіта")
	f.AdditionalEducation = optionalSection(cleaned, "Додаткова освіта")
	f.Recommendations = optionalSection(cleaned, "Рекомендації")
	f.AdditionalInfo = optionalSection(cleaned, "Додаткова інформація")
	f.Skills = parseBullets(sectionByTitle(cleaned, "Знання і навички"))
	f.Languages = parseBullets(sectionByTitle(cleaned, "Знання мов"))

	return f
}

func optionalSection(cleaned string, title string) *string {
	if sec := sectionByTitle(cleaned, title); sec != "" {
		return &sec
	}
	return nil
}

// fallbackNamePosition recovers name and position from the top of the
// cleaned text when the markup lookup came up empty.
func fallbackNamePosition(lines []string) (name, position string) {
	idx := 0
	if len(lines) > 0 && strings.Contains(strings.ToLower(lines[0]), "резюме") {
		idx = 1
	}

	limit := idx + 12
	if limit > len(lines) {
		limit = len(lines)
	}

	for j := idx; j < limit; j++ {
		ln := stripBullet(lines[j])
		if ln == "" || looksLikeSectionTitle(ln) || strings.Contains(ln, ":") {
			continue
		}
		if !containsLetter(ln) {
			continue
		}

		words := strings.Fields(ln)
		if len(words) < 1 || len(words) > 3 || len([]rune(ln)) > 80 {
			continue
		}
		name = cleanPersonName(ln)
		if name == "unknown" {
			name = ""
		}

		posLimit := j + 6
		if posLimit > len(lines) {
			posLimit = len(lines)
		}
		for k := j + 1; k < posLimit; k++ {
			cand := stripBullet(lines[k])
			if cand == "" || looksLikeSectionTitle(cand) || strings.Contains(cand, ":") {
				continue
			}
			if r := []rune(cand); len(r) > 120 {
				cand = string(r[:120])
			}
			position = cand
			break
		}
		break
	}
	return name, position
}

func containsLetter(s string) bool {
	for _, r := range s {
		if ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || r >= 0x0400 && r <= 0x04FF {
			return true
		}
	}
	return false
}

// parseVeteran detects the "Ветеран" badge near the name.
func parseVeteran(container *goquery.Selection) bool {
	h1 := container.Find("h1").First()
	if h1.Length() > 0 {
		if reVeteranWord.MatchString(normalizeWS(h1.Text())) {
			return true
		}
		if parent := h1.Parent(); parent.Length() > 0 {
			if reVeteranWord.MatchString(normalizeWS(parent.Text())) {
				return true
			}
		}
	}

	found := false
	container.Find("span, div, a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.EqualFold(normalizeWS(s.Text()), "ветеран") {
			found = true
			return false
		}
		return true
	})
	return found
}
