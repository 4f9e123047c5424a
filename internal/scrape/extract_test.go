package scrape

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testResumeURL = "https://www.work.ua/resumes/1234567/"

func driverResumeHTML() string {
	return `<html><body>
<div class="navbar">Меню</div>
<div id="resume_1234567">
  <h1>Іван Петренко</h1>
  <h2 class="title-print">Водій, 25 000 грн</h2>
  <p>Резюме від 26 січня 2026</p>
  <p>Вид зайнятості</p>
  <p>неповна, віддалена</p>
  <p>Місто проживання</p>
  <p>Київ</p>
  <h2>Досвід роботи</h2>
  <p>Водій-далекобійник</p>
  <p>з 01.2020 по 12.2021 (2 роки) ТОВ «Транс», Київ (Транспорт)</p>
  <h2>Знання і навички</h2>
  <ul><li>кат. B</li><li>перевезення вантажів</li></ul>
  <h2>Знання мов</h2>
  <ul><li>Англійська — середній</li></ul>
</div>
</body></html>`
}

func TestBuildPayloadParsedFields(t *testing.T) {
	p, err := BuildPayload(driverResumeHTML(), testResumeURL, ModeRawCleanedParsed, Meta{RunID: "r1"})
	require.NoError(t, err)

	assert.Equal(t, SchemaVersion, p.SchemaVersion)
	assert.Equal(t, testResumeURL, p.SourceURL)
	assert.Equal(t, "resume_id_block", p.Meta.ParseMode)
	assert.Equal(t, "r1", p.Meta.RunID)
	assert.NotContains(t, p.RawHTML, "navbar")

	f := p.Parsed
	require.NotNil(t, f)
	assert.Equal(t, "Іван Петренко", f.PersonName)
	require.NotNil(t, f.Position)
	assert.Equal(t, "Водій", *f.Position)
	require.NotNil(t, f.Salary)
	assert.Equal(t, 25000, *f.Salary)
	require.NotNil(t, f.ResumeDate)
	assert.Equal(t, time.Date(2026, time.January, 26, 0, 0, 0, 0, time.UTC), *f.ResumeDate)

	assert.False(t, f.FullTime)
	assert.True(t, f.PartTime)
	assert.True(t, f.FromHome)
	require.NotNil(t, f.City)
	assert.Equal(t, "Київ", *f.City)

	require.NotNil(t, f.WorkExperience)
	assert.Contains(t, *f.WorkExperience, "Водій-далекобійник")
	assert.Contains(t, *f.WorkExperience, "з 01.2020 по 12.2021")
	assert.Equal(t, []string{"кат. B", "перевезення вантажів"}, f.Skills)
	assert.Equal(t, []string{"Англійська — середній"}, f.Languages)
	assert.Nil(t, f.Education)
	assert.False(t, f.Veteran)
}

func TestBuildPayloadFidelityModes(t *testing.T) {
	raw, err := BuildPayload(driverResumeHTML(), testResumeURL, ModeRaw, Meta{})
	require.NoError(t, err)
	assert.NotEmpty(t, raw.RawHTML)
	assert.Empty(t, raw.CleanedText)
	assert.Nil(t, raw.Parsed)

	cleaned, err := BuildPayload(driverResumeHTML(), testResumeURL, ModeRawCleaned, Meta{})
	require.NoError(t, err)
	assert.NotEmpty(t, cleaned.RawHTML)
	assert.NotEmpty(t, cleaned.CleanedText)
	assert.Nil(t, cleaned.Parsed)

	parsed, err := BuildPayload(driverResumeHTML(), testResumeURL, ModeRawCleanedParsed, Meta{})
	require.NoError(t, err)
	assert.NotEmpty(t, parsed.RawHTML)
	assert.NotEmpty(t, parsed.CleanedText)
	assert.NotNil(t, parsed.Parsed)
}

func TestBuildPayloadSkipsUploadedFile(t *testing.T) {
	html := `<html><body><div id="resume_1234567">
	<h1>Іван</h1><p>Файл резюме</p><p>Завантажити файл</p>
	</div></body></html>`

	_, err := BuildPayload(html, testResumeURL, ModeRawCleanedParsed, Meta{})
	require.Error(t, err)
	assert.True(t, IsSkippedFormat(err))

	var se *SkippedFormatError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, SkipUploadedFile, se.Reason)
	assert.Equal(t, testResumeURL, se.URL)
}

func TestBuildPayloadSkipsBusinessCard(t *testing.T) {
	html := `<html><body><div id="resume_1234567">
	<h1>Іван</h1><ul><li>Візитка</li></ul>
	</div></body></html>`

	_, err := BuildPayload(html, testResumeURL, ModeRaw, Meta{})
	require.Error(t, err)

	var se *SkippedFormatError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, SkipBusinessCard, se.Reason)
}

func TestBuildPayloadWholePageFallback(t *testing.T) {
	html := `<html><body><h1>Іван Петренко</h1><p>Досвід роботи</p></body></html>`

	p, err := BuildPayload(html, testResumeURL, ModeRawCleanedParsed, Meta{})
	require.NoError(t, err)
	assert.Equal(t, "whole_page_fallback", p.Meta.ParseMode)
	assert.Contains(t, p.Meta.Warnings, "missing_main_resume_block")
	assert.Contains(t, p.Meta.Warnings, "used_whole_page_fallback")
	assert.Equal(t, "Іван Петренко", p.Parsed.PersonName)
}

func TestBuildPayloadVeteranBadge(t *testing.T) {
	html := `<html><body><div id="resume_1234567">
	<h1>Іван Петренко <span>Ветеран</span></h1>
	<h2 class="title-print">Водій</h2>
	</div></body></html>`

	p, err := BuildPayload(html, testResumeURL, ModeRawCleanedParsed, Meta{})
	require.NoError(t, err)
	assert.True(t, p.Parsed.Veteran)
	// the badge never leaks into the person name
	assert.Equal(t, "Іван Петренко", p.Parsed.PersonName)
}

func TestBuildPayloadUnknownName(t *testing.T) {
	html := `<html><body><div id="resume_1234567"><p>42</p></div></body></html>`

	p, err := BuildPayload(html, testResumeURL, ModeRawCleanedParsed, Meta{})
	require.NoError(t, err)
	assert.Equal(t, "unknown", p.Parsed.PersonName)
	assert.Contains(t, p.Meta.Warnings, "unknown_person_name")
}

func TestResumeIDFromURL(t *testing.T) {
	assert.Equal(t, "1234567", resumeIDFromURL(testResumeURL))
	assert.Equal(t, "", resumeIDFromURL("https://www.work.ua/jobs/"))
}

func TestParseEmploymentFlags(t *testing.T) {
	cases := []struct {
		in                           string
		fullTime, partTime, fromHome bool
	}{
		{"повна", true, false, false},
		{"неповна", false, true, false},
		{"повна, неповна", true, true, false},
		{"неповна, віддалена робота", false, true, true},
		{"", false, false, false},
	}
	for _, tc := range cases {
		ft, pt, fh := parseEmploymentFlags(tc.in)
		assert.Equal(t, tc.fullTime, ft, "full time for %q", tc.in)
		assert.Equal(t, tc.partTime, pt, "part time for %q", tc.in)
		assert.Equal(t, tc.fromHome, fh, "from home for %q", tc.in)
	}
}

func TestParseSalaryBounds(t *testing.T) {
	for _, tc := range []struct {
		line string
		want *int
	}{
		{"Водій, 25 000 грн", intptr(25000)},
		{"Водій, 500 грн", nil},
		{"Водій, 2 000 000 грн", nil},
		{"Водій", nil},
	} {
		got := parseSalary(tc.line)
		if tc.want == nil {
			assert.Nil(t, got, "line %q", tc.line)
		} else {
			require.NotNil(t, got, "line %q", tc.line)
			assert.Equal(t, *tc.want, *got, "line %q", tc.line)
		}
	}
}

func intptr(v int) *int { return &v }

func TestSectionByTitleStopsAtNextSection(t *testing.T) {
	cleaned := "Досвід роботи\nВодій\nз 01.2020 по 12.2021\nОсвіта\nУніверситет"

	sec := sectionByTitle(cleaned, "Досвід роботи")
	assert.Equal(t, "Водій\nз 01.2020 по 12.2021", sec)

	edu := sectionByTitle(cleaned, "Освіта")
	assert.Equal(t, "Університет", edu)
}

func TestLabelValueShapes(t *testing.T) {
	lines := []string{"Готовий працювати: Київ, Бровари", "Вид зайнятості", "повна"}

	assert.Equal(t, "Київ, Бровари", labelValue(lines, "Готовий працювати"))
	assert.Equal(t, "повна", labelValueNextLine(lines, "Вид зайнятості", "Зайнятість"))
	assert.Equal(t, "", labelValueNextLine(lines, "Місто проживання"))
}

func TestSkippedFormatErrorMessage(t *testing.T) {
	err := &SkippedFormatError{URL: testResumeURL, Reason: SkipUploadedFile}
	assert.Equal(t, fmt.Sprintf("resume %s skipped: %s", testResumeURL, SkipUploadedFile), err.Error())
}
