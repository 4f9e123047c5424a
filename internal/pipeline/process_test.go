package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkachan/workua-toolkit/internal/scrape"
	"github.com/dkachan/workua-toolkit/internal/similarity"
)

func strptr(s string) *string { return &s }

func fixedNow() time.Time {
	return time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
}

func driverPayload() *scrape.Payload {
	return &scrape.Payload{
		SchemaVersion: scrape.SchemaVersion,
		SourceURL:     "https://www.work.ua/resumes/1234567/",
		Parsed: &scrape.ParsedFields{
			PersonName: "Іван",
			Position:   strptr("Водій"),
			WorkExperience: strptr(`Водій-далекобійник
з 01.2020 по 12.2021 ТОВ «Транс», Київ (Транспорт)
• міжнародні перевезення вантажів
• кат. C`),
			Education: strptr("Автотранспортний технікум\nз 2005 по 2008"),
			Skills:    []string{"Посвідчення водія кат. B", "Перевезення вантажів"},
		},
	}
}

func TestProcessDriverEndToEnd(t *testing.T) {
	p := NewProcessor(WithNow(fixedNow))
	res := p.Process(driverPayload())

	require.Len(t, res.WorkItems, 1)
	assert.Equal(t, 24, res.WorkItems[0].DurationMonths)
	assert.Equal(t, 24, res.TotalExperienceMonths)
	assert.Equal(t, 2.0, res.TotalExperienceYears)

	// the license on the skills list credits every position
	assert.Equal(t, 24, res.SkillMonths["category_b"])
	// the license named in the duties credits the item directly
	assert.Equal(t, 24, res.SkillMonths["category_c"])
	assert.Equal(t, 24, res.SkillMonths["перевезення вантажів"])

	assert.Equal(t, []string{"B", "C"}, res.DrivingCategories)

	require.Len(t, res.EducationItems, 1)
	assert.Equal(t, 37, res.TotalEducationMonths)
	// education never feeds skill accounting
	assert.NotContains(t, res.SkillMonths, "автотранспортний технікум")
}

func TestProcessDeterministicWithoutMatcher(t *testing.T) {
	p := NewProcessor(WithNow(fixedNow))
	a := p.Process(driverPayload())
	b := p.Process(driverPayload())
	assert.Equal(t, a, b)
}

func TestProcessFrozenClockShiftsOpenRanges(t *testing.T) {
	payload := &scrape.Payload{
		Parsed: &scrape.ParsedFields{
			WorkExperience: strptr("Водій\nз 01.2024 по нині ТОВ «Транс»"),
		},
	}

	p1 := NewProcessor(WithNow(fixedNow))
	res1 := p1.Process(payload)
	assert.Equal(t, 6, res1.TotalExperienceMonths)

	p2 := NewProcessor(WithNow(func() time.Time { return fixedNow().AddDate(1, 0, 0) }))
	res2 := p2.Process(payload)
	assert.Equal(t, 18, res2.TotalExperienceMonths)
}

func TestProcessTotalsDoubleCountOverlaps(t *testing.T) {
	payload := &scrape.Payload{
		Parsed: &scrape.ParsedFields{
			WorkExperience: strptr(`Водій
з 01.2020 по 12.2020 ТОВ «Перша»
Експедитор
з 06.2020 по 12.2020 ТОВ «Друга»`),
		},
	}

	p := NewProcessor(WithNow(fixedNow))
	res := p.Process(payload)
	require.Len(t, res.WorkItems, 2)
	// overlapping periods sum without correction
	assert.Equal(t, 12+7, res.TotalExperienceMonths)
}

func TestProcessNilAndUnparsedPayloads(t *testing.T) {
	p := NewProcessor(WithNow(fixedNow))

	res := p.Process(nil)
	assert.Empty(t, res.WorkItems)
	assert.Contains(t, res.Warnings, "no_parsed_fields")

	res = p.Process(&scrape.Payload{RawHTML: "<html></html>"})
	assert.Contains(t, res.Warnings, "no_parsed_fields")
}

func TestProcessFillsTitleFromPosition(t *testing.T) {
	payload := &scrape.Payload{
		Parsed: &scrape.ParsedFields{
			Position:       strptr("Водій навантажувача"),
			WorkExperience: strptr("з 01.2020 по 12.2020 ТОВ «Склад»"),
		},
	}

	p := NewProcessor(WithNow(fixedNow))
	res := p.Process(payload)
	require.Len(t, res.WorkItems, 1)
	assert.Equal(t, "Водій навантажувача", res.WorkItems[0].Title)
}

func TestProcessFuzzySkillClustering(t *testing.T) {
	payload := &scrape.Payload{
		Parsed: &scrape.ParsedFields{
			WorkExperience: strptr(`Водій
з 01.2020 по 12.2020 ТОВ «Перша»
• перевезення вантажів
Водій
з 01.2021 по 12.2021 ТОВ «Друга»
• перевезення вантажу`),
			Skills: []string{"перевезення вантажів"},
		},
	}

	p := NewProcessor(WithNow(fixedNow), WithMatcher(similarity.JaroWinkler()))
	res := p.Process(payload)

	// near-duplicate spellings fold into the first-seen name
	assert.Equal(t, 24, res.SkillMonths["перевезення вантажів"])
	assert.NotContains(t, res.SkillMonths, "перевезення вантажу")

	require.Len(t, res.MonthsByPosition, 1)
	assert.Equal(t, "водій", res.MonthsByPosition[0].Position)
	assert.Equal(t, 24, res.MonthsByPosition[0].Months)
}

func TestGroupByPositionOrdering(t *testing.T) {
	p := NewProcessor(WithNow(fixedNow))
	groups := p.groupByPosition([]StructuredItem{
		{Title: "Водій", DurationMonths: 10},
		{Title: "Механік", DurationMonths: 30},
		{Title: "Водій", DurationMonths: 5},
	})

	require.Len(t, groups, 2)
	assert.Equal(t, "механік", groups[0].Position)
	assert.Equal(t, 30, groups[0].Months)
	assert.Equal(t, "водій", groups[1].Position)
	assert.Equal(t, 15, groups[1].Months)
}
