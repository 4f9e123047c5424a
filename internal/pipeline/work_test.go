package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var workNow = time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

func TestParseWorkSectionPrimaryGrammar(t *testing.T) {
	text := `Водій-далекобійник
з 03.2015 по 11.2019 (4 роки 8 місяців) ТОВ «Транс Логістик», Київ (Транспорт, логістика)
Обов'язки:
• міжнародні перевезення вантажів
• ведення подорожніх листів`

	items := ParseWorkSection(text, workNow)
	require.Len(t, items, 1)

	it := items[0]
	assert.Equal(t, "Водій-далекобійник", it.Title)
	assert.Equal(t, "ТОВ «Транс Логістик»", it.Company)
	assert.Equal(t, "Київ", it.City)
	require.NotNil(t, it.Range)
	assert.Equal(t, "2015-03", it.Range.Start)
	assert.Equal(t, "2019-11", it.Range.End)
	assert.Equal(t, 57, it.DurationMonths)
	assert.Equal(t, []string{
		"міжнародні перевезення вантажів",
		"ведення подорожніх листів",
	}, it.Duties)
	assert.Empty(t, it.Warnings)
}

func TestParseWorkSectionCompanyTail(t *testing.T) {
	text := "Водій\nз 01.2020 по 12.2021 ТОВ «Транс», Київ (Транспорт, логістика)"

	items := ParseWorkSection(text, workNow)
	require.Len(t, items, 1)
	assert.Equal(t, "ТОВ «Транс»", items[0].Company)
	assert.Equal(t, "Київ", items[0].City)
	assert.Equal(t, "Транспорт, логістика", items[0].Industry)
	assert.Equal(t, 24, items[0].DurationMonths)
}

func TestParseWorkSectionOpenEnded(t *testing.T) {
	text := "Експедитор\nз 01.2024 по нині ФОП Кравченко"

	items := ParseWorkSection(text, workNow)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Range)
	assert.Equal(t, Present, items[0].Range.End)
	assert.Equal(t, 6, items[0].DurationMonths)
	assert.Equal(t, "ФОП Кравченко", items[0].Company)
	assert.Empty(t, items[0].City)
}

func TestParseWorkSectionUnparsableRangeKeepsItem(t *testing.T) {
	text := "Водій\nз 03.2015 кудись ТОВ «Транс»"

	items := ParseWorkSection(text, workNow)
	require.Len(t, items, 1)
	assert.Equal(t, 0, items[0].DurationMonths)
	assert.Nil(t, items[0].Range)
	assert.Contains(t, items[0].Warnings, WarnUnparsableRange)
}

func TestParseWorkSectionMultipleBlocks(t *testing.T) {
	text := `Водій
з 01.2010 по 12.2014 ТОВ «Перша»
перевезення по місту
Механік
з 01.2015 по 12.2019 ТОВ «Друга»
ремонт вантажівок`

	items := ParseWorkSection(text, workNow)
	require.Len(t, items, 2)
	assert.Equal(t, "Водій", items[0].Title)
	assert.Equal(t, []string{"перевезення по місту"}, items[0].Duties)
	assert.Equal(t, "Механік", items[1].Title)
	assert.Equal(t, []string{"ремонт вантажівок"}, items[1].Duties)
	assert.Equal(t, 60, items[0].DurationMonths)
	assert.Equal(t, 60, items[1].DurationMonths)
}

func TestParseWorkSectionMultiRoleTitle(t *testing.T) {
	text := `Водій, експедитор
з 01.2020 по 12.2020 ТОВ «Транс»
Водій: перевезення вантажів
Експедитор: супровід документів`

	items := ParseWorkSection(text, workNow)
	require.Len(t, items, 2)
	assert.Equal(t, "Водій", items[0].Title)
	assert.Equal(t, []string{"перевезення вантажів"}, items[0].Duties)
	assert.Equal(t, "експедитор", items[1].Title)
	assert.Equal(t, []string{"супровід документів"}, items[1].Duties)
	// both roles keep the full range
	assert.Equal(t, 12, items[0].DurationMonths)
	assert.Equal(t, 12, items[1].DurationMonths)
}

func TestParseWorkSectionInlineYearsFallback(t *testing.T) {
	text := "Водій (2015 – 2019) ТОВ Транс (Транспорт)"

	items := ParseWorkSection(text, workNow)
	require.Len(t, items, 1)
	assert.Equal(t, "Водій", items[0].Title)
	require.NotNil(t, items[0].Range)
	assert.Equal(t, "2015-01", items[0].Range.Start)
	assert.Equal(t, "2019-01", items[0].Range.End)
	assert.Equal(t, 49, items[0].DurationMonths)
	assert.Equal(t, "ТОВ Транс", items[0].Company)
	assert.Equal(t, "Транспорт", items[0].Industry)
}

func TestParseWorkSectionOneLineFallback(t *testing.T) {
	text := "з 2015 по 2019 — Водій автобуса"

	items := ParseWorkSection(text, workNow)
	require.Len(t, items, 1)
	assert.Equal(t, "Водій автобуса", items[0].Title)
	assert.Equal(t, 49, items[0].DurationMonths)
}

func TestParseWorkSectionDegraded(t *testing.T) {
	text := "Багато років працював у різних місцях"

	items := ParseWorkSection(text, workNow)
	require.Len(t, items, 1)
	assert.Equal(t, 0, items[0].DurationMonths)
	assert.Contains(t, items[0].Warnings, WarnUnparsableRange)

	assert.Empty(t, ParseWorkSection("", workNow))
	assert.Empty(t, ParseWorkSection("  \n\n ", workNow))
}

func TestSplitDuties(t *testing.T) {
	duties := splitDuties([]string{
		"• перевезення вантажів",
		"ремонт; обслуговування",
		"Обов'язки:",
		"1. ведення документації",
	})
	assert.Equal(t, []string{
		"перевезення вантажів",
		"ремонт",
		"обслуговування",
		"ведення документації",
	}, duties)
}
