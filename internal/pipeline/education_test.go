package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var eduNow = time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

func TestParseEducationSection(t *testing.T) {
	text := `Національний транспортний університет
Автомобільний транспорт
з 2010 по 2015`

	items := ParseEducationSection(text, eduNow)
	require.Len(t, items, 1)

	it := items[0]
	assert.Equal(t, "Національний транспортний університет", it.Title)
	assert.Equal(t, "Автомобільний транспорт", it.Specialty)
	require.NotNil(t, it.Range)
	assert.Equal(t, "2010-01", it.Range.Start)
	assert.Equal(t, "2015-01", it.Range.End)
	assert.Equal(t, 61, it.DurationMonths)
}

func TestParseEducationSectionDegree(t *testing.T) {
	text := `Київський політехнічний інститут
Повна вища освіта
Спеціальність: інженер-механік`

	items := ParseEducationSection(text, eduNow)
	require.Len(t, items, 1)
	assert.Equal(t, "повна вища", items[0].Degree)
	assert.Equal(t, "інженер-механік", items[0].Specialty)
}

func TestParseEducationSectionMultiple(t *testing.T) {
	text := `Автотранспортний технікум
з 2005 по 2008
Курси водіїв-міжнародників
з 2012 по 2012`

	items := ParseEducationSection(text, eduNow)
	require.Len(t, items, 2)
	assert.Equal(t, "Автотранспортний технікум", items[0].Title)
	assert.Equal(t, 37, items[0].DurationMonths)
	assert.Equal(t, "Курси водіїв-міжнародників", items[1].Title)
	assert.Equal(t, 1, items[1].DurationMonths)
}

func TestParseEducationSectionEmpty(t *testing.T) {
	assert.Empty(t, ParseEducationSection("", eduNow))
}
