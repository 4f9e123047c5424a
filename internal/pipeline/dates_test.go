package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDateToken(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"03.2018", "2018-03", true},
		{"15.03.2018", "2018-03", true},
		{"2018-03", "2018-03", true},
		{"березня 2018", "2018-03", true},
		{"березень 2018", "2018-03", true},
		{"октября 2019", "2019-10", true},
		{"2018", "2018-01", true},
		{"нині", Present, true},
		{"present", Present, true},
		{"Тепер", Present, true},
		{"13.2018", "", false},
		{"колись давно", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := NormalizeDateToken(tc.in)
		assert.Equal(t, tc.ok, ok, "token %q", tc.in)
		assert.Equal(t, tc.want, got, "token %q", tc.in)
	}
}

func TestMonthsBetweenInclusive(t *testing.T) {
	now := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, MonthsBetween("2018-03", "2018-03", now))
	assert.Equal(t, 3, MonthsBetween("2020-01", "2020-03", now))
	assert.Equal(t, 12, MonthsBetween("2019-01", "2019-12", now))
	assert.Equal(t, 0, MonthsBetween("2020-05", "2020-01", now))
	assert.Equal(t, 0, MonthsBetween("garbage", "2020-01", now))
}

func TestMonthsBetweenPresentUsesInjectedClock(t *testing.T) {
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 6, MonthsBetween("2024-01", Present, now))

	later := now.AddDate(1, 0, 0)
	assert.Equal(t, 18, MonthsBetween("2024-01", Present, later))
}

func TestMonthsToYears(t *testing.T) {
	assert.Equal(t, 0.0, monthsToYears(0))
	assert.Equal(t, 1.0, monthsToYears(12))
	assert.Equal(t, 4.7, monthsToYears(56))
}
