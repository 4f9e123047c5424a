package observability

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dkachan/workua-toolkit/internal/pipeline"
	"github.com/dkachan/workua-toolkit/internal/scrape"
)

func TestPrintScrapeStats(t *testing.T) {
	var buf strings.Builder
	p := NewPrinter(&buf)

	p.PrintScrapeStats(scrape.Stats{PagesVisited: 2, URLsFound: 10, Yielded: 8, Failed: 1, SkippedFormats: 1})

	out := buf.String()
	assert.Contains(t, out, "Scrape summary")
	assert.Contains(t, out, "Yielded:         8")
	assert.Contains(t, out, "Skipped formats: 1")
}

func TestPrintProcessedTruncatesLists(t *testing.T) {
	var buf strings.Builder
	p := NewPrinter(&buf)

	res := &pipeline.ProcessedResume{
		TotalExperienceMonths: 24,
		TotalExperienceYears:  2.0,
	}
	for i := 0; i < 7; i++ {
		res.MonthsByPosition = append(res.MonthsByPosition, pipeline.PositionMonths{
			DisplayPosition: "Водій", Months: 12,
		})
	}

	p.PrintProcessed("https://www.work.ua/resumes/1/", res)

	out := buf.String()
	assert.Contains(t, out, "24 months")
	assert.Contains(t, out, "and 2 more")
}

func TestPrintPayloadUnknownName(t *testing.T) {
	var buf strings.Builder
	p := NewPrinter(&buf)

	p.PrintPayload(&scrape.Payload{SourceURL: "https://www.work.ua/resumes/1/"})
	assert.Contains(t, buf.String(), "unknown")
}
