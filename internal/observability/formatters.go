// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/dkachan/workua-toolkit/internal/pipeline"
	"github.com/dkachan/workua-toolkit/internal/scrape"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		runes := []rune(line)
		if len(runes) > boxWidth-4 {
			line = string(runes[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}
	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintScrapeStats prints aggregate crawl counters after a scrape run
func (p *Printer) PrintScrapeStats(stats scrape.Stats) {
	content := fmt.Sprintf(
		"Pages visited:   %d\nURLs found:      %d\nYielded:         %d\nFailed:          %d\nSkipped formats: %d",
		stats.PagesVisited, stats.URLsFound, stats.Yielded, stats.Failed, stats.SkippedFormats,
	)
	p.printBox("Scrape summary", content)
}

// PrintPayload prints a one-line view of a scraped payload
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) PrintPayload(payload *scrape.Payload) {
	name := "unknown"
	if payload.Parsed != nil {
		name = payload.Parsed.PersonName
	}
	fmt.Fprintf(p.out, "  ✓ %s (%s)\n", payload.SourceURL, name)
}

// PrintProcessed prints a summary box for one structuring result
func (p *Printer) PrintProcessed(sourceURL string, res *pipeline.ProcessedResume) {
	var b strings.Builder
	fmt.Fprintf(&b, "Work items: %d, education items: %d\n", len(res.WorkItems), len(res.EducationItems))
	fmt.Fprintf(&b, "Experience: %d months (%.1f years)\n", res.TotalExperienceMonths, res.TotalExperienceYears)

	shown := 0
	for _, pm := range res.MonthsByPosition {
		if shown >= maxItemsToShow {
			fmt.Fprintf(&b, "  … and %d more\n", len(res.MonthsByPosition)-shown)
			break
		}
		fmt.Fprintf(&b, "  %s: %d months\n", pm.DisplayPosition, pm.Months)
		shown++
	}
	if len(res.DrivingCategories) > 0 {
		fmt.Fprintf(&b, "Driving: %s", strings.Join(res.DrivingCategories, ", "))
	}
	p.printBox(sourceURL, strings.TrimRight(b.String(), "\n"))
}
