// Package htmltext converts resume markup into a whitespace-normalized text
// representation that keeps the line and section boundaries downstream regex
// parsing anchors on.
package htmltext

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	reSpaceBeforeNL = regexp.MustCompile(`[ \t]+\n`)
	reSpaceAfterNL  = regexp.MustCompile(`\n[ \t]+`)
	reManySpaces    = regexp.MustCompile(`[ \t]{2,}`)
	reManyNewlines  = regexp.MustCompile(`\n{3,}`)
	reEmptyBullet   = regexp.MustCompile(`\n•[ \t]*\n`)
)

// ToText converts markup to text while preserving structure:
// h1-h4 act as section separators, dt/dd pairs become "Key: Value" lines,
// li become "• item" bullets and <br> become line breaks.
func ToText(markup string) (string, error) {
	if strings.TrimSpace(markup) == "" {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	// Drop non-content markup and print-hidden UI noise.
	doc.Find("script, style, noscript, .hidden-print").Remove()

	doc.Find("br").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithHtml("\n")
	})

	// dt/dd pairs become "Key: Value" lines, which the label parsers rely on.
	doc.Find("dt").Each(func(_ int, s *goquery.Selection) {
		key := strings.TrimSuffix(strings.TrimSpace(s.Text()), ":")
		val := ""
		dd := s.NextFiltered("dd")
		if dd.Length() > 0 {
			val = strings.TrimSpace(dd.Text())
			dd.Remove()
		}
		s.ReplaceWithHtml("\n" + html.EscapeString(key+": "+val) + "\n")
	})

	// Headers demarcate logical sections.
	doc.Find("h1, h2, h3, h4").Each(func(_ int, s *goquery.Selection) {
		txt := strings.TrimSpace(s.Text())
		if txt == "" {
			s.Remove()
			return
		}
		s.ReplaceWithHtml("\n\n" + html.EscapeString(txt) + "\n")
	})

	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		txt := strings.TrimSpace(s.Text())
		if txt == "" {
			s.Remove()
			return
		}
		s.ReplaceWithHtml("\n" + html.EscapeString(txt) + "\n")
	})

	doc.Find("li").Each(func(_ int, s *goquery.Selection) {
		txt := strings.TrimSpace(s.Text())
		if txt == "" {
			s.Remove()
			return
		}
		s.ReplaceWithHtml("\n• " + html.EscapeString(txt) + "\n")
	})

	return Clean(doc.Text()), nil
}

// Clean normalizes whitespace while keeping line breaks. It is idempotent:
// Clean(Clean(x)) == Clean(x).
func Clean(text string) string {
	text = strings.ReplaceAll(text, " ", " ")
	text = strings.ReplaceAll(text, "​", "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	text = reSpaceBeforeNL.ReplaceAllString(text, "\n")
	text = reSpaceAfterNL.ReplaceAllString(text, "\n")
	text = reManySpaces.ReplaceAllString(text, " ")
	text = reManyNewlines.ReplaceAllString(text, "\n\n")
	text = reEmptyBullet.ReplaceAllString(text, "\n")

	// Drop status-line noise some pages leave behind.
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, ln := range lines {
		if strings.TrimSpace(ln) == "OK" {
			continue
		}
		kept = append(kept, ln)
	}
	text = strings.Join(kept, "\n")

	return strings.TrimSpace(text)
}
