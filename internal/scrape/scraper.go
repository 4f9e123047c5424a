// Package scrape streams work.ua resume payloads. The scraper walks listing
// pages, fetches each resume serially with a politeness delay and yields
// payloads lazily: nothing is fetched before the consumer asks for it and
// memory stays bounded to one in-flight resume.
package scrape

import (
	"context"
	"iter"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/dkachan/workua-toolkit/internal/config"
	"github.com/dkachan/workua-toolkit/internal/fetch"
)

// Options tune a single scrape stream.
type Options struct {
	Mode      PayloadMode
	SkipFirst int
	Limit     int // 0 means no limit
	Dedupe    bool
}

// DefaultOptions returns the options used when callers pass the zero value.
func DefaultOptions() Options {
	return Options{Mode: ModeRawCleanedParsed, Dedupe: true}
}

// Stats counts what a scraper has seen across all of its streams.
type Stats struct {
	PagesVisited   int
	URLsFound      int
	Yielded        int
	Failed         int
	SkippedFormats int
}

// Scraper fetches and extracts resume payloads. It holds no per-stream
// state other than aggregate counters; each strategy call produces a fresh,
// finite, non-restartable sequence.
type Scraper struct {
	settings config.Scraper
	opts     *fetch.Options
	stats    Stats
	now      func() time.Time
}

// New builds a Scraper around the given settings, sharing one HTTP client
// across all requests.
func New(settings config.Scraper) *Scraper {
	return &Scraper{
		settings: settings,
		opts: &fetch.Options{
			Timeout:   settings.RequestTimeout,
			UserAgent: settings.UserAgent,
			Client:    fetch.NewClient(settings.RequestTimeout),
		},
		now: time.Now,
	}
}

// Stats returns a copy of the aggregate counters.
func (s *Scraper) Stats() Stats {
	return s.stats
}

// ByPages yields one payload per resume found on listing pages
// pageFrom..pageTo inclusive, in page order and in document order within a
// page. Per-resume failures are yielded as errors so the consumer decides
// between skip-and-continue and abort.
func (s *Scraper) ByPages(ctx context.Context, pageFrom, pageTo int, opts Options) iter.Seq2[*Payload, error] {
	opts = withDefaults(opts)
	return func(yield func(*Payload, error) bool) {
		em := s.newEmitter(opts)
		for page := pageFrom; page <= pageTo; page++ {
			urls, err := s.listingURLs(ctx, page)
			if err != nil {
				if !yield(nil, err) {
					return
				}
				continue
			}
			for _, u := range urls {
				if !em.emit(ctx, yield, u) {
					return
				}
				if em.done() {
					return
				}
			}
			if page < pageTo && !s.pause(ctx, s.settings.PageDelay) {
				return
			}
		}
	}
}

// UntilN scans listing pages starting at startPage and yields payloads until
// targetN resumes have been produced or maxPages pages have been scanned
// (maxPages 0 means no cap). Running out of listing pages ends the stream
// early without error.
func (s *Scraper) UntilN(ctx context.Context, targetN, startPage, maxPages int, opts Options) iter.Seq2[*Payload, error] {
	opts = withDefaults(opts)
	opts.Limit = targetN
	return func(yield func(*Payload, error) bool) {
		if targetN <= 0 {
			return
		}
		page := startPage
		if page < 1 {
			page = 1
		}
		em := s.newEmitter(opts)
		scanned := 0
		for {
			if maxPages > 0 && scanned >= maxPages {
				log.Printf("scrape: stopped by max_pages=%d (page=%d yielded=%d)", maxPages, page, em.yielded)
				return
			}
			urls, err := s.listingURLs(ctx, page)
			if err != nil {
				if !yield(nil, err) {
					return
				}
			}
			scanned++
			if err == nil && len(urls) == 0 {
				log.Printf("scrape: no more resume links (page=%d yielded=%d)", page, em.yielded)
				return
			}
			for _, u := range urls {
				if !em.emit(ctx, yield, u) {
					return
				}
				if em.done() {
					return
				}
			}
			page++
			if !s.pause(ctx, s.settings.PageDelay) {
				return
			}
		}
	}
}

// ByURLs yields one payload per resume URL, in input order.
func (s *Scraper) ByURLs(ctx context.Context, urls []string, opts Options) iter.Seq2[*Payload, error] {
	opts = withDefaults(opts)
	return func(yield func(*Payload, error) bool) {
		em := s.newEmitter(opts)
		for _, u := range urls {
			if !em.emit(ctx, yield, u) {
				return
			}
			if em.done() {
				return
			}
		}
	}
}

// Collect eagerly drains a stream into memory, dropping per-resume errors.
// Prefer streaming for jobs of unbounded size: collection is O(n) memory
// with no cap.
func Collect(seq iter.Seq2[*Payload, error]) []*Payload {
	var out []*Payload
	for p, err := range seq {
		if err != nil || p == nil {
			continue
		}
		out = append(out, p)
	}
	return out
}

func withDefaults(opts Options) Options {
	if opts.Mode == "" {
		opts.Mode = ModeRawCleanedParsed
	}
	return opts
}

// emitter tracks per-stream skip accounting. A resume consumes a skip_first
// slot only if it would otherwise have produced a payload; skipped formats
// and failed fetches never count.
type emitter struct {
	s       *Scraper
	opts    Options
	runID   string
	seen    map[string]struct{}
	skipped int
	yielded int
}

func (s *Scraper) newEmitter(opts Options) *emitter {
	em := &emitter{s: s, opts: opts, runID: uuid.NewString()}
	if opts.Dedupe {
		em.seen = make(map[string]struct{})
	}
	return em
}

func (em *emitter) done() bool {
	return em.opts.Limit > 0 && em.yielded >= em.opts.Limit
}

// emit fetches and yields one resume. It returns false when the consumer
// stopped the stream or the context was cancelled.
func (em *emitter) emit(ctx context.Context, yield func(*Payload, error) bool, rawURL string) bool {
	s := em.s
	u := s.normalizeResumeURL(rawURL)

	if em.seen != nil {
		if _, dup := em.seen[u]; dup {
			return true
		}
		em.seen[u] = struct{}{}
	}

	res, err := fetch.Page(ctx, u, s.opts)
	if err != nil {
		s.stats.Failed++
		return yield(nil, err)
	}

	meta := Meta{RunID: em.runID, ScrapedAt: s.now().UTC().Truncate(time.Second)}
	p, err := BuildPayload(res.HTML, u, em.opts.Mode, meta)
	if err != nil {
		if IsSkippedFormat(err) {
			s.stats.SkippedFormats++
			log.Printf("scrape: %v", err)
			return s.pause(ctx, s.settings.ResumeDelay)
		}
		s.stats.Failed++
		return yield(nil, err)
	}

	if em.skipped < em.opts.SkipFirst {
		em.skipped++
		return s.pause(ctx, s.settings.ResumeDelay)
	}

	s.stats.Yielded++
	em.yielded++
	if !yield(p, nil) {
		return false
	}
	return s.pause(ctx, s.settings.ResumeDelay)
}

func (s *Scraper) listingURLs(ctx context.Context, page int) ([]string, error) {
	s.stats.PagesVisited++
	url := s.listPageURL(page)
	res, err := fetch.Page(ctx, url, s.opts)
	if err != nil {
		return nil, err
	}
	urls, err := resumeURLsFromListing(res.HTML, s.baseURL())
	if err != nil {
		return nil, err
	}
	s.stats.URLsFound += len(urls)
	return urls, nil
}

func (s *Scraper) baseURL() string {
	return strings.TrimRight(s.settings.BaseURL, "/") + "/"
}

func (s *Scraper) listPageURL(page int) string {
	return s.baseURL() + strings.TrimLeft(s.settings.CategoryCityPath, "/") + "?page=" + strconv.Itoa(page)
}

func (s *Scraper) normalizeResumeURL(u string) string {
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return s.baseURL() + strings.TrimLeft(u, "/")
}

// pause sleeps for the politeness delay, returning false when the context
// is cancelled first.
func (s *Scraper) pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// resumeURLsFromListing enumerates resume links on one listing page,
// deduplicated in document order.
func resumeURLsFromListing(html, baseURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var urls []string
	seen := make(map[string]struct{})
	doc.Find("div.resume-link a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if href == "" {
			return
		}
		abs := href
		if !strings.HasPrefix(abs, "http") {
			abs = strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(href, "/")
		}
		if !strings.Contains(abs, "/resumes/") {
			return
		}
		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}
		urls = append(urls, abs)
	})
	return urls, nil
}
