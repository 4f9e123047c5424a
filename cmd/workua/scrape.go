package main

import (
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dkachan/workua-toolkit/internal/config"
	"github.com/dkachan/workua-toolkit/internal/db"
	"github.com/dkachan/workua-toolkit/internal/observability"
	"github.com/dkachan/workua-toolkit/internal/scrape"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Stream resume payloads from work.ua listings",
	Long: "Scrape resumes by listing page range, until a target count, or from explicit URLs. " +
		"Payloads are written as NDJSON, one object per line, and can optionally be stored in PostgreSQL.",
	RunE: runScrape,
}

var (
	scrapePageFrom  int
	scrapePageTo    int
	scrapeTargetN   int
	scrapeStartPage int
	scrapeMaxPages  int
	scrapeURLs      []string
	scrapeSkipFirst int
	scrapeLimit     int
	scrapeMode      string
	scrapeOut       string
	scrapeStore     bool
	scrapeStrict    bool
	scrapeVerbose   bool
)

func init() {
	scrapeCmd.Flags().IntVar(&scrapePageFrom, "page-from", 1, "First listing page to visit")
	scrapeCmd.Flags().IntVar(&scrapePageTo, "page-to", 0, "Last listing page to visit")
	scrapeCmd.Flags().IntVar(&scrapeTargetN, "target-n", 0, "Stop after this many payloads, walking pages from --start-page")
	scrapeCmd.Flags().IntVar(&scrapeStartPage, "start-page", 1, "First listing page for --target-n mode")
	scrapeCmd.Flags().IntVar(&scrapeMaxPages, "max-pages", 0, "Page cap for --target-n mode (0 = no cap)")
	scrapeCmd.Flags().StringSliceVar(&scrapeURLs, "urls", nil, "Explicit resume URLs to fetch instead of walking listings")
	scrapeCmd.Flags().IntVar(&scrapeSkipFirst, "skip-first", 0, "Skip this many payload-producing resumes before yielding")
	scrapeCmd.Flags().IntVar(&scrapeLimit, "limit", 0, "Stop after this many payloads (0 = no limit)")
	scrapeCmd.Flags().StringVar(&scrapeMode, "payload-mode", "", "Payload fidelity: raw, raw_cleaned or raw_cleaned_parsed")
	scrapeCmd.Flags().StringVarP(&scrapeOut, "out", "o", "", "Write NDJSON to this file instead of stdout")
	scrapeCmd.Flags().BoolVar(&scrapeStore, "store", false, "Upsert payloads into PostgreSQL")
	scrapeCmd.Flags().BoolVar(&scrapeStrict, "strict", false, "Abort on the first per-resume error instead of skipping it")
	scrapeCmd.Flags().BoolVarP(&scrapeVerbose, "verbose", "v", false, "Print per-resume progress and a summary box")

	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	settings, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if scrapeMode != "" {
		settings.Scraper.PayloadMode = scrapeMode
	}
	mode, ok := scrape.ParsePayloadMode(settings.Scraper.PayloadMode)
	if !ok {
		return fmt.Errorf("invalid payload mode: %q", settings.Scraper.PayloadMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var out io.Writer = os.Stdout
	if scrapeOut != "" {
		f, err := os.Create(scrapeOut)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	var store *db.DB
	if scrapeStore {
		store, err = db.Connect(ctx, settings.DB.URL())
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Migrate(ctx); err != nil {
			return err
		}
	}

	scraper := scrape.New(settings.Scraper)
	opts := scrape.Options{
		Mode:      mode,
		SkipFirst: scrapeSkipFirst,
		Limit:     scrapeLimit,
		Dedupe:    true,
	}

	var seq iter.Seq2[*scrape.Payload, error]
	switch {
	case len(scrapeURLs) > 0:
		seq = scraper.ByURLs(ctx, scrapeURLs, opts)
	case scrapeTargetN > 0:
		seq = scraper.UntilN(ctx, scrapeTargetN, scrapeStartPage, scrapeMaxPages, opts)
	case scrapePageTo > 0:
		seq = scraper.ByPages(ctx, scrapePageFrom, scrapePageTo, opts)
	default:
		return fmt.Errorf("one of --urls, --target-n or --page-to must be provided")
	}

	printer := observability.NewPrinter(os.Stderr)
	enc := json.NewEncoder(out)
	for payload, err := range seq {
		if err != nil {
			if scrapeStrict {
				return err
			}
			fmt.Fprintf(os.Stderr, "scrape: %v\n", err)
			continue
		}
		if err := enc.Encode(payload); err != nil {
			return fmt.Errorf("failed to encode payload: %w", err)
		}
		if store != nil {
			if _, _, err := store.UpsertPayload(ctx, payload); err != nil {
				return err
			}
		}
		if scrapeVerbose {
			printer.PrintPayload(payload)
		}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	stats := scraper.Stats()
	if scrapeVerbose {
		printer.PrintScrapeStats(stats)
	} else {
		fmt.Fprintf(os.Stderr, "Done: %d yielded, %d failed, %d skipped formats, %d pages visited\n",
			stats.Yielded, stats.Failed, stats.SkippedFormats, stats.PagesVisited)
	}
	return nil
}
