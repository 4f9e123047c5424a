package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dkachan/workua-toolkit/internal/config"
	"github.com/dkachan/workua-toolkit/internal/db"
	"github.com/dkachan/workua-toolkit/internal/observability"
	"github.com/dkachan/workua-toolkit/internal/pipeline"
	"github.com/dkachan/workua-toolkit/internal/scrape"
	"github.com/dkachan/workua-toolkit/internal/similarity"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Structure stored or piped resume payloads",
	Long: "Run the regex structuring pipeline over parsed payloads. Reads unprocessed rows from " +
		"PostgreSQL by default, or NDJSON payloads from a file with --input, writing results as NDJSON.",
	RunE: runProcess,
}

var (
	processInput      string
	processRunID      string
	processLimit      int
	processWorkers    int
	processSimilarity string
	processVerbose    bool
)

func init() {
	processCmd.Flags().StringVarP(&processInput, "input", "i", "", "Read NDJSON payloads from this file instead of the database")
	processCmd.Flags().StringVar(&processRunID, "run-id", "", "Only process stored rows from this scrape run")
	processCmd.Flags().IntVar(&processLimit, "limit", 0, "Maximum rows to process (0 = default batch)")
	processCmd.Flags().IntVar(&processWorkers, "workers", 4, "Concurrent processing workers")
	processCmd.Flags().StringVar(&processSimilarity, "similarity", "none", "Fuzzy matching backend: none or jarowinkler")
	processCmd.Flags().BoolVarP(&processVerbose, "verbose", "v", false, "Print a summary box per processed resume")

	rootCmd.AddCommand(processCmd)
}

func newMatcher(name string) (similarity.Matcher, error) {
	switch name {
	case "", "none":
		return similarity.None(), nil
	case "jarowinkler":
		return similarity.JaroWinkler(), nil
	}
	return nil, fmt.Errorf("unknown similarity backend: %q", name)
}

func runProcess(cmd *cobra.Command, args []string) error {
	matcher, err := newMatcher(processSimilarity)
	if err != nil {
		return err
	}
	processor := pipeline.NewProcessor(pipeline.WithMatcher(matcher))

	if processInput != "" {
		return processFile(processor, processInput)
	}
	return processStored(cmd, processor)
}

// processFile structures payloads from an NDJSON file and writes one result
// object per input line to stdout.
func processFile(processor *pipeline.Processor, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(os.Stdout)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var payload scrape.Payload
		if err := json.Unmarshal(line, &payload); err != nil {
			return fmt.Errorf("failed to decode payload on line %d: %w", lineNo, err)
		}
		result := struct {
			SourceURL string                    `json:"source_url"`
			Processed *pipeline.ProcessedResume `json:"processed"`
		}{payload.SourceURL, processor.Process(&payload)}
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return nil
}

// processStored structures unprocessed database rows with a bounded worker
// pool and writes results back to their rows.
func processStored(cmd *cobra.Command, processor *pipeline.Processor) error {
	settings, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx := cmd.Context()
	store, err := db.Connect(ctx, settings.DB.URL())
	if err != nil {
		return err
	}
	defer store.Close()

	rows, err := store.ListResumes(ctx, db.ResumeFilters{
		RunID:         processRunID,
		OnlyUnprocess: true,
		Limit:         processLimit,
	})
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(os.Stderr, "Nothing to process")
		return nil
	}

	workers := processWorkers
	if workers < 1 {
		workers = 1
	}

	printer := observability.NewPrinter(os.Stderr)
	var mu sync.Mutex
	processed := 0
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, row := range rows {
		g.Go(func() error {
			payload, err := row.Payload()
			if err != nil {
				return fmt.Errorf("row %d: %w", row.ID, err)
			}
			result := processor.Process(payload)
			if err := store.SetProcessed(gctx, row.ID, result); err != nil {
				return err
			}
			mu.Lock()
			processed++
			if processVerbose {
				printer.PrintProcessed(row.SourceURL, result)
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Processed %d resumes\n", processed)
	return nil
}
