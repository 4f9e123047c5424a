package db

import "time"

// Resume is a stored resume row. Parsed and Processed hold the payload's
// structured fields and the pipeline output as raw JSON.
type Resume struct {
	ID          int64      `json:"id"`
	SourceURL   string     `json:"source_url"`
	SchemaVer   string     `json:"schema_ver"`
	RunID       string     `json:"run_id"`
	ParseMode   string     `json:"parse_mode"`
	PayloadMode string     `json:"payload_mode"`
	RawHTML     *string    `json:"raw_html,omitempty"`
	CleanedText *string    `json:"cleaned_text,omitempty"`
	Parsed      []byte     `json:"parsed,omitempty"`
	Processed   []byte     `json:"processed,omitempty"`
	Warnings    []string   `json:"warnings"`
	ScrapedAt   *time.Time `json:"scraped_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// StoreStats summarizes the table contents
type StoreStats struct {
	Total       int64 `json:"total"`
	Parsed      int64 `json:"parsed"`
	Processed   int64 `json:"processed"`
	Unprocessed int64 `json:"unprocessed"`
}

// ResumeFilters holds optional filters for listing resumes
type ResumeFilters struct {
	RunID         string
	OnlyUnprocess bool
	Limit         int
}
