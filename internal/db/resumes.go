package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dkachan/workua-toolkit/internal/scrape"
)

// UpsertPayload stores a scraped payload keyed by its source URL. A second
// scrape of the same resume updates the row in place. Returns the row ID
// and whether a new row was inserted.
func (db *DB) UpsertPayload(ctx context.Context, p *scrape.Payload) (int64, bool, error) {
	if p == nil {
		return 0, false, fmt.Errorf("payload is nil")
	}

	var parsedJSON []byte
	if p.Parsed != nil {
		b, err := json.Marshal(p.Parsed)
		if err != nil {
			return 0, false, fmt.Errorf("failed to marshal parsed fields: %w", err)
		}
		parsedJSON = b
	}
	warningsJSON, err := json.Marshal(warningsOrEmpty(p.Meta.Warnings))
	if err != nil {
		return 0, false, fmt.Errorf("failed to marshal warnings: %w", err)
	}

	var id int64
	var inserted bool
	err = db.pool.QueryRow(ctx,
		`INSERT INTO resumes
			(source_url, schema_ver, run_id, parse_mode, payload_mode,
			 raw_html, cleaned_text, parsed, warnings, scraped_at)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8, $9, $10)
		 ON CONFLICT (source_url) DO UPDATE SET
			schema_ver = $2, run_id = $3, parse_mode = $4, payload_mode = $5,
			raw_html = NULLIF($6, ''), cleaned_text = NULLIF($7, ''),
			parsed = $8, warnings = $9, scraped_at = $10, updated_at = NOW()
		 RETURNING id, (xmax = 0)`,
		p.SourceURL, p.SchemaVersion, p.Meta.RunID, p.Meta.ParseMode, p.Meta.PayloadMode,
		p.RawHTML, p.CleanedText, parsedJSON, warningsJSON, p.Meta.ScrapedAt,
	).Scan(&id, &inserted)
	if err != nil {
		return 0, false, fmt.Errorf("failed to upsert resume %s: %w", p.SourceURL, err)
	}
	return id, inserted, nil
}

// SetProcessed attaches pipeline output to a stored resume
func (db *DB) SetProcessed(ctx context.Context, id int64, processed any) error {
	jsonBytes, err := json.Marshal(processed)
	if err != nil {
		return fmt.Errorf("failed to marshal processed result: %w", err)
	}
	result, err := db.pool.Exec(ctx,
		`UPDATE resumes SET processed = $1, updated_at = NOW() WHERE id = $2`,
		jsonBytes, id,
	)
	if err != nil {
		return fmt.Errorf("failed to set processed result: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("resume not found: %d", id)
	}
	return nil
}

// GetBySourceURL retrieves a resume row by its source URL
func (db *DB) GetBySourceURL(ctx context.Context, sourceURL string) (*Resume, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT id, source_url, schema_ver, run_id, parse_mode, payload_mode,
			raw_html, cleaned_text, parsed, processed, warnings,
			scraped_at, created_at, updated_at
		 FROM resumes WHERE source_url = $1`,
		sourceURL,
	)
	r, err := scanResume(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get resume: %w", err)
	}
	return r, nil
}

// ListResumes retrieves resume rows with optional filters
func (db *DB) ListResumes(ctx context.Context, filters ResumeFilters) ([]Resume, error) {
	if filters.Limit == 0 {
		filters.Limit = 100
	}

	query := `SELECT id, source_url, schema_ver, run_id, parse_mode, payload_mode,
			raw_html, cleaned_text, parsed, processed, warnings,
			scraped_at, created_at, updated_at
		FROM resumes WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.RunID != "" {
		query += fmt.Sprintf(" AND run_id = $%d", argNum)
		args = append(args, filters.RunID)
		argNum++
	}
	if filters.OnlyUnprocess {
		query += " AND processed IS NULL AND parsed IS NOT NULL"
	}

	query += fmt.Sprintf(" ORDER BY created_at ASC LIMIT $%d", argNum)
	args = append(args, filters.Limit)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	defer rows.Close()

	var resumes []Resume
	for rows.Next() {
		r, err := scanResume(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resume: %w", err)
		}
		resumes = append(resumes, *r)
	}
	return resumes, nil
}

// Stats reports row counts by processing state
func (db *DB) Stats(ctx context.Context) (*StoreStats, error) {
	var s StoreStats
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*),
			COUNT(*) FILTER (WHERE parsed IS NOT NULL),
			COUNT(*) FILTER (WHERE processed IS NOT NULL),
			COUNT(*) FILTER (WHERE processed IS NULL AND parsed IS NOT NULL)
		 FROM resumes`,
	).Scan(&s.Total, &s.Parsed, &s.Processed, &s.Unprocessed)
	if err != nil {
		return nil, fmt.Errorf("failed to get store stats: %w", err)
	}
	return &s, nil
}

// ParsedFields decodes the stored parsed JSON, or returns nil when the row
// carries none.
func (r *Resume) ParsedFields() (*scrape.ParsedFields, error) {
	if len(r.Parsed) == 0 {
		return nil, nil
	}
	var parsed scrape.ParsedFields
	if err := json.Unmarshal(r.Parsed, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode parsed fields: %w", err)
	}
	return &parsed, nil
}

// Payload rebuilds a scrape.Payload from the stored row
func (r *Resume) Payload() (*scrape.Payload, error) {
	parsed, err := r.ParsedFields()
	if err != nil {
		return nil, err
	}
	p := &scrape.Payload{
		SchemaVersion: r.SchemaVer,
		SourceURL:     r.SourceURL,
		Parsed:        parsed,
	}
	if r.RawHTML != nil {
		p.RawHTML = *r.RawHTML
	}
	if r.CleanedText != nil {
		p.CleanedText = *r.CleanedText
	}
	p.Meta.RunID = r.RunID
	p.Meta.ParseMode = r.ParseMode
	p.Meta.PayloadMode = r.PayloadMode
	p.Meta.Warnings = r.Warnings
	if r.ScrapedAt != nil {
		p.Meta.ScrapedAt = *r.ScrapedAt
	}
	return p, nil
}

func scanResume(row pgx.Row) (*Resume, error) {
	var r Resume
	var warningsJSON []byte
	err := row.Scan(
		&r.ID, &r.SourceURL, &r.SchemaVer, &r.RunID, &r.ParseMode, &r.PayloadMode,
		&r.RawHTML, &r.CleanedText, &r.Parsed, &r.Processed, &warningsJSON,
		&r.ScrapedAt, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(warningsJSON) > 0 {
		if err := json.Unmarshal(warningsJSON, &r.Warnings); err != nil {
			return nil, fmt.Errorf("failed to decode warnings: %w", err)
		}
	}
	return &r, nil
}

func warningsOrEmpty(w []string) []string {
	if w == nil {
		return []string{}
	}
	return w
}
