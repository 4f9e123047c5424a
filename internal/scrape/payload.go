package scrape

import "time"

// SchemaVersion identifies the payload wire format.
const SchemaVersion = "resume_payload_v1"

// PayloadMode selects how much of a resume is carried in a Payload.
type PayloadMode string

const (
	// ModeRaw keeps only the raw markup.
	ModeRaw PayloadMode = "raw"
	// ModeRawCleaned also keeps the normalized text representation.
	ModeRawCleaned PayloadMode = "raw_cleaned"
	// ModeRawCleanedParsed also keeps the best-effort extracted fields.
	ModeRawCleanedParsed PayloadMode = "raw_cleaned_parsed"
)

// ParsePayloadMode maps a CLI/config string to a PayloadMode.
func ParsePayloadMode(s string) (PayloadMode, bool) {
	switch PayloadMode(s) {
	case ModeRaw, ModeRawCleaned, ModeRawCleanedParsed:
		return PayloadMode(s), true
	}
	return "", false
}

// Meta carries provenance information for one scraped payload.
type Meta struct {
	RunID       string    `json:"run_id,omitempty"`
	ParseMode   string    `json:"parse_mode,omitempty"`
	PayloadMode string    `json:"payload_mode,omitempty"`
	Warnings    []string  `json:"warnings,omitempty"`
	ScrapedAt   time.Time `json:"scraped_at"`
}

// Payload is the transport unit yielded by the scraper. It is constructed
// once per resume and never mutated after being yielded. Field presence is
// monotonic in fidelity: Parsed implies CleanedText implies RawHTML.
type Payload struct {
	SchemaVersion string        `json:"schema_version"`
	SourceURL     string        `json:"source_url"`
	RawHTML       string        `json:"raw_html,omitempty"`
	CleanedText   string        `json:"cleaned_text,omitempty"`
	Parsed        *ParsedFields `json:"parsed,omitempty"`
	Meta          Meta          `json:"meta"`
}

// ParsedFields is the best-effort flat field set extracted from a resume
// page. Absent optional fields are nil rather than zero values, so absence
// stays a checkable state.
type ParsedFields struct {
	PersonName string     `json:"person_name"`
	ResumeDate *time.Time `json:"resume_date,omitempty"`
	Position   *string    `json:"position,omitempty"`
	Salary     *int       `json:"salary,omitempty"`

	FullTime bool `json:"full_time"`
	PartTime bool `json:"part_time"`
	FromHome bool `json:"from_home"`

	City                *string  `json:"city,omitempty"`
	ReadyToWork         []string `json:"ready_to_work,omitempty"`
	ConsideredPositions []string `json:"considered_positions,omitempty"`
	Disability          *string  `json:"disability,omitempty"`
	Veteran             bool     `json:"veteran"`

	WorkExperience      *string  `json:"work_experience,omitempty"`
	Education           *string  `json:"education,omitempty"`
	AdditionalEducation *string  `json:"additional_education,omitempty"`
	Skills              []string `json:"skills,omitempty"`
	Languages           []string `json:"languages,omitempty"`
	Recommendations     *string  `json:"recommendations,omitempty"`
	AdditionalInfo      *string  `json:"additional_info,omitempty"`
}
