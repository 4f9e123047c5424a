package pipeline

// DateRange is a parsed period. Start and End use "YYYY-MM"; End may be the
// Present sentinel for open-ended positions.
type DateRange struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// StructuredItem is one normalized work-experience or education record
// derived from a single contiguous free-text block. Items never merge
// across blocks.
type StructuredItem struct {
	Title     string `json:"title"`
	Company   string `json:"company,omitempty"`
	City      string `json:"city,omitempty"`
	Industry  string `json:"industry,omitempty"`
	Degree    string `json:"degree,omitempty"`
	Specialty string `json:"specialty,omitempty"`

	Range          *DateRange `json:"date_range,omitempty"`
	DurationMonths int        `json:"duration_months"`

	Duties     []string `json:"duties,omitempty"`
	DutiesText string   `json:"duties_text,omitempty"`
	RawBlock   string   `json:"raw_block,omitempty"`

	Warnings []string `json:"warnings,omitempty"`
}

// PositionMonths aggregates experience months under one canonical position.
type PositionMonths struct {
	Position        string   `json:"position"`
	DisplayPosition string   `json:"display_position"`
	Months          int      `json:"months"`
	Years           float64  `json:"years,omitempty"`
	Titles          []string `json:"titles,omitempty"`
}

// ProcessedResume is the aggregate structuring output for one payload.
//
// TotalExperienceMonths sums item durations without overlap correction:
// overlapping concurrent positions are double-counted. This is an explicit
// policy choice carried over from the observed data, not an oversight.
type ProcessedResume struct {
	WorkItems      []StructuredItem `json:"work_items"`
	EducationItems []StructuredItem `json:"education_items"`

	TotalExperienceMonths int     `json:"total_experience_months"`
	TotalExperienceYears  float64 `json:"total_experience_years,omitempty"`
	TotalEducationMonths  int     `json:"total_education_months"`

	NormalizedSkills  []string         `json:"normalized_skills,omitempty"`
	SkillMonths       map[string]int   `json:"skill_months,omitempty"`
	MonthsByPosition  []PositionMonths `json:"months_by_position,omitempty"`
	DrivingCategories []string         `json:"driving_categories,omitempty"`

	Warnings []string `json:"warnings,omitempty"`
}
