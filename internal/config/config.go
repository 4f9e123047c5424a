// Package config provides configuration loading and validation for the CLI.
// Values come from the environment (optionally seeded by a .env file), with
// an optional JSON file for scraper overrides; every optional setting has a
// documented default.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// DB holds PostgreSQL connection parameters.
type DB struct {
	Host     string `validate:"required"`
	Port     int    `validate:"min=1,max=65535"`
	User     string `validate:"required"`
	Password string
	Name     string `validate:"required"`
	SSLMode  string `validate:"oneof=disable allow prefer require verify-ca verify-full"`
}

// URL renders the pgx connection string.
func (d DB) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	return u.String()
}

// Scraper holds crawl behavior settings.
type Scraper struct {
	BaseURL          string `validate:"required,url"`
	CategoryCityPath string `validate:"required"`
	RequestTimeout   time.Duration
	PageDelay        time.Duration
	ResumeDelay      time.Duration
	UserAgent        string
	PayloadMode      string `validate:"oneof=raw raw_cleaned raw_cleaned_parsed"`
}

// Settings is the full toolkit configuration.
type Settings struct {
	DB      DB
	Scraper Scraper
}

// fileOverrides mirrors the optional JSON config file. Delay values are
// seconds, matching the historical file format.
type fileOverrides struct {
	BaseURL           string   `json:"base_url,omitempty"`
	CategoryCityPath  string   `json:"category_city_path,omitempty"`
	RequestTimeoutSec *float64 `json:"request_timeout,omitempty"`
	PageDelaySec      *float64 `json:"sleep_between_pages,omitempty"`
	ResumeDelaySec    *float64 `json:"sleep_between_resumes,omitempty"`
	UserAgent         string   `json:"user_agent,omitempty"`
	PayloadMode       string   `json:"payload_mode,omitempty"`
}

// Load builds Settings from defaults, the optional JSON file named by
// WORKUA_CONFIG, and environment variable overrides, in that order.
func Load() (*Settings, error) {
	s := &Settings{
		DB: DB{
			Host:     envOr("DB_HOST", "localhost"),
			Port:     envInt("DB_PORT", 5432),
			User:     envOr("DB_USER", "postgres"),
			Password: envOr("DB_PASSWORD", ""),
			Name:     envOr("DB_NAME", "resume_search"),
			SSLMode:  envOr("DB_SSLMODE", "prefer"),
		},
		Scraper: Scraper{
			BaseURL:          "https://www.work.ua/",
			CategoryCityPath: "resumes-kyiv-auto-transport/",
			RequestTimeout:   10 * time.Second,
			PageDelay:        2 * time.Second,
			ResumeDelay:      1 * time.Second,
			UserAgent:        "workua-toolkit/1.0",
			PayloadMode:      "raw_cleaned_parsed",
		},
	}

	if path := os.Getenv("WORKUA_CONFIG"); path != "" {
		if err := applyFile(s, path); err != nil {
			return nil, err
		}
	}

	s.Scraper.BaseURL = envOr("WORKUA_BASE_URL", s.Scraper.BaseURL)
	s.Scraper.CategoryCityPath = envOr("WORKUA_CATEGORY_CITY_PATH", s.Scraper.CategoryCityPath)
	s.Scraper.UserAgent = envOr("WORKUA_USER_AGENT", s.Scraper.UserAgent)
	s.Scraper.PayloadMode = envOr("WORKUA_PAYLOAD_MODE", s.Scraper.PayloadMode)
	s.Scraper.RequestTimeout = envSeconds("WORKUA_REQUEST_TIMEOUT", s.Scraper.RequestTimeout)
	s.Scraper.PageDelay = envSeconds("WORKUA_PAGE_DELAY", s.Scraper.PageDelay)
	s.Scraper.ResumeDelay = envSeconds("WORKUA_RESUME_DELAY", s.Scraper.ResumeDelay)

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the settings against their declared constraints.
func (s *Settings) Validate() error {
	v := validator.New()
	if err := v.Struct(s.DB); err != nil {
		return fmt.Errorf("invalid database config: %w", err)
	}
	if err := v.Struct(s.Scraper); err != nil {
		return fmt.Errorf("invalid scraper config: %w", err)
	}
	return nil
}

func applyFile(s *Settings, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var f fileOverrides
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse config JSON %s: %w", path, err)
	}

	if f.BaseURL != "" {
		s.Scraper.BaseURL = f.BaseURL
	}
	if f.CategoryCityPath != "" {
		s.Scraper.CategoryCityPath = f.CategoryCityPath
	}
	if f.UserAgent != "" {
		s.Scraper.UserAgent = f.UserAgent
	}
	if f.PayloadMode != "" {
		s.Scraper.PayloadMode = f.PayloadMode
	}
	if f.RequestTimeoutSec != nil {
		s.Scraper.RequestTimeout = secondsToDuration(*f.RequestTimeoutSec)
	}
	if f.PageDelaySec != nil {
		s.Scraper.PageDelay = secondsToDuration(*f.PageDelaySec)
	}
	if f.ResumeDelaySec != nil {
		s.Scraper.ResumeDelay = secondsToDuration(*f.ResumeDelaySec)
	}
	return nil
}

func secondsToDuration(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func envInt(name string, fallback int) int {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envSeconds(name string, fallback time.Duration) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	sec, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return secondsToDuration(sec)
}
