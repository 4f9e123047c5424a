// Package fetch retrieves listing and resume pages over HTTP.
// It applies a bounded per-request timeout and reports typed failures;
// retry and pacing policy belong to the caller.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 10 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "workua-toolkit/1.0"

// ErrorKind classifies a fetch failure.
type ErrorKind int

const (
	// KindInvalidURL means the URL could not be parsed or lacks scheme/host.
	KindInvalidURL ErrorKind = iota
	// KindNetwork means the request failed at the transport level
	// (DNS, connect, timeout, body read).
	KindNetwork
	// KindStatus means the server answered with a non-200 status.
	KindStatus
	// KindEmptyBody means the server answered 200 with an empty body.
	KindEmptyBody
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidURL:
		return "invalid url"
	case KindNetwork:
		return "network"
	case KindStatus:
		return "status"
	case KindEmptyBody:
		return "empty body"
	}
	return "unknown"
}

// Error represents a failed page fetch.
type Error struct {
	URL        string
	Kind       ErrorKind
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("fetch error for %s: HTTP status %d", e.URL, e.StatusCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Kind, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Result holds the raw content of a fetched page.
type Result struct {
	URL         string
	HTML        string
	ContentType string
	StatusCode  int
}

// Options configures the fetch behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string

	// Client, when set, is reused across requests. Fetchers that scan many
	// pages share one client so connections are pooled.
	Client *http.Client
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// Page retrieves the markup of a single page.
// The returned error, if any, is always a *Error.
func Page(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &Error{URL: urlStr, Kind: KindInvalidURL, Cause: err}
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, &Error{URL: urlStr, Kind: KindInvalidURL, Cause: err}
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{URL: urlStr, Kind: KindNetwork, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{URL: urlStr, Kind: KindNetwork, Cause: err}
	}

	result := &Result{
		URL:         urlStr,
		HTML:        string(bodyBytes),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}

	if resp.StatusCode != http.StatusOK {
		return result, &Error{URL: urlStr, Kind: KindStatus, StatusCode: resp.StatusCode}
	}
	if strings.TrimSpace(result.HTML) == "" {
		return result, &Error{URL: urlStr, Kind: KindEmptyBody}
	}

	return result, nil
}

// NewClient builds an HTTP client with the given per-request timeout,
// suitable for passing via Options.Client.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}
