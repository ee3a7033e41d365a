// Package resolver fetches live course availability from the registrar's
// public schedule-of-classes results page.
package resolver

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	retry "github.com/codeGROOVE-dev/retry-go"
	"go.uber.org/zap"

	"github.com/bruinwatch/bruinwatch-api/internal/models"
)

const defaultBaseURL = "https://sa.ucla.edu/ro/Public/SOC/Results"

// Registrar scrapes the schedule-of-classes HTML for the COM SCI subject area.
// One Resolve call covers every requested course in a term with a single page
// fetch.
type Registrar struct {
	client  *http.Client
	logger  *zap.Logger
	baseURL string
}

// Option customises a Registrar.
type Option func(*Registrar)

// WithBaseURL overrides the registrar results page URL, used in tests.
func WithBaseURL(base string) Option {
	return func(r *Registrar) { r.baseURL = base }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Registrar) { r.client = client }
}

// NewRegistrar creates a registrar resolver with a bounded request timeout.
func NewRegistrar(timeout time.Duration, logger *zap.Logger, opts ...Option) *Registrar {
	r := &Registrar{
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
		baseURL: defaultBaseURL,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResultsURL builds the public results page URL for a term. It is embedded in
// alert messages so recipients land on the live listing.
func (r *Registrar) ResultsURL(term string) string {
	params := url.Values{}
	params.Set("t", term)
	params.Set("sBy", "subject")
	params.Set("subj", "COM SCI")
	return r.baseURL + "?" + params.Encode()
}

// Resolve fetches the results page for term once and returns the status of
// every requested course found on it. Courses absent from the page are simply
// missing from the result; the caller decides whether that is an error.
func (r *Registrar) Resolve(ctx context.Context, term string, courses []string) ([]models.CourseStatus, error) {
	wanted := make(map[string]bool, len(courses))
	for _, c := range courses {
		wanted[c] = true
	}

	body, err := r.fetch(ctx, r.ResultsURL(term))
	if err != nil {
		return nil, fmt.Errorf("fetch results page for term %s: %w", term, err)
	}

	all, err := parseResults(body)
	if err != nil {
		return nil, fmt.Errorf("parse results page for term %s: %w", term, err)
	}

	statuses := make([]models.CourseStatus, 0, len(courses))
	for _, status := range all {
		if wanted[status.CourseNumber] {
			statuses = append(statuses, status)
		}
	}
	r.logger.Debug("resolved course statuses",
		zap.String("term", term),
		zap.Int("requested", len(courses)),
		zap.Int("matched", len(statuses)))
	return statuses, nil
}

func (r *Registrar) fetch(ctx context.Context, pageURL string) (io.Reader, error) {
	var body []byte

	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("create request: %w", err))
			}
			req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36")
			req.Header.Set("Accept", "text/html,application/xhtml+xml")
			req.Header.Set("Accept-Language", "en-US,en;q=0.9")

			resp, err := r.client.Do(req)
			if err != nil {
				return fmt.Errorf("request failed: %w", err)
			}
			defer resp.Body.Close() //nolint:errcheck

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, pageURL)
			}
			body, err = io.ReadAll(io.LimitReader(resp.Body, 10<<20))
			if err != nil {
				return fmt.Errorf("read body: %w", err)
			}
			return nil
		},
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.MaxDelay(5*time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			r.logger.Warn("retrying results page fetch", zap.Uint("attempt", n), zap.Error(err))
		}),
	)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(body), nil
}
