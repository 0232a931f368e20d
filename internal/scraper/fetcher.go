package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"jobmate/jobhunter-service/internal/model"
)

const (
	httpTimeout  = 30 * time.Second
	maxBodyBytes = 32 << 20
	userAgent    = "jobhunter-service/1.0"
)

// FetchError reports a failed snapshot retrieval: transport failure, non-2xx
// status or an unusable payload. It is fatal for the cycle only.
type FetchError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

var (
	errMissingJobs     = errors.New(`payload has no top-level "jobs" field`)
	errPayloadTooLarge = fmt.Errorf("payload exceeds %d bytes", maxBodyBytes)
)

// RemotiveFetcher retrieves the full listing snapshot from the Remotive
// remote-jobs API. The endpoint returns everything in one response.
type RemotiveFetcher struct {
	URL    string
	client *http.Client
}

// NewRemotiveFetcher constructs a fetcher with a dedicated HTTP client.
func NewRemotiveFetcher(url string) *RemotiveFetcher {
	return &RemotiveFetcher{
		URL:    url,
		client: &http.Client{Timeout: httpTimeout},
	}
}

// remotiveResponse mirrors the top-level Remotive JSON response. Jobs is a
// pointer so a missing field can be told apart from an empty list.
type remotiveResponse struct {
	JobCount int              `json:"job-count"`
	Jobs     *[]model.Listing `json:"jobs"`
}

// FetchAll performs one GET and decodes every listing. A payload that does
// not decode completely is rejected as a whole.
func (f *RemotiveFetcher) FetchAll(ctx context.Context) ([]model.Listing, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, &FetchError{Op: "request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{Op: "http GET", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, &FetchError{Op: "read body", Err: err}
	}
	if len(body) > maxBodyBytes {
		return nil, &FetchError{Op: "read body", Err: errPayloadTooLarge}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Op: "http GET", StatusCode: resp.StatusCode, Err: errors.New(truncate(string(body), 200))}
	}

	var apiResp remotiveResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, &FetchError{Op: "decode", Err: err}
	}
	if apiResp.Jobs == nil {
		return nil, &FetchError{Op: "decode", Err: errMissingJobs}
	}

	return *apiResp.Jobs, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
