// Package model defines shared data structures for the jobhunter service.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// ExternalID is the source-assigned listing identifier. Remotive sends it as a
// JSON number; strings are accepted too so a format change upstream does not
// break decoding.
type ExternalID string

// UnmarshalJSON accepts both `123` and `"123"`.
func (id *ExternalID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ExternalID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("external id: %w", err)
	}
	*id = ExternalID(n.String())
	return nil
}

// Listing is a single job posting as returned by the upstream source.
// Only ID, CompanyName, PublicationDate, URL, Title and Description are
// persisted; the rest is decoded and ignored.
type Listing struct {
	ID              ExternalID `json:"id"`
	URL             string     `json:"url"`
	Title           string     `json:"title"`
	CompanyName     string     `json:"company_name"`
	PublicationDate string     `json:"publication_date"`
	Description     string     `json:"description"`

	CompanyLogo               string   `json:"company_logo,omitempty"`
	Category                  string   `json:"category,omitempty"`
	Tags                      []string `json:"tags,omitempty"`
	JobType                   string   `json:"job_type,omitempty"`
	CandidateRequiredLocation string   `json:"candidate_required_location,omitempty"`
	Salary                    string   `json:"salary,omitempty"`
}

// StoredJob mirrors a row of the jobs table.
type StoredJob struct {
	ID          int64
	JobID       string
	Company     string
	CreatedAt   time.Time // date only
	URL         string
	Title       string
	Description string
}

// JobSummary is the reporting projection returned by Store.Sample.
type JobSummary struct {
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

// CycleReport summarises one synchronization cycle.
type CycleReport struct {
	StartedAt  time.Time     `json:"startedAt"`
	Duration   time.Duration `json:"duration"`
	Pruned     int64         `json:"pruned"`
	Fetched    int           `json:"fetched"`
	Stale      int           `json:"stale"`
	Filtered   int           `json:"filtered"`
	Duplicates int           `json:"duplicates"`
	Failed     int           `json:"failed"`
	Inserted   int           `json:"inserted"`
}
