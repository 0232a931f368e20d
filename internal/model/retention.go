package model

import (
	"fmt"
	"time"
)

// DefaultRetentionDays is how long a listing is kept, counted from its
// publication date.
const DefaultRetentionDays = 14

const dateLayout = "2006-01-02"

// publicationLayouts are tried in order. Remotive currently sends
// "2006-01-02T15:04:05" without a zone.
var publicationLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	dateLayout,
}

// ParsePublicationDate parses an upstream publication timestamp. Values
// without a zone are read as UTC.
func ParsePublicationDate(s string) (time.Time, error) {
	for _, layout := range publicationLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised publication date %q", s)
}

// CreationDate returns the date-only part of the listing's publication
// timestamp, i.e. its first ten characters.
func (l Listing) CreationDate() (time.Time, error) {
	if len(l.PublicationDate) < len(dateLayout) {
		return time.Time{}, fmt.Errorf("publication date %q too short", l.PublicationDate)
	}
	return time.Parse(dateLayout, l.PublicationDate[:len(dateLayout)])
}

// IsStale reports whether a listing published at published is older than
// retentionDays whole days at now. A listing 14 days and 23 hours old is not
// stale for a 14 day window.
//
// The window counts elapsed days while pruning compares calendar dates, so a
// listing dated the day before the cutoff can be inserted and then pruned by
// the next cycle.
func IsStale(published, now time.Time, retentionDays int) bool {
	ageDays := int(now.Sub(published) / (24 * time.Hour))
	return ageDays > retentionDays
}

// RetentionCutoff is the earliest creation date a stored job may have:
// midnight of today minus retentionDays, in now's location.
func RetentionCutoff(now time.Time, retentionDays int) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location()).AddDate(0, 0, -retentionDays)
}

// IsExpired reports whether a row created on createdAt must be pruned.
// Only rows strictly older than the cutoff go; the cutoff day itself stays.
func IsExpired(createdAt, cutoff time.Time) bool {
	return dateOnly(createdAt).Before(dateOnly(cutoff))
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
