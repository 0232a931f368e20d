package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"jobmate/jobhunter-service/internal/model"
)

var now = time.Date(2024, time.March, 20, 15, 30, 0, 0, time.UTC)

// ── IsExpired / RetentionCutoff ───────────────────────────────────────────

func TestIsExpired_OnlyStrictlyOlderRowsGo(t *testing.T) {
	cutoff := model.RetentionCutoff(now, 14)
	cases := []struct {
		daysAgo int
		want    bool
	}{
		{0, false},
		{13, false},
		{14, false},
		{20, true},
	}
	for _, c := range cases {
		created := now.AddDate(0, 0, -c.daysAgo)
		if got := model.IsExpired(created, cutoff); got != c.want {
			t.Errorf("IsExpired(%d days ago) = %v, want %v", c.daysAgo, got, c.want)
		}
	}
}

// Pruning everything newer than the cutoff would empty the table of exactly
// the rows worth keeping.
func TestIsExpired_NotInverted(t *testing.T) {
	cutoff := model.RetentionCutoff(now, 14)
	if model.IsExpired(now, cutoff) {
		t.Error("a row created today must never be expired")
	}
	if !model.IsExpired(now.AddDate(0, 0, -15), cutoff) {
		t.Error("a row created 15 days ago must be expired")
	}
}

func TestRetentionCutoff_IsMidnight(t *testing.T) {
	got := model.RetentionCutoff(now, 14)
	want := time.Date(2024, time.March, 6, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("RetentionCutoff = %v, want %v", got, want)
	}
}

// ── IsStale ───────────────────────────────────────────────────────────────

func TestIsStale_WholeDays(t *testing.T) {
	cases := []struct {
		age  time.Duration
		want bool
	}{
		{0, false},
		{14 * 24 * time.Hour, false},
		{15*24*time.Hour - time.Minute, false},
		{15 * 24 * time.Hour, true},
		{20 * 24 * time.Hour, true},
	}
	for _, c := range cases {
		if got := model.IsStale(now.Add(-c.age), now, 14); got != c.want {
			t.Errorf("IsStale(age=%v) = %v, want %v", c.age, got, c.want)
		}
	}
}

// Elapsed-day filtering and calendar-date pruning disagree for listings dated
// the day before the cutoff: kept by the filter, expired by the next prune.
func TestIsStale_BoundaryDiffersFromPrune(t *testing.T) {
	published := time.Date(2024, time.March, 5, 19, 30, 0, 0, time.UTC) // 14 days 20 hours before now

	if model.IsStale(published, now, 14) {
		t.Error("a listing 14 days and 20 hours old must not be stale")
	}
	if !model.IsExpired(published, model.RetentionCutoff(now, 14)) {
		t.Error("a row dated the day before the cutoff must be expired")
	}
}

// ── ParsePublicationDate / CreationDate ───────────────────────────────────

func TestParsePublicationDate_Layouts(t *testing.T) {
	valid := []string{
		"2024-03-18T09:15:00",
		"2024-03-18T09:15:00Z",
		"2024-03-18T09:15:00+02:00",
		"2024-03-18 09:15:00",
		"2024-03-18",
	}
	for _, s := range valid {
		if _, err := model.ParsePublicationDate(s); err != nil {
			t.Errorf("ParsePublicationDate(%q) returned unexpected error: %v", s, err)
		}
	}
}

func TestParsePublicationDate_Invalid(t *testing.T) {
	for _, s := range []string{"", "yesterday", "18/03/2024"} {
		if _, err := model.ParsePublicationDate(s); err == nil {
			t.Errorf("ParsePublicationDate(%q) expected error, got nil", s)
		}
	}
}

func TestCreationDate_TruncatesToDate(t *testing.T) {
	l := model.Listing{PublicationDate: "2024-03-18T23:59:59"}
	got, err := l.CreationDate()
	if err != nil {
		t.Fatalf("CreationDate returned unexpected error: %v", err)
	}
	want := time.Date(2024, time.March, 18, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("CreationDate = %v, want %v", got, want)
	}
}

func TestCreationDate_TooShort(t *testing.T) {
	if _, err := (model.Listing{PublicationDate: "2024-03"}).CreationDate(); err == nil {
		t.Error("CreationDate expected error for short value, got nil")
	}
}

// ── ExternalID ────────────────────────────────────────────────────────────

func TestExternalID_NumberOrString(t *testing.T) {
	cases := map[string]model.ExternalID{
		`{"id": 1934567}`:  "1934567",
		`{"id": "abc-12"}`: "abc-12",
		`{"id": null}`:     "",
	}
	for raw, want := range cases {
		var l model.Listing
		if err := json.Unmarshal([]byte(raw), &l); err != nil {
			t.Errorf("Unmarshal(%s) returned unexpected error: %v", raw, err)
			continue
		}
		if l.ID != want {
			t.Errorf("Unmarshal(%s).ID = %q, want %q", raw, l.ID, want)
		}
	}
}
