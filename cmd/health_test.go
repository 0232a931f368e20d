package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/jobhunter-service/internal/model"
	"jobmate/jobhunter-service/internal/scheduler"
)

type fixedStatus scheduler.Status

func (f fixedStatus) Status() scheduler.Status { return scheduler.Status(f) }

func TestHealthHandler(t *testing.T) {
	report := model.CycleReport{StartedAt: time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC), Inserted: 4}

	cases := []struct {
		name       string
		status     scheduler.Status
		wantStatus string
	}{
		{"before first cycle", scheduler.Status{}, "ok"},
		{"last cycle committed", scheduler.Status{Cycles: 1, LastReport: &report, StoredJobs: 4}, "ok"},
		{"last cycle failed", scheduler.Status{Cycles: 2, Failures: 1, LastReport: &report, LastError: "fetch: boom"}, "degraded"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newMux(fixedStatus(c.status)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body healthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, c.wantStatus, body.Status)
			assert.Equal(t, "jobhunter-service", body.Service)
			assert.Equal(t, version, body.Version)
			assert.Equal(t, c.status.Cycles, body.Sync.Cycles)
			assert.Equal(t, c.status.StoredJobs, body.Sync.StoredJobs)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	newMux(fixedStatus{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "jobhunter_stored_jobs")
}
