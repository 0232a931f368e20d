package main

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"jobmate/jobhunter-service/internal/scheduler"
)

type statusSource interface {
	Status() scheduler.Status
}

type healthResponse struct {
	Status  string           `json:"status"`
	Service string           `json:"service"`
	Version string           `json:"version"`
	Sync    scheduler.Status `json:"sync"`
}

func newMux(src statusSource) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler(src))
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// healthHandler reports "degraded" while the last cycle failed. The process
// itself stays up, so the status code is always 200.
func healthHandler(src statusSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := src.Status()
		status := "ok"
		if st.LastError != "" {
			status = "degraded"
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(healthResponse{
			Status:  status,
			Service: "jobhunter-service",
			Version: version,
			Sync:    st,
		})
	}
}
