package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/courtflow/court-case-api/api"
	"github.com/courtflow/court-case-api/config"
	"github.com/courtflow/court-case-api/services"
)

// Analytics exported for testing purposes
type Analytics struct {
	Service *services.AnalyticsService
}

// TrendingHandler returns the cases with the most views inside a sliding window
func (a Analytics) TrendingHandler(w http.ResponseWriter, r *http.Request) {
	windowDays := queryInt(r, "days", 7)
	limit := queryInt(r, "limit", 10)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	rows, err := a.Service.Trending(ctx, windowDays, limit)
	if err != nil {
		serviceErrorStatus("failed to compute trending cases", w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(rows)
}

// MostViewedHandler returns the all-time most viewed cases
func (a Analytics) MostViewedHandler(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	rows, err := a.Service.MostViewed(ctx, limit)
	if err != nil {
		serviceErrorStatus("failed to compute most viewed cases", w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(rows)
}

// PeakHoursHandler returns per-hour view volume, quiet hours omitted
func (a Analytics) PeakHoursHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	rows, err := a.Service.PeakHours(ctx)
	if err != nil {
		serviceErrorStatus("failed to compute peak hours", w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(rows)
}

// DateRangeHandler returns aggregate view statistics between two dates, inclusive
func (a Analytics) DateRangeHandler(w http.ResponseWriter, r *http.Request) {
	start, err := time.Parse("2006-01-02", r.URL.Query().Get("start"))
	if err != nil {
		config.ErrorStatus("failed to parse start date", http.StatusBadRequest, w, err)
		return
	}
	end, err := time.Parse("2006-01-02", r.URL.Query().Get("end"))
	if err != nil {
		config.ErrorStatus("failed to parse end date", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	stats, err := a.Service.DateRangeStatistics(ctx, start, end)
	if err != nil {
		serviceErrorStatus("failed to compute date range statistics", w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(stats)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
