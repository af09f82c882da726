package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/investorcenter/icengine/internal/contracts"
	"github.com/investorcenter/icengine/internal/scoring"
	"github.com/investorcenter/icengine/pkg/logger"
)

// ScoreHandler serves score reads and on-demand recomputation.
type ScoreHandler struct {
	scores contracts.ScoreRepository
	runner *scoring.Runner
	logger *logger.Logger
}

func NewScoreHandler(scores contracts.ScoreRepository, runner *scoring.Runner, log *logger.Logger) *ScoreHandler {
	return &ScoreHandler{scores: scores, runner: runner, logger: log}
}

// GetScore returns the latest score for a ticker.
// GET /api/scores/{ticker}
func (h *ScoreHandler) GetScore(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(mux.Vars(r)["ticker"])

	record, err := h.scores.GetLatest(r.Context(), ticker)
	if err != nil {
		if errors.Is(err, contracts.ErrNotFound) {
			respondError(w, http.StatusNotFound, "No score for ticker")
			return
		}
		h.logger.WithError(err).WithField("ticker", ticker).Error("Failed to load score")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve score")
		return
	}

	if !record.Displayable() {
		// Below the confidence floor: expose the diagnosis, never a number.
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"ticker":       record.Ticker,
			"sector":       record.Sector,
			"confidence":   record.Confidence,
			"completeness": record.Completeness,
			"message":      "insufficient data to score",
		})
		return
	}

	respondJSON(w, http.StatusOK, record)
}

// GetHistory returns scores for a ticker over a date range. Defaults to the
// trailing year.
// GET /api/scores/{ticker}/history?from=2025-01-01&to=2026-01-01
func (h *ScoreHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(mux.Vars(r)["ticker"])

	to := time.Now().UTC()
	from := to.AddDate(-1, 0, 0)
	var err error
	if v := r.URL.Query().Get("from"); v != "" {
		if from, err = time.Parse("2006-01-02", v); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid from date, want YYYY-MM-DD")
			return
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if to, err = time.Parse("2006-01-02", v); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid to date, want YYYY-MM-DD")
			return
		}
	}
	if !from.Before(to) {
		respondError(w, http.StatusBadRequest, "from must precede to")
		return
	}

	records, err := h.scores.GetHistory(r.Context(), ticker, from, to)
	if err != nil {
		h.logger.WithError(err).WithField("ticker", ticker).Error("Failed to load score history")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ticker":  ticker,
		"from":    from.Format("2006-01-02"),
		"to":      to.Format("2006-01-02"),
		"count":   len(records),
		"history": records,
	})
}

// Refresh recomputes a ticker's score on demand against today's
// distributions and returns it without persisting.
// POST /api/scores/{ticker}/refresh
func (h *ScoreHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(mux.Vars(r)["ticker"])

	record, err := h.runner.ScoreTicker(r.Context(), ticker, time.Now().UTC())
	if err != nil {
		if errors.Is(err, contracts.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Unknown ticker or no sector stats for today")
			return
		}
		h.logger.WithError(err).WithField("ticker", ticker).Error("On-demand scoring failed")
		respondError(w, http.StatusInternalServerError, "Scoring failed")
		return
	}
	if record == nil {
		respondError(w, http.StatusNotFound, "Unknown ticker")
		return
	}

	respondJSON(w, http.StatusOK, record)
}

// GetSectorRanking returns the sector's tickers ordered by latest score.
// GET /api/sectors/{sector}/ranking?limit=25
func (h *ScoreHandler) GetSectorRanking(w http.ResponseWriter, r *http.Request) {
	sector := mux.Vars(r)["sector"]

	limit := 25
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			respondError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	records, err := h.scores.GetSectorRanking(r.Context(), sector, limit)
	if err != nil {
		h.logger.WithError(err).WithField("sector", sector).Error("Failed to load sector ranking")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve ranking")
		return
	}

	type entry struct {
		Rank       int                      `json:"rank"`
		Ticker     string                   `json:"ticker"`
		Score      float64                  `json:"score"`
		Rating     contracts.Rating         `json:"rating"`
		Confidence contracts.Confidence     `json:"confidence"`
		Stage      contracts.LifecycleStage `json:"stage"`
	}
	entries := make([]entry, 0, len(records))
	for i, rec := range records {
		entries = append(entries, entry{
			Rank:       i + 1,
			Ticker:     rec.Ticker,
			Score:      *rec.OverallScore,
			Rating:     rec.Rating,
			Confidence: rec.Confidence,
			Stage:      rec.Stage,
		})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sector":  sector,
		"count":   len(entries),
		"ranking": entries,
	})
}
