package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lox/forecastcards/internal/card"
	"github.com/lox/forecastcards/internal/forecast"
	"github.com/lox/forecastcards/internal/ingest"
	"github.com/lox/forecastcards/internal/metrics"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// dataset returns the loaded dataset or writes a 503 explaining why there
// is none yet.
func (s *Server) dataset(w http.ResponseWriter) (*ingest.Dataset, bool) {
	ds, err := s.loader.Dataset()
	if err == nil {
		return ds, true
	}
	if errors.Is(err, ingest.ErrNotLoaded) {
		http.Error(w, "dataset is still loading", http.StatusServiceUnavailable)
	} else {
		http.Error(w, "dataset failed to load: "+err.Error(), http.StatusServiceUnavailable)
	}
	return nil, false
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthStatus{
		Status: "ok",
		State:  s.loader.State(),
	}

	ds, err := s.loader.Dataset()
	switch {
	case err == nil:
		health.Records = len(ds.Records)
	case errors.Is(err, ingest.ErrNotLoaded):
	default:
		health.Status = "error"
		health.Error = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, health)
		return
	}

	writeJSON(w, http.StatusOK, health)
}

func (s *Server) handleAPIStats(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		DateRangeStats: ds.Stats,
		State:          s.loader.State(),
		Records:        len(ds.Records),
	})
}

func (s *Server) handleAPIView(w http.ResponseWriter, r *http.Request) {
	q, err := parseViewQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ds, ok := s.dataset(w)
	if !ok {
		return
	}

	ctrl := q.selection(ds.Stats)
	sel := ctrl.Selection()
	metrics.ViewRequests.WithLabelValues(string(sel.Mode)).Inc()

	view := forecast.BuildView(ds.Records, sel)
	min, max := ctrl.Bounds()
	resp := viewResponse{
		Mode:      sel.Mode,
		PivotDate: sel.PivotDate,
		Bounds:    dateBounds{Min: min, Max: max},
		Scale:     view.Scale,
		Cards:     make([]cardResponse, 0, len(view.Cards)),
	}
	for _, c := range view.Cards {
		resp.Cards = append(resp.Cards, cardResponse{
			Key:   c.Key,
			Label: c.Label,
			Rows:  len(c.Rows),
			Scene: card.EncodeCard(c, &view.Scale.Axis),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}
