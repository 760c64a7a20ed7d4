package api

import (
	"log"
	"net/http"
	"strings"

	"github.com/lox/forecastcards/internal/card"
	"github.com/lox/forecastcards/internal/forecast"
	"github.com/lox/forecastcards/internal/imagegen"
	"github.com/lox/forecastcards/internal/metrics"
)

// handleCard serves the PNG for one group key of the selected view.
// Identical scenes are served from the cache; fresh renders are rate limited.
func (s *Server) handleCard(w http.ResponseWriter, r *http.Request) {
	key, ok := strings.CutSuffix(r.PathValue("file"), ".png")
	if !ok || key == "" {
		http.NotFound(w, r)
		return
	}

	q, err := parseViewQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ds, ok := s.dataset(w)
	if !ok {
		return
	}

	view := forecast.BuildView(ds.Records, q.selection(ds.Stats).Selection())
	c, ok := view.Card(key)
	if !ok {
		http.Error(w, "no rows for card "+key, http.StatusNotFound)
		return
	}
	scene := card.EncodeCard(c, &view.Scale.Axis)
	if scene == nil {
		http.Error(w, "no scene for card "+key, http.StatusNotFound)
		return
	}

	cacheKey, err := imagegen.SceneKey(scene)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if s.cache != nil {
		if data, ok := s.cache.Get(cacheKey); ok {
			metrics.CardCacheHits.Inc()
			s.serveCardImage(w, data)
			return
		}
	}

	if !s.limiter.Allow() {
		w.Header().Set("Retry-After", "1")
		http.Error(w, "card rendering rate limit exceeded", http.StatusTooManyRequests)
		return
	}

	data, err := s.renderer.Render(r.Context(), scene)
	if err != nil {
		log.Printf("api: render card %s: %v", key, err)
		http.Error(w, "card rendering failed", http.StatusInternalServerError)
		return
	}

	if s.cache != nil {
		if err := s.cache.Set(cacheKey, data); err != nil {
			log.Printf("api: cache card %s: %v", key, err)
		}
	}
	s.serveCardImage(w, data)
}

func (s *Server) serveCardImage(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}
