package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/lox/forecastcards/internal/forecast"
	"github.com/lox/forecastcards/internal/ingest"
	"github.com/lox/forecastcards/internal/metrics"
	"github.com/lox/forecastcards/internal/models"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	q, err := parseViewQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data := newPageData(q)
	data.State = s.loader.State()

	ds, err := s.loader.Dataset()
	switch {
	case err == nil:
		s.fillPageData(&data, q, ds)
	case errors.Is(err, ingest.ErrNotLoaded):
		data.Mode = forecast.ModeBackward
	default:
		data.Mode = forecast.ModeBackward
		data.Error = err.Error()
	}

	if err := s.tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
		log.Printf("api: render index: %v", err)
	}
}

func (s *Server) fillPageData(data *PageData, q viewQuery, ds *ingest.Dataset) {
	ctrl := q.selection(ds.Stats)
	sel := ctrl.Selection()

	data.Records = len(ds.Records)
	data.Stats = ds.Stats
	data.Mode = sel.Mode
	data.PivotDate = sel.PivotDate
	data.PivotLabel = sel.Mode.PivotLabel()
	data.MinDate, data.MaxDate = ctrl.Bounds()

	if data.Tab != "plot" {
		return
	}
	metrics.ViewRequests.WithLabelValues(string(sel.Mode)).Inc()

	view := forecast.BuildView(ds.Records, sel)
	for _, c := range view.Cards {
		data.Cards = append(data.Cards, CardView{
			Key:      c.Key,
			Label:    c.Label,
			ImageURL: cardImageURL(c.Key, sel),
		})
	}
}

// loadStateText describes the load state for the info tab.
func loadStateText(s models.LoadState) string {
	switch s {
	case models.LoadSuccess:
		return "Data loaded"
	case models.LoadError:
		return "Data failed to load"
	case models.LoadLoading:
		return "Loading data..."
	default:
		return "Waiting to load"
	}
}
