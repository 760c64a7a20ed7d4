package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecordsLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "forecastcards_records_loaded",
			Help: "Number of forecast records in the session dataset",
		},
	)

	LoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "forecastcards_load_duration_seconds",
			Help:    "Time taken to fetch and parse the dataset",
			Buckets: prometheus.DefBuckets,
		},
	)

	LoadState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "forecastcards_load_state",
			Help: "Dataset load state (1 for the current state)",
		},
		[]string{"state"},
	)

	FetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecastcards_fetch_total",
			Help: "Total dataset fetches by location scheme",
		},
		[]string{"scheme", "status"},
	)

	InvalidRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecastcards_invalid_records_total",
			Help: "Records carrying a data quality flag",
		},
		[]string{"flag"},
	)

	ViewRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecastcards_view_requests_total",
			Help: "Card view requests by pivot mode",
		},
		[]string{"mode"},
	)

	CardsRendered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forecastcards_cards_rendered_total",
			Help: "Total card images rasterized",
		},
	)

	CardRenderLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "forecastcards_card_render_latency_seconds",
			Help:    "Card rasterization latency in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	CardCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forecastcards_card_cache_hits_total",
			Help: "Card image requests served from the on-disk cache",
		},
	)
)
