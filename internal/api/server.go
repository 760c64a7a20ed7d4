package api

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/lox/forecastcards/internal/imagegen"
	"github.com/lox/forecastcards/internal/ingest"
)

type Server struct {
	loader   *ingest.Loader
	port     string
	tmpl     *template.Template
	renderer *imagegen.Renderer
	cache    *imagegen.Cache // nil disables PNG caching
	limiter  *rate.Limiter
}

// NewServer creates the HTTP server. renderRPS bounds how many cards are
// rasterized per second; cache hits are not limited.
func NewServer(loader *ingest.Loader, renderer *imagegen.Renderer, cache *imagegen.Cache, port string, renderRPS float64) *Server {
	burst := int(renderRPS)
	if burst < 1 {
		burst = 1
	}
	return &Server{
		loader:   loader,
		port:     port,
		tmpl:     newTemplates(),
		renderer: renderer,
		cache:    cache,
		limiter:  rate.NewLimiter(rate.Limit(renderRPS), burst),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("GET /api/stats", s.handleAPIStats)
	mux.HandleFunc("GET /api/view", s.handleAPIView)
	mux.HandleFunc("GET /cards/{file}", s.handleCard)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    ":" + s.port,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
