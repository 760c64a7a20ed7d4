package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/lox/forecastcards/internal/forecast"
	"github.com/lox/forecastcards/internal/metrics"
	"github.com/lox/forecastcards/internal/models"
	"github.com/lox/forecastcards/internal/store"
)

var ErrNotLoaded = errors.New("dataset not loaded")

// SourceFunc produces the session's records. It is called exactly once.
type SourceFunc func(ctx context.Context) ([]models.WeatherRecord, error)

// LocationSource fetches and decodes the dataset at loc.
func LocationSource(f *Fetcher, loc Location) SourceFunc {
	return func(ctx context.Context) ([]models.WeatherRecord, error) {
		data, err := f.Fetch(ctx, loc)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", loc.Raw, err)
		}
		records, err := Decode(loc, data)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", loc.Raw, err)
		}
		return records, nil
	}
}

// StoreSource reads the records saved by the last import.
func StoreSource(st *store.Store) SourceFunc {
	return func(ctx context.Context) ([]models.WeatherRecord, error) {
		records, err := st.Records()
		if err != nil {
			return nil, fmt.Errorf("read stored records: %w", err)
		}
		return records, nil
	}
}

// Dataset is a successfully loaded record set and its date ranges.
type Dataset struct {
	Records []models.WeatherRecord
	Stats   models.DateRangeStats
}

// Loader runs the one-time dataset load in the background and exposes its
// state. A failed load is final; there is no retry.
type Loader struct {
	source SourceFunc

	mu      sync.Mutex
	state   models.LoadState
	dataset *Dataset
	err     error
	done    chan struct{}
}

func NewLoader(source SourceFunc) *Loader {
	l := &Loader{
		source: source,
		state:  models.LoadIdle,
		done:   make(chan struct{}),
	}
	setLoadStateMetric(models.LoadIdle)
	return l
}

// Start launches the load. Calls after the first are no-ops.
func (l *Loader) Start(ctx context.Context) {
	l.mu.Lock()
	if l.state != models.LoadIdle {
		l.mu.Unlock()
		return
	}
	l.state = models.LoadLoading
	l.mu.Unlock()
	setLoadStateMetric(models.LoadLoading)

	go l.run(ctx)
}

func (l *Loader) run(ctx context.Context) {
	start := time.Now()
	records, err := l.source(ctx)

	l.mu.Lock()
	if err != nil {
		l.state = models.LoadError
		l.err = err
		log.Printf("ingest: load failed: %v", err)
	} else {
		flagged := FlagRecords(records)
		l.dataset = &Dataset{
			Records: records,
			Stats:   forecast.ComputeRangeStats(records),
		}
		l.state = models.LoadSuccess
		metrics.RecordsLoaded.Set(float64(len(records)))
		log.Printf("ingest: loaded %d records (%d flagged) in %v", len(records), flagged, time.Since(start).Round(time.Millisecond))
	}
	state := l.state
	l.mu.Unlock()

	metrics.LoadDuration.Observe(time.Since(start).Seconds())
	setLoadStateMetric(state)
	close(l.done)
}

func (l *Loader) State() models.LoadState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Dataset returns the loaded dataset, ErrNotLoaded while the load is pending,
// or the load error after a failure.
func (l *Loader) Dataset() (*Dataset, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch l.state {
	case models.LoadSuccess:
		return l.dataset, nil
	case models.LoadError:
		return nil, l.err
	default:
		return nil, ErrNotLoaded
	}
}

// Wait blocks until the load finishes or ctx is done. Start must have been
// called.
func (l *Loader) Wait(ctx context.Context) (*Dataset, error) {
	if l.State() == models.LoadIdle {
		return nil, ErrNotLoaded
	}
	select {
	case <-l.done:
		return l.Dataset()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func setLoadStateMetric(current models.LoadState) {
	for _, s := range []models.LoadState{models.LoadIdle, models.LoadLoading, models.LoadSuccess, models.LoadError} {
		v := 0.0
		if s == current {
			v = 1
		}
		metrics.LoadState.WithLabelValues(string(s)).Set(v)
	}
}

// FlagRecords validates every record, counting flags in metrics, and returns
// the number of records with at least one flag.
func FlagRecords(records []models.WeatherRecord) int {
	flagged := 0
	for i, r := range records {
		flags := ValidateRecord(r)
		if len(flags) == 0 {
			continue
		}
		flagged++
		for _, f := range flags {
			metrics.InvalidRecords.WithLabelValues(f).Inc()
		}
		if flagged <= 5 {
			log.Printf("ingest: warning: record %d (%s/%s) flagged %s", i+1, r.CreationDate, r.ProgDate, QualityFlagsToJSON(flags))
		}
	}
	return flagged
}
