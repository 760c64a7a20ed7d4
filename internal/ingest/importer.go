package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/lox/forecastcards/internal/store"
)

// Importer copies a dataset into the store, auditing each attempt.
type Importer struct {
	store      *store.Store
	fetcher    *Fetcher
	maxElapsed time.Duration
}

func NewImporter(st *store.Store, fetcher *Fetcher) *Importer {
	return &Importer{
		store:      st,
		fetcher:    fetcher,
		maxElapsed: 2 * time.Minute,
	}
}

// Import fetches loc, retrying transient remote failures with exponential
// backoff, and replaces the stored records with its contents.
func (im *Importer) Import(ctx context.Context, loc Location) (*store.IngestRun, error) {
	log.Printf("ingest: importing %s", loc.Raw)

	run, err := im.store.StartIngestRun(loc.Raw, loc.Scheme)
	if err != nil {
		return nil, fmt.Errorf("start ingest run: %w", err)
	}

	err = im.importInto(ctx, loc, run)
	run.Success = err == nil
	if err != nil {
		run.ErrorMessage = sql.NullString{String: err.Error(), Valid: true}
	}
	if cerr := im.store.CompleteIngestRun(run); cerr != nil {
		log.Printf("ingest: complete run %d: %v", run.ID, cerr)
	}
	if err != nil {
		return run, err
	}

	log.Printf("ingest: stored %d records from %s", run.RecordsStored.Int64, loc.Raw)
	return run, nil
}

func (im *Importer) importInto(ctx context.Context, loc Location, run *store.IngestRun) error {
	data, err := im.fetch(ctx, loc)
	if err != nil {
		return err
	}
	run.ResponseSizeBytes = sql.NullInt64{Int64: int64(len(data)), Valid: true}

	records, err := Decode(loc, data)
	if err != nil {
		return fmt.Errorf("decode %s: %w", loc.Raw, err)
	}
	run.RecordsParsed = sql.NullInt64{Int64: int64(len(records)), Valid: true}
	run.InvalidRecords = sql.NullInt64{Int64: int64(FlagRecords(records)), Valid: true}

	stored, err := im.store.ReplaceRecords(records)
	if err != nil {
		return fmt.Errorf("store records: %w", err)
	}
	run.RecordsStored = sql.NullInt64{Int64: int64(stored), Valid: true}
	return nil
}

func (im *Importer) fetch(ctx context.Context, loc Location) ([]byte, error) {
	if !loc.Remote() {
		return im.fetcher.Fetch(ctx, loc)
	}

	var body []byte
	operation := func() error {
		b, err := im.fetcher.Fetch(ctx, loc)
		if err == nil {
			body = b
			return nil
		}
		if errors.Is(err, ErrUnsupportedSource) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.Retryable() {
			return backoff.Permanent(fmt.Errorf("fetch %s: %w", loc.Raw, err))
		}
		log.Printf("ingest: fetch %s: %v (retrying)", loc.Raw, err)
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = im.maxElapsed
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	return body, nil
}
