package store

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/lox/forecastcards/internal/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// A second connection would see a different in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	store := New(db)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func nf(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: true}
}

func TestMigrationVersion(t *testing.T) {
	store := setupTestStore(t)

	version, err := store.MigrationVersion()
	if err != nil {
		t.Fatalf("MigrationVersion: %v", err)
	}
	if version != len(migrations) {
		t.Errorf("version = %d, want %d", version, len(migrations))
	}

	// Running again is a no-op.
	if err := store.Migrate(); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}

func TestReplaceAndReadRecords(t *testing.T) {
	store := setupTestStore(t)

	records := []models.WeatherRecord{
		{
			CreationDate:         "2024-01-02",
			ProgDate:             "2024-01-03",
			TempMin:              nf(2),
			TempMax:              nf(8),
			WindAvg:              nf(4),
			WindMax:              nf(9),
			WindDirAvg:           nf(90),
			SunshinePercentTotal: nf(50),
			SunshineTotalH:       nf(3.2),
			WeatherType:          "clear",
		},
		{
			CreationDate: "2024-01-01",
			ProgDate:     "2024-01-03",
			TempMax:      nf(7),
			WeatherType:  "rain",
		},
	}

	n, err := store.ReplaceRecords(records)
	if err != nil {
		t.Fatalf("ReplaceRecords: %v", err)
	}
	if n != 2 {
		t.Errorf("stored = %d, want 2", n)
	}

	got, err := store.Records()
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(got))
	}
	if got[0] != records[0] {
		t.Errorf("records[0] = %+v, want %+v", got[0], records[0])
	}
	if got[1].CreationDate != "2024-01-01" {
		t.Errorf("records[1].CreationDate = %q, want source order", got[1].CreationDate)
	}
	if got[1].TempMin.Valid {
		t.Error("expected TempMin to stay NULL")
	}
	if !got[1].TempMax.Valid || got[1].TempMax.Float64 != 7 {
		t.Errorf("TempMax = %+v, want 7", got[1].TempMax)
	}
}

func TestReplaceRecordsReplacesExisting(t *testing.T) {
	store := setupTestStore(t)

	first := []models.WeatherRecord{
		{CreationDate: "2024-01-01", ProgDate: "2024-01-02"},
		{CreationDate: "2024-01-01", ProgDate: "2024-01-03"},
		{CreationDate: "2024-01-01", ProgDate: "2024-01-04"},
	}
	if _, err := store.ReplaceRecords(first); err != nil {
		t.Fatalf("ReplaceRecords: %v", err)
	}
	if _, err := store.ReplaceRecords(first[:1]); err != nil {
		t.Fatalf("ReplaceRecords: %v", err)
	}

	n, err := store.RecordCount()
	if err != nil {
		t.Fatalf("RecordCount: %v", err)
	}
	if n != 1 {
		t.Errorf("RecordCount = %d, want 1", n)
	}
}

func TestRecordsEmpty(t *testing.T) {
	store := setupTestStore(t)

	got, err := store.Records()
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len(records) = %d, want 0", len(got))
	}
}

func TestIngestRunLifecycle(t *testing.T) {
	store := setupTestStore(t)

	none, err := store.LastSuccessfulIngest()
	if err != nil {
		t.Fatalf("LastSuccessfulIngest: %v", err)
	}
	if none != nil {
		t.Fatalf("expected no successful run, got %+v", none)
	}

	failed, err := store.StartIngestRun("https://example.com/a.csv", "https")
	if err != nil {
		t.Fatalf("StartIngestRun: %v", err)
	}
	failed.ErrorMessage = sql.NullString{String: "status 500", Valid: true}
	if err := store.CompleteIngestRun(failed); err != nil {
		t.Fatalf("CompleteIngestRun: %v", err)
	}

	ok, err := store.StartIngestRun("data.csv", "file")
	if err != nil {
		t.Fatalf("StartIngestRun: %v", err)
	}
	ok.Success = true
	ok.RecordsParsed = sql.NullInt64{Int64: 10, Valid: true}
	ok.RecordsStored = sql.NullInt64{Int64: 10, Valid: true}
	ok.InvalidRecords = sql.NullInt64{Int64: 1, Valid: true}
	ok.ResponseSizeBytes = sql.NullInt64{Int64: 512, Valid: true}
	if err := store.CompleteIngestRun(ok); err != nil {
		t.Fatalf("CompleteIngestRun: %v", err)
	}

	runs, err := store.RecentIngestRuns(10)
	if err != nil {
		t.Fatalf("RecentIngestRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len(runs) = %d, want 2", len(runs))
	}
	if runs[0].ID != ok.ID {
		t.Errorf("runs[0].ID = %d, want newest %d", runs[0].ID, ok.ID)
	}
	if runs[1].Success {
		t.Error("expected first run to be unsuccessful")
	}
	if runs[1].ErrorMessage.String != "status 500" {
		t.Errorf("ErrorMessage = %q, want status 500", runs[1].ErrorMessage.String)
	}

	last, err := store.LastSuccessfulIngest()
	if err != nil {
		t.Fatalf("LastSuccessfulIngest: %v", err)
	}
	if last == nil {
		t.Fatal("expected a successful run")
	}
	if last.Source != "data.csv" || last.Scheme != "file" {
		t.Errorf("last = %s/%s, want data.csv/file", last.Source, last.Scheme)
	}
	if last.RecordsStored.Int64 != 10 || last.InvalidRecords.Int64 != 1 {
		t.Errorf("stored/invalid = %d/%d, want 10/1", last.RecordsStored.Int64, last.InvalidRecords.Int64)
	}
	if !last.FinishedAt.Valid {
		t.Error("expected FinishedAt to be set")
	}
}

func TestCompleteIngestRunNil(t *testing.T) {
	store := setupTestStore(t)
	if err := store.CompleteIngestRun(nil); err != nil {
		t.Errorf("CompleteIngestRun(nil) = %v, want nil", err)
	}
}
