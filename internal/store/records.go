package store

import (
	"database/sql"
	"fmt"

	"github.com/lox/forecastcards/internal/models"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// ReplaceRecords swaps the stored dataset for records in one transaction,
// keeping their source order.
func (s *Store) ReplaceRecords(records []models.WeatherRecord) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM records`); err != nil {
		return 0, fmt.Errorf("clear records: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO records (seq, creation_date, prog_date, temp_min, temp_max, wind_avg, wind_max, wind_dir_avg, sunshine_percent_total, sunshine_total_h, weather_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.Exec(i, r.CreationDate, r.ProgDate, r.TempMin, r.TempMax, r.WindAvg, r.WindMax, r.WindDirAvg, r.SunshinePercentTotal, r.SunshineTotalH, r.WeatherType); err != nil {
			return 0, fmt.Errorf("insert record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit records: %w", err)
	}
	return len(records), nil
}

// Records returns every stored record in import order.
func (s *Store) Records() ([]models.WeatherRecord, error) {
	rows, err := s.db.Query(`
		SELECT creation_date, prog_date, temp_min, temp_max, wind_avg, wind_max, wind_dir_avg, sunshine_percent_total, sunshine_total_h, weather_type
		FROM records
		ORDER BY seq
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.WeatherRecord
	for rows.Next() {
		var r models.WeatherRecord
		if err := rows.Scan(&r.CreationDate, &r.ProgDate, &r.TempMin, &r.TempMax, &r.WindAvg, &r.WindMax, &r.WindDirAvg, &r.SunshinePercentTotal, &r.SunshineTotalH, &r.WeatherType); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) RecordCount() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM records`).Scan(&n)
	return n, err
}
