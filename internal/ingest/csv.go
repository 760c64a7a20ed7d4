package ingest

import (
	"bufio"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/lox/forecastcards/internal/models"
)

// Column names recognised in a dataset header.
const (
	colCreationDate = "creation_date"
	colProgDate     = "prog_date"
	colTempMin      = "temp_min"
	colTempMax      = "temp_max"
	colWindAvg      = "wind_avg"
	colWindMax      = "wind_max"
	colWindDirAvg   = "wind_dir_avg"
	colSunPct       = "sunshine_percent_total"
	colSunHours     = "sunshine_total_h"
	colWeatherType  = "weather_type"
)

var ErrNoDateColumns = errors.New("header has neither creation_date nor prog_date")

var delimiters = []rune{',', ';', '\t', '|'}

// detectDelimiter picks the candidate that splits the header line into the
// most fields. Commas win ties.
func detectDelimiter(header string) rune {
	best, bestCount := ',', 0
	for _, d := range delimiters {
		if n := strings.Count(header, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

// numericFields maps numeric column names to their record field.
var numericFields = map[string]func(*models.WeatherRecord) *sql.NullFloat64{
	colTempMin:    func(r *models.WeatherRecord) *sql.NullFloat64 { return &r.TempMin },
	colTempMax:    func(r *models.WeatherRecord) *sql.NullFloat64 { return &r.TempMax },
	colWindAvg:    func(r *models.WeatherRecord) *sql.NullFloat64 { return &r.WindAvg },
	colWindMax:    func(r *models.WeatherRecord) *sql.NullFloat64 { return &r.WindMax },
	colWindDirAvg: func(r *models.WeatherRecord) *sql.NullFloat64 { return &r.WindDirAvg },
	colSunPct:     func(r *models.WeatherRecord) *sql.NullFloat64 { return &r.SunshinePercentTotal },
	colSunHours:   func(r *models.WeatherRecord) *sql.NullFloat64 { return &r.SunshineTotalH },
}

// ParseCSV decodes delimited text with a header row into records. Columns are
// matched by name; unknown columns are ignored. Blank or non-numeric cells in
// numeric columns become NULL.
func ParseCSV(r io.Reader) ([]models.WeatherRecord, error) {
	br := bufio.NewReader(r)
	first, err := br.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("read header: %w", err)
	}
	line, _, _ := strings.Cut(string(first), "\n")

	cr := csv.NewReader(br)
	cr.Comma = detectDelimiter(line)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	_, hasCreation := index[colCreationDate]
	_, hasProg := index[colProgDate]
	if !hasCreation && !hasProg {
		return nil, ErrNoDateColumns
	}

	cell := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []models.WeatherRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(records)+1, err)
		}

		rec := models.WeatherRecord{
			CreationDate: cell(row, colCreationDate),
			ProgDate:     cell(row, colProgDate),
			WeatherType:  cell(row, colWeatherType),
		}
		for col, field := range numericFields {
			*field(&rec) = parseNumber(cell(row, col))
		}
		records = append(records, rec)
	}

	return records, nil
}

func parseNumber(s string) sql.NullFloat64 {
	if s == "" {
		return sql.NullFloat64{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}
