package ingest

import (
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/lox/forecastcards/internal/models"
)

// parquetRecord is the on-disk row layout. Nil pointers are NULL cells.
type parquetRecord struct {
	CreationDate         string   `parquet:"creation_date"`
	ProgDate             string   `parquet:"prog_date"`
	TempMin              *float64 `parquet:"temp_min"`
	TempMax              *float64 `parquet:"temp_max"`
	WindAvg              *float64 `parquet:"wind_avg"`
	WindMax              *float64 `parquet:"wind_max"`
	WindDirAvg           *float64 `parquet:"wind_dir_avg"`
	SunshinePercentTotal *float64 `parquet:"sunshine_percent_total"`
	SunshineTotalH       *float64 `parquet:"sunshine_total_h"`
	WeatherType          string   `parquet:"weather_type"`
}

func toPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func fromPtr(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func (p parquetRecord) record() models.WeatherRecord {
	return models.WeatherRecord{
		CreationDate:         p.CreationDate,
		ProgDate:             p.ProgDate,
		TempMin:              fromPtr(p.TempMin),
		TempMax:              fromPtr(p.TempMax),
		WindAvg:              fromPtr(p.WindAvg),
		WindMax:              fromPtr(p.WindMax),
		WindDirAvg:           fromPtr(p.WindDirAvg),
		SunshinePercentTotal: fromPtr(p.SunshinePercentTotal),
		SunshineTotalH:       fromPtr(p.SunshineTotalH),
		WeatherType:          p.WeatherType,
	}
}

// ReadParquet decodes every row of a Parquet file.
func ReadParquet(r io.ReaderAt, size int64) ([]models.WeatherRecord, error) {
	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[parquetRecord](pf)
	defer reader.Close()

	var records []models.WeatherRecord
	buf := make([]parquetRecord, 1000)
	for {
		n, err := reader.Read(buf)
		for i := 0; i < n; i++ {
			records = append(records, buf[i].record())
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read parquet rows: %w", err)
		}
		if n == 0 {
			break
		}
	}
	return records, nil
}

// WriteParquet encodes records as a Parquet file.
func WriteParquet(w io.Writer, records []models.WeatherRecord) error {
	rows := make([]parquetRecord, len(records))
	for i, r := range records {
		rows[i] = parquetRecord{
			CreationDate:         r.CreationDate,
			ProgDate:             r.ProgDate,
			TempMin:              toPtr(r.TempMin),
			TempMax:              toPtr(r.TempMax),
			WindAvg:              toPtr(r.WindAvg),
			WindMax:              toPtr(r.WindMax),
			WindDirAvg:           toPtr(r.WindDirAvg),
			SunshinePercentTotal: toPtr(r.SunshinePercentTotal),
			SunshineTotalH:       toPtr(r.SunshineTotalH),
			WeatherType:          r.WeatherType,
		}
	}

	pw := parquet.NewGenericWriter[parquetRecord](w)
	if _, err := pw.Write(rows); err != nil {
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}
