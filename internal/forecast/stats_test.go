package forecast

import (
	"testing"

	"github.com/lox/forecastcards/internal/models"
)

func TestComputeRangeStats(t *testing.T) {
	tests := []struct {
		name    string
		records []models.WeatherRecord
		want    models.DateRangeStats
	}{
		{
			name: "empty dataset",
			want: models.DateRangeStats{},
		},
		{
			name: "single record",
			records: []models.WeatherRecord{
				{CreationDate: "2024-01-01", ProgDate: "2024-01-03"},
			},
			want: models.DateRangeStats{
				CreationMin: "2024-01-01", CreationMax: "2024-01-01",
				ProgMin: "2024-01-03", ProgMax: "2024-01-03",
			},
		},
		{
			name: "unordered input",
			records: []models.WeatherRecord{
				{CreationDate: "2024-01-05", ProgDate: "2024-01-06"},
				{CreationDate: "2024-01-01", ProgDate: "2024-01-10"},
				{CreationDate: "2024-01-03", ProgDate: "2024-01-02"},
			},
			want: models.DateRangeStats{
				CreationMin: "2024-01-01", CreationMax: "2024-01-05",
				ProgMin: "2024-01-02", ProgMax: "2024-01-10",
			},
		},
		{
			name: "empty values ignored",
			records: []models.WeatherRecord{
				{CreationDate: "", ProgDate: "2024-02-01"},
				{CreationDate: "2024-01-15", ProgDate: ""},
			},
			want: models.DateRangeStats{
				CreationMin: "2024-01-15", CreationMax: "2024-01-15",
				ProgMin: "2024-02-01", ProgMax: "2024-02-01",
			},
		},
		{
			name: "one key entirely missing",
			records: []models.WeatherRecord{
				{ProgDate: "2024-02-01"},
				{ProgDate: "2024-01-20"},
			},
			want: models.DateRangeStats{
				ProgMin: "2024-01-20", ProgMax: "2024-02-01",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeRangeStats(tt.records)
			if got != tt.want {
				t.Errorf("ComputeRangeStats() = %+v, want %+v", got, tt.want)
			}
			if got.CreationMin > got.CreationMax {
				t.Errorf("creation min %q > max %q", got.CreationMin, got.CreationMax)
			}
			if got.ProgMin > got.ProgMax {
				t.Errorf("prog min %q > max %q", got.ProgMin, got.ProgMax)
			}
		})
	}
}
