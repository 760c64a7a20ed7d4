package forecast

import (
	"sort"

	"github.com/lox/forecastcards/internal/models"
)

func creationDate(r models.WeatherRecord) string { return r.CreationDate }
func progDate(r models.WeatherRecord) string     { return r.ProgDate }

// ComputeRangeStats scans the records once and returns the lexicographic
// min/max of both date keys. Keys without any value get empty strings.
func ComputeRangeStats(records []models.WeatherRecord) models.DateRangeStats {
	var stats models.DateRangeStats
	stats.CreationMin, stats.CreationMax = dateBounds(records, creationDate)
	stats.ProgMin, stats.ProgMax = dateBounds(records, progDate)
	return stats
}

func dateBounds(records []models.WeatherRecord, field func(models.WeatherRecord) string) (min, max string) {
	dates := make([]string, 0, len(records))
	for _, r := range records {
		if d := field(r); d != "" {
			dates = append(dates, d)
		}
	}
	if len(dates) == 0 {
		return "", ""
	}
	sort.Strings(dates)
	return dates[0], dates[len(dates)-1]
}
