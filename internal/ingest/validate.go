package ingest

import (
	"encoding/json"

	"github.com/lox/forecastcards/internal/models"
)

const (
	FlagTempInverted       = "temp_inverted"
	FlagWindNegative       = "wind_negative"
	FlagWindDirInvalid     = "wind_dir_invalid"
	FlagSunshinePctInvalid = "sunshine_pct_invalid"
	FlagSunshineHNegative  = "sunshine_h_negative"
	FlagProgBeforeCreation = "prog_before_creation"
)

// ValidateRecord returns the quality flags raised by a record. Flagged
// records are still kept; the flags are only reported.
func ValidateRecord(r models.WeatherRecord) []string {
	var flags []string

	if r.TempMin.Valid && r.TempMax.Valid {
		if r.TempMin.Float64 > r.TempMax.Float64 {
			flags = append(flags, FlagTempInverted)
		}
	}

	if (r.WindAvg.Valid && r.WindAvg.Float64 < 0) || (r.WindMax.Valid && r.WindMax.Float64 < 0) {
		flags = append(flags, FlagWindNegative)
	}

	if r.WindDirAvg.Valid {
		if r.WindDirAvg.Float64 < 0 || r.WindDirAvg.Float64 > 360 {
			flags = append(flags, FlagWindDirInvalid)
		}
	}

	if r.SunshinePercentTotal.Valid {
		if r.SunshinePercentTotal.Float64 < 0 || r.SunshinePercentTotal.Float64 > 100 {
			flags = append(flags, FlagSunshinePctInvalid)
		}
	}

	if r.SunshineTotalH.Valid && r.SunshineTotalH.Float64 < 0 {
		flags = append(flags, FlagSunshineHNegative)
	}

	if r.CreationDate != "" && r.ProgDate != "" && r.ProgDate < r.CreationDate {
		flags = append(flags, FlagProgBeforeCreation)
	}

	return flags
}

func QualityFlagsToJSON(flags []string) string {
	if len(flags) == 0 {
		return ""
	}
	b, _ := json.Marshal(flags)
	return string(b)
}
