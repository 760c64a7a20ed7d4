package models

import (
	"database/sql"
)

// DateLayout is the ISO calendar date format used for creation and prog dates.
// Dates stay strings end to end so that ordering is plain lexicographic order.
const DateLayout = "2006-01-02"

// WeatherRecord is one forecast row: a run issued on CreationDate
// predicting the weather on ProgDate.
type WeatherRecord struct {
	CreationDate         string
	ProgDate             string
	TempMin              sql.NullFloat64
	TempMax              sql.NullFloat64
	WindAvg              sql.NullFloat64 // m/s
	WindMax              sql.NullFloat64 // m/s
	WindDirAvg           sql.NullFloat64 // degrees, 0/360 = from north
	SunshinePercentTotal sql.NullFloat64
	SunshineTotalH       sql.NullFloat64
	WeatherType          string // icon key
}

// DateRangeStats holds the lexicographic min/max of both temporal keys.
// An empty string means no record carried a value for that key.
type DateRangeStats struct {
	CreationMin string `json:"creation_date_min"`
	CreationMax string `json:"creation_date_max"`
	ProgMin     string `json:"prog_date_min"`
	ProgMax     string `json:"prog_date_max"`
}

// LoadState is the observable state of the one-time dataset load.
type LoadState string

const (
	LoadIdle    LoadState = "idle"
	LoadLoading LoadState = "loading"
	LoadSuccess LoadState = "success"
	LoadError   LoadState = "error"
)

// Terminal reports whether the load has finished, successfully or not.
func (s LoadState) Terminal() bool {
	return s == LoadSuccess || s == LoadError
}
