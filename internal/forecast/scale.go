package forecast

import (
	"math"

	"github.com/lox/forecastcards/internal/models"
)

const (
	defaultTempMin = 0.0
	defaultTempMax = 30.0
	minTempRange   = 5.0

	// The axis reserves half a range below the coldest value for the
	// temperature labels and four and a half above for compass, sunshine bar
	// and icon.
	axisPadBelow = 0.5
	axisPadAbove = 4.5
)

// AxisRange is the shared vertical value range of every card in a view.
type AxisRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Span is Max - Min.
func (a AxisRange) Span() float64 { return a.Max - a.Min }

// Scale is the temperature scale shared by all cards of a view.
type Scale struct {
	GlobalMin float64   `json:"global_min"`
	GlobalMax float64   `json:"global_max"`
	TRange    float64   `json:"t_range"`
	Axis      AxisRange `json:"axis"`
}

// ComputeScale derives the shared axis from every temp_min/temp_max in rows.
func ComputeScale(rows []models.WeatherRecord) Scale {
	lo, hi := math.Inf(1), math.Inf(-1)
	found := false
	for _, r := range rows {
		for _, t := range [...]struct {
			v     float64
			valid bool
		}{{r.TempMin.Float64, r.TempMin.Valid}, {r.TempMax.Float64, r.TempMax.Valid}} {
			if !t.valid || math.IsNaN(t.v) {
				continue
			}
			found = true
			lo = math.Min(lo, t.v)
			hi = math.Max(hi, t.v)
		}
	}
	if !found {
		lo, hi = defaultTempMin, defaultTempMax
	}

	tRange := math.Max(hi-lo, minTempRange)
	return Scale{
		GlobalMin: lo,
		GlobalMax: hi,
		TRange:    tRange,
		Axis: AxisRange{
			Min: lo - axisPadBelow*tRange,
			Max: hi + axisPadAbove*tRange,
		},
	}
}
