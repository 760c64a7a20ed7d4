package card

import (
	"fmt"
	"math"

	"github.com/lox/forecastcards/internal/forecast"
	"github.com/lox/forecastcards/internal/models"
)

// Layout fractions of the axis span H, measured from the axis minimum.
const (
	windCenterFrac = 0.45
	iconCenterFrac = 0.85
	iconHeightFrac = 0.30
	sunBaseFrac    = 0.62
	sunHeightFrac  = 0.06

	ringRX      = 0.35 // card-width units
	innerRing   = 0.6
	arrowBase   = 1.1
	arrowSpread = 25.0 // degrees either side of the bearing

	compassLabelFactor = 1.3
	gustLabelFactor    = 1.6

	tempMaxX = 0.85
	tempMinX = 1.15

	sunBarWidth = 0.6
	iconWidth   = 0.8
)

// aspect compensates for the 300x1000 canvas so the ring renders circular.
const aspect = float64(CanvasWidth) / float64(CanvasHeight)

// Encode builds the scene for the first row of rows on the shared axis. It
// returns nil when there are no rows or no usable axis.
func Encode(rows []models.WeatherRecord, axis *forecast.AxisRange) *Scene {
	if len(rows) == 0 || axis == nil {
		return nil
	}
	return EncodeRow(rows[0], *axis)
}

// EncodeCard encodes a view card and stamps its key and label on the scene.
func EncodeCard(c forecast.Card, axis *forecast.AxisRange) *Scene {
	s := Encode(c.Rows, axis)
	if s == nil {
		return nil
	}
	s.Title = c.Key
	s.Label = c.Label
	return s
}

// EncodeRow maps one record onto the card geometry. It is a pure function of
// its inputs.
func EncodeRow(row models.WeatherRecord, axis forecast.AxisRange) *Scene {
	h := axis.Span()
	if !(h > 0) || math.IsInf(h, 0) {
		return nil
	}

	yWind := axis.Min + windCenterFrac*h
	yIcon := axis.Min + iconCenterFrac*h
	rx := ringRX
	ry := rx * (h / 1.2) * aspect

	pos := func(bearing, factor float64) Point {
		theta := (90 - bearing) * math.Pi / 180
		return Point{
			X: 1 + math.Cos(theta)*rx*factor,
			Y: yWind + math.Sin(theta)*ry*factor,
		}
	}

	avgBft := forecast.Beaufort(row.WindAvg.Float64)
	maxBft := forecast.Beaufort(row.WindMax.Float64)

	s := &Scene{
		Width:        CanvasWidth,
		Height:       CanvasHeight,
		XRange:       XRange,
		YRange:       axis,
		Beaufort:     avgBft,
		GustBeaufort: maxBft,
	}

	ring := Stroke{Color: LightGrey, Width: 1}
	center := Point{X: 1, Y: yWind}
	s.Rings = []Ellipse{
		{Center: center, RX: rx, RY: ry, Stroke: ring},
		{Center: center, RX: rx * innerRing, RY: ry * innerRing, Stroke: ring},
	}

	for bearing := 0; bearing < 360; bearing += 30 {
		s.Ticks = append(s.Ticks, Segment{
			From:   pos(float64(bearing), innerRing),
			To:     pos(float64(bearing), 1.0),
			Stroke: ring,
		})
	}

	dir := row.WindDirAvg.Float64
	tip := pos(dir, innerRing)
	s.Arrow = arrowStyle(avgBft)
	s.Arrow.Points = []Point{tip, pos(dir-arrowSpread, arrowBase), pos(dir+arrowSpread, arrowBase), tip}

	if row.TempMax.Valid {
		s.Markers = append(s.Markers, Marker{
			At:       Point{X: tempMaxX, Y: row.TempMax.Float64},
			Text:     formatTemp(row.TempMax.Float64),
			Position: TextAbove,
			Color:    Red,
			Size:     10,
		})
	}
	if row.TempMin.Valid {
		s.Markers = append(s.Markers, Marker{
			At:       Point{X: tempMinX, Y: row.TempMin.Float64},
			Text:     formatTemp(row.TempMin.Float64),
			Position: TextBelow,
			Color:    Blue,
			Size:     10,
		})
	}

	s.Sunshine = Bar{
		X:       1,
		Width:   sunBarWidth,
		Base:    axis.Min + sunBaseFrac*h,
		Height:  sunHeightFrac * h,
		Color:   SunshineColor(row.SunshinePercentTotal.Float64),
		Outline: Stroke{Color: Black, Width: 1},
		Text:    fmt.Sprintf("%.1f h", row.SunshineTotalH.Float64),
	}

	s.Icon = ImageRef{
		Key:    row.WeatherType,
		Center: Point{X: 1, Y: yIcon},
		SizeX:  iconWidth,
		SizeY:  iconHeightFrac * h,
	}

	s.Annotations = []Annotation{
		{At: center, Text: fmt.Sprint(avgBft), Size: 14, Color: Black, Bold: true},
		{At: Point{X: 1, Y: yWind + ry*compassLabelFactor}, Text: "N", Size: 11, Color: Grey},
		{At: Point{X: 1 + rx*compassLabelFactor, Y: yWind}, Text: "E", Size: 11, Color: Grey},
		{At: Point{X: 1, Y: yWind - ry*compassLabelFactor}, Text: "S", Size: 11, Color: Grey},
		{At: Point{X: 1 - rx*compassLabelFactor, Y: yWind}, Text: "W", Size: 11, Color: Grey},
		{At: Point{X: 1, Y: yWind - ry*gustLabelFactor}, Text: fmt.Sprintf("gusts: %d", maxBft), Size: 10, Color: Grey},
	}

	return s
}

// arrowStyle encodes calm (0-2), breezy (3-5) and strong (6+) winds.
func arrowStyle(bft int) Polygon {
	switch {
	case bft <= 2:
		return Polygon{Fill: FillNone, FillColor: Black, Stroke: Stroke{Color: Black, Width: 1.5}}
	case bft <= 5:
		return Polygon{Fill: FillHatched, FillColor: Black, Stroke: Stroke{Color: Black, Width: 1.5}}
	default:
		return Polygon{Fill: FillSolid, FillColor: Black, Stroke: Stroke{Color: Black, Width: 2.5}}
	}
}

// SunshineColor fades from white at 0% sunshine to yellow at 100% by
// lowering the blue channel.
func SunshineColor(pct float64) RGB {
	if math.IsNaN(pct) {
		pct = 0
	}
	pct = math.Min(math.Max(pct, 0), 100)
	blue := math.Floor(255 * (1 - pct/100))
	return RGB{R: 255, G: 255, B: uint8(blue)}
}

// formatTemp rounds half up, so -2.5 reads -2°.
func formatTemp(v float64) string {
	return fmt.Sprintf("%d°", int(math.Floor(v+0.5)))
}
