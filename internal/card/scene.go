package card

import (
	"fmt"

	"github.com/lox/forecastcards/internal/forecast"
)

// Canvas dimensions in pixels. The renderer treats the canvas as static.
const (
	CanvasWidth  = 300
	CanvasHeight = 1000
	MarginTop    = 40
	MarginBottom = 40
)

// XRange is the fixed horizontal data range of every card. The card centre
// sits at x = 1.
var XRange = forecast.AxisRange{Min: 0.4, Max: 1.6}

// RGB is an opaque colour. It marshals as a CSS rgb() string.
type RGB struct {
	R, G, B uint8
}

func (c RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

// MarshalText implements encoding.TextMarshaler.
func (c RGB) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

var (
	Black     = RGB{0, 0, 0}
	White     = RGB{255, 255, 255}
	Grey      = RGB{128, 128, 128}
	LightGrey = RGB{211, 211, 211}
	Red       = RGB{255, 0, 0}
	Blue      = RGB{0, 0, 255}
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Stroke struct {
	Color RGB     `json:"color"`
	Width float64 `json:"width"`
}

// Ellipse is an axis aligned ring outline.
type Ellipse struct {
	Center Point   `json:"center"`
	RX     float64 `json:"rx"`
	RY     float64 `json:"ry"`
	Stroke Stroke  `json:"stroke"`
}

type Segment struct {
	From   Point  `json:"from"`
	To     Point  `json:"to"`
	Stroke Stroke `json:"stroke"`
}

// FillStyle is how the wind arrow is filled.
type FillStyle string

const (
	FillNone    FillStyle = "none"
	FillHatched FillStyle = "hatched" // diagonal stripes, half density
	FillSolid   FillStyle = "solid"
)

// Polygon is closed: the last point repeats the first.
type Polygon struct {
	Points    []Point   `json:"points"`
	Fill      FillStyle `json:"fill"`
	FillColor RGB       `json:"fill_color"`
	Stroke    Stroke    `json:"stroke"`
}

// TextPosition places a marker label relative to its point.
type TextPosition string

const (
	TextAbove TextPosition = "top center"
	TextBelow TextPosition = "bottom center"
)

// Marker is one labelled point of the temperature scatter series.
type Marker struct {
	At       Point        `json:"at"`
	Text     string       `json:"text"`
	Position TextPosition `json:"position"`
	Color    RGB          `json:"color"`
	Size     float64      `json:"size"`
}

// Bar spans [Base, Base+Height] vertically, centred on X.
type Bar struct {
	X       float64 `json:"x"`
	Width   float64 `json:"width"`
	Base    float64 `json:"base"`
	Height  float64 `json:"height"`
	Color   RGB     `json:"color"`
	Outline Stroke  `json:"outline"`
	Text    string  `json:"text"`
}

// ImageRef points at an external icon resource by key. Resolving the key to
// pixels is up to the renderer.
type ImageRef struct {
	Key    string  `json:"key"`
	Center Point   `json:"center"`
	SizeX  float64 `json:"size_x"`
	SizeY  float64 `json:"size_y"`
}

type Annotation struct {
	At    Point   `json:"at"`
	Text  string  `json:"text"`
	Size  float64 `json:"size"`
	Color RGB     `json:"color"`
	Bold  bool    `json:"bold,omitempty"`
}

// Scene is the full declarative description of one card.
type Scene struct {
	Width  int                `json:"width"`
	Height int                `json:"height"`
	XRange forecast.AxisRange `json:"x_range"`
	YRange forecast.AxisRange `json:"y_range"`

	// Title is the card's group key, Label the caption above it.
	Title string `json:"title"`
	Label string `json:"label"`

	Rings       []Ellipse    `json:"rings"`
	Ticks       []Segment    `json:"ticks"`
	Arrow       Polygon      `json:"arrow"`
	Markers     []Marker     `json:"markers"`
	Sunshine    Bar          `json:"sunshine"`
	Icon        ImageRef     `json:"icon"`
	Annotations []Annotation `json:"annotations"`

	Beaufort     int `json:"beaufort"`
	GustBeaufort int `json:"gust_beaufort"`
}
