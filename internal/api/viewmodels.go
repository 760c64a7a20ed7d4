package api

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/lox/forecastcards/internal/card"
	"github.com/lox/forecastcards/internal/forecast"
	"github.com/lox/forecastcards/internal/models"
)

var validate = validator.New()

const (
	defaultZoom = 0.7
	minZoom     = 0.3
	maxZoom     = 1.0
	zoomStep    = 0.05

	// Cards are shown with a little room around the 300 px canvas.
	cardFrameWidth = 320
)

// viewQuery holds the selection controls carried in the query string.
type viewQuery struct {
	Tab      string  `validate:"omitempty,oneof=info plot"`
	Mode     string  `validate:"omitempty,oneof=backward forward"`
	PrevMode string  `validate:"omitempty,oneof=backward forward"`
	Date     string  `validate:"omitempty,datetime=2006-01-02"`
	Zoom     float64 `validate:"gte=0.3,lte=1"`
}

func parseViewQuery(r *http.Request) (viewQuery, error) {
	v := r.URL.Query()
	q := viewQuery{
		Tab:      v.Get("tab"),
		Mode:     v.Get("mode"),
		PrevMode: v.Get("prev_mode"),
		Date:     v.Get("date"),
		Zoom:     defaultZoom,
	}
	if z := v.Get("zoom"); z != "" {
		f, err := strconv.ParseFloat(z, 64)
		if err != nil {
			return q, fmt.Errorf("invalid zoom %q", z)
		}
		q.Zoom = f
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

// selection resolves the query against the dataset's date ranges. A mode
// change since the last submission discards the submitted date so the
// pivot snaps to the new mode's latest date.
func (q viewQuery) selection(stats models.DateRangeStats) *forecast.SelectionController {
	mode, _ := forecast.ParseMode(q.Mode)
	sel := forecast.Selection{Mode: mode, PivotDate: q.Date}
	if q.PrevMode != "" && forecast.Mode(q.PrevMode) != mode {
		sel.PivotDate = ""
	}
	return forecast.RestoreSelection(stats, sel)
}

func cardImageURL(key string, sel forecast.Selection) string {
	v := url.Values{}
	v.Set("mode", string(sel.Mode))
	v.Set("date", sel.PivotDate)
	return "/cards/" + url.PathEscape(key) + ".png?" + v.Encode()
}

// PageData is rendered by index.html.
type PageData struct {
	Tab     string
	State   models.LoadState
	Error   string
	Records int
	Stats   models.DateRangeStats

	Mode       forecast.Mode
	Modes      []forecast.Mode
	PivotDate  string
	PivotLabel string
	MinDate    string
	MaxDate    string

	Zoom       float64
	MinZoom    float64
	MaxZoom    float64
	ZoomStep   float64
	CardWidth  int
	CardHeight int

	Cards []CardView
}

// CardView is one card on the plot tab.
type CardView struct {
	Key      string
	Label    string
	ImageURL string
}

func newPageData(q viewQuery) PageData {
	tab := q.Tab
	if tab == "" {
		tab = "plot"
	}
	return PageData{
		Tab:        tab,
		Modes:      []forecast.Mode{forecast.ModeBackward, forecast.ModeForward},
		Zoom:       q.Zoom,
		MinZoom:    minZoom,
		MaxZoom:    maxZoom,
		ZoomStep:   zoomStep,
		CardWidth:  int(math.Round(cardFrameWidth * q.Zoom)),
		CardHeight: int(math.Round(card.CanvasHeight * q.Zoom)),
	}
}

// dateBounds is the picker range for the active mode.
type dateBounds struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

type cardResponse struct {
	Key   string      `json:"key"`
	Label string      `json:"label"`
	Rows  int         `json:"rows"`
	Scene *card.Scene `json:"scene"`
}

type viewResponse struct {
	Mode      forecast.Mode  `json:"mode"`
	PivotDate string         `json:"pivot_date"`
	Bounds    dateBounds     `json:"bounds"`
	Scale     forecast.Scale `json:"scale"`
	Cards     []cardResponse `json:"cards"`
}

type statsResponse struct {
	models.DateRangeStats
	State   models.LoadState `json:"state"`
	Records int              `json:"records"`
}

type HealthStatus struct {
	Status  string           `json:"status"`
	State   models.LoadState `json:"state"`
	Records int              `json:"records"`
	Error   string           `json:"error,omitempty"`
}
