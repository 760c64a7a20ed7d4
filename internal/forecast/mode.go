package forecast

import (
	"fmt"

	"github.com/lox/forecastcards/internal/models"
)

// Mode selects which date is held fixed and which one varies across cards.
type Mode string

const (
	// ModeBackward fixes the prog (target) date and shows one card per model run,
	// most recent run first.
	ModeBackward Mode = "backward"
	// ModeForward fixes the creation (issue) date and shows one card per target
	// date in chronological order.
	ModeForward Mode = "forward"
)

// ParseMode converts a user supplied mode name. The empty string selects the
// default backward mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeBackward:
		return ModeBackward, nil
	case ModeForward:
		return ModeForward, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

// axes bundles everything a mode decides. Pivot field, group field, sort
// direction and labels always flip together. The zero Mode behaves as
// ModeBackward.
type axes struct {
	pivot      func(models.WeatherRecord) string
	group      func(models.WeatherRecord) string
	descending bool
	cardLabel  string
	pivotLabel string
}

func (m Mode) axes() axes {
	switch m {
	case ModeBackward, "":
		return axes{
			pivot:      progDate,
			group:      creationDate,
			descending: true,
			cardLabel:  "Model run",
			pivotLabel: "Target date",
		}
	case ModeForward:
		return axes{
			pivot:      creationDate,
			group:      progDate,
			descending: false,
			cardLabel:  "Forecast for",
			pivotLabel: "Model run",
		}
	default:
		panic(fmt.Sprintf("forecast: unknown mode %q", string(m)))
	}
}

// CardLabel is the caption shown above each card's key.
func (m Mode) CardLabel() string { return m.axes().cardLabel }

// PivotLabel names the date the mode holds fixed.
func (m Mode) PivotLabel() string { return m.axes().pivotLabel }

// PivotBounds returns the [min, max] range the pivot date is drawn from.
func (m Mode) PivotBounds(stats models.DateRangeStats) (min, max string) {
	switch m {
	case ModeBackward, "":
		return stats.ProgMin, stats.ProgMax
	case ModeForward:
		return stats.CreationMin, stats.CreationMax
	default:
		panic(fmt.Sprintf("forecast: unknown mode %q", string(m)))
	}
}
