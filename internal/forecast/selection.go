package forecast

import "github.com/lox/forecastcards/internal/models"

// Selection is the user's current view choice.
type Selection struct {
	Mode      Mode   `json:"mode"`
	PivotDate string `json:"pivot_date"`
}

// SelectionController holds the pivot mode and date. Every mode change snaps
// the pivot date to the max of the range the new mode pivots on.
type SelectionController struct {
	stats *models.DateRangeStats
	sel   Selection
}

// NewSelectionController starts in backward mode with no pivot date. The
// date is filled in once stats arrive.
func NewSelectionController() *SelectionController {
	return &SelectionController{sel: Selection{Mode: ModeBackward}}
}

// RestoreSelection rebuilds a controller from a selection observed earlier,
// for example one round-tripped through a form. An empty pivot date is
// treated as unset and snapped to the mode's default.
func RestoreSelection(stats models.DateRangeStats, sel Selection) *SelectionController {
	c := NewSelectionController()
	c.SetStats(stats)
	c.SetMode(sel.Mode)
	if sel.PivotDate != "" {
		c.SetPivotDate(sel.PivotDate)
	}
	return c
}

// SetStats records the dataset's date ranges and re-snaps the pivot date for
// the current mode.
func (c *SelectionController) SetStats(stats models.DateRangeStats) {
	c.stats = &stats
	c.SetMode(c.sel.Mode)
}

// SetMode switches mode and resets the pivot date to the newly relevant max.
func (c *SelectionController) SetMode(m Mode) {
	if m == "" {
		m = ModeBackward
	}
	c.sel.Mode = m
	if c.stats == nil {
		return
	}
	_, max := m.PivotBounds(*c.stats)
	c.sel.PivotDate = max
}

// SetPivotDate sets the pivot date as given. Dates outside the bounds are
// accepted; they simply match no rows.
func (c *SelectionController) SetPivotDate(d string) {
	c.sel.PivotDate = d
}

// Selection returns a copy of the current selection.
func (c *SelectionController) Selection() Selection {
	return c.sel
}

// Bounds returns the date picker range for the current mode, empty strings
// until stats are known.
func (c *SelectionController) Bounds() (min, max string) {
	if c.stats == nil {
		return "", ""
	}
	return c.sel.Mode.PivotBounds(*c.stats)
}
