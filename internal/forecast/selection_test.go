package forecast

import (
	"testing"

	"github.com/lox/forecastcards/internal/models"
)

var testStats = models.DateRangeStats{
	CreationMin: "2024-01-01", CreationMax: "2024-01-05",
	ProgMin: "2024-01-02", ProgMax: "2024-01-12",
}

func TestSelectionController_Initial(t *testing.T) {
	c := NewSelectionController()
	sel := c.Selection()
	if sel.Mode != ModeBackward {
		t.Errorf("initial mode = %q, want backward", sel.Mode)
	}
	if sel.PivotDate != "" {
		t.Errorf("initial pivot = %q, want empty", sel.PivotDate)
	}
	if min, max := c.Bounds(); min != "" || max != "" {
		t.Errorf("bounds before stats = %q..%q, want empty", min, max)
	}

	c.SetStats(testStats)
	if got := c.Selection().PivotDate; got != testStats.ProgMax {
		t.Errorf("pivot after stats = %q, want prog max %q", got, testStats.ProgMax)
	}
}

func TestSelectionController_ModeSwitchResetsToMax(t *testing.T) {
	c := NewSelectionController()
	c.SetStats(testStats)
	c.SetPivotDate("2024-01-04")

	c.SetMode(ModeForward)
	if got := c.Selection().PivotDate; got != testStats.CreationMax {
		t.Errorf("backward->forward pivot = %q, want %q", got, testStats.CreationMax)
	}
	if min, max := c.Bounds(); min != testStats.CreationMin || max != testStats.CreationMax {
		t.Errorf("forward bounds = %q..%q", min, max)
	}

	c.SetPivotDate("2024-01-02")
	c.SetMode(ModeBackward)
	if got := c.Selection().PivotDate; got != testStats.ProgMax {
		t.Errorf("forward->backward pivot = %q, want %q", got, testStats.ProgMax)
	}
	if min, max := c.Bounds(); min != testStats.ProgMin || max != testStats.ProgMax {
		t.Errorf("backward bounds = %q..%q", min, max)
	}

	// Re-selecting the same mode still snaps.
	c.SetPivotDate("2024-01-03")
	c.SetMode(ModeBackward)
	if got := c.Selection().PivotDate; got != testStats.ProgMax {
		t.Errorf("same-mode pivot = %q, want %q", got, testStats.ProgMax)
	}
}

func TestSelectionController_OutOfRangeAccepted(t *testing.T) {
	c := NewSelectionController()
	c.SetStats(testStats)
	c.SetPivotDate("1999-12-31")
	if got := c.Selection().PivotDate; got != "1999-12-31" {
		t.Errorf("pivot = %q, want out-of-range date kept", got)
	}
}

func TestSelectionController_ModeBeforeStats(t *testing.T) {
	c := NewSelectionController()
	c.SetMode(ModeForward)
	if got := c.Selection().PivotDate; got != "" {
		t.Errorf("pivot without stats = %q, want empty", got)
	}
	c.SetStats(testStats)
	if got := c.Selection(); got.Mode != ModeForward || got.PivotDate != testStats.CreationMax {
		t.Errorf("selection = %+v, want forward at creation max", got)
	}
}

func TestRestoreSelection(t *testing.T) {
	tests := []struct {
		name string
		in   Selection
		want Selection
	}{
		{"explicit date kept", Selection{ModeForward, "2024-01-03"}, Selection{ModeForward, "2024-01-03"}},
		{"empty date snaps", Selection{ModeForward, ""}, Selection{ModeForward, "2024-01-05"}},
		{"backward default", Selection{ModeBackward, ""}, Selection{ModeBackward, "2024-01-12"}},
		{"zero value", Selection{}, Selection{ModeBackward, "2024-01-12"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RestoreSelection(testStats, tt.in).Selection(); got != tt.want {
				t.Errorf("RestoreSelection() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeBackward, false},
		{"backward", ModeBackward, false},
		{"forward", ModeForward, false},
		{"sideways", "", true},
		{"Forward", "", true},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
