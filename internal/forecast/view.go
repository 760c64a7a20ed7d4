package forecast

import (
	"sort"

	"github.com/lox/forecastcards/internal/models"
)

// FilterByPivot returns the records whose pivot field equals pivotDate
// exactly. The pivot field is prog_date in backward mode and creation_date in
// forward mode. An empty pivot date is unset and matches nothing, so rows with
// a blank pivot cell never form a view.
func FilterByPivot(records []models.WeatherRecord, mode Mode, pivotDate string) []models.WeatherRecord {
	if pivotDate == "" {
		return nil
	}
	ax := mode.axes()
	var out []models.WeatherRecord
	for _, r := range records {
		if ax.pivot(r) == pivotDate {
			out = append(out, r)
		}
	}
	return out
}

// GroupKeys returns the distinct non-empty values of the grouping field,
// descending in backward mode and ascending in forward mode.
func GroupKeys(filtered []models.WeatherRecord, mode Mode) []string {
	ax := mode.axes()
	seen := make(map[string]bool)
	var keys []string
	for _, r := range filtered {
		k := ax.group(r)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	if ax.descending {
		sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	} else {
		sort.Strings(keys)
	}
	return keys
}

// RowsForKey returns the filtered records whose grouping field equals key.
func RowsForKey(filtered []models.WeatherRecord, key string, mode Mode) []models.WeatherRecord {
	ax := mode.axes()
	var out []models.WeatherRecord
	for _, r := range filtered {
		if ax.group(r) == key {
			out = append(out, r)
		}
	}
	return out
}

// Card is one rendered column: a group key and the rows behind it.
type Card struct {
	Key   string
	Label string
	Rows  []models.WeatherRecord
}

// View is everything derived from (records, selection) for one render pass.
type View struct {
	Selection Selection
	Filtered  []models.WeatherRecord
	Keys      []string
	Cards     []Card
	Scale     Scale
}

// BuildView chains filter, grouping and scale for a selection. Keys with no
// rows produce no card.
func BuildView(records []models.WeatherRecord, sel Selection) View {
	filtered := FilterByPivot(records, sel.Mode, sel.PivotDate)
	keys := GroupKeys(filtered, sel.Mode)

	v := View{
		Selection: sel,
		Filtered:  filtered,
		Keys:      keys,
		Scale:     ComputeScale(filtered),
	}
	for _, k := range keys {
		rows := RowsForKey(filtered, k, sel.Mode)
		if len(rows) == 0 {
			continue
		}
		v.Cards = append(v.Cards, Card{Key: k, Label: sel.Mode.CardLabel(), Rows: rows})
	}
	return v
}

// Card looks up the card for key, reporting whether it exists.
func (v View) Card(key string) (Card, bool) {
	for _, c := range v.Cards {
		if c.Key == key {
			return c, true
		}
	}
	return Card{}, false
}
