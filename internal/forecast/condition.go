package forecast

import (
	"fmt"
	"strings"
	"unicode"
)

// WeatherType is the categorical sky condition key carried by each record.
// It doubles as the icon key.
type WeatherType string

// Common weather types. Datasets may carry others; those fall back to a
// generated label and prompt.
const (
	TypeClear        WeatherType = "clear"
	TypePartlyCloudy WeatherType = "partly_cloudy"
	TypeCloudy       WeatherType = "cloudy"
	TypeOvercast     WeatherType = "overcast"
	TypeFog          WeatherType = "fog"
	TypeDrizzle      WeatherType = "drizzle"
	TypeRain         WeatherType = "rain"
	TypeShowers      WeatherType = "showers"
	TypeThunderstorm WeatherType = "thunderstorm"
	TypeSleet        WeatherType = "sleet"
	TypeSnow         WeatherType = "snow"
)

var typeLabels = map[WeatherType]string{
	TypeClear:        "Clear",
	TypePartlyCloudy: "Partly Cloudy",
	TypeCloudy:       "Cloudy",
	TypeOvercast:     "Overcast",
	TypeFog:          "Foggy",
	TypeDrizzle:      "Drizzle",
	TypeRain:         "Rain",
	TypeShowers:      "Showers",
	TypeThunderstorm: "Thunderstorms",
	TypeSleet:        "Sleet",
	TypeSnow:         "Snow",
}

// Label converts a weather type to a human-readable string.
func (t WeatherType) Label() string {
	if label, ok := typeLabels[t]; ok {
		return label
	}
	words := strings.FieldsFunc(string(t), func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// iconStylePrompt keeps every generated icon in the same flat style so cards
// stay visually consistent.
const iconStylePrompt = `Flat minimal weather icon, centered on a plain white background.
Style: bold simple shapes, two or three colors, thick outlines, no gradients.
Square composition. No text, no letters, no numbers, no border.`

var typePrompts = map[WeatherType]string{
	TypeClear:        "A bright yellow sun with short rays.",
	TypePartlyCloudy: "A yellow sun partly hidden behind a white cloud.",
	TypeCloudy:       "Two overlapping light grey clouds.",
	TypeOvercast:     "A single heavy dark grey cloud filling the frame.",
	TypeFog:          "Three horizontal grey wavy lines under a faint cloud.",
	TypeDrizzle:      "A grey cloud with a few small light blue dots below it.",
	TypeRain:         "A grey cloud with slanted blue rain streaks below it.",
	TypeShowers:      "A sun behind a cloud with short blue rain streaks.",
	TypeThunderstorm: "A dark cloud with a yellow lightning bolt and rain.",
	TypeSleet:        "A grey cloud with mixed blue raindrops and white ice pellets.",
	TypeSnow:         "A grey cloud with white snowflakes below it.",
}

// IconPrompt builds the image generation prompt for a weather type icon.
func IconPrompt(t WeatherType) string {
	desc, ok := typePrompts[t]
	if !ok {
		desc = fmt.Sprintf("An icon representing %s weather.", strings.ToLower(t.Label()))
	}
	return fmt.Sprintf("%s\n\nSubject: %s", iconStylePrompt, desc)
}
