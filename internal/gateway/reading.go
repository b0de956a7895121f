package gateway

import (
	"strings"
	"time"

	"silo_scanner/internal/models"
)

// Hex colors used by the sensor API.
const (
	colorGrey  = "#9ca3af" // silo offline
	colorWheat = "#93856b" // default/no data
)

// APIReading is one element of the sensor API response array.
type APIReading struct {
	SiloGroup   string  `json:"silo_group,omitempty"`
	SiloNumber  int     `json:"silo_number"`
	CableNumber int     `json:"cable_number,omitempty"`
	Level0      float64 `json:"level_0"`
	Color0      string  `json:"color_0"`
	Level1      float64 `json:"level_1"`
	Color1      string  `json:"color_1"`
	Level2      float64 `json:"level_2"`
	Color2      string  `json:"color_2"`
	Level3      float64 `json:"level_3"`
	Color3      string  `json:"color_3"`
	Level4      float64 `json:"level_4"`
	Color4      string  `json:"color_4"`
	Level5      float64 `json:"level_5"`
	Color5      string  `json:"color_5"`
	Level6      float64 `json:"level_6"`
	Color6      string  `json:"color_6"`
	Level7      float64 `json:"level_7"`
	Color7      string  `json:"color_7"`
	SiloColor   string  `json:"silo_color"`
	Timestamp   string  `json:"timestamp"`
}

// Levels returns the eight sensor values, S1..S8.
func (a APIReading) Levels() [models.SensorCount]float64 {
	return [models.SensorCount]float64{a.Level0, a.Level1, a.Level2, a.Level3, a.Level4, a.Level5, a.Level6, a.Level7}
}

// Colors returns the eight raw hex colors, S1..S8.
func (a APIReading) Colors() [models.SensorCount]string {
	return [models.SensorCount]string{a.Color0, a.Color1, a.Color2, a.Color3, a.Color4, a.Color5, a.Color6, a.Color7}
}

// SetSensor writes position i (0-based).
func (a *APIReading) SetSensor(i int, level float64, color string) {
	switch i {
	case 0:
		a.Level0, a.Color0 = level, color
	case 1:
		a.Level1, a.Color1 = level, color
	case 2:
		a.Level2, a.Color2 = level, color
	case 3:
		a.Level3, a.Color3 = level, color
	case 4:
		a.Level4, a.Color4 = level, color
	case 5:
		a.Level5, a.Color5 = level, color
	case 6:
		a.Level6, a.Color6 = level, color
	case 7:
		a.Level7, a.Color7 = level, color
	}
}

// ClassifyColor maps a sensor API hex color to a sensor class.
func ClassifyColor(hex string) models.SensorColor {
	c := strings.ToLower(strings.TrimSpace(hex))
	switch {
	case c == "" || c == colorGrey || c == colorWheat:
		return models.ColorDisconnected
	case strings.HasPrefix(c, "#4") || c == "#00ff00" || c == "#44ff44" || c == "#22c55e":
		return models.ColorNormal
	case strings.HasPrefix(c, "#c7c1") || c == "#f59e0b" || (strings.HasPrefix(c, "#ff") && strings.Contains(c[3:], "c")) || c == "#ff9800":
		return models.ColorWarning
	case strings.HasPrefix(c, "#f") || strings.HasPrefix(c, "#d1") || c == "#ef4444":
		return models.ColorCritical
	default:
		return models.ColorNormal
	}
}

// ColorFor returns the hex color the sensor API uses for a temperature.
func ColorFor(temp float64) string {
	switch {
	case temp <= 35:
		return "#46d446"
	case temp <= 40:
		return "#c7c150"
	default:
		return "#d14141"
	}
}

// IsDisconnected reports whether the API marks the whole silo offline: grey silo color or all-zero levels.
func (a APIReading) IsDisconnected() bool {
	if strings.EqualFold(strings.TrimSpace(a.SiloColor), colorGrey) {
		return true
	}
	for _, v := range a.Levels() {
		if v != 0 {
			return false
		}
	}
	return true
}

// ToReading converts the wire shape. readAt is used when the timestamp is missing or unparsable.
func (a APIReading) ToReading(readAt time.Time) models.SensorReading {
	if a.IsDisconnected() {
		r := models.DisconnectedReading(models.SiloID(a.SiloNumber), readAt)
		r.SiloColor = a.SiloColor
		return r
	}

	r := models.SensorReading{
		SiloID:    models.SiloID(a.SiloNumber),
		Values:    a.Levels(),
		SiloColor: a.SiloColor,
		ReadAt:    parseTimestamp(a.Timestamp, readAt),
	}
	for i, hex := range a.Colors() {
		r.Colors[i] = ClassifyColor(hex)
	}
	return r
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
	time.RFC1123,
}

func parseTimestamp(s string, fallback time.Time) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return fallback.UTC()
}
