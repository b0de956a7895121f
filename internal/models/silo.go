package models

import "time"

// SiloID identifies one physical silo.
type SiloID int

// SensorCount is the number of fixed-position temperature sensors per silo.
const SensorCount = 8

// NoTemperature is reported as MaxTemperature when no sensor produced a value.
const NoTemperature = 0.0

// SensorColor is the classification of a single sensor or of a whole silo.
type SensorColor string

const (
	ColorNormal       SensorColor = "normal"
	ColorWarning      SensorColor = "warning"
	ColorCritical     SensorColor = "critical"
	ColorDisconnected SensorColor = "disconnected"
)

// SensorReading is one read of a silo's eight sensors, positionally ordered S1..S8.
type SensorReading struct {
	SiloID       SiloID                   `json:"silo_id"`
	Values       [SensorCount]float64     `json:"values"`
	Colors       [SensorCount]SensorColor `json:"colors"`
	SiloColor    string                   `json:"silo_color,omitempty"` // raw hex from the sensor API
	Disconnected bool                     `json:"disconnected"`
	ReadAt       time.Time                `json:"read_at"`
}

// SiloStatus is derived from a SensorReading.
type SiloStatus struct {
	SiloID         SiloID      `json:"silo_id"`
	MaxTemperature float64     `json:"max_temperature"`
	OverallColor   SensorColor `json:"overall_color"`
	IsDisconnected bool        `json:"is_disconnected"`
}

// DisconnectedReading is the well-formed reading used when a silo cannot be read.
func DisconnectedReading(id SiloID, at time.Time) SensorReading {
	r := SensorReading{SiloID: id, Disconnected: true, ReadAt: at.UTC()}
	for i := range r.Colors {
		r.Colors[i] = ColorDisconnected
	}
	return r
}

// Status derives max temperature and overall color.
// Sensors flagged disconnected do not contribute to either.
func (r SensorReading) Status() SiloStatus {
	st := SiloStatus{
		SiloID:         r.SiloID,
		MaxTemperature: NoTemperature,
		OverallColor:   ColorNormal,
		IsDisconnected: r.Disconnected,
	}
	if r.Disconnected {
		st.OverallColor = ColorDisconnected
		return st
	}

	seen := false
	for i, v := range r.Values {
		c := r.Colors[i]
		if c == ColorDisconnected {
			continue
		}
		if !seen || v > st.MaxTemperature {
			st.MaxTemperature = v
			seen = true
		}
		switch c {
		case ColorCritical:
			st.OverallColor = ColorCritical
		case ColorWarning:
			if st.OverallColor != ColorCritical {
				st.OverallColor = ColorWarning
			}
		}
	}
	if !seen {
		st.OverallColor = ColorDisconnected
	}
	return st
}
