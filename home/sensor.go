package home

import (
	"strconv"
	"time"
)

// SensorKind names a sensor document in the "sensor" collection.
type SensorKind string

const (
	Temperature SensorKind = "temperature"
	Humidity    SensorKind = "humidity"
)

// SensorKinds lists the sensors shown on the dashboard, in display order.
var SensorKinds = []SensorKind{Temperature, Humidity}

func (k SensorKind) String() string {
	return string(k)
}

// Unit is the suffix of the "latest value" label.
func (k SensorKind) Unit() string {
	switch k {
	case Temperature:
		return "°C"
	case Humidity:
		return "%"
	}
	return ""
}

// Title is the chart title.
func (k SensorKind) Title() string {
	switch k {
	case Temperature:
		return "Real-Time Temperature Data"
	case Humidity:
		return "Real-Time Humidity Data"
	}
	return string(k)
}

// AxisLabel is the y-axis label and series name of the chart.
func (k SensorKind) AxisLabel() string {
	switch k {
	case Temperature:
		return "Temperature (°C)"
	case Humidity:
		return "Humidity (%)"
	}
	return string(k)
}

// Valid reports whether k is one of SensorKinds.
func (k SensorKind) Valid() bool {
	for _, s := range SensorKinds {
		if s == k {
			return true
		}
	}
	return false
}

// Label formats v the way the dashboard prints the latest value, e.g. "23.5 °C".
func (k SensorKind) Label(v float64) string {
	return FormatValue(v) + " " + k.Unit()
}

// FormatValue prints v in its shortest form (24, 23.5, 0.125).
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type Reading struct {
	At    time.Time
	Value float64
}

// Readings are kept in document order.
type Readings []Reading

// Series splits readings into parallel timestamp and value slices.
func (r Readings) Series() ([]time.Time, []float64) {
	at := make([]time.Time, len(r))
	values := make([]float64, len(r))
	for i, v := range r {
		at[i] = v.At
		values[i] = v.Value
	}
	return at, values
}

// Last returns the most recent reading; ok is false for an empty sequence.
func (r Readings) Last() (Reading, bool) {
	if len(r) == 0 {
		return Reading{}, false
	}
	return r[len(r)-1], true
}
