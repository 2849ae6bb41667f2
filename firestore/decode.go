package firestore

import (
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ISim/Arduino/smarthome/home"
)

// decodeReadings maps {readings: [{timestamp, value}]} to home.Readings.
// A missing array yields no readings; malformed entries keep zero values.
func decodeReadings(data map[string]interface{}) home.Readings {
	raw, _ := data["readings"].([]interface{})
	readings := make(home.Readings, 0, len(raw))
	for _, item := range raw {
		m, _ := item.(map[string]interface{})
		readings = append(readings, home.Reading{
			At:    toTime(m["timestamp"]),
			Value: toFloat(m["value"]),
		})
	}
	return readings
}

func decodeActuators(data map[string]interface{}) home.ActuatorState {
	s := home.ActuatorState{
		LedIsOn: toBool(data["ledIsOn"]),
		FanIsOn: toBool(data["fanIsOn"]),
		FanMode: toBool(data["fanMode"]),
	}

	r, okR := toChannel(data["red"])
	g, okG := toChannel(data["green"])
	b, okB := toChannel(data["blue"])
	if okR && okG && okB {
		s.Color = &home.RGB{R: r, G: g, B: b}
	}
	return s
}

func toTime(v interface{}) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed
			}
		}
		log.Debug().Str("timestamp", t).Msg("Unparseable reading timestamp")
	case int64:
		return time.UnixMilli(t)
	case float64:
		return time.UnixMilli(int64(t))
	}
	return time.Time{}
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			log.Debug().Str("value", n).Msg("Unparseable reading value")
		}
		return f
	}
	return 0
}

func toBool(v interface{}) bool {
	b, _ := v.(bool)
	return b
}

func toChannel(v interface{}) (uint8, bool) {
	var n int64
	switch c := v.(type) {
	case string:
		parsed, err := strconv.ParseInt(c, 10, 64)
		if err != nil {
			return 0, false
		}
		n = parsed
	case int64:
		n = c
	case float64:
		n = int64(c)
	default:
		return 0, false
	}
	if n < 0 || n > 255 {
		return 0, false
	}
	return uint8(n), true
}
