package dashboard

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/ISim/Arduino/smarthome/chart"
	"github.com/ISim/Arduino/smarthome/home"
	"github.com/ISim/Arduino/smarthome/metrics"
	"github.com/ISim/Arduino/smarthome/view"
)

// SensorController keeps one chart and its "latest value" label in sync with
// a sensor document.
type SensorController struct {
	kind    home.SensorKind
	chart   *chart.Binding
	label   *view.Element
	alert   *Threshold
	metrics metrics.Collector

	mu sync.Mutex
}

// NewSensorController binds kind to its chart and label. alert may be nil.
func NewSensorController(kind home.SensorKind, c *chart.Binding, label *view.Element, alert *Threshold, collector metrics.Collector) *SensorController {
	if collector == nil {
		collector = metrics.Noop()
	}
	return &SensorController{
		kind:    kind,
		chart:   c,
		label:   label,
		alert:   alert,
		metrics: collector,
	}
}

func (s *SensorController) Kind() home.SensorKind {
	return s.kind
}

func (s *SensorController) Chart() *chart.Binding {
	return s.chart
}

// HandleSnapshot renders one snapshot of the sensor document. An absent
// document leaves the chart and label as they were.
func (s *SensorController) HandleSnapshot(readings home.Readings, exists bool) {
	last, ok := s.render(readings, exists)
	if ok && s.alert != nil {
		s.alert.Observe(context.Background(), last)
	}
}

// render applies the snapshot to the view under the controller lock and
// returns the latest reading, if any.
func (s *SensorController) render(readings home.Readings, exists bool) (home.Reading, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.IncSnapshot(s.kind.String(), exists)

	if !exists {
		log.Info().Str("sensor", s.kind.String()).Msg("No data found")
		return home.Reading{}, false
	}

	labels, data := readings.Series()
	s.chart.Update(labels, data)

	last, ok := readings.Last()
	if !ok {
		log.Debug().Str("sensor", s.kind.String()).Msg("Sensor document has no readings")
		return home.Reading{}, false
	}
	s.label.SetText(s.kind.Label(last.Value))
	return last, true
}
