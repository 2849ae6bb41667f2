// Package chart keeps a live line chart of one sensor and renders it to PNG.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNotEnoughData is returned by Render when fewer than two points are bound;
// a line needs a non-empty time range.
var ErrNotEnoughData = errors.New("chart needs at least two points")

const tooltipFormat = "15:04:05"

var (
	strokeColor = drawing.Color{R: 229, G: 57, B: 75, A: 255}
	fillColor   = drawing.Color{R: 229, G: 57, B: 75, A: 51}
)

// Binding is a time-series chart attached to a canvas of the dashboard.
type Binding struct {
	canvas string
	label  string
	title  string

	mu     sync.RWMutex
	labels []time.Time
	data   []float64
	png    []byte
	err    error
}

func New(canvasID, axisLabel, title string) *Binding {
	return &Binding{
		canvas: canvasID,
		label:  axisLabel,
		title:  title,
		err:    ErrNotEnoughData,
	}
}

func (b *Binding) Canvas() string {
	return b.canvas
}

func (b *Binding) Title() string {
	return b.title
}

// Update replaces the whole series and redraws the chart.
func (b *Binding) Update(labels []time.Time, data []float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.labels = append(b.labels[:0], labels...)
	b.data = append(b.data[:0], data...)

	var buf bytes.Buffer
	b.err = b.render(&buf)
	if b.err != nil {
		b.png = nil
		return
	}
	b.png = buf.Bytes()
}

func (b *Binding) Labels() []time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]time.Time(nil), b.labels...)
}

func (b *Binding) Data() []float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]float64(nil), b.data...)
}

// PNG returns the image drawn by the last Update.
func (b *Binding) PNG() ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.err != nil {
		return nil, b.err
	}
	return b.png, nil
}

// Render draws the current series to w.
func (b *Binding) Render(w io.Writer) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.render(w)
}

func (b *Binding) render(w io.Writer) error {
	labels, data := plottable(b.labels, b.data)
	if len(data) < 2 {
		return ErrNotEnoughData
	}
	minY, maxY := yRange(data)

	graph := chart.Chart{
		Title: b.title,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   10,
				Right:  25,
				Bottom: 10,
			},
		},
		XAxis: chart.XAxis{
			Name:           "Time",
			ValueFormatter: chart.TimeValueFormatterWithFormat(tooltipFormat),
		},
		YAxis: chart.YAxis{
			Name: b.label,
			NameStyle: chart.Style{
				TextRotationDegrees: 270,
			},
			Range: &chart.ContinuousRange{
				Min: minY,
				Max: maxY,
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    b.label,
				XValues: labels,
				YValues: data,
				Style: chart.Style{
					StrokeColor: strokeColor,
					FillColor:   fillColor,
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{
		chart.LegendThin(&graph),
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render %s chart failed: %w", b.canvas, err)
	}
	return nil
}

// plottable drops points whose value is NaN or infinite; go-chart cannot
// range over them.
func plottable(labels []time.Time, data []float64) ([]time.Time, []float64) {
	n := min(len(labels), len(data))
	xs := make([]time.Time, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(data[i]) || math.IsInf(data[i], 0) {
			continue
		}
		xs = append(xs, labels[i])
		ys = append(ys, data[i])
	}
	return xs, ys
}

// yRange always includes zero and pads the far side by a tenth of the span.
func yRange(data []float64) (float64, float64) {
	lo, hi := 0.0, 0.0
	for _, v := range data {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		return 0, 1
	}
	if lo < 0 {
		lo -= span * 0.1
	}
	if hi > 0 {
		hi += span * 0.1
	}
	return lo, hi
}
