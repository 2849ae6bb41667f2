package dashboard

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ISim/Arduino/smarthome/chart"
	"github.com/ISim/Arduino/smarthome/home"
	"github.com/ISim/Arduino/smarthome/view"
)

type sent struct {
	url     string
	payload interface{}
}

type fakeDispatcher struct {
	mu   sync.Mutex
	sent []sent
}

func (f *fakeDispatcher) Dispatch(url string, payload interface{}) {
	f.mu.Lock()
	f.sent = append(f.sent, sent{url: url, payload: payload})
	f.mu.Unlock()
}

type fakeNotifier struct {
	msgs []string
	err  error
}

func (f *fakeNotifier) Notify(_ context.Context, msg string) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msg)
	return nil
}

func bindings(t *testing.T) *view.Bindings {
	t.Helper()
	b, err := view.Bind(view.NewDashboardDocument())
	require.NoError(t, err)
	return b
}

func readings(values ...float64) home.Readings {
	t0 := time.Date(2025, 2, 3, 18, 0, 0, 0, time.UTC)
	r := make(home.Readings, len(values))
	for i, v := range values {
		r[i] = home.Reading{At: t0.Add(time.Duration(i) * time.Second), Value: v}
	}
	return r
}

func TestSensorSnapshotsReplaceSeries(t *testing.T) {
	b := bindings(t)
	c := chart.New(view.IDTemperatureGraph, home.Temperature.AxisLabel(), home.Temperature.Title())
	s := NewSensorController(home.Temperature, c, b.RealTemp, nil, nil)

	for _, snap := range []home.Readings{
		readings(21, 21.5),
		readings(21, 21.5, 22),
		readings(19.25, 20, 20.5, 23),
	} {
		s.HandleSnapshot(snap, true)

		_, values := snap.Series()
		assert.Equal(t, values, c.Data())
		last, _ := snap.Last()
		assert.Equal(t, home.Temperature.Label(last.Value), b.RealTemp.State().Text)
	}
	assert.Equal(t, "23 °C", b.RealTemp.State().Text)
}

func TestSensorHumidityUnit(t *testing.T) {
	b := bindings(t)
	c := chart.New(view.IDHumidityGraph, home.Humidity.AxisLabel(), home.Humidity.Title())
	s := NewSensorController(home.Humidity, c, b.RealHumid, nil, nil)

	s.HandleSnapshot(readings(40, 41.5), true)
	assert.Equal(t, "41.5 %", b.RealHumid.State().Text)
}

func TestSensorAbsentDocumentKeepsView(t *testing.T) {
	b := bindings(t)
	c := chart.New(view.IDTemperatureGraph, "", "")
	s := NewSensorController(home.Temperature, c, b.RealTemp, nil, nil)

	s.HandleSnapshot(readings(20, 21), true)
	require.NotPanics(t, func() { s.HandleSnapshot(nil, false) })

	assert.Equal(t, []float64{20, 21}, c.Data())
	assert.Equal(t, "21 °C", b.RealTemp.State().Text)
}

func TestSensorEmptyReadingsClearChartKeepLabel(t *testing.T) {
	b := bindings(t)
	c := chart.New(view.IDTemperatureGraph, "", "")
	s := NewSensorController(home.Temperature, c, b.RealTemp, nil, nil)

	s.HandleSnapshot(readings(20, 21), true)
	s.HandleSnapshot(home.Readings{}, true)

	assert.Empty(t, c.Data())
	assert.Equal(t, "21 °C", b.RealTemp.State().Text)
}

func TestActuatorFanAutoHidesFanButton(t *testing.T) {
	b := bindings(t)
	a := NewActuatorController(b, &fakeDispatcher{}, "http://ctl/api", nil)

	a.HandleSnapshot(home.ActuatorState{FanMode: false, FanIsOn: true}, true)

	assert.True(t, b.FanState.State().HasClass(view.ClassHidden))
	assert.Equal(t, "Auto", b.FanMode.State().Text)
	assert.False(t, b.FanMode.State().HasClass(view.ClassActive))
}

func TestActuatorFanManualRunning(t *testing.T) {
	b := bindings(t)
	a := NewActuatorController(b, &fakeDispatcher{}, "http://ctl/api", nil)

	a.HandleSnapshot(home.ActuatorState{FanMode: false}, true)
	a.HandleSnapshot(home.ActuatorState{FanMode: true, FanIsOn: true}, true)

	fan := b.FanState.State()
	assert.False(t, fan.HasClass(view.ClassHidden))
	assert.True(t, fan.HasClass(view.ClassActive))
	assert.Equal(t, "Running", fan.Text)
	assert.Equal(t, "Manual", b.FanMode.State().Text)
	assert.True(t, b.FanMode.State().HasClass(view.ClassActive))

	a.HandleSnapshot(home.ActuatorState{FanMode: true, FanIsOn: false}, true)
	fan = b.FanState.State()
	assert.False(t, fan.HasClass(view.ClassActive))
	assert.Equal(t, "Off", fan.Text)
}

func TestActuatorLight(t *testing.T) {
	b := bindings(t)
	a := NewActuatorController(b, &fakeDispatcher{}, "http://ctl/api", nil)

	a.HandleSnapshot(home.ActuatorState{LedIsOn: true, Color: &home.RGB{R: 229, G: 57, B: 75}}, true)
	assert.False(t, b.ColorPicker.State().HasClass(view.ClassHidden))
	assert.Equal(t, "#e5394b", b.ColorPicker.State().Value)
	assert.True(t, b.LedState.State().HasClass(view.ClassActive))
	assert.Equal(t, "On", b.LedState.State().Text)

	a.HandleSnapshot(home.ActuatorState{LedIsOn: false}, true)
	assert.True(t, b.ColorPicker.State().HasClass(view.ClassHidden))
	assert.False(t, b.LedState.State().HasClass(view.ClassActive))
	assert.Equal(t, "Off", b.LedState.State().Text)
}

func TestActuatorAbsentDocumentKeepsState(t *testing.T) {
	b := bindings(t)
	a := NewActuatorController(b, &fakeDispatcher{}, "http://ctl/api", nil)

	a.HandleSnapshot(home.ActuatorState{LedIsOn: true}, true)
	a.HandleSnapshot(home.ActuatorState{}, false)

	assert.True(t, a.State().LedIsOn)
	assert.Equal(t, "On", b.LedState.State().Text)
}

func TestActionsDispatchOneCommandEach(t *testing.T) {
	d := &fakeDispatcher{}
	a := NewActuatorController(bindings(t), d, "http://ctl:5000/api", nil)
	a.HandleSnapshot(home.ActuatorState{LedIsOn: true, FanIsOn: false, FanMode: true}, true)

	a.ToggleLight()
	_, err := a.SetColor("#E5394B")
	require.NoError(t, err)
	a.ToggleFan()
	a.ToggleFanMode()

	require.Len(t, d.sent, 4)
	assert.Equal(t, sent{"http://ctl:5000/api/light/state", home.LightStateCommand{Action: "switch", State: "off"}}, d.sent[0])
	assert.Equal(t, sent{"http://ctl:5000/api/light/color", home.LightColorCommand{Action: "color", Red: "229", Green: "57", Blue: "75"}}, d.sent[1])
	assert.Equal(t, sent{"http://ctl:5000/api/fan/state", home.FanStateCommand{State: "on"}}, d.sent[2])
	assert.Equal(t, sent{"http://ctl:5000/api/fan/mode", home.FanModeCommand{Mode: "auto"}}, d.sent[3])
}

func TestToggleTwiceUsesCachedState(t *testing.T) {
	d := &fakeDispatcher{}
	a := NewActuatorController(bindings(t), d, "http://ctl/api", nil)
	a.HandleSnapshot(home.ActuatorState{LedIsOn: false}, true)

	a.ToggleLight()
	a.ToggleLight()

	require.Len(t, d.sent, 2)
	assert.Equal(t, d.sent[0], d.sent[1])
	assert.Equal(t, "on", d.sent[0].payload.(home.LightStateCommand).State)
}

func TestSetColorInvalidHex(t *testing.T) {
	d := &fakeDispatcher{}
	a := NewActuatorController(bindings(t), d, "http://ctl/api", nil)

	_, err := a.SetColor("not-a-colour")
	require.Error(t, err)
	assert.Empty(t, d.sent)
}

func TestThresholdFiresOncePerCrossing(t *testing.T) {
	n := &fakeNotifier{}
	th := NewThreshold(home.Temperature, 30, n)
	ctx := context.Background()

	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.False(t, th.Observe(ctx, home.Reading{At: at, Value: 29}))
	assert.True(t, th.Observe(ctx, home.Reading{At: at, Value: 31}))
	assert.False(t, th.Observe(ctx, home.Reading{At: at, Value: 32}))
	assert.False(t, th.Observe(ctx, home.Reading{At: at, Value: 25}))
	assert.True(t, th.Observe(ctx, home.Reading{At: at, Value: 30.5}))

	require.Len(t, n.msgs, 2)
	assert.Contains(t, n.msgs[0], "31 °C")
}

func TestThresholdDeliveryFailure(t *testing.T) {
	n := &fakeNotifier{err: errors.New("boom")}
	th := NewThreshold(home.Humidity, 60, n)
	ctx := context.Background()

	assert.False(t, th.Observe(ctx, home.Reading{Value: 80}))
	assert.Empty(t, n.msgs)

	n.err = nil
	assert.True(t, th.Observe(ctx, home.Reading{Value: 81}))
	assert.False(t, th.Observe(ctx, home.Reading{Value: 82}))
	require.Len(t, n.msgs, 1)
	assert.Contains(t, n.msgs[0], "81 %")
}

func TestThresholdIgnoresNaN(t *testing.T) {
	n := &fakeNotifier{}
	th := NewThreshold(home.Temperature, 30, n)
	ctx := context.Background()

	assert.False(t, th.Observe(ctx, home.Reading{Value: math.NaN()}))
	assert.True(t, th.Observe(ctx, home.Reading{Value: 31}))
	assert.False(t, th.Observe(ctx, home.Reading{Value: math.NaN()}))
	assert.False(t, th.Observe(ctx, home.Reading{Value: 32}))
	assert.Len(t, n.msgs, 1)
}

type blockingNotifier struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingNotifier) Notify(ctx context.Context, _ string) error {
	b.entered <- struct{}{}
	select {
	case <-b.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestSensorSnapshotNotBlockedBySlowAlert(t *testing.T) {
	b := bindings(t)
	n := &blockingNotifier{entered: make(chan struct{}, 1), release: make(chan struct{})}
	c := chart.New(view.IDTemperatureGraph, "", "")
	s := NewSensorController(home.Temperature, c, b.RealTemp, NewThreshold(home.Temperature, 30, n), nil)

	first := make(chan struct{})
	go func() {
		s.HandleSnapshot(readings(29, 35), true)
		close(first)
	}()
	<-n.entered

	second := make(chan struct{})
	go func() {
		s.HandleSnapshot(readings(29, 35, 24), true)
		close(second)
	}()
	assert.Eventually(t, func() bool {
		return b.RealTemp.State().Text == "24 °C"
	}, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, []float64{29, 35, 24}, c.Data())

	close(n.release)
	<-first
	<-second
}

func TestSensorNonFiniteReading(t *testing.T) {
	b := bindings(t)
	c := chart.New(view.IDTemperatureGraph, home.Temperature.AxisLabel(), home.Temperature.Title())
	s := NewSensorController(home.Temperature, c, b.RealTemp, nil, nil)

	done := make(chan struct{})
	go func() {
		s.HandleSnapshot(readings(21, math.NaN()), true)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("HandleSnapshot did not return for a NaN reading")
	}
	assert.Equal(t, "NaN °C", b.RealTemp.State().Text)
	_, err := c.PNG()
	assert.ErrorIs(t, err, chart.ErrNotEnoughData)

	s.HandleSnapshot(readings(21, math.Inf(1), 22), true)
	assert.Equal(t, "22 °C", b.RealTemp.State().Text)
	png, err := c.PNG()
	require.NoError(t, err)
	assert.NotEmpty(t, png)
}

func TestSensorControllerRaisesAlert(t *testing.T) {
	b := bindings(t)
	n := &fakeNotifier{}
	s := NewSensorController(home.Humidity, chart.New(view.IDHumidityGraph, "", ""), b.RealHumid, NewThreshold(home.Humidity, 70, n), nil)

	s.HandleSnapshot(readings(65, 75), true)
	s.HandleSnapshot(readings(65, 75, 76), true)
	assert.Len(t, n.msgs, 1)
}

type fakeChats struct{ ids []int64 }

func (f fakeChats) AllChats(context.Context) ([]int64, error) { return f.ids, nil }

type fakePublisher struct {
	chats []int64
	msg   string
	calls int
}

func (f *fakePublisher) PlainMessage(_ context.Context, chats []int64, msg string) error {
	f.calls++
	f.chats, f.msg = chats, msg
	return nil
}

func TestChatNotifier(t *testing.T) {
	p := &fakePublisher{}
	n := &ChatNotifier{Chats: fakeChats{ids: []int64{1, 2}}, Publisher: p}
	require.NoError(t, n.Notify(context.Background(), "hello"))
	assert.Equal(t, []int64{1, 2}, p.chats)
	assert.Equal(t, "hello", p.msg)

	p = &fakePublisher{}
	n = &ChatNotifier{Chats: fakeChats{}, Publisher: p}
	require.NoError(t, n.Notify(context.Background(), "nobody"))
	assert.Zero(t, p.calls)
}
