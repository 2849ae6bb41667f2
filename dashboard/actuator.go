package dashboard

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/ISim/Arduino/smarthome/home"
	"github.com/ISim/Arduino/smarthome/metrics"
	"github.com/ISim/Arduino/smarthome/view"
)

// Dispatcher sends a command payload to an absolute URL without waiting.
type Dispatcher interface {
	Dispatch(url string, payload interface{})
}

// UIState is the last actuator state received from the store. It is only
// written by HandleSnapshot; actions read it to decide what to toggle.
type UIState struct {
	home.ActuatorState
	Received bool
}

// ActuatorController renders the actuator document into the light and fan
// controls and turns user actions into commands.
type ActuatorController struct {
	view     *view.Bindings
	dispatch Dispatcher
	baseURL  string
	metrics  metrics.Collector

	mu    sync.Mutex
	state UIState
}

// NewActuatorController creates the controller. baseURL is the API root of
// the control server, e.g. http://192.168.1.10:5000/api.
func NewActuatorController(b *view.Bindings, d Dispatcher, baseURL string, collector metrics.Collector) *ActuatorController {
	if collector == nil {
		collector = metrics.Noop()
	}
	return &ActuatorController{
		view:     b,
		dispatch: d,
		baseURL:  baseURL,
		metrics:  collector,
	}
}

// State returns the cached actuator state.
func (a *ActuatorController) State() UIState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// HandleSnapshot replaces the cached state with the snapshot and re-renders
// the controls. An absent document is only logged.
func (a *ActuatorController) HandleSnapshot(s home.ActuatorState, exists bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.metrics.IncSnapshot("actuators", exists)

	if !exists {
		log.Info().Str("doc", "actuators").Msg("No data found")
		return
	}

	log.Debug().
		Bool("led", s.LedIsOn).
		Bool("fan", s.FanIsOn).
		Str("fan_mode", s.FanModeName()).
		Msg("Actuator state received")

	a.state = UIState{ActuatorState: s, Received: true}
	renderFan(a.view, s)
	renderLight(a.view, s)
}

func renderFan(v *view.Bindings, s home.ActuatorState) {
	if !s.FanMode {
		v.FanState.AddClass(view.ClassHidden)
		v.FanMode.SetText("Auto")
		v.FanMode.RemoveClass(view.ClassActive)
		return
	}

	v.FanState.RemoveClass(view.ClassHidden)
	v.FanMode.AddClass(view.ClassActive)
	v.FanMode.SetText("Manual")

	v.FanState.Toggle(view.ClassActive, s.FanIsOn)
	if s.FanIsOn {
		v.FanState.SetText("Running")
	} else {
		v.FanState.SetText("Off")
	}
}

func renderLight(v *view.Bindings, s home.ActuatorState) {
	if s.Color != nil {
		v.ColorPicker.SetValue(s.Color.Hex())
	}

	if !s.LedIsOn {
		v.ColorPicker.AddClass(view.ClassHidden)
		v.LedState.RemoveClass(view.ClassActive)
		v.LedState.SetText("Off")
		return
	}

	v.ColorPicker.RemoveClass(view.ClassHidden)
	v.LedState.AddClass(view.ClassActive)
	v.LedState.SetText("On")
}

// The toggles below act on the cached state, which may lag behind the
// document until the next snapshot arrives. Two quick clicks therefore send
// the same command twice.

func (a *ActuatorController) ToggleLight() home.Command {
	return a.send(home.SwitchLight(a.State().LedIsOn))
}

// SetColor sends the colour picked as "#rrggbb".
func (a *ActuatorController) SetColor(hex string) (home.Command, error) {
	rgb, err := home.HexToRGB(hex)
	if err != nil {
		return nil, err
	}
	return a.send(home.SetLightColor(rgb)), nil
}

func (a *ActuatorController) ToggleFan() home.Command {
	return a.send(home.SwitchFan(a.State().FanIsOn))
}

func (a *ActuatorController) ToggleFanMode() home.Command {
	return a.send(home.SwitchFanMode(a.State().FanMode))
}

func (a *ActuatorController) send(cmd home.Command) home.Command {
	log.Debug().Str("endpoint", cmd.Endpoint()).Interface("payload", cmd).Msg("Sending command")
	a.dispatch.Dispatch(a.baseURL+cmd.Endpoint(), cmd)
	return cmd
}
