package home

import "strconv"

const (
	StateOn  = "on"
	StateOff = "off"

	FanModeAuto   = "auto"
	FanModeManual = "manual"
)

// Command is a payload for the device-control server. Endpoint is relative to
// the server's API base URL.
type Command interface {
	Endpoint() string
}

type LightStateCommand struct {
	Action string `json:"action"`
	State  string `json:"state"`
}

func (LightStateCommand) Endpoint() string { return "/light/state" }

type LightColorCommand struct {
	Action string `json:"action"`
	Red    string `json:"red"`
	Green  string `json:"green"`
	Blue   string `json:"blue"`
}

func (LightColorCommand) Endpoint() string { return "/light/color" }

type FanStateCommand struct {
	State string `json:"state"`
}

func (FanStateCommand) Endpoint() string { return "/fan/state" }

type FanModeCommand struct {
	Mode string `json:"mode"`
}

func (FanModeCommand) Endpoint() string { return "/fan/mode" }

// SwitchLight asks for the opposite of the given light state.
func SwitchLight(isOn bool) LightStateCommand {
	return LightStateCommand{Action: "switch", State: invert(isOn)}
}

func SetLightColor(c RGB) LightColorCommand {
	return LightColorCommand{
		Action: "color",
		Red:    strconv.Itoa(int(c.R)),
		Green:  strconv.Itoa(int(c.G)),
		Blue:   strconv.Itoa(int(c.B)),
	}
}

// SwitchFan asks for the opposite of the given fan state.
func SwitchFan(isOn bool) FanStateCommand {
	return FanStateCommand{State: invert(isOn)}
}

// SwitchFanMode asks for auto when manual and the other way round.
func SwitchFanMode(manual bool) FanModeCommand {
	if manual {
		return FanModeCommand{Mode: FanModeAuto}
	}
	return FanModeCommand{Mode: FanModeManual}
}

func invert(isOn bool) string {
	if isOn {
		return StateOff
	}
	return StateOn
}
