package home

// ActuatorState mirrors the rtstate/actuators document.
type ActuatorState struct {
	LedIsOn bool
	FanIsOn bool
	// FanMode is true when the fan is controlled manually.
	FanMode bool

	// Color is the last colour written by the control server, if any.
	Color *RGB
}

func (s ActuatorState) FanModeName() string {
	if s.FanMode {
		return FanModeManual
	}
	return FanModeAuto
}
