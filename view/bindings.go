package view

// Bindings are the dashboard elements, resolved once at startup.
type Bindings struct {
	TemperatureGraph *Element
	HumidityGraph    *Element
	RealTemp         *Element
	RealHumid        *Element
	LedState         *Element
	ColorPicker      *Element
	FanState         *Element
	FanMode          *Element
}

// Bind resolves all dashboard elements of doc. It fails if any is missing.
func Bind(doc *Document) (*Bindings, error) {
	var b Bindings
	targets := []struct {
		id  string
		dst **Element
	}{
		{IDTemperatureGraph, &b.TemperatureGraph},
		{IDHumidityGraph, &b.HumidityGraph},
		{IDRealTemp, &b.RealTemp},
		{IDRealHumid, &b.RealHumid},
		{IDLedState, &b.LedState},
		{IDColorPicker, &b.ColorPicker},
		{IDFanState, &b.FanState},
		{IDFanMode, &b.FanMode},
	}
	for _, t := range targets {
		e, err := doc.Element(t.id)
		if err != nil {
			return nil, err
		}
		*t.dst = e
	}
	return &b, nil
}
