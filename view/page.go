package view

import (
	"strings"

	"github.com/chasefleming/elem-go"
	"github.com/chasefleming/elem-go/attrs"
)

const pageCSS = `
body { font-family: sans-serif; margin: 2em; background: #fafafa; }
.cards { display: flex; flex-wrap: wrap; gap: 1.5em; }
.card { background: #fff; border-radius: 8px; padding: 1em; box-shadow: 0 1px 3px rgba(0,0,0,.15); }
.value { font-size: 2em; color: rgb(229, 57, 75); }
button { padding: .5em 1.5em; border-radius: 4px; border: 1px solid #999; background: #eee; }
.active-button { background: rgb(229, 57, 75); color: #fff; border-color: rgb(229, 57, 75); }
.hidden { display: none; }
`

// ChartImage places a rendered chart on the page.
type ChartImage struct {
	Canvas string
	Title  string
	Src    string
}

// Actions are the form targets of the controls.
type Actions struct {
	LightState string
	LightColor string
	FanState   string
	FanMode    string
}

// RenderPage renders the dashboard from the current element state.
func RenderPage(doc *Document, charts []ChartImage, actions Actions) string {
	states := map[string]ElementState{}
	for _, s := range doc.State() {
		states[s.ID] = s
	}

	var chartNodes []elem.Node
	for _, c := range charts {
		chartNodes = append(chartNodes, elem.Div(attrs.Props{attrs.Class: "card"},
			elem.H2(attrs.Props{}, elem.Text(c.Title)),
			elem.Img(attrs.Props{
				attrs.ID:    c.Canvas,
				attrs.Class: classes(states[c.Canvas]),
				attrs.Src:   c.Src,
				attrs.Alt:   c.Title,
			}),
		))
	}

	page := elem.Html(attrs.Props{},
		elem.Head(attrs.Props{},
			elem.Meta(attrs.Props{attrs.Charset: "utf-8"}),
			elem.Meta(attrs.Props{attrs.Name: "viewport", attrs.Content: "width=device-width, initial-scale=1"}),
			elem.Meta(attrs.Props{"http-equiv": "refresh", attrs.Content: "5"}),
			elem.Title(attrs.Props{}, elem.Text("Smart Home")),
			elem.Style(attrs.Props{}, elem.Text(pageCSS)),
		),
		elem.Body(attrs.Props{},
			elem.H1(attrs.Props{}, elem.Text("Smart Home")),
			elem.Div(attrs.Props{attrs.Class: "cards"},
				valueCard("Temperature", states[IDRealTemp]),
				valueCard("Humidity", states[IDRealHumid]),
				elem.Div(attrs.Props{attrs.Class: "card"},
					elem.H2(attrs.Props{}, elem.Text("Light")),
					buttonForm(actions.LightState, states[IDLedState]),
					colorForm(actions.LightColor, states[IDColorPicker]),
				),
				elem.Div(attrs.Props{attrs.Class: "card"},
					elem.H2(attrs.Props{}, elem.Text("Fan")),
					buttonForm(actions.FanMode, states[IDFanMode]),
					buttonForm(actions.FanState, states[IDFanState]),
				),
			),
			elem.Div(attrs.Props{attrs.Class: "cards"}, chartNodes...),
		),
	)
	return "<!DOCTYPE html>" + page.Render()
}

func valueCard(title string, s ElementState) elem.Node {
	return elem.Div(attrs.Props{attrs.Class: "card"},
		elem.H2(attrs.Props{}, elem.Text(title)),
		elem.Span(attrs.Props{attrs.ID: s.ID, attrs.Class: "value " + classes(s)}, elem.Text(s.Text)),
	)
}

func buttonForm(action string, s ElementState) elem.Node {
	return elem.Form(attrs.Props{attrs.Action: action, attrs.Method: "post"},
		elem.Button(attrs.Props{
			attrs.ID:    s.ID,
			attrs.Type:  "submit",
			attrs.Class: classes(s),
		}, elem.Text(s.Text)),
	)
}

func colorForm(action string, s ElementState) elem.Node {
	value := s.Value
	if value == "" {
		value = "#e5394b"
	}
	return elem.Form(attrs.Props{attrs.Action: action, attrs.Method: "post"},
		elem.Input(attrs.Props{
			attrs.ID:    s.ID,
			attrs.Type:  "color",
			attrs.Name:  "color",
			attrs.Value: value,
			attrs.Class: classes(s),
			"onchange":  "this.form.submit()",
		}),
	)
}

func classes(s ElementState) string {
	return strings.Join(s.Classes, " ")
}
