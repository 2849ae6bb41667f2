package view

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindResolvesAllElements(t *testing.T) {
	b, err := Bind(NewDashboardDocument())
	require.NoError(t, err)
	assert.Equal(t, IDFanMode, b.FanMode.ID())
	assert.Equal(t, IDTemperatureGraph, b.TemperatureGraph.ID())
}

func TestBindMissingElement(t *testing.T) {
	_, err := Bind(NewDocument(IDRealTemp))
	require.Error(t, err)
	assert.Contains(t, err.Error(), IDTemperatureGraph)
}

func TestElementClassesAndText(t *testing.T) {
	doc := NewDocument("x")
	e, err := doc.Element("x")
	require.NoError(t, err)

	e.AddClass(ClassHidden)
	e.AddClass(ClassActive)
	e.AddClass(ClassActive)
	e.SetText("On")

	s := e.State()
	assert.Equal(t, []string{ClassActive, ClassHidden}, s.Classes)
	assert.Equal(t, "On", s.Text)

	e.Toggle(ClassHidden, false)
	assert.False(t, e.State().HasClass(ClassHidden))
	assert.True(t, e.State().HasClass(ClassActive))
}

func TestRenderPage(t *testing.T) {
	doc := NewDashboardDocument()
	b, err := Bind(doc)
	require.NoError(t, err)

	b.RealTemp.SetText("23.5 °C")
	b.FanState.AddClass(ClassHidden)
	b.FanMode.SetText("Auto")

	html := RenderPage(doc, []ChartImage{
		{Canvas: IDTemperatureGraph, Title: "Real-Time Temperature Data", Src: "/charts/temperature.png"},
	}, Actions{
		LightState: "/actions/light/state",
		LightColor: "/actions/light/color",
		FanState:   "/actions/fan/state",
		FanMode:    "/actions/fan/mode",
	})

	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "23.5 °C")
	assert.Contains(t, html, `/charts/temperature.png`)
	assert.Contains(t, html, `/actions/fan/mode`)
	assert.Contains(t, html, `id="fan-state"`)
	assert.Contains(t, html, ">Auto<")
}
