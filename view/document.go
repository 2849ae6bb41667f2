// Package view holds the dashboard's element state: the text and CSS classes
// of every control, addressed by element ID.
package view

import (
	"fmt"
	"sort"
	"sync"
)

const (
	ClassHidden = "hidden"
	ClassActive = "active-button"
)

// Element IDs of the dashboard page.
const (
	IDTemperatureGraph = "temperature-graph"
	IDHumidityGraph    = "humidity-graph"
	IDRealTemp         = "real-temp"
	IDRealHumid        = "real-humid"
	IDLedState         = "led-state"
	IDColorPicker      = "color-picker"
	IDFanState         = "fan-state"
	IDFanMode          = "fan-mode"
)

// ElementState is a point-in-time copy of one element.
type ElementState struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Value   string   `json:"value,omitempty"`
	Classes []string `json:"classes"`
}

func (s ElementState) HasClass(class string) bool {
	for _, c := range s.Classes {
		if c == class {
			return true
		}
	}
	return false
}

type element struct {
	text    string
	value   string
	classes map[string]struct{}
}

// Document is the set of elements of one page. It is safe for concurrent use.
type Document struct {
	mu       sync.RWMutex
	order    []string
	elements map[string]*element
}

func NewDocument(ids ...string) *Document {
	d := &Document{elements: make(map[string]*element, len(ids))}
	for _, id := range ids {
		d.add(id)
	}
	return d
}

// NewDashboardDocument creates the page the controllers expect.
func NewDashboardDocument() *Document {
	return NewDocument(
		IDTemperatureGraph,
		IDHumidityGraph,
		IDRealTemp,
		IDRealHumid,
		IDLedState,
		IDColorPicker,
		IDFanState,
		IDFanMode,
	)
}

func (d *Document) add(id string) {
	if _, ok := d.elements[id]; ok {
		return
	}
	d.order = append(d.order, id)
	d.elements[id] = &element{classes: map[string]struct{}{}}
}

// Element returns a handle to the element with the given ID.
func (d *Document) Element(id string) (*Element, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if _, ok := d.elements[id]; !ok {
		return nil, fmt.Errorf("element %q not found", id)
	}
	return &Element{doc: d, id: id}, nil
}

// State returns a copy of every element in creation order.
func (d *Document) State() []ElementState {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]ElementState, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.stateOf(id))
	}
	return out
}

func (d *Document) stateOf(id string) ElementState {
	e := d.elements[id]
	classes := make([]string, 0, len(e.classes))
	for c := range e.classes {
		classes = append(classes, c)
	}
	sort.Strings(classes)
	return ElementState{ID: id, Text: e.text, Value: e.value, Classes: classes}
}

// Element is a resolved reference into a Document.
type Element struct {
	doc *Document
	id  string
}

func (e *Element) ID() string {
	return e.id
}

func (e *Element) SetText(text string) {
	e.doc.mu.Lock()
	e.doc.elements[e.id].text = text
	e.doc.mu.Unlock()
}

// SetValue sets the value of an input element.
func (e *Element) SetValue(value string) {
	e.doc.mu.Lock()
	e.doc.elements[e.id].value = value
	e.doc.mu.Unlock()
}

func (e *Element) AddClass(class string) {
	e.doc.mu.Lock()
	e.doc.elements[e.id].classes[class] = struct{}{}
	e.doc.mu.Unlock()
}

func (e *Element) RemoveClass(class string) {
	e.doc.mu.Lock()
	delete(e.doc.elements[e.id].classes, class)
	e.doc.mu.Unlock()
}

// Toggle adds class when on is true and removes it otherwise.
func (e *Element) Toggle(class string, on bool) {
	if on {
		e.AddClass(class)
		return
	}
	e.RemoveClass(class)
}

func (e *Element) State() ElementState {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	return e.doc.stateOf(e.id)
}
