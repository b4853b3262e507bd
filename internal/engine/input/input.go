// Package input handles SDL2 input events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType classifies processed events.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int
	Height int
	MouseX int
	MouseY int
	Button uint8
}

// Input handles all input processing.
type Input struct {
	events []Event
	drag   Drag
	drags  []Segment
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
		drag:   Drag{Button: sdl.BUTTON_LEFT},
	}
}

// Update polls SDL events. Returns true if the viewer should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0]
	i.drags = i.drags[:0]
	defer i.collectDrags()

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})
			return true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				i.events = append(i.events, Event{
					Type:   EventWindowResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			}

		case *sdl.KeyboardEvent:
			if e.Repeat != 0 {
				continue
			}
			typ := EventKeyUp
			if e.Type == sdl.KEYDOWN {
				typ = EventKeyDown
			}
			i.events = append(i.events, Event{Type: typ, Key: e.Keysym.Scancode})

		case *sdl.MouseMotionEvent:
			i.events = append(i.events, Event{
				Type:   EventMouseMove,
				MouseX: int(e.X),
				MouseY: int(e.Y),
			})

		case *sdl.MouseButtonEvent:
			typ := EventMouseUp
			if e.Type == sdl.MOUSEBUTTONDOWN {
				typ = EventMouseDown
			}
			i.events = append(i.events, Event{
				Type:   typ,
				MouseX: int(e.X),
				MouseY: int(e.Y),
				Button: e.Button,
			})
		}
	}

	return false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed checks if a specific key was pressed this frame.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode {
			return true
		}
	}
	return false
}

// Drags returns the drag segments of the last Update.
func (i *Input) Drags() []Segment {
	return i.drags
}

func (i *Input) collectDrags() {
	for _, e := range i.events {
		if s, ok := i.drag.Feed(e); ok {
			i.drags = append(i.drags, s)
		}
	}
}

// Segment is one mouse movement while the drag button was held, in window
// pixels.
type Segment struct {
	X0, Y0, X1, Y1 int
}

// Drag turns button and motion events into drag segments.
type Drag struct {
	Button uint8

	active bool
	x, y   int
}

// Feed consumes one event and reports the segment it completes, if any.
func (d *Drag) Feed(e Event) (Segment, bool) {
	switch e.Type {
	case EventMouseDown:
		if e.Button == d.Button {
			d.active, d.x, d.y = true, e.MouseX, e.MouseY
		}
	case EventMouseUp:
		if e.Button == d.Button {
			d.active = false
		}
	case EventMouseMove:
		if !d.active || (e.MouseX == d.x && e.MouseY == d.y) {
			return Segment{}, false
		}
		s := Segment{X0: d.x, Y0: d.y, X1: e.MouseX, Y1: e.MouseY}
		d.x, d.y = e.MouseX, e.MouseY
		return s, true
	}
	return Segment{}, false
}
