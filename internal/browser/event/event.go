// internal/browser/event/event.go
package event

import (
	"fmt"

	"github.com/xkilldash9x/lattice/internal/browser/dom"
)

// ReturnCode tells the dispatcher what to do after a listener ran.
type ReturnCode int

const (
	// Continue runs the next listener.
	Continue ReturnCode = iota
	// Cancel stops the remaining listeners and the loop feeding events.
	Cancel
	// Quit asks the owner of the loop to shut down.
	Quit
)

func (c ReturnCode) String() string {
	switch c {
	case Continue:
		return "continue"
	case Cancel:
		return "cancel"
	case Quit:
		return "quit"
	}
	return fmt.Sprintf("ReturnCode(%d)", int(c))
}

// Kind identifies the type of an input event.
type Kind int

const (
	PointerDown Kind = iota
	PointerUp
	PointerMove
	Scroll
	Resize

	kindCount
)

func (k Kind) String() string {
	switch k {
	case PointerDown:
		return "pointer-down"
	case PointerUp:
		return "pointer-up"
	case PointerMove:
		return "pointer-move"
	case Scroll:
		return "scroll"
	case Resize:
		return "resize"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Event is one input event. Target and TargetID are filled in by the
// dispatcher's owner from the hit-test buffer before listeners run; both are
// zero when the position hit nothing.
type Event struct {
	Kind   Kind
	X, Y   int
	Button int
	// DeltaX and DeltaY carry scroll amounts.
	DeltaX, DeltaY float64
	// Width and Height carry the new size for Resize.
	Width, Height int

	Target   dom.Handle
	TargetID uint32
}

// Listener handles an event. C is whatever context the owner passes along,
// typically the window that received the event.
type Listener[C any] func(ev Event, ctx C) ReturnCode

// Dispatcher keeps listener lists per event kind and calls them in
// registration order. It is not safe for concurrent use.
type Dispatcher[C any] struct {
	listeners [kindCount][]Listener[C]
}

// On registers l for events of the given kind.
func (d *Dispatcher[C]) On(kind Kind, l Listener[C]) {
	if kind < 0 || kind >= kindCount || l == nil {
		return
	}
	d.listeners[kind] = append(d.listeners[kind], l)
}

// Len is the number of listeners for a kind.
func (d *Dispatcher[C]) Len(kind Kind) int {
	if kind < 0 || kind >= kindCount {
		return 0
	}
	return len(d.listeners[kind])
}

// Reset drops every listener.
func (d *Dispatcher[C]) Reset() {
	d.listeners = [kindCount][]Listener[C]{}
}

// Dispatch calls the listeners for ev.Kind until one returns something
// other than Continue, and returns that code.
func (d *Dispatcher[C]) Dispatch(ev Event, ctx C) ReturnCode {
	if ev.Kind < 0 || ev.Kind >= kindCount {
		return Continue
	}
	for _, l := range d.listeners[ev.Kind] {
		if code := l(ev, ctx); code != Continue {
			return code
		}
	}
	return Continue
}
