// Package input translates global keyboard chords and gamepad button presses
// into engine actions. Capture backends deliver raw events; dispatch matches
// them against the bindings of the active document, honoring the engine's
// pause gate on every event.
package input

import (
	"sync"

	"courtside/internal/core/engine"
	"courtside/internal/core/model"
)

// KeyEvent is one key-down delivered by a capture backend, with the modifier
// state at the time of the press.
type KeyEvent struct {
	Key   string
	Ctrl  bool
	Alt   bool
	Shift bool
	Win   bool
}

// Capture is the global keyboard capture collaborator. Events arrive
// regardless of window focus.
type Capture interface {
	// Start begins capturing and returns the event channel.
	Start() (<-chan KeyEvent, error)

	// Stop terminates capture and closes the event channel.
	Stop() error
}

// Binding pairs one chord with the action it triggers.
type Binding struct {
	Chord  model.Chord
	Action engine.Action
}

// Bindings flattens every keybind in the document into a binding list.
// Duplicate chords across components are legal and all retained.
func Bindings(doc model.Document) []Binding {
	var bindings []Binding

	add := func(chord *model.Chord, actionType engine.ActionType, id string) {
		if chord == nil {
			return
		}
		bindings = append(bindings, Binding{
			Chord:  *chord,
			Action: engine.Action{Type: actionType, ID: id},
		})
	}

	for _, component := range doc.Components {
		switch component.Kind {
		case model.KindNumber:
			keys := component.Number.Keys
			if keys == nil {
				continue
			}
			add(keys.Increase, engine.ActionNumberIncrease, component.ID)
			add(keys.Decrease, engine.ActionNumberDecrease, component.ID)
			add(keys.Reset, engine.ActionNumberReset, component.ID)
		case model.KindTimer:
			keys := component.Timer.Keys
			if keys == nil {
				continue
			}
			add(&keys.Start, engine.ActionTimerStart, component.ID)
			add(&keys.Stop, engine.ActionTimerStop, component.ID)
			add(keys.Increase, engine.ActionTimerIncrease, component.ID)
			add(keys.Decrease, engine.ActionTimerDecrease, component.ID)
			add(keys.Reset, engine.ActionTimerReset, component.ID)
		case model.KindImageToggle:
			keys := component.Toggle.Keys
			if keys == nil {
				continue
			}
			add(keys.Forward, engine.ActionToggleForward, component.ID)
			add(keys.Backward, engine.ActionToggleBackward, component.ID)
		case model.KindLabel, model.KindImage:
			// No keybinds.
		}
	}

	return bindings
}

// Dispatcher routes input events to the engine.
type Dispatcher struct {
	mu       sync.RWMutex
	bindings []Binding
	engine   *engine.Engine
}

// NewDispatcher creates a dispatcher bound to an engine.
func NewDispatcher(eng *engine.Engine) *Dispatcher {
	return &Dispatcher{engine: eng}
}

// Rebind replaces the binding set, typically after a config reload.
func (d *Dispatcher) Rebind(bindings []Binding) {
	d.mu.Lock()
	d.bindings = bindings
	d.mu.Unlock()
}

// HandleKey dispatches one keyboard event. Every matching binding fires;
// bindings on different components are independent even when their chords
// collide. Nothing fires while the engine is paused.
func (d *Dispatcher) HandleKey(event KeyEvent) {
	if d.engine.Paused() {
		return
	}

	d.mu.RLock()
	bindings := d.bindings
	d.mu.RUnlock()

	for _, binding := range bindings {
		if binding.Chord.Matches(event.Key, event.Ctrl, event.Alt, event.Shift, event.Win) {
			d.engine.Apply(binding.Action)
		}
	}
}

// HandleButton dispatches one gamepad button press.
func (d *Dispatcher) HandleButton(button string) {
	if d.engine.Paused() {
		return
	}

	d.mu.RLock()
	bindings := d.bindings
	d.mu.RUnlock()

	for _, binding := range bindings {
		if binding.Chord.MatchesButton(button) {
			d.engine.Apply(binding.Action)
		}
	}
}

// Run consumes capture events until the channel closes.
func (d *Dispatcher) Run(events <-chan KeyEvent) {
	for event := range events {
		d.HandleKey(event)
	}
}
