// Package engine owns the live scoreboard state: one synchronized owner of
// the active configuration document and every component value. All input
// sources (hotkeys, gamepad polling, config reloads, UI edits, the tick
// clock) funnel through it, and every state change is published to observers
// as an immutable snapshot.
package engine

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"courtside/internal/core/model"
)

// ErrCaptureUnsupported indicates global input capture is not available on
// this system.
var ErrCaptureUnsupported = errors.New("global input capture unsupported")

// Step applied by timer increase/decrease actions.
const timerStep = time.Second

// CaptureGate lets the engine enable or disable the global input capture
// collaborator when the effective pause state changes. The call may fail;
// the engine rolls its pause flags back when it does.
type CaptureGate interface {
	SetEnabled(enabled bool) error
}

// Options contains runtime options for the Engine.
type Options struct {
	// TickInterval bounds how often snapshots refresh while a timer runs.
	TickInterval time.Duration

	// Now supplies the clock; defaults to time.Now.
	Now func() time.Time

	// Capture receives pause-state changes. Optional.
	Capture CaptureGate
}

// Engine is the synchronized owner of the active Document and all component
// state.
type Engine struct {
	mu      sync.Mutex
	options Options

	doc     model.Document
	numbers map[string]int
	timers  map[string]*timerState
	labels  map[string]string
	toggles map[string]int
	// images holds runtime source replacements keyed by component id.
	images map[string]string

	manualPause bool
	editing     string
	version     uint64

	events  []chan Event
	stopCh  chan struct{}
	running bool
}

// timerState tracks one timer. While running, displayed elapsed is
// elapsed + (now - startedAt); elapsed alone is authoritative when stopped.
type timerState struct {
	elapsed   time.Duration
	running   bool
	startedAt time.Time
}

func (t *timerState) liveElapsed(now time.Time) time.Duration {
	elapsed := t.elapsed
	if t.running {
		elapsed += now.Sub(t.startedAt)
	}
	if elapsed < 0 {
		elapsed = 0
	}
	return elapsed
}

// New creates an Engine with an empty document.
func New(options Options) *Engine {
	if options.TickInterval <= 0 {
		options.TickInterval = 50 * time.Millisecond
	}
	if options.Now == nil {
		options.Now = time.Now
	}

	return &Engine{
		options: options,
		doc:     model.Empty(),
		numbers: make(map[string]int),
		timers:  make(map[string]*timerState),
		labels:  make(map[string]string),
		toggles: make(map[string]int),
		images:  make(map[string]string),
		stopCh:  make(chan struct{}),
	}
}

// Subscribe registers a new observer channel.
func (e *Engine) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	e.mu.Lock()
	e.events = append(e.events, ch)
	e.mu.Unlock()
	return ch
}

// Start launches the snapshot refresh loop.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.mu.Unlock()

	go e.run()
}

// Stop terminates the refresh loop and closes observers.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	close(e.stopCh)
	e.running = false
	events := e.events
	e.events = nil
	e.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

// ApplyDocument installs a new configuration document, reconciling component
// state by id: surviving ids keep their live values untouched, removed ids
// are discarded, new ids start from their configured defaults.
func (e *Engine) ApplyDocument(doc model.Document) {
	e.mu.Lock()

	numbers := make(map[string]int, len(doc.Components))
	timers := make(map[string]*timerState, len(doc.Components))
	labels := make(map[string]string, len(doc.Components))
	toggles := make(map[string]int, len(doc.Components))
	images := make(map[string]string, len(e.images))

	for _, component := range doc.Components {
		switch component.Kind {
		case model.KindNumber:
			if value, ok := e.numbers[component.ID]; ok {
				numbers[component.ID] = value
			} else {
				numbers[component.ID] = component.Number.Default
			}
		case model.KindTimer:
			if timer, ok := e.timers[component.ID]; ok {
				timers[component.ID] = timer
			} else {
				timers[component.ID] = &timerState{elapsed: component.Timer.Default}
			}
		case model.KindLabel:
			if text, ok := e.labels[component.ID]; ok {
				labels[component.ID] = text
			} else {
				labels[component.ID] = component.Label.Default
			}
		case model.KindImageToggle:
			// Index may exceed the new source count; snapshot wraps it.
			toggles[component.ID] = e.toggles[component.ID]
		case model.KindImage:
			if source, ok := e.images[component.ID]; ok {
				images[component.ID] = source
			}
		}
	}

	e.doc = doc
	e.numbers = numbers
	e.timers = timers
	e.labels = labels
	e.toggles = toggles
	e.images = images
	e.publishLocked()
	e.mu.Unlock()
}

// Document returns the active configuration document.
func (e *Engine) Document() model.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc
}

// Apply performs one component mutation and reports whether state changed.
// Actions against unknown ids are contract violations from stale bindings;
// they are logged and ignored.
func (e *Engine) Apply(action Action) bool {
	e.mu.Lock()
	changed := e.applyLocked(action)
	if changed {
		e.publishLocked()
	}
	e.mu.Unlock()
	return changed
}

func (e *Engine) applyLocked(action Action) bool {
	switch action.Type {
	case ActionNumberIncrease, ActionNumberDecrease, ActionNumberReset:
		return e.applyNumberLocked(action)
	case ActionTimerStart, ActionTimerStop, ActionTimerReset, ActionTimerIncrease, ActionTimerDecrease:
		return e.applyTimerLocked(action)
	case ActionToggleForward, ActionToggleBackward:
		return e.applyToggleLocked(action)
	default:
		log.Printf("engine: unknown action %q for %q", action.Type, action.ID)
		return false
	}
}

func (e *Engine) applyNumberLocked(action Action) bool {
	value, ok := e.numbers[action.ID]
	if !ok {
		log.Printf("engine: %s for unknown number %q", action.Type, action.ID)
		return false
	}

	next := value
	switch action.Type {
	case ActionNumberIncrease:
		next = value + 1
	case ActionNumberDecrease:
		next = value - 1
		if next < 0 {
			next = 0
		}
	case ActionNumberReset:
		component, ok := e.doc.Lookup(action.ID)
		if !ok || component.Number == nil {
			return false
		}
		next = component.Number.Default
	}

	if next == value {
		return false
	}
	e.numbers[action.ID] = next
	return true
}

func (e *Engine) applyTimerLocked(action Action) bool {
	timer, ok := e.timers[action.ID]
	if !ok {
		log.Printf("engine: %s for unknown timer %q", action.Type, action.ID)
		return false
	}

	now := e.options.Now()
	switch action.Type {
	case ActionTimerStart:
		if timer.running {
			return false
		}
		timer.running = true
		timer.startedAt = now
		return true
	case ActionTimerStop:
		if !timer.running {
			return false
		}
		timer.elapsed = timer.liveElapsed(now)
		timer.running = false
		return true
	case ActionTimerReset:
		component, ok := e.doc.Lookup(action.ID)
		if !ok || component.Timer == nil {
			return false
		}
		timer.elapsed = component.Timer.Default
		timer.running = false
		return true
	case ActionTimerIncrease:
		timer.elapsed = timer.liveElapsed(now) + timerStep
	case ActionTimerDecrease:
		next := timer.liveElapsed(now) - timerStep
		if next < 0 {
			next = 0
		}
		timer.elapsed = next
	}

	// Increase/decrease re-anchor a running timer to now so the adjustment
	// applies to the live value exactly once.
	if timer.running {
		timer.startedAt = now
	}
	return true
}

func (e *Engine) applyToggleLocked(action Action) bool {
	index, ok := e.toggles[action.ID]
	if !ok {
		log.Printf("engine: %s for unknown image toggle %q", action.Type, action.ID)
		return false
	}
	component, ok := e.doc.Lookup(action.ID)
	if !ok || component.Toggle == nil {
		return false
	}

	count := len(component.Toggle.Sources)
	index %= count
	switch action.Type {
	case ActionToggleForward:
		e.toggles[action.ID] = (index + 1) % count
	case ActionToggleBackward:
		e.toggles[action.ID] = (index + count - 1) % count
	}
	return true
}

// SetImageSource replaces an image component's source at runtime, e.g. from
// the tray file picker. The replacement survives config reloads that keep
// the id.
func (e *Engine) SetImageSource(id, source string) error {
	if source == "" {
		return errors.New("image source cannot be empty")
	}

	e.mu.Lock()
	component, ok := e.doc.Lookup(id)
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("unknown component %q", id)
	}
	if component.Image == nil {
		e.mu.Unlock()
		return fmt.Errorf("component %q is not an image", id)
	}
	if e.images[id] == source || (e.images[id] == "" && component.Image.Source == source) {
		e.mu.Unlock()
		return nil
	}
	e.images[id] = source
	e.publishLocked()
	e.mu.Unlock()
	return nil
}

// SetLabel updates an editable label's text. A no-op update publishes
// nothing.
func (e *Engine) SetLabel(id, text string) error {
	for _, r := range text {
		if r == '\n' || r == '\r' {
			return errors.New("label text must be a single-line string")
		}
	}

	e.mu.Lock()
	component, ok := e.doc.Lookup(id)
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("unknown component %q", id)
	}
	if component.Label == nil {
		e.mu.Unlock()
		return fmt.Errorf("component %q is not a label", id)
	}
	if !component.Label.Editable {
		e.mu.Unlock()
		return fmt.Errorf("component %q is not editable", id)
	}
	if e.labels[id] == text {
		e.mu.Unlock()
		return nil
	}
	e.labels[id] = text
	e.publishLocked()
	e.mu.Unlock()
	return nil
}

// Snapshot assembles the current render snapshot.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// ReportError surfaces a recoverable failure to observers through the single
// error signal.
func (e *Engine) ReportError(message string) {
	e.emit(Event{Type: EventError, Message: message, At: e.options.Now()})
}

func (e *Engine) run() {
	ticker := time.NewTicker(e.options.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopCh:
			return
		case <-ticker.C:
			e.tick()
		}
	}
}

// tick refreshes the snapshot while any timer is running so the elapsed
// display stays live. Elapsed time is anchored to the start timestamp, so
// ticking never accumulates drift.
func (e *Engine) tick() {
	e.mu.Lock()
	for _, timer := range e.timers {
		if timer.running {
			e.publishLocked()
			break
		}
	}
	e.mu.Unlock()
}

func (e *Engine) publishLocked() {
	e.version++
	snapshot := e.snapshotLocked()
	e.emitLocked(Event{Type: EventSnapshot, Snapshot: snapshot, At: e.options.Now()})
}

func (e *Engine) emit(event Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.emitLocked(event)
}

func (e *Engine) emitLocked(event Event) {
	events := append([]chan Event(nil), e.events...)
	for _, ch := range events {
		select {
		case ch <- event:
		default:
		}
	}
}
