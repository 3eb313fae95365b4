package engine

import (
	"fmt"

	"courtside/internal/core/model"
)

// Paused reports the effective pause state: manual pause or an edit in
// progress. Dispatch checks this before acting on every input event.
func (e *Engine) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.effectivePausedLocked()
}

// ManualPaused reports the user-toggled pause flag alone.
func (e *Engine) ManualPaused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.manualPause
}

func (e *Engine) effectivePausedLocked() bool {
	return e.manualPause || e.editing != ""
}

// SetManualPause toggles the user pause flag. When the effective pause state
// changes, the change is propagated to the capture gate; if propagation
// fails, the flag is rolled back to its last successfully-applied value and
// the failure is surfaced through the error signal.
func (e *Engine) SetManualPause(paused bool) error {
	e.mu.Lock()
	if e.manualPause == paused {
		e.mu.Unlock()
		return nil
	}
	previous := e.effectivePausedLocked()
	e.manualPause = paused
	err := e.propagatePauseLocked(previous)
	if err != nil {
		e.manualPause = !paused
	}
	e.mu.Unlock()

	if err != nil {
		e.ReportError(fmt.Sprintf("Hotkey pause toggle failed: %v", err))
	}
	return err
}

// BeginEdit marks an editable label as being edited, pausing hotkey dispatch
// for the duration of the edit.
func (e *Engine) BeginEdit(id string) error {
	e.mu.Lock()
	component, ok := e.doc.Lookup(id)
	if !ok || component.Kind != model.KindLabel || !component.Label.Editable {
		e.mu.Unlock()
		return fmt.Errorf("component %q is not an editable label", id)
	}

	previous := e.effectivePausedLocked()
	restore := e.editing
	e.editing = id
	err := e.propagatePauseLocked(previous)
	if err != nil {
		e.editing = restore
	}
	e.mu.Unlock()

	if err != nil {
		e.ReportError(fmt.Sprintf("Pausing hotkeys for edit failed: %v", err))
	}
	return err
}

// EndEdit clears the editing target, restoring the effective pause state
// that manual pause alone dictates.
func (e *Engine) EndEdit() {
	e.mu.Lock()
	if e.editing == "" {
		e.mu.Unlock()
		return
	}
	previous := e.effectivePausedLocked()
	restore := e.editing
	e.editing = ""
	err := e.propagatePauseLocked(previous)
	if err != nil {
		e.editing = restore
	}
	e.mu.Unlock()

	if err != nil {
		e.ReportError(fmt.Sprintf("Resuming hotkeys after edit failed: %v", err))
	}
}

// propagatePauseLocked forwards an effective-pause transition to the capture
// gate. The caller has already updated the flag producing the transition and
// rolls it back when an error is returned.
func (e *Engine) propagatePauseLocked(previous bool) error {
	current := e.effectivePausedLocked()
	if current == previous || e.options.Capture == nil {
		return nil
	}
	return e.options.Capture.SetEnabled(!current)
}
