package platform

import "courtside/internal/input"

// KeyboardCapture delivers global key-chord events and doubles as the
// engine's capture gate: SetEnabled(false) suppresses delivery while the
// hotkeys are paused.
type KeyboardCapture interface {
	input.Capture
	SetEnabled(enabled bool) error
}

// NewKeyboardCapture returns a platform-specific keyboard capture.
func NewKeyboardCapture() KeyboardCapture {
	return newKeyboardCapture()
}
