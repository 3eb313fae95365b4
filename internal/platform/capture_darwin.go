package platform

import (
	"courtside/internal/core/engine"
	"courtside/internal/input"
)

type unsupportedKeyboardCapture struct{}

// Global key capture on macOS requires an accessibility-entitled event tap
// this build does not carry; the capture collaborator reports itself
// unsupported and the app runs with gamepad input only.
func newKeyboardCapture() KeyboardCapture {
	return unsupportedKeyboardCapture{}
}

func (unsupportedKeyboardCapture) Start() (<-chan input.KeyEvent, error) {
	return nil, engine.ErrCaptureUnsupported
}

func (unsupportedKeyboardCapture) Stop() error {
	return nil
}

func (unsupportedKeyboardCapture) SetEnabled(bool) error {
	return nil
}
