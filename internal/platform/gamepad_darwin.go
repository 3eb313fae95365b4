package platform

import "courtside/internal/input"

type noGamepad struct{}

// No IOKit HID binding in this build; the reader reports no buttons so the
// poller stays inert.
func newGamepad() input.Gamepad {
	return noGamepad{}
}

func (noGamepad) Pressed() (map[string]bool, error) {
	return map[string]bool{}, nil
}
