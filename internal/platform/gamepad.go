package platform

import "courtside/internal/input"

// NewGamepad returns a platform-specific gamepad reader. A missing or
// disconnected pad reads as no buttons pressed rather than an error, so the
// poller keeps working when a pad is plugged in mid-show.
func NewGamepad() input.Gamepad {
	return newGamepad()
}
