package platform

import (
	"syscall"
	"unsafe"

	"courtside/internal/input"
)

const (
	errorDeviceNotConnected = 1167
	triggerThreshold        = 30
)

type xinputGamepad struct {
	wButtons      uint16
	bLeftTrigger  byte
	bRightTrigger byte
	sThumbLX      int16
	sThumbLY      int16
	sThumbRX      int16
	sThumbRY      int16
}

type xinputState struct {
	dwPacketNumber uint32
	gamepad        xinputGamepad
}

var xinputButtons = []struct {
	mask uint16
	name string
}{
	{0x0001, "DPAD_UP"},
	{0x0002, "DPAD_DOWN"},
	{0x0004, "DPAD_LEFT"},
	{0x0008, "DPAD_RIGHT"},
	{0x0010, "START"},
	{0x0020, "BACK"},
	{0x0040, "L3"},
	{0x0080, "R3"},
	{0x0100, "LB"},
	{0x0200, "RB"},
	{0x0400, "GUIDE"},
	{0x1000, "A"},
	{0x2000, "B"},
	{0x4000, "X"},
	{0x8000, "Y"},
}

type xinputReader struct {
	getState *syscall.LazyProc
}

func newGamepad() input.Gamepad {
	xinput := syscall.NewLazyDLL("xinput1_4.dll")
	return &xinputReader{getState: xinput.NewProc("XInputGetState")}
}

func (reader *xinputReader) Pressed() (map[string]bool, error) {
	pressed := make(map[string]bool)

	var state xinputState
	result, _, _ := reader.getState.Call(0, uintptr(unsafe.Pointer(&state)))
	if result == errorDeviceNotConnected {
		return pressed, nil
	}
	if result != 0 {
		return pressed, syscall.Errno(result)
	}

	for _, button := range xinputButtons {
		if state.gamepad.wButtons&button.mask != 0 {
			pressed[button.name] = true
		}
	}
	if state.gamepad.bLeftTrigger > triggerThreshold {
		pressed["LT"] = true
	}
	if state.gamepad.bRightTrigger > triggerThreshold {
		pressed["RT"] = true
	}

	return pressed, nil
}
