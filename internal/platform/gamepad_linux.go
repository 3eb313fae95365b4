package platform

import (
	"encoding/binary"
	"errors"
	"io"
	"os"
	"sync"
	"syscall"

	"courtside/internal/input"
)

const joystickDevice = "/dev/input/js0"

// Joystick API event (linux/joystick.h): u32 time, s16 value, u8 type,
// u8 number. Type bit 0x01 is a button, 0x02 an axis; 0x80 marks the
// synthetic init events sent right after open.
const (
	jsEventButton = 0x01
	jsEventAxis   = 0x02
	jsEventInit   = 0x80
	jsEventSize   = 8
)

const axisThreshold = 16384

// xpad button numbering for the joystick interface.
var jsButtonNames = map[uint8]string{
	0:  "A",
	1:  "B",
	2:  "X",
	3:  "Y",
	4:  "LB",
	5:  "RB",
	6:  "BACK",
	7:  "START",
	8:  "GUIDE",
	9:  "L3",
	10: "R3",
}

type jsReader struct {
	mu      sync.Mutex
	file    *os.File
	pressed map[string]bool
}

func newGamepad() input.Gamepad {
	return &jsReader{pressed: make(map[string]bool)}
}

// Pressed drains any queued joystick events into the pressed set and
// returns a copy of it. The device is opened lazily and re-opened after
// disconnects.
func (reader *jsReader) Pressed() (map[string]bool, error) {
	reader.mu.Lock()
	defer reader.mu.Unlock()

	if reader.file == nil {
		file, err := os.OpenFile(joystickDevice, os.O_RDONLY|syscall.O_NONBLOCK, 0)
		if err != nil {
			// No pad attached reads as nothing pressed.
			return map[string]bool{}, nil
		}
		reader.file = file
	}

	var event [jsEventSize]byte
	for {
		_, err := io.ReadFull(reader.file, event[:])
		if err != nil {
			if !isWouldBlock(err) {
				_ = reader.file.Close()
				reader.file = nil
				reader.pressed = make(map[string]bool)
			}
			break
		}
		reader.apply(event)
	}

	result := make(map[string]bool, len(reader.pressed))
	for name, down := range reader.pressed {
		if down {
			result[name] = true
		}
	}
	return result, nil
}

func (reader *jsReader) apply(event [jsEventSize]byte) {
	value := int16(binary.LittleEndian.Uint16(event[4:6]))
	kind := event[6] &^ jsEventInit
	number := event[7]

	switch kind {
	case jsEventButton:
		name, ok := jsButtonNames[number]
		if !ok {
			return
		}
		reader.pressed[name] = value != 0
	case jsEventAxis:
		reader.applyAxis(number, value)
	}
}

// applyAxis folds the trigger and d-pad axes into the button vocabulary.
// xpad exposes LT/RT as axes 2/5 (resting at -32767) and the d-pad as
// axes 6/7.
func (reader *jsReader) applyAxis(number uint8, value int16) {
	switch number {
	case 2:
		reader.pressed["LT"] = value > 0
	case 5:
		reader.pressed["RT"] = value > 0
	case 6:
		reader.pressed["DPAD_LEFT"] = value < -axisThreshold
		reader.pressed["DPAD_RIGHT"] = value > axisThreshold
	case 7:
		reader.pressed["DPAD_UP"] = value < -axisThreshold
		reader.pressed["DPAD_DOWN"] = value > axisThreshold
	}
}

func isWouldBlock(err error) bool {
	return errors.Is(err, syscall.EAGAIN)
}
