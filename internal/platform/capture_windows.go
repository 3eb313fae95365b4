package platform

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"syscall"
	"unsafe"

	"courtside/internal/input"
)

const (
	whKeyboardLL = 13
	hcAction     = 0

	wmKeyDown    = 0x0100
	wmSysKeyDown = 0x0104
	wmQuit       = 0x0012

	vkShift   = 0x10
	vkControl = 0x11
	vkMenu    = 0x12
	vkLWin    = 0x5B
	vkRWin    = 0x5C

	keyDownBit = 0x8000
)

type kbdLLHookStruct struct {
	vkCode      uint32
	scanCode    uint32
	flags       uint32
	time        uint32
	dwExtraInfo uintptr
}

type msg struct {
	hwnd    uintptr
	message uint32
	wParam  uintptr
	lParam  uintptr
	time    uint32
	ptX     int32
	ptY     int32
}

type keyboardCapture struct {
	enabled  atomic.Bool
	events   chan input.KeyEvent
	threadID atomic.Uint32
	started  atomic.Bool
	done     chan struct{}
}

func newKeyboardCapture() KeyboardCapture {
	capture := &keyboardCapture{}
	capture.enabled.Store(true)
	return capture
}

func (capture *keyboardCapture) Start() (<-chan input.KeyEvent, error) {
	if capture.started.Swap(true) {
		return nil, fmt.Errorf("keyboard capture already started")
	}

	capture.events = make(chan input.KeyEvent, 64)
	capture.done = make(chan struct{})
	ready := make(chan error, 1)
	go capture.run(ready)

	if err := <-ready; err != nil {
		capture.started.Store(false)
		return nil, err
	}
	return capture.events, nil
}

func (capture *keyboardCapture) Stop() error {
	if !capture.started.Load() {
		return nil
	}

	user32 := syscall.NewLazyDLL("user32.dll")
	postThreadMessage := user32.NewProc("PostThreadMessageW")
	result, _, err := postThreadMessage.Call(uintptr(capture.threadID.Load()), wmQuit, 0, 0)
	if result == 0 {
		return fmt.Errorf("stop keyboard capture: %w", err)
	}
	<-capture.done
	capture.started.Store(false)
	return nil
}

// SetEnabled gates event delivery. The hook stays installed; disabled
// capture passes keys through to the system without dispatching them.
func (capture *keyboardCapture) SetEnabled(enabled bool) error {
	capture.enabled.Store(enabled)
	return nil
}

// run installs the low-level keyboard hook and pumps messages. Low-level
// hooks are delivered to the installing thread's message queue, so the whole
// lifetime stays on one locked OS thread.
func (capture *keyboardCapture) run(ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(capture.done)
	defer close(capture.events)

	user32 := syscall.NewLazyDLL("user32.dll")
	kernel32 := syscall.NewLazyDLL("kernel32.dll")
	setWindowsHookEx := user32.NewProc("SetWindowsHookExW")
	unhookWindowsHookEx := user32.NewProc("UnhookWindowsHookEx")
	callNextHookEx := user32.NewProc("CallNextHookEx")
	getMessage := user32.NewProc("GetMessageW")
	getAsyncKeyState := user32.NewProc("GetAsyncKeyState")
	getCurrentThreadID := kernel32.NewProc("GetCurrentThreadId")

	threadID, _, _ := getCurrentThreadID.Call()
	capture.threadID.Store(uint32(threadID))

	isDown := func(vk uintptr) bool {
		state, _, _ := getAsyncKeyState.Call(vk)
		return uint16(state)&keyDownBit != 0
	}

	callback := syscall.NewCallback(func(code uintptr, wParam uintptr, lParam uintptr) uintptr {
		if code == hcAction && (wParam == wmKeyDown || wParam == wmSysKeyDown) && capture.enabled.Load() {
			info := (*kbdLLHookStruct)(unsafe.Pointer(lParam))
			if key := keyName(info.vkCode); key != "" {
				event := input.KeyEvent{
					Key:   key,
					Ctrl:  isDown(vkControl),
					Alt:   isDown(vkMenu),
					Shift: isDown(vkShift),
					Win:   isDown(vkLWin) || isDown(vkRWin),
				}
				select {
				case capture.events <- event:
				default:
				}
			}
		}
		next, _, _ := callNextHookEx.Call(0, code, wParam, lParam)
		return next
	})

	hook, _, err := setWindowsHookEx.Call(whKeyboardLL, callback, 0, 0)
	if hook == 0 {
		ready <- fmt.Errorf("install keyboard hook: %w", err)
		return
	}
	ready <- nil
	defer unhookWindowsHookEx.Call(hook)

	var message msg
	for {
		result, _, _ := getMessage.Call(uintptr(unsafe.Pointer(&message)), 0, 0, 0)
		if result == 0 || int32(result) == -1 {
			return
		}
	}
}

// keyName maps a virtual-key code to the key token vocabulary used in
// config chords. Unmapped keys are ignored by the hook.
func keyName(vk uint32) string {
	switch {
	case vk >= 'A' && vk <= 'Z', vk >= '0' && vk <= '9':
		return string(rune(vk))
	case vk >= 0x70 && vk <= 0x7B: // F1..F12
		return fmt.Sprintf("F%d", vk-0x70+1)
	case vk >= 0x60 && vk <= 0x69: // numpad 0..9
		return fmt.Sprintf("Numpad%d", vk-0x60)
	}

	switch vk {
	case 0x20:
		return "Space"
	case 0x0D:
		return "Enter"
	case 0x1B:
		return "Escape"
	case 0x09:
		return "Tab"
	case 0x08:
		return "Backspace"
	case 0x2E:
		return "Delete"
	case 0x2D:
		return "Insert"
	case 0x24:
		return "Home"
	case 0x23:
		return "End"
	case 0x21:
		return "PageUp"
	case 0x22:
		return "PageDown"
	case 0x26:
		return "Up"
	case 0x28:
		return "Down"
	case 0x25:
		return "Left"
	case 0x27:
		return "Right"
	case 0xBB:
		return "Plus"
	case 0xBD:
		return "Minus"
	}
	return ""
}
