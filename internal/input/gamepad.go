package input

import (
	"sync"
	"time"
)

// Gamepad exposes the currently pressed buttons on demand. Button names use
// the pad vocabulary of the config format (A, B, X, Y, LB, RB, LT, RT,
// BACK, START, GUIDE, L3, R3, DPAD_UP, DPAD_DOWN, DPAD_LEFT, DPAD_RIGHT).
type Gamepad interface {
	Pressed() (map[string]bool, error)
}

// Poller samples a gamepad at a fixed interval and fires dispatch once per
// press: a button held across consecutive polls is a single activation,
// detected as a rising edge against the previous sample.
type Poller struct {
	gamepad    Gamepad
	dispatcher *Dispatcher
	interval   time.Duration
	onError    func(error)

	mu       sync.Mutex
	previous map[string]bool
	stopCh   chan struct{}
	running  bool
	wg       sync.WaitGroup
}

// NewPoller creates a gamepad poller. onError receives sampling failures and
// may be nil.
func NewPoller(gamepad Gamepad, dispatcher *Dispatcher, interval time.Duration, onError func(error)) *Poller {
	if interval <= 0 {
		interval = 8 * time.Millisecond
	}
	return &Poller{
		gamepad:    gamepad,
		dispatcher: dispatcher,
		interval:   interval,
		onError:    onError,
		previous:   make(map[string]bool),
		stopCh:     make(chan struct{}),
	}
}

// Start launches the polling loop.
func (p *Poller) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	p.wg.Add(1)
	go p.run()
}

// Stop terminates the polling loop.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	close(p.stopCh)
	p.running = false
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Poller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.Poll()
		}
	}
}

// Poll samples the gamepad once and dispatches rising edges. Exposed so the
// loop is testable without real time passing.
func (p *Poller) Poll() {
	pressed, err := p.gamepad.Pressed()
	if err != nil {
		if p.onError != nil {
			p.onError(err)
		}
		return
	}

	p.mu.Lock()
	previous := p.previous
	p.previous = pressed
	p.mu.Unlock()

	for button, down := range pressed {
		if down && !previous[button] {
			p.dispatcher.HandleButton(button)
		}
	}
}
