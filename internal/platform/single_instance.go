package platform

import (
	"errors"
	"fmt"
	"hash/fnv"
	"net"
)

// ErrAlreadyRunning indicates another overlay process holds the lock. Two
// instances would fight over the global keyboard hook and the gamepad, so
// startup aborts instead.
var ErrAlreadyRunning = errors.New("scoreboard overlay already running")

// InstanceGuard is a cross-platform single-instance lock backed by a
// loopback listener: the port is derived from the app id, so a second
// process fails to bind and knows to exit.
type InstanceGuard struct {
	listener net.Listener
	port     int
}

// AcquireSingleInstance takes the lock for appID or fails with
// ErrAlreadyRunning.
func AcquireSingleInstance(appID string) (*InstanceGuard, error) {
	port := lockPort(appID)
	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, fmt.Errorf("%w (port %d busy)", ErrAlreadyRunning, port)
	}
	return &InstanceGuard{listener: listener, port: port}, nil
}

// Release frees the lock. Safe on a nil guard.
func (guard *InstanceGuard) Release() error {
	if guard == nil || guard.listener == nil {
		return nil
	}
	return guard.listener.Close()
}

// Port returns the loopback port backing the lock.
func (guard *InstanceGuard) Port() int {
	if guard == nil {
		return 0
	}
	return guard.port
}

// lockPort maps the app id onto a stable port in the dynamic range,
// clear of the well-known and registered ports.
func lockPort(appID string) int {
	const (
		minPort = 49152
		maxPort = 65535
	)
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(appID))
	return minPort + int(hash.Sum32()%uint32(maxPort-minPort+1))
}
