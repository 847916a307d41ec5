// Package device defines a unified interface for the serial-connected sensor board.
// It abstracts reading and writing line-based data with optional timeouts.
package device

import (
	"errors"
	"time"
)

// ErrReadTimeout is returned by ReadLine when no complete line arrived in time.
var ErrReadTimeout = errors.New("read timeout")

// Device defines an abstract interface for line-oriented serial devices.
type Device interface {
	// ReadLine reads a single line terminated by '\n'.
	// If timeout > 0, it must return after timeout even if no data available.
	ReadLine(timeout time.Duration) (string, error)

	// WriteLine writes s followed by '\n' to the device.
	WriteLine(s string) error

	// Close closes the device and releases underlying resources.
	Close() error
}

// OpenFunc opens the device found at port with the given baud rate.
type OpenFunc func(port string, baud int) (Device, error)
