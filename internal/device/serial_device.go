// Package device implements SerialDevice using go.bug.st/serial,
// which provides real serial communication support for the sensor board.
package device

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"time"

	serial "go.bug.st/serial"
)

// maxPending bounds the bytes kept while waiting for a newline. A board on
// the wrong baud rate produces noise without line breaks.
const maxPending = 4096

// port is the subset of serial.Port used by SerialDevice.
type port interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	SetReadTimeout(t time.Duration) error
	Close() error
}

// SerialDevice implements Device using go.bug.st/serial.
// Bytes received after the last newline are kept until the next ReadLine.
type SerialDevice struct {
	port    port
	pending []byte
	dev     string
	baud    int
}

// NewSerialDevice creates and opens a serial device with the given path and baudrate.
func NewSerialDevice(dev string, baud int) (*SerialDevice, error) {
	p, err := serial.Open(dev, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial %s: %w", dev, err)
	}
	return &SerialDevice{port: p, dev: dev, baud: baud}, nil
}

// Name returns the port path the device was opened on.
func (s *SerialDevice) Name() string { return s.dev }

// Close closes the underlying serial connection.
func (s *SerialDevice) Close() error {
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	s.pending = nil
	return err
}

// ReadLine reads a single line from the serial port, blocking until newline or timeout.
// The returned line keeps its terminator; callers trim it.
func (s *SerialDevice) ReadLine(timeout time.Duration) (string, error) {
	if s.port == nil {
		return "", errors.New("serial port not open")
	}
	if line, ok := s.takeLine(); ok {
		return line, nil
	}

	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	chunk := make([]byte, 256)
	for {
		wait := serial.NoTimeout
		if timeout > 0 {
			wait = time.Until(deadline)
			if wait <= 0 {
				return "", ErrReadTimeout
			}
		}
		if err := s.port.SetReadTimeout(wait); err != nil {
			return "", fmt.Errorf("set read timeout on %s: %w", s.dev, err)
		}

		n, err := s.port.Read(chunk)
		if n > 0 {
			s.pending = append(s.pending, chunk[:n]...)
			if line, ok := s.takeLine(); ok {
				return line, nil
			}
			if len(s.pending) > maxPending {
				log.Printf("[SERIAL] dropping %d bytes without newline from %s", len(s.pending), s.dev)
				s.pending = nil
			}
		}
		if err != nil {
			return "", fmt.Errorf("read serial %s: %w", s.dev, err)
		}
	}
}

// takeLine pops the first complete line from the pending buffer.
func (s *SerialDevice) takeLine() (string, bool) {
	i := bytes.IndexByte(s.pending, '\n')
	if i < 0 {
		return "", false
	}
	line := string(s.pending[:i+1])
	s.pending = s.pending[i+1:]
	return line, true
}

// WriteLine writes a single line followed by '\n' to the serial port.
func (s *SerialDevice) WriteLine(line string) error {
	if s.port == nil {
		return errors.New("serial port not open")
	}
	_, err := s.port.Write(append([]byte(line), '\n'))
	return err
}
