package transport

import (
	"fmt"
	"os"
	"sync"
	"time"

	"go.bug.st/serial"
)

// serialStream adapts a serial.Port to the Stream interface. The library
// exposes per-read timeouts rather than absolute deadlines, so the deadline
// is re-derived before every read.
type serialStream struct {
	port serial.Port

	mu       sync.Mutex
	deadline time.Time
}

// openSerial opens a local serial device in 8N1 mode at the configured baud
// rate.
func openSerial(path string, opts Options) (Stream, error) {
	mode := &serial.Mode{
		BaudRate: opts.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", path, err)
	}

	return &serialStream{port: port}, nil
}

// Read reads from the port, honoring the deadline set via SetReadDeadline.
// A read that returns no bytes within the deadline reports
// os.ErrDeadlineExceeded, matching net.Conn semantics.
func (s *serialStream) Read(p []byte) (int, error) {
	s.mu.Lock()
	deadline := s.deadline
	s.mu.Unlock()

	if deadline.IsZero() {
		if err := s.port.SetReadTimeout(serial.NoTimeout); err != nil {
			return 0, err
		}
		return s.port.Read(p)
	}

	remaining := time.Until(deadline)
	if remaining <= 0 {
		return 0, os.ErrDeadlineExceeded
	}
	if err := s.port.SetReadTimeout(remaining); err != nil {
		return 0, err
	}

	n, err := s.port.Read(p)
	if n == 0 && err == nil {
		// The library signals timeout as an empty successful read.
		return 0, os.ErrDeadlineExceeded
	}
	return n, err
}

// Write writes to the port.
func (s *serialStream) Write(p []byte) (int, error) {
	return s.port.Write(p)
}

// SetReadDeadline sets the absolute deadline for future reads.
func (s *serialStream) SetReadDeadline(t time.Time) error {
	s.mu.Lock()
	s.deadline = t
	s.mu.Unlock()
	return nil
}

// Close closes the port.
func (s *serialStream) Close() error {
	return s.port.Close()
}
