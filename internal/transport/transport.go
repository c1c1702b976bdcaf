package transport

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"
)

const (
	// DefaultBaudRate matches the u-blox generation 9+ default UART rate.
	DefaultBaudRate = 38400

	// DefaultDialTimeout bounds connection establishment for network
	// endpoints.
	DefaultDialTimeout = 5 * time.Second
)

// Stream is the byte pipe the configuration engine reads and writes.
// Implementations must honor SetReadDeadline on subsequent Reads; an expired
// deadline surfaces as an error satisfying IsTimeout.
type Stream interface {
	io.ReadWriteCloser

	// SetReadDeadline sets the absolute deadline for future Read calls.
	// The zero time means reads block indefinitely.
	SetReadDeadline(t time.Time) error
}

// Options configures how an endpoint is opened.
type Options struct {
	// BaudRate applies to serial device endpoints only.
	BaudRate int

	// DialTimeout applies to tcp:// and ws:// endpoints only.
	DialTimeout time.Duration
}

// withDefaults fills unset options.
func (o Options) withDefaults() Options {
	if o.BaudRate == 0 {
		o.BaudRate = DefaultBaudRate
	}
	if o.DialTimeout == 0 {
		o.DialTimeout = DefaultDialTimeout
	}
	return o
}

// Open connects to a device endpoint. The endpoint kind is derived from the
// string: ws:// and wss:// open a WebSocket bridge, tcp:// opens a raw TCP
// bridge, and anything else is treated as a local serial device path.
func Open(endpoint string, opts Options) (Stream, error) {
	opts = opts.withDefaults()

	switch {
	case strings.HasPrefix(endpoint, "ws://"), strings.HasPrefix(endpoint, "wss://"):
		return openWebSocket(endpoint, opts)
	case strings.HasPrefix(endpoint, "tcp://"):
		return openTCP(strings.TrimPrefix(endpoint, "tcp://"), opts)
	default:
		return openSerial(endpoint, opts)
	}
}

// IsTimeout reports whether err is a read-deadline expiry, regardless of
// which transport produced it.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// openTCP connects to a serial-to-TCP bridge. net.Conn already satisfies
// Stream.
func openTCP(addr string, opts Options) (Stream, error) {
	conn, err := net.DialTimeout("tcp", addr, opts.DialTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to tcp bridge %s: %w", addr, err)
	}
	return conn.(*net.TCPConn), nil
}
