package transport

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// wsStream adapts a WebSocket connection to the Stream interface. Serial
// bridges deliver chunks of the serial byte stream as binary messages; the
// adapter re-linearizes them so the frame reader sees a plain byte pipe.
type wsStream struct {
	conn *websocket.Conn
	// unconsumed tail of the last binary message
	buf []byte
}

// openWebSocket dials a serial-over-WebSocket bridge.
func openWebSocket(endpoint string, opts Options) (Stream, error) {
	dialer := &websocket.Dialer{
		HandshakeTimeout: opts.DialTimeout,
	}

	conn, resp, err := dialer.Dial(endpoint, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to connect to websocket bridge %s (HTTP %d): %w", endpoint, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("failed to connect to websocket bridge %s: %w", endpoint, err)
	}
	if resp != nil && resp.StatusCode != http.StatusSwitchingProtocols {
		conn.Close()
		return nil, fmt.Errorf("websocket bridge %s did not upgrade (HTTP %d)", endpoint, resp.StatusCode)
	}

	return &wsStream{conn: conn}, nil
}

// Read returns bytes from the current binary message, fetching the next
// message when the buffer is drained. Text and control messages from the
// bridge are skipped.
func (s *wsStream) Read(p []byte) (int, error) {
	for len(s.buf) == 0 {
		msgType, data, err := s.conn.ReadMessage()
		if err != nil {
			return 0, err
		}
		if msgType != websocket.BinaryMessage {
			continue
		}
		s.buf = data
	}

	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	return n, nil
}

// Write sends the bytes as one binary message.
func (s *wsStream) Write(p []byte) (int, error) {
	if err := s.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// SetReadDeadline sets the read deadline on the underlying connection.
func (s *wsStream) SetReadDeadline(t time.Time) error {
	return s.conn.SetReadDeadline(t)
}

// Close closes the connection. A close message is attempted first so
// well-behaved bridges can release the serial port promptly.
func (s *wsStream) Close() error {
	deadline := time.Now().Add(time.Second)
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return s.conn.Close()
}
