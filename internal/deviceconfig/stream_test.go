package deviceconfig

import (
	"encoding/binary"
	"os"
	"time"

	"github.com/muurk/ubxcfg/internal/ubx"
)

// scriptStream is a transport.Stream fed from a scripted list of inbound
// chunks. When the script runs dry a read reports deadline expiry, which is
// what a silent device looks like to the engine.
type scriptStream struct {
	pending [][]byte
	writes  []byte
	closed  bool
}

func newScriptStream(chunks ...[]byte) *scriptStream {
	return &scriptStream{pending: chunks}
}

func (s *scriptStream) Read(p []byte) (int, error) {
	if len(s.pending) == 0 {
		return 0, os.ErrDeadlineExceeded
	}
	chunk := s.pending[0]
	n := copy(p, chunk)
	if n < len(chunk) {
		s.pending[0] = chunk[n:]
	} else {
		s.pending = s.pending[1:]
	}
	return n, nil
}

func (s *scriptStream) Write(p []byte) (int, error) {
	s.writes = append(s.writes, p...)
	return len(p), nil
}

func (s *scriptStream) Close() error {
	s.closed = true
	return nil
}

func (s *scriptStream) SetReadDeadline(t time.Time) error {
	return nil
}

// mkKey builds a key id from its fields. sizeCode is the raw storage size
// code (0x01 bit .. 0x05 eight bytes).
func mkKey(sizeCode byte, group byte, item uint16) ubx.KeyID {
	return ubx.KeyID(uint32(sizeCode)<<28 | uint32(group)<<16 | uint32(item))
}

// byteKV builds a one-byte key/value pair in the given group.
func byteKV(group byte, item uint16, value byte) ubx.KeyValue {
	return ubx.KeyValue{Key: mkKey(0x02, group, item), Value: []byte{value}}
}

// valGetResponse encodes a CFG-VALGET response frame carrying pairs.
func valGetResponse(layer ubx.Layer, position uint16, pairs []ubx.KeyValue) []byte {
	payload := make([]byte, 4)
	payload[0] = 0x01 // response version
	payload[1] = byte(layer)
	binary.LittleEndian.PutUint16(payload[2:4], position)
	for _, p := range pairs {
		var key [4]byte
		binary.LittleEndian.PutUint32(key[:], uint32(p.Key))
		payload = append(payload, key[:]...)
		payload = append(payload, p.Value...)
	}
	f := &ubx.Frame{Class: ubx.ClassCFG, ID: ubx.IDValGet, Payload: payload}
	return f.Encode()
}

// ackFrame encodes an ACK-ACK or ACK-NAK for the given message.
func ackFrame(acked bool, cls, id byte) []byte {
	ackID := byte(ubx.IDAckNak)
	if acked {
		ackID = ubx.IDAckAck
	}
	f := &ubx.Frame{Class: ubx.ClassACK, ID: ackID, Payload: []byte{cls, id}}
	return f.Encode()
}

// navFrame encodes an unrelated broadcast frame.
func navFrame() []byte {
	f := &ubx.Frame{Class: 0x01, ID: 0x07, Payload: make([]byte, 8)}
	return f.Encode()
}

// corruptFrame encodes a frame and flips its final checksum byte.
func corruptFrame() []byte {
	raw := navFrame()
	raw[len(raw)-1] ^= 0xFF
	return raw
}

// fullPage builds exactly MaxPairsPerMessage distinct one-byte pairs in a
// group, with item ids starting at base.
func fullPage(group byte, base uint16) []ubx.KeyValue {
	pairs := make([]ubx.KeyValue, ubx.MaxPairsPerMessage)
	for i := range pairs {
		pairs[i] = byteKV(group, base+uint16(i), byte(i))
	}
	return pairs
}
