package ubx

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	// Sync1 and Sync2 are the UBX frame sync characters.
	Sync1 = 0xB5
	Sync2 = 0x62

	// Message classes used by the configuration engine.
	ClassNAV = 0x01
	ClassACK = 0x05
	ClassCFG = 0x06

	// Message ids within their class.
	IDAckNak  = 0x00
	IDAckAck  = 0x01
	IDCfgMsg  = 0x01
	IDNavSvin = 0x3B
	IDValSet  = 0x8A
	IDValGet  = 0x8B

	// MaxPayloadLen is a sanity cap on the declared payload length. Anything
	// larger is treated as a corrupted length field rather than a frame.
	MaxPayloadLen = 8192

	// frameOverhead is sync(2) + class(1) + id(1) + length(2) + checksum(2).
	frameOverhead = 8
)

// Frame is a single parsed UBX message.
type Frame struct {
	Class   byte
	ID      byte
	Payload []byte
}

// DecodeError indicates a malformed frame: bad checksum, truncated payload,
// or a payload that does not match its message's structure.
type DecodeError struct {
	Reason string
	Err    error
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ubx decode: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("ubx decode: %s", e.Reason)
}

// Unwrap returns the underlying error for error chain inspection
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Checksum computes the 8-bit Fletcher checksum over data
// (class, id, length and payload bytes).
func Checksum(data []byte) (ckA, ckB byte) {
	for _, b := range data {
		ckA += b
		ckB += ckA
	}
	return ckA, ckB
}

// Encode serializes the frame into its wire form, including sync characters
// and checksum.
func (f *Frame) Encode() []byte {
	out := make([]byte, len(f.Payload)+frameOverhead)
	out[0] = Sync1
	out[1] = Sync2
	out[2] = f.Class
	out[3] = f.ID
	binary.LittleEndian.PutUint16(out[4:6], uint16(len(f.Payload)))
	copy(out[6:], f.Payload)

	ckA, ckB := Checksum(out[2 : 6+len(f.Payload)])
	out[len(out)-2] = ckA
	out[len(out)-1] = ckB
	return out
}

// Identity returns a human-readable name for the frame's class/id pair,
// falling back to a hex rendering for messages the engine does not know.
func (f *Frame) Identity() string {
	switch {
	case f.Class == ClassACK && f.ID == IDAckAck:
		return "ACK-ACK"
	case f.Class == ClassACK && f.ID == IDAckNak:
		return "ACK-NAK"
	case f.Class == ClassCFG && f.ID == IDCfgMsg:
		return "CFG-MSG"
	case f.Class == ClassCFG && f.ID == IDValGet:
		return "CFG-VALGET"
	case f.Class == ClassCFG && f.ID == IDValSet:
		return "CFG-VALSET"
	case f.Class == ClassNAV && f.ID == IDNavSvin:
		return "NAV-SVIN"
	default:
		return fmt.Sprintf("%02X-%02X", f.Class, f.ID)
	}
}

// String returns a debug representation of the frame
func (f *Frame) String() string {
	return fmt.Sprintf("Frame{%s, Length=%d}", f.Identity(), len(f.Payload))
}

// Reader reads UBX frames from a byte stream, skipping any interleaved
// non-UBX traffic (NMEA sentences, RTCM, line noise) between frames.
type Reader struct {
	r io.Reader
	// one-byte scratch for the sync scan
	b [1]byte
}

// NewReader creates a Reader on top of an underlying byte stream. The stream
// is read exactly as far as each frame requires; deadlines set on the stream
// by the caller apply to the reads issued here.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// ReadFrame reads the next UBX frame from the stream.
//
// Transport errors (including deadline expiry) are returned unchanged so the
// caller can classify them. A frame that fails checksum or length validation
// is returned as a *DecodeError; the stream remains positioned after the bad
// sync sequence, so the caller may keep reading.
func (r *Reader) ReadFrame() (*Frame, error) {
	if err := r.scanSync(); err != nil {
		return nil, err
	}

	header := make([]byte, 4)
	if _, err := io.ReadFull(r.r, header); err != nil {
		// The sync pair is already consumed; running out of bytes here is
		// a truncated frame, not a clean end of stream.
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}

	payloadLen := int(binary.LittleEndian.Uint16(header[2:4]))
	if payloadLen > MaxPayloadLen {
		return nil, &DecodeError{Reason: fmt.Sprintf("declared payload length %d exceeds cap %d", payloadLen, MaxPayloadLen)}
	}

	body := make([]byte, payloadLen+2)
	if _, err := io.ReadFull(r.r, body); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}

	ckA, ckB := Checksum(append(header, body[:payloadLen]...))
	if ckA != body[payloadLen] || ckB != body[payloadLen+1] {
		return nil, &DecodeError{Reason: fmt.Sprintf(
			"checksum mismatch on %02X-%02X: got %02X%02X want %02X%02X",
			header[0], header[1], body[payloadLen], body[payloadLen+1], ckA, ckB)}
	}

	return &Frame{
		Class:   header[0],
		ID:      header[1],
		Payload: body[:payloadLen],
	}, nil
}

// scanSync consumes bytes until the 0xB5 0x62 sync sequence has been read.
func (r *Reader) scanSync() error {
	for {
		if _, err := io.ReadFull(r.r, r.b[:]); err != nil {
			return err
		}
		if r.b[0] != Sync1 {
			continue
		}
		// Sync1 seen; a run of Sync1 bytes keeps the candidate alive.
		for {
			if _, err := io.ReadFull(r.r, r.b[:]); err != nil {
				return err
			}
			if r.b[0] == Sync2 {
				return nil
			}
			if r.b[0] != Sync1 {
				break
			}
		}
	}
}
