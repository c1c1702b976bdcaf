package ubx

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestChecksum(t *testing.T) {
	// ACK-ACK for CFG-VALSET: class 05, id 01, len 2, payload 06 8A.
	// Reference values computed by hand per the Fletcher algorithm.
	data := []byte{0x05, 0x01, 0x02, 0x00, 0x06, 0x8A}
	ckA, ckB := Checksum(data)
	if ckA != 0x98 || ckB != 0xC1 {
		t.Errorf("Checksum() = %02X %02X, want 98 C1", ckA, ckB)
	}
}

func TestFrameEncodeDecodeRoundtrip(t *testing.T) {
	tests := []struct {
		name  string
		frame *Frame
	}{
		{
			name:  "empty payload",
			frame: &Frame{Class: ClassACK, ID: IDAckAck, Payload: nil},
		},
		{
			name:  "ack payload",
			frame: &Frame{Class: ClassACK, ID: IDAckNak, Payload: []byte{0x06, 0x8B}},
		},
		{
			name:  "valset payload",
			frame: &Frame{Class: ClassCFG, ID: IDValSet, Payload: []byte{0x01, 0x07, 0x00, 0x00, 0x01, 0x00, 0x21, 0x20, 0x64}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := tt.frame.Encode()
			got, err := NewReader(bytes.NewReader(raw)).ReadFrame()
			if err != nil {
				t.Fatalf("ReadFrame() error = %v", err)
			}
			if got.Class != tt.frame.Class || got.ID != tt.frame.ID {
				t.Errorf("class/id = %02X/%02X, want %02X/%02X", got.Class, got.ID, tt.frame.Class, tt.frame.ID)
			}
			if !bytes.Equal(got.Payload, tt.frame.Payload) {
				t.Errorf("payload = %v, want %v", got.Payload, tt.frame.Payload)
			}
		})
	}
}

func TestReadFrameSkipsInterleavedTraffic(t *testing.T) {
	frame := (&Frame{Class: ClassACK, ID: IDAckAck, Payload: []byte{0x06, 0x8A}}).Encode()

	tests := []struct {
		name string
		data []byte
	}{
		{
			name: "nmea sentence before frame",
			data: append([]byte("$GNGGA,123519,4807.038,N*47\r\n"), frame...),
		},
		{
			name: "line noise before frame",
			data: append([]byte{0x00, 0xFF, 0x7E, 0xB5}, frame...),
		},
		{
			name: "run of sync1 bytes before frame",
			// B5 B5 B5 62 ... must still find the sync pair.
			data: append([]byte{0xB5, 0xB5}, frame...),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewReader(bytes.NewReader(tt.data)).ReadFrame()
			if err != nil {
				t.Fatalf("ReadFrame() error = %v", err)
			}
			if got.Identity() != "ACK-ACK" {
				t.Errorf("identity = %s, want ACK-ACK", got.Identity())
			}
		})
	}
}

func TestReadFrameBadChecksum(t *testing.T) {
	raw := (&Frame{Class: ClassACK, ID: IDAckAck, Payload: []byte{0x06, 0x8A}}).Encode()
	raw[len(raw)-1] ^= 0xFF

	_, err := NewReader(bytes.NewReader(raw)).ReadFrame()
	var decErr *DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("ReadFrame() error = %v, want *DecodeError", err)
	}
}

func TestReadFrameOversizeLength(t *testing.T) {
	raw := []byte{Sync1, Sync2, ClassCFG, IDValGet, 0xFF, 0xFF}

	_, err := NewReader(bytes.NewReader(raw)).ReadFrame()
	var decErr *DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("ReadFrame() error = %v, want *DecodeError", err)
	}
}

func TestReadFrameTruncated(t *testing.T) {
	raw := (&Frame{Class: ClassCFG, ID: IDValSet, Payload: []byte{0x01, 0x07, 0x00, 0x00}}).Encode()

	// Cut the stream inside the payload.
	_, err := NewReader(bytes.NewReader(raw[:8])).ReadFrame()
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("ReadFrame() error = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestReadFrameTruncatedAfterSync(t *testing.T) {
	good := (&Frame{Class: ClassACK, ID: IDAckAck, Payload: []byte{0x06, 0x8A}}).Encode()

	// A stream that ends right after a sync pair was consumed is truncated,
	// not cleanly finished.
	tails := [][]byte{
		// nothing after the sync pair
		{Sync1, Sync2},
		// nothing after the header
		{Sync1, Sync2, ClassCFG, IDValSet, 4, 0x00},
	}
	for _, tail := range tails {
		r := NewReader(bytes.NewReader(append(append([]byte{}, good...), tail...)))
		if _, err := r.ReadFrame(); err != nil {
			t.Fatalf("first ReadFrame() error = %v", err)
		}
		_, err := r.ReadFrame()
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Fatalf("tail % X: ReadFrame() error = %v, want io.ErrUnexpectedEOF", tail, err)
		}
	}
}

func TestReadFrameCleanEOF(t *testing.T) {
	_, err := NewReader(bytes.NewReader(nil)).ReadFrame()
	if !errors.Is(err, io.EOF) {
		t.Fatalf("ReadFrame() error = %v, want io.EOF", err)
	}
}

func TestReadFrameRecoversAfterDecodeError(t *testing.T) {
	bad := (&Frame{Class: ClassACK, ID: IDAckAck, Payload: []byte{0x06, 0x8A}}).Encode()
	bad[len(bad)-1] ^= 0xFF
	good := (&Frame{Class: ClassACK, ID: IDAckNak, Payload: []byte{0x06, 0x8B}}).Encode()

	r := NewReader(bytes.NewReader(append(bad, good...)))

	_, err := r.ReadFrame()
	var decErr *DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("first ReadFrame() error = %v, want *DecodeError", err)
	}

	got, err := r.ReadFrame()
	if err != nil {
		t.Fatalf("second ReadFrame() error = %v", err)
	}
	if got.Identity() != "ACK-NAK" {
		t.Errorf("identity = %s, want ACK-NAK", got.Identity())
	}
}

func TestFrameIdentity(t *testing.T) {
	tests := []struct {
		frame Frame
		want  string
	}{
		{Frame{Class: ClassACK, ID: IDAckAck}, "ACK-ACK"},
		{Frame{Class: ClassACK, ID: IDAckNak}, "ACK-NAK"},
		{Frame{Class: ClassCFG, ID: IDValGet}, "CFG-VALGET"},
		{Frame{Class: ClassCFG, ID: IDValSet}, "CFG-VALSET"},
		{Frame{Class: 0x01, ID: 0x07}, "01-07"},
	}

	for _, tt := range tests {
		if got := tt.frame.Identity(); got != tt.want {
			t.Errorf("Identity() = %s, want %s", got, tt.want)
		}
	}
}
