package ubx

import (
	"encoding/binary"
	"fmt"
)

// Layer identifies a single configuration storage layer for CFG-VALGET polls.
type Layer byte

const (
	LayerRAM     Layer = 0
	LayerBBR     Layer = 1
	LayerFlash   Layer = 2
	LayerDefault Layer = 7
)

// LayerMask is the CFG-VALSET storage layer bitmask. Unlike Layer, several
// layers can be addressed by one apply message.
type LayerMask byte

const (
	MaskRAM   LayerMask = 0x01
	MaskBBR   LayerMask = 0x02
	MaskFlash LayerMask = 0x04
	MaskAll   LayerMask = MaskRAM | MaskBBR | MaskFlash
)

// Transaction is the CFG-VALSET transaction field. The device treats the
// span from Start through End as a single atomic configuration change;
// None marks a standalone message that is its own transaction.
type Transaction byte

const (
	TxnNone     Transaction = 0
	TxnStart    Transaction = 1
	TxnContinue Transaction = 2
	TxnEnd      Transaction = 3
)

// String returns a human-readable transaction field name
func (t Transaction) String() string {
	switch t {
	case TxnNone:
		return "none"
	case TxnStart:
		return "start"
	case TxnContinue:
		return "continue"
	case TxnEnd:
		return "end"
	default:
		return fmt.Sprintf("Transaction(%d)", byte(t))
	}
}

const (
	// MaxPairsPerMessage is the interface-specification limit on key/value
	// pairs in one CFG-VALGET response or CFG-VALSET request. A full
	// CFG-VALGET response page therefore also means "more may follow".
	MaxPairsPerMessage = 64

	// valGetHeaderLen / valSetHeaderLen are the fixed payload prefixes
	// preceding the key/value data.
	valGetHeaderLen = 4
	valSetHeaderLen = 4

	valGetVersionPoll     = 0x00
	valGetVersionResponse = 0x01
	valSetVersionTxn      = 0x01
)

// KeyValue is one configuration key and its raw value bytes. The value
// length is dictated by the key id's storage size field.
type KeyValue struct {
	Key   KeyID
	Value []byte
}

// EncodeValGetPoll builds a CFG-VALGET poll frame for the given storage
// layer, pagination position and key ids (typically a single group wildcard).
func EncodeValGetPoll(layer Layer, position uint16, keys []KeyID) *Frame {
	payload := make([]byte, valGetHeaderLen+4*len(keys))
	payload[0] = valGetVersionPoll
	payload[1] = byte(layer)
	binary.LittleEndian.PutUint16(payload[2:4], position)
	for i, k := range keys {
		binary.LittleEndian.PutUint32(payload[valGetHeaderLen+4*i:], uint32(k))
	}
	return &Frame{Class: ClassCFG, ID: IDValGet, Payload: payload}
}

// DecodeValGetResponse parses a CFG-VALGET response frame into its layer,
// pagination position and key/value pairs.
//
// A CFG-VALGET frame with the poll version byte is not a response (the
// transport may loop back our own polls on some bridges) and is rejected
// with a *DecodeError.
func DecodeValGetResponse(f *Frame) (Layer, uint16, []KeyValue, error) {
	if f.Class != ClassCFG || f.ID != IDValGet {
		return 0, 0, nil, &DecodeError{Reason: fmt.Sprintf("not CFG-VALGET: %s", f.Identity())}
	}
	if len(f.Payload) < valGetHeaderLen {
		return 0, 0, nil, &DecodeError{Reason: fmt.Sprintf("CFG-VALGET payload too short: %d bytes", len(f.Payload))}
	}
	if f.Payload[0] != valGetVersionResponse {
		return 0, 0, nil, &DecodeError{Reason: fmt.Sprintf("CFG-VALGET version 0x%02X is not a response", f.Payload[0])}
	}

	layer := Layer(f.Payload[1])
	position := binary.LittleEndian.Uint16(f.Payload[2:4])

	pairs, err := decodePairs(f.Payload[valGetHeaderLen:])
	if err != nil {
		return 0, 0, nil, err
	}
	return layer, position, pairs, nil
}

// EncodeValSet builds a CFG-VALSET frame applying the given key/value pairs
// to the layers in mask, tagged with the given transaction position.
//
// The pair count and each value's length against its key's storage size are
// validated here, before anything reaches the wire.
func EncodeValSet(mask LayerMask, txn Transaction, pairs []KeyValue) (*Frame, error) {
	if len(pairs) == 0 {
		return nil, fmt.Errorf("CFG-VALSET requires at least one key/value pair")
	}
	if len(pairs) > MaxPairsPerMessage {
		return nil, fmt.Errorf("CFG-VALSET limited to %d pairs, got %d", MaxPairsPerMessage, len(pairs))
	}

	size := valSetHeaderLen
	for _, p := range pairs {
		want := p.Key.Size()
		if want == 0 {
			return nil, fmt.Errorf("key %s has reserved storage size code", p.Key)
		}
		if len(p.Value) != want {
			return nil, fmt.Errorf("key %s value is %d bytes, storage size is %d", p.Key, len(p.Value), want)
		}
		size += 4 + want
	}

	payload := make([]byte, size)
	payload[0] = valSetVersionTxn
	payload[1] = byte(mask)
	payload[2] = byte(txn)
	// payload[3] reserved

	off := valSetHeaderLen
	for _, p := range pairs {
		binary.LittleEndian.PutUint32(payload[off:], uint32(p.Key))
		off += 4
		copy(payload[off:], p.Value)
		off += len(p.Value)
	}

	return &Frame{Class: ClassCFG, ID: IDValSet, Payload: payload}, nil
}

// DecodeValSet parses a CFG-VALSET frame back into its layer mask,
// transaction position and key/value pairs. Both the version 0 (no
// transaction field) and version 1 forms are accepted.
func DecodeValSet(f *Frame) (LayerMask, Transaction, []KeyValue, error) {
	if f.Class != ClassCFG || f.ID != IDValSet {
		return 0, 0, nil, &DecodeError{Reason: fmt.Sprintf("not CFG-VALSET: %s", f.Identity())}
	}
	if len(f.Payload) < valSetHeaderLen {
		return 0, 0, nil, &DecodeError{Reason: fmt.Sprintf("CFG-VALSET payload too short: %d bytes", len(f.Payload))}
	}

	version := f.Payload[0]
	mask := LayerMask(f.Payload[1])
	var txn Transaction
	switch version {
	case 0x00:
		txn = TxnNone
	case valSetVersionTxn:
		txn = Transaction(f.Payload[2])
		if txn > TxnEnd {
			return 0, 0, nil, &DecodeError{Reason: fmt.Sprintf("CFG-VALSET transaction field %d out of range", f.Payload[2])}
		}
	default:
		return 0, 0, nil, &DecodeError{Reason: fmt.Sprintf("unsupported CFG-VALSET version 0x%02X", version)}
	}

	pairs, err := decodePairs(f.Payload[valSetHeaderLen:])
	if err != nil {
		return 0, 0, nil, err
	}
	return mask, txn, pairs, nil
}

// DecodeAck parses an ACK-ACK or ACK-NAK frame. The returned class/id
// identify the acknowledged message; acked is true for ACK-ACK.
func DecodeAck(f *Frame) (acked bool, cls byte, id byte, err error) {
	if f.Class != ClassACK || (f.ID != IDAckAck && f.ID != IDAckNak) {
		return false, 0, 0, &DecodeError{Reason: fmt.Sprintf("not an acknowledgement: %s", f.Identity())}
	}
	if len(f.Payload) != 2 {
		return false, 0, 0, &DecodeError{Reason: fmt.Sprintf("acknowledgement payload is %d bytes, want 2", len(f.Payload))}
	}
	return f.ID == IDAckAck, f.Payload[0], f.Payload[1], nil
}

// decodePairs walks a key/value region, slicing each value at the length its
// key id declares.
func decodePairs(data []byte) ([]KeyValue, error) {
	var pairs []KeyValue
	for len(data) > 0 {
		if len(data) < 4 {
			return nil, &DecodeError{Reason: fmt.Sprintf("trailing %d bytes where a key id was expected", len(data))}
		}
		key := KeyID(binary.LittleEndian.Uint32(data))
		data = data[4:]

		size := key.Size()
		if size == 0 {
			return nil, &DecodeError{Reason: fmt.Sprintf("key %s has reserved storage size code", key)}
		}
		if len(data) < size {
			return nil, &DecodeError{Reason: fmt.Sprintf("key %s value truncated: %d of %d bytes", key, len(data), size)}
		}

		value := make([]byte, size)
		copy(value, data[:size])
		data = data[size:]

		pairs = append(pairs, KeyValue{Key: key, Value: value})
	}
	return pairs, nil
}

// msgRatePorts is the number of rate slots in a CFG-MSG set payload
// (I2C, UART1, UART2, USB, SPI, reserved).
const msgRatePorts = 6

// EncodeMsgRate builds a legacy CFG-MSG set frame configuring the per-epoch
// output rate of one broadcast message on every port at once. Generation 9+
// receivers still honor CFG-MSG alongside the VALSET interface, which keeps
// rate changes independent of the per-port CFG-MSGOUT key ids.
func EncodeMsgRate(msgClass, msgID, rate byte) *Frame {
	payload := make([]byte, 2+msgRatePorts)
	payload[0] = msgClass
	payload[1] = msgID
	for i := 0; i < msgRatePorts-1; i++ {
		payload[2+i] = rate
	}
	// The final slot is reserved and stays zero.
	return &Frame{Class: ClassCFG, ID: IDCfgMsg, Payload: payload}
}

// navSvinLen is the fixed NAV-SVIN payload length.
const navSvinLen = 40

// NavSvin is the survey-in status a receiver broadcasts while averaging its
// own position for base station operation.
type NavSvin struct {
	// Duration is the observation time passed so far, in seconds.
	Duration uint32
	// MeanAcc is the current mean position accuracy in 0.1 mm units.
	MeanAcc uint32
	// Observations is the number of position observations used.
	Observations uint32
	// Valid reports whether the surveyed position is valid and the survey
	// has finished.
	Valid bool
	// Active reports whether a survey is in progress.
	Active bool
}

// MeanAccCM returns the mean accuracy in centimeters.
func (s *NavSvin) MeanAccCM() float64 {
	return float64(s.MeanAcc) / 100
}

// DecodeNavSvin parses a NAV-SVIN broadcast frame.
func DecodeNavSvin(f *Frame) (*NavSvin, error) {
	if f.Class != ClassNAV || f.ID != IDNavSvin {
		return nil, &DecodeError{Reason: fmt.Sprintf("not NAV-SVIN: %s", f.Identity())}
	}
	if len(f.Payload) != navSvinLen {
		return nil, &DecodeError{Reason: fmt.Sprintf("NAV-SVIN payload is %d bytes, want %d", len(f.Payload), navSvinLen)}
	}

	return &NavSvin{
		Duration:     binary.LittleEndian.Uint32(f.Payload[8:12]),
		MeanAcc:      binary.LittleEndian.Uint32(f.Payload[28:32]),
		Observations: binary.LittleEndian.Uint32(f.Payload[32:36]),
		Valid:        f.Payload[36] != 0,
		Active:       f.Payload[37] != 0,
	}, nil
}
