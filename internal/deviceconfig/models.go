package deviceconfig

import (
	"fmt"

	"github.com/muurk/ubxcfg/internal/ubx"
)

// KeyGroup identifies one cluster of related configuration keys that is
// polled as a unit (e.g. every CFG-MSGOUT rate key). The id is the UBX
// configuration group id, bits 16-23 of each member key.
type KeyGroup struct {
	ID   byte
	Name string
}

// String returns the group's display name
func (g KeyGroup) String() string {
	return g.Name
}

// ConfigEntry is one polled configuration key, its raw value bytes and the
// storage layer the value was read from.
type ConfigEntry struct {
	Key   ubx.KeyID
	Value []byte
	Layer ubx.Layer
}

// Snapshot is the full collected configuration of a device at save time.
// Entries keep their insertion order for reproducible file output; a
// duplicate key overwrites the earlier value in place (last-write-wins)
// without moving it.
//
// A Snapshot is owned by a single save run and is not safe for concurrent
// mutation.
type Snapshot struct {
	entries []ConfigEntry
	index   map[ubx.KeyID]int
}

// NewSnapshot creates an empty snapshot
func NewSnapshot() *Snapshot {
	return &Snapshot{
		index: make(map[ubx.KeyID]int),
	}
}

// Put inserts an entry, overwriting in place if the key is already present.
func (s *Snapshot) Put(e ConfigEntry) {
	if i, ok := s.index[e.Key]; ok {
		s.entries[i] = e
		return
	}
	s.index[e.Key] = len(s.entries)
	s.entries = append(s.entries, e)
}

// Len returns the number of distinct keys in the snapshot
func (s *Snapshot) Len() int {
	return len(s.entries)
}

// Entries returns the snapshot's entries in insertion order. The returned
// slice is shared; callers must not modify it.
func (s *Snapshot) Entries() []ConfigEntry {
	return s.entries
}

// Marker is the transaction position of one apply message. The closed set
// makes illegal sequences (two starts, a missing end) representable only as
// validation errors, never as values.
type Marker int

const (
	// MarkerOnly tags the sole message of a single-message transaction
	// (start and end coincide).
	MarkerOnly Marker = iota
	// MarkerStart tags the first message of a multi-message transaction.
	MarkerStart
	// MarkerContinue tags an intermediate message.
	MarkerContinue
	// MarkerEnd tags the final message; the device applies the whole
	// transaction atomically when it arrives.
	MarkerEnd
)

// String returns a human-readable marker name
func (m Marker) String() string {
	switch m {
	case MarkerOnly:
		return "only"
	case MarkerStart:
		return "start"
	case MarkerContinue:
		return "continue"
	case MarkerEnd:
		return "end"
	default:
		return fmt.Sprintf("Marker(%d)", int(m))
	}
}

// transaction maps the marker onto the CFG-VALSET transaction field. A sole
// message goes out transactionless; the device applies it atomically on its
// own.
func (m Marker) transaction() ubx.Transaction {
	switch m {
	case MarkerStart:
		return ubx.TxnStart
	case MarkerContinue:
		return ubx.TxnContinue
	case MarkerEnd:
		return ubx.TxnEnd
	default:
		return ubx.TxnNone
	}
}

// markerFromTransaction is the inverse mapping, used when reading a
// transaction file back.
func markerFromTransaction(t ubx.Transaction) Marker {
	switch t {
	case ubx.TxnStart:
		return MarkerStart
	case ubx.TxnContinue:
		return MarkerContinue
	case ubx.TxnEnd:
		return MarkerEnd
	default:
		return MarkerOnly
	}
}

/// ApplyMessage is one wire-ready CFG-VALSET message: a bounded subset of a
// snapshot plus its transaction marker and the encoded frame.
type ApplyMessage struct {
	Marker Marker
	Pairs  []ubx.KeyValue
	Frame  *ubx.Frame
}

// Identity returns the wire identity of the message
func (m *ApplyMessage) Identity() string {
	return m.Frame.Identity()
}
