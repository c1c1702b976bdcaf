package deviceconfig

import (
	"fmt"

	"github.com/muurk/ubxcfg/internal/ubx"
)

const (
	// DefaultMaxPayload is the default CFG-VALSET payload budget per apply
	// message, header included. Comfortably under any generation 9+ input
	// buffer while keeping transaction counts low.
	DefaultMaxPayload = 512

	// valSetHeaderSize is the fixed CFG-VALSET payload prefix preceding the
	// key/value data.
	valSetHeaderSize = 4
)

// Assemble packs a snapshot into an ordered sequence of apply messages.
//
// Entries are packed greedily in snapshot order into CFG-VALSET payloads of
// at most maxPayload bytes (and at most the protocol's 64 pairs), addressed
// to the storage layers in mask. Markers are assigned so the sequence forms
// exactly one transaction: a sole message is MarkerOnly, otherwise the first
// is MarkerStart, the last MarkerEnd, and everything between MarkerContinue.
//
// Concatenating the pair payloads of the returned messages in order
// reproduces the snapshot exactly once per entry.
//
// Returns an encoding EngineError if any single entry alone exceeds the
// payload budget; such an entry cannot be split across messages. maxPayload
// values below the minimum useful size fall back to DefaultMaxPayload.
func Assemble(snapshot *Snapshot, mask ubx.LayerMask, maxPayload int) ([]ApplyMessage, error) {
	if maxPayload < valSetHeaderSize+4+1 {
		maxPayload = DefaultMaxPayload
	}

	entries := snapshot.Entries()
	if len(entries) == 0 {
		return nil, nil
	}

	// First pass: split into runs of pairs per message.
	var (
		chunks  [][]ubx.KeyValue
		current []ubx.KeyValue
		used    = valSetHeaderSize
	)
	for _, e := range entries {
		cost := 4 + len(e.Value)
		if valSetHeaderSize+cost > maxPayload {
			return nil, NewEncodingError(
				fmt.Sprintf("entry of %d bytes exceeds the %d byte message budget", cost, maxPayload), e.Key)
		}
		if used+cost > maxPayload || len(current) == ubx.MaxPairsPerMessage {
			chunks = append(chunks, current)
			current = nil
			used = valSetHeaderSize
		}
		current = append(current, ubx.KeyValue{Key: e.Key, Value: e.Value})
		used += cost
	}
	chunks = append(chunks, current)

	// Second pass: assign markers and encode.
	msgs := make([]ApplyMessage, 0, len(chunks))
	for i, pairs := range chunks {
		marker := markerFor(i, len(chunks))
		frame, err := ubx.EncodeValSet(mask, marker.transaction(), pairs)
		if err != nil {
			// Value sizes were validated by the codec; reaching this means
			// the snapshot holds an entry the protocol cannot express.
			return nil, NewEncodingError(err.Error(), pairs[0].Key)
		}
		msgs = append(msgs, ApplyMessage{
			Marker: marker,
			Pairs:  pairs,
			Frame:  frame,
		})
	}
	return msgs, nil
}

// markerFor places message i of n within the transaction.
func markerFor(i, n int) Marker {
	switch {
	case n == 1:
		return MarkerOnly
	case i == 0:
		return MarkerStart
	case i == n-1:
		return MarkerEnd
	default:
		return MarkerContinue
	}
}
