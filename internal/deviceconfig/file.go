package deviceconfig

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/muurk/ubxcfg/internal/ubx"
)

// The transaction file format is a flat concatenation of encoded
// CFG-VALSET frames in transmission order. Each frame is self-length-
// prefixed, so no extra framing or index is needed; sequential read-only
// access is sufficient.

// WriteTransactionFile writes the apply messages to w in order.
func WriteTransactionFile(w io.Writer, msgs []ApplyMessage) error {
	for i, m := range msgs {
		if _, err := w.Write(m.Frame.Encode()); err != nil {
			return NewTransportError(fmt.Sprintf("failed to write message %d", i+1), err)
		}
	}
	return nil
}

// SaveTransactionFile writes the apply messages to a new file at path.
// Transaction files are write-once: an existing file is never overwritten.
func SaveTransactionFile(path string, msgs []ApplyMessage) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("failed to create transaction file: %w", err)
	}

	if err := WriteTransactionFile(f, msgs); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to close transaction file: %w", err)
	}
	return nil
}

// ReadTransactionFile reads an ordered apply message sequence back from r.
//
/// Unlike live collection, any malformed record here is fatal: a damaged
// file cannot be replayed safely because the transaction's sequencing would
// break. The marker sequence is validated before anything is returned.
func ReadTransactionFile(r io.Reader) ([]ApplyMessage, error) {
	reader := ubx.NewReader(r)
	var msgs []ApplyMessage

	for {
		frame, err := reader.ReadFrame()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, NewDecodeError(fmt.Sprintf("file truncated in record %d", len(msgs)+1), err)
			}
			var decErr *ubx.DecodeError
			if errors.As(err, &decErr) {
				return nil, NewDecodeError(fmt.Sprintf("malformed record %d", len(msgs)+1), decErr)
			}
			return nil, NewTransportError("failed to read transaction file", err)
		}

		_, txn, pairs, err := ubx.DecodeValSet(frame)
		if err != nil {
			return nil, NewDecodeError(fmt.Sprintf("record %d is not an apply message (%s)", len(msgs)+1, frame.Identity()), err)
		}

		msgs = append(msgs, ApplyMessage{
			Marker: markerFromTransaction(txn),
			Pairs:  pairs,
			Frame:  frame,
		})
	}

	if err := validateMarkers(msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// LoadTransactionFile reads an apply message sequence from a file at path.
func LoadTransactionFile(path string) ([]ApplyMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transaction file: %w", err)
	}
	defer f.Close()

	return ReadTransactionFile(f)
}

// validateMarkers checks that the message sequence forms exactly one
// well-formed transaction.
func validateMarkers(msgs []ApplyMessage) error {
	if len(msgs) == 0 {
		return nil
	}

	if len(msgs) == 1 {
		if msgs[0].Marker != MarkerOnly {
			return NewDecodeError(fmt.Sprintf("single-message file carries marker %q, want %q", msgs[0].Marker, MarkerOnly), nil)
		}
		return nil
	}

	for i, m := range msgs {
		var want Marker
		switch {
		case i == 0:
			want = MarkerStart
		case i == len(msgs)-1:
			want = MarkerEnd
		default:
			want = MarkerContinue
		}
		if m.Marker != want {
			return NewDecodeError(fmt.Sprintf("record %d carries marker %q, want %q", i+1, m.Marker, want), nil)
		}
	}
	return nil
}
