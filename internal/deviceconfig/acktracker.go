package deviceconfig

import (
	"fmt"
	"time"
)

// AckState is the lifecycle state of one transmitted apply message.
// SENT is the only non-terminal state.
type AckState int

const (
	// StateSent means the message is on the wire awaiting acknowledgement.
	StateSent AckState = iota
	// StateAcked means the device acknowledged the message.
	StateAcked
	// StateNaked means the device rejected the message.
	StateNaked
	// StateExpired means no acknowledgement arrived within the deadline.
	StateExpired
)

// String returns a human-readable state name
func (s AckState) String() string {
	switch s {
	case StateSent:
		return "sent"
	case StateAcked:
		return "acked"
	case StateNaked:
		return "naked"
	case StateExpired:
		return "expired"
	default:
		return fmt.Sprintf("AckState(%d)", int(s))
	}
}

// AckRecord tracks one transmitted apply message through to its outcome.
type AckRecord struct {
	Index    int    // 0-based position in the transaction
	Identity string // wire identity of the message
	State    AckState
	SentAt   time.Time
}

// AckTracker is the sequencing state machine for a load run. It enforces the
// engine's single-in-flight contract explicitly: a second Send before the
// first message resolves is a programming error, not a silent reorder.
//
// Records live only for the duration of one load run.
type AckTracker struct {
	records  []AckRecord
	inflight int // index into records, -1 when nothing is in flight
}

// NewAckTracker creates an empty tracker
func NewAckTracker() *AckTracker {
	return &AckTracker{inflight: -1}
}

// Send records a message as transmitted and in flight.
func (t *AckTracker) Send(index int, identity string) error {
	if t.inflight >= 0 {
		return fmt.Errorf("message %d still awaiting acknowledgement, cannot send message %d",
			t.records[t.inflight].Index+1, index+1)
	}
	t.inflight = len(t.records)
	t.records = append(t.records, AckRecord{
		Index:    index,
		Identity: identity,
		State:    StateSent,
		SentAt:   time.Now(),
	})
	return nil
}

// Resolve moves the in-flight message to ACKED or NAKED.
func (t *AckTracker) Resolve(acked bool) (*AckRecord, error) {
	rec, err := t.takeInflight()
	if err != nil {
		return nil, err
	}
	if acked {
		rec.State = StateAcked
	} else {
		rec.State = StateNaked
	}
	return rec, nil
}

// Expire moves the in-flight message to EXPIRED.
func (t *AckTracker) Expire() (*AckRecord, error) {
	rec, err := t.takeInflight()
	if err != nil {
		return nil, err
	}
	rec.State = StateExpired
	return rec, nil
}

// takeInflight clears and returns the in-flight record.
func (t *AckTracker) takeInflight() (*AckRecord, error) {
	if t.inflight < 0 {
		return nil, fmt.Errorf("no message in flight")
	}
	rec := &t.records[t.inflight]
	t.inflight = -1
	return rec, nil
}

// InFlight returns the record currently awaiting acknowledgement, or nil.
func (t *AckTracker) InFlight() *AckRecord {
	if t.inflight < 0 {
		return nil
	}
	return &t.records[t.inflight]
}

// Counts returns how many records ended in each terminal state.
func (t *AckTracker) Counts() (acked, naked, expired int) {
	for _, r := range t.records {
		switch r.State {
		case StateAcked:
			acked++
		case StateNaked:
			naked++
		case StateExpired:
			expired++
		}
	}
	return
}

// FirstFailure returns the first record that ended in NAKED or EXPIRED,
// or nil if every tracked message was acknowledged.
func (t *AckTracker) FirstFailure() *AckRecord {
	for i := range t.records {
		if t.records[i].State == StateNaked || t.records[i].State == StateExpired {
			return &t.records[i]
		}
	}
	return nil
}

// Records returns all records in transmission order.
func (t *AckTracker) Records() []AckRecord {
	return t.records
}
