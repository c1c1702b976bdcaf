package deviceconfig

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/muurk/ubxcfg/internal/ubx"
)

// GroupResult records the outcome of polling one key group during a save.
type GroupResult struct {
	Group    KeyGroup
	Keys     int  // entries collected for this group
	TimedOut bool // deadline passed without a completion signal
}

// Empty reports whether the group yielded no entries at all.
func (g GroupResult) Empty() bool {
	return g.Keys == 0
}

// SaveReport summarizes a save run.
type SaveReport struct {
	RunID     uuid.UUID
	Class     DeviceClass
	Layer     ubx.Layer
	Groups    []GroupResult
	TotalKeys int
	Complete  bool // every group ended with an explicit completion signal
	Canceled  bool
	Duration  time.Duration
}

// EmptyGroups returns the names of groups that yielded no entries.
func (r *SaveReport) EmptyGroups() []string {
	var names []string
	for _, g := range r.Groups {
		if g.Empty() {
			names = append(names, g.Group.Name)
		}
	}
	return names
}

// TimedOutGroups returns the names of groups whose poll timed out.
func (r *SaveReport) TimedOutGroups() []string {
	var names []string
	for _, g := range r.Groups {
		if g.TimedOut {
			names = append(names, g.Group.Name)
		}
	}
	return names
}

// CoverageWarning returns an incomplete-coverage error describing the groups
// that timed out, or nil when the run was complete.
func (r *SaveReport) CoverageWarning() error {
	timedOut := r.TimedOutGroups()
	if len(timedOut) == 0 {
		return nil
	}
	return NewIncompleteError(timedOut)
}

// Summary renders a one-paragraph human summary of the run.
func (r *SaveReport) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Collected %d configuration entries across %d key groups in %s",
		r.TotalKeys, len(r.Groups), r.Duration.Round(time.Millisecond))
	if r.Canceled {
		b.WriteString(" (canceled)")
	} else if !r.Complete {
		fmt.Fprintf(&b, " (incomplete: %s)", strings.Join(r.TimedOutGroups(), ", "))
	}
	return b.String()
}

// LoadReport summarizes a load run.
type LoadReport struct {
	RunID        uuid.UUID
	Messages     int // apply messages in the transaction
	Acked        int
	Naked        int
	Expired      int
	FirstFailure *AckRecord // nil when everything was acknowledged
	Complete     bool
	Canceled     bool
	Duration     time.Duration
}

// Summary renders a one-paragraph human summary of the run.
func (r *LoadReport) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Applied %d of %d messages in %s",
		r.Acked, r.Messages, r.Duration.Round(time.Millisecond))
	if r.Canceled {
		b.WriteString(" (canceled)")
	}
	if f := r.FirstFailure; f != nil {
		fmt.Fprintf(&b, "; message %d (%s) %s", f.Index+1, f.Identity, f.State)
	}
	return b.String()
}
