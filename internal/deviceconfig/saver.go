package deviceconfig

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/muurk/ubxcfg/internal/logging"
	"github.com/muurk/ubxcfg/internal/transport"
	"github.com/muurk/ubxcfg/internal/ubx"
)

const (
	// DefaultGroupWait bounds how long a single key group poll may take.
	DefaultGroupWait = 2 * time.Second

	// DefaultPacing is the delay between finishing one group and polling the
	// next, giving slow firmware room to breathe on a half-duplex line.
	DefaultPacing = 100 * time.Millisecond
)

// SaverOptions configures a save run.
type SaverOptions struct {
	// Class selects the key group catalog (default ClassGen9).
	Class DeviceClass

	// Layer is the storage layer polled (default RAM, the live
	// configuration).
	Layer ubx.Layer

	// GroupWait bounds the wait for each group's responses.
	GroupWait time.Duration

	// Pacing is the inter-group delay.
	Pacing time.Duration

	// QuietPeriod is passed through to the collector.
	QuietPeriod time.Duration

	// Progress, when set, is called after each group completes.
	Progress func(done, total int, group KeyGroup, keys int)
}

// withDefaults fills unset options.
func (o SaverOptions) withDefaults() SaverOptions {
	if o.Class == "" {
		o.Class = ClassGen9
	}
	if o.GroupWait <= 0 {
		o.GroupWait = DefaultGroupWait
	}
	if o.Pacing <= 0 {
		o.Pacing = DefaultPacing
	}
	return o
}

// Saver drives the save path: it polls every key group in catalog order,
// funnels the responses through a Collector and grows a Snapshot. The run
// is a single synchronous request/wait loop; the transport is half-duplex
// and correlation depends on temporal ordering, so nothing here is
// parallelized.
type Saver struct {
	stream    transport.Stream
	collector *Collector
	opts      SaverOptions
	runID     uuid.UUID
}

// NewSaver creates a saver on an open stream.
func NewSaver(stream transport.Stream, opts SaverOptions) *Saver {
	opts = opts.withDefaults()
	return &Saver{
		stream:    stream,
		collector: NewCollector(stream, opts.Layer, opts.QuietPeriod),
		opts:      opts,
		runID:     uuid.New(),
	}
}

// RunID identifies this save run in logs and reports.
func (s *Saver) RunID() uuid.UUID {
	return s.runID
}

// Run executes the save. It always returns the snapshot and report built so
// far: on cancellation or transport failure both describe the partial run,
// flagged incomplete.
//
// A group that stays silent is recorded as empty and the run continues;
// only transport failures and cancellation abort it.
func (s *Saver) Run(ctx context.Context) (*Snapshot, *SaveReport, error) {
	groups := Groups(s.opts.Class)
	snapshot := NewSnapshot()
	report := &SaveReport{
		RunID: s.runID,
		Class: s.opts.Class,
		Layer: s.opts.Layer,
	}
	start := time.Now()
	defer func() {
		report.Duration = time.Since(start)
		report.TotalKeys = snapshot.Len()
	}()

	logging.Info("Save run starting",
		zap.String("run_id", s.runID.String()),
		zap.String("class", string(s.opts.Class)),
		zap.Int("groups", len(groups)),
	)

	for i, group := range groups {
		if i > 0 {
			if err := sleepCtx(ctx, s.opts.Pacing); err != nil {
				report.Canceled = true
				return snapshot, report, err
			}
		}

		keys, timedOut, err := s.pollGroup(ctx, group, snapshot)
		report.Groups = append(report.Groups, GroupResult{
			Group:    group,
			Keys:     keys,
			TimedOut: timedOut,
		})
		if timedOut {
			logging.Warn("Group timed out",
				zap.String("run_id", s.runID.String()),
				zap.String("group", group.Name),
				zap.Int("keys", keys),
			)
		} else {
			logging.Info("Group complete",
				zap.String("run_id", s.runID.String()),
				zap.String("group", group.Name),
				zap.Int("keys", keys),
			)
		}
		if s.opts.Progress != nil {
			s.opts.Progress(i+1, len(groups), group, keys)
		}
		if err != nil {
			report.Canceled = ctx.Err() != nil
			return snapshot, report, err
		}
	}

	report.Complete = true
	for _, g := range report.Groups {
		if g.TimedOut {
			report.Complete = false
		}
	}
	return snapshot, report, nil
}

// pollGroup polls one group through all its pagination positions, adding
// entries to the snapshot as they arrive.
func (s *Saver) pollGroup(ctx context.Context, group KeyGroup, snapshot *Snapshot) (keys int, timedOut bool, err error) {
	wildcard := []ubx.KeyID{ubx.GroupWildcard(group.ID)}
	position := uint16(0)

	for {
		poll := ubx.EncodeValGetPoll(s.opts.Layer, position, wildcard)
		raw := poll.Encode()
		logging.LogFrame("tx", poll.Identity(), poll.Payload)
		if _, werr := s.stream.Write(raw); werr != nil {
			return keys, false, NewTransportError("failed to write poll", werr)
		}

		pairs, status, full, cerr := s.collector.Collect(ctx, group, position, time.Now().Add(s.opts.GroupWait))
		for _, p := range pairs {
			snapshot.Put(ConfigEntry{Key: p.Key, Value: p.Value, Layer: s.opts.Layer})
		}
		keys += len(pairs)

		if cerr != nil {
			return keys, status == CollectTimeout, cerr
		}
		if status == CollectTimeout {
			return keys, true, nil
		}
		if !full {
			return keys, false, nil
		}
		position += ubx.MaxPairsPerMessage
	}
}

// sleepCtx sleeps for d unless ctx is done first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
