package deviceconfig

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/muurk/ubxcfg/internal/logging"
	"github.com/muurk/ubxcfg/internal/transport"
	"github.com/muurk/ubxcfg/internal/ubx"
)

const (
	// DefaultAckTimeout bounds the wait for the acknowledgement of a single
	// apply message.
	DefaultAckTimeout = 5 * time.Second

	// DefaultWriteDelay paces consecutive writes so the device's input
	// buffer is never raced.
	DefaultWriteDelay = 20 * time.Millisecond
)

// LoaderOptions configures a load run.
type LoaderOptions struct {
	// AckTimeout bounds the wait for each acknowledgement.
	AckTimeout time.Duration

	// WriteDelay is the minimum gap between consecutive message writes.
	WriteDelay time.Duration

	// Progress, when set, is called after each message resolves.
	Progress func(done, total int)
}

// withDefaults fills unset options.
func (o LoaderOptions) withDefaults() LoaderOptions {
	if o.AckTimeout <= 0 {
		o.AckTimeout = DefaultAckTimeout
	}
	if o.WriteDelay <= 0 {
		o.WriteDelay = DefaultWriteDelay
	}
	return o
}

// Loader replays an apply message sequence against a device, strictly one
// message in flight at a time. The device treats the sequence as a single
// transaction, so the first rejected or unanswered message aborts the run;
// everything after it stays unsent and the device discards the partial
// transaction on its own.
type Loader struct {
	stream  transport.Stream
	reader  *ubx.Reader
	opts    LoaderOptions
	tracker *AckTracker
	runID   uuid.UUID
}

// NewLoader creates a loader on an open stream.
func NewLoader(stream transport.Stream, opts LoaderOptions) *Loader {
	return &Loader{
		stream:  stream,
		reader:  ubx.NewReader(stream),
		opts:    opts.withDefaults(),
		tracker: NewAckTracker(),
		runID:   uuid.New(),
	}
}

// RunID identifies this load run in logs and reports.
func (l *Loader) RunID() uuid.UUID {
	return l.runID
}

// Run transmits msgs in order. The report always describes what actually
// happened on the wire, even when an error aborts the run early.
func (l *Loader) Run(ctx context.Context, msgs []ApplyMessage) (*LoadReport, error) {
	report := &LoadReport{
		RunID:    l.runID,
		Messages: len(msgs),
	}
	start := time.Now()
	defer func() {
		report.Duration = time.Since(start)
		report.Acked, report.Naked, report.Expired = l.tracker.Counts()
		report.FirstFailure = l.tracker.FirstFailure()
		report.Complete = report.Acked == len(msgs)
	}()

	logging.Info("Load run starting",
		zap.String("run_id", l.runID.String()),
		zap.Int("messages", len(msgs)),
	)

	for i, m := range msgs {
		if i > 0 {
			if err := sleepCtx(ctx, l.opts.WriteDelay); err != nil {
				report.Canceled = true
				return report, err
			}
		} else if err := ctx.Err(); err != nil {
			report.Canceled = true
			return report, err
		}

		if err := l.sendOne(ctx, i, m); err != nil {
			report.Canceled = ctx.Err() != nil
			return report, err
		}

		logging.Debug("Message acknowledged",
			zap.String("run_id", l.runID.String()),
			zap.Int("index", i+1),
			zap.Stringer("marker", m.Marker),
		)
		if l.opts.Progress != nil {
			l.opts.Progress(i+1, len(msgs))
		}
	}

	logging.Info("Load run complete",
		zap.String("run_id", l.runID.String()),
		zap.Int("messages", len(msgs)),
	)
	return report, nil
}

// sendOne writes message i and blocks until its acknowledgement resolves.
func (l *Loader) sendOne(ctx context.Context, i int, m ApplyMessage) error {
	identity := m.Identity()
	raw := m.Frame.Encode()
	logging.LogFrame("tx", identity, m.Frame.Payload)

	if err := l.tracker.Send(i, identity); err != nil {
		return err
	}
	if _, err := l.stream.Write(raw); err != nil {
		l.tracker.Expire()
		return NewTransportError("failed to write apply message", err)
	}

	acked, err := awaitAck(ctx, l.stream, l.reader, ubx.IDValSet, i, identity, time.Now().Add(l.opts.AckTimeout))
	if err != nil {
		l.tracker.Expire()
		if IsTimeoutError(err) {
			logging.Error("Acknowledgement timed out",
				zap.String("run_id", l.runID.String()),
				zap.Int("index", i+1),
			)
		}
		return err
	}

	l.tracker.Resolve(acked)
	if !acked {
		logging.Error("Message rejected by device",
			zap.String("run_id", l.runID.String()),
			zap.Int("index", i+1),
		)
		return NewNakError(i, identity)
	}
	return nil
}

// awaitAck reads frames until it sees the device's acknowledgement of a
// CFG-class message with id wantID, skipping unrelated traffic. Any decode
// error is fatal: a corrupted line cannot be trusted to have delivered the
// message intact.
func awaitAck(ctx context.Context, stream transport.Stream, reader *ubx.Reader, wantID byte, index int, identity string, deadline time.Time) (bool, error) {
	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if err := stream.SetReadDeadline(deadline); err != nil {
			return false, NewTransportError("failed to set read deadline", err)
		}

		frame, err := reader.ReadFrame()
		if err != nil {
			var decErr *ubx.DecodeError
			switch {
			case errors.As(err, &decErr):
				return false, NewDecodeError("malformed frame while awaiting acknowledgement", decErr)
			case transport.IsTimeout(err):
				return false, NewAckTimeoutError(index, identity)
			default:
				return false, NewTransportError("read failed while awaiting acknowledgement", err)
			}
		}

		logging.LogFrame("rx", frame.Identity(), frame.Payload)

		if frame.Class != ubx.ClassACK {
			// Unrelated traffic; keep waiting.
			continue
		}
		acked, cls, id, derr := ubx.DecodeAck(frame)
		if derr != nil {
			return false, NewDecodeError("malformed acknowledgement", derr)
		}
		if cls != ubx.ClassCFG || id != wantID {
			// Acknowledgement for some other message.
			continue
		}
		return acked, nil
	}
}
