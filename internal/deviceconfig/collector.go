package deviceconfig

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/ubxcfg/internal/logging"
	"github.com/muurk/ubxcfg/internal/transport"
	"github.com/muurk/ubxcfg/internal/ubx"
)

// CollectStatus is the outcome of collecting one poll page.
type CollectStatus int

const (
	// CollectComplete means the page finished: a response arrived carrying
	// fewer than the maximum pairs, the device rejected the poll, or the
	// quiet period elapsed after at least one response.
	CollectComplete CollectStatus = iota
	// CollectTimeout means the deadline passed without any matching
	// response.
	CollectTimeout
)

// DefaultQuietPeriod is how long the collector waits for a further matching
// response after one has arrived before declaring the page complete.
const DefaultQuietPeriod = 300 * time.Millisecond

// Collector accumulates CFG-VALGET responses for one key group at a time,
// tolerating interleaved traffic on the line (NMEA sentences, NAV
// broadcasts, responses for other groups).
type Collector struct {
	stream transport.Stream
	reader *ubx.Reader
	layer  ubx.Layer
	quiet  time.Duration
}

// NewCollector creates a collector reading from stream. layer selects which
// storage layer responses must come from; quiet is the post-response quiet
// period (DefaultQuietPeriod if zero).
func NewCollector(stream transport.Stream, layer ubx.Layer, quiet time.Duration) *Collector {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	return &Collector{
		stream: stream,
		reader: ubx.NewReader(stream),
		layer:  layer,
		quiet:  quiet,
	}
}

// Collect reads inbound frames until the poll page for group at the given
// pagination position completes or deadline passes.
//
// Returned pairs are filtered to the group and deduplicated last-write-wins
// (noisy lines can deliver a resent response). full reports whether the page
// carried the maximum pair count, meaning another page should be polled.
//
// Malformed frames are discarded. Context cancellation returns ctx.Err()
// with whatever was accumulated; transport failures other than deadline
// expiry return a transport EngineError.
func (c *Collector) Collect(ctx context.Context, group KeyGroup, position uint16, deadline time.Time) (pairs []ubx.KeyValue, status CollectStatus, full bool, err error) {
	var (
		ordered []ubx.KeyValue
		byKey   = make(map[ubx.KeyID]int)
		got     bool // at least one matching response seen
		lastRx  time.Time
	)

	for {
		if ctx.Err() != nil {
			return ordered, CollectTimeout, false, ctx.Err()
		}

		// After the first matching response, only the quiet period is
		// granted for stragglers; before it, the full deadline applies.
		readDeadline := deadline
		if got {
			if quietCutoff := lastRx.Add(c.quiet); quietCutoff.Before(readDeadline) {
				readDeadline = quietCutoff
			}
		}
		if err := c.stream.SetReadDeadline(readDeadline); err != nil {
			return ordered, CollectTimeout, false, NewTransportError("failed to set read deadline", err)
		}

		frame, err := c.reader.ReadFrame()
		if err != nil {
			var decErr *ubx.DecodeError
			switch {
			case errors.As(err, &decErr):
				// Garbled frame on a noisy line: drop it and keep reading.
				logging.Warn("Discarding malformed frame",
					zap.String("group", group.Name),
					zap.Error(decErr),
				)
				continue
			case transport.IsTimeout(err):
				if got {
					return ordered, CollectComplete, false, nil
				}
				return ordered, CollectTimeout, false, nil
			default:
				return ordered, CollectTimeout, false, NewTransportError("read failed", err)
			}
		}

		logging.LogFrame("rx", frame.Identity(), frame.Payload)

		switch {
		case frame.Class == ubx.ClassCFG && frame.ID == ubx.IDValGet:
			layer, pos, raw, derr := ubx.DecodeValGetResponse(frame)
			if derr != nil {
				logging.Warn("Discarding undecodable CFG-VALGET",
					zap.String("group", group.Name),
					zap.Error(derr),
				)
				continue
			}
			if layer != c.layer || pos != position {
				// Stale page or an answer meant for someone else.
				continue
			}

			matched := false
			for _, p := range raw {
				if p.Key.Group() != group.ID {
					continue
				}
				matched = true
				if i, ok := byKey[p.Key]; ok {
					ordered[i] = p
					continue
				}
				byKey[p.Key] = len(ordered)
				ordered = append(ordered, p)
			}

			// A maximally full response is the protocol's own "more
			// follows" indicator; a shorter one ends the group.
			if len(raw) >= ubx.MaxPairsPerMessage {
				return ordered, CollectComplete, true, nil
			}
			if matched || len(raw) == 0 {
				return ordered, CollectComplete, false, nil
			}

			// Response matched layer and position but carried only foreign
			// groups; keep listening within the quiet period.
			got = true
			lastRx = time.Now()

		case frame.Class == ubx.ClassACK:
			acked, cls, id, derr := ubx.DecodeAck(frame)
			if derr != nil {
				continue
			}
			// A rejected poll means the group does not exist on this
			// device: the page is complete and empty.
			if !acked && cls == ubx.ClassCFG && id == ubx.IDValGet {
				logging.Debug("Poll rejected by device",
					zap.String("group", group.Name),
				)
				return ordered, CollectComplete, false, nil
			}

		default:
			// Unrelated traffic (NAV broadcasts etc).
			continue
		}
	}
}
