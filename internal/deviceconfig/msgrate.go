package deviceconfig

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/muurk/ubxcfg/internal/logging"
	"github.com/muurk/ubxcfg/internal/transport"
	"github.com/muurk/ubxcfg/internal/ubx"
)

// MessageRate identifies one broadcast message whose output rate is being
// set via legacy CFG-MSG.
type MessageRate struct {
	Class byte
	ID    byte
}

// Identity returns the wire identity used in logs and error reports.
func (m MessageRate) Identity() string {
	return fmt.Sprintf("CFG-MSG %02X-%02X", m.Class, m.ID)
}

// Standard NMEA and proprietary message classes for rate presets.
const (
	classNMEAStd  = 0xF0
	classNMEAProp = 0xF1
	classRTCM3    = 0xF5
)

// MsgNavSvin is the survey-in status broadcast.
var MsgNavSvin = MessageRate{Class: ubx.ClassNAV, ID: ubx.IDNavSvin}

// RTCMBaseSet is the RTCM3 correction message set a base station transmits:
// station reference position (1006) plus MSM7 observables for GPS, GLONASS,
// Galileo and BeiDou, and the GLONASS code-phase biases (1230).
var RTCMBaseSet = []MessageRate{
	{classRTCM3, 0x06}, // 1006
	{classRTCM3, 0x4D}, // 1077
	{classRTCM3, 0x57}, // 1087
	{classRTCM3, 0x61}, // 1097
	{classRTCM3, 0x7F}, // 1127
	{classRTCM3, 0xE6}, // 1230
}

// Message set presets selectable by name. The minimum sets carry just what a
// position consumer needs; the all sets cover the full standard NMEA output
// and the common NAV messages.
var (
	minNMEASet = []MessageRate{
		{classNMEAStd, 0x00}, // GGA
		{classNMEAStd, 0x02}, // GSA
		{classNMEAStd, 0x03}, // GSV
		{classNMEAStd, 0x04}, // RMC
		{classNMEAStd, 0x05}, // VTG
	}
	allNMEASet = []MessageRate{
		{classNMEAStd, 0x00},  // GGA
		{classNMEAStd, 0x01},  // GLL
		{classNMEAStd, 0x02},  // GSA
		{classNMEAStd, 0x03},  // GSV
		{classNMEAStd, 0x04},  // RMC
		{classNMEAStd, 0x05},  // VTG
		{classNMEAStd, 0x06},  // GRS
		{classNMEAStd, 0x07},  // GST
		{classNMEAStd, 0x08},  // ZDA
		{classNMEAStd, 0x09},  // GBS
		{classNMEAStd, 0x0D},  // GNS
		{classNMEAStd, 0x0F},  // VLW
		{classNMEAProp, 0x00}, // UBX,00
		{classNMEAProp, 0x03}, // UBX,03
		{classNMEAProp, 0x04}, // UBX,04
	}
	minUBXSet = []MessageRate{
		{ubx.ClassNAV, 0x04}, // NAV-DOP
		{ubx.ClassNAV, 0x07}, // NAV-PVT
		{ubx.ClassNAV, 0x35}, // NAV-SAT
	}
	allUBXSet = []MessageRate{
		{ubx.ClassNAV, 0x01}, // NAV-POSECEF
		{ubx.ClassNAV, 0x02}, // NAV-POSLLH
		{ubx.ClassNAV, 0x03}, // NAV-STATUS
		{ubx.ClassNAV, 0x04}, // NAV-DOP
		{ubx.ClassNAV, 0x07}, // NAV-PVT
		{ubx.ClassNAV, 0x09}, // NAV-ODO
		{ubx.ClassNAV, 0x11}, // NAV-VELECEF
		{ubx.ClassNAV, 0x12}, // NAV-VELNED
		{ubx.ClassNAV, 0x13}, // NAV-HPPOSECEF
		{ubx.ClassNAV, 0x14}, // NAV-HPPOSLLH
		{ubx.ClassNAV, 0x20}, // NAV-TIMEGPS
		{ubx.ClassNAV, 0x21}, // NAV-TIMEUTC
		{ubx.ClassNAV, 0x22}, // NAV-CLOCK
		{ubx.ClassNAV, 0x35}, // NAV-SAT
		{ubx.ClassNAV, ubx.IDNavSvin},
	}
)

// ParseMessageSet resolves a preset name into its message list.
func ParseMessageSet(name string) ([]MessageRate, error) {
	switch name {
	case "minnmea":
		return minNMEASet, nil
	case "allnmea":
		return allNMEASet, nil
	case "minubx":
		return minUBXSet, nil
	case "allubx":
		return allUBXSet, nil
	default:
		return nil, fmt.Errorf("unknown message set %q (supported: allnmea, minnmea, allubx, minubx)", name)
	}
}

// RateSetter applies CFG-MSG rate changes one message at a time, waiting for
// each acknowledgement before sending the next. Unlike a load run there is
// no device-side transaction; messages already acknowledged stay applied
// when a later one fails.
type RateSetter struct {
	stream  transport.Stream
	reader  *ubx.Reader
	opts    LoaderOptions
	tracker *AckTracker
	runID   uuid.UUID
}

// NewRateSetter creates a rate setter on an open stream.
func NewRateSetter(stream transport.Stream, opts LoaderOptions) *RateSetter {
	return &RateSetter{
		stream:  stream,
		reader:  ubx.NewReader(stream),
		opts:    opts.withDefaults(),
		tracker: NewAckTracker(),
		runID:   uuid.New(),
	}
}

// RunID identifies this rate run in logs and reports.
func (rs *RateSetter) RunID() uuid.UUID {
	return rs.runID
}

// Run sets every message in msgs to the given per-epoch rate on all ports.
// The report describes what actually happened on the wire, even when an
// error aborts the run early.
func (rs *RateSetter) Run(ctx context.Context, msgs []MessageRate, rate byte) (*LoadReport, error) {
	report := &LoadReport{
		RunID:    rs.runID,
		Messages: len(msgs),
	}
	start := time.Now()
	defer func() {
		report.Duration = time.Since(start)
		report.Acked, report.Naked, report.Expired = rs.tracker.Counts()
		report.FirstFailure = rs.tracker.FirstFailure()
		report.Complete = report.Acked == len(msgs)
	}()

	logging.Info("Rate run starting",
		zap.String("run_id", rs.runID.String()),
		zap.Int("messages", len(msgs)),
		zap.Uint8("rate", rate),
	)

	for i, m := range msgs {
		if i > 0 {
			if err := sleepCtx(ctx, rs.opts.WriteDelay); err != nil {
				report.Canceled = true
				return report, err
			}
		} else if err := ctx.Err(); err != nil {
			report.Canceled = true
			return report, err
		}

		if err := rs.setOne(ctx, i, m, rate); err != nil {
			report.Canceled = ctx.Err() != nil
			return report, err
		}

		if rs.opts.Progress != nil {
			rs.opts.Progress(i+1, len(msgs))
		}
	}

	logging.Info("Rate run complete",
		zap.String("run_id", rs.runID.String()),
		zap.Int("messages", len(msgs)),
	)
	return report, nil
}

// setOne writes the rate change for message i and blocks until the device
// acknowledges it.
func (rs *RateSetter) setOne(ctx context.Context, i int, m MessageRate, rate byte) error {
	identity := m.Identity()
	frame := ubx.EncodeMsgRate(m.Class, m.ID, rate)
	logging.LogFrame("tx", identity, frame.Payload)

	if err := rs.tracker.Send(i, identity); err != nil {
		return err
	}
	if _, err := rs.stream.Write(frame.Encode()); err != nil {
		rs.tracker.Expire()
		return NewTransportError("failed to write rate change", err)
	}

	acked, err := awaitAck(ctx, rs.stream, rs.reader, ubx.IDCfgMsg, i, identity, time.Now().Add(rs.opts.AckTimeout))
	if err != nil {
		rs.tracker.Expire()
		if IsTimeoutError(err) {
			logging.Error("Rate change unacknowledged",
				zap.String("run_id", rs.runID.String()),
				zap.String("message", identity),
			)
		}
		return err
	}

	rs.tracker.Resolve(acked)
	if !acked {
		logging.Error("Rate change rejected by device",
			zap.String("run_id", rs.runID.String()),
			zap.String("message", identity),
		)
		return NewNakError(i, identity)
	}
	return nil
}
