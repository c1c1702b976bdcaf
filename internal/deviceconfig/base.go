package deviceconfig

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/muurk/ubxcfg/internal/logging"
	"github.com/muurk/ubxcfg/internal/transport"
	"github.com/muurk/ubxcfg/internal/ubx"
	"go.uber.org/zap"
)

// CFG-TMODE key ids (group 0x03), generation 9 RTK receivers only.
const (
	KeyTModeMode         ubx.KeyID = 0x20030001
	KeyTModePosType      ubx.KeyID = 0x20030002
	KeyTModeEcefX        ubx.KeyID = 0x40030003
	KeyTModeEcefY        ubx.KeyID = 0x40030004
	KeyTModeEcefZ        ubx.KeyID = 0x40030005
	KeyTModeEcefXHP      ubx.KeyID = 0x20030006
	KeyTModeEcefYHP      ubx.KeyID = 0x20030007
	KeyTModeEcefZHP      ubx.KeyID = 0x20030008
	KeyTModeLat          ubx.KeyID = 0x40030009
	KeyTModeLon          ubx.KeyID = 0x4003000A
	KeyTModeHeight       ubx.KeyID = 0x4003000B
	KeyTModeLatHP        ubx.KeyID = 0x2003000C
	KeyTModeLonHP        ubx.KeyID = 0x2003000D
	KeyTModeHeightHP     ubx.KeyID = 0x2003000E
	KeyTModeFixedPosAcc  ubx.KeyID = 0x4003000F
	KeyTModeSvinMinDur   ubx.KeyID = 0x40030010
	KeyTModeSvinAccLimit ubx.KeyID = 0x40030011
)

// TimeMode is the receiver's CFG-TMODE-MODE operating mode.
type TimeMode byte

const (
	// TimeModeDisabled turns base station operation off.
	TimeModeDisabled TimeMode = 0
	// TimeModeSurveyIn has the receiver average its own position until the
	// accuracy limit is met.
	TimeModeSurveyIn TimeMode = 1
	// TimeModeFixed uses an operator-supplied reference position.
	TimeModeFixed TimeMode = 2
)

// String returns the mode's display name
func (m TimeMode) String() string {
	switch m {
	case TimeModeDisabled:
		return "disabled"
	case TimeModeSurveyIn:
		return "survey-in"
	case TimeModeFixed:
		return "fixed"
	default:
		return fmt.Sprintf("TimeMode(%d)", byte(m))
	}
}

// ParseTimeMode validates a mode name from user input.
func ParseTimeMode(s string) (TimeMode, error) {
	switch s {
	case "disabled":
		return TimeModeDisabled, nil
	case "survey-in", "svin":
		return TimeModeSurveyIn, nil
	case "fixed":
		return TimeModeFixed, nil
	default:
		return 0, fmt.Errorf("unknown timing mode %q (supported: disabled, survey-in, fixed)", s)
	}
}

// PositionType selects how a fixed reference position is expressed.
type PositionType byte

const (
	// PositionECEF is earth-centered earth-fixed X/Y/Z in centimeters.
	PositionECEF PositionType = 0
	// PositionLLH is latitude/longitude in degrees plus height in
	// centimeters.
	PositionLLH PositionType = 1
)

// Survey-in and fixed-mode defaults, matching receiver documentation
// conventions for a short static survey.
const (
	DefaultSurveyAccLimitCM = 100
	DefaultSurveyDuration   = 60 * time.Second
	MaxSurveyDuration       = 3600 * time.Second
)

// BaseConfig describes the desired base station operating mode. The zero
// value is not valid; use the mode-specific fields the mode requires.
type BaseConfig struct {
	// Mode is the timing mode to configure.
	Mode TimeMode

	// AccLimitCM is the accuracy limit in centimeters (survey-in) or the
	// claimed accuracy of the fixed position (fixed).
	AccLimitCM float64

	// SurveyDuration is the minimum survey-in observation time.
	SurveyDuration time.Duration

	// PosType selects the fixed position representation.
	PosType PositionType

	// Position is the fixed reference position: lat (deg), lon (deg),
	// height (cm) for LLH, or X, Y, Z (cm) for ECEF. Ignored for other
	// modes.
	Position [3]float64
}

// withDefaults fills unset numeric fields.
func (c BaseConfig) withDefaults() BaseConfig {
	if c.AccLimitCM <= 0 {
		c.AccLimitCM = DefaultSurveyAccLimitCM
	}
	if c.SurveyDuration <= 0 {
		c.SurveyDuration = DefaultSurveyDuration
	}
	return c
}

// Validate checks the configuration before anything reaches the wire.
func (c BaseConfig) Validate() error {
	switch c.Mode {
	case TimeModeDisabled, TimeModeFixed:
	case TimeModeSurveyIn:
		if c.SurveyDuration > MaxSurveyDuration {
			return fmt.Errorf("survey duration %s exceeds maximum %s", c.SurveyDuration, MaxSurveyDuration)
		}
	default:
		return fmt.Errorf("unknown timing mode %d", c.Mode)
	}
	if c.PosType != PositionECEF && c.PosType != PositionLLH {
		return fmt.Errorf("unknown position type %d", c.PosType)
	}
	return nil
}

// Entries builds the CFG-TMODE configuration entries for the mode. Entry
// order is fixed so repeated runs produce identical apply messages.
func (c BaseConfig) Entries() ([]ConfigEntry, error) {
	c = c.withDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	entry := func(key ubx.KeyID, value []byte) ConfigEntry {
		return ConfigEntry{Key: key, Value: value, Layer: ubx.LayerRAM}
	}
	accLimit := u4(uint32(c.AccLimitCM*100 + 0.5)) // cm to 0.1 mm

	switch c.Mode {
	case TimeModeDisabled:
		return []ConfigEntry{
			entry(KeyTModeMode, u1(byte(TimeModeDisabled))),
		}, nil

	case TimeModeSurveyIn:
		return []ConfigEntry{
			entry(KeyTModeMode, u1(byte(TimeModeSurveyIn))),
			entry(KeyTModeSvinAccLimit, accLimit),
			entry(KeyTModeSvinMinDur, u4(uint32(c.SurveyDuration/time.Second))),
		}, nil

	default: // TimeModeFixed
		entries := []ConfigEntry{
			entry(KeyTModeMode, u1(byte(TimeModeFixed))),
			entry(KeyTModePosType, u1(byte(c.PosType))),
			entry(KeyTModeFixedPosAcc, accLimit),
		}
		if c.PosType == PositionECEF {
			x, xhp := splitCM(c.Position[0])
			y, yhp := splitCM(c.Position[1])
			z, zhp := splitCM(c.Position[2])
			entries = append(entries,
				entry(KeyTModeEcefX, i4(x)),
				entry(KeyTModeEcefXHP, i1(xhp)),
				entry(KeyTModeEcefY, i4(y)),
				entry(KeyTModeEcefYHP, i1(yhp)),
				entry(KeyTModeEcefZ, i4(z)),
				entry(KeyTModeEcefZHP, i1(zhp)),
			)
		} else {
			lat, lathp := splitDegrees(c.Position[0])
			lon, lonhp := splitDegrees(c.Position[1])
			h, hhp := splitCM(c.Position[2])
			entries = append(entries,
				entry(KeyTModeLat, i4(lat)),
				entry(KeyTModeLatHP, i1(lathp)),
				entry(KeyTModeLon, i4(lon)),
				entry(KeyTModeLonHP, i1(lonhp)),
				entry(KeyTModeHeight, i4(h)),
				entry(KeyTModeHeightHP, i1(hhp)),
			)
		}
		return entries, nil
	}
}

// OutputRates returns the broadcast messages a base station run configures
// alongside CFG-TMODE: the standard RTCM3 correction set, plus the NAV-SVIN
// status broadcast while a survey is running. Disabling base mode turns the
// same set off.
func (c BaseConfig) OutputRates() []MessageRate {
	var rates []MessageRate
	if c.Mode == TimeModeSurveyIn {
		rates = append(rates, MsgNavSvin)
	}
	rates = append(rates, RTCMBaseSet...)
	return rates
}

// splitCM splits a centimeter value into the standard (cm) and
// high-precision (0.1 mm, -99..99) parts the TMODE keys store.
func splitCM(cm float64) (int32, int8) {
	scaled := int64(roundHalfAway(cm * 100)) // 0.1 mm
	return int32(scaled / 100), int8(scaled % 100)
}

// splitDegrees splits a degree value into 1e-7 degree and 1e-9 degree
// high-precision parts.
func splitDegrees(deg float64) (int32, int8) {
	scaled := int64(roundHalfAway(deg * 1e9))
	return int32(scaled / 100), int8(scaled % 100)
}

// roundHalfAway rounds to the nearest integer, halves away from zero.
func roundHalfAway(v float64) float64 {
	if v < 0 {
		return float64(int64(v - 0.5))
	}
	return float64(int64(v + 0.5))
}

func u1(v byte) []byte {
	return []byte{v}
}

func i1(v int8) []byte {
	return []byte{byte(v)}
}

func u4(v uint32) []byte {
	out := make([]byte, 4)
	binary.LittleEndian.PutUint32(out, v)
	return out
}

func i4(v int32) []byte {
	return u4(uint32(v))
}

// SurveyStatus is a snapshot of a running survey-in, taken from the
// receiver's NAV-SVIN broadcasts.
type SurveyStatus struct {
	// Elapsed is the observation time so far.
	Elapsed time.Duration
	// MeanAccCM is the current mean position accuracy in centimeters.
	MeanAccCM float64
	// Observations is the number of position observations used.
	Observations uint32
	// Valid reports whether the survey has converged.
	Valid bool
	// Active reports whether the survey is still running.
	Active bool
}

// MonitorSurveyIn watches NAV-SVIN broadcasts until the survey converges,
// the deadline passes or ctx is canceled. Progress, when set, is called for
// every status update. Malformed frames are discarded like any other
// broadcast noise; only transport failures abort the watch.
//
// A deadline expiry returns the last observed status with a timeout error:
// the receiver keeps surveying on its own, the operator just was not
// willing to wait longer.
func MonitorSurveyIn(ctx context.Context, stream transport.Stream, deadline time.Time, progress func(SurveyStatus)) (SurveyStatus, error) {
	reader := ubx.NewReader(stream)
	var status SurveyStatus

	for {
		if err := ctx.Err(); err != nil {
			return status, err
		}
		if err := stream.SetReadDeadline(deadline); err != nil {
			return status, NewTransportError("failed to set read deadline", err)
		}

		frame, err := reader.ReadFrame()
		if err != nil {
			var decErr *ubx.DecodeError
			switch {
			case errors.As(err, &decErr):
				logging.Warn("Discarding malformed frame", zap.String("error", decErr.Error()))
				continue
			case transport.IsTimeout(err):
				return status, NewTimeoutError("survey-in did not converge in time", "CFG-TMODE")
			default:
				return status, NewTransportError("read failed while watching survey-in", err)
			}
		}

		if frame.Class != ubx.ClassNAV || frame.ID != ubx.IDNavSvin {
			continue
		}
		svin, derr := ubx.DecodeNavSvin(frame)
		if derr != nil {
			logging.Warn("Discarding undecodable NAV-SVIN", zap.String("error", derr.Error()))
			continue
		}

		status = SurveyStatus{
			Elapsed:      time.Duration(svin.Duration) * time.Second,
			MeanAccCM:    svin.MeanAccCM(),
			Observations: svin.Observations,
			Valid:        svin.Valid,
			Active:       svin.Active,
		}
		if progress != nil {
			progress(status)
		}
		if status.Valid {
			return status, nil
		}
	}
}
