package deviceconfig

import (
	"errors"
	"fmt"
	"strings"

	"github.com/muurk/ubxcfg/internal/ubx"
)

// Error types for snapshot/restore engine operations

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeTransport indicates a transport-level failure (port closed,
	// bridge dropped, I/O error)
	ErrTypeTransport ErrorType = iota
	// ErrTypeTimeout indicates no usable response arrived within a deadline
	ErrTypeTimeout
	// ErrTypeDecode indicates a malformed inbound frame or file record
	ErrTypeDecode
	// ErrTypeEncoding indicates a snapshot entry that cannot be packed into
	// any apply message
	ErrTypeEncoding
	// ErrTypeNak indicates the device rejected an apply message
	ErrTypeNak
	// ErrTypeIncomplete indicates one or more key groups yielded no entries
	ErrTypeIncomplete
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeTransport:
		return "Transport Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeDecode:
		return "Decode Error"
	case ErrTypeEncoding:
		return "Encoding Error"
	case ErrTypeNak:
		return "Rejected"
	case ErrTypeIncomplete:
		return "Incomplete Coverage"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// EngineError represents an error raised by the snapshot/restore engine,
// carrying enough context (group, message index, key) for a human to re-run
// with adjusted timeouts.
type EngineError struct {
	Type         ErrorType // Category of error
	Message      string    // Human-readable error message
	Group        string    // Key group name (if applicable)
	MessageIndex int       // Apply message index, 0-based (-1 if not applicable)
	Identity     string    // Wire identity of the message involved (if any)
	Key          ubx.KeyID // Offending key id (if applicable)
	Err          error     // Underlying error (if any)
}

// Error implements the error interface
func (e *EngineError) Error() string {
	var b strings.Builder
	b.WriteString(e.Type.String())
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Group != "" {
		fmt.Fprintf(&b, " (group %s)", e.Group)
	}
	if e.MessageIndex >= 0 {
		fmt.Fprintf(&b, " (message %d", e.MessageIndex+1)
		if e.Identity != "" {
			fmt.Fprintf(&b, ", %s", e.Identity)
		}
		b.WriteString(")")
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying error for error chain inspection
func (e *EngineError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a transport-level error
func NewTransportError(message string, err error) *EngineError {
	return &EngineError{
		Type:         ErrTypeTransport,
		Message:      message,
		MessageIndex: -1,
		Err:          err,
	}
}

// NewTimeoutError creates a timeout error scoped to a key group
func NewTimeoutError(message, group string) *EngineError {
	return &EngineError{
		Type:         ErrTypeTimeout,
		Message:      message,
		Group:        group,
		MessageIndex: -1,
	}
}

// NewAckTimeoutError creates a timeout error for an unacknowledged apply
// message
func NewAckTimeoutError(index int, identity string) *EngineError {
	return &EngineError{
		Type:         ErrTypeTimeout,
		Message:      "no acknowledgement within deadline",
		MessageIndex: index,
		Identity:     identity,
	}
}

// NewDecodeError creates a decode error
func NewDecodeError(message string, err error) *EngineError {
	return &EngineError{
		Type:         ErrTypeDecode,
		Message:      message,
		MessageIndex: -1,
		Err:          err,
	}
}

// NewEncodingError creates an encoding error for a key that cannot fit any
// apply message
func NewEncodingError(message string, key ubx.KeyID) *EngineError {
	return &EngineError{
		Type:         ErrTypeEncoding,
		Message:      message,
		Key:          key,
		MessageIndex: -1,
	}
}

// NewNakError creates a rejection error for an apply message the device
// refused
func NewNakError(index int, identity string) *EngineError {
	return &EngineError{
		Type:         ErrTypeNak,
		Message:      "device rejected apply message",
		MessageIndex: index,
		Identity:     identity,
	}
}

// NewIncompleteError creates an incomplete-coverage warning listing the
// groups that produced no entries
func NewIncompleteError(groups []string) *EngineError {
	return &EngineError{
		Type:         ErrTypeIncomplete,
		Message:      fmt.Sprintf("no entries received for: %s", strings.Join(groups, ", ")),
		MessageIndex: -1,
	}
}

// IsTransportError checks if an error is a transport error
func IsTransportError(err error) bool {
	var e *EngineError
	return errors.As(err, &e) && e.Type == ErrTypeTransport
}

// IsTimeoutError checks if an error is a timeout error
func IsTimeoutError(err error) bool {
	var e *EngineError
	return errors.As(err, &e) && e.Type == ErrTypeTimeout
}

// IsDecodeError checks if an error is a decode error
func IsDecodeError(err error) bool {
	var e *EngineError
	return errors.As(err, &e) && e.Type == ErrTypeDecode
}

// IsEncodingError checks if an error is an encoding error
func IsEncodingError(err error) bool {
	var e *EngineError
	return errors.As(err, &e) && e.Type == ErrTypeEncoding
}

// IsNakError checks if an error is a device rejection
func IsNakError(err error) bool {
	var e *EngineError
	return errors.As(err, &e) && e.Type == ErrTypeNak
}

// IsIncompleteError checks if an error is an incomplete-coverage warning
func IsIncompleteError(err error) bool {
	var e *EngineError
	return errors.As(err, &e) && e.Type == ErrTypeIncomplete
}

// GetTroubleshootingHint returns user-friendly advice for an engine error
func GetTroubleshootingHint(err error) string {
	var e *EngineError
	if !errors.As(err, &e) {
		return "An unexpected error occurred. Please try again."
	}

	switch e.Type {
	case ErrTypeTimeout:
		return strings.Join([]string{
			"The device did not respond in time.",
			"Troubleshooting:",
			"  • Check the port and baud rate match the device",
			"  • Increase the wait time (--waittime / --ack-timeout)",
			"  • Make sure UBX protocol output is enabled on this port",
		}, "\n")

	case ErrTypeIncomplete:
		return strings.Join([]string{
			"Some key groups returned no entries; the saved file covers only what was collected.",
			"Troubleshooting:",
			"  • Increase --waittime and re-run",
			"  • Some groups simply do not exist on this device generation",
		}, "\n")

	case ErrTypeNak:
		return strings.Join([]string{
			"The device rejected part of the configuration.",
			"Troubleshooting:",
			"  • Check the file was saved from a compatible device generation",
			"  • The device rolls the whole transaction back; nothing was applied",
		}, "\n")

	case ErrTypeDecode:
		return "A frame or file record was malformed. If this is a saved file, it may be truncated or not a ubxcfg transaction file."

	case ErrTypeEncoding:
		return "One configuration entry is larger than the message size budget. Increase --chunk and re-run."

	case ErrTypeTransport:
		return strings.Join([]string{
			"Communication with the device failed.",
			"Troubleshooting:",
			"  • Check the device is connected and the port is not in use",
			"  • For network bridges, check the bridge is reachable",
		}, "\n")

	default:
		return "An error occurred. Please check the error message for details."
	}
}
