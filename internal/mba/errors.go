package mba

import (
	"errors"
	"fmt"

	"bqmba/internal/twi"
)

var (
	ErrCommandNotFound  = errors.New("mba: command not found")
	ErrPayloadTooLong   = errors.New("mba: payload longer than 8 bytes")
	ErrInsufficientData = errors.New("mba: no data available to read")
	ErrBlockTimeout     = errors.New("mba: timeout waiting for full data block")
)

// TransportKind classifies a failed bus transmission.
type TransportKind uint8

const (
	KindUnknown TransportKind = iota
	KindPayloadTooLarge
	KindAddressRejected
	KindDataRejected
	KindGeneric
	KindTimeout
)

func (k TransportKind) String() string {
	switch k {
	case KindPayloadTooLarge:
		return "Data too long to fit in transmit buffer."
	case KindAddressRejected:
		return "Received NACK on transmit of address."
	case KindDataRejected:
		return "Received NACK on transmit of data."
	case KindGeneric:
		return "Other error occurred."
	case KindTimeout:
		return "Timeout occurred."
	}
	return "Unknown error code."
}

// TransportError is a bus failure during Op ("send" or "receive").
type TransportError struct {
	Op   string
	Kind TransportKind
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("mba: %s: %s", e.Op, e.Kind)
}

func (e *TransportError) Unwrap() error { return e.Err }

func transportError(op string, err error) error {
	kind := KindGeneric
	var se *twi.StatusError
	if errors.As(err, &se) {
		switch se.Status {
		case twi.StatusTooLong:
			kind = KindPayloadTooLarge
		case twi.StatusAddrNACK:
			kind = KindAddressRejected
		case twi.StatusDataNACK:
			kind = KindDataRejected
		case twi.StatusOther:
			kind = KindGeneric
		case twi.StatusTimeout:
			kind = KindTimeout
		default:
			kind = KindUnknown
		}
	}
	return &TransportError{Op: op, Kind: kind, Err: err}
}

// AdvisoryKind names a non-fatal condition met while receiving.
type AdvisoryKind uint8

const (
	// BufferUndersized: caller capacity exceeds the controller queue.
	BufferUndersized AdvisoryKind = iota + 1
	// ResponseTruncated: declared length exceeds caller capacity.
	ResponseTruncated
	// LengthMismatch: fewer payload bytes arrived than declared.
	LengthMismatch
	// EchoMismatch: the echoed sub-command differs from the one sent.
	EchoMismatch
)

// Advisory is reported as a warning line; processing continues.
type Advisory struct {
	Kind AdvisoryKind
	Text string
}

func (a Advisory) String() string { return "Warning: " + a.Text }
