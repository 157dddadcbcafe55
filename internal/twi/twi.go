// Package twi is the two-wire bus collaborator used by the MBA engine.
//
// A Conn behaves like a small buffered controller: a write phase is either
// committed with a stop condition or held open for a repeated start, and a
// read request lands in a receive queue that the caller drains byte by byte.
package twi

import (
	"fmt"
	"sync"
)

// BufferSize is the controller's transmit and receive queue depth.
const BufferSize = 32

// Status is the result code a controller reports at the end of a transmission.
type Status uint8

const (
	StatusOK Status = iota
	StatusTooLong
	StatusAddrNACK
	StatusDataNACK
	StatusOther
	StatusTimeout
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusTooLong:
		return "data too long"
	case StatusAddrNACK:
		return "address nack"
	case StatusDataNACK:
		return "data nack"
	case StatusOther:
		return "other"
	case StatusTimeout:
		return "timeout"
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// StatusError carries a non-zero Status and, when known, the driver error
// it was derived from.
type StatusError struct {
	Status Status
	Err    error
}

func (e *StatusError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("twi: %s: %v", e.Status, e.Err)
	}
	return "twi: " + e.Status.String()
}

func (e *StatusError) Unwrap() error { return e.Err }

// Conn is a single two-wire controller.
type Conn interface {
	// Transmit writes w to addr. With stop false the bus is kept for a
	// repeated start and the following Request continues the same sequence.
	Transmit(addr uint16, w []byte, stop bool) error
	// Request reads up to n bytes from addr into the receive queue and
	// returns how many were requested from the device.
	Request(addr uint16, n int) (int, error)
	// Available reports how many received bytes are waiting.
	Available() int
	// ReadByte pops one byte from the receive queue.
	ReadByte() (byte, error)
}

// Shared is a Conn with a single owner at a time. Callers hold the lock for
// a whole write/read pair.
type Shared struct {
	sync.Mutex
	Conn
}

// Share wraps c so several front ends can take turns on one bus.
func Share(c Conn) *Shared {
	return &Shared{Conn: c}
}
