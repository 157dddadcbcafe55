package mba

import (
	"fmt"
	"time"

	"bqmba/internal/twi"
)

// Device timing and controller limits. These follow the gauge, not tuning.
const (
	// SettleDelay lets the gauge process a sub-command before any read.
	SettleDelay = 20 * time.Millisecond
	// BlockTimeout bounds the wait for a declared block to arrive.
	BlockTimeout = 10 * time.Second
	// PollInterval is the wait between availability checks.
	PollInterval = 10 * time.Millisecond
	// CommandGap paces consecutive commands.
	CommandGap = 100 * time.Millisecond
	// BlockSize is the response buffer the runner allocates.
	BlockSize = twi.BufferSize
)

const (
	echoLen  = 2
	minBlock = 1 + echoLen
)

// Engine performs the two halves of one MBA exchange on a Conn.
type Engine struct {
	conn twi.Conn

	// LengthIncludesEcho treats the block length byte as counting the
	// echoed sub-command word as well as the payload.
	LengthIncludesEcho bool

	sleep func(time.Duration)
	now   func() time.Time
}

type Option func(*Engine)

// WithLengthIncludesEcho selects the length interpretation used by gauges
// whose length byte covers the echoed word.
func WithLengthIncludesEcho(v bool) Option {
	return func(e *Engine) { e.LengthIncludesEcho = v }
}

func NewEngine(conn twi.Conn, opts ...Option) *Engine {
	e := &Engine{
		conn:  conn,
		sleep: time.Sleep,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Send writes the sub-command frame for cmd to addr and waits SettleDelay.
func (e *Engine) Send(addr uint16, cmd Command) error {
	frame, err := EncodeWrite(cmd)
	if err != nil {
		return err
	}
	err = e.conn.Transmit(addr, frame, true)
	e.sleep(SettleDelay)
	if err != nil {
		return transportError("send", err)
	}
	return nil
}

// Reception describes a completed read phase.
type Reception struct {
	// Declared is the block length byte sent by the gauge.
	Declared int
	// Echo is the sub-command word the gauge echoed.
	Echo uint16
	// Raw is the block as received after the length byte, before reordering.
	Raw []byte
	// N is the number of payload bytes copied into the caller buffer.
	N int

	Advisories []Advisory
}

func (rx *Reception) advise(kind AdvisoryKind, format string, args ...any) {
	rx.Advisories = append(rx.Advisories, Advisory{Kind: kind, Text: fmt.Sprintf(format, args...)})
}

// Truncated reports whether the declared block did not fit the buffer.
func (rx *Reception) Truncated() bool {
	for _, a := range rx.Advisories {
		if a.Kind == ResponseTruncated {
			return true
		}
	}
	return false
}

// Receive reads the response block of cmd into buf, whose length is the
// capacity. The payload is copied after the echoed word and its byte order
// reversed. Nothing past len(buf) is written.
func (e *Engine) Receive(addr uint16, cmd Command, buf []byte) (*Reception, error) {
	rx := &Reception{}
	capacity := len(buf)
	if capacity > twi.BufferSize {
		rx.advise(BufferUndersized, "buffer size %d exceeds bus buffer max (%d bytes).", capacity, twi.BufferSize)
	}

	if err := e.conn.Transmit(addr, []byte{BlockAccess}, false); err != nil {
		return rx, transportError("receive", err)
	}
	if _, err := e.conn.Request(addr, capacity); err != nil {
		return rx, transportError("receive", err)
	}
	if e.conn.Available() < minBlock {
		return rx, ErrInsufficientData
	}

	l, err := e.conn.ReadByte()
	if err != nil {
		return rx, transportError("receive", err)
	}
	rx.Declared = int(l)

	// The controller never queues more than BufferSize bytes, and the length
	// byte is already consumed.
	limit := min(capacity, twi.BufferSize) - 1
	start := e.now()
	for avail := e.conn.Available(); avail < rx.Declared && avail < limit; avail = e.conn.Available() {
		if e.now().Sub(start) > BlockTimeout {
			return rx, fmt.Errorf("%w, only %d bytes readable", ErrBlockTimeout, avail)
		}
		e.sleep(PollInterval)
	}

	if rx.Declared > capacity {
		rx.advise(ResponseTruncated, "block length (%d bytes) exceeds buffer limit (%d bytes). Truncation may occur.", rx.Declared, capacity)
	}

	avail := e.conn.Available()
	rx.Raw = make([]byte, 0, avail)
	for i := 0; i < avail; i++ {
		b, err := e.conn.ReadByte()
		if err != nil {
			return rx, transportError("receive", err)
		}
		rx.Raw = append(rx.Raw, b)
	}
	if len(rx.Raw) < echoLen {
		return rx, ErrInsufficientData
	}

	rx.Echo = uint16(rx.Raw[0]) | uint16(rx.Raw[1])<<8
	if rx.Echo != cmd.Code {
		rx.advise(EchoMismatch, "echoed sub-command 0x%04X differs from 0x%04X.", rx.Echo, cmd.Code)
	}

	want := rx.payloadLen(e.LengthIncludesEcho)
	body := rx.Raw[echoLen:]
	if len(body) > want {
		body = body[:want]
	}
	if len(body) < want && !rx.Truncated() {
		rx.advise(LengthMismatch, "declared %d payload bytes, received %d.", want, len(body))
	}

	rx.N = copy(buf, body)
	Reverse(buf[:rx.N])
	return rx, nil
}

func (rx *Reception) payloadLen(includesEcho bool) int {
	n := rx.Declared
	if includesEcho {
		n -= echoLen
	}
	if n < 0 {
		n = 0
	}
	return n
}

// Block returns the received bytes covered by the declared length,
// including the echoed word, in wire order.
func (rx *Reception) Block(includesEcho bool) []byte {
	n := rx.payloadLen(includesEcho) + echoLen
	if n > len(rx.Raw) {
		n = len(rx.Raw)
	}
	return rx.Raw[:n]
}
