// Package twitest provides a scripted gas gauge that speaks the
// ManufacturerBlockAccess and Smart Battery word protocols on a twi.Conn.
package twitest

import (
	"sync"

	"bqmba/internal/twi"
)

const blockAccess = 0x44

// Gauge is an in-memory twi.Conn. Block replies are built as
// [len][sub LSB][sub MSB][data...] from Blocks; Raw overrides the reply
// verbatim for malformed-response tests.
type Gauge struct {
	mu sync.Mutex

	Addr uint16

	// Blocks holds the data returned for each sub-command, device order.
	Blocks map[uint16][]byte
	// Words holds Smart Battery register values, sent LSB first.
	Words map[byte]uint16
	// LengthIncludesEcho makes the length byte count the echoed word.
	LengthIncludesEcho bool

	// Raw, when non-nil, is returned for every block read.
	Raw []byte
	// Drip limits how many bytes become visible per Available call.
	// Zero makes the whole reply visible at once.
	Drip int
	// Stall caps the visible bytes at this many when non-zero.
	Stall int

	// TransmitStatus and RequestStatus inject controller failures.
	TransmitStatus twi.Status
	RequestStatus  twi.Status

	// Frames records every write committed with a stop condition.
	Frames [][]byte
	// Requests counts read requests.
	Requests int

	lastSub uint16
	staged  []byte
	rx      []byte
	visible int
}

func NewGauge(addr uint16) *Gauge {
	return &Gauge{
		Addr:   addr,
		Blocks: make(map[uint16][]byte),
		Words:  make(map[byte]uint16),
	}
}

func (g *Gauge) Transmit(addr uint16, w []byte, stop bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.TransmitStatus != twi.StatusOK {
		return &twi.StatusError{Status: g.TransmitStatus}
	}
	if addr != g.Addr {
		return &twi.StatusError{Status: twi.StatusAddrNACK}
	}
	if !stop {
		g.staged = append([]byte(nil), w...)
		return nil
	}
	g.Frames = append(g.Frames, append([]byte(nil), w...))
	if len(w) >= 4 && w[0] == blockAccess {
		g.lastSub = uint16(w[2]) | uint16(w[3])<<8
	}
	return nil
}

func (g *Gauge) Request(addr uint16, n int) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Requests++
	g.rx, g.visible = nil, 0
	if g.RequestStatus != twi.StatusOK {
		return 0, &twi.StatusError{Status: g.RequestStatus}
	}
	if addr != g.Addr {
		return 0, &twi.StatusError{Status: twi.StatusAddrNACK}
	}

	var reply []byte
	switch {
	case len(g.staged) == 1 && g.staged[0] == blockAccess:
		reply = g.block()
	case len(g.staged) == 1:
		v := g.Words[g.staged[0]]
		reply = []byte{byte(v), byte(v >> 8)}
	}
	g.staged = nil

	if len(reply) > n {
		reply = reply[:n]
	}
	g.rx = reply
	return n, nil
}

func (g *Gauge) block() []byte {
	if g.Raw != nil {
		return append([]byte(nil), g.Raw...)
	}
	data := g.Blocks[g.lastSub]
	l := len(data)
	if g.LengthIncludesEcho {
		l += 2
	}
	out := []byte{byte(l), byte(g.lastSub), byte(g.lastSub >> 8)}
	return append(out, data...)
}

func (g *Gauge) Available() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	limit := len(g.rx)
	if g.Stall > 0 && g.Stall < limit {
		limit = g.Stall
	}
	switch {
	case g.Drip == 0:
		g.visible = limit
	case g.visible < limit:
		g.visible += g.Drip
		if g.visible > limit {
			g.visible = limit
		}
	}
	return g.visible
}

func (g *Gauge) ReadByte() (byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.rx) == 0 || g.visible == 0 {
		return 0, twi.ErrEmpty
	}
	b := g.rx[0]
	g.rx = g.rx[1:]
	g.visible--
	return b, nil
}

// LastFrame returns the most recent committed write.
func (g *Gauge) LastFrame() []byte {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.Frames) == 0 {
		return nil
	}
	return g.Frames[len(g.Frames)-1]
}
