package mba

import (
	"time"

	"bqmba/internal/render"
	"bqmba/internal/twi"
)

const testAddr = 0x0B

type fakeClock struct {
	t     time.Time
	slept []time.Duration
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) sleep(d time.Duration) {
	c.slept = append(c.slept, d)
	c.t = c.t.Add(d)
}

func (c *fakeClock) count(d time.Duration) int {
	n := 0
	for _, s := range c.slept {
		if s == d {
			n++
		}
	}
	return n
}

func newTestEngine(conn twi.Conn, opts ...Option) (*Engine, *fakeClock) {
	clk := &fakeClock{t: time.Unix(1700000000, 0)}
	e := NewEngine(conn, opts...)
	e.sleep = clk.sleep
	e.now = clk.now
	return e, clk
}

var testStatus = &Schema{
	Name:  "TestStatus",
	Width: 16,
	Bits: func() []Bit {
		bits := make([]Bit, 16)
		for i := range bits {
			bits[i] = Bit{Index: uint8(i), Label: "RSVD", Description: "Reserved"}
		}
		bits[0] = Bit{Index: 0, Label: "LOW", Description: "Lowest bit", Active: "Set", Inactive: "Clear"}
		bits[15] = Bit{Index: 15, Label: "HIGH", Description: "Highest bit", Active: "Set", Inactive: "Clear"}
		return bits
	}(),
}

var testCatalog = Catalog{
	{Code: 0x0001, Name: "DeviceType", Access: AccessRead, Format: render.FormatHex},
	{Code: 0x0030, Name: "SealDevice", Access: AccessWrite, Format: render.FormatHex},
	{Code: 0x0057, Name: "TestStatus", Access: AccessRead, Format: render.FormatBinary, Bits: testStatus},
	{Code: 0x4062, Name: "ClearPF2", Payload: []byte{0x01, 0x23, 0x45, 0x67}, Access: AccessWrite},
}
