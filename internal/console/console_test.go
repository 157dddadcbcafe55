package console

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bqmba/internal/bq40z50"
	"bqmba/internal/mba"
	"bqmba/internal/twi"
	"bqmba/internal/twi/twitest"
)

func newSession(t *testing.T) (*Dispatcher, *twitest.Gauge) {
	t.Helper()
	g := twitest.NewGauge(bq40z50.Addr)
	g.Blocks[0x0001] = []byte{0x0A, 0x0B}
	r, err := mba.NewRunner(twi.Share(g), bq40z50.Commands(), io.Discard)
	require.NoError(t, err)
	return NewDispatcher(r, bq40z50.Addr, bq40z50.UnsealSequence()), g
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		allowWrite bool
		wantOut    string
		wantFrames int
		wantQuit   bool
	}{
		{name: "empty", line: "   "},
		{name: "help", line: "help", wantOut: "unseal             - Send both unseal key words"},
		{name: "list", line: "list", wantOut: "  DeviceType                 0x0001 R  Identifies"},
		{name: "run", line: "run DeviceType", wantOut: "Data (hex): 0x01 0x00 0x0A 0x0B", wantFrames: 1},
		{name: "bare name", line: "DeviceType", wantOut: "Starting command DeviceType : CMD=0x44, SUBCMD=0x0001", wantFrames: 1},
		{name: "run usage", line: "run", wantOut: "usage: run <command>"},
		{name: "run unknown", line: "run Nope", wantOut: "Command not found: Nope"},
		{name: "unknown verb", line: "devicetype", wantOut: "Unknown command: devicetype"},
		{name: "write locked", line: "SealDevice", wantOut: "SealDevice is write-only"},
		{name: "unseal locked", line: "unseal", wantOut: "UnsealKey1 is write-only"},
		{name: "write allowed", line: "run SealDevice", allowWrite: true, wantOut: "SUBCMD=0x0030", wantFrames: 1},
		{name: "unseal allowed", line: "unseal", allowWrite: true, wantOut: "UnsealKey2", wantFrames: 2},
		{name: "seq", line: "seq DeviceType FirmwareVersion", wantOut: "SUBCMD=0x0002", wantFrames: 2},
		{name: "quit", line: "quit", wantQuit: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, g := newSession(t)
			d.AllowWrite = tt.allowWrite

			var out bytes.Buffer
			assert.Equal(t, tt.wantQuit, d.Handle(&out, tt.line))
			if tt.wantOut != "" {
				assert.Contains(t, out.String(), tt.wantOut)
			}
			assert.Len(t, g.Frames, tt.wantFrames)
		})
	}
}

func TestAddr(t *testing.T) {
	d, g := newSession(t)
	var out bytes.Buffer

	d.Handle(&out, "addr 0x80")
	assert.Contains(t, out.String(), "Invalid address")
	assert.Equal(t, uint16(0x0B), d.Addr)

	d.Handle(&out, "addr 0x16")
	assert.Equal(t, uint16(0x16), d.Addr)

	out.Reset()
	d.Handle(&out, "DeviceType")
	assert.Contains(t, out.String(), "Error: Received NACK on transmit of address.")
	assert.Empty(t, g.Frames)
}

type pipe struct {
	in  io.Reader
	out bytes.Buffer
}

func (p *pipe) Read(b []byte) (int, error)  { return p.in.Read(b) }
func (p *pipe) Write(b []byte) (int, error) { return p.out.Write(b) }
func (p *pipe) String() string              { return p.out.String() }

func TestServe(t *testing.T) {
	d, g := newSession(t)
	rw := &pipe{in: strings.NewReader("list\rDeviceType\r\nquit\nDeviceType\n")}

	require.NoError(t, Serve(context.Background(), rw, d))
	assert.Len(t, g.Frames, 1, "lines after quit are ignored")
	assert.Contains(t, rw.String(), "Response length: 2 bytes")
	assert.True(t, strings.HasPrefix(rw.String(), prompt))
}

func TestServeEOF(t *testing.T) {
	d, _ := newSession(t)
	rw := &pipe{in: strings.NewReader("addr")}

	require.NoError(t, Serve(context.Background(), rw, d))
	assert.Contains(t, rw.String(), "Address: 0x0B")
}

func TestServeCancelled(t *testing.T) {
	d, g := newSession(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rw := &pipe{in: strings.NewReader("DeviceType\n")}

	assert.ErrorIs(t, Serve(ctx, rw, d), context.Canceled)
	assert.Empty(t, g.Frames)
}
