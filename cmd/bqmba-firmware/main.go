//go:build tinygo

// Command bqmba-firmware runs the gauge console on a microcontroller: the
// gauge hangs off I2C0 and the console talks over the USB serial port.
package main

import (
	"context"
	"machine"
	"time"

	"tinygo.org/x/drivers"

	"bqmba/internal/bq40z50"
	"bqmba/internal/console"
	"bqmba/internal/mba"
	"bqmba/internal/twi"
)

// SMBus tops out at 100 kHz.
const busFrequency = 100 * machine.KHz

// serialReader blocks until the UART has data. machine.Serial returns
// immediately when its buffer is empty.
type serialReader struct {
	s machine.Serialer
}

func (r serialReader) Read(p []byte) (int, error) {
	for r.s.Buffered() == 0 {
		time.Sleep(5 * time.Millisecond)
	}
	n := 0
	for n < len(p) && r.s.Buffered() > 0 {
		b, err := r.s.ReadByte()
		if err != nil {
			return n, err
		}
		p[n] = b
		n++
	}
	return n, nil
}

type port struct {
	serialReader
	machine.Serialer
}

func (p port) Read(b []byte) (int, error) { return p.serialReader.Read(b) }

func main() {
	time.Sleep(2 * time.Second) // let the host enumerate USB serial

	if err := machine.I2C0.Configure(machine.I2CConfig{Frequency: busFrequency}); err != nil {
		println("i2c configure:", err.Error())
		return
	}
	var bus drivers.I2C = machine.I2C0

	out := machine.Serial
	runner, err := mba.NewRunner(twi.Share(twi.NewTxConn(bus)), bq40z50.Commands(), out)
	if err != nil {
		println("catalog:", err.Error())
		return
	}

	for {
		d := console.NewDispatcher(runner, bq40z50.Addr, bq40z50.UnsealSequence())
		d.AllowWrite = true
		console.Serve(context.Background(), port{serialReader{out}, out}, d)
	}
}
