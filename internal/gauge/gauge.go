// Package gauge reads the standard Smart Battery word registers of the pack
// gauge, sharing the bus with MBA command traffic.
package gauge

import (
	"fmt"

	"bqmba/internal/twi"
)

// Smart Battery Data registers.
const (
	RegTemperature   = 0x08 // 0.1 K
	RegVoltage       = 0x09 // mV
	RegCurrent       = 0x0A // mA, signed
	RegRSOC          = 0x0D // %
	RegBatteryStatus = 0x16
)

// BatteryStatus flags.
const (
	StatusFullyCharged = 0x0020
	StatusDischarging  = 0x0040
)

type Status struct {
	Voltage      float64 // V
	Current      float64 // A, negative while discharging
	SOC          float64 // %
	Temperature  float64 // °C
	Discharging  bool
	FullyCharged bool
}

type Gauge struct {
	bus  *twi.Shared
	addr uint16
}

func New(bus *twi.Shared, addr uint16) *Gauge {
	return &Gauge{bus: bus, addr: addr}
}

// ReadWord performs an SMBus read-word: register byte, repeated start,
// two data bytes LSB first.
func (g *Gauge) ReadWord(reg byte) (uint16, error) {
	g.bus.Lock()
	defer g.bus.Unlock()
	return g.readWord(reg)
}

func (g *Gauge) readWord(reg byte) (uint16, error) {
	if err := g.bus.Transmit(g.addr, []byte{reg}, false); err != nil {
		return 0, fmt.Errorf("register 0x%02X: %w", reg, err)
	}
	if _, err := g.bus.Request(g.addr, 2); err != nil {
		return 0, fmt.Errorf("register 0x%02X: %w", reg, err)
	}
	if n := g.bus.Available(); n < 2 {
		return 0, fmt.Errorf("register 0x%02X: short read (%d bytes)", reg, n)
	}
	lo, _ := g.bus.ReadByte()
	hi, _ := g.bus.ReadByte()
	return uint16(lo) | uint16(hi)<<8, nil
}

func (g *Gauge) GetStatus() (*Status, error) {
	g.bus.Lock()
	defer g.bus.Unlock()

	regs := []byte{RegVoltage, RegCurrent, RegRSOC, RegTemperature, RegBatteryStatus}
	words := make(map[byte]uint16, len(regs))
	for _, reg := range regs {
		v, err := g.readWord(reg)
		if err != nil {
			return nil, err
		}
		words[reg] = v
	}

	flags := words[RegBatteryStatus]
	return &Status{
		Voltage:      float64(words[RegVoltage]) / 1000,
		Current:      float64(int16(words[RegCurrent])) / 1000,
		SOC:          float64(words[RegRSOC]),
		Temperature:  float64(words[RegTemperature])/10 - 273.15,
		Discharging:  flags&StatusDischarging != 0,
		FullyCharged: flags&StatusFullyCharged != 0,
	}, nil
}
