//go:build !tinygo

package twi

import (
	"periph.io/x/conn/v3/i2c"
	"tinygo.org/x/drivers"
)

var _ drivers.I2C = i2c.Bus(nil)

// NewPeriphConn returns a Conn on a periph bus. The device address is supplied per
// transaction, so one Conn serves every target on the bus.
func NewPeriphConn(bus i2c.Bus) *TxConn {
	return NewTxConn(bus)
}
