package twi

import (
	"errors"

	"tinygo.org/x/drivers"
)

// ErrEmpty is returned by ReadByte when the receive queue is drained.
var ErrEmpty = errors.New("twi: receive queue empty")

// TxConn adapts a drivers.I2C bus (TinyGo machine.I2C, a periph i2c.Bus)
// to Conn. A write held open with stop=false is replayed as the write half
// of the next Tx so the read follows a repeated start, the way SMBus block
// reads expect.
type TxConn struct {
	bus drivers.I2C

	pending     []byte
	pendingAddr uint16
	rx          []byte
}

func NewTxConn(bus drivers.I2C) *TxConn {
	return &TxConn{bus: bus}
}

func (c *TxConn) Transmit(addr uint16, w []byte, stop bool) error {
	if len(w) > BufferSize {
		return &StatusError{Status: StatusTooLong}
	}
	if !stop {
		c.pending = append(c.pending[:0], w...)
		c.pendingAddr = addr
		return nil
	}
	c.pending = c.pending[:0]
	return classify(c.bus.Tx(addr, w, nil))
}

func (c *TxConn) Request(addr uint16, n int) (int, error) {
	c.rx = c.rx[:0]
	if n <= 0 {
		return 0, nil
	}
	if n > BufferSize {
		n = BufferSize
	}

	var w []byte
	if len(c.pending) > 0 && c.pendingAddr == addr {
		w = c.pending
	}
	buf := make([]byte, n)
	err := c.bus.Tx(addr, w, buf)
	c.pending = c.pending[:0]
	if err != nil {
		return 0, classify(err)
	}
	c.rx = buf
	return n, nil
}

func (c *TxConn) Available() int { return len(c.rx) }

func (c *TxConn) ReadByte() (byte, error) {
	if len(c.rx) == 0 {
		return 0, ErrEmpty
	}
	b := c.rx[0]
	c.rx = c.rx[1:]
	return b, nil
}

// classify turns a driver error into a StatusError. Errors that already
// carry a status pass through.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var se *StatusError
	if errors.As(err, &se) {
		return err
	}
	return &StatusError{Status: errnoStatus(err), Err: err}
}
