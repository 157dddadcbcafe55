//go:build linux && !baremetal

package twi

import (
	"errors"

	"golang.org/x/sys/unix"
)

// errnoStatus maps the errno values Linux i2c-dev adapters return.
func errnoStatus(err error) Status {
	switch {
	case errors.Is(err, unix.ENXIO):
		return StatusAddrNACK
	case errors.Is(err, unix.EREMOTEIO):
		return StatusDataNACK
	case errors.Is(err, unix.ETIMEDOUT):
		return StatusTimeout
	case errors.Is(err, unix.EMSGSIZE):
		return StatusTooLong
	}
	return StatusOther
}
