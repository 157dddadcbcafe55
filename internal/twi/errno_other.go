//go:build !linux || baremetal

package twi

func errnoStatus(error) Status { return StatusOther }
