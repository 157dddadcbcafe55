package mba

import "fmt"

// BlockAccess is the ManufacturerBlockAccess SMBus command byte.
const BlockAccess byte = 0x44

// EncodeWrite builds the write frame for cmd:
//
//	[0x44][N][sub LSB][sub MSB][payload...]   N = 2 + len(payload)
func EncodeWrite(cmd Command) ([]byte, error) {
	if len(cmd.Payload) > MaxPayload {
		return nil, fmt.Errorf("%s: %w", cmd.Name, ErrPayloadTooLong)
	}
	frame := make([]byte, 0, 4+len(cmd.Payload))
	frame = append(frame,
		BlockAccess,
		byte(2+len(cmd.Payload)),
		byte(cmd.Code),
		byte(cmd.Code>>8),
	)
	return append(frame, cmd.Payload...), nil
}

// Reverse flips the byte order of b in place. The caller must not hold
// other references into b while it runs.
func Reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
