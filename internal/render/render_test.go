package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuffer(t *testing.T) {
	data := []byte{0x48, 0x65, 0x0A, 0xFF}

	tests := []struct {
		name   string
		format Format
		want   string
	}{
		{
			name:   "hex only",
			format: FormatHex,
			want:   "Data (hex): 0x48 0x65 0x0A 0xFF \n",
		},
		{
			name:   "mixed renders hex only",
			format: FormatMixed,
			want:   "Data (hex): 0x48 0x65 0x0A 0xFF \n",
		},
		{
			name:   "decimal",
			format: FormatDecimal,
			want:   "Data (hex): 0x48 0x65 0x0A 0xFF \nData (dec): 72 101 10 255 \n",
		},
		{
			name:   "binary",
			format: FormatBinary,
			want:   "Data (hex): 0x48 0x65 0x0A 0xFF \nData (bin): 01001000 01100101 00001010 11111111 \n",
		},
		{
			name:   "text",
			format: FormatText,
			want:   "Data (hex): 0x48 0x65 0x0A 0xFF \nData (txt): He..\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Buffer(&buf, data, tt.format)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestBufferEmpty(t *testing.T) {
	var buf bytes.Buffer
	Buffer(&buf, nil, FormatText)
	assert.Equal(t, "Data (hex): \nData (txt): \n", buf.String())
}

func TestTextBoundaries(t *testing.T) {
	assert.Equal(t, ". ~.", Text([]byte{0x1F, 0x20, 0x7E, 0x7F}))
}

func TestFlag(t *testing.T) {
	var buf bytes.Buffer
	Flag(&buf, 5, "FUSE", true, "Active", "Fuse status")
	Flag(&buf, 6, "RSVD", false, "", "")
	assert.Equal(t, "Bit 5 (FUSE): 1 = Active - Fuse status\nBit 6 (RSVD): 0 = \n", buf.String())
}

func TestFormatString(t *testing.T) {
	assert.Equal(t, "bin", FormatBinary.String())
	assert.Equal(t, "format(9)", Format(9).String())
}
