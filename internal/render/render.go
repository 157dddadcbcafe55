// Package render formats MBA response bytes and decoded flags as the
// diagnostic text shown on the console.
package render

import (
	"fmt"
	"io"
	"strings"
)

// Format selects the line printed after the hex dump.
type Format uint8

const (
	FormatDecimal Format = iota
	FormatHex
	FormatBinary
	FormatText
	FormatMixed
)

var formatNames = map[Format]string{
	FormatDecimal: "dec",
	FormatHex:     "hex",
	FormatBinary:  "bin",
	FormatText:    "txt",
	FormatMixed:   "mixed",
}

func (f Format) String() string {
	if s, ok := formatNames[f]; ok {
		return s
	}
	return fmt.Sprintf("format(%d)", uint8(f))
}

// Buffer writes the hex dump of b, then one more line in format f when f has
// a secondary rendering. FormatHex and FormatMixed stop after the hex line.
func Buffer(w io.Writer, b []byte, f Format) {
	fmt.Fprintf(w, "Data (hex): %s\n", Hex(b))

	switch f {
	case FormatDecimal:
		fmt.Fprintf(w, "Data (dec): %s\n", Decimal(b))
	case FormatBinary:
		fmt.Fprintf(w, "Data (bin): %s\n", Binary(b))
	case FormatText:
		fmt.Fprintf(w, "Data (txt): %s\n", Text(b))
	}
}

// Hex renders each byte as "0xHH ".
func Hex(b []byte) string {
	var sb strings.Builder
	for _, v := range b {
		fmt.Fprintf(&sb, "0x%02X ", v)
	}
	return sb.String()
}

func Decimal(b []byte) string {
	var sb strings.Builder
	for _, v := range b {
		fmt.Fprintf(&sb, "%d ", v)
	}
	return sb.String()
}

// Binary renders 8 bits per byte, most significant bit first.
func Binary(b []byte) string {
	var sb strings.Builder
	for _, v := range b {
		fmt.Fprintf(&sb, "%08b ", v)
	}
	return sb.String()
}

// Text keeps printable ASCII and replaces everything else with '.'.
func Text(b []byte) string {
	out := make([]byte, len(b))
	for i, v := range b {
		if v >= 0x20 && v <= 0x7E {
			out[i] = v
		} else {
			out[i] = '.'
		}
	}
	return string(out)
}

// Flag writes one decoded bit:
//
//	Bit 5 (FUSE): 1 = Active - Fuse status
func Flag(w io.Writer, index int, label string, set bool, value, description string) {
	digit := 0
	if set {
		digit = 1
	}
	fmt.Fprintf(w, "Bit %d (%s): %d = %s", index, label, digit, value)
	if description != "" {
		fmt.Fprintf(w, " - %s", description)
	}
	fmt.Fprintln(w)
}
