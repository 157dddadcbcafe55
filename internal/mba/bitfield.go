package mba

import (
	"errors"
	"fmt"
	"io"

	"bqmba/internal/render"
)

// Bit describes one flag of a status word. Index 0 is the least significant
// bit of the logical value.
type Bit struct {
	Index       uint8
	Label       string
	Description string
	Active      string
	Inactive    string
}

// Schema is the flag layout of a 16- or 32-bit status word.
type Schema struct {
	Name  string
	Width int
	Bits  []Bit

	// Summary, when set, adds one line derived from the decoded flags.
	Summary func([]BitState) string
}

// Clone returns a copy of s with its own Bits. A nil schema stays nil.
func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}
	c := *s
	c.Bits = append([]Bit(nil), s.Bits...)
	return &c
}

// BitState is a Bit resolved against response bytes.
type BitState struct {
	Bit
	Set bool
}

// Value is the active or inactive text for the resolved state.
func (s BitState) Value() string {
	if s.Set {
		return s.Active
	}
	return s.Inactive
}

func (s *Schema) Validate() error {
	if s.Width <= 0 || s.Width > 32 || s.Width%8 != 0 {
		return fmt.Errorf("schema %s: width %d is not 8, 16, 24 or 32", s.Name, s.Width)
	}
	if len(s.Bits) != s.Width {
		return fmt.Errorf("schema %s: %d entries for width %d", s.Name, len(s.Bits), s.Width)
	}
	var errs []error
	seen := make(map[uint8]bool, len(s.Bits))
	for _, b := range s.Bits {
		if int(b.Index) >= s.Width {
			errs = append(errs, fmt.Errorf("schema %s: bit %d out of range", s.Name, b.Index))
		}
		if seen[b.Index] {
			errs = append(errs, fmt.Errorf("schema %s: bit %d listed twice", s.Name, b.Index))
		}
		seen[b.Index] = true
	}
	return errors.Join(errs...)
}

// ByteIndex returns which byte of a most-significant-byte-first response
// holds bit index of a width-bit word.
func ByteIndex(width int, index uint8) int {
	return width/8 - int(index)/8 - 1
}

// Decode resolves every bit of the schema against buf. Bits whose byte lies
// beyond buf read as unset.
func (s *Schema) Decode(buf []byte) []BitState {
	states := make([]BitState, len(s.Bits))
	for i, b := range s.Bits {
		states[i].Bit = b
		idx := ByteIndex(s.Width, b.Index)
		if idx >= 0 && idx < len(buf) {
			states[i].Set = buf[idx]>>(b.Index%8)&1 == 1
		}
	}
	return states
}

// RenderBits writes one line per decoded flag, then the schema summary.
func (s *Schema) RenderBits(w io.Writer, states []BitState) {
	for _, st := range states {
		render.Flag(w, int(st.Index), st.Label, st.Set, st.Value(), st.Description)
	}
	if s.Summary != nil {
		if line := s.Summary(states); line != "" {
			fmt.Fprintln(w, line)
		}
	}
}
