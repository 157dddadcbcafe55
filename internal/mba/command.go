// Package mba implements ManufacturerBlockAccess (0x44) sub-commands for
// Smart Battery gas gauges: catalog lookup, the write/read block transaction,
// bit-field decoding and a runner that ties them to diagnostic output.
package mba

import (
	"errors"
	"fmt"

	"bqmba/internal/render"
)

// MaxPayload is the largest write payload a catalog entry may carry.
const MaxPayload = 8

// Access says which phases of the exchange a command uses.
type Access uint8

const (
	AccessRead Access = iota + 1
	AccessWrite
	AccessReadWrite
)

func (a Access) String() string {
	switch a {
	case AccessRead:
		return "R"
	case AccessWrite:
		return "W"
	case AccessReadWrite:
		return "RW"
	}
	return fmt.Sprintf("access(%d)", uint8(a))
}

// Readable reports whether the read phase runs. Only write-only commands
// skip it.
func (a Access) Readable() bool { return a != AccessWrite }

// Command is one catalog entry.
type Command struct {
	Code        uint16
	Payload     []byte
	Name        string
	Access      Access
	Format      render.Format
	Bits        *Schema
	Description string
}

// Catalog is an ordered, read-only command table.
type Catalog []Command

// Lookup finds the command whose name matches exactly (case-sensitive).
// The result shares no memory with the catalog.
func (c Catalog) Lookup(name string) (Command, bool) {
	if name == "" {
		return Command{}, false
	}
	for i := range c {
		if c[i].Name == name {
			return c[i].clone(), true
		}
	}
	return Command{}, false
}

// Clone returns a deep copy, so tables can be handed out without letting
// callers change them.
func (c Catalog) Clone() Catalog {
	out := make(Catalog, len(c))
	for i := range c {
		out[i] = c[i].clone()
	}
	return out
}

func (c Command) clone() Command {
	c.Payload = append([]byte(nil), c.Payload...)
	if len(c.Payload) == 0 {
		c.Payload = nil
	}
	c.Bits = c.Bits.Clone()
	return c
}

// Names lists command names in catalog order.
func (c Catalog) Names() []string {
	names := make([]string, len(c))
	for i := range c {
		names[i] = c[i].Name
	}
	return names
}

// Validate checks the table invariants: unique names, bounded payloads and
// well-formed schemas.
func (c Catalog) Validate() error {
	seen := make(map[string]bool, len(c))
	var errs []error
	for _, cmd := range c {
		if cmd.Name == "" {
			errs = append(errs, fmt.Errorf("command 0x%04X has no name", cmd.Code))
		}
		if seen[cmd.Name] {
			errs = append(errs, fmt.Errorf("duplicate command name %q", cmd.Name))
		}
		seen[cmd.Name] = true
		if len(cmd.Payload) > MaxPayload {
			errs = append(errs, fmt.Errorf("%s: %w", cmd.Name, ErrPayloadTooLong))
		}
		if cmd.Access < AccessRead || cmd.Access > AccessReadWrite {
			errs = append(errs, fmt.Errorf("%s: invalid access %v", cmd.Name, cmd.Access))
		}
		if cmd.Bits != nil {
			if err := cmd.Bits.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", cmd.Name, err))
			}
		}
	}
	return errors.Join(errs...)
}
