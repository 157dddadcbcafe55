package mba

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"bqmba/internal/render"
	"bqmba/internal/twi"
)

// Runner executes named catalog commands one at a time and writes the
// diagnostic text for each.
type Runner struct {
	bus     *twi.Shared
	engine  *Engine
	catalog Catalog
	out     io.Writer
	sleep   func(time.Duration)
}

// NewRunner validates catalog and binds it to bus. Run writes to out.
func NewRunner(bus *twi.Shared, catalog Catalog, out io.Writer, opts ...Option) (*Runner, error) {
	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return &Runner{
		bus:     bus,
		engine:  NewEngine(bus, opts...),
		catalog: catalog.Clone(),
		out:     out,
		sleep:   time.Sleep,
	}, nil
}

// Catalog returns a copy of the runner's command table.
func (r *Runner) Catalog() Catalog { return r.catalog.Clone() }

// Result is what one command execution produced.
type Result struct {
	Command   Command
	Address   uint16
	Reception *Reception
	// Payload holds the reordered payload bytes.
	Payload []byte
	Bits    []BitState
}

// Run executes name against addr and reports success.
func (r *Runner) Run(addr uint16, name string) bool {
	_, err := r.Execute(r.out, addr, name)
	return err == nil
}

// Execute looks up name, sends it, reads the response unless the command
// is write-only, and decodes its flags. Every step writes its diagnostics
// to w; a failed step ends the command.
func (r *Runner) Execute(w io.Writer, addr uint16, name string) (*Result, error) {
	cmd, ok := r.catalog.Lookup(name)
	if !ok {
		fmt.Fprintf(w, "Command not found: %s\n\n", name)
		return nil, fmt.Errorf("%w: %q", ErrCommandNotFound, name)
	}
	fmt.Fprintf(w, "Starting command %s\n", Describe(cmd))

	r.bus.Lock()
	defer r.bus.Unlock()

	res := &Result{Command: cmd, Address: addr}
	err := r.exchange(w, res)
	if err != nil {
		fmt.Fprintln(w)
		return res, err
	}

	fmt.Fprintln(w)
	r.sleep(CommandGap)
	return res, nil
}

func (r *Runner) exchange(w io.Writer, res *Result) error {
	cmd := res.Command
	if err := r.engine.Send(res.Address, cmd); err != nil {
		writeError(w, err)
		fmt.Fprintln(w, "Failed to send command.")
		return err
	}
	if !cmd.Access.Readable() {
		return nil
	}

	buf := make([]byte, BlockSize)
	rx, err := r.engine.Receive(res.Address, cmd, buf)
	res.Reception = rx
	for _, a := range rx.Advisories {
		fmt.Fprintln(w, a)
	}
	if err != nil {
		writeError(w, err)
		fmt.Fprintln(w, "Failed to read command response")
		return err
	}

	if !rx.Truncated() {
		fmt.Fprintf(w, "Response length: %d bytes\n", rx.Declared)
	}
	render.Buffer(w, rx.Block(r.engine.LengthIncludesEcho), cmd.Format)

	res.Payload = buf[:rx.N]
	if cmd.Bits != nil && len(cmd.Bits.Bits) > 0 {
		res.Bits = cmd.Bits.Decode(res.Payload)
		cmd.Bits.RenderBits(w, res.Bits)
	}
	return nil
}

// Sequence runs names in order and stops at the first failure.
func (r *Runner) Sequence(w io.Writer, addr uint16, names ...string) ([]*Result, error) {
	results := make([]*Result, 0, len(names))
	for _, name := range names {
		res, err := r.Execute(w, addr, name)
		if err != nil {
			return results, fmt.Errorf("%s: %w", name, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// Describe renders the command header:
//
//	DeviceType : CMD=0x44, SUBCMD=0x0001
func Describe(cmd Command) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s : CMD=0x%02X, SUBCMD=0x%04X", cmd.Name, BlockAccess, cmd.Code)
	if len(cmd.Payload) > 0 {
		sb.WriteString(" DATA=0x")
		for _, b := range cmd.Payload {
			fmt.Fprintf(&sb, "%02X", b)
		}
	}
	return sb.String()
}

func writeError(w io.Writer, err error) {
	var te *TransportError
	switch {
	case errors.As(err, &te):
		fmt.Fprintf(w, "Error: %s\n", te.Kind)
	case errors.Is(err, ErrInsufficientData):
		fmt.Fprintln(w, "No data available to read")
	case errors.Is(err, ErrBlockTimeout):
		fmt.Fprintf(w, "%s\n", strings.TrimPrefix(err.Error(), "mba: "))
	default:
		fmt.Fprintf(w, "Error: %v\n", err)
	}
}
