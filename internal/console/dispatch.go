// Package console drives the MBA runner from line-oriented front ends: an
// interactive terminal, a serial port, or any io.ReadWriter.
package console

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"bqmba/internal/mba"
)

// Dispatcher interprets one session's command lines. It is not safe for
// concurrent use; create one per session.
type Dispatcher struct {
	runner *mba.Runner
	unseal []string

	// Addr is the gauge address commands are sent to.
	Addr uint16
	// AllowWrite enables write-only commands.
	AllowWrite bool
}

// NewDispatcher returns a session bound to r. unseal names the commands
// run by the unseal verb, in order.
func NewDispatcher(r *mba.Runner, addr uint16, unseal []string) *Dispatcher {
	return &Dispatcher{runner: r, unseal: unseal, Addr: addr}
}

// Handle runs one line and reports whether the session should end.
func (d *Dispatcher) Handle(w io.Writer, line string) (quit bool) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	verb, args := parts[0], parts[1:]

	switch strings.ToLower(verb) {
	case "help", "?":
		d.printHelp(w)
	case "list", "ls":
		d.printList(w)
	case "run", "r":
		if len(args) != 1 {
			fmt.Fprintln(w, "usage: run <command>")
			return false
		}
		d.run(w, args)
	case "seq":
		if len(args) == 0 {
			fmt.Fprintln(w, "usage: seq <command> [command...]")
			return false
		}
		d.run(w, args)
	case "unseal":
		d.run(w, d.unseal)
	case "addr":
		d.cmdAddr(w, args)
	case "quit", "exit", "q":
		return true
	default:
		// A bare catalog name runs that command.
		if _, ok := d.runner.Catalog().Lookup(verb); ok && len(args) == 0 {
			d.run(w, parts)
			return false
		}
		fmt.Fprintf(w, "Unknown command: %s (type 'help' for commands)\n", verb)
	}
	return false
}

func (d *Dispatcher) run(w io.Writer, names []string) {
	for _, name := range names {
		cmd, ok := d.runner.Catalog().Lookup(name)
		if ok && !cmd.Access.Readable() && !d.AllowWrite {
			fmt.Fprintf(w, "%s is write-only and changes gauge state; writes are locked on this console\n", name)
			return
		}
	}
	if len(names) == 1 {
		d.runner.Execute(w, d.Addr, names[0])
		return
	}
	d.runner.Sequence(w, d.Addr, names...)
}

func (d *Dispatcher) cmdAddr(w io.Writer, args []string) {
	if len(args) == 0 {
		fmt.Fprintf(w, "Address: 0x%02X\n", d.Addr)
		return
	}
	n, err := strconv.ParseUint(args[0], 0, 7)
	if err != nil {
		fmt.Fprintf(w, "Invalid address %q: want a 7-bit value such as 0x0B\n", args[0])
		return
	}
	d.Addr = uint16(n)
	fmt.Fprintf(w, "Address: 0x%02X\n", d.Addr)
}

func (d *Dispatcher) printHelp(w io.Writer) {
	fmt.Fprint(w, `
bq40z50 ManufacturerBlockAccess commands:
  list               - List the command catalog
  run <name>         - Run one command (a bare name works too)
  seq <name> ...     - Run commands in order, stop at the first failure
  unseal             - Send both unseal key words
  addr [0xNN]        - Show or set the gauge address
  help               - Show this help
  quit               - Leave the console
`)
	if !d.AllowWrite {
		fmt.Fprintln(w, "Write-only commands are locked.")
	}
	fmt.Fprintln(w)
}

func (d *Dispatcher) printList(w io.Writer) {
	for _, cmd := range d.runner.Catalog() {
		fmt.Fprintf(w, "  %-26s 0x%04X %-2s %s\n", cmd.Name, cmd.Code, cmd.Access, cmd.Description)
	}
}
