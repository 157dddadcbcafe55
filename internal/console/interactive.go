package console

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// Interactive is the terminal console.
type Interactive struct {
	d  *Dispatcher
	rl *readline.Instance
}

func NewInteractive(d *Dispatcher) (*Interactive, error) {
	names := make([]readline.PrefixCompleterInterface, 0, len(d.runner.Catalog()))
	for _, n := range d.runner.Catalog().Names() {
		names = append(names, readline.PcItem(n))
	}
	completer := readline.NewPrefixCompleter(
		readline.PcItem("run", names...),
		readline.PcItem("seq", names...),
		readline.PcItem("list"),
		readline.PcItem("unseal"),
		readline.PcItem("addr"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "bqmba> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    completer,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Interactive{d: d, rl: rl}, nil
}

// Stdout coordinates output with the prompt. Route process logs here while
// the console is open.
func (c *Interactive) Stdout() io.Writer {
	return c.rl.Stdout()
}

// Run reads lines until quit, EOF, or ctx is done.
func (c *Interactive) Run(ctx context.Context) {
	defer c.rl.Close()

	out := c.rl.Stdout()
	c.d.printHelp(out)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(out, "Exiting...")
			return
		}
		if c.d.Handle(out, strings.TrimSpace(line)) {
			fmt.Fprintln(out, "Exiting...")
			return
		}
	}
}
