package console

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log"

	"go.bug.st/serial"
)

const prompt = "> "

// Serve reads command lines from rw until EOF, quit, or ctx is done, and
// writes all output back to rw. Lines may end in CR, LF or CRLF so plain
// serial terminals work.
func Serve(ctx context.Context, rw io.ReadWriter, d *Dispatcher) error {
	sc := bufio.NewScanner(rw)
	sc.Split(scanLines)

	fmt.Fprint(rw, prompt)
	for sc.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.Handle(rw, sc.Text()) {
			return nil
		}
		fmt.Fprint(rw, prompt)
	}
	return sc.Err()
}

func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		adv := i + 1
		if data[i] == '\r' && i+1 < len(data) && data[i+1] == '\n' {
			adv++
		}
		return adv, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// ServeSerial opens a serial port and serves the console on it. The port
// is closed when ctx is cancelled.
func ServeSerial(ctx context.Context, path string, baud int, d *Dispatcher) error {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(path, mode)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	log.Printf("[console] serving on %s at %d baud", path, baud)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		port.Close()
	}()

	err = Serve(ctx, port, d)
	if ctx.Err() != nil {
		return nil
	}
	return err
}
