package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"bqmba/internal/auth"
	"bqmba/internal/bq40z50"
	"bqmba/internal/config"
	"bqmba/internal/console"
	"bqmba/internal/gauge"
	"bqmba/internal/mba"
	"bqmba/internal/server"
	"bqmba/internal/twi"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "Path to config file")
	busName := flag.String("bus", "", "Override I2C bus name (e.g. /dev/i2c-1 or 1)")
	addrFlag := flag.String("addr", "", "Override gauge address (e.g. 0x0B)")
	runList := flag.String("run", "", "Comma-separated commands to run once, then exit")
	serve := flag.Bool("serve", false, "Serve the HTTP API")
	interactive := flag.Bool("console", false, "Open the interactive console")
	serialPort := flag.String("serial", "", "Serve the console on this serial port")
	allowWrite := flag.Bool("allow-write", false, "Allow write-only commands on local consoles")
	mintToken := flag.String("mint-token", "", "Print a control token for this subject and exit")
	flag.Parse()

	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	cfg := config.Load(*configPath)
	log.SetOutput(cfg.LogOutput())

	if *busName != "" {
		cfg.Bus.Name = *busName
	}
	if *addrFlag != "" {
		n, err := strconv.ParseUint(*addrFlag, 0, 7)
		if err != nil {
			log.Fatalf("[main] invalid -addr %q: %v", *addrFlag, err)
		}
		cfg.Bus.Address = uint16(n)
	}
	if *serialPort != "" {
		cfg.Console.SerialPort = *serialPort
	}

	var verifier *auth.Verifier
	if cfg.Server.JWTSecret != "" {
		v, err := auth.NewVerifier(cfg.Server.JWTSecret)
		if err != nil {
			log.Fatalf("[main] %v", err)
		}
		verifier = v
	}
	if *mintToken != "" {
		if verifier == nil {
			log.Fatal("[main] -mint-token needs server.jwt_secret")
		}
		tok, err := verifier.Sign(*mintToken, auth.ScopeControl)
		if err != nil {
			log.Fatalf("[main] %v", err)
		}
		fmt.Println(tok)
		return
	}

	log.Println("[main] bqmba starting")

	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}

	bus, err := i2creg.Open(cfg.Bus.Name)
	if err != nil {
		log.Fatalf("[main] failed to open I2C: %v", err)
	}
	defer bus.Close()

	shared := twi.Share(twi.NewPeriphConn(bus))
	runner, err := mba.NewRunner(shared, bq40z50.Commands(), os.Stdout,
		mba.WithLengthIncludesEcho(cfg.MBA.LengthIncludesEcho))
	if err != nil {
		log.Fatalf("[main] %v", err)
	}
	log.Printf("[main] bus %q open, gauge at 0x%02X", cfg.Bus.Name, cfg.Bus.Address)
	if !cfg.MBA.LengthIncludesEcho {
		log.Println("[main] mba.length_includes_echo is off; bq40z50 packs count the echo in the block length and need it on")
	}

	if *runList != "" {
		names := strings.Split(*runList, ",")
		if _, err := runner.Sequence(os.Stdout, cfg.Bus.Address, names...); err != nil {
			log.Printf("[main] %v", err)
			os.Exit(1)
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("[main] received %v, shutting down", sig)
		cancel()
	}()

	newSession := func() *console.Dispatcher {
		d := console.NewDispatcher(runner, cfg.Bus.Address, bq40z50.UnsealSequence())
		d.AllowWrite = *allowWrite
		return d
	}

	var wg sync.WaitGroup
	if *serve {
		srv := server.New(gauge.New(shared, cfg.Bus.Address), runner, cfg.Bus.Address, bq40z50.UnsealSequence(), verifier)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.Run(ctx, cfg.Server.Listen); err != nil {
				log.Printf("[main] server exited: %v", err)
				cancel()
			}
		}()
	}
	if cfg.Console.SerialPort != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := console.ServeSerial(ctx, cfg.Console.SerialPort, cfg.Console.BaudRate, newSession()); err != nil {
				log.Printf("[console] %v", err)
			}
		}()
	}

	switch {
	case *interactive:
		ic, err := console.NewInteractive(newSession())
		if err != nil {
			log.Fatalf("[main] %v", err)
		}
		log.SetOutput(ic.Stdout())
		ic.Run(ctx)
		cancel()
	case !*serve && cfg.Console.SerialPort == "":
		// Nothing else requested: run every readable command once.
		ok := true
		for _, cmd := range runner.Catalog() {
			if cmd.Access.Readable() {
				ok = runner.Run(cfg.Bus.Address, cmd.Name) && ok
			}
		}
		if !ok {
			os.Exit(1)
		}
		return
	}

	wg.Wait()
}
