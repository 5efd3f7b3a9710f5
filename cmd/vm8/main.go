// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/davecgh/go-spew/spew"

	"github.com/ezrec/vm8/cpu"
	"github.com/ezrec/vm8/emulator"
)

func main() {
	var compile string
	var config string
	var limit int
	var delay time.Duration
	var listing bool
	var save bool
	var dump bool
	var verbose bool
	var lang string

	flag.StringVar(&compile, "c", "-", ".asm file to assemble")
	flag.StringVar(&config, "f", "", ".toml configuration file")
	flag.IntVar(&limit, "n", cpu.STEP_LIMIT, "Step limit")
	flag.DurationVar(&delay, "d", 0, "Delay between steps")
	flag.BoolVar(&listing, "l", false, "Print the assembled listing")
	flag.BoolVar(&save, "s", false, "Assemble only, do not execute")
	flag.BoolVar(&dump, "x", false, "Dump the final machine state")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.StringVar(&lang, "L", "", "Message language (BCP 47 tag)")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	cfg := emulator.DefaultConfig()
	cfg.Interval = 0

	if len(config) != 0 {
		var err error
		cfg, err = emulator.LoadConfig(config)
		if err != nil {
			log.Fatalf("%v: %v", config, err)
		}
	}

	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "n":
			cfg.StepLimit = limit
		case "d":
			cfg.Interval = delay
		case "v":
			cfg.Verbose = verbose
		case "L":
			cfg.Locale = lang
		}
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalf("%v: %v", os.Args[0], err)
	}

	var input io.Reader = os.Stdin
	if compile != "-" {
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()
		input = inf
	}

	emu := emulator.NewEmulator(cfg)

	err := emu.Parse(input)
	if err != nil {
		log.Fatalf("%v: %v", compile, err)
	}

	if listing {
		prog := emu.Cpu.Program
		for pc, word := range prog.Words() {
			text := ""
			if dbg := prog.Debug(pc); dbg.Source != nil {
				text = fmt.Sprintf("%4d: %v", dbg.LineNo, word)
			}
			fmt.Printf("%03d: %08x  %v\n", pc, uint32(word), text)
		}
	}

	if save {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	emu.Reset()
	snap, err := emu.Run(ctx, nil)

	fmt.Print(emu.Cpu.String())
	if dump {
		spew.Fdump(os.Stdout, snap)
	}

	if err != nil {
		if errors.Is(err, cpu.ErrStepLimit) {
			log.Printf("%v: halted after %v steps", compile, snap.Steps)
		}
		log.Fatal(err)
	}
}
