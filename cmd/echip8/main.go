// Package main implements a headless runner that executes a CHIP-8 program
// for a fixed number of frames and prints the display as text.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/retroenv/retrogolib/log"
	"github.com/user-none/echip8/config"
	"github.com/user-none/echip8/emu"
	"github.com/user-none/echip8/romloader"
)

type options struct {
	rom          string
	frames       int
	keys         uint32
	debug        bool
	quiet        bool
	trace        bool
	extended     bool
	deferredCall bool
}

// usageError signals that the usage text should be shown.
type usageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *usageError) Error() string {
	return e.msg
}

func (e *usageError) showUsage() {
	fmt.Printf("usage: echip8 -rom <file> [options]\n\n")
	e.flags.PrintDefaults()
	fmt.Println()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts, err := parseFlags(os.Args[1:])
	logger := config.CreateLogger(opts.debug, opts.quiet)
	if err != nil {
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			if usageErr.msg != "" {
				logger.Error(usageErr.msg)
			}
			usageErr.showUsage()
		} else {
			logger.Error("Invalid arguments", log.Err(err))
		}
		os.Exit(1)
	}

	if err := run(ctx, logger, opts, os.Stdout); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("Operation cancelled")
			return
		}
		logger.Error("Execution failed", log.Err(err))
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	flags := flag.NewFlagSet("echip8", flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	var opts options
	var keys string
	flags.StringVar(&opts.rom, "rom", "", "path to the program file (.ch8, .c8, or an archive)")
	flags.IntVar(&opts.frames, "frames", 60, "number of 60 Hz frames to run")
	flags.StringVar(&keys, "keys", "", "hex keys held down for the whole run, e.g. 5,A")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flags.BoolVar(&opts.quiet, "quiet", false, "only log errors")
	flags.BoolVar(&opts.trace, "trace", false, "log every executed instruction")
	flags.BoolVar(&opts.extended, "extended", false, "enable 5xy0, 8xy7, 8xyE, 9xy0, Bnnn and Fx55")
	flags.BoolVar(&opts.deferredCall, "deferred-call", false, "call only jumps; the subroutine starts on the next step")

	if err := flags.Parse(args); err != nil {
		return opts, &usageError{flags: flags, msg: err.Error()}
	}
	if opts.rom == "" {
		return opts, &usageError{flags: flags}
	}
	if opts.frames < 0 {
		return opts, &usageError{flags: flags, msg: "frames must not be negative"}
	}

	mask, err := parseKeys(keys)
	if err != nil {
		return opts, err
	}
	opts.keys = mask
	return opts, nil
}

// parseKeys converts a comma separated list of hex digits into a key mask.
func parseKeys(s string) (uint32, error) {
	var mask uint32
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		k, err := strconv.ParseUint(field, 16, 8)
		if err != nil || k >= emu.KeyCount {
			return 0, fmt.Errorf("invalid key %q: must be a hex digit 0-F", field)
		}
		mask |= 1 << k
	}
	return mask, nil
}

func run(ctx context.Context, logger *log.Logger, opts options, out io.Writer) error {
	rom, name, err := romloader.LoadROM(opts.rom)
	if err != nil {
		return fmt.Errorf("loading program: %w", err)
	}
	logger.Debug("Program file read", log.String("name", name), log.Int("size", len(rom)))

	cfg := emu.DefaultConfig()
	cfg.Quirks.Extended = opts.extended
	cfg.Quirks.DeferredCall = opts.deferredCall

	e, err := emu.NewEmulatorWithConfig(rom, emu.RegionNTSC, cfg)
	if err != nil {
		return fmt.Errorf("creating emulator: %w", err)
	}
	e.SetLogger(logger)
	if opts.trace {
		e.SetOption(emu.OptionTrace, "true")
	}
	e.SetInput(0, opts.keys<<emu.KeyButtonBase)

	for frame := 0; frame < opts.frames; frame++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.RunFrame()
		if e.Err() != nil {
			break
		}
	}

	if err := printDisplay(out, e.Interpreter().Framebuffer()); err != nil {
		return err
	}
	return e.Err()
}

// printDisplay writes the framebuffer as text, '#' for lit pixels.
func printDisplay(w io.Writer, fb *emu.Framebuffer) error {
	bw := bufio.NewWriter(w)
	for _, row := range fb.Rows() {
		for _, p := range row {
			if p != 0 {
				bw.WriteByte('#')
			} else {
				bw.WriteByte('.')
			}
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
