// Command assistantctl is the command-line surface of the assistant core:
// it runs one-shot requests through the orchestrator and inspects the local
// history and container stores.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
)

// ioStreams wires stdout/stderr for commands and becomes injectable in tests.
type ioStreams struct {
	out io.Writer
	err io.Writer
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	streams := ioStreams{out: os.Stdout, err: os.Stderr}
	if err := runCLI(ctx, os.Args[1:], streams); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(streams.err, err)
		}
		os.Exit(1)
	}
}

func runCLI(ctx context.Context, argv []string, streams ioStreams) error {
	global := flag.NewFlagSet("assistantctl", flag.ContinueOnError)
	global.SetOutput(streams.err)
	configPath := defaultConfigPath()
	global.StringVar(&configPath, "config", configPath, "Path to config file (defaults to ~/.assistant/config.yaml).")
	global.Usage = func() {
		fmt.Fprintln(streams.err, "assistantctl - assistant orchestration core")
		fmt.Fprintln(streams.err, "\nUsage:")
		fmt.Fprintln(streams.err, "  assistantctl [global flags] <command> [args]")
		fmt.Fprintln(streams.err, "\nCommands:")
		fmt.Fprintln(streams.err, "  run         Send one request through the orchestrator")
		fmt.Fprintln(streams.err, "  history     List stored conversation records")
		fmt.Fprintln(streams.err, "  containers  List local storage containers")
		fmt.Fprintln(streams.err, "\nGlobal Flags:")
		global.PrintDefaults()
		fmt.Fprintln(streams.err, "\nRun 'assistantctl <command> -h' for command-specific usage.")
	}
	if err := global.Parse(argv); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	args := global.Args()
	if len(args) == 0 {
		global.Usage()
		return fmt.Errorf("missing command")
	}
	switch args[0] {
	case "run":
		return runCommand(ctx, args[1:], configPath, streams)
	case "history":
		return historyCommand(ctx, args[1:], configPath, streams)
	case "containers":
		return containersCommand(ctx, args[1:], configPath, streams)
	default:
		global.Usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".assistant", "config.yaml")
}
