package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dynamaic/assistant-core/pkg/config"
	"github.com/dynamaic/assistant-core/pkg/container"
	"github.com/dynamaic/assistant-core/pkg/history"
)

func historyCommand(ctx context.Context, argv []string, cfgPath string, streams ioStreams) error {
	set := flag.NewFlagSet("history", flag.ContinueOnError)
	set.SetOutput(streams.err)
	var (
		limitFlag  = set.Int("limit", 20, "Maximum number of records to list.")
		idFlag     = set.String("id", "", "Show the full call trace of one record.")
		configFlag = set.String("config", cfgPath, "Path to config file.")
	)
	if err := set.Parse(argv); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		return err
	}
	if cfg.HistoryPath == "" {
		return errors.New("history_path is not configured")
	}
	store, err := history.Open(cfg.HistoryPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if *idFlag != "" {
		return printRecord(ctx, store, *idFlag, streams)
	}

	summaries, err := store.List(ctx, *limitFlag)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(streams.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tCALLS\tREQUEST")
	for _, s := range summaries {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", s.ID, s.CreatedAt.Format(time.RFC3339), s.CallCount, truncate(s.Request, 60))
	}
	return w.Flush()
}

func printRecord(ctx context.Context, store *history.Store, id string, streams ioStreams) error {
	sum, events, err := store.Get(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(streams.out, "request: %s\n", sum.Request)
	if sum.Error != "" {
		fmt.Fprintf(streams.out, "error: %s\n", sum.Error)
	} else {
		fmt.Fprintf(streams.out, "answer: %s\n", sum.Answer)
	}
	for _, evt := range events {
		fmt.Fprintf(streams.out, "  [%s] %s(%v) -> %s\n",
			evt.Timestamp.Format(time.RFC3339), evt.Name, evt.Arguments, truncate(evt.Output, 80))
		if evt.CallbackKind != "" {
			fmt.Fprintf(streams.out, "    callback: %s\n", evt.CallbackKind)
		}
	}
	return nil
}

func containersCommand(ctx context.Context, argv []string, cfgPath string, streams ioStreams) error {
	set := flag.NewFlagSet("containers", flag.ContinueOnError)
	set.SetOutput(streams.err)
	configFlag := set.String("config", cfgPath, "Path to config file.")
	if err := set.Parse(argv); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		return err
	}
	if cfg.ContainersPath == "" {
		return errors.New("containers_path is not configured")
	}
	store, err := container.Open(cfg.ContainersPath)
	if err != nil {
		return err
	}
	defer store.Close()

	details, err := store.List(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(streams.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tKIND\tDESCRIPTION")
	for _, d := range details {
		fmt.Fprintf(w, "%s\t%s\t%s\n", d.Key, d.Kind, truncate(d.Description, 70))
	}
	return w.Flush()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
