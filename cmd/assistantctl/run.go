package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"

	"github.com/dynamaic/assistant-core/pkg/client"
	"github.com/dynamaic/assistant-core/pkg/config"
	"github.com/dynamaic/assistant-core/pkg/container"
	"github.com/dynamaic/assistant-core/pkg/credential"
	"github.com/dynamaic/assistant-core/pkg/history"
	"github.com/dynamaic/assistant-core/pkg/orchestrator"
	"github.com/dynamaic/assistant-core/pkg/record"
	"github.com/dynamaic/assistant-core/pkg/telemetry"
	"github.com/dynamaic/assistant-core/pkg/tool"
	toolbuiltin "github.com/dynamaic/assistant-core/pkg/tool/builtin"
)

func runCommand(ctx context.Context, argv []string, cfgPath string, streams ioStreams) error {
	set := flag.NewFlagSet("run", flag.ContinueOnError)
	set.SetOutput(streams.err)
	var (
		modelFlag      = set.String("model", "", "Override the model declared in the config file.")
		strategistFlag = set.Bool("strategist", false, "Force the two-stage strategist/executor mode.")
		configFlag     = set.String("config", cfgPath, "Path to config file.")
		verboseFlag    = set.Bool("verbose", false, "Log each tool invocation from the trace.")
	)
	set.Usage = func() {
		fmt.Fprintln(streams.err, "Usage: assistantctl run [flags] \"request text\"")
		fmt.Fprintln(streams.err, "\nFlags:")
		set.PrintDefaults()
	}
	if err := set.Parse(argv); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	message := strings.TrimSpace(strings.Join(set.Args(), " "))
	if message == "" {
		return errors.New("run requires a request text")
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		return err
	}
	if *modelFlag != "" {
		cfg.Model = *modelFlag
	}
	if *strategistFlag {
		cfg.Strategist = true
	}

	logger := slog.New(slog.NewTextHandler(streams.err, nil))

	tel, err := telemetry.NewManager(ctx, telemetry.Config{
		ServiceName: "assistantctl",
		Endpoint:    cfg.TraceEndpoint,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			logger.Warn("telemetry shutdown", "error", err)
		}
	}()

	sender, err := client.New(credential.EnvSource{},
		client.WithBaseURL(cfg.BaseURL),
		client.WithService(cfg.Service),
	)
	if err != nil {
		return err
	}

	deps := toolbuiltin.Deps{Open: openInBrowser}
	if cfg.ContainersPath != "" {
		store, err := container.Open(cfg.ContainersPath)
		if err != nil {
			return err
		}
		defer store.Close()
		deps.Containers = store
	}

	// The ask-strategist tool calls back into the orchestrator, which in
	// turn needs the registry; bind the planner late to break the cycle.
	var orch *orchestrator.Orchestrator
	deps.Plan = func(ctx context.Context, message, originalRequest string) (string, error) {
		if orch == nil {
			return "", errors.New("orchestrator not ready")
		}
		return orch.Plan(ctx, message, originalRequest)
	}

	registry, err := tool.NewRegistry(toolbuiltin.Defaults(deps)...)
	if err != nil {
		return err
	}
	if cfg.WebSearch {
		registry.EnableWebSearch()
	}

	opts := orchestrator.Options{
		Model:                  cfg.Model,
		StrategistModel:        cfg.StrategistModel,
		Strategist:             cfg.Strategist,
		MaxTurns:               cfg.MaxTurns,
		Instructions:           watchInstructions(ctx, cfg.Instructions.Assistant, logger),
		StrategistInstructions: watchInstructions(ctx, cfg.Instructions.Strategist, logger),
		ExecutorInstructions:   watchInstructions(ctx, cfg.Instructions.Executor, logger),
		Telemetry:              tel,
	}
	if cfg.HistoryPath != "" {
		store, err := history.Open(cfg.HistoryPath)
		if err != nil {
			return err
		}
		defer store.Close()
		opts.Sink = store
	}

	orch, err = orchestrator.New(sender, registry, opts)
	if err != nil {
		return err
	}

	rec, err := orch.Respond(ctx, message, nil)
	if *verboseFlag && rec != nil {
		logTrace(logger, rec)
	}
	if err != nil {
		return err
	}
	answer, _ := rec.Answer()
	fmt.Fprintln(streams.out, answer)
	return nil
}

func watchInstructions(ctx context.Context, path string, logger *slog.Logger) *config.Instructions {
	ins := config.NewInstructions(path)
	if err := ins.Watch(ctx); err != nil {
		logger.Warn("instructions watch disabled", "path", path, "error", err)
	}
	return ins
}

func logTrace(logger *slog.Logger, rec *record.Record) {
	for _, evt := range rec.Events() {
		attrs := []any{"tool", evt.Call.Name, "call_id", evt.Call.CallID, "at", evt.Timestamp}
		if evt.Callback != nil {
			attrs = append(attrs, "callback", string(evt.Callback.Kind))
		}
		logger.Info("tool call", attrs...)
	}
}

func openInBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
