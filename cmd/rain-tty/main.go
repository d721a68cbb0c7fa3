// Command rain-tty draws the configured rain panes in a terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/iburimskiy/rain-visualization/internal/config"
	"github.com/iburimskiy/rain-visualization/internal/rain"
	"github.com/iburimskiy/rain-visualization/internal/telemetry"
	"github.com/iburimskiy/rain-visualization/internal/term"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	preset := flag.String("preset", "", "Rain preset for every pane")
	seed := flag.Uint64("seed", 0, "RNG seed (0 = random)")
	logPath := flag.String("log", "", "Log file (the terminal is busy drawing)")
	fps := flag.Int("fps", 30, "Frames per second")
	flag.Parse()

	if err := run(*configPath, *preset, *seed, *logPath, *fps); err != nil {
		fmt.Fprintf(os.Stderr, "rain-tty: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, preset string, seed uint64, logPath string, fps int) error {
	var logOut io.Writer = io.Discard
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if preset != "" {
		if err := cfg.UsePreset(preset); err != nil {
			return err
		}
	}
	if fps <= 0 {
		fps = 30
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	// Restore the terminal even if the loop panics.
	defer func() {
		if r := recover(); r != nil {
			screen.Fini()
			fmt.Fprintf(os.Stderr, "rain-tty crashed: %v\n%s\n", r, debug.Stack())
			os.Exit(1)
		}
	}()
	defer screen.Fini()
	screen.HideCursor()

	opts := []rain.Option{
		rain.WithLogger(logger),
		rain.WithFrameHook(telemetry.NewRecorder(logger, cfg.Telemetry.LogEvery, false).Observe),
	}
	if seed != 0 {
		opts = append(opts, rain.WithRandSource(func(string) rain.Rand {
			seed++
			return rain.NewRand(seed)
		}))
	}
	sched := rain.NewScheduler(nil, opts...)

	app, err := term.NewApp(screen, cfg, sched, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = app.Run(ctx, time.Second/time.Duration(fps))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
