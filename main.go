package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/iburimskiy/rain-visualization/internal/ambience"
	"github.com/iburimskiy/rain-visualization/internal/config"
	"github.com/iburimskiy/rain-visualization/internal/game"
	"github.com/iburimskiy/rain-visualization/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	preset := flag.String("preset", "", "Rain preset for every pane ("+presetList()+")")
	seed := flag.Uint64("seed", 0, "RNG seed (0 = random)")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	logJSON := flag.Bool("log-json", false, "Log as JSON instead of text")
	noAudio := flag.Bool("no-audio", false, "Disable the rain ambience")
	flag.Parse()

	logger := newLogger(*logLevel, *logJSON)
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *preset != "" {
		if err := cfg.UsePreset(*preset); err != nil {
			logger.Error("failed to select preset", "error", err)
			os.Exit(1)
		}
	}

	var player *ambience.Player
	if cfg.Audio.Enabled && !*noAudio {
		player, err = ambience.NewPlayer(cfg.Audio, logger)
		if err == nil {
			err = player.Start()
		}
		if err != nil {
			logger.Warn("ambience disabled", "error", err)
			player = nil
		}
	}

	g, err := game.NewGame(game.Options{
		Config:   cfg,
		Player:   player,
		Recorder: telemetry.NewRecorder(logger, cfg.Telemetry.LogEvery, false),
		Logger:   logger,
		Seed:     *seed,
	})
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer g.Close()

	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.Window.TPS)

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		logger.Error("game exited", "error", err)
		g.Close()
		os.Exit(1)
	}
}

func newLogger(level string, asJSON bool) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if asJSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func presetList() string {
	cfg, err := config.Load("")
	if err != nil {
		return ""
	}
	return strings.Join(cfg.PresetNames(), ", ")
}
