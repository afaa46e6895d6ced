package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"spot-counter/config"
	telegram "spot-counter/internal/api"
	app "spot-counter/internal/application"
	"spot-counter/internal/container"
	"spot-counter/internal/domain/port"
	"spot-counter/internal/logger"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  = flag.String("config", "", "path to YAML config")
		inputDir    = flag.String("input", "", "input directory (overrides config)")
		outputDir   = flag.String("output", "", "output directory (overrides config)")
		backend     = flag.String("backend", "", "detection backend: native or opencv")
		mode        = flag.String("mode", "batch", "run mode: batch or bot")
		logLevel    = flag.String("log-level", "", "log level (overrides config)")
		writeConfig = flag.String("write-config", "", "write default config to this path and exit")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return nil
	}
	if *writeConfig != "" {
		if err := config.Save(*writeConfig, config.Default()); err != nil {
			return err
		}
		fmt.Println("config written to", *writeConfig)
		return nil
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *inputDir != "" {
		cfg.InputDir = *inputDir
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log := logger.New(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "batch":
		return runBatch(ctx, cfg, log)
	case "bot":
		return runBot(ctx, cfg, log)
	default:
		return fmt.Errorf("unknown mode %q", *mode)
	}
}

func runBatch(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	var notifier port.Notifier
	if cfg.NotifyEnabled() {
		n, err := telegram.NewNotifier(cfg.TelegramToken, cfg.TelegramChatID, log)
		if err != nil {
			// без уведомлений партия всё равно должна пройти
			log.Warn().Err(err).Msg("telegram notifier disabled")
		} else {
			notifier = n
		}
	}

	c, err := container.New(cfg, notifier, log)
	if err != nil {
		return err
	}

	summary, err := c.BatchService.Run(ctx, app.BatchRequest{
		InputDir:    cfg.InputDir,
		OutputDir:   cfg.OutputDir,
		Timestamped: cfg.TimestampedOutput,
		Extensions:  cfg.Extensions,
		Params:      cfg.Detection,
	})
	if summary != nil {
		fmt.Print(app.FormatSummary(summary))
	}
	if errors.Is(err, context.Canceled) {
		log.Warn().Msg("batch interrupted")
		return nil
	}
	return err
}

func runBot(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if cfg.TelegramToken == "" {
		return errors.New("TELEGRAM_TOKEN is required")
	}

	c, err := container.New(cfg, nil, log)
	if err != nil {
		return err
	}

	bot, err := telegram.NewBot(cfg.TelegramToken, c.SessionService, c.CountingService, log)
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}

	log.Info().Msg("bot is running")
	return bot.Run(ctx)
}
