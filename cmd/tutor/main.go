package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/reverse-tutor/internal/config"
	"github.com/noah-isme/reverse-tutor/internal/console"
	"github.com/noah-isme/reverse-tutor/internal/notify"
	"github.com/noah-isme/reverse-tutor/internal/observability"
	"github.com/noah-isme/reverse-tutor/internal/session"
	"github.com/noah-isme/reverse-tutor/pkg/tutorapi"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := newLogger(cfg, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, logger, os.Stdin, os.Stdout)
	stop()

	if err != nil {
		log.Fatalf("tutor stopped: %v", err)
	}
}

// run wires the client and blocks until the console exits. Every resource it opens is released before it
// returns, on success and on failure.
func run(ctx context.Context, cfg config.Config, logger zerolog.Logger, in io.Reader, out io.Writer) error {
	client, err := tutorapi.New(tutorapi.Config{
		BaseURL:   cfg.APIBaseURL,
		Timeout:   cfg.HTTPTimeout,
		Validator: validator.New(validator.WithRequiredStructEnabled()),
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create tutor client: %w", err)
	}

	broker := notify.NewBroker(logger, notify.NewWriterSink(out), notify.NewLogSink(logger))

	if cfg.RedisURL != "" {
		redisClient, err := notify.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisClient.Close()
		broker.AddSink(notify.NewRedisSink(redisClient, cfg.NotifyChannel, logger))
	}

	if cfg.NATSURL != "" {
		natsConn, err := notify.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			return fmt.Errorf("failed to connect to nats: %w", err)
		}
		defer natsConn.Close()
		broker.AddSink(notify.NewNATSSink(natsConn, cfg.NotifyChannel, logger))
	}

	if cfg.MetricsEnabled() {
		metricsApp := observability.NewMetricsApp(cfg.AppName)
		go func() {
			if err := metricsApp.Listen(cfg.MetricsAddress()); err != nil {
				logger.Error().Err(err).Msg("metrics listener stopped")
			}
		}()
		defer shutdown(metricsApp, logger)
	}

	controller := session.NewController(client, broker, logger)
	app := console.New(controller, in, out, logger)

	if err := app.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("console stopped: %w", err)
	}
	return nil
}

func newLogger(cfg config.Config, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.WarnLevel
	}

	if cfg.LogFormat == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Str("app", cfg.AppName).Logger()
}

func shutdown(metricsApp *fiber.App, logger zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := metricsApp.ShutdownWithContext(ctx); err != nil {
		logger.Warn().Err(err).Msg("graceful shutdown failed")
	}
}
