package main

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	slacklib "github.com/slack-go/slack"

	"github.com/missiondeck/missiondeck/internal/auth"
	"github.com/missiondeck/missiondeck/internal/config"
	"github.com/missiondeck/missiondeck/internal/coord"
	"github.com/missiondeck/missiondeck/internal/notify"
	"github.com/missiondeck/missiondeck/internal/server"
	"github.com/missiondeck/missiondeck/internal/sim"
	"github.com/missiondeck/missiondeck/internal/store/postgres"
	redisstore "github.com/missiondeck/missiondeck/internal/store/redis"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

func run() error {
	// Initialize structured logging from environment.
	logLevel := os.Getenv("MDECK_LOG_LEVEL")
	level, parseErr := zerolog.ParseLevel(logLevel)
	if parseErr != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	logFormat := os.Getenv("MDECK_LOG_FORMAT")
	if logFormat == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	ctx := context.Background()

	// Load configuration from environment.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.Database.MaxConns < 0 || cfg.Database.MaxConns > math.MaxInt32 {
		return fmt.Errorf("database max_conns %d out of int32 range", cfg.Database.MaxConns)
	}

	// Connect to PostgreSQL and ensure the schema exists.
	store, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns)) //nolint:gosec // bounds checked above
	if err != nil {
		return err
	}
	defer store.Close()

	if err = store.EnsureSchema(ctx); err != nil {
		return err
	}

	if cfg.SeedDemo {
		seeded, seedErr := store.SeedDemo(ctx)
		if seedErr != nil {
			return seedErr
		}
		if seeded {
			log.Info().Msg("seeded demo agents and tasks")
		}
	}

	// Connect to Redis.
	pubsub, err := redisstore.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return err
	}
	defer pubsub.Close()

	// Create auth service.
	authSvc := auth.NewService(store.Agents(), cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	// Assemble the event fan-out: status feed and chat rows plus Redis push
	// always, Slack only when a bot token is configured.
	notifier := notify.Fanout{
		notify.NewBroadcaster(store.StatusFeed(), store.Messages(), pubsub),
	}
	if cfg.Slack.BotToken != "" {
		slackClient := slacklib.New(cfg.Slack.BotToken)
		notifier = append(notifier, notify.NewSlackNotifier(slackClient, cfg.Slack.Channel))
		log.Info().Str("channel", cfg.Slack.Channel).Msg("Slack notifications enabled")
	}

	// Create the coordination service.
	coordinator := coord.NewService(store.Tasks(), store.Agents(), notifier)

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Start the demo agent simulation when enabled.
	if cfg.Sim.Enabled {
		policy := sim.NewRandomPolicy(rand.NewPCG(uint64(time.Now().UnixNano()), 0)) //nolint:gosec // demo randomness, not crypto
		driver := sim.NewDriver(store.Agents(), store.Tasks(), coordinator, notifier, policy, cfg.Sim.Interval, cfg.Sim.MinGap)
		go driver.Run(ctx)
		log.Info().Dur("interval", cfg.Sim.Interval).Msg("agent simulation enabled")
	}

	// Create HTTP server with all routes wired.
	srv := server.New(cfg, store, pubsub, authSvc, coordinator)

	// Start server in background goroutine.
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if startErr := srv.Start(ctx); startErr != nil {
			log.Error().Err(startErr).Msg("server error")
		}
	}()

	// Block until shutdown signal.
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		return shutdownErr
	}

	log.Info().Msg("stopped")
	return nil
}
