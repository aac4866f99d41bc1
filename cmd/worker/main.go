// File: cmd/worker/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"telegram-event-reminder/internal/config"
	"telegram-event-reminder/internal/domain/ports/adapter"
	tele "telegram-event-reminder/internal/infra/adapters/telegram"
	pg "telegram-event-reminder/internal/infra/db/postgres"
	"telegram-event-reminder/internal/infra/logging"
	"telegram-event-reminder/internal/infra/metrics"
	"telegram-event-reminder/internal/infra/queue"
	"telegram-event-reminder/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode")
	withScheduler := flag.Bool("scheduler", true, "also run the periodic reminder scheduler (enable on one instance only)")
	metricsAddr := flag.String("metrics-addr", ":9091", "address for /metrics; empty disables it")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *withScheduler, *metricsAddr, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker stopped")
	}
	logger.Info().Msg("shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, withScheduler bool, metricsAddr string, logger *zerolog.Logger) error {
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	pool, err := pg.NewPgxPool(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	go pg.ReportPoolStats(ctx, pool, 15*time.Second)

	userRepo := pg.NewUserRepo(pool)
	eventRepo := pg.NewEventRepo(pool)

	var sender adapter.MessageSender
	if cfg.Bot.Mode == "noop" {
		sender = tele.NewNoopBotAdapter(logger)
	} else {
		s, err := tele.NewSender(&cfg.Bot, logger)
		if err != nil {
			return fmt.Errorf("telegram: %w", err)
		}
		sender = s
	}

	var stickers []string
	if cfg.Reminders.SendStickers {
		stickers = cfg.Reminders.Stickers
	}
	reminderUC := usecase.NewReminderUseCase(eventRepo, userRepo, sender, stickers, logger)
	broadcastUC := usecase.NewBroadcastUseCase(userRepo, sender, logger)

	opt, err := queue.RedisOpt(&cfg.Redis)
	if err != nil {
		return fmt.Errorf("queue: %w", err)
	}
	handlers := queue.NewHandlers(broadcastUC, reminderUC, cfg.Location(), logger)
	srv := queue.NewServer(opt, &cfg.Queue, handlers, logger)

	errCh := make(chan error, 2)
	running := 1
	go func() { errCh <- srv.Run(ctx) }()

	if withScheduler {
		sched := queue.NewScheduler(opt, cfg.Location(), logger)
		if err := sched.RegisterReminders(cfg.Reminders.Schedules, &cfg.Queue); err != nil {
			return fmt.Errorf("scheduler: %w", err)
		}
		running++
		go func() { errCh <- sched.Run(ctx) }()
	}

	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		ms := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := ms.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("metrics server")
			}
		}()
		defer ms.Close()
	}

	logger.Info().Str("queue", cfg.Queue.Name).Int("concurrency", cfg.Queue.Concurrency).Bool("scheduler", withScheduler).Msg("worker started")
	select {
	case <-ctx.Done():
		// wait for the server and scheduler to finish Shutdown
		for i := 0; i < running; i++ {
			select {
			case <-errCh:
			case <-time.After(10 * time.Second):
				return nil
			}
		}
		return nil
	case err := <-errCh:
		return err
	}
}
