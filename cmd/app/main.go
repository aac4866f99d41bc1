// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"telegram-event-reminder/internal/application"
	"telegram-event-reminder/internal/config"
	"telegram-event-reminder/internal/domain/ports/repository"
	tele "telegram-event-reminder/internal/infra/adapters/telegram"
	pg "telegram-event-reminder/internal/infra/db/postgres"
	"telegram-event-reminder/internal/infra/i18n"
	"telegram-event-reminder/internal/infra/logging"
	"telegram-event-reminder/internal/infra/memory"
	"telegram-event-reminder/internal/infra/metrics"
	"telegram-event-reminder/internal/infra/queue"
	red "telegram-event-reminder/internal/infra/redis"
	"telegram-event-reminder/internal/infra/web"
	"telegram-event-reminder/internal/infra/worker"
	"telegram-event-reminder/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

const companyCacheTTL = 10 * time.Minute

func main() {
	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, unredacted output)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("app stopped")
	}
	logger.Info().Msg("shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) error {
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] enabled")
	}

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	go pg.ReportPoolStats(ctx, pool, 15*time.Second)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer redisClient.Close()

	// ---- Repositories ----
	tm := pg.NewTxManager(pool)
	userRepo := pg.NewUserRepo(pool)
	roleRepo := pg.NewRoleRepo(pool)
	companyRepo := pg.NewCompanyRepoCacheDecorator(pg.NewCompanyRepo(pool), redisClient, companyCacheTTL)

	var stateRepo repository.StateRepository
	switch cfg.Session.Store {
	case "memory":
		stateRepo = memory.NewStateRepo(cfg.Session.TTL)
	default:
		stateRepo = red.NewStateRepo(redisClient, cfg.Session.TTL)
	}

	// ---- Job queue ----
	redisOpt, err := queue.RedisOpt(&cfg.Redis)
	if err != nil {
		return fmt.Errorf("queue: %w", err)
	}
	queueClient := queue.NewClient(redisOpt, &cfg.Queue)
	defer queueClient.Close()

	// ---- Use cases ----
	userUC := usecase.NewUserUseCase(userRepo, cfg.Bot.AdminIDs, logger)
	regUC := usecase.NewRegistrationUseCase(userRepo, companyRepo, roleRepo, stateRepo, tm, cfg.Registration.DefaultRole, logger)
	statsUC := usecase.NewStatsUseCase(userRepo, logger)
	exportUC := usecase.NewExportUseCase(userRepo, companyRepo, roleRepo, logger)
	dispatchUC := usecase.NewDispatchUseCase(userUC, queueClient, cfg.Broadcast.Delay, cfg.Broadcast.ParseMode, logger)

	// ---- Admin HTTP ----
	var auth *web.AuthManager
	if cfg.Admin.JWTSecret != "" {
		auth = web.NewAuthManager(cfg.Admin.JWTSecret, cfg.Admin.SecureCookie, cfg.Admin.TokenTTL)
	} else {
		logger.Warn().Msg("admin.jwt_secret not set; admin API login disabled")
	}
	srv := web.NewServer(statsUC, exportUC, dispatchUC, cfg.Admin.APIKey, auth, cfg.Location(), logger)

	errCh := make(chan error, 2)
	go func() { errCh <- srv.Run(ctx, fmt.Sprintf(":%d", cfg.Admin.Port)) }()

	// ---- Telegram ----
	if cfg.Bot.Mode == "noop" {
		logger.Warn().Msg("bot.mode=noop: not polling telegram")
	} else {
		tr, err := i18n.Load(cfg.Bot.Language)
		if err != nil {
			return fmt.Errorf("i18n: %w", err)
		}
		facade := application.NewBotFacade(userUC, regUC, statsUC, exportUC, dispatchUC, tr, logger)

		sender, err := tele.NewSender(&cfg.Bot, logger)
		if err != nil {
			return fmt.Errorf("telegram: %w", err)
		}
		updates := worker.NewPool(cfg.Bot.Workers, logger)
		updates.Start(ctx)
		defer updates.Stop()

		bot, err := tele.NewRealTelegramBotAdapter(sender, facade, red.NewRateLimiter(redisClient), updates, cfg.Security, logger)
		if err != nil {
			return fmt.Errorf("telegram: %w", err)
		}
		go func() { errCh <- bot.StartPolling(ctx) }()
	}

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown requested")
		return nil
	case err := <-errCh:
		return err
	}
}
