package postgres

import (
	"context"
	"fmt"
	"time"

	"telegram-event-reminder/internal/config"
	"telegram-event-reminder/internal/infra/metrics"

	"github.com/jackc/pgx/v4/pgxpool"
)

// NewPgxPool connects and pings the database described by cfg.
func NewPgxPool(ctx context.Context, cfg *config.DatabaseConfig) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}

	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pool, err := pgxpool.ConnectConfig(cctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(cctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// ReportPoolStats publishes pool gauges every interval until ctx is done.
func ReportPoolStats(ctx context.Context, pool *pgxpool.Pool, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		st := pool.Stat()
		metrics.SetDBPoolConns(st.TotalConns(), st.IdleConns(), st.AcquiredConns())
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}
