package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/receipts-inbox/internal/common"
)

type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// ConfigFrom maps the store section of the application config.
func ConfigFrom(c common.StoreConfig) Config {
	return Config{
		DSN:             c.DSN,
		MaxConns:        c.MaxConns,
		MinConns:        c.MinConns,
		MaxConnLifetime: c.MaxConnLifetime,
		MaxConnIdleTime: c.MaxConnIdleTime,
		DialTimeout:     c.DialTimeout,
	}
}

// Open creates a pgx pool tagged with the application name.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (*pgxpool.Pool, error) {
	logger = common.OrNop(logger)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "receipts-inbox"

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("db.connect.failed", zap.Error(err))
		return nil, eris.Wrap(err, "postgres: connect")
	}

	logger.Info("db.connected", zap.String("host", pc.ConnConfig.Host), zap.String("database", pc.ConnConfig.Database))
	return pool, nil
}

// Pinger is the part of a pool HealthCheck needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck pings the database to catch DSN issues early.
func HealthCheck(ctx context.Context, p Pinger, timeout time.Duration, logger *zap.Logger) error {
	logger = common.OrNop(logger)
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := p.Ping(ctx); err != nil {
		logger.Error("db.ping.failed", zap.Error(err))
		return eris.Wrap(err, "postgres: ping")
	}
	logger.Debug("db.ping.ok")
	return nil
}
