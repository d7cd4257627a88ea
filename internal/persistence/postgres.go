package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/iiitdCrypto/crypto-resource-manager/internal/config"
)

// Postgres wraps access to a pgx connection pool.
type Postgres struct {
	Pool *pgxpool.Pool
}

// EnsureCatalog checks that the target database exists, creating it when
// absent. It connects to the engine's maintenance database so it works on
// a completely fresh server. Safe to call on every startup.
func EnsureCatalog(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout(cfg))
	defer cancel()

	conn, err := pgx.Connect(ctx, cfg.MaintenanceDSN())
	if err != nil {
		return fmt.Errorf("reach database server: %w", err)
	}
	defer conn.Close(ctx)

	var exists bool
	err = conn.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)`,
		cfg.Database,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("introspect catalogs: %w", err)
	}
	if exists {
		return nil
	}

	logger.Info("creating catalog", zap.String("name", cfg.Database))
	// CREATE DATABASE has no IF NOT EXISTS; a duplicate error from a
	// concurrent creator still leaves us converged.
	if _, err := conn.Exec(ctx, fmt.Sprintf(`CREATE DATABASE %q`, cfg.Database)); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "42P04" { // duplicate_database
			return nil
		}
		return fmt.Errorf("create catalog %s: %w", cfg.Database, err)
	}
	return nil
}

// NewPostgres establishes a connection pool against the target catalog.
// An unreachable database is a fatal condition for the caller: the server
// must not accept traffic without its store.
func NewPostgres(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (*Postgres, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, err
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	poolCfg.ConnConfig.ConnectTimeout = connectTimeout(cfg)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout(cfg))
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("connected to postgres", zap.String("database", cfg.Database))
	return &Postgres{Pool: pool}, nil
}

// Close releases pool resources.
func (p *Postgres) Close() {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
}

// Ping verifies connectivity, used by the readiness probe.
func (p *Postgres) Ping(ctx context.Context) error {
	if p == nil || p.Pool == nil {
		return errors.New("postgres pool not configured")
	}
	return p.Pool.Ping(ctx)
}

// PoolHandle returns the underlying pgx pool.
func (p *Postgres) PoolHandle() *pgxpool.Pool {
	if p == nil {
		return nil
	}
	return p.Pool
}

func connectTimeout(cfg config.PostgresConfig) time.Duration {
	if cfg.ConnectTimeout > 0 {
		return cfg.ConnectTimeout
	}
	return 5 * time.Second
}
