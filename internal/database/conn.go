package database

import (
	"context"
	"fmt"

	"github.com/deppfellow/client-directory/internal/config"
	loggerConfig "github.com/deppfellow/client-directory/internal/logger"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// Connect opens a single connection for one-shot runs (CLI commands).
//
// The caller owns the connection and must Close it. Tracing is configured
// the same way as the pool.
func Connect(ctx context.Context, cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*pgx.Conn, error) {
	connConfig, err := pgx.ParseConfig(DSN(cfg.Database))
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgx config: %w", err)
	}

	if tracer := newTracer(cfg, logger, loggerService); tracer != nil {
		connConfig.Tracer = tracer
	}

	conn, err := pgx.ConnectConfig(ctx, connConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Debug().
		Str("host", cfg.Database.Host).
		Str("database", cfg.Database.Name).
		Msg("opened database connection")

	return conn, nil
}
