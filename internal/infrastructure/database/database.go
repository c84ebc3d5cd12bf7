package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"red-envelope/internal/config"
)

var Module = fx.Module("database",
	fx.Provide(NewDatabase),
)

type Database struct {
	DB     *sql.DB
	logger *zap.Logger
}

func NewDatabase(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (*Database, error) {
	// Build PostgreSQL connection string
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.DBName,
		cfg.Database.SSLMode,
	)

	db, err := sql.Open(cfg.Database.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	database, err := Connect(ctx, db, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("Database connected successfully",
		zap.String("driver", cfg.Database.Driver),
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("dbname", cfg.Database.DBName),
	)

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return database.Close()
		},
	})

	return database, nil
}

const connectTimeout = 10 * time.Second

// Connect pings db and runs the migrations. db is closed when either fails.
func Connect(ctx context.Context, db *sql.DB, logger *zap.Logger) (*Database, error) {
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	database := &Database{
		DB:     db,
		logger: logger,
	}

	if err := database.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return database, nil
}

// migrations run in order on every start; each statement is idempotent.
var migrations = []struct {
	name string
	sql  string
}{
	{
		name: "create envelopes table",
		sql: `
		CREATE TABLE IF NOT EXISTS envelopes (
			id BIGINT PRIMARY KEY,
			creator VARCHAR(42) NOT NULL,
			total_amount NUMERIC(78, 0) NOT NULL DEFAULT 0,
			remaining_amount NUMERIC(78, 0) NOT NULL DEFAULT 0,
			total_count BIGINT NOT NULL,
			remaining_count BIGINT NOT NULL,
			is_random BOOLEAN NOT NULL DEFAULT FALSE,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			message TEXT NOT NULL DEFAULT '',
			created_at BIGINT NOT NULL,
			expires_at BIGINT NOT NULL,
			synced_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		`,
	},
	{
		name: "index envelopes by creator",
		sql:  `CREATE INDEX IF NOT EXISTS idx_envelopes_creator ON envelopes(creator);`,
	},
	{
		name: "index open envelopes",
		sql:  `CREATE INDEX IF NOT EXISTS idx_envelopes_open ON envelopes(is_active, expires_at);`,
	},
}

func (d *Database) migrate(ctx context.Context) error {
	for _, m := range migrations {
		if _, err := d.DB.ExecContext(ctx, m.sql); err != nil {
			return fmt.Errorf("failed to %s: %w", m.name, err)
		}
	}

	d.logger.Info("Database migrations completed successfully", zap.Int("count", len(migrations)))
	return nil
}

func (d *Database) Ping(ctx context.Context) error {
	return d.DB.PingContext(ctx)
}

func (d *Database) Close() error {
	return d.DB.Close()
}
