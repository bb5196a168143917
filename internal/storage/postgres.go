package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	_ "github.com/lib/pq"
	"github.com/mselser95/sharpline/internal/alerts"
	"github.com/mselser95/sharpline/pkg/types"
	"go.uber.org/zap"
)

const createAlertsTable = `
	CREATE TABLE IF NOT EXISTS betting_alerts (
		id UUID PRIMARY KEY,
		generated_at TIMESTAMPTZ NOT NULL,
		week INTEGER NOT NULL,
		alert_type TEXT NOT NULL,
		priority TEXT NOT NULL,
		game_id TEXT NOT NULL,
		game TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		reasoning TEXT NOT NULL,
		data JSONB NOT NULL
	)
`

const insertAlert = `
	INSERT INTO betting_alerts (
		id, generated_at, week, alert_type, priority, game_id,
		game, title, description, reasoning, data
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
	)
	ON CONFLICT (id) DO NOTHING
`

// PostgresStorage implements Storage using PostgreSQL.
type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

// PostgresConfig holds PostgreSQL configuration.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	Logger   *zap.Logger
}

// NewPostgresStorage connects and creates the alerts table if missing.
func NewPostgresStorage(ctx context.Context, cfg *PostgresConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Test connection
	err = db.PingContext(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	p := NewPostgresStorageFromDB(db, cfg.Logger)
	err = p.EnsureSchema(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	p.logger.Info("postgres-storage-connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return p, nil
}

// NewPostgresStorageFromDB wraps an open database handle.
func NewPostgresStorageFromDB(db *sql.DB, logger *zap.Logger) *PostgresStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresStorage{db: db, logger: logger}
}

// EnsureSchema creates the alerts table.
func (p *PostgresStorage) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, createAlertsTable)
	if err != nil {
		return &types.StorageError{Op: "migrate", Path: "betting_alerts", Err: err}
	}
	return nil
}

// StoreAlerts inserts every alert of the export in one transaction.
// Alerts already stored under the same id are left untouched.
func (p *PostgresStorage) StoreAlerts(ctx context.Context, exp *alerts.Export) error {
	if len(exp.Alerts) == 0 {
		return nil
	}

	generatedAt, err := time.Parse(time.RFC3339, exp.GeneratedAt)
	if err != nil {
		return &types.InputError{Record: "export", Field: "generated_at", Reason: err.Error()}
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return &types.StorageError{Op: "begin", Path: "betting_alerts", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	for i := range exp.Alerts {
		a := &exp.Alerts[i]

		data, err := json.Marshal(a.Data)
		if err != nil {
			return fmt.Errorf("marshal alert data %s: %w", a.ID, err)
		}

		_, err = tx.ExecContext(ctx, insertAlert,
			a.ID,
			generatedAt,
			exp.Week,
			a.Type,
			a.Priority,
			a.GameID,
			a.Game,
			a.Title,
			a.Description,
			a.Reasoning,
			data,
		)
		if err != nil {
			return &types.StorageError{Op: "insert", Path: "betting_alerts", Err: err}
		}
	}

	err = tx.Commit()
	if err != nil {
		return &types.StorageError{Op: "commit", Path: "betting_alerts", Err: err}
	}

	p.logger.Debug("alerts-stored",
		zap.Int("week", exp.Week),
		zap.Int("count", len(exp.Alerts)))

	return nil
}

// Close closes the database connection.
func (p *PostgresStorage) Close() error {
	p.logger.Info("closing-postgres-storage")
	return p.db.Close()
}
