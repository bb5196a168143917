package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/goccy/go-json"
	_ "github.com/lib/pq"
	"github.com/mselser95/sharpline/pkg/types"
	"go.uber.org/zap"
)

const createSnapshotsTable = `
	CREATE TABLE IF NOT EXISTS odds_snapshots (
		taken_at TIMESTAMPTZ PRIMARY KEY,
		document JSONB NOT NULL
	)
`

// PostgresStore keeps one row per snapshot document.
type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
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

// NewPostgresStore connects and creates the snapshots table if missing.
func NewPostgresStore(ctx context.Context, cfg *PostgresConfig) (*PostgresStore, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	err = db.PingContext(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := NewPostgresStoreFromDB(db, cfg.Logger)

	err = store.EnsureSchema(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	store.logger.Info("postgres-snapshot-store-connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return store, nil
}

// NewPostgresStoreFromDB wraps an open database handle.
func NewPostgresStoreFromDB(db *sql.DB, logger *zap.Logger) *PostgresStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresStore{db: db, logger: logger, now: time.Now}
}

// EnsureSchema creates the snapshots table.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, createSnapshotsTable)
	if err != nil {
		return &types.StorageError{Op: "migrate", Path: "odds_snapshots", Err: err}
	}
	return nil
}

// Save inserts the snapshot. A row already present for ts is never overwritten.
func (p *PostgresStore) Save(ctx context.Context, games []types.Game, ts time.Time) (string, error) {
	if ts.IsZero() {
		ts = p.now()
	}
	ts = ts.UTC()

	if games == nil {
		games = []types.Game{}
	}

	doc, err := json.Marshal(&types.Snapshot{
		Timestamp: formatDocumentTimestamp(ts),
		Games:     games,
	})
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	ref := "odds_snapshots/" + formatDocumentTimestamp(ts)

	result, err := p.db.ExecContext(ctx,
		`INSERT INTO odds_snapshots (taken_at, document) VALUES ($1, $2) ON CONFLICT (taken_at) DO NOTHING`,
		ts, string(doc))
	if err != nil {
		SnapshotSaveErrorsTotal.WithLabelValues("postgres").Inc()
		return "", &types.StorageError{Op: "insert", Path: ref, Err: err}
	}

	rows, err := result.RowsAffected()
	if err != nil {
		SnapshotSaveErrorsTotal.WithLabelValues("postgres").Inc()
		return "", &types.StorageError{Op: "insert", Path: ref, Err: err}
	}
	if rows == 0 {
		SnapshotSaveErrorsTotal.WithLabelValues("postgres").Inc()
		return "", &types.StorageError{Op: "insert", Path: ref, Err: ErrDuplicateTimestamp}
	}

	SnapshotsSavedTotal.WithLabelValues("postgres").Inc()
	p.logger.Info("snapshot-saved",
		zap.String("ref", ref),
		zap.Int("games", len(games)))

	return ref, nil
}

// ListSnapshots selects documents containing the game using JSONB containment.
func (p *PostgresStore) ListSnapshots(ctx context.Context, gameID string) ([]types.SnapshotEntry, error) {
	start := time.Now()
	defer func() {
		SnapshotLoadDuration.WithLabelValues("postgres").Observe(time.Since(start).Seconds())
	}()

	filter, err := json.Marshal(map[string]any{
		"games": []map[string]string{{"id": gameID}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal filter: %w", err)
	}

	rows, err := p.db.QueryContext(ctx,
		`SELECT taken_at, document FROM odds_snapshots WHERE document @> $1::jsonb ORDER BY taken_at ASC`,
		string(filter))
	if err != nil {
		return nil, &types.StorageError{Op: "query", Path: "odds_snapshots", Err: err}
	}
	defer rows.Close()

	entries := make([]types.SnapshotEntry, 0)
	for rows.Next() {
		var (
			takenAt time.Time
			raw     []byte
		)
		err = rows.Scan(&takenAt, &raw)
		if err != nil {
			return nil, &types.StorageError{Op: "scan", Path: "odds_snapshots", Err: err}
		}

		var doc types.Snapshot
		err = json.Unmarshal(raw, &doc)
		if err != nil {
			SnapshotParseErrorsTotal.Inc()
			p.logger.Warn("snapshot-row-skipped",
				zap.Time("taken-at", takenAt),
				zap.Error(&types.ParseError{Source: "odds_snapshots", Err: err}))
			continue
		}

		entry, found := entryFor(&doc, gameID, takenAt.UTC())
		if found {
			entries = append(entries, entry)
		}
	}

	err = rows.Err()
	if err != nil {
		return nil, &types.StorageError{Op: "query", Path: "odds_snapshots", Err: err}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})

	return dedupe(entries), nil
}

// Latest returns the most recent document.
func (p *PostgresStore) Latest(ctx context.Context) (*types.Snapshot, error) {
	var raw []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT document FROM odds_snapshots ORDER BY taken_at DESC LIMIT 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &types.StorageError{Op: "query", Path: "odds_snapshots", Err: err}
	}

	var doc types.Snapshot
	err = json.Unmarshal(raw, &doc)
	if err != nil {
		return nil, &types.ParseError{Source: "odds_snapshots", Err: err}
	}

	return &doc, nil
}

// Cleanup deletes rows older than olderThan.
func (p *PostgresStore) Cleanup(ctx context.Context, olderThan time.Time) (int, error) {
	result, err := p.db.ExecContext(ctx,
		`DELETE FROM odds_snapshots WHERE taken_at < $1`, olderThan.UTC())
	if err != nil {
		return 0, &types.StorageError{Op: "delete", Path: "odds_snapshots", Err: err}
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, &types.StorageError{Op: "delete", Path: "odds_snapshots", Err: err}
	}

	SnapshotsDeletedTotal.WithLabelValues("postgres").Add(float64(rows))
	p.logger.Info("snapshots-cleaned-up",
		zap.Int64("deleted", rows),
		zap.Time("older-than", olderThan))

	return int(rows), nil
}

// Close closes the database connection.
func (p *PostgresStore) Close() error {
	p.logger.Info("closing-postgres-snapshot-store")
	return p.db.Close()
}
