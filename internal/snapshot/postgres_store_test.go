package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/goccy/go-json"
	"github.com/mselser95/sharpline/internal/testutil"
	"github.com/mselser95/sharpline/pkg/types"
	"go.uber.org/zap"
)

func newMockPostgresStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	return NewPostgresStoreFromDB(db, zap.NewNop()), mock
}

func snapshotRow(t *testing.T, ts time.Time, games ...types.Game) []byte {
	t.Helper()

	data, err := json.Marshal(&types.Snapshot{Timestamp: formatDocumentTimestamp(ts), Games: games})
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	return data
}

func TestPostgresStore_EnsureSchema(t *testing.T) {
	store, mock := newMockPostgresStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS odds_snapshots").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.EnsureSchema(context.Background())
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresStore_Save(t *testing.T) {
	store, mock := newMockPostgresStore(t)

	mock.ExpectExec("INSERT INTO odds_snapshots").
		WithArgs(testutil.BaseTime, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ref, err := store.Save(context.Background(),
		[]types.Game{testutil.CreateTestGame("g1")}, testutil.BaseTime)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if ref != "odds_snapshots/2025-10-19T09:00:00Z" {
		t.Errorf("unexpected ref %q", ref)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresStore_SaveDuplicateTimestamp(t *testing.T) {
	store, mock := newMockPostgresStore(t)

	mock.ExpectExec("INSERT INTO odds_snapshots").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := store.Save(context.Background(),
		[]types.Game{testutil.CreateTestGame("g1")}, testutil.BaseTime)
	if err == nil {
		t.Fatal("expected error for duplicate timestamp")
	}

	var storageErr *types.StorageError
	if !errors.As(err, &storageErr) {
		t.Errorf("expected StorageError, got %T", err)
	}
	if !errors.Is(err, ErrDuplicateTimestamp) {
		t.Errorf("expected ErrDuplicateTimestamp, got %v", err)
	}
}

func TestPostgresStore_SaveDatabaseError(t *testing.T) {
	store, mock := newMockPostgresStore(t)

	mock.ExpectExec("INSERT INTO odds_snapshots").
		WillReturnError(sql.ErrConnDone)

	_, err := store.Save(context.Background(), nil, testutil.BaseTime)
	if !errors.Is(err, sql.ErrConnDone) {
		t.Errorf("expected wrapped ErrConnDone, got %v", err)
	}
}

func TestPostgresStore_ListSnapshots(t *testing.T) {
	store, mock := newMockPostgresStore(t)

	t1 := testutil.BaseTime
	t2 := testutil.BaseTime.Add(time.Hour)

	rows := sqlmock.NewRows([]string{"taken_at", "document"}).
		AddRow(t1, snapshotRow(t, t1, testutil.CreateTestGame("g1", testutil.CreateSpreadBook("a", -3.0)))).
		AddRow(t2, []byte("{broken")).
		AddRow(t2, snapshotRow(t, t2,
			testutil.CreateTestGame("g2"),
			testutil.CreateTestGame("g1", testutil.CreateSpreadBook("a", -4.5))))

	mock.ExpectQuery("SELECT taken_at, document FROM odds_snapshots WHERE document @>").
		WithArgs(`{"games":[{"id":"g1"}]}`).
		WillReturnRows(rows)

	entries, err := store.ListSnapshots(context.Background(), "g1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	if !entries[0].Timestamp.Equal(t1) || !entries[1].Timestamp.Equal(t2) {
		t.Errorf("unexpected order: %v, %v", entries[0].Timestamp, entries[1].Timestamp)
	}

	if entries[1].Game.ID != "g1" {
		t.Errorf("expected g1, got %s", entries[1].Game.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresStore_LatestEmpty(t *testing.T) {
	store, mock := newMockPostgresStore(t)

	mock.ExpectQuery("SELECT document FROM odds_snapshots ORDER BY taken_at DESC LIMIT 1").
		WillReturnRows(sqlmock.NewRows([]string{"document"}))

	snap, err := store.Latest(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if snap != nil {
		t.Errorf("expected nil snapshot, got %+v", snap)
	}
}

func TestPostgresStore_Cleanup(t *testing.T) {
	store, mock := newMockPostgresStore(t)

	cutoff := testutil.BaseTime.Add(-30 * 24 * time.Hour)
	mock.ExpectExec("DELETE FROM odds_snapshots WHERE taken_at <").
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 4))

	deleted, err := store.Cleanup(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if deleted != 4 {
		t.Errorf("expected 4 deleted, got %d", deleted)
	}
}

func TestPostgresStore_Close(t *testing.T) {
	store, mock := newMockPostgresStore(t)

	mock.ExpectClose()

	err := store.Close()
	if err != nil {
		t.Errorf("expected no error on close, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
