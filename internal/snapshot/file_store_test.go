package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/mselser95/sharpline/internal/testutil"
	"github.com/mselser95/sharpline/pkg/cache"
	"github.com/mselser95/sharpline/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()

	store, err := NewFileStore(&FileStoreConfig{
		Dir:    filepath.Join(t.TempDir(), "line_history"),
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)

	return store
}

func TestFileStore_SaveAndListRoundTrip(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	game := testutil.CreateTestGame("g1",
		testutil.CreateTestBook("draftkings", -3.5, 47.5),
		testutil.CreateTestBook("fanduel", -3.0, 48.0))
	other := testutil.CreateTestGame("g2", testutil.CreateTestBook("draftkings", 6.5, 41.0))

	path, err := store.Save(ctx, []types.Game{game, other}, testutil.BaseTime)
	require.NoError(t, err)
	assert.Equal(t, "snapshot_2025-10-19T09-00-00.000000000Z.json", filepath.Base(path))

	entries, err := store.ListSnapshots(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.True(t, entries[0].Timestamp.Equal(testutil.BaseTime))
	assert.Equal(t, "2025-10-19T09:00:00Z", entries[0].RawTimestamp)

	want, err := json.Marshal(game)
	require.NoError(t, err)
	got, err := json.Marshal(entries[0].Game)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))
}

func TestFileStore_DocumentShape(t *testing.T) {
	store := newTestFileStore(t)

	path, err := store.Save(context.Background(),
		[]types.Game{testutil.CreateTestGame("g1")}, testutil.BaseTime)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, doc, "timestamp")
	assert.Contains(t, doc, "games")
}

func TestFileStore_UnknownGameIsEmpty(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, []types.Game{testutil.CreateTestGame("g1")}, testutil.BaseTime)
	require.NoError(t, err)

	entries, err := store.ListSnapshots(ctx, "nope")
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestFileStore_EmptyDirectory(t *testing.T) {
	store := newTestFileStore(t)

	entries, err := store.ListSnapshots(context.Background(), "g1")
	require.NoError(t, err)
	assert.Empty(t, entries)

	latest, err := store.Latest(context.Background())
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestFileStore_SequenceIsOrdered(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	times := []time.Time{
		testutil.BaseTime.Add(2 * time.Hour),
		testutil.BaseTime,
		testutil.BaseTime.Add(time.Hour),
	}
	for i, ts := range times {
		game := testutil.CreateTestGame("g1", testutil.CreateSpreadBook("draftkings", -3.0-float64(i)))
		_, err := store.Save(ctx, []types.Game{game}, ts)
		require.NoError(t, err)
	}

	entries, err := store.ListSnapshots(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	for i := 1; i < len(entries); i++ {
		assert.True(t, entries[i-1].Timestamp.Before(entries[i].Timestamp),
			"entry %d not after entry %d", i, i-1)
	}
}

func TestFileStore_DuplicateTimestampRejected(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	first := testutil.CreateTestGame("g1", testutil.CreateSpreadBook("draftkings", -3.0))
	second := testutil.CreateTestGame("g1", testutil.CreateSpreadBook("draftkings", -7.0))

	_, err := store.Save(ctx, []types.Game{first}, testutil.BaseTime)
	require.NoError(t, err)

	_, err = store.Save(ctx, []types.Game{second}, testutil.BaseTime)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateTimestamp)

	var storageErr *types.StorageError
	assert.True(t, errors.As(err, &storageErr))

	entries, err := store.ListSnapshots(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	point := entries[0].Game.Bookmakers[0].Markets[0].Outcomes[0].Point
	require.NotNil(t, point)
	assert.Equal(t, -3.0, *point)

	files, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Len(t, files, 1, "temp file must not be left behind")
}

func TestFileStore_ConcurrentWritersNeverReplaceEachOther(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "line_history")
	stores := make([]*FileStore, 2)
	for i := range stores {
		store, err := NewFileStore(&FileStoreConfig{Dir: dir, Logger: zap.NewNop()})
		require.NoError(t, err)
		stores[i] = store
	}

	const writers = 50

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []string
		dupes   int
	)
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			gameID := fmt.Sprintf("g%d", i)
			_, err := stores[i%2].Save(context.Background(),
				[]types.Game{testutil.CreateTestGame(gameID)}, testutil.BaseTime)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners = append(winners, gameID)
			case errors.Is(err, ErrDuplicateTimestamp):
				dupes++
			default:
				t.Errorf("unexpected save error: %v", err)
			}
		}()
	}
	wg.Wait()

	require.Len(t, winners, 1)
	assert.Equal(t, writers-1, dupes)

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)

	snap, err := stores[0].Latest(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Games, 1)
	assert.Equal(t, winners[0], snap.Games[0].ID, "stored document must belong to the successful writer")
}

func TestFileStore_ListedGamesAreCopies(t *testing.T) {
	c, err := cache.NewRistrettoCache(&cache.RistrettoConfig{Name: "snapshots-copy-test", MaxItems: 100})
	require.NoError(t, err)
	defer c.Close()

	store, err := NewFileStore(&FileStoreConfig{Dir: t.TempDir(), Cache: c})
	require.NoError(t, err)
	ctx := context.Background()

	game := testutil.CreateTestGame("g1", testutil.CreateSpreadBook("draftkings", -3.0))
	_, err = store.Save(ctx, []types.Game{game}, testutil.BaseTime)
	require.NoError(t, err)

	entries, err := store.ListSnapshots(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	*entries[0].Game.Bookmakers[0].Markets[0].Outcomes[0].Point = 99
	entries[0].Game.Bookmakers = nil

	latest, err := store.Latest(ctx)
	require.NoError(t, err)
	latest.Games[0].Bookmakers[0].Key = "changed"

	again, err := store.ListSnapshots(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, again, 1)
	require.Len(t, again[0].Game.Bookmakers, 1)
	assert.Equal(t, "draftkings", again[0].Game.Bookmakers[0].Key)
	assert.Equal(t, -3.0, *again[0].Game.Bookmakers[0].Markets[0].Outcomes[0].Point)
}

func TestFileStore_ZeroTimestampUsesClock(t *testing.T) {
	fixed := time.Date(2025, 11, 2, 14, 30, 0, 123, time.UTC)
	store, err := NewFileStore(&FileStoreConfig{
		Dir: t.TempDir(),
		Now: func() time.Time { return fixed },
	})
	require.NoError(t, err)

	_, err = store.Save(context.Background(), []types.Game{testutil.CreateTestGame("g1")}, time.Time{})
	require.NoError(t, err)

	entries, err := store.ListSnapshots(context.Background(), "g1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Timestamp.Equal(fixed))
}

func TestFileStore_CorruptFileSkipped(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, []types.Game{testutil.CreateTestGame("g1")}, testutil.BaseTime)
	require.NoError(t, err)

	corrupt := filepath.Join(store.Dir(), "snapshot_2025-10-19T10-00-00.000000000Z.json")
	require.NoError(t, os.WriteFile(corrupt, []byte("{not json"), 0o644))

	entries, err := store.ListSnapshots(ctx, "g1")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStore_ReadsLegacyFiles(t *testing.T) {
	store := newTestFileStore(t)

	doc := `{"timestamp":"2025-10-19T09:00:00.123456","games":[{"id":"g1","home_team":"Buffalo Bills","away_team":"Miami Dolphins","commence_time":"2025-10-19T17:00:00Z","bookmakers":[]}]}`
	name := filepath.Join(store.Dir(), "snapshot_2025-10-19T09-00-00.123456.json")
	require.NoError(t, os.WriteFile(name, []byte(doc), 0o644))

	entries, err := store.ListSnapshots(context.Background(), "g1")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	want := time.Date(2025, 10, 19, 9, 0, 0, 123456000, time.UTC)
	assert.True(t, entries[0].Timestamp.Equal(want))
	assert.Equal(t, "2025-10-19T09:00:00.123456", entries[0].RawTimestamp)
}

func TestFileStore_FirstMatchingGameWins(t *testing.T) {
	store := newTestFileStore(t)

	a := testutil.CreateTestGame("g1", testutil.CreateSpreadBook("a", -1.0))
	b := testutil.CreateTestGame("g1", testutil.CreateSpreadBook("b", -9.0))

	_, err := store.Save(context.Background(), []types.Game{a, b}, testutil.BaseTime)
	require.NoError(t, err)

	entries, err := store.ListSnapshots(context.Background(), "g1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].Game.Bookmakers[0].Key)
}

func TestFileStore_Latest(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, []types.Game{testutil.CreateTestGame("old")}, testutil.BaseTime)
	require.NoError(t, err)
	_, err = store.Save(ctx, []types.Game{testutil.CreateTestGame("new")}, testutil.BaseTime.Add(time.Hour))
	require.NoError(t, err)

	latest, err := store.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	require.Len(t, latest.Games, 1)
	assert.Equal(t, "new", latest.Games[0].ID)
}

func TestFileStore_Cleanup(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	old := testutil.BaseTime.Add(-40 * 24 * time.Hour)
	_, err := store.Save(ctx, []types.Game{testutil.CreateTestGame("g1")}, old)
	require.NoError(t, err)
	_, err = store.Save(ctx, []types.Game{testutil.CreateTestGame("g1")}, testutil.BaseTime)
	require.NoError(t, err)

	deleted, err := store.Cleanup(ctx, testutil.BaseTime.Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	entries, err := store.ListSnapshots(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Timestamp.Equal(testutil.BaseTime))
}

func TestFileStore_WithCache(t *testing.T) {
	c, err := cache.NewRistrettoCache(&cache.RistrettoConfig{Name: "snapshots-test", MaxItems: 100})
	require.NoError(t, err)
	defer c.Close()

	store, err := NewFileStore(&FileStoreConfig{Dir: t.TempDir(), Cache: c})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Save(ctx, []types.Game{testutil.CreateTestGame("g1")}, testutil.BaseTime)
	require.NoError(t, err)

	first, err := store.ListSnapshots(ctx, "g1")
	require.NoError(t, err)
	second, err := store.ListSnapshots(ctx, "g1")
	require.NoError(t, err)

	assert.Equal(t, first, second)

	deleted, err := store.Cleanup(ctx, testutil.BaseTime.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	after, err := store.ListSnapshots(ctx, "g1")
	require.NoError(t, err)
	assert.Empty(t, after)
}

func TestNewFileStore_UnwritableDestination(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := NewFileStore(&FileStoreConfig{Dir: filepath.Join(blocker, "line_history")})
	require.Error(t, err)

	var storageErr *types.StorageError
	assert.True(t, errors.As(err, &storageErr))
}

func TestFileStore_SaveAfterDirectoryRemoved(t *testing.T) {
	store := newTestFileStore(t)
	require.NoError(t, os.RemoveAll(store.Dir()))

	_, err := store.Save(context.Background(), []types.Game{testutil.CreateTestGame("g1")}, testutil.BaseTime)
	require.Error(t, err)

	var storageErr *types.StorageError
	assert.True(t, errors.As(err, &storageErr))
}

func TestParseFileTimestamp(t *testing.T) {
	tests := []struct {
		name string
		file string
		want time.Time
		ok   bool
	}{
		{"current", "snapshot_2025-10-19T09-00-00.000000000Z.json", testutil.BaseTime, true},
		{"collision-suffix", "snapshot_2025-10-19T09-00-00.000000000Z_3.json", testutil.BaseTime, true},
		{"legacy", "snapshot_2025-10-19T09-00-00.5.json", testutil.BaseTime.Add(500 * time.Millisecond), true},
		{"garbage", "snapshot_latest.json", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseFileTimestamp(tt.file)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, got.Equal(tt.want), "got %v", got)
			}
		})
	}
}
