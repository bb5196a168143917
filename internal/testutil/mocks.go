package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mselser95/sharpline/pkg/types"
)

// MockStore is an in-memory snapshot store for testing.
type MockStore struct {
	mu        sync.Mutex
	snapshots []types.Snapshot
	times     []time.Time
	SaveErr   error
	ListErr   error
	ListCalls int
}

// NewMockStore creates a new mock store.
func NewMockStore() *MockStore {
	return &MockStore{}
}

// Save records the snapshot.
func (m *MockStore) Save(ctx context.Context, games []types.Game, ts time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SaveErr != nil {
		return "", m.SaveErr
	}

	if ts.IsZero() {
		ts = time.Now()
	}
	ts = ts.UTC()

	m.snapshots = append(m.snapshots, types.Snapshot{Timestamp: ts.Format(time.RFC3339Nano), Games: games})
	m.times = append(m.times, ts)

	return "mock/" + ts.Format(time.RFC3339Nano), nil
}

// ListSnapshots returns the recorded entries for the game in timestamp order.
func (m *MockStore) ListSnapshots(ctx context.Context, gameID string) ([]types.SnapshotEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ListCalls++
	if m.ListErr != nil {
		return nil, m.ListErr
	}

	entries := make([]types.SnapshotEntry, 0)
	for i, snap := range m.snapshots {
		for _, g := range snap.Games {
			if g.ID == gameID {
				entries = append(entries, types.SnapshotEntry{
					Timestamp:    m.times[i],
					RawTimestamp: snap.Timestamp,
					Game:         g,
				})
				break
			}
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})

	return entries, nil
}

// Latest returns the most recently saved snapshot.
func (m *MockStore) Latest(ctx context.Context) (*types.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.snapshots) == 0 {
		return nil, nil
	}

	latest := 0
	for i := range m.times {
		if m.times[i].After(m.times[latest]) {
			latest = i
		}
	}

	snap := m.snapshots[latest]
	return &snap, nil
}

// Cleanup drops snapshots older than the cutoff.
func (m *MockStore) Cleanup(ctx context.Context, olderThan time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	keptSnaps := m.snapshots[:0]
	keptTimes := m.times[:0]
	deleted := 0
	for i := range m.snapshots {
		if m.times[i].Before(olderThan) {
			deleted++
			continue
		}
		keptSnaps = append(keptSnaps, m.snapshots[i])
		keptTimes = append(keptTimes, m.times[i])
	}
	m.snapshots = keptSnaps
	m.times = keptTimes

	return deleted, nil
}

// Close does nothing.
func (m *MockStore) Close() error {
	return nil
}

// Count returns the number of stored snapshots.
func (m *MockStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.snapshots)
}
