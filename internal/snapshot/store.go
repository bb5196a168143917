// Package snapshot persists one odds document per polling cycle and rebuilds
// per-game snapshot sequences from them.
package snapshot

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mselser95/sharpline/pkg/types"
)

// ErrDuplicateTimestamp is wrapped in a StorageError when a snapshot already exists for a timestamp.
var ErrDuplicateTimestamp = errors.New("snapshot already exists for timestamp")

// Store is the append-only snapshot store.
type Store interface {
	// Save persists games as one snapshot taken at ts (zero means now) and
	// returns a reference to the stored document.
	Save(ctx context.Context, games []types.Game, ts time.Time) (string, error)

	// ListSnapshots returns the game's snapshot sequence in ascending timestamp
	// order. An unknown game yields an empty sequence and no error.
	ListSnapshots(ctx context.Context, gameID string) ([]types.SnapshotEntry, error)

	// Latest returns the most recent snapshot, or nil when the store is empty.
	Latest(ctx context.Context) (*types.Snapshot, error)

	// Cleanup removes snapshots taken before olderThan and returns how many were removed.
	Cleanup(ctx context.Context, olderThan time.Time) (int, error)

	Close() error
}

// documentTimestampLayouts are accepted for the timestamp field of a stored
// document. Timestamps without a zone are read as UTC.
//
//nolint:gochecknoglobals // read-only table
var documentTimestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

func formatDocumentTimestamp(ts time.Time) string {
	return ts.UTC().Format(time.RFC3339Nano)
}

func parseDocumentTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)

	var lastErr error
	for _, layout := range documentTimestampLayouts {
		ts, err := time.Parse(layout, raw)
		if err == nil {
			return ts.UTC(), nil
		}
		lastErr = err
	}

	return time.Time{}, lastErr
}

// entryFor returns the sequence entry for gameID in doc, using the first
// matching game when the document lists it more than once. The entry holds a
// copy of the game since doc may be shared through the cache.
func entryFor(doc *types.Snapshot, gameID string, ts time.Time) (types.SnapshotEntry, bool) {
	for i := range doc.Games {
		if doc.Games[i].ID == gameID {
			return types.SnapshotEntry{
				Timestamp:    ts,
				RawTimestamp: doc.Timestamp,
				Game:         doc.Games[i].Clone(),
			}, true
		}
	}
	return types.SnapshotEntry{}, false
}

// dedupe drops entries sharing a timestamp with an earlier entry.
// entries must already be sorted by timestamp.
func dedupe(entries []types.SnapshotEntry) []types.SnapshotEntry {
	if len(entries) < 2 {
		return entries
	}

	out := entries[:1]
	for _, e := range entries[1:] {
		if e.Timestamp.Equal(out[len(out)-1].Timestamp) {
			continue
		}
		out = append(out, e)
	}
	return out
}
