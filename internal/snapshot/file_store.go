package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/mselser95/sharpline/pkg/cache"
	"github.com/mselser95/sharpline/pkg/types"
	"go.uber.org/zap"
)

const (
	filePrefix = "snapshot_"
	fileSuffix = ".json"

	// fileTimestampLayout is fixed width so lexical filename order is timestamp order.
	fileTimestampLayout = "2006-01-02T15-04-05.000000000Z"

	// legacyFileTimestampLayout matches files written with a naive local timestamp.
	legacyFileTimestampLayout = "2006-01-02T15-04-05.999999999"
)

// FileStore keeps one JSON file per snapshot in a directory.
type FileStore struct {
	dir    string
	cache  cache.Cache
	logger *zap.Logger
	now    func() time.Time

	mu sync.Mutex
}

// FileStoreConfig holds configuration for FileStore.
type FileStoreConfig struct {
	Dir    string
	Cache  cache.Cache // optional; decoded documents keyed by filename
	Logger *zap.Logger
	Now    func() time.Time // optional clock for zero timestamps
}

// NewFileStore creates the snapshot directory if needed.
func NewFileStore(cfg *FileStoreConfig) (*FileStore, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("snapshot directory cannot be empty")
	}

	err := os.MkdirAll(cfg.Dir, 0o755)
	if err != nil {
		return nil, &types.StorageError{Op: "mkdir", Path: cfg.Dir, Err: err}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &FileStore{
		dir:    cfg.Dir,
		cache:  cfg.Cache,
		logger: logger,
		now:    now,
	}, nil
}

// Dir returns the snapshot directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Save writes the snapshot atomically and returns the file path.
// A snapshot already stored for ts is never replaced; Save returns a
// StorageError wrapping ErrDuplicateTimestamp instead.
func (s *FileStore) Save(ctx context.Context, games []types.Game, ts time.Time) (string, error) {
	err := ctx.Err()
	if err != nil {
		return "", err
	}

	if ts.IsZero() {
		ts = s.now()
	}
	ts = ts.UTC()

	if games == nil {
		games = []types.Game{}
	}

	data, err := json.Marshal(&types.Snapshot{
		Timestamp: formatDocumentTimestamp(ts),
		Games:     games,
	})
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.writeFile(ts, data)
	if err != nil {
		SnapshotSaveErrorsTotal.WithLabelValues("file").Inc()
		return "", err
	}

	SnapshotsSavedTotal.WithLabelValues("file").Inc()
	s.logger.Info("snapshot-saved",
		zap.String("path", path),
		zap.Int("games", len(games)),
		zap.Time("taken-at", ts))

	return path, nil
}

func (s *FileStore) writeFile(ts time.Time, data []byte) (string, error) {
	tmp, err := os.CreateTemp(s.dir, ".tmp-"+uuid.NewString()+"-*")
	if err != nil {
		return "", &types.StorageError{Op: "create", Path: s.dir, Err: err}
	}
	tmpName := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	_, err = tmp.Write(data)
	if err != nil {
		cleanup()
		return "", &types.StorageError{Op: "write", Path: tmpName, Err: err}
	}

	err = tmp.Sync()
	if err != nil {
		cleanup()
		return "", &types.StorageError{Op: "sync", Path: tmpName, Err: err}
	}

	err = tmp.Close()
	if err != nil {
		_ = os.Remove(tmpName)
		return "", &types.StorageError{Op: "close", Path: tmpName, Err: err}
	}

	// Link never replaces an existing file, so a second writer for the same
	// timestamp fails here even when it runs in another process.
	path := filepath.Join(s.dir, filePrefix+ts.Format(fileTimestampLayout)+fileSuffix)
	err = os.Link(tmpName, path)
	_ = os.Remove(tmpName)
	if errors.Is(err, fs.ErrExist) {
		s.logger.Warn("snapshot-duplicate-timestamp", zap.String("path", path))
		return "", &types.StorageError{Op: "save", Path: path, Err: ErrDuplicateTimestamp}
	}
	if err != nil {
		return "", &types.StorageError{Op: "link", Path: path, Err: err}
	}

	return path, nil
}

// ListSnapshots rebuilds the game's sequence from every snapshot file.
func (s *FileStore) ListSnapshots(ctx context.Context, gameID string) ([]types.SnapshotEntry, error) {
	start := time.Now()
	defer func() {
		SnapshotLoadDuration.WithLabelValues("file").Observe(time.Since(start).Seconds())
	}()

	names, err := s.listFiles()
	if err != nil {
		return nil, err
	}

	entries := make([]types.SnapshotEntry, 0)
	for _, name := range names {
		err = ctx.Err()
		if err != nil {
			return nil, err
		}

		doc, ts, ok := s.load(name)
		if !ok {
			continue
		}

		entry, found := entryFor(doc, gameID, ts)
		if found {
			entries = append(entries, entry)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})

	return dedupe(entries), nil
}

// Latest returns the newest readable snapshot document.
func (s *FileStore) Latest(ctx context.Context) (*types.Snapshot, error) {
	names, err := s.listFiles()
	if err != nil {
		return nil, err
	}

	var (
		latest   *types.Snapshot
		latestTS time.Time
	)
	for _, name := range names {
		err = ctx.Err()
		if err != nil {
			return nil, err
		}

		doc, ts, ok := s.load(name)
		if !ok {
			continue
		}
		if latest == nil || ts.After(latestTS) {
			latest, latestTS = doc, ts
		}
	}

	if latest == nil {
		return nil, nil
	}
	return cloneSnapshot(latest), nil
}

func cloneSnapshot(doc *types.Snapshot) *types.Snapshot {
	out := &types.Snapshot{Timestamp: doc.Timestamp, Games: make([]types.Game, len(doc.Games))}
	for i := range doc.Games {
		out.Games[i] = doc.Games[i].Clone()
	}
	return out
}

// Cleanup deletes snapshot files taken before olderThan.
func (s *FileStore) Cleanup(ctx context.Context, olderThan time.Time) (int, error) {
	names, err := s.listFiles()
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for _, name := range names {
		err = ctx.Err()
		if err != nil {
			return deleted, err
		}

		path := filepath.Join(s.dir, name)
		ts, ok := parseFileTimestamp(name)
		if !ok {
			info, statErr := os.Stat(path)
			if statErr != nil {
				continue
			}
			ts = info.ModTime()
		}

		if !ts.Before(olderThan) {
			continue
		}

		err = os.Remove(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return deleted, &types.StorageError{Op: "remove", Path: path, Err: err}
		}

		if s.cache != nil {
			s.cache.Delete(name)
		}
		deleted++
	}

	SnapshotsDeletedTotal.WithLabelValues("file").Add(float64(deleted))
	s.logger.Info("snapshots-cleaned-up",
		zap.Int("deleted", deleted),
		zap.Time("older-than", olderThan))

	return deleted, nil
}

// Close is a no-op; the cache is owned by the caller.
func (s *FileStore) Close() error {
	return nil
}

// listFiles returns snapshot filenames in lexical order.
func (s *FileStore) listFiles() ([]string, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, &types.StorageError{Op: "list", Path: s.dir, Err: err}
	}

	names := make([]string, 0, len(dirEntries))
	for _, e := range dirEntries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		names = append(names, name)
	}

	sort.Strings(names)
	return names, nil
}

// load decodes one snapshot file. Unreadable files are logged and reported as not ok.
func (s *FileStore) load(name string) (*types.Snapshot, time.Time, bool) {
	doc, err := s.decode(name)
	if err != nil {
		SnapshotParseErrorsTotal.Inc()
		s.logger.Warn("snapshot-file-skipped",
			zap.String("file", name),
			zap.Error(err))
		return nil, time.Time{}, false
	}

	ts, err := parseDocumentTimestamp(doc.Timestamp)
	if err != nil {
		fileTS, ok := parseFileTimestamp(name)
		if !ok {
			SnapshotParseErrorsTotal.Inc()
			s.logger.Warn("snapshot-file-skipped",
				zap.String("file", name),
				zap.Error(&types.ParseError{Source: name, Err: err}))
			return nil, time.Time{}, false
		}
		ts = fileTS
	}

	return doc, ts, true
}

func (s *FileStore) decode(name string) (*types.Snapshot, error) {
	if s.cache != nil {
		if v, found := s.cache.Get(name); found {
			if doc, ok := v.(*types.Snapshot); ok {
				return doc, nil
			}
		}
	}

	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &types.StorageError{Op: "read", Path: path, Err: err}
	}

	var doc types.Snapshot
	err = json.Unmarshal(data, &doc)
	if err != nil {
		return nil, &types.ParseError{Source: name, Err: err}
	}

	if s.cache != nil {
		s.cache.Set(name, &doc, 0)
	}

	return &doc, nil
}

// parseFileTimestamp extracts the timestamp encoded in a snapshot filename,
// ignoring any _N suffix left by older versions that renamed on collision.
func parseFileTimestamp(name string) (time.Time, bool) {
	stem := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)

	if i := strings.LastIndex(stem, "_"); i >= 0 {
		if _, err := strconv.Atoi(stem[i+1:]); err == nil {
			stem = stem[:i]
		}
	}

	for _, layout := range []string{fileTimestampLayout, legacyFileTimestampLayout} {
		ts, err := time.Parse(layout, stem)
		if err == nil {
			return ts.UTC(), true
		}
	}

	return time.Time{}, false
}
