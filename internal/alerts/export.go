package alerts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/mselser95/sharpline/pkg/types"
)

// Export is the alerts file document.
type Export struct {
	GeneratedAt string  `json:"generated_at"`
	Week        int     `json:"week"`
	TotalAlerts int     `json:"total_alerts"`
	Alerts      []Alert `json:"alerts"`
}

// NewExport wraps alerts generated at now for an NFL week.
func NewExport(alerts []Alert, week int, now time.Time) *Export {
	if alerts == nil {
		alerts = []Alert{}
	}
	return &Export{
		GeneratedAt: now.UTC().Format(time.RFC3339),
		Week:        week,
		TotalAlerts: len(alerts),
		Alerts:      alerts,
	}
}

// WriteFile writes the export to dir/week_<N>_alerts.json and returns the path.
func WriteFile(dir string, exp *Export) (string, error) {
	data, err := json.MarshalIndent(exp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal alerts: %w", err)
	}

	err = os.MkdirAll(dir, 0o755)
	if err != nil {
		return "", &types.StorageError{Op: "mkdir", Path: dir, Err: err}
	}

	path := filepath.Join(dir, fmt.Sprintf("week_%d_alerts.json", exp.Week))
	err = os.WriteFile(path, data, 0o644)
	if err != nil {
		return "", &types.StorageError{Op: "write", Path: path, Err: err}
	}

	return path, nil
}

// ReadFile loads an export.
func ReadFile(path string) (*Export, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &types.StorageError{Op: "read", Path: path, Err: err}
	}

	var exp Export
	err = json.Unmarshal(data, &exp)
	if err != nil {
		return nil, &types.ParseError{Source: path, Err: err}
	}

	return &exp, nil
}

// ErrNoExports is returned by LatestFile when dir holds no alert exports.
var ErrNoExports = errors.New("no alert exports found")

// LatestFile returns the most recently modified alerts file in dir.
func LatestFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrNoExports
	}
	if err != nil {
		return "", &types.StorageError{Op: "list", Path: dir, Err: err}
	}

	var (
		latest     string
		latestTime time.Time
	)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), "_alerts.json") {
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}

		if latest == "" || info.ModTime().After(latestTime) {
			latest = filepath.Join(dir, e.Name())
			latestTime = info.ModTime()
		}
	}

	if latest == "" {
		return "", ErrNoExports
	}
	return latest, nil
}

// ErrUnknownPriority is returned for a priority other than HIGH, MEDIUM or LOW.
var ErrUnknownPriority = errors.New("unknown priority")

// AtOrAbove returns a copy of the export holding only alerts at or above
// priority. The priority is case-insensitive.
func (e *Export) AtOrAbove(priority string) (*Export, error) {
	priority = strings.ToUpper(priority)
	rank := PriorityRank(priority)
	if rank > PriorityRank(PriorityLow) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPriority, priority)
	}

	kept := make([]Alert, 0, len(e.Alerts))
	for i := range e.Alerts {
		if PriorityRank(e.Alerts[i].Priority) <= rank {
			kept = append(kept, e.Alerts[i])
		}
	}

	out := *e
	out.Alerts = kept
	out.TotalAlerts = len(kept)
	return &out, nil
}
