package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/mselser95/sharpline/pkg/types"
)

// Marshal encodes a report as indented JSON.
func Marshal(r *Report) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return data, nil
}

// WriteFile writes the report to dir/line_movement_<game id>.json and returns the path.
func WriteFile(dir string, r *Report) (string, error) {
	data, err := Marshal(r)
	if err != nil {
		return "", err
	}

	err = os.MkdirAll(dir, 0o755)
	if err != nil {
		return "", &types.StorageError{Op: "mkdir", Path: dir, Err: err}
	}

	path := filepath.Join(dir, "line_movement_"+safeName(r.GameID)+".json")
	err = os.WriteFile(path, data, 0o644)
	if err != nil {
		return "", &types.StorageError{Op: "write", Path: path, Err: err}
	}

	return path, nil
}

func safeName(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, id)
}
