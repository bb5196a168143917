package sidedata

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/mselser95/sharpline/pkg/types"
)

// Source provides scraped side data.
type Source interface {
	// Betting returns every scraped betting row. No data is an empty slice.
	Betting(ctx context.Context) ([]BettingPercentages, error)

	// MatchupStats returns the stat rows scraped for one game. No data is an empty slice.
	MatchupStats(ctx context.Context, gameID string) ([]StatRow, error)
}

// FileSource reads the scraper's output directory:
//
//	<dir>/betting.json
//	<dir>/matchups/<game id>.json
type FileSource struct {
	dir string
}

// NewFileSource creates a FileSource rooted at dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

// Betting implements Source.
func (s *FileSource) Betting(ctx context.Context) ([]BettingPercentages, error) {
	rows := make([]BettingPercentages, 0)
	err := s.readJSON(ctx, filepath.Join(s.dir, "betting.json"), &rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// MatchupStats implements Source.
func (s *FileSource) MatchupStats(ctx context.Context, gameID string) ([]StatRow, error) {
	if gameID == "" || filepath.Base(gameID) != gameID {
		return nil, &types.InputError{Record: "matchup", Field: "game_id", Reason: "not a plain identifier"}
	}

	rows := make([]StatRow, 0)
	err := s.readJSON(ctx, filepath.Join(s.dir, "matchups", gameID+".json"), &rows)
	if err != nil {
		return nil, err
	}

	for i := range rows {
		if rows[i].Kind != KindPointsPerGame && rows[i].Kind != KindYardsPerGame {
			rows[i].Kind = KindUnknown
		}
	}
	return rows, nil
}

// readJSON decodes path into v. A missing file leaves v untouched.
func (s *FileSource) readJSON(ctx context.Context, path string, v any) error {
	err := ctx.Err()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return &types.FetchError{Source: path, Err: err}
	}

	err = json.Unmarshal(data, v)
	if err != nil {
		return &types.ParseError{Source: path, Err: fmt.Errorf("decode side data: %w", err)}
	}

	return nil
}
