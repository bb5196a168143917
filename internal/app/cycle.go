package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mselser95/sharpline/internal/alerts"
	"github.com/mselser95/sharpline/internal/report"
	"github.com/mselser95/sharpline/internal/sidedata"
	"github.com/mselser95/sharpline/pkg/healthprobe"
	"github.com/mselser95/sharpline/pkg/types"
	"go.uber.org/zap"
)

// ErrNoGames is returned when the odds provider returned no usable game.
var ErrNoGames = errors.New("no games returned by odds provider")

// CycleResult summarizes one daily run.
type CycleResult struct {
	StartedAt        time.Time
	Week             int
	Games            int
	SnapshotRef      string
	Reports          int
	Alerts           []alerts.Alert
	ExportPath       string
	Notified         int
	SnapshotsDeleted int
}

// RunCycle performs one full analysis cycle. Only a missing API key, a failed
// odds fetch, a failed snapshot save or cancellation abort the cycle; every
// other failure is logged and the cycle continues with what it has.
func (a *App) RunCycle(ctx context.Context) (*CycleResult, error) {
	a.cycleMu.Lock()
	defer a.cycleMu.Unlock()

	res := &CycleResult{StartedAt: time.Now().UTC()}
	err := a.runCycle(ctx, res)

	status := healthprobe.CycleStatus{
		StartedAt:  res.StartedAt,
		FinishedAt: time.Now().UTC(),
		Games:      res.Games,
		Alerts:     len(res.Alerts),
	}
	if err != nil {
		status.Error = err.Error()
		CyclesTotal.WithLabelValues("failed").Inc()
		a.logger.Error("cycle-failed", zap.Error(err))
	} else {
		CyclesTotal.WithLabelValues("ok").Inc()
	}
	a.healthChecker.RecordCycle(status)
	CycleDuration.Observe(status.FinishedAt.Sub(status.StartedAt).Seconds())

	return res, err
}

func (a *App) runCycle(ctx context.Context, res *CycleResult) error {
	err := a.cfg.RequireOddsAPIKey()
	if err != nil {
		return err
	}
	if a.odds == nil {
		return errors.New("odds client is not configured")
	}

	res.Week = a.opts.Week
	if res.Week == 0 {
		res.Week = a.cfg.CurrentWeek(res.StartedAt)
	}

	a.logger.Info("cycle-starting",
		zap.Int("week", res.Week),
		zap.Bool("skip-side-data", a.opts.SkipSideData))

	// 1. Odds
	fetched, err := a.odds.FetchOdds(ctx)
	if err != nil {
		return fmt.Errorf("fetch odds: %w", err)
	}
	for _, e := range fetched.Errors {
		a.logger.Warn("odds-record-dropped", zap.Error(e))
	}
	if len(fetched.Games) == 0 {
		return ErrNoGames
	}
	games := fetched.Games
	res.Games = len(games)

	// 2. Snapshot
	res.SnapshotRef, err = a.store.Save(ctx, games, res.StartedAt)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	// 3. Side data
	side := map[string]sidedata.GameSideData{}
	if !a.opts.SkipSideData {
		side, err = a.collector.Collect(ctx, games)
		if err != nil {
			return fmt.Errorf("collect side data: %w", err)
		}
	}

	// 4. Reports
	reports, err := a.buildReports(ctx, games, side)
	if err != nil {
		return err
	}
	res.Reports = len(reports)

	// 5. Alerts
	inputs := make([]alerts.GameInput, 0, len(games))
	for i := range games {
		inputs = append(inputs, alerts.GameInput{
			Game:   &games[i],
			Report: reports[games[i].ID],
			Side:   side[games[i].ID],
		})
	}
	res.Alerts = a.engine.Evaluate(inputs)

	exp := alerts.NewExport(res.Alerts, res.Week, res.StartedAt)
	res.ExportPath, err = alerts.WriteFile(a.cfg.AlertsDir(), exp)
	if err != nil {
		a.logger.Error("alerts-export-failed", zap.Error(err))
	}

	err = a.sink.StoreAlerts(ctx, exp)
	if err != nil {
		a.logger.Error("alerts-store-failed", zap.Error(err))
	}

	if a.notifier != nil {
		res.Notified, err = a.notifier.Notify(ctx, exp)
		if err != nil {
			a.logger.Warn("alerts-notify-interrupted", zap.Error(err))
		}
	}

	// 6. Retention
	if !a.cfg.SaveHistorical {
		cutoff := res.StartedAt.Add(-a.cfg.RetentionWindow)
		res.SnapshotsDeleted, err = a.store.Cleanup(ctx, cutoff)
		if err != nil {
			a.logger.Error("snapshot-cleanup-failed", zap.Error(err))
		}
	}

	a.logSummary(res)
	return ctx.Err()
}

// buildReports assembles and writes one line movement report per game.
// A game whose report fails is left out; cancellation aborts.
func (a *App) buildReports(
	ctx context.Context,
	games []types.Game,
	side map[string]sidedata.GameSideData,
) (map[string]*report.Report, error) {
	assembler, err := a.assembler(side)
	if err != nil {
		return nil, fmt.Errorf("create report assembler: %w", err)
	}

	out := make(map[string]*report.Report, len(games))
	for i := range games {
		id := games[i].ID

		r, err := assembler.LineMovementReport(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("build reports: %w", ctx.Err())
			}
			a.logger.Error("report-build-failed", zap.String("game-id", id), zap.Error(err))
			continue
		}
		out[id] = r

		_, err = report.WriteFile(a.cfg.ReportsDir(), r)
		if err != nil {
			a.logger.Error("report-write-failed", zap.String("game-id", id), zap.Error(err))
		}
	}

	return out, nil
}

func (a *App) logSummary(res *CycleResult) {
	fields := []zap.Field{
		zap.Int("week", res.Week),
		zap.Int("games", res.Games),
		zap.Int("reports", res.Reports),
		zap.Int("alerts", len(res.Alerts)),
		zap.String("snapshot", res.SnapshotRef),
		zap.String("export", res.ExportPath),
	}
	for _, tc := range alerts.CountByType(res.Alerts) {
		fields = append(fields, zap.Int("alerts-"+tc.Type, tc.Count))
	}
	if res.SnapshotsDeleted > 0 {
		fields = append(fields, zap.Int("snapshots-deleted", res.SnapshotsDeleted))
	}

	a.logger.Info("cycle-complete", fields...)
}
