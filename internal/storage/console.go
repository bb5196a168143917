package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mselser95/sharpline/internal/alerts"
	"go.uber.org/zap"
)

const rule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// ConsoleStorage implements Storage by pretty-printing alerts.
type ConsoleStorage struct {
	out    io.Writer
	logger *zap.Logger
}

// NewConsoleStorage creates a console storage writing to stdout.
func NewConsoleStorage(logger *zap.Logger) *ConsoleStorage {
	return NewConsoleStorageTo(os.Stdout, logger)
}

// NewConsoleStorageTo creates a console storage writing to out.
func NewConsoleStorageTo(out io.Writer, logger *zap.Logger) *ConsoleStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("console-storage-initialized")
	return &ConsoleStorage{
		out:    out,
		logger: logger,
	}
}

// StoreAlerts prints the export grouped by priority.
func (c *ConsoleStorage) StoreAlerts(_ context.Context, exp *alerts.Export) error {
	var b strings.Builder

	fmt.Fprintln(&b, "\n"+rule)
	fmt.Fprintf(&b, "NFL WEEK %d BETTING ALERTS (%d)\n", exp.Week, exp.TotalAlerts)
	fmt.Fprintf(&b, "Generated: %s\n", exp.GeneratedAt)
	fmt.Fprintln(&b, rule)

	if len(exp.Alerts) == 0 {
		fmt.Fprintln(&b, "No alerts this run.")
	}

	current := ""
	for i := range exp.Alerts {
		a := &exp.Alerts[i]
		if a.Priority != current {
			current = a.Priority
			fmt.Fprintf(&b, "\n[%s]\n", current)
		}
		fmt.Fprintf(&b, "  %s\n", a.Title)
		fmt.Fprintf(&b, "    Game:      %s\n", a.Game)
		fmt.Fprintf(&b, "    Details:   %s\n", a.Description)
		fmt.Fprintf(&b, "    Reasoning: %s\n", a.Reasoning)
	}

	if len(exp.Alerts) > 0 {
		fmt.Fprintln(&b, "\n"+rule)
		fmt.Fprintln(&b, "SUMMARY")
		for _, tc := range alerts.CountByType(exp.Alerts) {
			fmt.Fprintf(&b, "  %-22s %d\n", tc.Type, tc.Count)
		}
	}
	fmt.Fprintln(&b, rule)

	_, err := io.WriteString(c.out, b.String())
	if err != nil {
		return fmt.Errorf("write alerts: %w", err)
	}
	return nil
}

// Close is a no-op for console storage.
func (c *ConsoleStorage) Close() error {
	c.logger.Info("closing-console-storage")
	return nil
}
