// Package storage persists alert exports produced by a daily run.
package storage

import (
	"context"

	"github.com/mselser95/sharpline/internal/alerts"
)

// Storage is the interface for storing alert exports.
type Storage interface {
	// StoreAlerts stores every alert of one export.
	StoreAlerts(ctx context.Context, exp *alerts.Export) error

	// Close closes the storage connection.
	Close() error
}
