package state

import (
	"context"
	"time"
)

// ScriptRecord is one script-gen attempt on one host.
type ScriptRecord struct {
	RunID     string
	Host      string
	Seed      int64
	Script    string
	Error     string
	CreatedAt time.Time
}

// Store is the generator counter plus its history.
type Store interface {
	// Counter returns the current counter value without changing it.
	Counter(ctx context.Context) (int64, error)
	// Advance increments the counter by one and returns the value it held
	// before the increment.
	Advance(ctx context.Context) (int64, error)
	// Reset sets the counter to v.
	Reset(ctx context.Context, v int64) error
	// Record appends a script-gen attempt to the history.
	Record(ctx context.Context, rec ScriptRecord) error
	// History returns at most limit records, newest first. limit <= 0 means all.
	History(ctx context.Context, limit int) ([]ScriptRecord, error)
	Close() error
}
