package reminder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	logx "remindbot/pkg/logx"
)

// ErrNotFound is returned by Get when no reminder has the given id.
var ErrNotFound = errors.New("reminder not found")

// Store is the persistence API used by the scheduler and the bot.
//
// Every single-record operation is atomic with respect to that record; no
// multi-record transactions are needed since the scheduler's invariants are
// per-record.
type Store interface {
	Get(ctx context.Context, id int64) (Reminder, error)
	All(ctx context.Context) ([]Reminder, error)
	AllForOwner(ctx context.Context, owner int64) ([]Reminder, error)
	// Due returns every unpaused reminder with NextFire <= now, in store
	// iteration order. It is read-only: nothing is mutated or advanced.
	Due(ctx context.Context, now time.Time) ([]Reminder, error)
	// Put inserts r (assigning r.ID) when r.ID is zero, else updates the
	// full record.
	Put(ctx context.Context, r *Reminder) error
	Delete(ctx context.Context, id int64) error
	Close() error
}

// Config configures the reminder store.
//
// Driver values:
//   - "sqlite": SQLite database file
//   - "memory": process-local map (tests, throwaway runs)
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Open initializes the configured store.
func Open(cfg Config, log logx.Logger) (Store, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch driver {
	case "", "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	case "memory":
		return NewMemStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Driver)
	}
}
