package reminder

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	logx "remindbot/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	path := cfg.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	st := &sqliteStore{db: db, log: log}

	if cfg.BusyTimeout > 0 {
		ms := cfg.BusyTimeout.Milliseconds()
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", ms))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

const selectCols = `id, created_at, next_fire, schedule, payload, owner, paused`

func (s *sqliteStore) Get(ctx context.Context, id int64) (Reminder, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectCols+` FROM reminders WHERE id = ?`, id)
	r, err := scanReminder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Reminder{}, ErrNotFound
	}
	return r, err
}

func (s *sqliteStore) All(ctx context.Context) ([]Reminder, error) {
	return s.query(ctx, `SELECT `+selectCols+` FROM reminders ORDER BY id`)
}

func (s *sqliteStore) AllForOwner(ctx context.Context, owner int64) ([]Reminder, error) {
	return s.query(ctx,
		`SELECT `+selectCols+` FROM reminders WHERE owner = ? ORDER BY id`, owner)
}

func (s *sqliteStore) Due(ctx context.Context, now time.Time) ([]Reminder, error) {
	return s.query(ctx,
		`SELECT `+selectCols+` FROM reminders WHERE paused = 0 AND next_fire <= ? ORDER BY id`,
		now.UnixMilli())
}

func (s *sqliteStore) Put(ctx context.Context, r *Reminder) error {
	if r.ID == 0 {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO reminders(created_at, next_fire, schedule, payload, owner, paused)
			 VALUES(?,?,?,?,?,?)`,
			r.CreatedAt.UnixMilli(), r.NextFire.UnixMilli(), r.Schedule, r.Payload, r.Owner, boolInt(r.Paused))
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		r.ID = id
		return nil
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE reminders SET created_at=?, next_fire=?, schedule=?, payload=?, owner=?, paused=?
		 WHERE id = ?`,
		r.CreatedAt.UnixMilli(), r.NextFire.UnixMilli(), r.Schedule, r.Payload, r.Owner, boolInt(r.Paused), r.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sqliteStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sqliteStore) query(ctx context.Context, q string, args ...any) ([]Reminder, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

// Times are stored as unix millis so the due query compares integers, not
// formatted strings.
func scanReminder(row scanner) (Reminder, error) {
	var (
		r                 Reminder
		createdMS, nextMS int64
		paused            int
	)
	if err := row.Scan(&r.ID, &createdMS, &nextMS, &r.Schedule, &r.Payload, &r.Owner, &paused); err != nil {
		return Reminder{}, err
	}
	r.CreatedAt = time.UnixMilli(createdMS)
	r.NextFire = time.UnixMilli(nextMS)
	r.Paused = paused != 0
	return r, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
