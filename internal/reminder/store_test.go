package reminder

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	logx "remindbot/pkg/logx"
)

// Both store implementations must satisfy the same behavior; run the suite
// against each.
func withStores(t *testing.T, fn func(t *testing.T, st Store)) {
	t.Helper()

	t.Run("memory", func(t *testing.T) {
		st := NewMemStore()
		defer st.Close()
		fn(t, st)
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "reminders.db")
		st, err := Open(Config{Driver: "sqlite", Path: path, BusyTimeout: time.Second}, logx.Nop())
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		defer st.Close()
		fn(t, st)
	})
}

func TestStorePutAssignsID(t *testing.T) {
	withStores(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		// Millisecond-aligned times so both backends roundtrip exactly
		// (sqlite stores unix millis).
		now := time.Now().Truncate(time.Millisecond)
		r := Reminder{
			CreatedAt: now,
			NextFire:  now.Add(time.Minute),
			Schedule:  "@daily",
			Payload:   "water the plants",
			Owner:     100,
		}
		if err := st.Put(ctx, &r); err != nil {
			t.Fatalf("Put: %v", err)
		}
		if r.ID == 0 {
			t.Fatal("Put did not assign an id")
		}

		got, err := st.Get(ctx, r.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Payload != r.Payload || got.Owner != r.Owner || got.Schedule != r.Schedule {
			t.Fatalf("roundtrip mismatch: %+v vs %+v", got, r)
		}
		if !got.NextFire.Equal(r.NextFire) {
			t.Fatalf("NextFire mismatch: %v vs %v", got.NextFire, r.NextFire)
		}
	})
}

func TestStoreGetNotFound(t *testing.T) {
	withStores(t, func(t *testing.T, st Store) {
		if _, err := st.Get(context.Background(), 12345); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Get missing id: err = %v, want ErrNotFound", err)
		}
	})
}

func TestStoreUpdateAndDelete(t *testing.T) {
	withStores(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		r := Reminder{CreatedAt: time.Now(), NextFire: time.Now(), Schedule: "@hourly", Payload: "a", Owner: 1}
		if err := st.Put(ctx, &r); err != nil {
			t.Fatalf("Put: %v", err)
		}

		r.Paused = true
		r.NextFire = r.NextFire.Add(time.Hour)
		if err := st.Put(ctx, &r); err != nil {
			t.Fatalf("Put (update): %v", err)
		}
		got, err := st.Get(ctx, r.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if !got.Paused {
			t.Fatal("update did not persist Paused")
		}

		if err := st.Delete(ctx, r.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := st.Get(ctx, r.ID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Get after delete: err = %v, want ErrNotFound", err)
		}
		if err := st.Delete(ctx, r.ID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Delete twice: err = %v, want ErrNotFound", err)
		}
	})
}

func TestStoreDueFiltersPausedAndFuture(t *testing.T) {
	withStores(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		now := time.Now().Truncate(time.Millisecond)

		due := Reminder{CreatedAt: now, NextFire: now.Add(-time.Minute), Schedule: "@hourly", Payload: "due", Owner: 1}
		exact := Reminder{CreatedAt: now, NextFire: now, Schedule: "@hourly", Payload: "exact", Owner: 1}
		future := Reminder{CreatedAt: now, NextFire: now.Add(time.Hour), Schedule: "@hourly", Payload: "future", Owner: 1}
		paused := Reminder{CreatedAt: now, NextFire: now.Add(-time.Hour), Schedule: "@hourly", Payload: "paused", Owner: 1, Paused: true}

		for _, r := range []*Reminder{&due, &exact, &future, &paused} {
			if err := st.Put(ctx, r); err != nil {
				t.Fatalf("Put: %v", err)
			}
		}

		got, err := st.Due(ctx, now)
		if err != nil {
			t.Fatalf("Due: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("Due returned %d reminders, want 2: %+v", len(got), got)
		}
		if got[0].ID != due.ID || got[1].ID != exact.ID {
			t.Fatalf("Due order/content unexpected: %+v", got)
		}
	})
}

func TestStoreAllForOwner(t *testing.T) {
	withStores(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		now := time.Now()
		for _, owner := range []int64{1, 2, 1} {
			r := Reminder{CreatedAt: now, NextFire: now, Schedule: "@daily", Payload: "x", Owner: owner}
			if err := st.Put(ctx, &r); err != nil {
				t.Fatalf("Put: %v", err)
			}
		}

		mine, err := st.AllForOwner(ctx, 1)
		if err != nil {
			t.Fatalf("AllForOwner: %v", err)
		}
		if len(mine) != 2 {
			t.Fatalf("AllForOwner(1) returned %d, want 2", len(mine))
		}
		all, err := st.All(ctx)
		if err != nil {
			t.Fatalf("All: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("All returned %d, want 3", len(all))
		}
	})
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Parallel()
	if _, err := Open(Config{Driver: "postgres"}, logx.Nop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
