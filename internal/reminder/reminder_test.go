package reminder

import (
	"testing"
	"time"

	"remindbot/internal/schedule"
)

func mustSpec(t *testing.T, raw string) schedule.Spec {
	t.Helper()
	spec, err := schedule.Parse(raw)
	if err != nil {
		t.Fatalf("Parse(%q): %v", raw, err)
	}
	return spec
}

func TestNewRecurringNeverImmediatelyDue(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 1, 1, 0, 0, 30, 0, time.Local)

	r := New(mustSpec(t, "@minutely"), "drink water", 42, now, now)

	want := time.Date(2024, 1, 1, 0, 1, 0, 0, time.Local)
	if !r.NextFire.Equal(want) {
		t.Fatalf("NextFire = %v, want %v", r.NextFire, want)
	}
	if r.Due(now) {
		t.Fatal("recurring reminder must not be due right after creation")
	}
}

func TestNewOneShotKeepsStartHint(t *testing.T) {
	t.Parallel()
	now := time.Now()
	hint := now.Add(-time.Hour)

	r := New(mustSpec(t, "@once"), "pay rent", 42, hint, now)

	if !r.NextFire.Equal(hint) {
		t.Fatalf("NextFire = %v, want start hint %v", r.NextFire, hint)
	}
	// A past start hint is immediately due by design.
	if !r.Due(now) {
		t.Fatal("one-shot with past start hint should be due")
	}
}

func TestDueWindow(t *testing.T) {
	t.Parallel()
	base := time.Date(2024, 1, 1, 0, 0, 30, 0, time.Local)
	r := New(mustSpec(t, "@minutely"), "m", 1, base, base)

	if r.Due(time.Date(2024, 1, 1, 0, 0, 59, 0, time.Local)) {
		t.Fatal("due before first occurrence")
	}
	if !r.Due(time.Date(2024, 1, 1, 0, 1, 1, 0, time.Local)) {
		t.Fatal("not due after first occurrence")
	}
}

func TestAdvanceStrictlyIncreases(t *testing.T) {
	t.Parallel()
	base := time.Date(2024, 1, 1, 0, 0, 30, 0, time.Local)
	r := New(mustSpec(t, "@minutely"), "m", 1, base, base)

	before := r.NextFire
	if err := r.Advance(); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	want := time.Date(2024, 1, 1, 0, 2, 0, 0, time.Local)
	if !r.NextFire.Equal(want) {
		t.Fatalf("NextFire = %v, want %v", r.NextFire, want)
	}
	if !r.NextFire.After(before) {
		t.Fatal("advance did not strictly increase NextFire")
	}
}

func TestAdvanceOneShotRejected(t *testing.T) {
	t.Parallel()
	now := time.Now()
	r := New(mustSpec(t, "@once"), "m", 1, now, now)
	if err := r.Advance(); err == nil {
		t.Fatal("expected error advancing a one-shot reminder")
	}
}

func TestCatchUpSkipsMissedOccurrences(t *testing.T) {
	t.Parallel()
	r := Reminder{
		ID:       7,
		Schedule: "@daily",
		NextFire: time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local),
	}
	now := time.Date(2024, 1, 3, 12, 0, 0, 0, time.Local)

	if err := r.CatchUp(now); err != nil {
		t.Fatalf("CatchUp: %v", err)
	}
	want := time.Date(2024, 1, 4, 0, 0, 0, 0, time.Local)
	if !r.NextFire.Equal(want) {
		t.Fatalf("NextFire = %v, want %v", r.NextFire, want)
	}
}

func TestCatchUpIdempotent(t *testing.T) {
	t.Parallel()
	r := Reminder{Schedule: "@hourly", NextFire: time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)}
	now := time.Date(2024, 2, 1, 7, 30, 0, 0, time.Local)

	if err := r.CatchUp(now); err != nil {
		t.Fatalf("CatchUp: %v", err)
	}
	first := r.NextFire
	if err := r.CatchUp(now); err != nil {
		t.Fatalf("CatchUp (second): %v", err)
	}
	if !r.NextFire.Equal(first) {
		t.Fatalf("second CatchUp moved NextFire: %v -> %v", first, r.NextFire)
	}
	if first.Before(now) {
		t.Fatalf("NextFire %v still in the past (now %v)", first, now)
	}
}

func TestCatchUpOneShotNoop(t *testing.T) {
	t.Parallel()
	past := time.Now().Add(-48 * time.Hour)
	r := Reminder{Schedule: "@once", NextFire: past}

	if err := r.CatchUp(time.Now()); err != nil {
		t.Fatalf("CatchUp: %v", err)
	}
	if !r.NextFire.Equal(past) {
		t.Fatal("one-shot reminder must not be caught up")
	}
}

func TestCatchUpCorruptScheduleSurfacesError(t *testing.T) {
	t.Parallel()
	r := Reminder{ID: 9, Schedule: "garbage", NextFire: time.Now().Add(-time.Hour)}
	if err := r.CatchUp(time.Now()); err == nil {
		t.Fatal("expected error for corrupt schedule")
	}
}

func TestPauseFreezesResumeCatchesUp(t *testing.T) {
	t.Parallel()
	r := Reminder{Schedule: "@daily", NextFire: time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)}

	r.Pause()
	if !r.Paused {
		t.Fatal("Pause did not set Paused")
	}
	frozen := r.NextFire
	// Wall clock moves on; a paused reminder must not.
	if r.Due(time.Date(2024, 1, 3, 12, 0, 0, 0, time.Local)) {
		t.Fatal("paused reminder reported due")
	}
	if !r.NextFire.Equal(frozen) {
		t.Fatal("pause moved NextFire")
	}

	now := time.Date(2024, 1, 3, 12, 0, 0, 0, time.Local)
	if err := r.Resume(now); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if r.Paused {
		t.Fatal("Resume did not clear Paused")
	}
	want := time.Date(2024, 1, 4, 0, 0, 0, 0, time.Local)
	if !r.NextFire.Equal(want) {
		t.Fatalf("NextFire after resume = %v, want %v", r.NextFire, want)
	}
}
