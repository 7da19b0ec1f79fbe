// Package reminder holds the persisted reminder entity, its state
// transitions, and the Store abstraction backing them.
package reminder

import (
	"errors"
	"fmt"
	"time"

	"remindbot/internal/schedule"
)

// ErrScheduleStuck means an expression failed to produce a strictly
// increasing next fire time. The affected reminder must be skipped and
// flagged, never silently dropped or looped on.
var ErrScheduleStuck = errors.New("schedule does not advance")

// Reminder is the one persisted entity: a recurring or one-shot
// notification owned by a single chat.
//
// Transitions mutate the value in memory; callers persist the result with a
// single Store.Put. No transition delivers a notification itself.
type Reminder struct {
	ID        int64
	CreatedAt time.Time
	NextFire  time.Time
	Schedule  string // validated expression, see internal/schedule
	Payload   string
	Owner     int64
	Paused    bool
}

// New builds an unpersisted reminder from an already-parsed spec.
//
// For a recurring spec the initial NextFire is the first occurrence strictly
// after startHint, so creation never yields an immediately-due reminder (no
// duplicate fire right after /addjob). A one-shot fires at startHint
// verbatim, which may be immediately due.
func New(spec schedule.Spec, payload string, owner int64, startHint, now time.Time) Reminder {
	next := startHint
	if !spec.Once() {
		next = spec.Next(startHint)
	}
	return Reminder{
		CreatedAt: now,
		NextFire:  next,
		Schedule:  spec.String(),
		Payload:   payload,
		Owner:     owner,
	}
}

// Spec re-parses the stored expression. The expression was validated at
// creation time, so an error here means the stored row is corrupt.
func (r *Reminder) Spec() (schedule.Spec, error) {
	spec, err := schedule.Parse(r.Schedule)
	if err != nil {
		return schedule.Spec{}, fmt.Errorf("reminder %d: %w", r.ID, err)
	}
	return spec, nil
}

// Advance moves NextFire to the next occurrence after the one that just
// fired. One-shot reminders are never advanced: the caller deletes them
// after delivery instead.
func (r *Reminder) Advance() error {
	spec, err := r.Spec()
	if err != nil {
		return err
	}
	if spec.Once() {
		return fmt.Errorf("reminder %d: advance on one-shot", r.ID)
	}
	next := spec.Next(r.NextFire)
	if !next.After(r.NextFire) {
		return fmt.Errorf("reminder %d (%s): %w", r.ID, r.Schedule, ErrScheduleStuck)
	}
	r.NextFire = next
	return nil
}

// CatchUp advances NextFire forward to the first occurrence that is not in
// the past, without treating the skipped occurrences as due. One-shot
// reminders are left untouched: they are either due or not.
//
// Only the in-memory walk is O(missed occurrences); callers persist the
// final state once.
func (r *Reminder) CatchUp(now time.Time) error {
	spec, err := r.Spec()
	if err != nil {
		return err
	}
	if spec.Once() {
		return nil
	}
	for r.NextFire.Before(now) {
		next := spec.Next(r.NextFire)
		if !next.After(r.NextFire) {
			return fmt.Errorf("reminder %d (%s): %w", r.ID, r.Schedule, ErrScheduleStuck)
		}
		r.NextFire = next
	}
	return nil
}

// Pause freezes the reminder. NextFire is left untouched; CatchUp runs on
// resume instead.
func (r *Reminder) Pause() { r.Paused = true }

// Resume catches the frozen clock up to now and rejoins the active set.
func (r *Reminder) Resume(now time.Time) error {
	if err := r.CatchUp(now); err != nil {
		return err
	}
	r.Paused = false
	return nil
}

// Due reports whether the reminder should fire at now.
func (r *Reminder) Due(now time.Time) bool {
	return !r.Paused && !r.NextFire.After(now)
}
