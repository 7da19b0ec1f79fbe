package scheduler

import (
	"context"
	"fmt"

	logx "remindbot/pkg/logx"
)

// EqualizeAll walks every unpaused reminder and catches its NextFire up to
// the present, persisting each changed record once. Run at startup, it is
// what prevents downtime from reappearing as a backlog of notifications.
//
// Paused reminders are ignored here: the same catch-up runs when they are
// resumed. A reminder whose schedule fails to advance is logged and skipped,
// never allowed to hang the pass.
func (s *Service) EqualizeAll(ctx context.Context) error {
	now := s.now()
	all, err := s.store.All(ctx)
	if err != nil {
		return fmt.Errorf("equalize: %w", err)
	}

	caught := 0
	for _, r := range all {
		if r.Paused {
			continue
		}
		before := r.NextFire
		if err := r.CatchUp(now); err != nil {
			s.log.Error("equalize skipped reminder", logx.Int64("id", r.ID), logx.Err(err))
			continue
		}
		if r.NextFire.Equal(before) {
			continue
		}
		if err := s.store.Put(ctx, &r); err != nil {
			s.log.Error("equalize persist failed", logx.Int64("id", r.ID), logx.Err(err))
			continue
		}
		caught++
		s.log.Debug("reminder caught up",
			logx.Int64("id", r.ID),
			logx.Time("from", before),
			logx.Time("to", r.NextFire))
	}
	if caught > 0 {
		s.log.Info("equalized reminders", logx.Int("count", caught))
	}
	return nil
}
