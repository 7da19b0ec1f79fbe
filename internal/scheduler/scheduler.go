// Package scheduler runs the reminder poll loop: resolve the due set, fire
// one notification per due reminder, advance each fired reminder, wait one
// cycle.
package scheduler

import (
	"context"
	"time"

	"remindbot/internal/reminder"
	"remindbot/internal/transport"
	logx "remindbot/pkg/logx"
)

// Authorizer answers whether an owner may still receive notifications.
type Authorizer interface {
	Permitted(owner int64) bool
}

type Config struct {
	// PollInterval bounds both notification latency and command
	// responsiveness to one cycle.
	PollInterval time.Duration // default 60s
	// SendTimeout bounds a single delivery attempt; a timeout is a
	// recoverable per-reminder failure, not a scheduler-fatal error.
	SendTimeout time.Duration // default 10s
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = time.Minute
	}
	if c.SendTimeout <= 0 {
		c.SendTimeout = 10 * time.Second
	}
	return c
}

// Service is the top-level scheduling driver. A single Run goroutine
// executes passes sequentially; a new pass never starts before the previous
// one (including all deliveries) completes.
type Service struct {
	cfg      Config
	store    reminder.Store
	notifier transport.Notifier
	auth     Authorizer
	log      logx.Logger

	now func() time.Time
}

func New(cfg Config, store reminder.Store, notifier transport.Notifier, auth Authorizer, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{
		cfg:      cfg.withDefaults(),
		store:    store,
		notifier: notifier,
		auth:     auth,
		log:      log.With(logx.String("comp", "scheduler")),
		now:      time.Now,
	}
}

// Run blocks until ctx is cancelled. It equalizes once on startup, then
// alternates passes with an interruptible one-cycle wait. Store failures
// during a pass are logged and retried on the next cycle; they never
// terminate the loop.
func (s *Service) Run(ctx context.Context) error {
	if err := s.EqualizeAll(ctx); err != nil {
		// Startup equalize failing (store down) is not fatal: the first
		// passes will retry against the store anyway.
		s.log.Error("startup equalize failed", logx.Err(err))
	}

	s.log.Info("poll loop started", logx.Duration("interval", s.cfg.PollInterval))
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		s.RunPass(ctx)

		select {
		case <-ctx.Done():
			s.log.Info("poll loop stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunPass resolves the due set once and fires each due reminder in
// isolation: one reminder failing never aborts the others.
func (s *Service) RunPass(ctx context.Context) {
	now := s.now()
	due, err := s.store.Due(ctx, now)
	if err != nil {
		s.log.Error("due-set resolution failed", logx.Err(err))
		return
	}
	for i := range due {
		if ctx.Err() != nil {
			return
		}
		s.fire(ctx, &due[i])
	}
}

// fire delivers one reminder and advances it. The order is deliberate:
// advance is persisted only after delivery returned, so a crash in between
// re-delivers rather than drops (at-least-once).
func (s *Service) fire(ctx context.Context, r *reminder.Reminder) {
	log := s.log.With(logx.Int64("id", r.ID), logx.Int64("owner", r.Owner))

	// Classify before delivering. A row whose schedule cannot produce the
	// next occurrence stays due forever (only a successful advance clears
	// it), so sending first would re-deliver it every cycle.
	spec, err := r.Spec()
	if err != nil {
		log.Error("stored schedule is corrupt, skipping", logx.Err(err))
		return
	}
	var next time.Time
	if !spec.Once() {
		next = spec.Next(r.NextFire)
		if !next.After(r.NextFire) {
			log.Error("schedule is stuck, skipping",
				logx.String("schedule", r.Schedule),
				logx.Err(reminder.ErrScheduleStuck))
			return
		}
	}

	if !s.auth.Permitted(r.Owner) {
		// Policy: a reminder for a deauthorized owner is neither fired nor
		// advanced, so it stays due until reauthorized or deleted.
		log.Warn("reminder owner no longer permitted, skipping")
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.SendTimeout)
	err = s.notifier.SendText(sendCtx, transport.ChatTarget{ChatID: r.Owner}, r.Payload, nil)
	cancel()
	if err != nil {
		// Left un-advanced: retried on the next cycle.
		log.Warn("delivery failed", logx.Err(err))
		return
	}

	if spec.Once() {
		if err := s.store.Delete(ctx, r.ID); err != nil {
			log.Error("one-shot delete failed", logx.Err(err))
			return
		}
		log.Info("one-shot reminder fired and removed")
		return
	}

	r.NextFire = next
	if err := s.store.Put(ctx, r); err != nil {
		log.Error("advance persist failed", logx.Err(err))
		return
	}
	log.Info("reminder fired", logx.Time("next", r.NextFire))
}
