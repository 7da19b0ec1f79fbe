// Package schedule parses reminder recurrence expressions and computes
// fire times.
//
// An expression is either the one-shot sentinel ("@once", with "@specific"
// accepted as a legacy spelling), a named alias ("@minutely", "@hourly",
// "@daily", "@weekly", "@monthly", "@yearly"/"@annually"), or a standard
// 5-field cron rule (minute hour dom month dow) with lists, ranges, steps
// and wildcards.
package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// One-shot sentinel spellings. Sentinel reminders fire once at their stored
// time and are then deleted; they have no "next occurrence".
const (
	SentinelOnce     = "@once"
	SentinelSpecific = "@specific" // legacy spelling
)

// Spec is a parsed recurrence expression.
//
// Aliases are resolved at parse time: Next never re-inspects the raw string.
// The zero value is not valid; obtain a Spec from Parse.
type Spec struct {
	expr  string
	sched cron.Schedule // nil for one-shot
}

// Parse validates raw and returns its parsed form.
//
// It is the single gate used at reminder creation time, so a malformed
// expression is rejected with a descriptive error before anything is
// persisted.
func Parse(raw string) (Spec, error) {
	expr := strings.ToLower(strings.TrimSpace(raw))
	if expr == "" {
		return Spec{}, fmt.Errorf("empty schedule expression")
	}

	switch expr {
	case SentinelOnce, SentinelSpecific:
		return Spec{expr: expr}, nil
	}

	rule := expr
	if strings.HasPrefix(expr, "@") {
		switch expr {
		case "@minutely":
			// robfig's standard parser has no per-minute descriptor.
			rule = "* * * * *"
		case "@hourly", "@daily", "@weekly", "@monthly", "@yearly", "@annually":
		default:
			// The parser also understands @midnight and @every; those are
			// not part of the documented grammar.
			return Spec{}, fmt.Errorf("invalid schedule %q: unknown @ alias", raw)
		}
	}

	sched, err := cron.ParseStandard(rule)
	if err != nil {
		return Spec{}, fmt.Errorf("invalid schedule %q: %w", raw, err)
	}
	// A rule can be well-formed yet match no real date ("0 0 30 2 *"); the
	// cron library signals that with a zero next time. Rejecting it here
	// keeps every stored reminder advanceable.
	if sched.Next(time.Now()).IsZero() {
		return Spec{}, fmt.Errorf("invalid schedule %q: no date ever matches", raw)
	}
	return Spec{expr: expr, sched: sched}, nil
}

// Valid reports whether raw parses as a schedule expression.
func Valid(raw string) bool {
	_, err := Parse(raw)
	return err == nil
}

// Once reports whether the spec is the one-shot sentinel.
func (s Spec) Once() bool { return s.sched == nil }

// Next returns the earliest time strictly after from that satisfies the
// rule. It must not be called on a one-shot spec.
func (s Spec) Next(from time.Time) time.Time {
	if s.sched == nil {
		panic("schedule: Next called on one-shot spec")
	}
	return s.sched.Next(from)
}

// String returns the expression as the user wrote it (lowercased, trimmed).
func (s Spec) String() string { return s.expr }
