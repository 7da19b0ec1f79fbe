// Package bot turns incoming chat messages into reminder operations.
//
// Commands:
//
//	/start                                   welcome message
//	/help                                    help center
//	/addjob <schedule>;<message>[;<start>]   add a job
//	/showjobs                                show my jobs
//	/pausejob <id>                           pause a job
//	/resumejob <id>                          resume a job
//	/deletejob <id>                          delete a job
//
// Every command produces exactly one reply.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"remindbot/internal/reminder"
	"remindbot/internal/schedule"
	"remindbot/internal/transport"
	logx "remindbot/pkg/logx"
)

// dateFormat is the fixed start-date layout accepted by /addjob.
const dateFormat = "02/01/06 15:04:05"

const helpText = `Possible commands:
/start - Welcome message
/help - Help center
/addjob schedule;message[;start date] - Add a job
/showjobs - Show my jobs
/pausejob jobid - Pause the job with id jobid
/resumejob jobid - Resume the job with id jobid
/deletejob jobid - Delete the job with id jobid

In /addjob, the start date is optional and uses the DD/MM/YY HH:MM:SS format.
The possible schedule values are @once (reminder at the start date), @minutely, @hourly, @daily, @weekly, @monthly, @yearly, @annually and any valid cron expression.`

const deniedText = "You are not authorized to use this bot. Please see /help for more details"

// Authorizer answers whether a chat id may use the bot.
type Authorizer interface {
	Permitted(owner int64) bool
}

type Bot struct {
	store    reminder.Store
	auth     Authorizer
	notifier transport.Notifier
	log      logx.Logger

	now func() time.Time
}

func New(store reminder.Store, auth Authorizer, notifier transport.Notifier, log logx.Logger) *Bot {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Bot{
		store:    store,
		auth:     auth,
		notifier: notifier,
		log:      log.With(logx.String("comp", "bot")),
		now:      time.Now,
	}
}

// HandleMessage routes one incoming message and sends the single reply.
// Non-command chatter is ignored.
func (b *Bot) HandleMessage(ctx context.Context, m transport.Message) {
	cmd, args := splitCommand(m.Text)
	if cmd == "" {
		return
	}

	var reply string
	var opt *transport.SendOptions

	switch cmd {
	case "/start":
		reply = b.cmdStart(m)
	case "/help":
		reply = b.cmdHelp(m)
	case "/addjob":
		reply = b.cmdAddJob(ctx, m, args)
	case "/showjobs":
		reply, opt = b.cmdShowJobs(ctx, m)
	case "/pausejob":
		reply = b.cmdPauseJob(ctx, m, args)
	case "/resumejob":
		reply = b.cmdResumeJob(ctx, m, args)
	case "/deletejob":
		reply = b.cmdDeleteJob(ctx, m, args)
	default:
		return
	}

	if err := b.notifier.SendText(ctx, transport.ChatTarget{ChatID: m.ChatID}, reply, opt); err != nil {
		b.log.Warn("reply failed", logx.Int64("chat", m.ChatID), logx.Err(err))
	}
}

func (b *Bot) cmdStart(m transport.Message) string {
	if !b.auth.Permitted(m.ChatID) {
		return deniedText
	}
	return "Welcome to remindbot. I am a bot to send reminders. Please see the documentation with the /help command"
}

func (b *Bot) cmdHelp(m transport.Message) string {
	if !b.auth.Permitted(m.ChatID) {
		// The id hint lets the operator add the user to the allow-list.
		return fmt.Sprintf("You are not authorized to use this bot. Please consider asking for your id to be added to the authorized list: %d", m.ChatID)
	}
	return helpText
}

func (b *Bot) cmdAddJob(ctx context.Context, m transport.Message, args string) string {
	if !b.auth.Permitted(m.ChatID) {
		b.log.Info("unauthorized user tried to add a job", logx.Int64("chat", m.ChatID))
		return deniedText
	}

	expr, payload, startRaw, ok := splitAddJobArgs(args)
	if !ok {
		return "Failed to parse the command. Usage: /addjob schedule;message[;start date]"
	}

	spec, err := schedule.Parse(expr)
	if err != nil {
		return "The first argument must be a valid cron expression (including @daily, @hourly, etc...) or @once"
	}

	now := b.now()
	start := now
	if startRaw != "" {
		parsed, err := time.ParseInLocation(dateFormat, startRaw, time.Local)
		if err != nil {
			b.log.Debug("start date not parseable, using now", logx.String("raw", startRaw))
		} else {
			start = parsed
		}
	}

	r := reminder.New(spec, payload, m.ChatID, start, now)
	if err := b.store.Put(ctx, &r); err != nil {
		b.log.Error("add job failed", logx.Int64("chat", m.ChatID), logx.Err(err))
		return "Something went wrong while saving the job, please retry"
	}
	b.log.Info("job added",
		logx.Int64("id", r.ID),
		logx.Int64("owner", r.Owner),
		logx.String("schedule", r.Schedule),
		logx.Time("next", r.NextFire))
	return fmt.Sprintf("The job %d was added", r.ID)
}

func (b *Bot) cmdShowJobs(ctx context.Context, m transport.Message) (string, *transport.SendOptions) {
	if !b.auth.Permitted(m.ChatID) {
		b.log.Info("unauthorized user tried to display jobs", logx.Int64("chat", m.ChatID))
		return deniedText, nil
	}

	jobs, err := b.store.AllForOwner(ctx, m.ChatID)
	if err != nil {
		b.log.Error("show jobs failed", logx.Int64("chat", m.ChatID), logx.Err(err))
		return "Something went wrong while listing the jobs, please retry", nil
	}
	if len(jobs) == 0 {
		return "You don't have any job", nil
	}
	// Monospace block needs explicit Markdown parse mode.
	return renderJobs(jobs), &transport.SendOptions{ParseMode: "Markdown"}
}

func (b *Bot) cmdPauseJob(ctx context.Context, m transport.Message, args string) string {
	return b.withOwnedJob(ctx, m, args, "pause", func(r *reminder.Reminder) (string, error) {
		r.Pause()
		if err := b.store.Put(ctx, r); err != nil {
			return "", err
		}
		return fmt.Sprintf("The job %d was paused", r.ID), nil
	})
}

func (b *Bot) cmdResumeJob(ctx context.Context, m transport.Message, args string) string {
	return b.withOwnedJob(ctx, m, args, "resume", func(r *reminder.Reminder) (string, error) {
		if err := r.Resume(b.now()); err != nil {
			return "", err
		}
		if err := b.store.Put(ctx, r); err != nil {
			return "", err
		}
		return fmt.Sprintf("The job %d was resumed", r.ID), nil
	})
}

func (b *Bot) cmdDeleteJob(ctx context.Context, m transport.Message, args string) string {
	return b.withOwnedJob(ctx, m, args, "delete", func(r *reminder.Reminder) (string, error) {
		if err := b.store.Delete(ctx, r.ID); err != nil {
			return "", err
		}
		return fmt.Sprintf("The job %d was deleted", r.ID), nil
	})
}

// withOwnedJob factors the shared pause/resume/delete plumbing: authorization,
// id parsing, lookup and the ownership check, each with its own distinct
// refusal message.
func (b *Bot) withOwnedJob(ctx context.Context, m transport.Message, args, action string, fn func(r *reminder.Reminder) (string, error)) string {
	if !b.auth.Permitted(m.ChatID) {
		b.log.Info("unauthorized user tried to "+action+" a job", logx.Int64("chat", m.ChatID))
		return deniedText
	}

	id, ok := parseJobID(args)
	if !ok {
		return "Failed to parse the command"
	}

	r, err := b.store.Get(ctx, id)
	if errors.Is(err, reminder.ErrNotFound) {
		b.log.Warn("user addressed inexistent job", logx.Int64("chat", m.ChatID), logx.Int64("id", id))
		return "This job does not exist"
	}
	if err != nil {
		b.log.Error(action+" job failed", logx.Int64("id", id), logx.Err(err))
		return "Something went wrong, please retry"
	}
	if r.Owner != m.ChatID {
		b.log.Warn("user is not the owner of the job", logx.Int64("chat", m.ChatID), logx.Int64("id", id))
		return "You are not the owner of this job"
	}

	reply, err := fn(&r)
	if err != nil {
		b.log.Error(action+" job failed", logx.Int64("id", id), logx.Err(err))
		return "Something went wrong, please retry"
	}
	b.log.Info("job "+action+"d", logx.Int64("chat", m.ChatID), logx.Int64("id", id))
	return reply
}

// splitCommand extracts the command token (with any @botname suffix removed)
// and the remaining argument text.
func splitCommand(text string) (cmd, args string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", ""
	}
	cmd = text
	if i := strings.IndexByte(text, ' '); i >= 0 {
		cmd, args = text[:i], strings.TrimSpace(text[i+1:])
	}
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}
	return strings.ToLower(cmd), args
}
