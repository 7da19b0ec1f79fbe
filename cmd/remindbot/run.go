package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/spf13/cobra"

	"remindbot/internal/auth"
	"remindbot/internal/bot"
	"remindbot/internal/config"
	"remindbot/internal/reminder"
	"remindbot/internal/scheduler"
	"remindbot/internal/transport"
	"remindbot/internal/transport/telegram"
	logx "remindbot/pkg/logx"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the reminder scheduler",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cmd.SilenceUsage = true
		return runBot()
	},
}

func runBot() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logSvc, log := logx.New(logConfig(cfg))
	defer logSvc.Close()
	log.Info("starting", logx.String("version", version), logx.String("config", cfgPath))

	storeCfg, err := storeConfig(cfg)
	if err != nil {
		return err
	}
	store, err := reminder.Open(storeCfg, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	tgCfg, err := telegramConfig(cfg)
	if err != nil {
		return err
	}
	adapter, err := telegram.New(tgCfg, log.With(logx.String("comp", "telegram")))
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}

	authz := auth.New(auth.PolicyFromIDs(cfg.Telegram.AllowedUsers))

	// Command handling runs beside the poll loop; every state change goes
	// through the store's per-record atomic operations.
	b := bot.New(store, authz, adapter, log)
	msgs := make(chan transport.Message, 64)
	if err := adapter.Start(ctx, msgs); err != nil {
		return fmt.Errorf("telegram start: %w", err)
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case m := <-msgs:
				b.HandleMessage(ctx, m)
			}
		}
	}()

	// Config hot reload: authorization policy and log level/sinks.
	go func() {
		err := config.Watch(ctx, cfgPath, log.With(logx.String("comp", "config")), func(c *config.Config) {
			authz.Apply(auth.PolicyFromIDs(c.Telegram.AllowedUsers))
			logSvc.Apply(logConfig(c))
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Warn("config watch stopped", logx.Err(err))
		}
	}()

	schedCfg, err := schedulerConfig(cfg)
	if err != nil {
		return err
	}
	sched := scheduler.New(schedCfg, store, adapter, authz, log)

	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)
	err = sched.Run(ctx)
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	_ = adapter.Stop(stopCtx)

	if errors.Is(err, context.Canceled) {
		log.Info("stopped")
		return nil
	}
	return err
}

func logConfig(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.ConsoleEnabled(),
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	}
}

func storeConfig(cfg *config.Config) (reminder.Config, error) {
	busy, err := config.ParseDurationOrDefault("storage.busy_timeout", cfg.Storage.BusyTimeout, time.Second)
	if err != nil {
		return reminder.Config{}, err
	}
	return reminder.Config{
		Driver:      cfg.Storage.Driver,
		Path:        cfg.Storage.Path,
		BusyTimeout: busy,
	}, nil
}

func telegramConfig(cfg *config.Config) (telegram.Config, error) {
	poll, err := config.ParseDurationOrDefault("telegram.poll_timeout", cfg.Telegram.PollTimeout, 10*time.Second)
	if err != nil {
		return telegram.Config{}, err
	}
	return telegram.Config{
		Token:       cfg.Telegram.Token,
		PollTimeout: poll,
		RatePerSec:  cfg.Telegram.RatePerSec,
	}, nil
}

func schedulerConfig(cfg *config.Config) (scheduler.Config, error) {
	interval, err := config.ParseDurationOrDefault("scheduler.poll_interval", cfg.Scheduler.PollInterval, time.Minute)
	if err != nil {
		return scheduler.Config{}, err
	}
	sendTimeout, err := config.ParseDurationOrDefault("scheduler.send_timeout", cfg.Scheduler.SendTimeout, 10*time.Second)
	if err != nil {
		return scheduler.Config{}, err
	}
	return scheduler.Config{
		PollInterval: interval,
		SendTimeout:  sendTimeout,
	}, nil
}
