package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"remindbot/internal/config"
	"remindbot/internal/reminder"
	logx "remindbot/pkg/logx"
)

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the reminder database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cmd.SilenceUsage = true

		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		storeCfg, err := storeConfig(cfg)
		if err != nil {
			return err
		}
		// Opening the store runs the embedded migrations.
		store, err := reminder.Open(storeCfg, logx.NewConsole("info"))
		if err != nil {
			return fmt.Errorf("init database: %w", err)
		}
		if err := store.Close(); err != nil {
			return err
		}
		fmt.Printf("database initialized at %s\n", cfg.Storage.Path)
		return nil
	},
}
