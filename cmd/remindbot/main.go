// remindbot is a Telegram bot that sends recurring and one-shot reminders
// driven by cron-style schedules.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var cfgPath string

var rootCmd = &cobra.Command{
	Use:     "remindbot",
	Short:   "remindbot — Telegram reminder scheduler",
	Version: version,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "./config.yaml", "path to config file (yaml or json)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(initDBCmd)
}
