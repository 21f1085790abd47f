// Package remindcli implements the "remind" command: a terminal client that
// polls the task API and prints due-soon and overdue alerts.
package remindcli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"taskfyer/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Server    string
	Token     string
	Database  string
	LogFormat string // "json" | "text"
}

var ValidFormats = []string{"text", "json"}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Task reminders in your terminal",
		Long:  "Polls the task tracker and prints an alert when a task is due soon or overdue.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.LogFormat) {
				return fmt.Errorf("invalid log format %q: must be one of %v", opts.LogFormat, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Server, "server", envOr("TASKFYER_SERVER", "http://localhost:8000"), "API server URL (env TASKFYER_SERVER)")
	cmd.PersistentFlags().StringVar(&opts.Token, "token", os.Getenv("TASKFYER_TOKEN"), "session token (env TASKFYER_TOKEN)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", envOr("REMIND_DB", "remind.db"), "path to the local SQLite state file (env REMIND_DB)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", envOr("LOG_FORMAT", "text"), "log format (json|text)")

	cmd.AddCommand(NewWatchCommand(opts))
	cmd.AddCommand(NewForgetCommand(opts))

	return cmd
}

func (o *RootOptions) logger(cmd *cobra.Command) logging.Logger {
	return logging.New(cmd.ErrOrStderr(), o.LogFormat)
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return def
}
