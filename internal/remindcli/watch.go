package remindcli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"taskfyer/internal/client/taskapi"
	"taskfyer/internal/logging"
	"taskfyer/internal/notifications"
	"taskfyer/internal/reminders"
)

const defaultRefresh = 5 * time.Minute

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	Refresh  time.Duration
	Interval time.Duration
}

// TaskSource supplies the current task set.
type TaskSource interface {
	Tasks(ctx context.Context) ([]reminders.Task, error)
}

func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll tasks and print alerts until interrupted",
		Long: `Fetch the task list every --refresh and check for tasks due within
15 minutes every --interval. Overdue alerts are remembered in --db so they
are not repeated after a restart.

Example:
  remind watch --server https://tasks.example.com --token $TOKEN
  remind watch --refresh 1m --interval 30s --db ~/.remind.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Token == "" {
				return errors.New("a session token is required (--token or TASKFYER_TOKEN)")
			}
			return runWatch(cmd, opts, taskapi.New(opts.Server, opts.Token))
		},
	}

	cmd.Flags().DurationVar(&opts.Refresh, "refresh", envDuration("REMIND_REFRESH", defaultRefresh), "how often to re-fetch tasks (env REMIND_REFRESH)")
	cmd.Flags().DurationVar(&opts.Interval, "interval", envDuration("REMIND_INTERVAL", reminders.DefaultInterval), "how often to check for due-soon tasks (env REMIND_INTERVAL)")

	return cmd
}

func runWatch(cmd *cobra.Command, opts *WatchOptions, src TaskSource) error {
	ctx := cmd.Context()
	log := opts.logger(cmd)

	store, closeDB, err := reminders.OpenSQLite(ctx, opts.Database)
	if err != nil {
		return err
	}
	defer closeDB()

	feed := notifications.NewFeed()
	out := cmd.OutOrStdout()
	stop := feed.Listen(func(e notifications.Entry) {
		fmt.Fprintf(out, "[%s] %s\n", e.CreatedAt.Format("15:04"), e.Message)
	})
	defer stop()

	engine := reminders.NewEngine(store, feed, log, reminders.WithInterval(opts.Interval))

	log.Info(ctx, "watching tasks", "server", opts.Server, "refresh", opts.Refresh, "interval", opts.Interval)
	return watch(ctx, src, engine, opts.Refresh, log)
}

// watch refreshes the engine from src every refresh period and runs its
// tick loop alongside. It returns when ctx is done or the session is rejected.
func watch(ctx context.Context, src TaskSource, engine *reminders.Engine, refresh time.Duration, log logging.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		engine.Run(ctx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	poll := func() error {
		ts, err := src.Tasks(ctx)
		if errors.Is(err, taskapi.ErrUnauthorized) {
			return err
		}
		if err != nil {
			log.Warn(ctx, "task refresh failed", "error", err)
			return nil
		}
		if err := engine.Refresh(ctx, ts); err != nil {
			log.Error(ctx, "reminder refresh failed", "error", err)
			return nil
		}
		engine.Tick(ctx)
		return nil
	}

	if err := poll(); err != nil {
		return err
	}

	t := time.NewTicker(refresh)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if err := poll(); err != nil {
				return err
			}
		}
	}
}
