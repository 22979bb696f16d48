package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"countdowntray/internal/app"
)

var errRepeatTwice = errors.New("repeat given both as argument and --repeat")

func newRootCmd(run func(ctx context.Context, opts app.Options) error) *cobra.Command {
	var (
		opts   app.Options
		repeat string
	)
	cmd := &cobra.Command{
		Use:   "countdown-tray <time> [date] [repeat]",
		Short: "Show a countdown to a due time, optionally repeating",
		Long: `Shows the time left until <time> as a single number: days, hours, or minutes.

<time>    10:30am, 22:15, now, or an offset like 1h30m / 45m
[date]    M-D-YYYY or today (default); ignored for offsets
[repeat]  cron expression ("0 9 * * 1-5", "@daily") or interval (1h, 90m, 02:30)`,
		Args:          cobra.RangeArgs(1, 3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Time = args[0]
			if len(args) > 1 {
				opts.Date = args[1]
			}
			if len(args) > 2 {
				if repeat != "" {
					return errRepeatTwice
				}
				opts.Repeat = args[2]
			} else {
				opts.Repeat = repeat
			}
			opts.Stdin = cmd.InOrStdin()
			opts.Stdout = cmd.OutOrStdout()
			opts.Stderr = cmd.ErrOrStderr()
			return run(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.ConfigPath, "config", "c", "", "path to config file (.json, .yaml)")
	f.StringVarP(&repeat, "repeat", "r", "", "repeat rule: cron expression or interval")
	f.StringVarP(&opts.Mode, "mode", "m", "", "display mode: tui, plain, log")
	f.StringVar(&opts.LogLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	f.DurationVar(&opts.Tick, "tick", 0, "display update interval (default 1m)")
	f.StringVar(&opts.Timezone, "tz", "", "IANA timezone for the due time and cron repeats")
	return cmd
}

func runApp(ctx context.Context, opts app.Options) error {
	a, err := app.New(opts)
	if err != nil {
		return err
	}
	return a.Run(ctx)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd(runApp).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		cancel()
		os.Exit(1)
	}
}
