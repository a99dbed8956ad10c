package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/holon-run/readme-activity/pkg/log"
	"github.com/holon-run/readme-activity/pkg/logs/redact"
	"github.com/holon-run/readme-activity/pkg/schedule"
)

var watchRunNow bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Update the README repeatedly on a cron schedule",
	Long: `Run the update on the cron schedule given by --schedule (or INPUT_SCHEDULE),
until interrupted. Runs never overlap, and a failed run is logged without
stopping the schedule.

Examples:
  readme-activity watch --user octocat --schedule "*/30 * * * *"
  readme-activity watch --config activity.yaml --now`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		red := redact.New(cfg.Token)
		if err := checkEnvironment(cmd.Context(), cfg, red); err != nil {
			return err
		}

		u, err := newUpdater(cfg)
		if err != nil {
			return err
		}

		var opts []schedule.Option
		if watchRunNow {
			opts = append(opts, schedule.WithRunOnStart())
		}
		s, err := schedule.New(cfg.Schedule, func(ctx context.Context) error {
			res, err := u.Run(ctx)
			if err != nil {
				return red.Error(err)
			}
			log.Progress(res.Message, "outcome", int(res.Outcome), "lines", len(res.Lines))
			return nil
		}, opts...)
		if err != nil {
			return err
		}
		return s.Start(cmd.Context())
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchRunNow, "now", false, "Run once immediately before waiting for the schedule")
	rootCmd.AddCommand(watchCmd)
}
