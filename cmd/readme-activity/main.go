package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/holon-run/readme-activity/pkg/config"
	"github.com/holon-run/readme-activity/pkg/log"
	"github.com/holon-run/readme-activity/pkg/logs/redact"
	_ "github.com/holon-run/readme-activity/pkg/publisher/gitcli"
	_ "github.com/holon-run/readme-activity/pkg/publisher/gogit"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "readme-activity",
	Short: "Keep the recent GitHub activity section of a README up to date",
	Long: `readme-activity lists a GitHub user's recent public issues, pull requests,
comments and releases between the markers

  <!--START_SECTION:activity-->
  <!--END_SECTION:activity-->

of a README and commits the result.

Every setting can come from a YAML file (--config), from GitHub Actions
inputs (INPUT_<NAME> environment variables) or from flags, in increasing
order of precedence.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runUpdate,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Update the README once",
	RunE:  runUpdate,
}

// loadConfig resolves the configuration for cmd and initializes logging.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{
		Path:  configPath,
		Flags: cmd.Flags(),
	})
	if err != nil {
		return config.Config{}, err
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return config.Config{}, err
	}
	logCfg := log.DefaultConfig()
	logCfg.Level = level
	if cfg.LogFormat != "" {
		logCfg.Format = cfg.LogFormat
	}
	if err := log.Init(logCfg); err != nil {
		return config.Config{}, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}

func runUpdate(cmd *cobra.Command, args []string) error {
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

	res, err := u.Run(cmd.Context())
	if err != nil {
		return red.Error(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Message)
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	config.RegisterFlags(rootCmd.PersistentFlags())
	rootCmd.AddCommand(runCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
