// Package cli implements the wfm command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/spf13/cobra"

	"wfm-planner/config"
	"wfm-planner/formatter"
	"wfm-planner/metrics"
	"wfm-planner/planner"
	"wfm-planner/store/sqlite"
)

// pushJobName labels metrics sent to a Pushgateway.
const pushJobName = "wfm_planner"

// app holds the state shared by every subcommand. It is populated by the
// root command's PersistentPreRunE.
type app struct {
	configPath string
	dbPath     string
	pushURL    string

	cfg     config.Config
	logger  *slog.Logger
	store   *sqlite.Store
	planner *planner.Planner
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "wfm",
		Short:         "Call-center forecasting and Erlang-C staffing planner",
		Long:          "wfm forecasts daily call volume from history, sizes the agent requirement with Erlang C and reports staffing gaps per day of month.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to YAML config (default WFM_CONFIG or wfm.yaml)")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite database path (overrides config)")
	root.PersistentFlags().StringVar(&a.pushURL, "push-url", "", "Pushgateway URL to push metrics to after the command")

	root.AddCommand(
		newForecastCmd(a),
		newAnalyzeCmd(a),
		newDashboardCmd(a),
		newImportCmd(a),
		newHistoryCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		cfg.DBPath = a.dbPath
	}
	if a.pushURL != "" {
		cfg.PushURL = a.pushURL
	}
	a.cfg = cfg

	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	solver, err := cfg.Solver()
	if err != nil {
		return err
	}
	st, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return err
	}
	a.store = st
	a.planner = planner.New(st, solver, cfg.GapOptions(), a.logger)
	return nil
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
}

// pushMetrics sends the registry to the configured Pushgateway. Failures are
// reported but never fail the command.
func (a *app) pushMetrics(stderr io.Writer) {
	if a.cfg.PushURL == "" {
		return
	}
	if err := push.New(a.cfg.PushURL, pushJobName).Gatherer(metrics.Registry).Push(); err != nil {
		fmt.Fprintf(stderr, "Error pushing to Pushgateway: %v\n", err)
		return
	}
	a.logger.Info("metrics pushed", "url", a.cfg.PushURL)
}

// Run executes the command line args, writing results to stdout and logs to
// stderr.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{}
	defer a.close()

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		return err
	}
	a.pushMetrics(stderr)
	return nil
}

// Execute runs the process command line. A .env file in the working
// directory is loaded first when present.
func Execute() {
	_ = godotenv.Load()

	if err := Run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func checkFormat(format string) error {
	if !formatter.ValidFormat(format) {
		return fmt.Errorf("format must be one of: text, json, csv (got: %s)", format)
	}
	return nil
}
