package cli

import (
	"context"
	stderrors "errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"wfm-planner/api"
	"wfm-planner/scheduler"
)

// shutdownTimeout bounds graceful shutdown of in-flight requests.
const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var (
		addr    string
		origins []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long:  "Serve the forecast, analysis, dashboard, history and import endpoints plus /metrics. When refresh_schedule is configured the forecast and analysis gauges are recomputed on that cron schedule.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.cfg.HTTPAddr
			}
			rng, err := a.cfg.ForecastRange()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if a.cfg.RefreshSchedule != "" {
				sched, err := scheduler.New(a.cfg.RefreshSchedule, a.planner, scheduler.Job{
					Range:    rng,
					TargetSL: a.cfg.TargetServiceLevel,
				}, a.logger)
				if err != nil {
					return err
				}
				// Populate the gauges before the first tick.
				_ = sched.RunOnce(ctx)
				sched.Start()
				defer func() { <-sched.Stop().Done() }()
			}

			h := api.NewHandler(a.planner, a.store, api.Defaults{
				Range:    rng,
				TargetSL: a.cfg.TargetServiceLevel,
			})
			srv := &http.Server{
				Addr:              addr,
				Handler:           api.NewRouter(h, origins),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("server listening", "addr", addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !stderrors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			a.logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	cmd.Flags().StringSliceVar(&origins, "allow-origin", nil, "CORS allowed origins")
	return cmd
}
