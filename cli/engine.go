package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"wfm-planner/formatter"
	"wfm-planner/models"
)

func newForecastCmd(a *app) *cobra.Command {
	var (
		from, to, format string
		days             int
		sl               float64
	)

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Forecast daily calls and required agents",
		Long:  "Predict each day of the range from the mean of matching weekdays in history and size it with Erlang C. Without flags the configured horizon is used.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			def, err := a.cfg.ForecastRange()
			if err != nil {
				return err
			}
			rng, err := models.ResolveRange(def, from, to, days)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("sl") {
				sl = a.cfg.TargetServiceLevel
			}

			f, err := a.planner.Forecast(cmd.Context(), rng, sl)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case formatter.JSON:
				fmt.Fprintln(out, formatter.FormatForecastJSON(f))
			case formatter.CSV:
				fmt.Fprint(out, formatter.FormatForecastCSV(f))
			default:
				fmt.Fprint(out, formatter.FormatForecastText(f))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "First forecast date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Last forecast date (YYYY-MM-DD), wins over --days")
	cmd.Flags().IntVar(&days, "days", 0, "Number of days to forecast")
	cmd.Flags().Float64Var(&sl, "sl", 0, "Target service level in percent (default from config)")
	cmd.Flags().StringVar(&format, "format", formatter.Text, "Output format: text|json|csv")
	return cmd
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		format string
		sl     float64
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Report staffing surplus and deficit per day of month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			if !cmd.Flags().Changed("sl") {
				sl = a.cfg.TargetServiceLevel
			}

			report, err := a.planner.Analyze(cmd.Context(), sl)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case formatter.JSON:
				fmt.Fprintln(out, formatter.FormatGapJSON(report))
			case formatter.CSV:
				fmt.Fprint(out, formatter.FormatGapCSV(report))
			default:
				fmt.Fprint(out, formatter.FormatGapText(report))
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&sl, "sl", 0, "Target service level in percent (default from config)")
	cmd.Flags().StringVar(&format, "format", formatter.Text, "Output format: text|json|csv")
	return cmd
}

func newDashboardCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show historical KPIs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			d, err := a.planner.Dashboard(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case formatter.JSON:
				fmt.Fprintln(out, formatter.FormatDashboardJSON(d))
			case formatter.CSV:
				fmt.Fprint(out, formatter.FormatDashboardCSV(d))
			default:
				fmt.Fprint(out, formatter.FormatDashboardText(d))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", formatter.Text, "Output format: text|json|csv")
	return cmd
}
