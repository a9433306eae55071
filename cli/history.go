package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"wfm-planner/errors"
	"wfm-planner/formatter"
	"wfm-planner/models"
	"wfm-planner/store"
)

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Merge a CSV or XLSX history file into the store",
		Long:  "Columns are recognized from Turkish or English headers. Rows with an unreadable date are skipped and listed; every other row is merged field by field into the stored record for its date.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("error opening file: %w", err)
			}
			defer f.Close()

			report, err := a.planner.Import(cmd.Context(), f, filepath.Base(path))
			if report != nil {
				for _, e := range report.Errors {
					fmt.Fprintf(cmd.ErrOrStderr(), "skipped: %v\n", e)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d records, skipped %d (batch %s)\n",
					report.Imported, report.Skipped, report.BatchID)
			}
			return err
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and edit stored daily records",
	}
	cmd.AddCommand(
		newHistoryListCmd(a),
		newHistoryGetCmd(a),
		newHistorySetCmd(a),
		newHistoryDeleteCmd(a),
		newHistoryClearCmd(a),
	)
	return cmd
}

func printRecords(cmd *cobra.Command, format string, recs []models.HistoricalRecord) {
	out := cmd.OutOrStdout()
	switch format {
	case formatter.JSON:
		fmt.Fprintln(out, formatter.FormatHistoryJSON(recs))
	case formatter.CSV:
		fmt.Fprint(out, formatter.FormatHistoryCSV(recs))
	default:
		fmt.Fprint(out, formatter.FormatHistoryText(recs))
	}
}

func newHistoryListCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every record ordered by date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			history, err := store.Snapshot(cmd.Context(), a.store)
			if err != nil {
				return err
			}
			printRecords(cmd, format, history.Records())
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", formatter.Text, "Output format: text|json|csv")
	return cmd
}

func newHistoryGetCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "get DATE",
		Short: "Show the record for one date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			date, err := models.ParseDateKey(args[0])
			if err != nil {
				return err
			}
			rec, ok, err := a.store.Get(cmd.Context(), date)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no record for %s", models.DateKey(date))
			}
			printRecords(cmd, format, []models.HistoricalRecord{rec})
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", formatter.Text, "Output format: text|json|csv")
	return cmd
}

func newHistorySetCmd(a *app) *cobra.Command {
	var (
		calls, agents int
		aht, talk, sl float64
	)

	cmd := &cobra.Command{
		Use:   "set DATE",
		Short: "Merge the given fields into the record for one date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := models.ParseDateKey(args[0])
			if err != nil {
				return err
			}

			var patch models.RecordPatch
			flags := cmd.Flags()
			if flags.Changed("calls") {
				patch.Calls = &calls
			}
			if flags.Changed("agents") {
				patch.Agents = &agents
			}
			if flags.Changed("aht") {
				patch.AHT = &aht
			}
			if flags.Changed("talk-time") {
				patch.TalkTime = &talk
			}
			if flags.Changed("sl") {
				patch.SL = &sl
			}
			if patch.Empty() {
				return errors.ErrEmptyPatch
			}

			ctx := cmd.Context()
			if err := a.store.Put(ctx, date, patch); err != nil {
				return err
			}
			rec, _, err := a.store.Get(ctx, date)
			if err != nil {
				return err
			}
			printRecords(cmd, formatter.Text, []models.HistoricalRecord{rec})
			return nil
		},
	}

	cmd.Flags().IntVar(&calls, "calls", 0, "Offered calls")
	cmd.Flags().IntVar(&agents, "agents", 0, "Scheduled agents")
	cmd.Flags().Float64Var(&aht, "aht", 0, "Average handle time in seconds")
	cmd.Flags().Float64Var(&talk, "talk-time", 0, "Total talk time in hours")
	cmd.Flags().Float64Var(&sl, "sl", 0, "Achieved service level in percent")
	return cmd
}

func newHistoryDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete DATE",
		Short: "Remove the record for one date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := models.ParseDateKey(args[0])
			if err != nil {
				return err
			}
			if err := a.store.Delete(cmd.Context(), date); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", models.DateKey(date))
			return nil
		},
	}
}

func newHistoryClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.store.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "History cleared")
			return nil
		},
	}
}
