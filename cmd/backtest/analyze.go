package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yourusername/advisor-backtest/internal/backtest"
	"github.com/yourusername/advisor-backtest/internal/models"
	"github.com/yourusername/advisor-backtest/internal/repository"
)

func init() {
	historyCmd.Flags().String("instrument", "", "Ticker to list (defaults to backtest.instrument)")
	historyCmd.Flags().Int("limit", 10, "Maximum number of runs to list")
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [result.json]",
	Short: "Print performance statistics of a saved result",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.Backtest.OutputPath
		if len(args) == 1 {
			path = args[0]
		}

		result, err := backtest.LoadResultJSON(path)
		if err != nil {
			return err
		}
		fmt.Print(backtest.GenerateConsoleReport(result, backtest.Analyze(result)))
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored runs for an instrument",
	RunE: func(cmd *cobra.Command, args []string) error {
		instrument, _ := cmd.Flags().GetString("instrument")
		if instrument == "" {
			instrument = cfg.Backtest.Instrument
		}
		limit, _ := cmd.Flags().GetInt("limit")

		repo, err := repository.NewResultRepository(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("failed to open result store: %w", err)
		}
		defer repo.Close()

		summaries, err := repo.ListByInstrument(cmd.Context(), instrument, limit)
		if err != nil {
			return err
		}
		printSummaries(summaries)
		return nil
	},
}

func printSummaries(summaries []models.RunSummary) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tINSTRUMENT\tPERIOD\tWEEKS\tRETURN\tBUY&HOLD\tALPHA\tTRADES")
	for _, s := range summaries {
		fmt.Fprintf(w, "%s\t%s\t%s..%s\t%d\t%.2f%%\t%.2f%%\t%.2f%%\t%d\n",
			s.RunID.String()[:8], s.Instrument,
			s.StartDate.Format(models.DateLayout), s.EndDate.Format(models.DateLayout),
			s.WeeksTested, s.TotalReturn*100, s.BuyAndHoldReturn*100, s.Alpha*100, s.TotalTrades)
	}
	w.Flush()
}
