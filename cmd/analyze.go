package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/bikeshare-cli/internal/analysis"
	"github.com/KaramelBytes/bikeshare-cli/internal/dataset"
	"github.com/KaramelBytes/bikeshare-cli/internal/filters"
	"github.com/KaramelBytes/bikeshare-cli/internal/logger"
	"github.com/KaramelBytes/bikeshare-cli/internal/metrics"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	anaCity  string
	anaMonth string
	anaDay   string
	anaRaw   int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Print the statistics for one city without prompting",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		n := filters.NewNormalizer(cfg.FullYear)
		sel := filters.Selection{Month: filters.All, Day: filters.All}
		var ok bool
		if sel.City, ok = n.City(anaCity); !ok {
			return fmt.Errorf("unsupported --city: %s (use chicago, new york or washington)", anaCity)
		}
		if anaMonth != "" && !strings.EqualFold(anaMonth, filters.All) {
			if sel.Month, ok = n.Month(anaMonth); !ok {
				return fmt.Errorf("unsupported --month: %s (use %s)", anaMonth, n.MonthChoices())
			}
		}
		if anaDay != "" && !strings.EqualFold(anaDay, filters.All) {
			if sel.Day, ok = n.Day(anaDay); !ok {
				return fmt.Errorf("unsupported --day: %s", anaDay)
			}
		}

		ctx := cmd.Context()
		log := logger.Named("analyze").With(logger.String("run_id", uuid.NewString()))
		rec := metrics.New()
		rec.RunStarted()
		defer writeMetrics(ctx, rec)

		t, err := dataset.NewLoader(cfg.DataDirs).Load(ctx, sel)
		if err != nil {
			rec.ObserveLoad(sel.City, metrics.OutcomeFor(err), 0)
			return fmt.Errorf("load %s: %w", filters.Title(sel.City), err)
		}
		rec.ObserveLoad(sel.City, metrics.OutcomeLoaded, t.Len())
		log.Info(ctx, "table loaded", logger.String("source", t.Source), logger.Int("rows", t.Len()))

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (month: %s, day: %s): %d trips\n", filters.Title(sel.City), sel.Month, sel.Day, t.Len())
		if t.Len() == 0 {
			fmt.Fprintln(out, "No data matches your filter criteria.")
			return nil
		}
		results := analysis.RunAll(out, t)
		rec.ObserveReports(results)

		if anaRaw > 0 {
			fmt.Fprintln(out)
			if _, err := t.WriteRows(out, 0, anaRaw); err != nil {
				return fmt.Errorf("raw rows: %w", err)
			}
		}
		for _, r := range results {
			if !r.OK() {
				log.Warn(ctx, "report failed", logger.String("report", r.Name), logger.Error(r.Err))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaCity, "city", "c", "", "city: chicago | new york | washington (synonyms accepted)")
	analyzeCmd.Flags().StringVarP(&anaMonth, "month", "m", filters.All, "month name, abbreviation or number, or 'all'")
	analyzeCmd.Flags().StringVarP(&anaDay, "day", "d", filters.All, "weekday name, abbreviation or number (1=Monday), or 'all'")
	analyzeCmd.Flags().IntVar(&anaRaw, "raw", 0, "also print the first N raw rows")
	_ = analyzeCmd.MarkFlagRequired("city")
}
