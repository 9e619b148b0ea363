package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	cfgpkg "github.com/KaramelBytes/bikeshare-cli/internal/config"
	"github.com/KaramelBytes/bikeshare-cli/internal/dataset"
	"github.com/KaramelBytes/bikeshare-cli/internal/filters"
	"github.com/KaramelBytes/bikeshare-cli/internal/logger"
	"github.com/KaramelBytes/bikeshare-cli/internal/metrics"
	"github.com/KaramelBytes/bikeshare-cli/internal/session"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
	// Overrides applied on top of the loaded config when set
	flagDataDirs    []string
	flagPageSize    int
	flagFullYear    bool
	flagMetricsFile string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "bikeshare",
	Short: "Explore US bikeshare trip data interactively",
	Long: `bikeshare asks for a city and optional month/day filters, loads the matching
trip file and prints travel-time, station, duration and user statistics, then
lets you page through the raw rows.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		rec := metrics.New()
		p := filters.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
		defer p.Close()
		d := session.New(
			p,
			filters.NewNormalizer(cfg.FullYear),
			dataset.NewLoader(cfg.DataDirs),
			session.WithMetrics(rec),
			session.WithPageSize(cfg.PageSize),
		)
		err := d.Run(ctx)
		writeMetrics(ctx, rec)
		return err
	},
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.bikeshare/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringSliceVar(&flagDataDirs, "data-dir", nil, "extra directory to search for <city>.csv (repeatable)")
	rootCmd.PersistentFlags().IntVar(&flagPageSize, "page-size", 0, "raw rows per page (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&flagFullYear, "full-year", false, "accept July-December month filters")
	rootCmd.PersistentFlags().StringVar(&flagMetricsFile, "metrics-file", "", "write run metrics in Prometheus text format to this path")
}

func loadConfig() {
	logger.Init()
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Default()
	}
	cfg = c

	f := rootCmd.PersistentFlags()
	if f.Changed("data-dir") {
		cfg.DataDirs = append(cfg.DataDirs, flagDataDirs...)
	}
	if f.Changed("page-size") && flagPageSize > 0 {
		cfg.PageSize = flagPageSize
	}
	if f.Changed("full-year") {
		cfg.FullYear = flagFullYear
	}
	if f.Changed("metrics-file") {
		cfg.MetricsFile = flagMetricsFile
	}
	if debug {
		cfg.LogLevel = "debug"
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
	}
}

func writeMetrics(ctx context.Context, rec *metrics.Recorder) {
	if cfg.MetricsFile == "" {
		return
	}
	if err := rec.WriteFile(cfg.MetricsFile); err != nil {
		logger.Get().Warn(ctx, "metrics not written", logger.String("path", cfg.MetricsFile), logger.Error(err))
	}
}
