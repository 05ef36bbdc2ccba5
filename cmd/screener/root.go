package main

import (
	"github.com/spf13/cobra"
)

var (
	flagStrategy string
	flagOutDir   string
	flagNoDB     bool
	flagTickers  []string
)

var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "US equity quality-value screener",
	Long: `screener runs a cross-sectional quality-value screen over a stock
universe: robust peer-group normalization, factor scoring, accounting
guardrails, and a momentum overlay, exported as CSV/JSON and served
over HTTP.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagStrategy, "strategy", "",
		"strategy YAML path (overrides STRATEGY_CONFIG)")

	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(statusCmd)
}
