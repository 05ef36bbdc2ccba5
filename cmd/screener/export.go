package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/export"
)

var flagRunID string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Re-export a stored run as CSV and JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(true)
		if err != nil {
			return err
		}
		defer a.close()

		if a.repo == nil {
			return fmt.Errorf("export requires the database")
		}
		ctx := context.Background()

		var summary *contracts.RunSummary
		if flagRunID == "" {
			summary, err = a.repo.LatestRun(ctx)
		} else {
			summary, err = a.repo.Run(ctx, flagRunID)
		}
		if err != nil {
			return fmt.Errorf("run lookup: %w", err)
		}

		companies, err := a.repo.Results(ctx, summary.RunID)
		if err != nil {
			return err
		}
		if len(companies) == 0 {
			return fmt.Errorf("run %s has no results", summary.RunID)
		}

		w := export.NewWriter(flagOutDir, a.log)
		csvPath, err := w.WriteCSV(companies, summary.Date)
		if err != nil {
			return err
		}
		jsonPath, err := w.WriteJSON(companies, *summary)
		if err != nil {
			return err
		}

		fmt.Printf("exported %d companies from %s\n  %s\n  %s\n",
			len(companies), summary.RunID, csvPath, jsonPath)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&flagRunID, "run", "",
		"run ID to export (default: latest run)")
	exportCmd.Flags().StringVar(&flagOutDir, "out", "out", "export directory")
}
