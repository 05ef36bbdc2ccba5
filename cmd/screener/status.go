package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the latest screening run",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(true)
		if err != nil {
			return err
		}
		defer a.close()

		if a.repo == nil {
			return fmt.Errorf("status requires the database")
		}

		summary, err := a.repo.LatestRun(context.Background())
		if err != nil {
			return fmt.Errorf("no runs recorded yet")
		}

		fmt.Printf("run:       %s\n", summary.RunID)
		fmt.Printf("date:      %s\n", summary.Date.Format("2006-01-02"))
		fmt.Printf("strategy:  %s (%.12s)\n", summary.StrategyID, summary.ConfigHash)
		fmt.Printf("companies: %d, %d buy / %d monitor / %d avoid\n",
			summary.Companies, summary.Buys, summary.Monitors, summary.Avoids)
		for _, st := range summary.Stages {
			status := "ok"
			if !st.Success {
				status = "FAILED: " + st.Error
			}
			fmt.Printf("  %-4s %4d → %-4d %6dms  %s\n",
				st.Stage.ShortName(), st.InputCount, st.OutputCount, st.DurationMS, status)
		}
		return nil
	},
}
