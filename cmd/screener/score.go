package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/export"
)

var flagInput string

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Run one screening pass over the universe",
	Long: `score runs the full pipeline against the live universe, or against
a JSON batch file produced by "fetch" when --input is given. A batch
file may carry signals the live fetch cannot compute (Altman Z,
Beneish M, accruals); they feed the guardrails unchanged.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(true)
		if err != nil {
			return err
		}
		defer a.close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var summary *contracts.RunSummary
		var companies []*contracts.CompanyRecord
		if flagInput != "" {
			batch, err := export.ReadBatch(flagInput)
			if err != nil {
				return err
			}
			summary, companies, err = a.runner.RunBatch(ctx, batch)
			if err != nil {
				return err
			}
		} else {
			summary, companies, err = a.runner.Run(ctx)
			if err != nil {
				return err
			}
		}

		fmt.Printf("run %s: %d companies, %d buy / %d monitor / %d avoid (%.1fs)\n",
			summary.RunID, summary.Companies,
			summary.Buys, summary.Monitors, summary.Avoids,
			summary.Duration.Seconds())

		top := export.Ranked(companies)
		if len(top) > 10 {
			top = top[:10]
		}
		for i, c := range top {
			fmt.Printf("%2d. %-6s %6.1f  %-7s %s\n",
				i+1, c.Ticker, c.CompositeScore, c.FinalDecision, c.DecisionReason)
		}
		return nil
	},
}

func init() {
	scoreCmd.Flags().StringVar(&flagOutDir, "out", "out", "export directory")
	scoreCmd.Flags().BoolVar(&flagNoDB, "no-db", false, "skip Postgres persistence")
	scoreCmd.Flags().StringSliceVar(&flagTickers, "tickers", nil,
		"screen only these tickers instead of the index universe")
	scoreCmd.Flags().StringVar(&flagInput, "input", "",
		"score a fetched JSON batch file instead of the live universe")
}
