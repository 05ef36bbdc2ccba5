package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/screener/internal/export"
)

var flagBatchPath string

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the universe into a batch file without scoring",
	Long: `fetch resolves the universe and assembles company records, then
writes them to a JSON batch file. The file can be scored later with
"score --input", optionally after enriching it with externally computed
guardrail inputs (Altman Z, Beneish M, accruals) or trend signals.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(false)
		if err != nil {
			return err
		}
		defer a.close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		symbols, err := a.universe.Symbols(ctx)
		if err != nil {
			return fmt.Errorf("universe: %w", err)
		}
		companies, err := a.provider.Fetch(ctx, symbols)
		if err != nil {
			return fmt.Errorf("fetch: %w", err)
		}
		if len(companies) == 0 {
			return fmt.Errorf("no companies fetched from %d symbols", len(symbols))
		}

		path := flagBatchPath
		if path == "" {
			path = filepath.Join("out", fmt.Sprintf("batch_%s.json", time.Now().UTC().Format("2006-01-02")))
		}
		if err := export.WriteBatch(path, companies); err != nil {
			return err
		}

		fmt.Printf("fetched %d of %d companies, wrote %s\n", len(companies), len(symbols), path)
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&flagBatchPath, "out", "",
		"batch file path (default out/batch_<date>.json)")
	fetchCmd.Flags().StringSliceVar(&flagTickers, "tickers", nil,
		"fetch only these tickers instead of the index universe")
}
