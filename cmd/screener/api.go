package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/screener/internal/api"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Serve screening results over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(true)
		if err != nil {
			return err
		}
		defer a.close()

		srv := api.NewServer(a.cfg, a.repo, a.runner, a.log)
		a.runner.WithProgress(srv.Hub().Broadcast)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return srv.Start(ctx)
	},
}
