package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/screener/internal/scheduler"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the screening pipeline on the configured cron schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(true)
		if err != nil {
			return err
		}
		defer a.close()

		sched := scheduler.New(a.log)
		if err := sched.Register(a.cfg.ScheduleSpec, scheduler.NewScreeningJob(a.runner)); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()

		a.log.WithField("spec", a.cfg.ScheduleSpec).Info("scheduler running")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()
		return nil
	},
}
