package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/SaChIn5419/stock-screener/internal/report"
	"github.com/SaChIn5419/stock-screener/internal/scheduler"
	"github.com/SaChIn5419/stock-screener/internal/scheduler/jobs"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run screening on a cron schedule",
	Long: `Runs the screening pipeline on a cron schedule and writes the
CSV report after each run. Blocks until interrupted.

Example:
  go run ./cmd/screener schedule --cron "0 18 * * 1-5"`,
	RunE: runSchedule,
}

var (
	scheduleCron string
	scheduleMode string
	scheduleNow  bool
)

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().StringVar(&scheduleCron, "cron", "0 18 * * 1-5", "cron expression (weekday evenings by default)")
	scheduleCmd.Flags().StringVar(&scheduleMode, "mode", "nifty50", "ticker list mode (nifty50|all)")
	scheduleCmd.Flags().BoolVar(&scheduleNow, "now", false, "also run once immediately")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	writer := report.NewWriter("reports", a.log)
	job := jobs.NewScreenJob(a.screener, writer, scheduleMode, a.cfg.Screen.Workers, scheduleCron, a.log)

	sched := scheduler.New(a.log)
	if err := sched.AddJob(job); err != nil {
		return err
	}

	sched.Start()
	defer sched.Stop()

	if scheduleNow {
		if err := sched.RunJob(job.Name()); err != nil {
			return err
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	a.log.WithField("signal", sig.String()).Info("Shutdown signal received")

	return nil
}
