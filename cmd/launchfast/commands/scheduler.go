package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/BlockchainHB/launchfast-sub005/internal/scheduler"
	"github.com/BlockchainHB/launchfast-sub005/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the maintenance scheduler",
	Long: `Runs the cron scheduler with the recurring maintenance jobs.

Jobs:
  stale_markets_refresh - recompute markets with outdated snapshots
                          (schedule: RECALC_CRON_SCHEDULE)

Example:
  go run ./cmd/launchfast scheduler`,
	RunE: runScheduler,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.close()

	sched := scheduler.New(d.logger)

	staleJob := jobs.NewStaleMarketsJob(d.orchestrator, d.markets, d.cfg.Recalc, d.logger)
	if err := sched.AddJob(staleJob); err != nil {
		return fmt.Errorf("register stale markets job: %w", err)
	}

	sched.Start()
	defer sched.Stop()

	fmt.Println("Scheduler running, press Ctrl+C to stop")
	for _, name := range sched.GetAllJobs() {
		fmt.Printf("  job: %s\n", name)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	return nil
}
