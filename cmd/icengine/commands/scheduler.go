package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/investorcenter/icengine/internal/scheduler"
	"github.com/investorcenter/icengine/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the recurring scoring jobs",
	Long: `Starts the cron scheduler hosting:
  sector_stats   - nightly sector distribution rebuild
  full_score     - daily full-universe scoring
  price_refresh  - hourly intraday rescore during market hours

Example:
  go run ./cmd/icengine scheduler`,
	RunE: runScheduler,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	sched := scheduler.New(rt.log)

	jobList := []scheduler.Job{
		jobs.NewSectorStatsJob(rt.statsBuild, rt.stats, rt.log),
		jobs.NewFullScoreJob(rt.runner, rt.log),
		jobs.NewPriceRefreshJob(rt.runner, rt.log),
	}
	for _, j := range jobList {
		if err := sched.AddJob(j); err != nil {
			return fmt.Errorf("register job: %w", err)
		}
	}

	sched.Start()
	fmt.Printf("Scheduler running with %d jobs. Press Ctrl+C to stop.\n", len(jobList))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}
