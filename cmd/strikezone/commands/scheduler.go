package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/strikezone/internal/scheduler"
	"github.com/wonny/strikezone/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `배치를 cron 스케줄로 반복 실행합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행

Example:
  go run ./cmd/strikezone scheduler start
  go run ./cmd/strikezone scheduler list
  go run ./cmd/strikezone scheduler run strikezone-batch`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 배치 작업을 등록합니다.

등록되는 작업:
- strikezone-batch: analysis config의 schedule (기본 매일 06:00:00)

실행 중인 배치가 끝나기 전에 다음 시각이 오면 그 회차는 건너뜁니다.
스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== strikezone Scheduler ===")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched, a, err := initScheduler(ctx)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.close()

	sched.Start(ctx)

	fmt.Println()
	PrintSuccess("Scheduler started successfully")
	printJobs(sched)
	fmt.Println("\nPress Ctrl+C to stop")

	<-ctx.Done()

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, a, err := initScheduler(context.Background())
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.close()

	printJobs(sched)
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched, a, err := initScheduler(ctx)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.close()

	fmt.Printf("Running job: %s\n", jobName)
	err = sched.RunNow(ctx, jobName)
	printSummary(sched, jobName)
	if err != nil {
		PrintError(fmt.Sprintf("Job %s failed: %v", jobName, err))
		return fmt.Errorf("run job: %w", err)
	}

	PrintSuccess(fmt.Sprintf("Job %s completed", jobName))
	return nil
}

func printJobs(sched *scheduler.Scheduler) {
	stats := sched.GetJobStats()

	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		stat := stats[jobName]
		line := fmt.Sprintf("  - %s (%s)", jobName, stat.Schedule)
		if stat.NextRun != nil {
			line += fmt.Sprintf(", next %s", stat.NextRun.Format("2006-01-02 15:04:05"))
		}
		fmt.Println(line)
	}
}

func printSummary(sched *scheduler.Scheduler, jobName string) {
	sum := sched.GetJobStats()[jobName].LastSummary
	if sum == nil {
		return
	}
	fmt.Printf("  run %s: %d seasons, %d succeeded, %d skipped, %d failed\n",
		sum.RunID, sum.Seasons, sum.Succeeded, sum.Skipped, sum.Failed)
}

func initScheduler(ctx context.Context) (*scheduler.Scheduler, *app, error) {
	// 1. Load config, logger, analysis config
	a, err := bootstrap()
	if err != nil {
		return nil, nil, err
	}

	// 2. Build the batch runner (ledger, cache, publisher)
	runner, rec, err := a.runner(ctx)
	if err != nil {
		a.close()
		return nil, nil, err
	}

	// 3. Create scheduler
	sched := scheduler.New(a.log)

	// 4. Register jobs
	job := jobs.NewBatchJob(runner, a.analysis.Schedule, rec, a.cfg.MetricsTextfile, a.log)
	if err := sched.AddJob(job); err != nil {
		a.close()
		return nil, nil, err
	}

	return sched, a, nil
}
