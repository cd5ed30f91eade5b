package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	historyYear  int
	historyLimit int
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "배치 실행 이력 조회",
	Long: `run ledger(PostgreSQL)에 기록된 시즌별 결과를 최신순으로 보여줍니다.
DATABASE_URL이 필요합니다.

Example:
  go run ./cmd/strikezone history
  go run ./cmd/strikezone history --year 2023 --limit 5`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyYear, "year", 0, "only this season")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum rows")
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	if !a.cfg.Database.Enabled() {
		PrintWarning("DATABASE_URL is not set; no run ledger to read")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := a.store(ctx)
	if err != nil {
		return err
	}

	runs, err := store.ListRuns(ctx, historyYear, historyLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		PrintInfo("No runs recorded")
		return nil
	}

	widths := []int{19, 8, 6, 8, 8, 8, 8, 40}
	PrintTableHeader([]string{"RECORDED", "RUN", "YEAR", "STATUS", "CLEANED", "DROPPED", "BINNED", "DETAIL"}, widths)
	for _, r := range runs {
		PrintTableRow([]string{
			r.RecordedAt.Local().Format("2006-01-02 15:04:05"),
			truncate(r.RunID, 8),
			fmt.Sprintf("%d", r.Year),
			string(r.Status),
			fmt.Sprintf("%d", r.Cleaned),
			fmt.Sprintf("%d", r.Dropped),
			fmt.Sprintf("%d", r.Binned),
			yearDetail(r.YearResult),
		}, widths)
	}
	return nil
}
