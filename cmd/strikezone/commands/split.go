package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/strikezone/internal/splitter"
)

var (
	splitSource     string
	splitDateColumn string
	splitStart      int
	splitEnd        int
	splitOutPattern string
)

// splitCmd represents the split command
var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "통합 데이터셋을 시즌별 파일로 분리",
	Long: `여러 시즌이 합쳐진 데이터셋을 연도별 파일로 나눕니다.

- 날짜 컬럼을 파싱해 연도를 결정
- 날짜를 파싱할 수 없는 행은 어느 파일에도 기록하지 않음
- 범위의 모든 연도에 파일 생성 (행이 없으면 header만)

플래그는 analysis config의 split 섹션을 덮어씁니다.

Example:
  go run ./cmd/strikezone split
  go run ./cmd/strikezone split --source pitches.csv --start 2021 --end 2022 --out-pattern "out/pitches_{year}.csv"`,
	RunE: runSplit,
}

func init() {
	rootCmd.AddCommand(splitCmd)
	splitCmd.Flags().StringVar(&splitSource, "source", "", "combined dataset (CSV or XLSX)")
	splitCmd.Flags().StringVar(&splitDateColumn, "date-column", "", "column holding the game date")
	splitCmd.Flags().IntVar(&splitStart, "start", 0, "first season")
	splitCmd.Flags().IntVar(&splitEnd, "end", 0, "last season")
	splitCmd.Flags().StringVar(&splitOutPattern, "out-pattern", "", "output path with {year} placeholder")
}

func runSplit(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	sc := splitter.Config{
		Source:        a.analysis.Split.Source,
		DateColumn:    a.analysis.Split.DateColumn,
		StartYear:     a.analysis.Years.Start,
		EndYear:       a.analysis.Years.End,
		OutputPattern: a.analysis.SplitOutputPattern(),
	}
	if splitSource != "" {
		sc.Source = splitSource
	}
	if splitDateColumn != "" {
		sc.DateColumn = splitDateColumn
	}
	if splitStart != 0 {
		sc.StartYear = splitStart
	}
	if splitEnd != 0 {
		sc.EndYear = splitEnd
	}
	if splitOutPattern != "" {
		sc.OutputPattern = splitOutPattern
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	PrintRunHeader(RunMetadata{
		Title:  "strikezone split",
		Tag:    "Split",
		Config: sc.Source,
		Years:  fmt.Sprintf("%d ~ %d", sc.StartYear, sc.EndYear),
	})

	res, err := splitter.Split(ctx, sc)
	if err != nil {
		a.log.WithError(err).WithField("source", sc.Source).Error("split failed")
		return fmt.Errorf("split: %w", err)
	}

	a.log.WithFields(map[string]interface{}{
		"source":       res.Source,
		"rows":         res.TotalRows,
		"unparseable":  res.Unparseable,
		"out_of_range": res.OutOfRange,
		"files":        len(res.Outputs),
	}).Info("split finished")

	widths := []int{6, 10, 50}
	fmt.Println()
	PrintTableHeader([]string{"YEAR", "ROWS", "PATH"}, widths)
	for _, out := range res.Outputs {
		PrintTableRow([]string{fmt.Sprintf("%d", out.Year), fmt.Sprintf("%d", out.Rows), out.Path}, widths)
	}
	fmt.Println()
	PrintKeyValue("Rows read", fmt.Sprintf("%d", res.TotalRows), 12)
	PrintKeyValue("Unparseable", fmt.Sprintf("%d", res.Unparseable), 12)
	PrintKeyValue("Out of range", fmt.Sprintf("%d", res.OutOfRange), 12)
	fmt.Println()
	PrintSuccess(fmt.Sprintf("%d season file(s) written", len(res.Outputs)))
	return nil
}
