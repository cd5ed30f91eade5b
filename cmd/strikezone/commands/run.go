package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/strikezone/internal/batch"
)

var (
	runYears   []int
	runWorkers int
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "시즌 배치 실행",
	Long: `설정된 모든 시즌에 대해 배치를 실행합니다.

시즌마다:
- 레코드 정제 (px, pz, is_strike)
- 스트라이크 존 추정 (sz_top / sz_bot 중앙값)
- 스트라이크 비율 binning
- scatter / heatmap PNG 생성
- (선택) Parquet export, S3 업로드

한 시즌의 실패는 다른 시즌에 영향을 주지 않습니다.

Example:
  go run ./cmd/strikezone run
  go run ./cmd/strikezone run --years 2021,2022 --workers 2`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(runCmd)
	addRunFlags(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntSliceVar(&runYears, "years", nil, "only these seasons (e.g. 2021,2022)")
	cmd.Flags().IntVar(&runWorkers, "workers", 0, "seasons processed in parallel (default from config)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner, rec, err := a.runner(ctx, batch.WithYears(runYears), batch.WithWorkers(runWorkers))
	if err != nil {
		return err
	}

	workers := a.analysis.Workers
	if runWorkers > 0 {
		workers = runWorkers
	}
	PrintRunHeader(RunMetadata{
		Title:   "strikezone batch",
		Tag:     "Batch",
		Config:  configLabel(a),
		Years:   yearsLabel(a.analysis.FilterYears(runYears)),
		Workers: workers,
	})

	report, err := runner.Run(ctx)
	if report == nil {
		return fmt.Errorf("batch: %w", err)
	}
	PrintReport(report)

	if a.cfg.MetricsTextfile != "" {
		if werr := rec.WriteTextfile(a.cfg.MetricsTextfile); werr != nil {
			a.log.WithError(werr).WithField("path", a.cfg.MetricsTextfile).Warn("metrics textfile write failed")
		}
	}

	if err != nil {
		PrintWarning("batch interrupted; remaining seasons were not processed")
		return err
	}
	if report.Failed() > 0 {
		PrintWarning(fmt.Sprintf("%d season(s) failed; see the log for details", report.Failed()))
	}
	// 부분 결과도 유효하므로 시즌 실패는 exit 0
	return nil
}

func configLabel(a *app) string {
	if analysisPath != "" {
		return analysisPath
	}
	if _, err := os.Stat(a.cfg.AnalysisConfig); err != nil {
		return "built-in defaults"
	}
	return a.cfg.AnalysisConfig
}

func yearsLabel(years []int) string {
	if len(years) == 0 {
		return "(none)"
	}
	parts := make([]string, len(years))
	for i, y := range years {
		parts[i] = fmt.Sprintf("%d", y)
	}
	return strings.Join(parts, ", ")
}
