package jobs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/strikezone/internal/analysisconfig"
	"github.com/wonny/strikezone/internal/batch"
	"github.com/wonny/strikezone/internal/metrics"
	"github.com/wonny/strikezone/internal/render"
	"github.com/wonny/strikezone/internal/scheduler"
	"github.com/wonny/strikezone/pkg/logger"
)

func batchConfig(t *testing.T) *analysisconfig.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := analysisconfig.Default()
	cfg.Years.Start, cfg.Years.End = 2021, 2022
	cfg.Datasets.Pattern = filepath.Join(dir, "pitches_{year}.csv")
	cfg.Render.OutputDir = filepath.Join(dir, "plots")
	cfg.Render.Scatter, cfg.Render.Heatmap = false, false
	cfg.Export.Parquet = true
	cfg.Schedule = "0 30 5 * * *"
	return cfg
}

func TestBatchJobSkippedSeasonsSucceed(t *testing.T) {
	cfg := batchConfig(t)
	textfile := filepath.Join(t.TempDir(), "strikezone.prom")
	rec := metrics.New()
	runner := batch.New(cfg, render.NewPNG(render.DefaultOptions(cfg.Render.OutputDir)), logger.Nop(), batch.WithMetrics(rec))

	job := NewBatchJob(runner, cfg.Schedule, rec, textfile, logger.Nop())
	assert.Equal(t, BatchJobName, job.Name())
	assert.Equal(t, "0 30 5 * * *", job.Schedule())

	require.NoError(t, job.Run(context.Background()))

	data, err := os.ReadFile(textfile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `strikezone_years_total{status="skipped"} 2`)

	summary := job.LastSummary()
	require.NotNil(t, summary)
	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 2, summary.Seasons)
	assert.Equal(t, 2, summary.Skipped)
	assert.Zero(t, summary.Failed)
}

func TestBatchJobSummaryInSchedulerHistory(t *testing.T) {
	cfg := batchConfig(t)
	require.NoError(t, os.WriteFile(cfg.DatasetPath(2022), []byte("game_date,px,pz\n2022-04-01,0,2\n"), 0o644))

	runner := batch.New(cfg, render.NewPNG(render.DefaultOptions(cfg.Render.OutputDir)), logger.Nop())
	job := NewBatchJob(runner, cfg.Schedule, nil, "", logger.Nop())
	assert.Nil(t, job.LastSummary(), "no run yet")

	sched := scheduler.New(logger.Nop())
	require.NoError(t, sched.AddJob(job))
	require.Error(t, sched.RunNow(context.Background(), BatchJobName))

	stats := sched.GetJobStats()[BatchJobName]
	assert.Equal(t, 1, stats.FailureCount)
	require.NotNil(t, stats.LastSummary)
	assert.Equal(t, 2, stats.LastSummary.Seasons)
	assert.Equal(t, 1, stats.LastSummary.Skipped)
	assert.Equal(t, 1, stats.LastSummary.Failed)
}

func TestBatchJobFailedSeasonFailsJob(t *testing.T) {
	cfg := batchConfig(t)
	path := cfg.DatasetPath(2022)
	require.NoError(t, os.WriteFile(path, []byte("game_date,px,pz\n2022-04-01,0,2\n"), 0o644))

	runner := batch.New(cfg, render.NewPNG(render.DefaultOptions(cfg.Render.OutputDir)), logger.Nop())
	job := NewBatchJob(runner, cfg.Schedule, nil, "", logger.Nop())

	err := job.Run(context.Background())
	assert.ErrorContains(t, err, "1 of 2 seasons failed")
}

func TestBatchJobCanceled(t *testing.T) {
	cfg := batchConfig(t)
	runner := batch.New(cfg, render.NewPNG(render.DefaultOptions(cfg.Render.OutputDir)), logger.Nop())
	job := NewBatchJob(runner, cfg.Schedule, nil, "", logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, job.Run(ctx), context.Canceled)
}
