package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/wonny/strikezone/internal/batch"
	"github.com/wonny/strikezone/internal/contracts"
	"github.com/wonny/strikezone/internal/metrics"
	"github.com/wonny/strikezone/internal/scheduler"
	"github.com/wonny/strikezone/pkg/logger"
)

// BatchJobName is the registry name of the scheduled batch
const BatchJobName = "strikezone-batch"

var _ scheduler.Summarizer = (*BatchJob)(nil)

// BatchJob re-runs the season batch on a cron schedule
type BatchJob struct {
	runner   *batch.Runner
	schedule string
	metrics  *metrics.Recorder
	textfile string
	logger   *logger.Logger

	mu   sync.Mutex
	last *scheduler.RunSummary
}

// NewBatchJob creates a new batch job.
// When textfile is set, metrics are rewritten there after every run.
func NewBatchJob(runner *batch.Runner, schedule string, rec *metrics.Recorder, textfile string, log *logger.Logger) *BatchJob {
	return &BatchJob{
		runner:   runner,
		schedule: schedule,
		metrics:  rec,
		textfile: textfile,
		logger:   log,
	}
}

// Name returns the job name
func (j *BatchJob) Name() string {
	return BatchJobName
}

// Schedule returns the cron schedule from the analysis config
func (j *BatchJob) Schedule() string {
	return j.schedule
}

// Run executes one batch.
// Skipped seasons are normal; failed seasons fail the job.
func (j *BatchJob) Run(ctx context.Context) error {
	report, err := j.runner.Run(ctx)
	j.record(report)
	if report != nil && j.metrics != nil && j.textfile != "" {
		if werr := j.metrics.WriteTextfile(j.textfile); werr != nil {
			j.logger.WithError(werr).WithField("path", j.textfile).Warn("metrics textfile write failed")
		}
	}
	if err != nil {
		return fmt.Errorf("batch run: %w", err)
	}

	if n := report.Failed(); n > 0 {
		return fmt.Errorf("batch %s: %d of %d seasons failed", report.RunID, n, len(report.Years))
	}
	return nil
}

// LastSummary returns the season counts of the latest run, nil before the first
func (j *BatchJob) LastSummary() *scheduler.RunSummary {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.last
}

func (j *BatchJob) record(report *contracts.BatchReport) {
	var summary *scheduler.RunSummary
	if report != nil {
		summary = &scheduler.RunSummary{
			RunID:     report.RunID,
			Seasons:   len(report.Years),
			Succeeded: report.Succeeded(),
			Skipped:   report.Skipped(),
			Failed:    report.Failed(),
		}
	}

	j.mu.Lock()
	j.last = summary
	j.mu.Unlock()
}
