package scheduler

import (
	"context"
	"time"
)

// historyLimit caps the results kept per job
const historyLimit = 100

// Job represents a scheduled job
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	// Name returns the job name
	Name() string

	// Run executes the job
	Run(ctx context.Context) error

	// Schedule returns the cron schedule expression, seconds first
	// Examples: "0 0 6 * * *" (every day at 6 AM)
	//           "@daily", "@every 1h"
	Schedule() string
}

// Summarizer is implemented by jobs that can report season counts of their last run
type Summarizer interface {
	LastSummary() *RunSummary
}

// RunSummary is the season breakdown of one batch run
type RunSummary struct {
	RunID     string `json:"run_id"`
	Seasons   int    `json:"seasons"`
	Succeeded int    `json:"succeeded"`
	Skipped   int    `json:"skipped"`
	Failed    int    `json:"failed"`
}

// JobResult represents the result of a job execution
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Attempts  int           `json:"attempts"`
	Summary   *RunSummary   `json:"summary,omitempty"`
}

// JobHistory stores the latest results of one job, oldest first
type JobHistory struct {
	Results []JobResult
}

// AddResult appends a result, dropping the oldest past the limit
func (h *JobHistory) AddResult(result JobResult) {
	h.Results = append(h.Results, result)
	if len(h.Results) > historyLimit {
		h.Results = h.Results[len(h.Results)-historyLimit:]
	}
}

// stats folds the history into the counters of JobStats
func (h *JobHistory) stats(js *JobStats) {
	js.TotalRuns = len(h.Results)
	for i := range h.Results {
		r := &h.Results[i]
		if r.Success {
			js.SuccessCount++
			js.LastSuccess = &r.StartTime
		} else {
			js.FailureCount++
			js.LastFailure = &r.StartTime
		}
	}
	if js.TotalRuns == 0 {
		return
	}

	last := &h.Results[js.TotalRuns-1]
	js.LastRun = &last.StartTime
	js.LastSummary = last.Summary
	js.SuccessRate = float64(js.SuccessCount) / float64(js.TotalRuns)
}
