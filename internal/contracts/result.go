package contracts

import (
	"time"
)

// Status is the outcome of one season in a batch
type Status string

const (
	StatusSuccess Status = "success"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// ErrorKind classifies why a season did not succeed
type ErrorKind string

const (
	KindSchema         ErrorKind = "schema"
	KindSourceNotFound ErrorKind = "source_not_found"
	KindProcessing     ErrorKind = "processing"
)

// YearResult is the per-season record of a batch run
type YearResult struct {
	Year      int           `json:"year"`
	Source    string        `json:"source"`
	Status    Status        `json:"status"`
	Kind      ErrorKind     `json:"kind,omitempty"`
	Stage     Stage         `json:"stage,omitempty"`
	Reason    string        `json:"reason,omitempty"`
	RawRows   int           `json:"raw_rows"`
	Cleaned   int           `json:"cleaned"`
	Dropped   int           `json:"dropped"`
	Binned    int           `json:"binned"`
	Zone      *ZoneBoundary `json:"zone,omitempty"`
	Checksum  string        `json:"checksum,omitempty"`
	CacheHit  bool          `json:"cache_hit"`
	Artifacts []string      `json:"artifacts,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// Fail records err on the result using the error taxonomy
func (r *YearResult) Fail(stage Stage, err error) {
	r.Status, r.Kind = Classify(err)
	r.Stage = stage
	r.Reason = err.Error()
}

// BatchReport collects the ordered results of one batch run
type BatchReport struct {
	RunID      string        `json:"run_id"`
	ConfigHash string        `json:"config_hash"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	Years      []YearResult  `json:"years"`
}

// Count returns how many years ended with status
func (b *BatchReport) Count(status Status) int {
	n := 0
	for _, y := range b.Years {
		if y.Status == status {
			n++
		}
	}
	return n
}

// Succeeded returns the number of successful years
func (b *BatchReport) Succeeded() int { return b.Count(StatusSuccess) }

// Skipped returns the number of skipped years
func (b *BatchReport) Skipped() int { return b.Count(StatusSkipped) }

// Failed returns the number of failed years
func (b *BatchReport) Failed() int { return b.Count(StatusFailed) }
