// Package batch runs the per-season pipeline over the configured years.
// Every season ends in its own YearResult; one season failing never stops
// the others.
package batch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/strikezone/internal/analysisconfig"
	"github.com/wonny/strikezone/internal/binning"
	"github.com/wonny/strikezone/internal/cleaner"
	"github.com/wonny/strikezone/internal/contracts"
	"github.com/wonny/strikezone/internal/dataset"
	"github.com/wonny/strikezone/internal/export"
	"github.com/wonny/strikezone/internal/ledger"
	"github.com/wonny/strikezone/internal/metrics"
	"github.com/wonny/strikezone/internal/publish"
	"github.com/wonny/strikezone/internal/render"
	"github.com/wonny/strikezone/internal/zone"
	"github.com/wonny/strikezone/pkg/logger"
	"github.com/wonny/strikezone/pkg/redis"
)

// Runner executes a batch
type Runner struct {
	cfg      *analysisconfig.Config
	renderer render.Renderer
	logger   *logger.Logger

	publisher publish.Publisher
	cache     *redis.Cache
	cacheTTL  time.Duration
	store     ledger.Store
	metrics   *metrics.Recorder

	years   []int
	workers int
}

// Option configures a Runner
type Option func(*Runner)

// WithPublisher uploads artifacts of successful seasons
func WithPublisher(p publish.Publisher) Option {
	return func(r *Runner) { r.publisher = p }
}

// WithCache reuses bin grids across runs
func WithCache(c *redis.Cache, ttl time.Duration) Option {
	return func(r *Runner) {
		r.cache = c
		r.cacheTTL = ttl
	}
}

// WithStore records results in the run ledger
func WithStore(s ledger.Store) Option {
	return func(r *Runner) { r.store = s }
}

// WithMetrics records results on a Prometheus registry
func WithMetrics(m *metrics.Recorder) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithYears restricts the batch to a subset of the configured seasons
func WithYears(years []int) Option {
	return func(r *Runner) { r.years = years }
}

// WithWorkers overrides the configured worker count
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// New creates a Runner
func New(cfg *analysisconfig.Config, renderer render.Renderer, log *logger.Logger, opts ...Option) *Runner {
	r := &Runner{
		cfg:      cfg,
		renderer: renderer,
		logger:   log,
		store:    ledger.NopStore{},
		cacheTTL: redis.TTLGrid,
		workers:  cfg.Workers,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.years = cfg.FilterYears(r.years)
	return r
}

// Run processes every season in ascending order and returns the report.
// Season failures are recorded in the report, not returned; the error is
// non-nil only when ctx ends before the batch completes.
func (r *Runner) Run(ctx context.Context) (*contracts.BatchReport, error) {
	configHash, err := analysisconfig.Hash(r.cfg)
	if err != nil {
		return nil, fmt.Errorf("hash analysis config: %w", err)
	}
	gridHash, err := analysisconfig.GridHash(r.cfg)
	if err != nil {
		return nil, fmt.Errorf("hash binning config: %w", err)
	}

	report := &contracts.BatchReport{
		RunID:      uuid.NewString(),
		ConfigHash: configHash,
		StartedAt:  time.Now(),
		Years:      make([]contracts.YearResult, len(r.years)),
	}

	log := r.logger.WithFields(map[string]interface{}{
		"run_id":  report.RunID,
		"workers": r.workers,
	})
	log.Infof("batch started: %d seasons", len(r.years))

	if r.workers <= 1 {
		for i, year := range r.years {
			report.Years[i] = r.runYear(ctx, report.RunID, gridHash, year)
		}
	} else {
		// 각 goroutine은 자기 index만 기록
		g := new(errgroup.Group)
		g.SetLimit(r.workers)
		for i, year := range r.years {
			i, year := i, year
			g.Go(func() error {
				report.Years[i] = r.runYear(ctx, report.RunID, gridHash, year)
				return nil
			})
		}
		_ = g.Wait()
	}
	report.Duration = time.Since(report.StartedAt)

	for _, res := range report.Years {
		if err := r.store.SaveYear(ctx, report.RunID, configHash, res); err != nil {
			log.WithYear(res.Year).WithError(err).Warn("ledger write failed")
		}
	}
	if r.metrics != nil {
		r.metrics.ObserveBatch(report)
	}

	log.WithFields(map[string]interface{}{
		"succeeded": report.Succeeded(),
		"skipped":   report.Skipped(),
		"failed":    report.Failed(),
		"duration":  report.Duration.String(),
	}).Info("batch finished")

	return report, ctx.Err()
}

// runYear never returns an error; the outcome is in the result
func (r *Runner) runYear(ctx context.Context, runID, gridHash string, year int) contracts.YearResult {
	start := time.Now()
	path := r.cfg.DatasetPath(year)
	res := contracts.YearResult{Year: year, Source: path, Status: contracts.StatusSuccess}
	log := r.logger.WithYear(year).WithFields(map[string]interface{}{
		"run_id": runID,
		"source": path,
	})

	if stage, err := r.process(ctx, runID, gridHash, &res); err != nil {
		res.Fail(stage, err)
	}
	res.Duration = time.Since(start)

	switch res.Status {
	case contracts.StatusSuccess:
		log.WithFields(map[string]interface{}{
			"raw_rows":  res.RawRows,
			"cleaned":   res.Cleaned,
			"dropped":   res.Dropped,
			"binned":    res.Binned,
			"cache_hit": res.CacheHit,
			"zone":      fmt.Sprintf("%.2f-%.2f", res.Zone.Bottom, res.Zone.Top),
			"artifacts": len(res.Artifacts),
		}).Info("season processed")
	case contracts.StatusSkipped:
		log.WithField("reason", res.Reason).Warn("season skipped")
	default:
		log.WithFields(map[string]interface{}{
			"kind":   string(res.Kind),
			"stage":  string(res.Stage),
			"reason": res.Reason,
		}).Error("season failed")
	}
	return res
}

// process runs the stages in order and reports the stage that failed
func (r *Runner) process(ctx context.Context, runID, gridHash string, res *contracts.YearResult) (contracts.Stage, error) {
	cfg := r.cfg

	rs, err := cleaner.Clean(ctx, res.Year, res.Source, cfg.Columns)
	if err != nil {
		return contracts.StageClean, err
	}
	res.RawRows = rs.RawRows
	res.Cleaned = rs.Len()
	res.Dropped = rs.DroppedTotal()

	checksum, err := dataset.Checksum(res.Source)
	if err != nil {
		return contracts.StageClean, contracts.Processing(contracts.StageClean, err)
	}
	res.Checksum = checksum

	zb := zone.Estimate(rs.Records)
	res.Zone = &zb

	surface, hit, err := r.bin(ctx, res.Year, checksum, gridHash, rs)
	if err != nil {
		return contracts.StageBin, err
	}
	res.Binned = surface.Grid.Total()
	res.CacheHit = hit

	if cfg.Render.Scatter {
		p, err := r.renderer.Scatter(ctx, res.Year, rs, zb)
		if err != nil {
			return contracts.StageRender, contracts.Processing(contracts.StageRender, err)
		}
		res.Artifacts = append(res.Artifacts, p)
	}
	if cfg.Render.Heatmap {
		p, err := r.renderer.Heatmap(ctx, res.Year, surface, zb)
		if err != nil {
			return contracts.StageRender, contracts.Processing(contracts.StageRender, err)
		}
		res.Artifacts = append(res.Artifacts, p)
	}

	if cfg.Export.Parquet {
		p := filepath.Join(cfg.Render.OutputDir, export.FileName(res.Year))
		if err := export.WriteParquet(p, rs, cfg.Export.Compression); err != nil {
			return contracts.StageExport, contracts.Processing(contracts.StageExport, err)
		}
		res.Artifacts = append(res.Artifacts, p)
	}

	if r.publisher != nil {
		for _, p := range res.Artifacts {
			uri, err := r.publisher.Publish(ctx, runID, res.Year, p)
			if err != nil {
				return contracts.StagePublish, contracts.Processing(contracts.StagePublish, err)
			}
			r.logger.WithYear(res.Year).WithField("uri", uri).Debug("artifact published")
		}
	}

	return "", nil
}

// bin computes the surface, going through the grid cache when configured.
// Only counts and edges are cached; rates are derived again after loading.
func (r *Runner) bin(ctx context.Context, year int, checksum, gridHash string, rs *contracts.RecordSet) (*contracts.StrikeRateSurface, bool, error) {
	if r.cache == nil {
		s, err := binning.Bin(rs.Records, r.cfg.Binning)
		return s, false, err
	}

	var grid contracts.BinGrid
	hit, err := r.cache.GetOrSet(ctx, redis.GridKey(year, checksum, gridHash), &grid, r.cacheTTL, func() (interface{}, error) {
		s, err := binning.Bin(rs.Records, r.cfg.Binning)
		if err != nil {
			return nil, err
		}
		return s.Grid, nil
	})
	if err != nil {
		return nil, false, err
	}
	return binning.Surface(&grid), hit, nil
}
