package commands

import (
	"context"
	"fmt"

	"gonum.org/v1/plot/vg"

	"github.com/wonny/strikezone/internal/analysisconfig"
	"github.com/wonny/strikezone/internal/batch"
	"github.com/wonny/strikezone/internal/ledger"
	"github.com/wonny/strikezone/internal/metrics"
	"github.com/wonny/strikezone/internal/publish"
	"github.com/wonny/strikezone/internal/render"
	"github.com/wonny/strikezone/pkg/config"
	"github.com/wonny/strikezone/pkg/database"
	"github.com/wonny/strikezone/pkg/logger"
	"github.com/wonny/strikezone/pkg/redis"
)

// app holds what every command needs after startup
type app struct {
	cfg      *config.Config
	analysis *analysisconfig.Config
	log      *logger.Logger

	db    *database.DB
	redis *redis.Client
}

// bootstrap loads the environment, the logger and the analysis config.
// An explicit --config must exist; the default path may be absent.
func bootstrap() (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Load analysis config
	var analysis *analysisconfig.Config
	if analysisPath != "" {
		analysis, _, err = analysisconfig.Load(analysisPath)
	} else {
		analysis, _, err = analysisconfig.LoadOrDefault(cfg.AnalysisConfig)
	}
	if err != nil {
		_ = log.Close()
		return nil, fmt.Errorf("load analysis config: %w", err)
	}

	return &app{cfg: cfg, analysis: analysis, log: log}, nil
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	_ = a.log.Close()
}

// store returns the Postgres ledger, or a no-op store without DATABASE_URL
func (a *app) store(ctx context.Context) (ledger.Store, error) {
	if !a.cfg.Database.Enabled() {
		return ledger.NopStore{}, nil
	}

	db, err := database.New(ctx, a.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	a.db = db

	repo := ledger.NewRepository(db.Pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure ledger schema: %w", err)
	}
	return repo, nil
}

// renderer builds the PNG renderer from the render section
func (a *app) renderer() *render.PNG {
	rc := a.analysis.Render
	return render.NewPNG(render.Options{
		OutputDir:  rc.OutputDir,
		ScatterDPI: rc.ScatterDPI,
		HeatmapDPI: rc.HeatmapDPI,
		Width:      vg.Length(rc.WidthIn) * vg.Inch,
		Height:     vg.Length(rc.HeightIn) * vg.Inch,
	})
}

// runner wires the optional cache, ledger and publisher into a batch runner
func (a *app) runner(ctx context.Context, opts ...batch.Option) (*batch.Runner, *metrics.Recorder, error) {
	rec := metrics.New()
	opts = append(opts, batch.WithMetrics(rec))

	store, err := a.store(ctx)
	if err != nil {
		return nil, nil, err
	}
	opts = append(opts, batch.WithStore(store))

	if a.cfg.Redis.Enabled {
		client, err := redis.New(ctx, a.cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.redis = client
		opts = append(opts, batch.WithCache(redis.NewCache(client, "strikezone"), a.cfg.Redis.TTL))
	}

	if a.cfg.S3.Enabled() {
		pub, err := publish.NewS3(ctx, a.cfg.S3)
		if err != nil {
			return nil, nil, fmt.Errorf("init publisher: %w", err)
		}
		opts = append(opts, batch.WithPublisher(pub))
	}

	return batch.New(a.analysis, a.renderer(), a.log, opts...), rec, nil
}
