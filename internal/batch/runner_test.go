package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/strikezone/internal/analysisconfig"
	"github.com/wonny/strikezone/internal/contracts"
	"github.com/wonny/strikezone/internal/ledger"
	"github.com/wonny/strikezone/internal/metrics"
	"github.com/wonny/strikezone/pkg/logger"
	"github.com/wonny/strikezone/pkg/redis"
)

// fakeRenderer records calls and writes nothing
type fakeRenderer struct {
	mu       sync.Mutex
	dir      string
	calls    []string
	failFor  int
	surfaces map[int]*contracts.StrikeRateSurface
}

func (f *fakeRenderer) Scatter(_ context.Context, year int, rs *contracts.RecordSet, _ contracts.ZoneBoundary) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if year == f.failFor {
		return "", errors.New("canvas too small")
	}
	f.calls = append(f.calls, fmt.Sprintf("scatter:%d:%d", year, rs.Len()))
	return filepath.Join(f.dir, fmt.Sprintf("strike_scatter_%d.png", year)), nil
}

func (f *fakeRenderer) Heatmap(_ context.Context, year int, s *contracts.StrikeRateSurface, _ contracts.ZoneBoundary) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf("heatmap:%d:%d", year, s.Grid.Total()))
	if f.surfaces == nil {
		f.surfaces = make(map[int]*contracts.StrikeRateSurface)
	}
	f.surfaces[year] = s
	return filepath.Join(f.dir, fmt.Sprintf("strike_heatmap_%d.png", year)), nil
}

// memStore is an in-memory ledger
type memStore struct {
	ledger.NopStore
	mu    sync.Mutex
	saved []contracts.YearResult
}

func (m *memStore) SaveYear(_ context.Context, _, _ string, res contracts.YearResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, res)
	return nil
}

type fakePublisher struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (p *fakePublisher) Publish(_ context.Context, _ string, year int, file string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	key := fmt.Sprintf("%d/%s", year, filepath.Base(file))
	p.keys = append(p.keys, key)
	return "s3://bucket/" + key, nil
}

const header = "game_date,px,pz,is_strike,sz_top,sz_bot\n"

// fixture lays out five seasons:
// 2020 ok, 2021 missing, 2022 missing sz_top, 2023 no usable rows, 2024 ok
func fixture(t *testing.T) *analysisconfig.Config {
	t.Helper()
	dir := t.TempDir()

	write := func(year int, content string) {
		path := filepath.Join(dir, fmt.Sprintf("pitches_%d.csv", year))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write(2020, header+
		"2020-04-01,0,2,1,3.4,1.6\n"+
		"2020-04-01,0,2,0,3.5,1.5\n"+
		"2020-04-02,5,5,1,3.6,1.7\n"+
		"2020-04-02,5,5,1,3.3,1.6\n"+
		"2020-04-03,abc,2,1,3.4,1.6\n")
	write(2022, "game_date,px,pz,is_strike,sz_bot\n2022-05-01,0,2,1,1.6\n")
	write(2023, header+"2023-05-01,,2,1,3.4,1.6\n")
	write(2024, header+"2024-05-01,0.2,2.4,1,3.4,1.6\n2024-05-02,-0.1,1.1,0,3.4,1.6\n")

	cfg := analysisconfig.Default()
	cfg.Datasets.Pattern = filepath.Join(dir, "pitches_{year}.csv")
	cfg.Render.OutputDir = filepath.Join(dir, "plots")
	cfg.Binning.BinsX, cfg.Binning.BinsZ = 10, 10
	return cfg
}

func TestRunIsolatesSeasons(t *testing.T) {
	for _, workers := range []int{1, 3} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			cfg := fixture(t)
			renderer := &fakeRenderer{dir: cfg.Render.OutputDir}
			store := &memStore{}
			rec := metrics.New()

			runner := New(cfg, renderer, logger.Nop(), WithStore(store), WithMetrics(rec), WithWorkers(workers))
			report, err := runner.Run(context.Background())
			require.NoError(t, err, "season failures are not batch errors")

			require.Len(t, report.Years, 5)
			for i, want := range []int{2020, 2021, 2022, 2023, 2024} {
				assert.Equal(t, want, report.Years[i].Year, "results keep year order")
			}

			y2020 := report.Years[0]
			assert.Equal(t, contracts.StatusSuccess, y2020.Status)
			assert.Equal(t, 5, y2020.RawRows)
			assert.Equal(t, 4, y2020.Cleaned)
			assert.Equal(t, 1, y2020.Dropped)
			assert.Equal(t, 4, y2020.Binned)
			assert.Len(t, y2020.Checksum, 64)
			require.NotNil(t, y2020.Zone)
			assert.True(t, y2020.Zone.Derived)
			assert.Len(t, y2020.Artifacts, 2)

			assert.Equal(t, contracts.StatusSkipped, report.Years[1].Status)
			assert.Equal(t, contracts.KindSourceNotFound, report.Years[1].Kind)

			assert.Equal(t, contracts.StatusFailed, report.Years[2].Status)
			assert.Equal(t, contracts.KindSchema, report.Years[2].Kind)
			assert.Contains(t, report.Years[2].Reason, "sz_top")

			assert.Equal(t, contracts.StatusFailed, report.Years[3].Status)
			assert.Equal(t, contracts.KindProcessing, report.Years[3].Kind)
			assert.Equal(t, contracts.StageBin, report.Years[3].Stage)

			assert.Equal(t, contracts.StatusSuccess, report.Years[4].Status)

			assert.Equal(t, 2, report.Succeeded())
			assert.Equal(t, 1, report.Skipped())
			assert.Equal(t, 2, report.Failed())
			assert.NotEmpty(t, report.RunID)
			assert.Len(t, report.ConfigHash, 64)

			assert.Len(t, store.saved, 5)
			assert.ElementsMatch(t, []string{
				"scatter:2020:4", "heatmap:2020:4",
				"scatter:2024:2", "heatmap:2024:0",
			}, renderer.calls)

			series, err := testutil.GatherAndCount(rec.Registry(), "strikezone_years_total")
			require.NoError(t, err)
			assert.Equal(t, 3, series)
		})
	}
}

func TestRunYearFilter(t *testing.T) {
	cfg := fixture(t)
	renderer := &fakeRenderer{dir: cfg.Render.OutputDir}

	report, err := New(cfg, renderer, logger.Nop(), WithYears([]int{2024, 2020, 1999})).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Years, 2)
	assert.Equal(t, 2020, report.Years[0].Year)
	assert.Equal(t, 2024, report.Years[1].Year)
}

func TestRunRenderFailure(t *testing.T) {
	cfg := fixture(t)
	renderer := &fakeRenderer{dir: cfg.Render.OutputDir, failFor: 2020}

	report, err := New(cfg, renderer, logger.Nop(), WithYears([]int{2020, 2024})).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, contracts.StatusFailed, report.Years[0].Status)
	assert.Equal(t, contracts.KindProcessing, report.Years[0].Kind)
	assert.Equal(t, contracts.StageRender, report.Years[0].Stage)
	assert.Equal(t, contracts.StatusSuccess, report.Years[1].Status)
}

func TestRunPublishes(t *testing.T) {
	cfg := fixture(t)
	renderer := &fakeRenderer{dir: cfg.Render.OutputDir}
	pub := &fakePublisher{}

	report, err := New(cfg, renderer, logger.Nop(), WithPublisher(pub), WithYears([]int{2024})).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, contracts.StatusSuccess, report.Years[0].Status)
	assert.Equal(t, []string{"2024/strike_scatter_2024.png", "2024/strike_heatmap_2024.png"}, pub.keys)

	failing := &fakePublisher{err: errors.New("no such bucket")}
	report, err = New(cfg, renderer, logger.Nop(), WithPublisher(failing), WithYears([]int{2024})).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, contracts.StatusFailed, report.Years[0].Status)
	assert.Equal(t, contracts.StagePublish, report.Years[0].Stage)
}

func TestRunExportsParquet(t *testing.T) {
	cfg := fixture(t)
	cfg.Export.Parquet = true
	renderer := &fakeRenderer{dir: cfg.Render.OutputDir}

	report, err := New(cfg, renderer, logger.Nop(), WithYears([]int{2020})).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, contracts.StatusSuccess, report.Years[0].Status)

	parquetPath := filepath.Join(cfg.Render.OutputDir, "pitches_clean_2020.parquet")
	assert.Contains(t, report.Years[0].Artifacts, parquetPath)
	_, statErr := os.Stat(parquetPath)
	assert.NoError(t, statErr)
}

func TestRunWithDisabledCache(t *testing.T) {
	cfg := fixture(t)
	renderer := &fakeRenderer{dir: cfg.Render.OutputDir}
	cache := redis.NewCache(redis.Disabled(), "strikezone")

	report, err := New(cfg, renderer, logger.Nop(), WithCache(cache, redis.TTLGrid), WithYears([]int{2020, 2023})).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, contracts.StatusSuccess, report.Years[0].Status)
	assert.False(t, report.Years[0].CacheHit)
	assert.Equal(t, 4, report.Years[0].Binned)
	assert.Equal(t, contracts.StageBin, report.Years[1].Stage, "binning errors pass through the cache")
}

func TestRunCanceled(t *testing.T) {
	cfg := fixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := New(cfg, &fakeRenderer{}, logger.Nop()).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Equal(t, 0, report.Succeeded())
}
