package batch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/wonny/strikezone/internal/contracts"
	"github.com/wonny/strikezone/pkg/config"
	"github.com/wonny/strikezone/pkg/logger"
	"github.com/wonny/strikezone/pkg/redis"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	client, err := redis.New(ctx, config.RedisConfig{Host: host, Port: port.Port(), Enabled: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRunReusesCachedGrid(t *testing.T) {
	client := setupRedis(t)
	cache := redis.NewCache(client, "strikezone-test")
	cfg := fixture(t)

	first := &fakeRenderer{dir: cfg.Render.OutputDir}
	report, err := New(cfg, first, logger.Nop(), WithCache(cache, time.Minute), WithYears([]int{2020})).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, contracts.StatusSuccess, report.Years[0].Status)
	assert.False(t, report.Years[0].CacheHit)

	second := &fakeRenderer{dir: cfg.Render.OutputDir}
	report, err = New(cfg, second, logger.Nop(), WithCache(cache, time.Minute), WithYears([]int{2020})).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, contracts.StatusSuccess, report.Years[0].Status)
	assert.True(t, report.Years[0].CacheHit)
	assert.Equal(t, 4, report.Years[0].Binned)

	computed, cached := first.surfaces[2020], second.surfaces[2020]
	require.NotNil(t, computed)
	require.NotNil(t, cached)

	assert.Equal(t, computed.Grid.XEdges, cached.Grid.XEdges)
	assert.Equal(t, computed.Grid.ZEdges, cached.Grid.ZEdges)
	assert.Equal(t, computed.Grid.All, cached.Grid.All)
	assert.Equal(t, computed.Grid.Strikes, cached.Grid.Strikes)

	// 빈 bin(NaN) 위치까지 동일해야 함
	require.Len(t, cached.Rate, len(computed.Rate))
	for ix := range computed.Rate {
		for iz := range computed.Rate[ix] {
			want, wantOK := computed.At(ix, iz)
			got, gotOK := cached.At(ix, iz)
			assert.Equal(t, wantOK, gotOK, "bin (%d,%d) defined", ix, iz)
			assert.Equal(t, want, got, "bin (%d,%d) rate", ix, iz)
		}
	}
	assert.Equal(t, computed.Defined(), cached.Defined())
	assert.Less(t, cached.Defined(), cfg.Binning.BinsX*cfg.Binning.BinsZ, "fixture leaves empty bins")

	// 설정이 바뀌면 다른 key
	cfg.Binning.BinsX = 5
	report, err = New(cfg, &fakeRenderer{dir: cfg.Render.OutputDir}, logger.Nop(), WithCache(cache, time.Minute), WithYears([]int{2020})).Run(context.Background())
	require.NoError(t, err)
	assert.False(t, report.Years[0].CacheHit)
}
