// Package render draws the per-season plots.
package render

import (
	"context"
	"fmt"

	"github.com/wonny/strikezone/internal/contracts"
)

// Renderer produces the visual artifacts of a season and returns their paths
type Renderer interface {
	Scatter(ctx context.Context, year int, rs *contracts.RecordSet, zone contracts.ZoneBoundary) (string, error)
	Heatmap(ctx context.Context, year int, s *contracts.StrikeRateSurface, zone contracts.ZoneBoundary) (string, error)
}

// ScatterFile is the file name of a season's scatter plot
func ScatterFile(year int) string {
	return fmt.Sprintf("strike_scatter_%d.png", year)
}

// HeatmapFile is the file name of a season's strike-rate heatmap
func HeatmapFile(year int) string {
	return fmt.Sprintf("strike_heatmap_%d.png", year)
}
