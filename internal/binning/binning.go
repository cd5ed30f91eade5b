// Package binning builds the strike-rate surface: two 2D histograms of pitch
// location (all pitches, called strikes) over shared edges, and their ratio.
package binning

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/wonny/strikezone/internal/contracts"
)

// Config controls the grid resolution and the axis trimming
type Config struct {
	BinsX           int     `yaml:"bins_x" json:"bins_x" validate:"gte=1,lte=2000"`
	BinsZ           int     `yaml:"bins_z" json:"bins_z" validate:"gte=1,lte=2000"`
	LowerPercentile float64 `yaml:"lower_percentile" json:"lower_percentile" validate:"gte=0,lt=1"`
	UpperPercentile float64 `yaml:"upper_percentile" json:"upper_percentile" validate:"gt=0,lte=1,gtfield=LowerPercentile"`
}

// DefaultConfig returns 150×150 bins over the 1st to 99th percentile
func DefaultConfig() Config {
	return Config{
		BinsX:           150,
		BinsZ:           150,
		LowerPercentile: 0.01,
		UpperPercentile: 0.99,
	}
}

func (c Config) validate() error {
	if c.BinsX < 1 || c.BinsZ < 1 {
		return fmt.Errorf("bins must be >= 1 (got %d×%d)", c.BinsX, c.BinsZ)
	}
	if c.LowerPercentile < 0 || c.UpperPercentile > 1 || c.LowerPercentile >= c.UpperPercentile {
		return fmt.Errorf("percentiles must satisfy 0 <= lower < upper <= 1 (got %g, %g)", c.LowerPercentile, c.UpperPercentile)
	}
	return nil
}

// Range is a closed axis interval [Lo, Hi]
type Range struct {
	Lo float64 `json:"lo"`
	Hi float64 `json:"hi"`
}

// Ranges returns the percentile-trimmed axis ranges of the records
func Ranges(records []contracts.Record, cfg Config) (Range, Range, error) {
	if len(records) == 0 {
		return Range{}, Range{}, contracts.Processing(contracts.StageBin, contracts.ErrEmptyRecordSet)
	}

	xs := make([]float64, len(records))
	zs := make([]float64, len(records))
	for i, r := range records {
		xs[i] = r.PX
		zs[i] = r.PZ
	}
	sort.Float64s(xs)
	sort.Float64s(zs)

	xr := Range{Lo: quantileSorted(xs, cfg.LowerPercentile), Hi: quantileSorted(xs, cfg.UpperPercentile)}
	zr := Range{Lo: quantileSorted(zs, cfg.LowerPercentile), Hi: quantileSorted(zs, cfg.UpperPercentile)}
	return xr, zr, nil
}

// Bin computes the strike-rate surface with percentile-derived ranges
func Bin(records []contracts.Record, cfg Config) (*contracts.StrikeRateSurface, error) {
	if err := cfg.validate(); err != nil {
		return nil, contracts.Processing(contracts.StageBin, err)
	}
	xr, zr, err := Ranges(records, cfg)
	if err != nil {
		return nil, err
	}
	return BinRange(records, cfg, xr, zr)
}

// BinRange histograms the records over explicit axis ranges.
// Values outside a range are not counted; the last bin includes Hi.
func BinRange(records []contracts.Record, cfg Config, xr, zr Range) (*contracts.StrikeRateSurface, error) {
	if len(records) == 0 {
		return nil, contracts.Processing(contracts.StageBin, contracts.ErrEmptyRecordSet)
	}
	if err := cfg.validate(); err != nil {
		return nil, contracts.Processing(contracts.StageBin, err)
	}

	grid, err := Histogram(records, Edges(xr, cfg.BinsX), Edges(zr, cfg.BinsZ))
	if err != nil {
		return nil, err
	}
	return Surface(grid), nil
}

// Edges returns bins+1 uniform edges over r.
// A degenerate range is widened by 0.5 on each side.
func Edges(r Range, bins int) []float64 {
	lo, hi := r.Lo, r.Hi
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}

	edges := make([]float64, bins+1)
	step := (hi - lo) / float64(bins)
	for i := range edges {
		edges[i] = lo + float64(i)*step
	}
	edges[bins] = hi
	return edges
}

// Histogram counts records into the grid spanned by the given edges
func Histogram(records []contracts.Record, xEdges, zEdges []float64) (*contracts.BinGrid, error) {
	if len(xEdges) < 2 || len(zEdges) < 2 {
		return nil, contracts.Processing(contracts.StageBin, errors.New("need at least two edges per axis"))
	}

	nx, nz := len(xEdges)-1, len(zEdges)-1
	grid := &contracts.BinGrid{
		XEdges:  xEdges,
		ZEdges:  zEdges,
		All:     newCounts(nx, nz),
		Strikes: newCounts(nx, nz),
	}

	for _, r := range records {
		ix := binIndex(xEdges, r.PX)
		iz := binIndex(zEdges, r.PZ)
		if ix < 0 || iz < 0 {
			continue
		}
		grid.All[ix][iz]++
		if r.IsStrike == 1 {
			grid.Strikes[ix][iz]++
		}
	}
	return grid, nil
}

// Surface derives the per-bin strike rate; empty bins are NaN
func Surface(grid *contracts.BinGrid) *contracts.StrikeRateSurface {
	rate := make([][]float64, len(grid.All))
	for ix, col := range grid.All {
		rate[ix] = make([]float64, len(col))
		for iz, all := range col {
			if all == 0 {
				rate[ix][iz] = math.NaN()
				continue
			}
			rate[ix][iz] = float64(grid.Strikes[ix][iz]) / float64(all)
		}
	}
	return &contracts.StrikeRateSurface{Grid: grid, Rate: rate}
}

// binIndex finds the bin of v by searching the edge array, or -1 when v is
// outside [edges[0], edges[last]]. v equal to the last edge goes in the last bin.
func binIndex(edges []float64, v float64) int {
	last := len(edges) - 1
	if math.IsNaN(v) || v < edges[0] || v > edges[last] {
		return -1
	}
	if v == edges[last] {
		return last - 1
	}
	// 첫 번째 edge > v 위치
	i := sort.Search(len(edges), func(i int) bool { return edges[i] > v })
	return i - 1
}

func newCounts(nx, nz int) [][]int {
	counts := make([][]int, nx)
	for i := range counts {
		counts[i] = make([]int, nz)
	}
	return counts
}
