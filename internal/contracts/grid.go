package contracts

import "math"

// BinGrid holds two histograms over identical edges.
// All[ix][iz] counts every pitch, Strikes[ix][iz] only called strikes.
type BinGrid struct {
	XEdges  []float64 `json:"x_edges"`
	ZEdges  []float64 `json:"z_edges"`
	All     [][]int   `json:"all"`
	Strikes [][]int   `json:"strikes"`
}

// BinsX returns the number of horizontal bins
func (g *BinGrid) BinsX() int {
	return len(g.XEdges) - 1
}

// BinsZ returns the number of vertical bins
func (g *BinGrid) BinsZ() int {
	return len(g.ZEdges) - 1
}

// Total returns the number of pitches that fell inside the grid
func (g *BinGrid) Total() int {
	n := 0
	for _, col := range g.All {
		for _, c := range col {
			n += c
		}
	}
	return n
}

// StrikeRateSurface is a BinGrid plus the per-bin strike rate.
// Bins with no pitches have no rate; they are NaN in Rate and At reports ok=false.
type StrikeRateSurface struct {
	Grid *BinGrid
	Rate [][]float64
}

// At returns the strike rate of bin (ix, iz).
// ok is false when the bin is empty or out of range.
func (s *StrikeRateSurface) At(ix, iz int) (float64, bool) {
	if ix < 0 || ix >= len(s.Rate) || iz < 0 || iz >= len(s.Rate[ix]) {
		return 0, false
	}
	r := s.Rate[ix][iz]
	if math.IsNaN(r) {
		return 0, false
	}
	return r, true
}

// Defined returns how many bins carry a rate
func (s *StrikeRateSurface) Defined() int {
	n := 0
	for _, col := range s.Rate {
		for _, r := range col {
			if !math.IsNaN(r) {
				n++
			}
		}
	}
	return n
}

// Default zone used when medians are unavailable or inverted (feet)
const (
	DefaultZoneBottom = 1.5
	DefaultZoneTop    = 3.5
)

// PlateHalfWidth is half of home plate plus a ball radius, in feet
const PlateHalfWidth = 0.83

// ZoneBoundary is the vertical extent of the strike zone in feet.
// Derived is false when the default was substituted.
type ZoneBoundary struct {
	Bottom  float64 `json:"bottom"`
	Top     float64 `json:"top"`
	Derived bool    `json:"derived"`
}

// DefaultZone returns the fallback boundary
func DefaultZone() ZoneBoundary {
	return ZoneBoundary{Bottom: DefaultZoneBottom, Top: DefaultZoneTop}
}
