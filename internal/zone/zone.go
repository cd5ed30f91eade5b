// Package zone estimates the vertical strike zone of a season.
package zone

import (
	"github.com/wonny/strikezone/internal/binning"
	"github.com/wonny/strikezone/internal/contracts"
	"github.com/wonny/strikezone/internal/dataset"
)

// Estimate returns the medians of the zone bottom and zone top columns,
// each over the rows where that column is a finite number. When either
// median is undefined or bottom >= top the default (1.5, 3.5) is returned.
func Estimate(records []contracts.Record) contracts.ZoneBoundary {
	bottoms := make([]float64, 0, len(records))
	tops := make([]float64, 0, len(records))
	for _, r := range records {
		if v, ok := dataset.ParseNumber(r.ZoneBottom); ok {
			bottoms = append(bottoms, v)
		}
		if v, ok := dataset.ParseNumber(r.ZoneTop); ok {
			tops = append(tops, v)
		}
	}

	bottom, okBottom := binning.Median(bottoms)
	top, okTop := binning.Median(tops)
	if !okBottom || !okTop || bottom >= top {
		return contracts.DefaultZone()
	}

	return contracts.ZoneBoundary{Bottom: bottom, Top: top, Derived: true}
}
