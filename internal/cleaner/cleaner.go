// Package cleaner turns a season's raw dataset into a RecordSet.
package cleaner

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/wonny/strikezone/internal/contracts"
	"github.com/wonny/strikezone/internal/dataset"
)

// Columns names the dataset columns the pipeline reads
type Columns struct {
	Horizontal string `yaml:"horizontal" json:"horizontal" validate:"required"`
	Vertical   string `yaml:"vertical" json:"vertical" validate:"required"`
	Outcome    string `yaml:"outcome" json:"outcome" validate:"required"`
	ZoneTop    string `yaml:"zone_top" json:"zone_top" validate:"required"`
	ZoneBottom string `yaml:"zone_bottom" json:"zone_bottom" validate:"required"`
}

// DefaultColumns returns the Statcast column names
func DefaultColumns() Columns {
	return Columns{
		Horizontal: "px",
		Vertical:   "pz",
		Outcome:    "is_strike",
		ZoneTop:    "sz_top",
		ZoneBottom: "sz_bot",
	}
}

// required lists the columns in the order their absence is reported
func (c Columns) required() []string {
	return []string{c.Horizontal, c.Vertical, c.Outcome, c.ZoneTop, c.ZoneBottom}
}

// Clean reads the dataset at path
func Clean(ctx context.Context, year int, path string, cols Columns) (*contracts.RecordSet, error) {
	r, err := dataset.Open(path)
	if err != nil {
		return nil, contracts.Processing(contracts.StageClean, err)
	}
	defer r.Close()

	return CleanReader(ctx, year, path, r, cols)
}

// CleanReader checks the header, coerces the position and outcome columns
// and drops every row where one of them fails. Zone columns are carried as
// text. Nothing else is filtered and row order is kept.
func CleanReader(ctx context.Context, year int, source string, r dataset.Reader, cols Columns) (*contracts.RecordSet, error) {
	header := r.Header()
	idx := make(map[string]int, 5)
	for _, name := range cols.required() {
		i := dataset.Index(header, name)
		if i < 0 {
			return nil, &contracts.SchemaError{Field: name, Source: source}
		}
		idx[name] = i
	}
	ix, iz, iout := idx[cols.Horizontal], idx[cols.Vertical], idx[cols.Outcome]
	itop, ibot := idx[cols.ZoneTop], idx[cols.ZoneBottom]

	rs := &contracts.RecordSet{
		Year:    year,
		Source:  source,
		Dropped: make(map[string]int),
	}

	for {
		if rs.RawRows%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		row, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, contracts.Processing(contracts.StageClean, fmt.Errorf("%s: %w", source, err))
		}
		rs.RawRows++

		px, ok := dataset.ParseNumber(row[ix])
		if !ok {
			rs.Dropped[cols.Horizontal]++
			continue
		}
		pz, ok := dataset.ParseNumber(row[iz])
		if !ok {
			rs.Dropped[cols.Vertical]++
			continue
		}
		outcome, ok := dataset.ParseOutcome(row[iout])
		if !ok {
			rs.Dropped[cols.Outcome]++
			continue
		}

		strike := 0
		if outcome > 0 {
			strike = 1
		}

		rs.Records = append(rs.Records, contracts.Record{
			PX:         px,
			PZ:         pz,
			IsStrike:   strike,
			ZoneTop:    row[itop],
			ZoneBottom: row[ibot],
		})
	}

	return rs, nil
}
