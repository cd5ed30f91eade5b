// Package splitter partitions a combined multi-season dataset into one
// dataset per calendar year.
package splitter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wonny/strikezone/internal/contracts"
	"github.com/wonny/strikezone/internal/dataset"
)

// YearPlaceholder is replaced by the season in output patterns
const YearPlaceholder = "{year}"

// Config describes one split run
type Config struct {
	Source        string
	DateColumn    string
	StartYear     int
	EndYear       int
	OutputPattern string // e.g. ../datasets/pitches_{year}.csv
}

// Output is the dataset written for one year
type Output struct {
	Year int    `json:"year"`
	Path string `json:"path"`
	Rows int    `json:"rows"`
}

// Result reports what a split wrote
type Result struct {
	Source      string   `json:"source"`
	TotalRows   int      `json:"total_rows"`
	Unparseable int      `json:"unparseable"`
	OutOfRange  int      `json:"out_of_range"`
	Outputs     []Output `json:"outputs"`
}

// OutputPath resolves the dataset path of a year
func OutputPath(pattern string, year int) string {
	return strings.ReplaceAll(pattern, YearPlaceholder, strconv.Itoa(year))
}

func (c Config) validate() error {
	if c.Source == "" {
		return errors.New("split source is required")
	}
	if c.DateColumn == "" {
		return errors.New("date column is required")
	}
	if c.StartYear > c.EndYear {
		return fmt.Errorf("start year %d is after end year %d", c.StartYear, c.EndYear)
	}
	if !strings.Contains(c.OutputPattern, YearPlaceholder) {
		return fmt.Errorf("output pattern %q has no %s placeholder", c.OutputPattern, YearPlaceholder)
	}
	return nil
}

// Split streams the source once and writes every row whose date parses to a
// year in [StartYear, EndYear] to that year's dataset, keeping source order.
// Rows with unparseable dates go nowhere. Every year in range gets a file,
// header-only when nothing matched. The year files replace existing ones
// together: if any year fails to commit, the others keep their previous content.
func Split(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	r, err := dataset.Open(cfg.Source)
	if err != nil {
		return nil, contracts.Processing(contracts.StageSplit, err)
	}
	defer r.Close()

	header := r.Header()
	parseYear := dataset.YearParser(r)
	dateIdx := dataset.Index(header, cfg.DateColumn)
	if dateIdx < 0 {
		return nil, &contracts.SchemaError{Field: cfg.DateColumn, Source: cfg.Source}
	}

	writers := make(map[int]*dataset.Writer, cfg.EndYear-cfg.StartYear+1)
	abort := func() {
		for _, w := range writers {
			w.Abort()
		}
	}

	for year := cfg.StartYear; year <= cfg.EndYear; year++ {
		w, err := dataset.NewWriter(OutputPath(cfg.OutputPattern, year), header)
		if err != nil {
			abort()
			return nil, contracts.Processing(contracts.StageSplit, err)
		}
		writers[year] = w
	}

	result := &Result{Source: cfg.Source}
	for {
		if result.TotalRows%4096 == 0 {
			if err := ctx.Err(); err != nil {
				abort()
				return nil, err
			}
		}

		row, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			abort()
			return nil, contracts.Processing(contracts.StageSplit, fmt.Errorf("%s: %w", cfg.Source, err))
		}
		result.TotalRows++

		year, ok := parseYear(row[dateIdx])
		if !ok {
			result.Unparseable++
			continue
		}
		w, inRange := writers[year]
		if !inRange {
			result.OutOfRange++
			continue
		}
		if err := w.Write(row); err != nil {
			abort()
			return nil, contracts.Processing(contracts.StageSplit, err)
		}
	}

	ordered := make([]*dataset.Writer, 0, len(writers))
	for year := cfg.StartYear; year <= cfg.EndYear; year++ {
		ordered = append(ordered, writers[year])
	}
	if err := dataset.CommitAll(ordered); err != nil {
		return nil, contracts.Processing(contracts.StageSplit, err)
	}
	for year := cfg.StartYear; year <= cfg.EndYear; year++ {
		w := writers[year]
		result.Outputs = append(result.Outputs, Output{Year: year, Path: w.Path(), Rows: w.Rows()})
	}

	return result, nil
}
