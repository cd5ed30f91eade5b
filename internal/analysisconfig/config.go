// Package analysisconfig loads the YAML file that describes a batch:
// which seasons, where their datasets live, and how to bin and render them.
package analysisconfig

import (
	"sort"
	"strings"

	"github.com/wonny/strikezone/internal/binning"
	"github.com/wonny/strikezone/internal/cleaner"
	"github.com/wonny/strikezone/internal/splitter"
)

// DefaultPath is where the CLI looks when --config is not given
const DefaultPath = "strikezone.yaml"

// Config is the analysis configuration (SSOT for domain options)
type Config struct {
	Years    YearRange       `yaml:"years" json:"years"`
	Datasets DatasetsConfig  `yaml:"datasets" json:"datasets"`
	Split    SplitConfig     `yaml:"split" json:"split"`
	Columns  cleaner.Columns `yaml:"columns" json:"columns"`
	Binning  binning.Config  `yaml:"binning" json:"binning"`
	Render   RenderConfig    `yaml:"render" json:"render"`
	Export   ExportConfig    `yaml:"export" json:"export"`
	Workers  int             `yaml:"workers" json:"workers" validate:"gte=1,lte=32"`
	Schedule string          `yaml:"schedule" json:"schedule" validate:"required"`
}

// YearRange is an inclusive range of seasons
type YearRange struct {
	Start int `yaml:"start" json:"start" validate:"gte=1871,lte=2100"`
	End   int `yaml:"end" json:"end" validate:"gte=1871,lte=2100,gtefield=Start"`
}

// DatasetsConfig maps seasons to per-year dataset files.
// Paths overrides Pattern for individual years.
type DatasetsConfig struct {
	Pattern string         `yaml:"pattern" json:"pattern" validate:"required,contains={year}"`
	Paths   map[int]string `yaml:"paths" json:"paths,omitempty"`
}

// SplitConfig describes the combined source for the split command
type SplitConfig struct {
	Source        string `yaml:"source" json:"source"`
	DateColumn    string `yaml:"date_column" json:"date_column" validate:"required"`
	OutputPattern string `yaml:"output_pattern" json:"output_pattern"`
}

// RenderConfig controls the plot artifacts
type RenderConfig struct {
	OutputDir  string  `yaml:"output_dir" json:"output_dir" validate:"required"`
	Scatter    bool    `yaml:"scatter" json:"scatter"`
	Heatmap    bool    `yaml:"heatmap" json:"heatmap"`
	ScatterDPI int     `yaml:"scatter_dpi" json:"scatter_dpi" validate:"gte=50,lte=600"`
	HeatmapDPI int     `yaml:"heatmap_dpi" json:"heatmap_dpi" validate:"gte=50,lte=600"`
	WidthIn    float64 `yaml:"width_in" json:"width_in" validate:"gt=0,lte=40"`
	HeightIn   float64 `yaml:"height_in" json:"height_in" validate:"gt=0,lte=40"`
}

// ExportConfig controls the Parquet export of cleaned records
type ExportConfig struct {
	Parquet     bool   `yaml:"parquet" json:"parquet"`
	Compression string `yaml:"compression" json:"compression" validate:"oneof=snappy gzip zstd uncompressed"`
}

// Default returns the stock configuration:
// 2020–2024 datasets next to the working directory, 150×150 bins.
func Default() *Config {
	return &Config{
		Years: YearRange{Start: 2020, End: 2024},
		Datasets: DatasetsConfig{
			Pattern: "../datasets/pitches_{year}.csv",
		},
		Split: SplitConfig{
			Source:     "../datasets/mlb_pitch_data_2020_2024.csv",
			DateColumn: "game_date",
		},
		Columns: cleaner.DefaultColumns(),
		Binning: binning.DefaultConfig(),
		Render: RenderConfig{
			OutputDir:  "plots",
			Scatter:    true,
			Heatmap:    true,
			ScatterDPI: 150,
			HeatmapDPI: 160,
			WidthIn:    6,
			HeightIn:   7,
		},
		Export: ExportConfig{
			Parquet:     false,
			Compression: "snappy",
		},
		Workers:  1,
		Schedule: "0 0 6 * * *",
	}
}

// YearList returns the configured seasons in ascending order
func (c *Config) YearList() []int {
	years := make([]int, 0, c.Years.End-c.Years.Start+1)
	for y := c.Years.Start; y <= c.Years.End; y++ {
		years = append(years, y)
	}
	return years
}

// DatasetPath resolves the dataset of one season
func (c *Config) DatasetPath(year int) string {
	if p, ok := c.Datasets.Paths[year]; ok && p != "" {
		return p
	}
	return splitter.OutputPath(c.Datasets.Pattern, year)
}

// DatasetPaths returns the year→path mapping for the configured range
func (c *Config) DatasetPaths() map[int]string {
	paths := make(map[int]string, c.Years.End-c.Years.Start+1)
	for _, y := range c.YearList() {
		paths[y] = c.DatasetPath(y)
	}
	return paths
}

// SplitOutputPattern is where split writes; it defaults to the dataset pattern
func (c *Config) SplitOutputPattern() string {
	if strings.TrimSpace(c.Split.OutputPattern) != "" {
		return c.Split.OutputPattern
	}
	return c.Datasets.Pattern
}

// FilterYears narrows the configured years to the given list.
// Years outside the range are ignored; the result is sorted.
func (c *Config) FilterYears(only []int) []int {
	if len(only) == 0 {
		return c.YearList()
	}
	seen := make(map[int]bool, len(only))
	var years []int
	for _, y := range only {
		if y < c.Years.Start || y > c.Years.End || seen[y] {
			continue
		}
		seen[y] = true
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}
