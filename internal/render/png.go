package render

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/wonny/strikezone/internal/contracts"
)

// Options controls PNG output
type Options struct {
	OutputDir  string
	ScatterDPI int
	HeatmapDPI int
	Width      vg.Length
	Height     vg.Length
}

// DefaultOptions is 6×7 inch figures at 150/160 dpi
func DefaultOptions(outputDir string) Options {
	return Options{
		OutputDir:  outputDir,
		ScatterDPI: 150,
		HeatmapDPI: 160,
		Width:      6 * vg.Inch,
		Height:     7 * vg.Inch,
	}
}

var (
	ballColor   = color.NRGBA{R: 31, G: 119, B: 180, A: 90}
	strikeColor = color.NRGBA{R: 214, G: 39, B: 40, A: 90}
	zoneColor   = color.Black
	plateColor  = color.Gray{Y: 90}
)

// ColorBarLabel names the heatmap scale
const ColorBarLabel = "Strike Probability"

// colorBarWidth is the strip right of the heatmap reserved for the scale
const colorBarWidth = vg.Inch

// PNG renders plots with gonum/plot
type PNG struct {
	opts Options
}

// NewPNG creates a PNG renderer
func NewPNG(opts Options) *PNG {
	return &PNG{opts: opts}
}

// Scatter plots every cleaned pitch, balls blue and strikes red, over the
// full extent of the data
func (r *PNG) Scatter(ctx context.Context, year int, rs *contracts.RecordSet, zone contracts.ZoneBoundary) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	balls := make(plotter.XYs, 0, len(rs.Records))
	strikes := make(plotter.XYs, 0, len(rs.Records))
	for _, rec := range rs.Records {
		pt := plotter.XY{X: rec.PX, Y: rec.PZ}
		if rec.IsStrike == 1 {
			strikes = append(strikes, pt)
		} else {
			balls = append(balls, pt)
		}
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Pitch locations %d (n=%d)", year, len(rs.Records))
	p.X.Label.Text = "Horizontal position (ft)"
	p.Y.Label.Text = "Vertical position (ft)"

	for _, layer := range []struct {
		name string
		pts  plotter.XYs
		c    color.Color
	}{
		{"Ball", balls, ballColor},
		{"Strike", strikes, strikeColor},
	} {
		if len(layer.pts) == 0 {
			continue
		}
		s, err := plotter.NewScatter(layer.pts)
		if err != nil {
			return "", fmt.Errorf("scatter %s: %w", layer.name, err)
		}
		s.GlyphStyle.Color = layer.c
		s.GlyphStyle.Radius = vg.Points(0.8)
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(s)
		p.Legend.Add(layer.name, s)
	}
	p.Legend.Top = true

	xmin, xmax, ymin, ymax := extent(rs.Records, zone)
	if err := addZone(p, zone, xmin, xmax, ymin, ymax); err != nil {
		return "", err
	}

	return r.save(ScatterFile(year), r.opts.ScatterDPI, p.Draw)
}

// Heatmap draws the strike rate per bin on a blue→red scale over [0, 1]
// with a colorbar on the right. Bins without pitches stay transparent.
func (r *PNG) Heatmap(ctx context.Context, year int, s *contracts.StrikeRateSurface, zone contracts.ZoneBoundary) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(0)
	cmap.SetMax(1)

	hm := plotter.NewHeatMap(gridXYZ{s}, cmap.Palette(255))
	hm.Min = 0
	hm.Max = 1
	hm.NaN = color.Transparent

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Called strike rate %d", year)
	p.X.Label.Text = "Horizontal position (ft)"
	p.Y.Label.Text = "Vertical position (ft)"
	p.Add(hm)

	g := s.Grid
	xmin, xmax := g.XEdges[0], g.XEdges[len(g.XEdges)-1]
	ymin, ymax := g.ZEdges[0], g.ZEdges[len(g.ZEdges)-1]
	if err := addZone(p, zone, xmin, xmax, ymin, ymax); err != nil {
		return "", err
	}
	p.X.Min, p.X.Max = xmin, xmax
	p.Y.Min, p.Y.Max = ymin, ymax

	return r.save(HeatmapFile(year), r.opts.HeatmapDPI, func(dc draw.Canvas) {
		p.Draw(draw.Crop(dc, 0, -colorBarWidth, 0, 0))
		colorBar(cmap).Draw(draw.Crop(dc, dc.Size().X-colorBarWidth, 0, 0, 0))
	})
}

// colorBar is a vertical scale plot for cmap
func colorBar(cmap palette.ColorMap) *plot.Plot {
	bar := plot.New()
	bar.Title.Text = " "
	bar.Add(&plotter.ColorBar{ColorMap: cmap, Vertical: true})
	bar.HideX()
	bar.Y.Label.Text = ColorBarLabel
	bar.Y.Padding = 0
	return bar
}

// addZone draws the zone bottom/top (dashed), plate edges (dotted) and the plate center
func addZone(p *plot.Plot, zone contracts.ZoneBoundary, xmin, xmax, ymin, ymax float64) error {
	dashed := []vg.Length{vg.Points(5), vg.Points(3)}
	dotted := []vg.Length{vg.Points(1), vg.Points(2)}

	lines := []struct {
		pts    plotter.XYs
		dashes []vg.Length
		c      color.Color
	}{
		{plotter.XYs{{X: xmin, Y: zone.Bottom}, {X: xmax, Y: zone.Bottom}}, dashed, zoneColor},
		{plotter.XYs{{X: xmin, Y: zone.Top}, {X: xmax, Y: zone.Top}}, dashed, zoneColor},
		{plotter.XYs{{X: -contracts.PlateHalfWidth, Y: ymin}, {X: -contracts.PlateHalfWidth, Y: ymax}}, dotted, plateColor},
		{plotter.XYs{{X: contracts.PlateHalfWidth, Y: ymin}, {X: contracts.PlateHalfWidth, Y: ymax}}, dotted, plateColor},
		{plotter.XYs{{X: 0, Y: ymin}, {X: 0, Y: ymax}}, nil, plateColor},
	}

	for _, l := range lines {
		line, err := plotter.NewLine(l.pts)
		if err != nil {
			return fmt.Errorf("zone line: %w", err)
		}
		line.LineStyle.Color = l.c
		line.LineStyle.Width = vg.Points(1)
		line.LineStyle.Dashes = l.dashes
		p.Add(line)
	}
	return nil
}

// extent covers the data and the zone overlay
func extent(records []contracts.Record, zone contracts.ZoneBoundary) (xmin, xmax, ymin, ymax float64) {
	xmin, xmax = -contracts.PlateHalfWidth, contracts.PlateHalfWidth
	ymin, ymax = zone.Bottom, zone.Top
	for _, r := range records {
		xmin = min(xmin, r.PX)
		xmax = max(xmax, r.PX)
		ymin = min(ymin, r.PZ)
		ymax = max(ymax, r.PZ)
	}
	return xmin, xmax, ymin, ymax
}

// save renders the figure at dpi and moves the PNG into the output directory
func (r *PNG) save(name string, dpi int, figure func(draw.Canvas)) (string, error) {
	if err := os.MkdirAll(r.opts.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	c := vgimg.NewWith(vgimg.UseWH(r.opts.Width, r.opts.Height), vgimg.UseDPI(dpi))
	figure(draw.New(c))

	path := filepath.Join(r.opts.OutputDir, name)
	tmp, err := os.CreateTemp(r.opts.OutputDir, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}

	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("encode %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("rename %s: %w", name, err)
	}
	return path, nil
}

// gridXYZ exposes a surface to plotter.HeatMap; X and Y are bin centers
type gridXYZ struct {
	s *contracts.StrikeRateSurface
}

func (g gridXYZ) Dims() (c, r int) {
	return g.s.Grid.BinsX(), g.s.Grid.BinsZ()
}

func (g gridXYZ) Z(c, r int) float64 {
	return g.s.Rate[c][r]
}

func (g gridXYZ) X(c int) float64 {
	e := g.s.Grid.XEdges
	return (e[c] + e[c+1]) / 2
}

func (g gridXYZ) Y(r int) float64 {
	e := g.s.Grid.ZEdges
	return (e[r] + e[r+1]) / 2
}
