package charts

import (
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/habitlens-cli/internal/dataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	cellWidth  = 4 * vg.Inch
	cellHeight = 3 * vg.Inch
	kdePoints  = 200
	maxBins    = 200
)

// Histograms draws one density histogram with a KDE overlay per numeric column,
// laid out on a grid. Cells past the last column stay blank.
func Histograms(ds *dataset.Dataset, opt Options) (*Figure, error) {
	cols := ds.NumericColumns()
	if len(cols) == 0 {
		return nil, ErrNoNumericColumns
	}
	panels, err := histogramPanels(ds, cols)
	if err != nil {
		return nil, err
	}
	grid := dataset.GridLayout(len(panels), opt.GridColumns)
	tiles := draw.Tiles{
		Rows:      grid.Rows,
		Cols:      grid.Cols,
		PadX:      vg.Millimeter * 4,
		PadY:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	return &Figure{
		Name:   NameHistograms,
		Title:  "Distributions of Numeric Columns",
		Width:  vg.Length(grid.Cols) * cellWidth,
		Height: vg.Length(grid.Rows) * cellHeight,
		draw: func(dc draw.Canvas) {
			for i, p := range panels {
				p.Draw(tiles.At(dc, i%grid.Cols, i/grid.Cols))
			}
		},
	}, nil
}

func histogramPanels(ds *dataset.Dataset, cols []string) ([]*plot.Plot, error) {
	panels := make([]*plot.Plot, 0, len(cols))
	for _, col := range cols {
		vals, err := ds.Present(col)
		if err != nil {
			return nil, err
		}
		p := newPlot(dataset.TitleCase(col), "", "Density")
		if len(vals) == 0 {
			p.Title.Text += " (no data)"
			panels = append(panels, p)
			continue
		}
		h, err := plotter.NewHist(plotter.Values(vals), binCount(vals))
		if err != nil {
			return nil, fmt.Errorf("histogram %s: %w", col, err)
		}
		h.Normalize(1)
		h.FillColor = withAlpha(histColor, 0.75)
		h.LineStyle.Color = histColor
		h.LineStyle.Width = vg.Points(0.5)
		p.Add(h)
		if curve := kde(vals); curve != nil {
			l, err := plotter.NewLine(curve)
			if err != nil {
				return nil, fmt.Errorf("kde %s: %w", col, err)
			}
			l.LineStyle.Color = kdeColor
			l.LineStyle.Width = vg.Points(1.5)
			p.Add(l)
		}
		panels = append(panels, p)
	}
	return panels, nil
}

// binCount follows numpy's "auto" rule: the larger of Sturges and Freedman-Diaconis.
func binCount(vals []float64) int {
	n := len(vals)
	if n < 2 {
		return 1
	}
	sturges := int(math.Ceil(math.Log2(float64(n)))) + 1
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	span := sorted[n-1] - sorted[0]
	if span == 0 {
		return 1
	}
	iqr := stat.Quantile(0.75, stat.LinInterp, sorted, nil) - stat.Quantile(0.25, stat.LinInterp, sorted, nil)
	bins := sturges
	if iqr > 0 {
		width := 2 * iqr * math.Pow(float64(n), -1.0/3.0)
		if fd := int(math.Ceil(span / width)); fd > bins {
			bins = fd
		}
	}
	if bins > maxBins {
		bins = maxBins
	}
	return bins
}

// kde evaluates a Gaussian kernel density estimate (Scott's bandwidth) over the data range.
// It returns nil when the data has no spread.
func kde(vals []float64) plotter.XYs {
	n := len(vals)
	if n < 2 {
		return nil
	}
	sd := stat.StdDev(vals, nil)
	if sd == 0 || math.IsNaN(sd) {
		return nil
	}
	bw := sd * math.Pow(float64(n), -1.0/5.0)
	lo, hi := floats.Min(vals), floats.Max(vals)
	xs := make([]float64, kdePoints)
	floats.Span(xs, lo, hi)
	norm := 1 / (float64(n) * bw * math.Sqrt(2*math.Pi))
	pts := make(plotter.XYs, kdePoints)
	for i, x := range xs {
		var sum float64
		for _, v := range vals {
			z := (x - v) / bw
			sum += math.Exp(-0.5 * z * z)
		}
		pts[i].X = x
		pts[i].Y = sum * norm
	}
	return pts
}
