package charts

import (
	"fmt"
	"math"

	"github.com/KaramelBytes/habitlens-cli/internal/dataset"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// errorPoints pairs bar tops with their ±std extents for plotter.NewYErrorBars.
type errorPoints struct {
	plotter.XYs
	plotter.YErrors
}

// BarChart draws mean exam_score per part_time_job category with ±1 std error bars.
func BarChart(ds *dataset.Dataset) (*Figure, error) {
	p, _, err := barPlot(ds)
	if err != nil {
		return nil, err
	}
	return singlePlot(NameBarplot, p, 6*vg.Inch, 5*vg.Inch), nil
}

func barPlot(ds *dataset.Dataset) (*plot.Plot, []dataset.Group, error) {
	groups, err := ds.GroupStats(dataset.ColPartTimeJob, dataset.ColExamScore)
	if err != nil {
		return nil, nil, err
	}
	p := newPlot("Average Exam Score by Part-Time Job Status", "Part-Time Job", "Average Exam Score")
	if len(groups) == 0 {
		return p, groups, nil
	}
	labels := make([]string, len(groups))
	ep := errorPoints{
		XYs:     make(plotter.XYs, 0, len(groups)),
		YErrors: make(plotter.YErrors, 0, len(groups)),
	}
	for i, g := range groups {
		bc, err := plotter.NewBarChart(plotter.Values{g.Mean}, vg.Points(60))
		if err != nil {
			return nil, nil, fmt.Errorf("bar %s: %w", g.Key, err)
		}
		bc.XMin = float64(i)
		bc.Color = pastel[i%len(pastel)]
		bc.LineStyle.Width = 0
		p.Add(bc)
		labels[i] = g.Key
		if !math.IsNaN(g.Std) {
			ep.XYs = append(ep.XYs, plotter.XY{X: float64(i), Y: g.Mean})
			ep.YErrors = append(ep.YErrors, struct{ Low, High float64 }{g.Std, g.Std})
		}
	}
	if len(ep.XYs) > 0 {
		eb, err := plotter.NewYErrorBars(ep)
		if err != nil {
			return nil, nil, fmt.Errorf("error bars: %w", err)
		}
		eb.LineStyle.Color = errBarColor
		eb.LineStyle.Width = vg.Points(1.5)
		eb.CapWidth = vg.Points(0)
		p.Add(eb)
	}
	p.NominalX(labels...)
	return p, groups, nil
}
