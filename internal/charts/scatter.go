package charts

import (
	"fmt"

	"github.com/KaramelBytes/habitlens-cli/internal/dataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Fit is a least-squares line y = Intercept + Slope*x.
type Fit struct {
	Intercept float64
	Slope     float64
	// R2 is the coefficient of determination of the fit.
	R2 float64
}

// At evaluates the line.
func (f Fit) At(x float64) float64 { return f.Intercept + f.Slope*x }

// LinearFit fits y on x. ok is false when fewer than two points or x has no spread.
func LinearFit(xs, ys []float64) (fit Fit, ok bool) {
	if len(xs) < 2 || floats.Min(xs) == floats.Max(xs) {
		return Fit{}, false
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	return Fit{Intercept: alpha, Slope: beta, R2: stat.RSquared(xs, ys, nil, alpha, beta)}, true
}

// ScatterPoints returns the study-hours/exam-score points, skipping rows with either value missing.
func ScatterPoints(ds *dataset.Dataset) (plotter.XYs, error) {
	return points(ds, dataset.ColStudyHours, dataset.ColExamScore)
}

func points(ds *dataset.Dataset, x, y string) (plotter.XYs, error) {
	xs, ys, err := ds.Pairs(x, y)
	if err != nil {
		return nil, err
	}
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	return pts, nil
}

// Scatter draws study_hours_per_day against exam_score.
func Scatter(ds *dataset.Dataset) (*Figure, error) {
	pts, err := ScatterPoints(ds)
	if err != nil {
		return nil, err
	}
	p := newPlot("Study Time vs. Exam Score", "Study Hours per Day", "Exam Score")
	if err := addPoints(p, pts, 0.6); err != nil {
		return nil, err
	}
	return singlePlot(NameScatter, p, 10*vg.Inch, 6*vg.Inch), nil
}

// Regression draws total_screen_time against exam_score with a least-squares line.
func Regression(ds *dataset.Dataset) (*Figure, error) {
	pts, err := points(ds, dataset.ColTotalScreen, dataset.ColExamScore)
	if err != nil {
		return nil, err
	}
	p := newPlot("Effect of Total Screen Time on Exam Score", "Total Screen Time (hours per day)", "Exam Score")
	if err := addPoints(p, pts, 0.3); err != nil {
		return nil, err
	}
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, pt := range pts {
		xs[i], ys[i] = pt.X, pt.Y
	}
	if fit, ok := LinearFit(xs, ys); ok {
		lo, hi := floats.Min(xs), floats.Max(xs)
		l, err := plotter.NewLine(plotter.XYs{{X: lo, Y: fit.At(lo)}, {X: hi, Y: fit.At(hi)}})
		if err != nil {
			return nil, fmt.Errorf("fit line: %w", err)
		}
		l.LineStyle.Color = fitColor
		l.LineStyle.Width = vg.Points(2)
		p.Add(l)
		p.Legend.Add(fmt.Sprintf("fit: y = %.2f %+.2fx (R² %.2f)", fit.Intercept, fit.Slope, fit.R2), l)
		p.Legend.Top = true
	}
	return singlePlot(NameRegression, p, 8*vg.Inch, 5*vg.Inch), nil
}

func addPoints(p *plot.Plot, pts plotter.XYs, alpha float64) error {
	if len(pts) == 0 {
		return nil
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("scatter: %w", err)
	}
	s.GlyphStyle = circle(withAlpha(pointColor, alpha), vg.Points(3))
	p.Add(s)
	return nil
}
