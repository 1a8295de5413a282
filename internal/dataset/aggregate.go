package dataset

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Group holds the summary of one category's values.
type Group struct {
	Key   string
	Count int
	Mean  float64
	// Std is the sample standard deviation; NaN when Count < 2.
	Std float64
}

// GroupStats summarizes value per category, in first-appearance order.
// Rows with a missing category or value are skipped.
func (d *Dataset) GroupStats(category, value string) ([]Group, error) {
	cats, err := d.Strings(category)
	if err != nil {
		return nil, err
	}
	vals, err := d.Float(value)
	if err != nil {
		return nil, err
	}
	var order []string
	buckets := map[string][]float64{}
	for i, c := range cats {
		if c == "" || isMissing(vals[i]) {
			continue
		}
		if _, ok := buckets[c]; !ok {
			order = append(order, c)
		}
		buckets[c] = append(buckets[c], vals[i])
	}
	out := make([]Group, 0, len(order))
	for _, k := range order {
		xs := buckets[k]
		g := Group{Key: k, Count: len(xs), Std: math.NaN()}
		if len(xs) > 1 {
			g.Mean, g.Std = stat.MeanStdDev(xs, nil)
		} else {
			g.Mean = xs[0]
		}
		out = append(out, g)
	}
	return out, nil
}

// Pairs returns the x/y values of rows where both are present.
func (d *Dataset) Pairs(x, y string) ([]float64, []float64, error) {
	xv, err := d.Float(x)
	if err != nil {
		return nil, nil, err
	}
	yv, err := d.Float(y)
	if err != nil {
		return nil, nil, err
	}
	xs := make([]float64, 0, len(xv))
	ys := make([]float64, 0, len(yv))
	for i := range xv {
		if isMissing(xv[i]) || isMissing(yv[i]) {
			continue
		}
		xs = append(xs, xv[i])
		ys = append(ys, yv[i])
	}
	return xs, ys, nil
}

// Present returns the non-missing values of a column.
func (d *Dataset) Present(col string) ([]float64, error) {
	v, err := d.Float(col)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(v))
	for _, x := range v {
		if !isMissing(x) {
			out = append(out, x)
		}
	}
	return out, nil
}
