package dataset

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// DescribeOptions controls Describe.
type DescribeOptions struct {
	// TopValues caps the categories listed per categorical column.
	TopValues int
	// Correlations computes Pearson correlations among numeric columns.
	Correlations bool
	// Outliers counts robust Z-scores (MAD) above OutlierThreshold.
	Outliers         bool
	OutlierThreshold float64
}

// DefaultDescribeOptions returns the options used by the CLI and dashboard.
func DefaultDescribeOptions() DescribeOptions {
	return DescribeOptions{TopValues: 8, Outliers: true, OutlierThreshold: 3.5}
}

// Summary is a per-column description of a Dataset.
type Summary struct {
	Name string          `json:"name"`
	Rows int             `json:"rows"`
	Cols []ColumnSummary `json:"columns"`
	Corr *CorrMatrix     `json:"correlations,omitempty"`
}

// ColumnSummary captures the inferred kind and statistics of one column.
type ColumnSummary struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"` // numeric|categorical|empty
	NonNull int    `json:"non_null"`
	Missing int    `json:"missing"`
	Unique  int    `json:"unique,omitempty"`

	Min    float64 `json:"min,omitempty"`
	P25    float64 `json:"p25,omitempty"`
	Median float64 `json:"median,omitempty"`
	P75    float64 `json:"p75,omitempty"`
	Max    float64 `json:"max,omitempty"`
	Mean   float64 `json:"mean,omitempty"`
	Std    float64 `json:"std,omitempty"`

	OutliersCount    int     `json:"outliers,omitempty"`
	OutlierThreshold float64 `json:"outlier_threshold,omitempty"`

	TopValues []CategoryCount `json:"top_values,omitempty"`
}

type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// CorrMatrix is a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"` // row-major
}

// Describe summarizes every column. Numeric stats ignore missing cells.
func (d *Dataset) Describe(opt DescribeOptions) *Summary {
	sum := &Summary{Name: d.Name, Rows: d.Len()}
	numeric := map[string]bool{}
	for _, c := range d.NumericColumns() {
		numeric[c] = true
	}
	numVals := map[string][]float64{}
	for _, col := range d.Columns() {
		if numeric[col] {
			all, _ := d.Float(col)
			numVals[col] = all
			sum.Cols = append(sum.Cols, describeNumeric(col, all, opt))
			continue
		}
		vals, _ := d.Strings(col)
		sum.Cols = append(sum.Cols, describeCategorical(col, vals, opt))
	}
	if opt.Correlations {
		sum.Corr = correlations(d.NumericColumns(), numVals)
	}
	return sum
}

func describeNumeric(name string, all []float64, opt DescribeOptions) ColumnSummary {
	s := ColumnSummary{Name: name, Kind: "numeric"}
	present := make([]float64, 0, len(all))
	// Welford update
	var n int
	var mean, m2 float64
	for _, x := range all {
		if isMissing(x) {
			s.Missing++
			continue
		}
		present = append(present, x)
		n++
		delta := x - mean
		mean += delta / float64(n)
		m2 += delta * (x - mean)
	}
	s.NonNull = n
	if n == 0 {
		s.Kind = "empty"
		return s
	}
	s.Mean = mean
	if n > 1 {
		s.Std = math.Sqrt(m2 / float64(n-1))
	}
	sorted := append([]float64(nil), present...)
	sort.Float64s(sorted)
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.P25 = stat.Quantile(0.25, stat.LinInterp, sorted, nil)
	s.Median = stat.Quantile(0.5, stat.LinInterp, sorted, nil)
	s.P75 = stat.Quantile(0.75, stat.LinInterp, sorted, nil)

	if opt.Outliers && len(sorted) >= 8 {
		thr := opt.OutlierThreshold
		if thr <= 0 {
			thr = 3.5
		}
		median, mad := medianMAD(sorted)
		if mad > 0 {
			for _, v := range sorted {
				if math.Abs(0.6745*(v-median)/mad) > thr {
					s.OutliersCount++
				}
			}
		}
		s.OutlierThreshold = thr
	}
	return s
}

func describeCategorical(name string, vals []string, opt DescribeOptions) ColumnSummary {
	s := ColumnSummary{Name: name, Kind: "categorical"}
	cats := map[string]int{}
	for _, v := range vals {
		v = strings.TrimSpace(v)
		if v == "" {
			s.Missing++
			continue
		}
		s.NonNull++
		cats[v]++
	}
	if s.NonNull == 0 {
		s.Kind = "empty"
		return s
	}
	tops := make([]CategoryCount, 0, len(cats))
	for k, v := range cats {
		tops = append(tops, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	limit := opt.TopValues
	if limit <= 0 {
		limit = 8
	}
	if len(tops) > limit {
		tops = tops[:limit]
	}
	s.TopValues = tops
	s.Unique = len(cats)
	return s
}

// correlations computes pairwise Pearson r using only rows where both values are present.
func correlations(cols []string, vals map[string][]float64) *CorrMatrix {
	if len(cols) < 2 {
		return nil
	}
	n := len(cols)
	mat := make([][]float64, n)
	for i := range mat {
		mat[i] = make([]float64, n)
		mat[i][i] = 1
	}
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			xa, xb := vals[cols[a]], vals[cols[b]]
			var xs, ys []float64
			for i := range xa {
				if isMissing(xa[i]) || isMissing(xb[i]) {
					continue
				}
				xs = append(xs, xa[i])
				ys = append(ys, xb[i])
			}
			var r float64
			if len(xs) >= 2 {
				r = stat.Correlation(xs, ys, nil)
			}
			if math.IsNaN(r) || math.IsInf(r, 0) {
				r = 0
			}
			mat[a][b], mat[b][a] = r, r
		}
	}
	return &CorrMatrix{Columns: append([]string(nil), cols...), Values: mat}
}

// medianMAD computes the median and median absolute deviation of sorted values.
func medianMAD(sorted []float64) (median, mad float64) {
	median = stat.Quantile(0.5, stat.LinInterp, sorted, nil)
	dev := make([]float64, len(sorted))
	for i, v := range sorted {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = stat.Quantile(0.5, stat.LinInterp, dev, nil)
	return
}

// Column returns the summary for name, if present.
func (s *Summary) Column(name string) (ColumnSummary, bool) {
	for _, c := range s.Cols {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnSummary{}, false
}

// Markdown renders a compact report.
func (s *Summary) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if s.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", s.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", s.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(s.Cols)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range s.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", safeVal(c.Name), c.Kind, c.NonNull, missPct))
		switch c.Kind {
		case "numeric":
			b.WriteString(fmt.Sprintf(" — min %.4g, median %.4g, max %.4g, mean %.4g, std %.4g", c.Min, c.Median, c.Max, c.Mean, c.Std))
			if c.OutlierThreshold > 0 {
				b.WriteString(fmt.Sprintf("; outliers: %d above |z|>%.1f", c.OutliersCount, c.OutlierThreshold))
			}
		case "categorical":
			if len(c.TopValues) > 0 {
				b.WriteString(" — top: ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
				}
				if c.Unique > len(c.TopValues) {
					b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
				}
			}
		}
		b.WriteString("\n")
	}
	if s.Corr != nil && len(s.Corr.Columns) >= 2 {
		b.WriteString("\n[CORRELATIONS]\n")
		for _, p := range s.Corr.TopPairs(10) {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", p.A, p.B, p.R))
		}
	}
	return b.String()
}

// PairCorr is one off-diagonal entry of a CorrMatrix.
type PairCorr struct {
	A, B string
	R    float64
}

// TopPairs lists the strongest correlations by |r|.
func (m *CorrMatrix) TopPairs(limit int) []PairCorr {
	var pairs []PairCorr
	n := len(m.Columns)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, PairCorr{A: m.Columns[i], B: m.Columns[j], R: m.Values[i][j]})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		ai, aj := math.Abs(pairs[i].R), math.Abs(pairs[j].R)
		if ai == aj {
			return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
		}
		return ai > aj
	})
	if limit > 0 && len(pairs) > limit {
		pairs = pairs[:limit]
	}
	return pairs
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
