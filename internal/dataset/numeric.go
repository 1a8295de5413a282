package dataset

import (
	"strings"
	"unicode"

	"github.com/go-gota/gota/series"
)

// DefaultGridColumns is the histogram grid width.
const DefaultGridColumns = 3

// NumericColumns returns the integer and float columns in dataset order.
func (d *Dataset) NumericColumns() []string {
	names := d.df.Names()
	types := d.df.Types()
	out := make([]string, 0, len(names))
	for i, t := range types {
		if t == series.Int || t == series.Float {
			out = append(out, names[i])
		}
	}
	return out
}

// Grid is a subplot layout. Hidden counts the trailing cells left blank.
type Grid struct {
	Cols   int
	Rows   int
	Hidden int
}

// Cells is the total number of grid cells.
func (g Grid) Cells() int { return g.Cols * g.Rows }

// GridLayout sizes a grid for n panels with cols columns (DefaultGridColumns if cols <= 0).
func GridLayout(n, cols int) Grid {
	if cols <= 0 {
		cols = DefaultGridColumns
	}
	if n <= 0 {
		return Grid{Cols: cols}
	}
	rows := (n + cols - 1) / cols
	return Grid{Cols: cols, Rows: rows, Hidden: rows*cols - n}
}

// TitleCase turns a column name like "study_hours_per_day" into "Study Hours Per Day".
func TitleCase(col string) string {
	words := strings.Fields(strings.ReplaceAll(col, "_", " "))
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
