package cmd

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/KaramelBytes/habitlens-cli/internal/dataset"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

var (
	success = color.New(color.FgGreen)
	warning = color.New(color.FgYellow)
	heading = color.New(color.Bold)
)

func fmtNum(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// writeSummaryTable prints one row per column.
func writeSummaryTable(w io.Writer, s *dataset.Summary) {
	heading.Fprintf(w, "%s: %d rows, %d columns\n", s.Name, s.Rows, len(s.Cols))
	t := tablewriter.NewWriter(w)
	t.SetHeader([]string{"Column", "Kind", "Non-null", "Missing", "Mean", "Std", "Min", "Median", "Max", "Top"})
	t.SetAutoFormatHeaders(false)
	t.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, c := range s.Cols {
		row := []string{c.Name, c.Kind, strconv.Itoa(c.NonNull), strconv.Itoa(c.Missing)}
		if c.Kind == "numeric" {
			row = append(row, fmtNum(c.Mean), fmtNum(c.Std), fmtNum(c.Min), fmtNum(c.Median), fmtNum(c.Max), "")
		} else {
			top := ""
			if len(c.TopValues) > 0 {
				top = fmt.Sprintf("%s (%d)", c.TopValues[0].Value, c.TopValues[0].Count)
			}
			row = append(row, "", "", "", "", "", top)
		}
		t.Append(row)
	}
	t.Render()
}

// writeCorrTable prints the strongest correlations.
func writeCorrTable(w io.Writer, m *dataset.CorrMatrix, limit int) {
	if m == nil {
		return
	}
	pairs := m.TopPairs(limit)
	if len(pairs) == 0 {
		return
	}
	heading.Fprintln(w, "Top correlations")
	t := tablewriter.NewWriter(w)
	t.SetHeader([]string{"A", "B", "r"})
	t.SetAutoFormatHeaders(false)
	for _, p := range pairs {
		t.Append([]string{p.A, p.B, fmtNum(p.R)})
	}
	t.Render()
}
