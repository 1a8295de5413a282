// Package charts renders the four descriptive charts of a dataset with gonum/plot.
package charts

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/habitlens-cli/internal/dataset"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Chart names double as output file stems.
const (
	NameHistograms = "histograms"
	NameBarplot    = "barplot_exam_score"
	NameRegression = "regression_total_screen_time"
	NameScatter    = "scatter_study_vs_exam"
)

// Names lists every chart in render order.
var Names = []string{NameHistograms, NameBarplot, NameRegression, NameScatter}

var (
	// ErrUnknownChart is returned by ByName for names outside Names.
	ErrUnknownChart = errors.New("unknown chart")
	// ErrUnsupportedFormat is returned for image formats other than png, svg and pdf.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrNoNumericColumns means the histogram grid would be empty.
	ErrNoNumericColumns = errors.New("no numeric columns to plot")
)

// Options controls chart layout.
type Options struct {
	// GridColumns is the histogram grid width; 0 means dataset.DefaultGridColumns.
	GridColumns int
}

// Figure is a rendered-on-demand chart.
type Figure struct {
	Name   string
	Title  string
	Width  vg.Length
	Height vg.Length

	draw func(dc draw.Canvas)
}

func singlePlot(name string, p *plot.Plot, w, h vg.Length) *Figure {
	return &Figure{
		Name:   name,
		Title:  p.Title.Text,
		Width:  w,
		Height: h,
		draw:   p.Draw,
	}
}

// ParseFormat normalizes an image format name.
func ParseFormat(format string) (string, error) {
	f := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
	switch f {
	case "", "png":
		return "png", nil
	case "svg", "pdf":
		return f, nil
	default:
		return "", fmt.Errorf("%w: %s (use png, svg or pdf)", ErrUnsupportedFormat, format)
	}
}

// ContentType returns the MIME type for a format accepted by ParseFormat.
func ContentType(format string) string {
	switch format {
	case "svg":
		return "image/svg+xml"
	case "pdf":
		return "application/pdf"
	default:
		return "image/png"
	}
}

// Render draws the figure and writes it to w in the given format.
func (f *Figure) Render(w io.Writer, format string) error {
	format, err := ParseFormat(format)
	if err != nil {
		return err
	}
	cw, err := draw.NewFormattedCanvas(f.Width, f.Height, format)
	if err != nil {
		return fmt.Errorf("create %s canvas: %w", format, err)
	}
	f.draw(draw.New(cw))
	if _, err := cw.WriteTo(w); err != nil {
		return fmt.Errorf("write %s: %w", f.Name, err)
	}
	return nil
}

// All builds the four figures in render order.
func All(ds *dataset.Dataset, opt Options) ([]*Figure, error) {
	figs := make([]*Figure, 0, len(Names))
	for _, name := range Names {
		f, err := ByName(ds, name, opt)
		if err != nil {
			return nil, err
		}
		figs = append(figs, f)
	}
	return figs, nil
}

// ByName builds a single figure.
func ByName(ds *dataset.Dataset, name string, opt Options) (*Figure, error) {
	switch name {
	case NameHistograms:
		return Histograms(ds, opt)
	case NameBarplot:
		return BarChart(ds)
	case NameRegression:
		return Regression(ds)
	case NameScatter:
		return Scatter(ds)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownChart, name)
	}
}
