package charts

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	histColor   = color.RGBA{R: 0x66, G: 0x99, B: 0xCC, A: 0xFF}
	kdeColor    = color.RGBA{R: 0x33, G: 0x55, B: 0x88, A: 0xFF}
	pointColor  = color.RGBA{R: 0x1F, G: 0x77, B: 0xB4, A: 0xFF}
	fitColor    = color.RGBA{R: 0xFF, A: 0xFF}
	errBarColor = color.RGBA{R: 0x3C, G: 0x3C, B: 0x3C, A: 0xFF}
	gridColor   = color.Gray{Y: 0xE0}

	// seaborn "pastel"
	pastel = []color.Color{
		color.RGBA{R: 0xA1, G: 0xC9, B: 0xF4, A: 0xFF},
		color.RGBA{R: 0xFF, G: 0xB4, B: 0x82, A: 0xFF},
		color.RGBA{R: 0x8D, G: 0xE5, B: 0xA1, A: 0xFF},
		color.RGBA{R: 0xFF, G: 0x9F, B: 0x9B, A: 0xFF},
		color.RGBA{R: 0xD0, G: 0xBB, B: 0xFF, A: 0xFF},
		color.RGBA{R: 0xDE, G: 0xBB, B: 0x9B, A: 0xFF},
		color.RGBA{R: 0xFA, G: 0xB0, B: 0xE4, A: 0xFF},
		color.RGBA{R: 0xCF, G: 0xCF, B: 0xCF, A: 0xFF},
	}
)

// withAlpha returns c with the given opacity in [0,1].
func withAlpha(c color.RGBA, alpha float64) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(alpha*255 + 0.5)}
}

// newPlot returns a plot with a white-grid look.
func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.Padding = vg.Points(6)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	g := plotter.NewGrid()
	g.Horizontal.Color = gridColor
	g.Vertical.Color = gridColor
	g.Vertical.Dashes = nil
	g.Horizontal.Dashes = nil
	p.Add(g)
	return p
}

func circle(c color.Color, radius vg.Length) draw.GlyphStyle {
	return draw.GlyphStyle{Color: c, Radius: radius, Shape: draw.CircleGlyph{}}
}
