// Implements a raster backend to preview SVG compositions,
// by wrapping rasterx.
package svgraster

import (
	"image"
	"image/color"

	"github.com/benoitkugler/svgmerge/svgicon"
	"github.com/benoitkugler/svgmerge/svgpath"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
)

var _ svgicon.Driver = (*Renderer)(nil) // assert interface conformance

// Renderer draws on a rasterx scanner.
type Renderer struct {
	filler *rasterx.Filler
	dasher *rasterx.Dasher
}

// NewRenderer returns a renderer with default values.
// In addition to rasterizing lines like a Scanner,
// it can also rasterize quadratic and cubic bezier curves.
// Filling and stroking share the scanner, but never at the same time.
func NewRenderer(width, height int, scanner rasterx.Scanner) *Renderer {
	return &Renderer{dasher: rasterx.NewDasher(width, height, scanner), filler: rasterx.NewFiller(width, height, scanner)}
}

// NewImageRenderer uses a ScannerGV instance to render into `img`.
func NewImageRenderer(img *image.RGBA) *Renderer {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	return NewRenderer(w, h, scanner)
}

// SetupDrawers implements svgicon.Driver.
func (rd *Renderer) SetupDrawers(willFill, willStroke bool) (svgicon.Filler, svgicon.Stroker) {
	var (
		f svgicon.Filler
		s svgicon.Stroker
	)
	if willFill {
		f = filler{rd.filler}
	}
	if willStroke {
		s = stroker{rd.dasher}
	}
	return f, s
}

// FillPath fills `p`, transformed by `m`, with the non-zero winding rule.
func (rd *Renderer) FillPath(p svgpath.Path, m svgpath.Matrix2D, c color.Color) {
	f, _ := rd.SetupDrawers(true, false)
	f.Clear()
	p.AddTo(f, m)
	f.SetColor(c, 1)
	f.Draw()
}

// StrokePath strokes `p`, transformed by `m`, with a line of
// the given width (in target units), butt caps and miter joins.
func (rd *Renderer) StrokePath(p svgpath.Path, m svgpath.Matrix2D, c color.Color, width float64) {
	_, s := rd.SetupDrawers(false, true)
	s.Clear()
	s.SetStrokeOptions(svgicon.StrokeOptions{
		LineWidth: fixed.Int26_6(width * 64),
		Join:      svgicon.DefaultStyle.Join,
	})
	p.AddTo(s, m)
	s.SetColor(c, 1)
	s.Draw()
}

type filler struct{ *rasterx.Filler }

func (f filler) SetColor(c color.Color, opacity float64) {
	f.Filler.SetColor(rasterx.ApplyOpacity(c, opacity))
}

type stroker struct{ *rasterx.Dasher }

func (s stroker) SetColor(c color.Color, opacity float64) {
	s.Dasher.SetColor(rasterx.ApplyOpacity(c, opacity))
}

func (s stroker) SetStrokeOptions(options svgicon.StrokeOptions) {
	capFunc := capToFunc[options.Join.LineCap]
	s.Dasher.SetStroke(
		options.LineWidth, fixed.Int26_6(options.Join.MiterLimit*64), capFunc, capFunc,
		rasterx.FlatGap, joinToJoin[options.Join.LineJoin], options.Dash.Dash, options.Dash.DashOffset,
	)
}

var (
	joinToJoin = [...]rasterx.JoinMode{
		svgicon.Miter:     rasterx.Miter,
		svgicon.MiterClip: rasterx.MiterClip,
		svgicon.Round:     rasterx.Round,
		svgicon.Bevel:     rasterx.Bevel,
		svgicon.Arc:       rasterx.Arc,
	}

	capToFunc = [...]rasterx.CapFunc{
		svgicon.ButtCap:   rasterx.ButtCap,
		svgicon.SquareCap: rasterx.SquareCap,
		svgicon.RoundCap:  rasterx.RoundCap,
	}
)
