package svgicon

import (
	"image/color"
	"math"
	"strings"

	"github.com/benoitkugler/svgmerge/svgdoc"
	"github.com/benoitkugler/svgmerge/svgpath"
	"golang.org/x/image/math/fixed"
)

// Given a parsed SVG document, implements how to
// draw it on screen.
// This requires a driver implementing the actual draw operations,
// such as a rasterizer to output .png images.

// Drawer knows how to do the actual draw operations
// but doesn't need any SVG kwowledge.
// In particular, tranformations matrix are already applied to the points
// before sending them to the Drawer.
type Drawer interface {
	svgpath.Adder

	// Clear must reset the internal state (used before starting a new path painting)
	Clear()

	// SetColor set the color for the current path
	SetColor(c color.Color, opacity float64)

	// Draw fills or strokes the accumulated path using the current settings
	Draw()
}

type Filler interface {
	Drawer

	// Decide to use or not the NonZeroWinding rule for the current path
	SetWinding(useNonZeroWinding bool)
}

type Stroker interface {
	Drawer

	// Parametrize the stroking style for the current path
	SetStrokeOptions(options StrokeOptions)
}

type Driver interface {
	// SetupDrawers returns the backend painters, and
	// will be called at the begining of every path.
	// If the `willXXX` boolean is false, the returned drawer should be nil
	// to avoid useless operations.
	SetupDrawers(willFill, willStroke bool) (Filler, Stroker)
}

type DashOptions struct {
	Dash       []float64 // values for the dash pattern (nil or an empty slice for no dashes)
	DashOffset float64   // starting offset into the dash array
}

// JoinMode type to specify how segments join.
type JoinMode uint8

const (
	Miter JoinMode = iota
	MiterClip
	Round
	Bevel
	Arc
)

// CapMode defines how to draw caps on the ends of lines
type CapMode uint8

const (
	ButtCap CapMode = iota
	SquareCap
	RoundCap
)

type JoinOptions struct {
	MiterLimit float64
	LineJoin   JoinMode
	LineCap    CapMode
}

// StrokeOptions are expressed in the target space.
type StrokeOptions struct {
	LineWidth fixed.Int26_6
	Join      JoinOptions
	Dash      DashOptions
}

// viewBoxTransform maps `vb` onto the rectangle (x, y, w, h),
// according to the preserveAspectRatio attribute `aspect`.
func viewBoxTransform(vb svgdoc.Bounds, aspect string, x, y, w, h float64) svgpath.Matrix2D {
	sx, sy := w/vb.W, h/vb.H
	align, slice := "xmidymid", false
	fields := strings.Fields(strings.ToLower(aspect))
	if len(fields) > 0 && fields[0] == "defer" {
		fields = fields[1:]
	}
	if len(fields) > 0 {
		align = fields[0]
	}
	if len(fields) > 1 {
		slice = fields[1] == "slice"
	}

	tx, ty := x, y
	if align != "none" {
		if slice {
			sx = math.Max(sx, sy)
		} else {
			sx = math.Min(sx, sy)
		}
		sy = sx
		if len(align) == 8 {
			dx, dy := w-vb.W*sx, h-vb.H*sy
			switch align[:4] {
			case "xmid":
				tx += dx / 2
			case "xmax":
				tx += dx
			}
			switch align[4:] {
			case "ymid":
				ty += dy / 2
			case "ymax":
				ty += dy
			}
		}
	}
	return svgpath.Identity.Translate(tx, ty).Scale(sx, sy).Translate(-vb.X, -vb.Y)
}

// SetTarget sets the Transform matrix to draw within the bounds of the rectangle arguments,
// honouring the preserveAspectRatio attribute of the document.
func (s *Icon) SetTarget(x, y, w, h float64) {
	if s.ViewBox.W <= 0 || s.ViewBox.H <= 0 {
		s.Transform = svgpath.Identity.Translate(x, y)
		return
	}
	s.Transform = viewBoxTransform(s.ViewBox, s.AspectRatio, x, y, w, h)
}

// Draw the compiled SVG icon into the driver `d`.
// A document whose viewBox is empty is not rendered.
func (s *Icon) Draw(d Driver, opacity float64) {
	if s.ViewBox.W <= 0 || s.ViewBox.H <= 0 {
		return
	}
	for _, svgp := range s.SVGPaths {
		svgp.drawTransformed(d, opacity, s.Transform)
	}
}

// drawTransformed draws the compiled SvgPath into the driver while applying transform t.
func (svgp *SvgPath) drawTransformed(d Driver, opacity float64, t svgpath.Matrix2D) {
	style := svgp.Style
	m := t.Mult(style.transform)
	opacity *= style.Opacity

	willStroke := style.LinerColor != nil && style.LineWidth > 0
	filler, stroker := d.SetupDrawers(style.FillerColor != nil, willStroke)
	if filler != nil { // nil color disable filling
		filler.Clear()
		filler.SetWinding(style.UseNonZeroWinding)
		svgp.Path.AddTo(filler, m)
		filler.SetColor(style.FillerColor, style.FillOpacity*opacity)
		filler.Draw()
		filler.SetWinding(true) // default is true
	}

	if stroker != nil { // nil color disable lining
		stroker.Clear()
		scale := m.ScaleFactor()
		var dash []float64
		if len(style.Dash.Dash) > 0 {
			dash = make([]float64, len(style.Dash.Dash))
			for i, v := range style.Dash.Dash {
				dash[i] = v * scale
			}
		}
		stroker.SetStrokeOptions(StrokeOptions{
			LineWidth: fixed.Int26_6(style.LineWidth * scale * 64),
			Join:      style.Join,
			Dash:      DashOptions{Dash: dash, DashOffset: style.Dash.DashOffset * scale},
		})
		svgp.Path.AddTo(stroker, m)
		stroker.SetColor(style.LinerColor, style.LineOpacity*opacity)
		stroker.Draw()
	}
}
