// Implements an abstract representation of
// svg paths, which can then be consumed
// by painting drivers.
package svgpath

import (
	"fmt"
	"strings"

	"golang.org/x/image/math/fixed"
)

// Adder is implemented by the types accumulating path commands,
// such as the rasterx filler and dasher.
type Adder interface {
	// Start starts a new curve at the given point.
	Start(a fixed.Point26_6)
	// Line adds a line segment to the path
	Line(b fixed.Point26_6)
	// QuadBezier adds a quadratic bezier curve to the path
	QuadBezier(b, c fixed.Point26_6)
	// CubeBezier adds a cubic bezier curve to the path
	CubeBezier(b, c, d fixed.Point26_6)
	// Closes the path to the start point if closeLoop is true
	Stop(closeLoop bool)
}

// Operation groups the different SVG commands
type Operation interface {
	// addTo sends the operation to `q`, after applying `m`
	addTo(q Adder, m Matrix2D)
}

type MoveTo fixed.Point26_6

type LineTo fixed.Point26_6

type QuadTo [2]fixed.Point26_6

type CubicTo [3]fixed.Point26_6

type Close struct{}

func (op MoveTo) addTo(q Adder, m Matrix2D) {
	q.Stop(false) // implicit close if currently in path.
	q.Start(m.TFixed(fixed.Point26_6(op)))
}

func (op LineTo) addTo(q Adder, m Matrix2D) { q.Line(m.TFixed(fixed.Point26_6(op))) }

func (op QuadTo) addTo(q Adder, m Matrix2D) { q.QuadBezier(m.TFixed(op[0]), m.TFixed(op[1])) }

func (op CubicTo) addTo(q Adder, m Matrix2D) {
	q.CubeBezier(m.TFixed(op[0]), m.TFixed(op[1]), m.TFixed(op[2]))
}

func (Close) addTo(q Adder, _ Matrix2D) { q.Stop(true) }

// Path describes a sequence of basic SVG operations, which should not be nil
// Higher-level shapes may be reduced to a path.
type Path []Operation

func fixedToString(v fixed.Int26_6) string {
	return fmt.Sprintf("%4.3f", float64(v)/64)
}

// ToSVGPath returns a string representation of the path
func (p Path) ToSVGPath() string {
	chunks := make([]string, len(p))
	for i, op := range p {
		switch op := op.(type) {
		case MoveTo:
			chunks[i] = "M" + fixedToString(op.X) + "," + fixedToString(op.Y)
		case LineTo:
			chunks[i] = "L" + fixedToString(op.X) + "," + fixedToString(op.Y)
		case QuadTo:
			chunks[i] = "Q" + fixedToString(op[0].X) + "," + fixedToString(op[0].Y) + "," +
				fixedToString(op[1].X) + "," + fixedToString(op[1].Y)
		case CubicTo:
			chunks[i] = "C" + fixedToString(op[0].X) + "," + fixedToString(op[0].Y) + "," +
				fixedToString(op[1].X) + "," + fixedToString(op[1].Y) + "," +
				fixedToString(op[2].X) + "," + fixedToString(op[2].Y)
		case Close:
			chunks[i] = "Z"
		}
	}
	return strings.Join(chunks, " ")
}

// String returns a readable representation of a Path.
func (p Path) String() string {
	return p.ToSVGPath()
}

// Clear zeros the path slice
func (p *Path) Clear() {
	*p = (*p)[:0]
}

// Start starts a new curve at the given point.
func (p *Path) Start(a fixed.Point26_6) {
	*p = append(*p, MoveTo(a))
}

// Line adds a linear segment to the current curve.
func (p *Path) Line(b fixed.Point26_6) {
	*p = append(*p, LineTo(b))
}

// QuadBezier adds a quadratic segment to the current curve.
func (p *Path) QuadBezier(b, c fixed.Point26_6) {
	*p = append(*p, QuadTo{b, c})
}

// CubeBezier adds a cubic segment to the current curve.
func (p *Path) CubeBezier(b, c, d fixed.Point26_6) {
	*p = append(*p, CubicTo{b, c, d})
}

// Stop joins the ends of the path
func (p *Path) Stop(closeLoop bool) {
	if closeLoop {
		*p = append(*p, Close{})
	}
}

// AddTo sends the path to `q`, applying the transform `m`.
func (p Path) AddTo(q Adder, m Matrix2D) {
	for _, op := range p {
		op.addTo(q, m)
	}
	q.Stop(false)
}
