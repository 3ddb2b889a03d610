package svgpath

import (
	"math"

	"golang.org/x/image/math/fixed"
)

// Matrix2D represents the affine transform
//
//	| A C E |
//	| B D F |
//	| 0 0 1 |
type Matrix2D struct {
	A, B, C, D, E, F float64
}

// Identity is the transform doing nothing.
var Identity = Matrix2D{A: 1, D: 1}

// Mult returns m * b: b is applied first.
func (m Matrix2D) Mult(b Matrix2D) Matrix2D {
	return Matrix2D{
		A: m.A*b.A + m.C*b.B,
		B: m.B*b.A + m.D*b.B,
		C: m.A*b.C + m.C*b.D,
		D: m.B*b.C + m.D*b.D,
		E: m.A*b.E + m.C*b.F + m.E,
		F: m.B*b.E + m.D*b.F + m.F,
	}
}

// Translate appends a translation.
func (m Matrix2D) Translate(x, y float64) Matrix2D {
	return m.Mult(Matrix2D{A: 1, D: 1, E: x, F: y})
}

// Scale appends a scaling.
func (m Matrix2D) Scale(x, y float64) Matrix2D {
	return m.Mult(Matrix2D{A: x, D: y})
}

// Rotate appends a rotation of `theta` radians.
func (m Matrix2D) Rotate(theta float64) Matrix2D {
	s, c := math.Sincos(theta)
	return m.Mult(Matrix2D{A: c, B: s, C: -s, D: c})
}

// SkewX appends a skew along the x axis, of `theta` radians.
func (m Matrix2D) SkewX(theta float64) Matrix2D {
	return m.Mult(Matrix2D{A: 1, C: math.Tan(theta), D: 1})
}

// SkewY appends a skew along the y axis, of `theta` radians.
func (m Matrix2D) SkewY(theta float64) Matrix2D {
	return m.Mult(Matrix2D{A: 1, B: math.Tan(theta), D: 1})
}

// Transform applies the matrix to the point (x, y).
func (m Matrix2D) Transform(x, y float64) (float64, float64) {
	return x*m.A + y*m.C + m.E, x*m.B + y*m.D + m.F
}

// TFixed applies the matrix to a fixed point.
func (m Matrix2D) TFixed(p fixed.Point26_6) fixed.Point26_6 {
	x, y := m.Transform(float64(p.X)/64, float64(p.Y)/64)
	return toFixedP(x, y)
}

// ScaleFactor returns the mean scaling of the transform, used to
// scale line widths.
func (m Matrix2D) ScaleFactor() float64 {
	return math.Sqrt(math.Abs(m.A*m.D - m.B*m.C))
}
