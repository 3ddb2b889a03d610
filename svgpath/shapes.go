package svgpath

import (
	"math"

	"golang.org/x/image/math/fixed"
)

// This file implements the transformation from
// high level shapes to their path equivalent

// maxDx is the maximum radians a cubic splice is allowed to span
// in ellipse parametric when approximating an off-axis ellipse.
const maxDx float64 = math.Pi / 8

// kappa is the distance of the control points approximating
// a quarter of circle of radius 1.
const kappa = 0.5522847498

// toFixedP converts two floats to a fixed point.
func toFixedP(x, y float64) (p fixed.Point26_6) {
	p.X = fixed.Int26_6(math.Round(x * 64))
	p.Y = fixed.Int26_6(math.Round(y * 64))
	return
}

// AddRect adds a closed rectangle.
func (p *Path) AddRect(x, y, w, h float64) {
	p.Start(toFixedP(x, y))
	p.Line(toFixedP(x+w, y))
	p.Line(toFixedP(x+w, y+h))
	p.Line(toFixedP(x, y+h))
	p.Stop(true)
}

// AddRoundRect adds a rectangle with rounded corners of radius
// rx in the x axis and ry in the y axis. The radii are clamped
// to half the sides; if one is zero the other is used.
func (p *Path) AddRoundRect(x, y, w, h, rx, ry float64) {
	if rx <= 0 {
		rx = ry
	} else if ry <= 0 {
		ry = rx
	}
	rx, ry = math.Min(rx, w/2), math.Min(ry, h/2)
	if rx <= 0 || ry <= 0 {
		p.AddRect(x, y, w, h)
		return
	}
	kx, ky := rx*kappa, ry*kappa
	maxX, maxY := x+w, y+h

	p.Start(toFixedP(x+rx, y))
	p.Line(toFixedP(maxX-rx, y))
	p.CubeBezier(toFixedP(maxX-rx+kx, y), toFixedP(maxX, y+ry-ky), toFixedP(maxX, y+ry))
	p.Line(toFixedP(maxX, maxY-ry))
	p.CubeBezier(toFixedP(maxX, maxY-ry+ky), toFixedP(maxX-rx+kx, maxY), toFixedP(maxX-rx, maxY))
	p.Line(toFixedP(x+rx, maxY))
	p.CubeBezier(toFixedP(x+rx-kx, maxY), toFixedP(x, maxY-ry+ky), toFixedP(x, maxY-ry))
	p.Line(toFixedP(x, y+ry))
	p.CubeBezier(toFixedP(x, y+ry-ky), toFixedP(x+rx-kx, y), toFixedP(x+rx, y))
	p.Stop(true)
}

// AddEllipse adds a closed, axis aligned ellipse.
func (p *Path) AddEllipse(cx, cy, rx, ry float64) {
	kx, ky := rx*kappa, ry*kappa
	p.Start(toFixedP(cx+rx, cy))
	p.CubeBezier(toFixedP(cx+rx, cy+ky), toFixedP(cx+kx, cy+ry), toFixedP(cx, cy+ry))
	p.CubeBezier(toFixedP(cx-kx, cy+ry), toFixedP(cx-rx, cy+ky), toFixedP(cx-rx, cy))
	p.CubeBezier(toFixedP(cx-rx, cy-ky), toFixedP(cx-kx, cy-ry), toFixedP(cx, cy-ry))
	p.CubeBezier(toFixedP(cx+kx, cy-ry), toFixedP(cx+rx, cy-ky), toFixedP(cx+rx, cy))
	p.Stop(true)
}

// AddPolyline adds the segments joining `points`, given as
// x0, y0, x1, y1... An odd trailing coordinate is ignored.
func (p *Path) AddPolyline(points []float64, close bool) {
	if len(points) < 4 {
		return
	}
	p.Start(toFixedP(points[0], points[1]))
	for i := 2; i+1 < len(points); i += 2 {
		p.Line(toFixedP(points[i], points[i+1]))
	}
	p.Stop(close)
}

// arc is an elliptical arc in endpoint parametrization,
// as found in the A path command.
type arc struct {
	rx, ry       float64
	rotation     float64 // degrees
	large, sweep bool
	x, y         float64 // end point
}

// addArc adds the arc starting from (px, py) as cubic bezier curves.
// It returns the end point.
func (p *Path) addArc(a arc, px, py float64) (lx, ly float64) {
	if px == a.x && py == a.y {
		return px, py // omitted, per the SVG implementation notes
	}
	if a.rx == 0 || a.ry == 0 {
		p.Line(toFixedP(a.x, a.y))
		return a.x, a.y
	}
	ra, rb := math.Abs(a.rx), math.Abs(a.ry)
	rotX := a.rotation * math.Pi / 180 // Convert degress to radians
	cx, cy := findEllipseCenter(&ra, &rb, rotX, px, py, a.x, a.y, a.sweep, !a.large)

	startAngle := math.Atan2(py-cy, px-cx) - rotX
	endAngle := math.Atan2(a.y-cy, a.x-cx) - rotX
	deltaTheta := endAngle - startAngle
	arcBig := math.Abs(deltaTheta) > math.Pi

	// Approximate ellipse using cubic bezeir splines
	etaStart := math.Atan2(math.Sin(startAngle)/rb, math.Cos(startAngle)/ra)
	etaEnd := math.Atan2(math.Sin(endAngle)/rb, math.Cos(endAngle)/ra)
	deltaEta := etaEnd - etaStart
	if arcBig != a.large {
		if deltaEta < 0 {
			deltaEta += math.Pi * 2
		} else {
			deltaEta -= math.Pi * 2
		}
	}
	// needed when the center of the ellipse is the middle of the chord
	if deltaEta < 0 && a.sweep {
		deltaEta += math.Pi * 2
	} else if deltaEta >= 0 && !a.sweep {
		deltaEta -= math.Pi * 2
	}

	// Round up to determine number of cubic splines to approximate bezier curve
	segs := int(math.Abs(deltaEta)/maxDx) + 1
	dEta := deltaEta / float64(segs) // span of each segment
	// L. Maisonobe, "Drawing an elliptical arc using polylines, quadratic
	// or cubic Bezier curves", 2003
	tde := math.Tan(dEta / 2)
	alpha := math.Sin(dEta) * (math.Sqrt(4+3*tde*tde) - 1) / 3
	lx, ly = px, py
	sinTheta, cosTheta := math.Sincos(rotX)
	ldx, ldy := ellipsePrime(ra, rb, sinTheta, cosTheta, etaStart)
	for i := 1; i <= segs; i++ {
		eta := etaStart + dEta*float64(i)
		var px, py float64
		if i == segs {
			px, py = a.x, a.y // exact end point
		} else {
			px, py = ellipsePointAt(ra, rb, sinTheta, cosTheta, eta, cx, cy)
		}
		dx, dy := ellipsePrime(ra, rb, sinTheta, cosTheta, eta)
		p.CubeBezier(toFixedP(lx+alpha*ldx, ly+alpha*ldy),
			toFixedP(px-alpha*dx, py-alpha*dy), toFixedP(px, py))
		lx, ly, ldx, ldy = px, py, dx, dy
	}
	return lx, ly
}

// ellipsePrime gives tangent vectors for parameterized ellipse; a, b radii, eta parameter
func ellipsePrime(a, b, sinTheta, cosTheta, eta float64) (px, py float64) {
	bCosEta := b * math.Cos(eta)
	aSinEta := a * math.Sin(eta)
	px = -aSinEta*cosTheta - bCosEta*sinTheta
	py = -aSinEta*sinTheta + bCosEta*cosTheta
	return
}

// ellipsePointAt gives points for parameterized ellipse; a, b radii, eta parameter, center cx, cy
func ellipsePointAt(a, b, sinTheta, cosTheta, eta, cx, cy float64) (px, py float64) {
	aCosEta := a * math.Cos(eta)
	bSinEta := b * math.Sin(eta)
	px = cx + aCosEta*cosTheta - bSinEta*sinTheta
	py = cy + aCosEta*sinTheta + bSinEta*cosTheta
	return
}

// findEllipseCenter locates the center of the ellipse. If there is no
// solution, the radii are increased minimally (keeping their ratio) and
// updated through the `ra` and `rb` pointers.
// The problem is reduced to finding the center of a circle going through
// the origin and an arbitrary point.
func findEllipseCenter(ra, rb *float64, rotX, startX, startY, endX, endY float64, sweep, smallArc bool) (cx, cy float64) {
	cos, sin := math.Cos(rotX), math.Sin(rotX)

	// Move origin to start point
	nx, ny := endX-startX, endY-startY

	// Rotate ellipse x-axis to coordinate x-axis
	nx, ny = nx*cos+ny*sin, -nx*sin+ny*cos
	// Scale X dimension so that ra = rb
	nx *= *rb / *ra

	midX, midY := nx/2, ny/2
	midlenSq := midX*midX + midY*midY

	var hr float64
	if *rb**rb < midlenSq {
		// the chord is longer than the ellipse: scale it
		nrb := math.Sqrt(midlenSq)
		if *ra == *rb {
			*ra = nrb // prevents roundoff
		} else {
			*ra = *ra * nrb / *rb
		}
		*rb = nrb
	} else {
		hr = math.Sqrt(*rb**rb-midlenSq) / math.Sqrt(midlenSq)
	}
	if sweep == smallArc {
		cx = midX + midY*hr
		cy = midY - midX*hr
	} else {
		cx = midX - midY*hr
		cy = midY + midX*hr
	}

	// reverse scale
	cx *= *ra / *rb
	// reverse rotate and translate back to original coordinates
	return cx*cos - cy*sin + startX, cx*sin + cy*cos + startY
}
