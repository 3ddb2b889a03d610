package svgicon

import (
	"encoding/xml"
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/benoitkugler/svgmerge/svgdoc"
	"github.com/benoitkugler/svgmerge/svgpath"
)

// PathStyle holds the state of the SVG style
type PathStyle struct {
	FillOpacity, LineOpacity float64
	// Opacity is the product of the group opacities
	Opacity           float64
	LineWidth         float64
	UseNonZeroWinding bool

	Join JoinOptions
	Dash DashOptions

	// FillerColor and LinerColor are nil when the path
	// is not filled or stroked
	FillerColor, LinerColor color.Color

	fill, stroke paint
	currentColor color.NRGBA
	hidden       bool
	transform    svgpath.Matrix2D // current transform
}

// DefaultStyle is the initial value of the properties: black fill,
// nonzero winding rule, full opacity, no stroke, butt caps
// and miter joins.
var DefaultStyle = PathStyle{
	FillOpacity:       1,
	LineOpacity:       1,
	Opacity:           1,
	LineWidth:         1,
	UseNonZeroWinding: true,
	Join: JoinOptions{
		MiterLimit: 4,
		LineJoin:   Miter,
		LineCap:    ButtCap,
	},
	fill:         paint{kind: paintColor, color: color.NRGBA{A: 0xff}},
	currentColor: color.NRGBA{A: 0xff},
	transform:    svgpath.Identity,
}

// declaration is a property:value pair
type declaration struct{ key, value string }

// declarations returns the presentation attributes followed by the
// content of the style attribute, which takes precedence.
func declarations(attrs []xml.Attr) []declaration {
	var out, inline []declaration
	for _, attr := range attrs {
		if attr.Name.Space != "" {
			continue
		}
		if strings.EqualFold(attr.Name.Local, "style") {
			for _, pair := range strings.Split(attr.Value, ";") {
				k, v, ok := strings.Cut(pair, ":")
				if !ok {
					continue
				}
				v = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "!important"))
				inline = append(inline, declaration{strings.ToLower(strings.TrimSpace(k)), v})
			}
			continue
		}
		out = append(out, declaration{strings.ToLower(attr.Name.Local), strings.TrimSpace(attr.Value)})
	}
	return append(out, inline...)
}

// pushStyle reads the style properties of an element and pushes
// the resulting style on the stack.
// Invalid values are handled according to the error mode.
func (c *iconCursor) pushStyle(attrs []xml.Attr) error {
	// Make a copy of the top style
	curStyle := *c.style()
	for _, decl := range declarations(attrs) {
		if err := c.readStyleAttr(&curStyle, decl.key, decl.value); err != nil {
			if err := c.handle(fmt.Errorf("svgicon: %s: %w", decl.key, err)); err != nil {
				return err
			}
		}
	}
	c.styleStack = append(c.styleStack, curStyle) // Push style onto stack
	return nil
}

func readNumber(v string) (float64, error) {
	f, ok := svgdoc.ParseLength(v)
	if !ok {
		return 0, fmt.Errorf("invalid number %q", v)
	}
	return f, nil
}

// readFraction reads a number or a percentage, clamped to [0, 1].
func readFraction(v string) (float64, error) {
	v = strings.TrimSpace(v)
	d := 1.
	if strings.HasSuffix(v, "%") {
		d = 100
		v = strings.TrimSuffix(v, "%")
	}
	f, err := readNumber(v)
	if err != nil {
		return 0, err
	}
	return math.Max(0, math.Min(1, f/d)), nil
}

func (c *iconCursor) readStyleAttr(curStyle *PathStyle, k, v string) error {
	if v == "inherit" {
		return nil // the copy of the parent style already holds the value
	}
	switch k {
	case "fill":
		p, err := parsePaint(v)
		if err != nil {
			return err
		}
		curStyle.fill = p
	case "stroke":
		p, err := parsePaint(v)
		if err != nil {
			return err
		}
		curStyle.stroke = p
	case "color":
		col, err := parseColor(v)
		if err != nil {
			return err
		}
		curStyle.currentColor = col
	case "fill-rule":
		curStyle.UseNonZeroWinding = v != "evenodd"
	case "display":
		if v == "none" {
			curStyle.hidden = true
		}
	case "visibility":
		curStyle.hidden = v == "hidden" || v == "collapse"
	case "stroke-linecap":
		switch v {
		case "butt":
			curStyle.Join.LineCap = ButtCap
		case "round":
			curStyle.Join.LineCap = RoundCap
		case "square":
			curStyle.Join.LineCap = SquareCap
		default:
			return fmt.Errorf("unsupported value %q", v)
		}
	case "stroke-linejoin":
		switch v {
		case "miter":
			curStyle.Join.LineJoin = Miter
		case "miter-clip":
			curStyle.Join.LineJoin = MiterClip
		case "round":
			curStyle.Join.LineJoin = Round
		case "arcs":
			curStyle.Join.LineJoin = Arc
		case "bevel":
			curStyle.Join.LineJoin = Bevel
		default:
			return fmt.Errorf("unsupported value %q", v)
		}
	case "stroke-miterlimit":
		mLimit, err := readNumber(v)
		if err != nil {
			return err
		}
		curStyle.Join.MiterLimit = mLimit
	case "stroke-width":
		width, err := readNumber(v)
		if err != nil {
			return err
		}
		curStyle.LineWidth = width
	case "stroke-dashoffset":
		dashOffset, err := readNumber(v)
		if err != nil {
			return err
		}
		curStyle.Dash.DashOffset = dashOffset
	case "stroke-dasharray":
		if v == "none" {
			curStyle.Dash.Dash = nil
			break
		}
		dashes, err := svgpath.ParseNumbers(v)
		if err != nil {
			return err
		}
		var sum float64
		for _, d := range dashes {
			if d < 0 {
				return fmt.Errorf("negative dash %g", d)
			}
			sum += d
		}
		if sum == 0 { // rendered as a solid line
			curStyle.Dash.Dash = nil
			break
		}
		if len(dashes)%2 == 1 { // repeated to yield an even number of values
			dashes = append(dashes, dashes...)
		}
		curStyle.Dash.Dash = dashes
	case "opacity":
		op, err := readFraction(v)
		if err != nil {
			return err
		}
		curStyle.Opacity *= op
	case "fill-opacity":
		op, err := readFraction(v)
		if err != nil {
			return err
		}
		curStyle.FillOpacity = op
	case "stroke-opacity":
		op, err := readFraction(v)
		if err != nil {
			return err
		}
		curStyle.LineOpacity = op
	case "transform":
		m, err := parseTransform(curStyle.transform, v)
		if err != nil {
			return err
		}
		curStyle.transform = m
	}
	return nil
}

// parseTransform appends the transformations described by `v` to `m1`.
func parseTransform(m1 svgpath.Matrix2D, v string) (svgpath.Matrix2D, error) {
	for _, t := range strings.Split(v, ")") {
		t = strings.TrimLeft(strings.TrimSpace(t), ", ")
		if len(t) == 0 {
			continue
		}
		name, args, ok := strings.Cut(t, "(")
		if !ok {
			return m1, fmt.Errorf("badly formed transformation %q", t)
		}
		points, err := svgpath.ParseNumbers(args)
		if err != nil {
			return m1, err
		}
		m1, err = readTransformAttr(m1, strings.ToLower(strings.TrimSpace(name)), points)
		if err != nil {
			return m1, err
		}
	}
	return m1, nil
}

func readTransformAttr(m1 svgpath.Matrix2D, k string, points []float64) (svgpath.Matrix2D, error) {
	ln := len(points)
	switch {
	case k == "rotate" && ln == 1:
		return m1.Rotate(points[0] * math.Pi / 180), nil
	case k == "rotate" && ln == 3:
		return m1.Translate(points[1], points[2]).
			Rotate(points[0]*math.Pi/180).
			Translate(-points[1], -points[2]), nil
	case k == "translate" && ln == 1:
		return m1.Translate(points[0], 0), nil
	case k == "translate" && ln == 2:
		return m1.Translate(points[0], points[1]), nil
	case k == "skewx" && ln == 1:
		return m1.SkewX(points[0] * math.Pi / 180), nil
	case k == "skewy" && ln == 1:
		return m1.SkewY(points[0] * math.Pi / 180), nil
	case k == "scale" && ln == 1:
		return m1.Scale(points[0], points[0]), nil
	case k == "scale" && ln == 2:
		return m1.Scale(points[0], points[1]), nil
	case k == "matrix" && ln == 6:
		return m1.Mult(svgpath.Matrix2D{
			A: points[0], B: points[1],
			C: points[2], D: points[3],
			E: points[4], F: points[5],
		}), nil
	}
	return m1, fmt.Errorf("invalid transformation %s with %d parameters", k, ln)
}
