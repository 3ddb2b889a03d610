package svgicon

import (
	"errors"
	"image/color"
	"math"
	"testing"

	"github.com/benoitkugler/svgmerge/svgdoc"
	"github.com/benoitkugler/svgmerge/svgpath"
	"golang.org/x/image/math/fixed"
)

func readIcon(t *testing.T, markup string) *Icon {
	t.Helper()
	icon, err := ReadIcon(markup, StrictErrorMode)
	if err != nil {
		t.Fatalf("can't read icon: %s", err)
	}
	return icon
}

func TestReadShapes(t *testing.T) {
	icon := readIcon(t, `<svg xmlns="http://www.w3.org/2000/svg" width="200" height="100">
		<rect x="10" y="10" width="50" height="20" rx="4"/>
		<circle cx="50" cy="50" r="10"/>
		<ellipse cx="50" cy="50" rx="10" ry="5"/>
		<line x1="0" y1="0" x2="10" y2="10" stroke="black"/>
		<polyline points="0,0 10,10 20,0" />
		<polygon points="0,0 10,10 20,0" />
		<path d="M0 0 h 10 v 10 z"/>
		<rect width="0" height="10"/>
	</svg>`)
	if len(icon.SVGPaths) != 7 {
		t.Errorf("expected 7 paths, got %d", len(icon.SVGPaths))
	}
	if icon.ViewBox != (svgdoc.Bounds{W: 200, H: 100}) {
		t.Errorf("unexpected viewBox %v", icon.ViewBox)
	}
}

func TestStyleInheritance(t *testing.T) {
	icon := readIcon(t, `<svg viewBox="0 0 10 10">
		<g fill="red" opacity="0.5" stroke-width="3">
			<g opacity="0.5"><rect width="1" height="1"/></g>
			<rect width="1" height="1" fill="blue" style="fill: #00ff00 !important; stroke: black"/>
		</g>
		<rect width="1" height="1" color="#123456" fill="currentColor" fill-rule="evenodd"/>
	</svg>`)
	if len(icon.SVGPaths) != 3 {
		t.Fatalf("expected 3 paths, got %d", len(icon.SVGPaths))
	}
	first := icon.SVGPaths[0].Style
	if first.FillerColor != (color.NRGBA{R: 0xff, A: 0xff}) || first.Opacity != 0.25 || first.LineWidth != 3 {
		t.Errorf("unexpected inherited style %+v", first)
	}
	if first.LinerColor != nil {
		t.Errorf("stroke should be disabled by default")
	}
	second := icon.SVGPaths[1].Style
	if second.FillerColor != (color.NRGBA{G: 0xff, A: 0xff}) || second.LinerColor != (color.NRGBA{A: 0xff}) {
		t.Errorf("style attribute should take precedence, got %+v", second)
	}
	third := icon.SVGPaths[2].Style
	if third.FillerColor != (color.NRGBA{R: 0x12, G: 0x34, B: 0x56, A: 0xff}) || third.UseNonZeroWinding {
		t.Errorf("unexpected style %+v", third)
	}
}

func TestDeclaredEntities(t *testing.T) {
	icon := readIcon(t, `<?xml version="1.0" encoding="utf-8"?>
<!DOCTYPE svg PUBLIC "-//W3C//DTD SVG 1.1//EN" "http://www.w3.org/Graphics/SVG/1.1/DTD/svg11.dtd" [
	<!ENTITY ns_svg "http://www.w3.org/2000/svg">
	<!ENTITY st0 "fill:#0000FF;">
]>
<svg xmlns="&ns_svg;" viewBox="0 0 10 10"><rect style="&st0;" width="1" height="1"/><title>a&nbsp;b</title></svg>`)
	if len(icon.SVGPaths) != 1 {
		t.Fatalf("expected 1 path, got %d", len(icon.SVGPaths))
	}
	if fill := icon.SVGPaths[0].Style.FillerColor; fill != (color.NRGBA{B: 0xff, A: 0xff}) {
		t.Errorf("unexpected fill %v", fill)
	}
}

func TestSkippedContent(t *testing.T) {
	icon := readIcon(t, `<svg viewBox="0 0 10 10">
		<title>Logo</title>
		<style>rect { fill: red }</style>
		<defs><rect id="r" width="1" height="1"/></defs>
		<clipPath id="c"><rect width="1" height="1"/></clipPath>
		<g display="none"><rect width="1" height="1"/></g>
		<text x="0" y="0">hello <tspan>world</tspan></text>
		<rect width="2" height="2"/>
	</svg>`)
	if len(icon.SVGPaths) != 1 {
		t.Errorf("expected only the last rect, got %d paths", len(icon.SVGPaths))
	}
}

func TestGradientFirstStop(t *testing.T) {
	icon := readIcon(t, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 10 10">
		<rect width="1" height="1" fill="url(#late)"/>
		<defs>
			<linearGradient id="g">
				<stop offset="0" stop-color="#00ff00" stop-opacity="0.5"/>
				<stop offset="1" stop-color="blue"/>
			</linearGradient>
			<radialGradient id="ref" xlink:href="#g"/>
		</defs>
		<rect width="1" height="1" fill="url(#g)"/>
		<rect width="1" height="1" stroke="url('#ref')"/>
		<rect width="1" height="1" fill="url(#missing) red"/>
		<rect width="1" height="1" fill="url(#missing)"/>
		<linearGradient id="late"><stop style="stop-color: rgb(10, 20, 30)"/></linearGradient>
	</svg>`)
	if len(icon.SVGPaths) != 5 {
		t.Fatalf("expected 5 paths, got %d", len(icon.SVGPaths))
	}
	half := color.NRGBA{G: 0xff, A: 127}
	for i, exp := range []color.Color{color.NRGBA{R: 10, G: 20, B: 30, A: 0xff}, half, nil, color.NRGBA{R: 0xff, A: 0xff}, nil} {
		if got := icon.SVGPaths[i].Style.FillerColor; i != 2 && got != exp {
			t.Errorf("path %d: expected fill %v, got %v", i, exp, got)
		}
	}
	if got := icon.SVGPaths[2].Style.LinerColor; got != half {
		t.Errorf("expected stroke resolved through href, got %v", got)
	}
}

func TestErrorModes(t *testing.T) {
	const unknown = `<svg viewBox="0 0 10 10"><foo/><rect width="1" height="1" fill="nocolor"/></svg>`
	icon, err := ReadIcon(unknown, IgnoreErrorMode)
	if err != nil {
		t.Fatal(err)
	}
	if len(icon.SVGPaths) != 1 || icon.SVGPaths[0].Style.FillerColor != (color.NRGBA{A: 0xff}) {
		t.Errorf("invalid fill should be ignored, got %+v", icon.SVGPaths)
	}
	if _, err := ReadIcon(unknown, WarnErrorMode); err != nil {
		t.Errorf("warn mode should not fail: %s", err)
	}
	if _, err := ReadIcon(unknown, StrictErrorMode); err == nil {
		t.Error("strict mode should fail")
	}

	// the valid prefix of a path is kept
	icon, err = ReadIcon(`<svg viewBox="0 0 10 10"><path d="M0 0 L 10 10 L"/></svg>`, IgnoreErrorMode)
	if err != nil || len(icon.SVGPaths) != 1 {
		t.Errorf("unexpected result %v %v", icon, err)
	}

	if _, err := ReadIcon(`<svg><rect></svg>`, IgnoreErrorMode); err == nil {
		t.Error("malformed xml should fail")
	}
	if _, err := ReadIcon(`<g/>`, IgnoreErrorMode); !errors.Is(err, errNoSVG) {
		t.Errorf("expected errNoSVG, got %v", err)
	}
}

func TestParseColor(t *testing.T) {
	for _, test := range []struct {
		in       string
		expected color.NRGBA
	}{
		{"#f00", color.NRGBA{R: 0xff, A: 0xff}},
		{"#FF000080", color.NRGBA{R: 0xff, A: 0x80}},
		{"#0f08", color.NRGBA{G: 0xff, A: 0x88}},
		{"rgb(255, 0, 0)", color.NRGBA{R: 0xff, A: 0xff}},
		{"rgba(0,0,255,0.5)", color.NRGBA{B: 0xff, A: 128}},
		{"rgb(100%, 0%, 0%)", color.NRGBA{R: 0xff, A: 0xff}},
		{"rgb(0 0 0 / 50%)", color.NRGBA{A: 128}},
		{"hsl(120, 100%, 50%)", color.NRGBA{G: 0xff, A: 0xff}},
		{"CornflowerBlue", color.NRGBA{R: 100, G: 149, B: 237, A: 0xff}},
		{"transparent", color.NRGBA{}},
	} {
		got, err := parseColor(test.in)
		if err != nil {
			t.Fatalf("%s: %s", test.in, err)
		}
		if got != test.expected {
			t.Errorf("%s: expected %v, got %v", test.in, test.expected, got)
		}
	}
	for _, in := range []string{"#12", "#gggggg", "rgb(1,2)", "hsl(a, 1, 1)", "nocolor"} {
		if _, err := parseColor(in); err == nil {
			t.Errorf("%s: expected error", in)
		}
	}
}

func TestParseTransform(t *testing.T) {
	m, err := parseTransform(svgpath.Identity, "translate(10) scale(2), rotate(90 1 1)")
	if err != nil {
		t.Fatal(err)
	}
	x, y := m.Transform(1, 2)
	// rotation around (1, 1) sends (1, 2) to (0, 1)
	if math.Abs(x-10) > 1e-9 || math.Abs(y-2) > 1e-9 {
		t.Errorf("unexpected point %v %v", x, y)
	}
	for _, bad := range []string{"translate(1, 2, 3)", "scale", "unknown(1)"} {
		if _, err := parseTransform(svgpath.Identity, bad); err == nil {
			t.Errorf("%s: expected error", bad)
		}
	}
}

func TestSetTarget(t *testing.T) {
	icon := &Icon{ViewBox: svgdoc.Bounds{X: 0, Y: 0, W: 10, H: 20}}
	check := func(aspect string, px, py, ex, ey float64) {
		t.Helper()
		icon.AspectRatio = aspect
		icon.SetTarget(0, 0, 100, 100)
		if x, y := icon.Transform.Transform(px, py); math.Abs(x-ex) > 1e-9 || math.Abs(y-ey) > 1e-9 {
			t.Errorf("%q: expected (%v, %v), got (%v, %v)", aspect, ex, ey, x, y)
		}
	}
	check("", 0, 0, 25, 0)
	check("", 10, 20, 75, 100)
	check("xMinYMin meet", 0, 0, 0, 0)
	check("xMaxYMax", 10, 20, 100, 100)
	check("none", 10, 20, 100, 100)
	check("xMidYMid slice", 0, 0, 0, -50)

	icon.ViewBox = svgdoc.Bounds{X: 5, Y: 5, W: 10, H: 10}
	icon.AspectRatio = ""
	icon.SetTarget(100, 100, 20, 20)
	if x, y := icon.Transform.Transform(5, 5); x != 100 || y != 100 {
		t.Errorf("viewBox origin should map to the target corner, got %v %v", x, y)
	}
}

type drawer struct {
	starts  int
	color   color.Color
	opacity float64
	options StrokeOptions
	drawn   int
}

func (d *drawer) Start(fixed.Point26_6) { d.starts++ }
func (d *drawer) Line(fixed.Point26_6) {}
func (d *drawer) QuadBezier(_, _ fixed.Point26_6) {}
func (d *drawer) CubeBezier(_, _, _ fixed.Point26_6) {}
func (d *drawer) Stop(bool) {}
func (d *drawer) Clear() {}
func (d *drawer) SetColor(c color.Color, opacity float64) { d.color, d.opacity = c, opacity }
func (d *drawer) Draw() { d.drawn++ }
func (d *drawer) SetWinding(bool) {}
func (d *drawer) SetStrokeOptions(options StrokeOptions) { d.options = options }

type driver struct{ fill, stroke drawer }

func (d *driver) SetupDrawers(willFill, willStroke bool) (Filler, Stroker) {
	var (
		f Filler
		s Stroker
	)
	if willFill {
		f = &d.fill
	}
	if willStroke {
		s = &d.stroke
	}
	return f, s
}

func TestDraw(t *testing.T) {
	icon := readIcon(t, `<svg viewBox="0 0 10 10">
		<rect width="10" height="10" fill="red" fill-opacity="0.5" opacity="0.5"/>
		<path d="M0 0 L10 10" fill="none" stroke="blue" stroke-width="2" stroke-dasharray="1"/>
	</svg>`)
	icon.SetTarget(0, 0, 100, 100)
	var d driver
	icon.Draw(&d, 1)
	if d.fill.drawn != 1 || d.stroke.drawn != 1 {
		t.Fatalf("expected one fill and one stroke, got %d %d", d.fill.drawn, d.stroke.drawn)
	}
	if d.fill.opacity != 0.25 {
		t.Errorf("unexpected fill opacity %v", d.fill.opacity)
	}
	if d.stroke.options.LineWidth != fixed.I(20) {
		t.Errorf("stroke width should be scaled, got %v", d.stroke.options.LineWidth)
	}
	if len(d.stroke.options.Dash.Dash) != 2 || d.stroke.options.Dash.Dash[0] != 10 {
		t.Errorf("unexpected dashes %v", d.stroke.options.Dash.Dash)
	}

	// empty viewBox: not rendered
	icon.ViewBox.W = 0
	icon.Draw(&d, 1)
	if d.fill.drawn != 1 {
		t.Error("empty viewBox should not be rendered")
	}
}
