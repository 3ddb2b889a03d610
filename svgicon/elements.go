package svgicon

import (
	"encoding/xml"
	"errors"
	"image/color"

	"github.com/benoitkugler/svgmerge/svgdoc"
	"github.com/benoitkugler/svgmerge/svgpath"
)

type svgFunc func(c *iconCursor, attrs []xml.Attr) error

var drawFuncs = map[string]svgFunc{
	"svg":            svgF,
	"g":              gF,
	"a":              gF,
	"switch":         gF,
	"defs":           defsF,
	"line":           lineF,
	"rect":           rectF,
	"circle":         circleF,
	"ellipse":        circleF, // circleF handles ellipse also
	"polyline":       polylineF,
	"polygon":        polygonF,
	"path":           pathF,
	"linearGradient": gradientF,
	"radialGradient": gradientF,
	"stop":           stopF,
}

// definitionElements are read inside defs
var definitionElements = map[string]bool{
	"defs":           true,
	"linearGradient": true,
	"radialGradient": true,
	"stop":           true,
}

// skippedElements are ignored, with their content
var skippedElements = map[string]bool{
	"clipPath":      true,
	"mask":          true,
	"symbol":        true,
	"style":         true,
	"script":        true,
	"marker":        true,
	"pattern":       true,
	"filter":        true,
	"metadata":      true,
	"title":         true,
	"desc":          true,
	"text":          true,
	"image":         true,
	"foreignObject": true,
}

var errParamMismatch = errors.New("param mismatch")

// readAttrs parses the numeric attributes listed in `into`.
// Missing attributes keep their value.
func readAttrs(attrs []xml.Attr, into map[string]*float64) error {
	for _, attr := range attrs {
		if attr.Name.Space != "" {
			continue
		}
		if ptr, ok := into[attr.Name.Local]; ok {
			f, err := readNumber(attr.Value)
			if err != nil {
				return err
			}
			*ptr = f
		}
	}
	return nil
}

func attrValue(attrs []xml.Attr, name string) (string, bool) {
	for _, attr := range attrs {
		if attr.Name.Local == name && (attr.Name.Space == "" || name == "href") {
			return attr.Value, true
		}
	}
	return "", false
}

func svgF(c *iconCursor, attrs []xml.Attr) error {
	root := svgdoc.Root{Attrs: attrs}
	if !c.rootSeen {
		c.rootSeen = true
		c.icon.ViewBox = root.NativeViewBox()
		c.icon.AspectRatio, _ = root.Attr("preserveAspectRatio")
		return nil
	}
	// nested document: establish its viewport
	var x, y float64
	if err := readAttrs(attrs, map[string]*float64{"x": &x, "y": &y}); err != nil {
		return err
	}
	style := c.style()
	style.transform = style.transform.Translate(x, y)
	vb, hasViewBox := root.ViewBox()
	w, okW := root.Attr("width")
	h, okH := root.Attr("height")
	if !hasViewBox || !okW || !okH || vb.W <= 0 || vb.H <= 0 {
		return nil
	}
	width, okW := svgdoc.ParseLength(w)
	height, okH := svgdoc.ParseLength(h)
	if okW && okH {
		aspect, _ := root.Attr("preserveAspectRatio")
		style.transform = style.transform.Mult(viewBoxTransform(vb, aspect, 0, 0, width, height))
	}
	return nil
}

func gF(*iconCursor, []xml.Attr) error { return nil } // g does nothing but push the style

func defsF(c *iconCursor, _ []xml.Attr) error {
	c.defsDepth++
	return nil
}

func rectF(c *iconCursor, attrs []xml.Attr) error {
	var x, y, w, h, rx, ry float64
	err := readAttrs(attrs, map[string]*float64{
		"x": &x, "y": &y, "width": &w, "height": &h, "rx": &rx, "ry": &ry,
	})
	if err != nil {
		return err
	}
	if w <= 0 || h <= 0 { // not drawn, but not an error
		return nil
	}
	c.path.AddRoundRect(x, y, w, h, rx, ry)
	return nil
}

func circleF(c *iconCursor, attrs []xml.Attr) error {
	var cx, cy, r, rx, ry float64
	err := readAttrs(attrs, map[string]*float64{
		"cx": &cx, "cy": &cy, "r": &r, "rx": &rx, "ry": &ry,
	})
	if err != nil {
		return err
	}
	if rx == 0 && ry == 0 {
		rx, ry = r, r
	} else if rx == 0 {
		rx = ry
	} else if ry == 0 {
		ry = rx
	}
	if rx <= 0 || ry <= 0 { // not drawn, but not an error
		return nil
	}
	c.path.AddEllipse(cx, cy, rx, ry)
	return nil
}

func lineF(c *iconCursor, attrs []xml.Attr) error {
	var x1, x2, y1, y2 float64
	err := readAttrs(attrs, map[string]*float64{
		"x1": &x1, "y1": &y1, "x2": &x2, "y2": &y2,
	})
	if err != nil {
		return err
	}
	c.path.AddPolyline([]float64{x1, y1, x2, y2}, false)
	return nil
}

func readPoints(c *iconCursor, attrs []xml.Attr, close bool) error {
	v, _ := attrValue(attrs, "points")
	points, err := svgpath.ParseNumbers(v)
	// the points before an error are still drawn
	c.path.AddPolyline(points, close)
	if err == nil && len(points)%2 != 0 {
		err = errParamMismatch
	}
	return err
}

func polylineF(c *iconCursor, attrs []xml.Attr) error { return readPoints(c, attrs, false) }

func polygonF(c *iconCursor, attrs []xml.Attr) error { return readPoints(c, attrs, true) }

func pathF(c *iconCursor, attrs []xml.Attr) error {
	d, _ := attrValue(attrs, "d")
	path, err := svgpath.Compile(d)
	c.path = append(c.path, path...)
	return err
}

func gradientF(c *iconCursor, attrs []xml.Attr) error {
	grad := &gradient{}
	if href, ok := attrValue(attrs, "href"); ok && len(href) > 1 && href[0] == '#' {
		grad.href = href[1:]
	}
	if id, ok := attrValue(attrs, "id"); ok && id != "" {
		c.icon.grads[id] = grad
	}
	c.grad = grad
	return nil
}

func stopF(c *iconCursor, attrs []xml.Attr) error {
	if c.grad == nil || c.grad.first != nil {
		return nil
	}
	col, opacity := color.NRGBA{A: 0xff}, 1.
	for _, decl := range declarations(attrs) {
		var err error
		switch decl.key {
		case "stop-color":
			if decl.value == "currentColor" {
				col = c.style().currentColor
			} else {
				col, err = parseColor(decl.value)
			}
		case "stop-opacity":
			opacity, err = readFraction(decl.value)
		}
		if err != nil {
			return err
		}
	}
	col.A = uint8(float64(col.A) * opacity)
	c.grad.first = &col
	return nil
}
