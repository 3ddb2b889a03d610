// Provides a reduced reader for SVG documents, used to preview
// merged compositions.
// Documents are parsed into a list of styled paths,
// which can then be consumed by painting drivers,
// such as the rasterizer in svgraster.
//
// Only the basic shapes and paths are supported: text, images,
// filters, clipping and masking are ignored, and gradients are
// approximated by their first stop color.
package svgicon

import (
	"encoding/xml"
	"errors"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"strings"

	"github.com/benoitkugler/svgmerge/svgdoc"
	"github.com/benoitkugler/svgmerge/svgpath"
	"golang.org/x/net/html/charset"
)

// ErrorMode is the strategy used when an unsupported
// element or invalid attribute is found.
type ErrorMode uint8

const (
	// IgnoreErrorMode silently skips the faulty element or attribute
	IgnoreErrorMode ErrorMode = iota
	// WarnErrorMode skips it, but logs a warning
	WarnErrorMode
	// StrictErrorMode returns an error
	StrictErrorMode
)

var errNoSVG = errors.New("svgicon: no svg element found")

// SvgPath binds a style to a path
type SvgPath struct {
	Path  svgpath.Path
	Style PathStyle
}

// Icon holds data from parsed SVGs.
// See the `Draw` methods to use it.
type Icon struct {
	// ViewBox is the internal coordinate system of the document,
	// as exported in merged documents.
	ViewBox svgdoc.Bounds
	// AspectRatio is the raw preserveAspectRatio attribute.
	AspectRatio string
	SVGPaths    []SvgPath
	Transform   svgpath.Matrix2D

	grads map[string]*gradient
}

// ReadIcon parses `markup`.
// See ReadIconStream for the details.
func ReadIcon(markup string, errMode ErrorMode) (*Icon, error) {
	return ReadIconStream(strings.NewReader(markup), errMode)
}

// ReadIconStream reads the Icon from the given io.Reader.
// This only supports a sub-set of SVG, but is enough to draw many icons.
// errMode determines if the reader ignores, errors out, or logs a warning
// when it does not handle an element or an attribute.
// Malformed XML is always an error.
func ReadIconStream(stream io.Reader, errMode ErrorMode) (*Icon, error) {
	icon := &Icon{grads: make(map[string]*gradient), Transform: svgpath.Identity}
	cursor := &iconCursor{icon: icon, errorMode: errMode, styleStack: []PathStyle{DefaultStyle}}
	decoder := xml.NewDecoder(stream)
	decoder.CharsetReader = charset.NewReaderLabel
	decoder.Entity = xml.HTMLEntity
	for {
		t, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		switch se := t.(type) {
		case xml.Directive:
			if declared := svgdoc.DeclaredEntities(se); len(declared) != 0 {
				decoder.Entity = svgdoc.EntityMap(declared)
			}
		case xml.StartElement:
			if skippedElements[se.Name.Local] {
				if err := decoder.Skip(); err != nil {
					return nil, err
				}
				continue
			}
			// Reads all recognized style attributes from the start element
			// and places it on top of the styleStack
			if err := cursor.pushStyle(se.Attr); err != nil {
				return nil, err
			}
			if err := cursor.readStartElement(se); err != nil {
				return nil, err
			}
		case xml.EndElement:
			cursor.styleStack = cursor.styleStack[:len(cursor.styleStack)-1]
			switch se.Name.Local {
			case "defs":
				cursor.defsDepth--
			case "linearGradient", "radialGradient":
				cursor.grad = nil
			}
		}
	}
	if !cursor.rootSeen {
		return nil, errNoSVG
	}
	icon.resolvePaints()
	return icon, nil
}

// iconCursor is used while parsing SVG files
type iconCursor struct {
	icon       *Icon
	errorMode  ErrorMode
	styleStack []PathStyle
	path       svgpath.Path
	grad       *gradient // gradient whose stops are being read
	defsDepth  int
	rootSeen   bool
}

// handle applies the error mode to a non fatal error.
func (c *iconCursor) handle(err error) error {
	switch c.errorMode {
	case StrictErrorMode:
		return err
	case WarnErrorMode:
		slog.Warn("svg preview", "error", err)
	}
	return nil
}

func (c *iconCursor) style() *PathStyle { return &c.styleStack[len(c.styleStack)-1] }

func (c *iconCursor) readStartElement(se xml.StartElement) error {
	if c.defsDepth > 0 && !definitionElements[se.Name.Local] {
		return nil // not rendered
	}
	df, ok := drawFuncs[se.Name.Local]
	if !ok {
		return c.handle(fmt.Errorf("svgicon: cannot process svg element %s", se.Name.Local))
	}
	if err := df(c, se.Attr); err != nil {
		if err := c.handle(fmt.Errorf("svgicon: element %s: %w", se.Name.Local, err)); err != nil {
			return err
		}
	}

	if len(c.path) > 0 {
		// the cursor parsed a path from the xml element
		if style := *c.style(); !style.hidden {
			pathCopy := append(svgpath.Path(nil), c.path...)
			c.icon.SVGPaths = append(c.icon.SVGPaths, SvgPath{Path: pathCopy, Style: style})
		}
		c.path = c.path[:0]
	}
	return nil
}

// gradient only keeps the first stop of a gradient definition
type gradient struct {
	first *color.NRGBA
	href  string // gradient inheriting its stops
}

// maxHrefDepth bounds the chains of gradients referencing each other.
const maxHrefDepth = 8

func (icon *Icon) gradientColor(id string) (color.NRGBA, bool) {
	for i := 0; i < maxHrefDepth; i++ {
		grad, ok := icon.grads[id]
		if !ok {
			return color.NRGBA{}, false
		}
		if grad.first != nil {
			return *grad.first, true
		}
		id = grad.href
	}
	return color.NRGBA{}, false
}

func (icon *Icon) resolvePaint(p paint, current color.NRGBA) color.Color {
	switch p.kind {
	case paintColor:
		return p.color
	case paintCurrent:
		return current
	case paintRef:
		if c, ok := icon.gradientColor(p.ref); ok {
			return c
		}
		if p.fallback {
			return p.color
		}
	}
	return nil
}

// resolvePaints sets the final colors, once every gradient is known.
func (icon *Icon) resolvePaints() {
	for i := range icon.SVGPaths {
		style := &icon.SVGPaths[i].Style
		style.FillerColor = icon.resolvePaint(style.fill, style.currentColor)
		style.LinerColor = icon.resolvePaint(style.stroke, style.currentColor)
	}
}
