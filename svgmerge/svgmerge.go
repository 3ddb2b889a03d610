// Package svgmerge assembles the placed instances and the backdrop into
// one standalone SVG document.
//
// Each instance is embedded as a nested <svg> element: its placement is
// expressed with x, y, width and height, and its internal coordinate system
// is pinned by a viewBox equal to its native bounds. The content of the
// instance is copied verbatim, so that styles, animations and references
// keep working without any coordinate rewriting.
package svgmerge

import (
	"fmt"
	"strings"

	"github.com/benoitkugler/svgmerge/svgbg"
	"github.com/benoitkugler/svgmerge/svgdoc"
	"github.com/benoitkugler/svgmerge/svgplace"
)

const (
	preamble = `<?xml version="1.0" encoding="utf-8"?>`
	svgNS    = "http://www.w3.org/2000/svg"
	xlinkNS  = "http://www.w3.org/1999/xlink"
)

// placementAttrs are replaced on the nested element.
var placementAttrs = map[string]bool{
	"x":                   true,
	"y":                   true,
	"width":               true,
	"height":              true,
	"viewBox":             true,
	"preserveAspectRatio": true,
}

// Result is the composite document, with the ids of the instances which
// contributed to it and of those skipped because their markup has no
// readable svg root.
type Result struct {
	Document string
	Included []string
	Skipped  []string
}

// Compose builds the composite document of `instances` (in paint order)
// on `canvas`, with an optional backdrop.
// Instances which can't be parsed are skipped; Compose never fails.
// An empty list of instances produces a document with only the backdrop:
// rejecting empty exports is the responsibility of the caller.
func Compose(instances []svgplace.Instance, canvas svgplace.Canvas, background *svgbg.Config) Result {
	var (
		out       Result
		fragments []string
	)
	for _, inst := range instances {
		fragment, ok := renderInstance(inst)
		if !ok {
			out.Skipped = append(out.Skipped, inst.ID)
			continue
		}
		out.Included = append(out.Included, inst.ID)
		fragments = append(fragments, fragment)
	}

	w, h := svgdoc.FormatNumber(canvas.Width), svgdoc.FormatNumber(canvas.Height)
	var b strings.Builder
	b.WriteString(preamble)
	b.WriteByte('\n')
	fmt.Fprintf(&b, `<svg xmlns="%s" xmlns:xlink="%s" width="%s" height="%s" viewBox="0 0 %s %s">`, svgNS, xlinkNS, w, h, w, h)
	b.WriteByte('\n')
	if background != nil {
		b.WriteString(svgbg.Render(canvas.Width, canvas.Height, *background))
		b.WriteByte('\n')
	}
	for _, fragment := range fragments {
		b.WriteString(fragment)
		b.WriteByte('\n')
	}
	b.WriteString("</svg>\n")
	out.Document = b.String()
	return out
}

// Export is the same as Compose, returning only the document.
func Export(instances []svgplace.Instance, canvas svgplace.Canvas, background *svgbg.Config) string {
	return Compose(instances, canvas, background).Document
}

// renderInstance returns the nested element for `inst`, or false
// if its markup has no readable svg root.
func renderInstance(inst svgplace.Instance) (string, bool) {
	root, err := svgdoc.ReadRoot(inst.Markup)
	if err != nil {
		return "", false
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg x="%s" y="%s" width="%s" height="%s" viewBox="%s"`,
		svgdoc.FormatNumber(inst.X), svgdoc.FormatNumber(inst.Y),
		svgdoc.FormatNumber(inst.Width), svgdoc.FormatNumber(inst.Height),
		root.NativeViewBox())
	if par, ok := root.Attr("preserveAspectRatio"); ok {
		fmt.Fprintf(&b, ` preserveAspectRatio="%s"`, svgdoc.EscapeAttr(par))
	}
	// namespace declarations, style, class... are kept so that the
	// content stays valid once moved
	for _, attr := range root.Attrs {
		if attr.Name.Space == "" && placementAttrs[attr.Name.Local] {
			continue
		}
		fmt.Fprintf(&b, ` %s="%s"`, svgdoc.QualifiedName(attr.Name), svgdoc.EscapeAttr(attr.Value))
	}
	b.WriteByte('>')
	b.WriteString(root.PortableInner())
	b.WriteString("</svg>")
	return b.String(), true
}
