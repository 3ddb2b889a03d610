// Provides a lightweight reader for the root element of SVG documents.
// It is enough to resolve the intrinsic size of an arbitrary document and to
// re-embed its content verbatim inside another one, without going through a
// full parse and re-serialization.
package svgdoc

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/net/html/charset"
)

// Bounds defines a bounding box, such as a viewBox.
type Bounds struct{ X, Y, W, H float64 }

// String returns the bounds in the `min-x min-y width height` form
// used by the viewBox attribute.
func (b Bounds) String() string {
	return FormatNumber(b.X) + " " + FormatNumber(b.Y) + " " +
		FormatNumber(b.W) + " " + FormatNumber(b.H)
}

// Dimensions is the size of a document, in user units.
type Dimensions struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Fallback is used for documents which don't declare a usable size.
var Fallback = Dimensions{Width: 100, Height: 100}

var (
	errNoRoot       = errors.New("svgdoc: no svg element found")
	errUnclosedRoot = errors.New("svgdoc: svg element is not closed")
)

// Root is the first svg element of a document.
type Root struct {
	// Attrs are the attributes as written in the source: namespace
	// prefixes are not resolved, so Name.Space holds the prefix (if any).
	Attrs []xml.Attr
	// Inner is the raw markup between the start and end tags of the element.
	// It may reference entities declared in the DOCTYPE: see PortableInner.
	Inner string
	// Entities are the entities declared in the DOCTYPE of the document.
	Entities map[string]string
}

// ReadRoot parses `markup` and returns its first svg element.
// The whole document must be well-formed.
func ReadRoot(markup string) (*Root, error) {
	src, err := toUTF8(markup)
	if err != nil {
		return nil, err
	}
	decoder := newDecoder(strings.NewReader(src))

	var (
		found, closed                  bool
		depth                          int
		tagStart, innerStart, innerEnd int64
		entities                       map[string]string
	)
	for {
		offset := decoder.InputOffset()
		t, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		switch se := t.(type) {
		case xml.Directive:
			if found {
				continue
			}
			if declared := DeclaredEntities(se); len(declared) != 0 {
				entities = declared
				decoder.Entity = EntityMap(entities)
			}
		case xml.StartElement:
			if closed {
				continue
			}
			if found {
				depth++
				continue
			}
			if se.Name.Local == "svg" {
				found = true
				depth = 1
				tagStart, innerStart = offset, decoder.InputOffset()
			}
		case xml.EndElement:
			if !found || closed {
				continue
			}
			depth--
			if depth == 0 {
				closed = true
				innerEnd = offset
			}
		}
	}
	if !found {
		return nil, errNoRoot
	}
	if !closed {
		return nil, errUnclosedRoot
	}
	attrs, err := readRawAttrs(src[tagStart:innerStart], entities)
	if err != nil {
		return nil, err
	}
	return &Root{Attrs: attrs, Inner: src[innerStart:innerEnd], Entities: entities}, nil
}

// Attr returns the value of the unprefixed attribute `name`.
func (r *Root) Attr(name string) (string, bool) {
	for _, attr := range r.Attrs {
		if attr.Name.Space == "" && attr.Name.Local == name {
			return attr.Value, true
		}
	}
	return "", false
}

// ViewBox returns the viewBox declared on the element, if it is made of
// exactly four finite numbers.
func (r *Root) ViewBox() (Bounds, bool) {
	v, ok := r.Attr("viewBox")
	if !ok {
		return Bounds{}, false
	}
	return ParseViewBox(v)
}

// Dimensions resolves the intrinsic size of the element: explicit width
// and height take precedence over the viewBox, and Fallback is used when
// neither is usable.
// Zero or negative values are returned as they are.
func (r *Root) Dimensions() Dimensions {
	w, okW := r.Attr("width")
	h, okH := r.Attr("height")
	if okW && okH {
		width, okW := ParseLength(w)
		height, okH := ParseLength(h)
		if okW && okH {
			return Dimensions{Width: width, Height: height}
		}
	}
	if vb, ok := r.ViewBox(); ok {
		return Dimensions{Width: vb.W, Height: vb.H}
	}
	return Fallback
}

// NativeViewBox returns the internal coordinate system of the element:
// its own viewBox when it has a valid one, or `0 0 width height`
// computed by Dimensions.
func (r *Root) NativeViewBox() Bounds {
	if vb, ok := r.ViewBox(); ok {
		return vb
	}
	d := r.Dimensions()
	return Bounds{W: d.Width, H: d.Height}
}

// ExtractDimensions returns the intrinsic size of the SVG document `markup`.
// It never fails: unparseable documents resolve to Fallback.
func ExtractDimensions(markup string) Dimensions {
	root, err := ReadRoot(markup)
	if err != nil {
		return Fallback
	}
	return root.Dimensions()
}

// ParseViewBox parses a `min-x min-y width height` list, separated by
// commas and/or spaces.
func ParseViewBox(v string) (Bounds, bool) {
	fields := splitOnCommaOrSpace(v)
	if len(fields) != 4 {
		return Bounds{}, false
	}
	var nums [4]float64
	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return Bounds{}, false
		}
		nums[i] = n
	}
	return Bounds{X: nums[0], Y: nums[1], W: nums[2], H: nums[3]}, true
}

// ParseLength reads the leading number of a length attribute,
// ignoring any unit suffix ("12.5px" gives 12.5).
// Only finite numbers are accepted.
func ParseLength(v string) (float64, bool) {
	s := strings.TrimLeftFunc(v, unicode.IsSpace)
	end := numberPrefix(s)
	if end == 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// numberPrefix returns the length of the longest prefix of `s`
// which is a decimal number, or 0.
func numberPrefix(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			frac++
		}
		if digits > 0 || frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return 0
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		exp := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			exp++
		}
		if exp > 0 {
			i = j
		}
	}
	return i
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

// splitOnCommaOrSpace returns a list of strings after splitting the input on comma and space delimiters
func splitOnCommaOrSpace(s string) []string {
	return strings.FieldsFunc(s,
		func(r rune) bool {
			return r == ',' || unicode.IsSpace(r)
		})
}

// FormatNumber writes `f` with the shortest representation
// which parses back to the same value. Non finite values are written as 0.
func FormatNumber(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) || f == 0 {
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// EscapeAttr escapes `s` so that it may be used inside a double quoted
// attribute value.
func EscapeAttr(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s)) // writing to a bytes.Buffer never fails
	return buf.String()
}

// QualifiedName returns the attribute name as written in the source,
// for attributes returned in Root.Attrs.
func QualifiedName(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return name.Space + ":" + name.Local
}

// newDecoder returns a decoder for content already converted to UTF-8.
func newDecoder(r io.Reader) *xml.Decoder {
	decoder := xml.NewDecoder(r)
	decoder.Entity = xml.HTMLEntity
	decoder.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}
	return decoder
}

// readRawAttrs returns the attributes of the start tag `tag`,
// without namespace translation.
func readRawAttrs(tag string, entities map[string]string) ([]xml.Attr, error) {
	decoder := newDecoder(strings.NewReader(tag))
	decoder.Entity = EntityMap(entities)
	t, err := decoder.RawToken()
	if err != nil {
		return nil, err
	}
	se, ok := t.(xml.StartElement)
	if !ok {
		return nil, errNoRoot
	}
	return se.Copy().Attr, nil
}

// toUTF8 converts documents declaring another encoding in their
// XML declaration.
func toUTF8(markup string) (string, error) {
	markup = strings.TrimPrefix(markup, "\ufeff")
	label := declaredEncoding(markup)
	switch strings.ToLower(label) {
	case "", "utf-8", "utf8":
		return markup, nil
	}
	r, err := charset.NewReaderLabel(label, strings.NewReader(markup))
	if err != nil {
		return "", err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// declaredEncoding returns the encoding pseudo-attribute of the
// XML declaration, if any.
func declaredEncoding(markup string) string {
	s := strings.TrimLeftFunc(markup, unicode.IsSpace)
	if !strings.HasPrefix(s, "<?xml") {
		return ""
	}
	end := strings.Index(s, "?>")
	if end < 0 {
		return ""
	}
	decl := s[len("<?xml"):end]
	idx := strings.Index(decl, "encoding")
	if idx < 0 {
		return ""
	}
	rest := strings.TrimLeftFunc(decl[idx+len("encoding"):], unicode.IsSpace)
	if !strings.HasPrefix(rest, "=") {
		return ""
	}
	rest = strings.TrimLeftFunc(rest[1:], unicode.IsSpace)
	if rest == "" || (rest[0] != '"' && rest[0] != '\'') {
		return ""
	}
	quote := rest[0]
	rest = rest[1:]
	closing := strings.IndexByte(rest, quote)
	if closing < 0 {
		return ""
	}
	return rest[:closing]
}
