package svgicon

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

type paintKind uint8

const (
	paintNone paintKind = iota
	paintColor
	paintCurrent
	paintRef // reference to a gradient
)

// paint is the value of the fill and stroke properties
type paint struct {
	kind     paintKind
	color    color.NRGBA
	ref      string // for paintRef
	fallback bool   // for paintRef: color is used when ref is not found
}

// parsePaint accepts none, currentColor, url(#id) with an
// optional fallback, and the color syntaxes of parseColor.
func parsePaint(v string) (paint, error) {
	switch strings.ToLower(v) {
	case "none", "":
		return paint{kind: paintNone}, nil
	case "currentcolor":
		return paint{kind: paintCurrent}, nil
	}
	if strings.HasPrefix(v, "url(") {
		end := strings.IndexByte(v, ')')
		if end < 0 {
			return paint{}, fmt.Errorf("invalid paint reference %q", v)
		}
		ref := strings.Trim(strings.TrimSpace(v[4:end]), `"'`)
		out := paint{kind: paintRef, ref: strings.TrimPrefix(ref, "#")}
		if rest := strings.TrimSpace(v[end+1:]); rest != "" {
			fb, err := parsePaint(rest)
			if err != nil {
				return paint{}, err
			}
			out.fallback, out.color = fb.kind == paintColor, fb.color
		}
		return out, nil
	}
	col, err := parseColor(v)
	if err != nil {
		return paint{}, err
	}
	return paint{kind: paintColor, color: col}, nil
}

// parseColor parses hexadecimal notations (#rgb, #rgba, #rrggbb
// and #rrggbbaa), the rgb(), rgba(), hsl() and hsla() functions,
// and the named colors.
func parseColor(v string) (color.NRGBA, error) {
	v = strings.TrimSpace(v)
	low := strings.ToLower(v)
	switch {
	case strings.HasPrefix(v, "#"):
		return parseHex(v)
	case low == "transparent":
		return color.NRGBA{}, nil
	case strings.HasPrefix(low, "rgb"):
		return parseRGB(low)
	case strings.HasPrefix(low, "hsl"):
		return parseHSL(low)
	}
	if named, ok := colornames.Map[low]; ok {
		return color.NRGBA{R: named.R, G: named.G, B: named.B, A: named.A}, nil
	}
	return color.NRGBA{}, fmt.Errorf("unknown color %q", v)
}

func parseHex(v string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(v, "#")
	alpha := "ff"
	switch len(hex) {
	case 4:
		alpha = strings.Repeat(hex[3:], 2)
		hex = hex[:3]
	case 8:
		alpha = hex[6:]
		hex = hex[:6]
	}
	a, err := strconv.ParseUint(alpha, 16, 8)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", v)
	}
	col, err := colorful.Hex("#" + hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", v)
	}
	r, g, b := col.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(a)}, nil
}

// functionArgs returns the arguments of `name(args)`, separated
// by commas or spaces; an alpha given after a slash is appended.
func functionArgs(v string) ([]string, error) {
	start, end := strings.IndexByte(v, '('), strings.LastIndexByte(v, ')')
	if start < 0 || end < start {
		return nil, fmt.Errorf("invalid color function %q", v)
	}
	args := strings.FieldsFunc(v[start+1:end], func(r rune) bool {
		return r == ',' || r == ' ' || r == '/' || r == '\t'
	})
	if len(args) != 3 && len(args) != 4 {
		return nil, fmt.Errorf("invalid color function %q", v)
	}
	return args, nil
}

// readChannel reads a number or a percentage of `max`,
// clamped to [0, max].
func readChannel(v string, max float64) (float64, error) {
	scale := 1.
	if strings.HasSuffix(v, "%") {
		v, scale = strings.TrimSuffix(v, "%"), max/100
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) {
		return 0, fmt.Errorf("invalid color channel %q", v)
	}
	return math.Max(0, math.Min(max, f*scale)), nil
}

func readAlpha(args []string) (uint8, error) {
	if len(args) < 4 {
		return 0xff, nil
	}
	a, err := readChannel(args[3], 1)
	if err != nil {
		return 0, err
	}
	return uint8(math.Round(a * 255)), nil
}

func parseRGB(v string) (color.NRGBA, error) {
	args, err := functionArgs(v)
	if err != nil {
		return color.NRGBA{}, err
	}
	var rgb [3]uint8
	for i := range rgb {
		c, err := readChannel(args[i], 255)
		if err != nil {
			return color.NRGBA{}, err
		}
		rgb[i] = uint8(math.Round(c))
	}
	a, err := readAlpha(args)
	if err != nil {
		return color.NRGBA{}, err
	}
	return color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: a}, nil
}

func parseHSL(v string) (color.NRGBA, error) {
	args, err := functionArgs(v)
	if err != nil {
		return color.NRGBA{}, err
	}
	h, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "deg"), 64)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hue %q", args[0])
	}
	s, err := readChannel(args[1], 1)
	if err != nil {
		return color.NRGBA{}, err
	}
	l, err := readChannel(args[2], 1)
	if err != nil {
		return color.NRGBA{}, err
	}
	a, err := readAlpha(args)
	if err != nil {
		return color.NRGBA{}, err
	}
	h = math.Mod(math.Mod(h, 360)+360, 360)
	r, g, b := colorful.Hsl(h, s, l).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}
