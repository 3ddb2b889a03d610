// Package svgbg renders the canvas backdrop: a solid color with an
// optional repeating pattern, as an SVG fragment.
package svgbg

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/benoitkugler/svgmerge/svgdoc"
	"github.com/lucasb-eyer/go-colorful"
)

// Pattern is the kind of tile repeated over the background.
type Pattern string

const (
	None         Pattern = "none"
	Dots         Pattern = "dots"
	Grid         Pattern = "grid"
	Checkerboard Pattern = "checkerboard"
)

// Patterns lists the supported patterns.
var Patterns = []Pattern{None, Dots, Grid, Checkerboard}

const (
	// CheckerboardColor is always used by the checkerboard pattern,
	// whatever the configured pattern color.
	CheckerboardColor = "#e5e7eb"
	// DefaultCellSize is used in place of invalid cell sizes.
	DefaultCellSize = 20
	// PatternID is the id of the pattern definition in the exported document.
	PatternID = "svgmerge-background-pattern"
)

var (
	ErrInvalidColor    = errors.New("svgbg: color must be a 6 digits hexadecimal value")
	ErrInvalidAlpha    = errors.New("svgbg: alpha must be in [0, 1]")
	ErrInvalidPattern  = errors.New("svgbg: unknown pattern")
	ErrInvalidCellSize = errors.New("svgbg: pattern size must be positive")
)

// Config describes the backdrop.
type Config struct {
	Color        string  `json:"color" yaml:"color"`
	Alpha        float64 `json:"alpha" yaml:"alpha"`
	Pattern      Pattern `json:"pattern" yaml:"pattern"`
	CellSize     float64 `json:"patternSize" yaml:"pattern_size"`
	PatternColor string  `json:"patternColor" yaml:"pattern_color"`
}

// Default returns the backdrop of a new canvas: opaque white, no pattern.
func Default() Config {
	return Config{
		Color:        "#ffffff",
		Alpha:        1,
		Pattern:      None,
		CellSize:     DefaultCellSize,
		PatternColor: CheckerboardColor,
	}
}

// ParsePattern returns the pattern named `s`. The empty string is None.
func ParsePattern(s string) (Pattern, error) {
	if s == "" {
		return None, nil
	}
	for _, p := range Patterns {
		if strings.EqualFold(s, string(p)) {
			return p, nil
		}
	}
	return None, fmt.Errorf("%w: %q", ErrInvalidPattern, s)
}

// Validate checks the configuration before it is handed to Render.
func (c Config) Validate() error {
	if !isHex6(c.Color) {
		return fmt.Errorf("%w: %q", ErrInvalidColor, c.Color)
	}
	if !(c.Alpha >= 0 && c.Alpha <= 1) { // also rejects NaN
		return fmt.Errorf("%w: %v", ErrInvalidAlpha, c.Alpha)
	}
	if _, err := ParsePattern(string(c.Pattern)); err != nil {
		return err
	}
	if c.Pattern == None || c.Pattern == "" {
		return nil
	}
	if !(c.CellSize > 0) || math.IsInf(c.CellSize, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidCellSize, c.CellSize)
	}
	if c.Pattern != Checkerboard && !isHex6(c.PatternColor) {
		return fmt.Errorf("pattern %w: %q", ErrInvalidColor, c.PatternColor)
	}
	return nil
}

func isHex6(s string) bool {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return false
	}
	for _, c := range []byte(s) {
		switch {
		case '0' <= c && c <= '9', 'a' <= c && c <= 'f', 'A' <= c && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// parseHex is permissive: invalid values resolve to `fallback`.
func parseHex(hex string, fallback colorful.Color) colorful.Color {
	if !isHex6(hex) {
		return fallback
	}
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return fallback
	}
	return c
}

var (
	black   = colorful.Color{}
	neutral = colorful.Color{R: 0xe5 / 255., G: 0xe7 / 255., B: 0xeb / 255.}
)

func clampAlpha(alpha float64) float64 {
	if math.IsNaN(alpha) {
		return 1
	}
	return math.Max(0, math.Min(1, alpha))
}

// FillColor combines `hex` and `alpha` into one `rgba(r, g, b, a)`
// color value. Invalid colors are rendered black and alpha is clamped
// to [0, 1].
func FillColor(hex string, alpha float64) string {
	r, g, b := parseHex(hex, black).RGB255()
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, svgdoc.FormatNumber(clampAlpha(alpha)))
}

// BaseColor returns the backdrop color, alpha included.
func (c Config) BaseColor() color.NRGBA {
	r, g, b := parseHex(c.Color, black).RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(clampAlpha(c.Alpha) * 255))}
}

// TileColor returns the (opaque) color used to draw the pattern.
func (c Config) TileColor() color.NRGBA {
	var col colorful.Color
	if c.Pattern == Checkerboard {
		col = neutral
	} else {
		col = parseHex(c.PatternColor, neutral)
	}
	r, g, b := col.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}
}

// Cell returns the size of a pattern tile, replacing invalid values
// by DefaultCellSize.
func (c Config) Cell() float64 {
	if !(c.CellSize > 0) || math.IsInf(c.CellSize, 0) {
		return DefaultCellSize
	}
	return c.CellSize
}

// Render returns the backdrop of a `width` x `height` canvas:
// a full size rectangle filled with the base color, and, if a pattern is
// configured, a second rectangle filled with the pattern tile.
// Out of range values are rendered permissively.
func Render(width, height float64, cfg Config) string {
	w, h := svgdoc.FormatNumber(width), svgdoc.FormatNumber(height)

	var b strings.Builder
	b.WriteString(`<g id="svgmerge-background">`)
	fmt.Fprintf(&b, `<rect x="0" y="0" width="%s" height="%s" fill="%s"/>`, w, h, FillColor(cfg.Color, cfg.Alpha))
	if tile := renderTile(cfg); tile != "" {
		cell := svgdoc.FormatNumber(cfg.Cell())
		fmt.Fprintf(&b, `<defs><pattern id="%s" x="0" y="0" width="%s" height="%s" patternUnits="userSpaceOnUse">%s</pattern></defs>`,
			PatternID, cell, cell, tile)
		fmt.Fprintf(&b, `<rect x="0" y="0" width="%s" height="%s" fill="url(#%s)"/>`, w, h, PatternID)
	}
	b.WriteString(`</g>`)
	return b.String()
}

// renderTile returns the content of one tile, or an empty string
// when there is no pattern.
func renderTile(cfg Config) string {
	cell := cfg.Cell()
	paint := parseHex(cfg.PatternColor, neutral).Hex()
	c := svgdoc.FormatNumber(cell)
	switch cfg.Pattern {
	case Grid:
		return fmt.Sprintf(`<path d="M %s 0 L 0 0 0 %s" fill="none" stroke="%s" stroke-width="1"/>`, c, c, paint)
	case Dots:
		half := svgdoc.FormatNumber(cell / 2)
		return fmt.Sprintf(`<circle cx="%s" cy="%s" r="1" fill="%s"/>`, half, half, paint)
	case Checkerboard:
		half := svgdoc.FormatNumber(cell / 2)
		return fmt.Sprintf(`<rect x="0" y="0" width="%s" height="%s" fill="%s"/><rect x="%s" y="%s" width="%s" height="%s" fill="%s"/>`,
			half, half, CheckerboardColor, half, half, half, half, CheckerboardColor)
	default:
		return ""
	}
}
