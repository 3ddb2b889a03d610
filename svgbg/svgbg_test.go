package svgbg

import (
	"errors"
	"image/color"
	"math"
	"strings"
	"testing"
)

func TestFillColor(t *testing.T) {
	for _, test := range []struct {
		hex   string
		alpha float64
		want  string
	}{
		{"#ffffff", 1, "rgba(255, 255, 255, 1)"},
		{"#1A2b3C", 0.5, "rgba(26, 43, 60, 0.5)"},
		{"00ff00", 0, "rgba(0, 255, 0, 0)"},
		{"#zzzzzz", 0.25, "rgba(0, 0, 0, 0.25)"},
		{"#fff", 1, "rgba(0, 0, 0, 1)"},
		{"#000000", 3, "rgba(0, 0, 0, 1)"},
		{"#000000", -1, "rgba(0, 0, 0, 0)"},
		{"#000000", math.NaN(), "rgba(0, 0, 0, 1)"},
	} {
		if got := FillColor(test.hex, test.alpha); got != test.want {
			t.Errorf("%s %v: expected %s, got %s", test.hex, test.alpha, test.want, got)
		}
	}
}

func TestRenderNone(t *testing.T) {
	got := Render(800, 600, Default())
	want := `<g id="svgmerge-background"><rect x="0" y="0" width="800" height="600" fill="rgba(255, 255, 255, 1)"/></g>`
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestRenderCheckerboard(t *testing.T) {
	cfg := Default()
	cfg.Pattern = Checkerboard
	cfg.CellSize = 20
	cfg.PatternColor = "#ff0000"

	for _, size := range [][2]float64{{400, 300}, {1600, 800}} {
		got := Render(size[0], size[1], cfg)
		if !strings.Contains(got, `<pattern id="svgmerge-background-pattern" x="0" y="0" width="20" height="20" patternUnits="userSpaceOnUse">`) {
			t.Errorf("missing 20x20 tile in %s", got)
		}
		if !strings.Contains(got, `<rect x="0" y="0" width="10" height="10" fill="#e5e7eb"/><rect x="10" y="10" width="10" height="10" fill="#e5e7eb"/>`) {
			t.Errorf("unexpected tile content in %s", got)
		}
		if strings.Contains(got, "#ff0000") {
			t.Errorf("checkerboard should ignore the pattern color")
		}
		overlay := `fill="url(#svgmerge-background-pattern)"`
		if !strings.Contains(got, overlay) {
			t.Errorf("missing pattern overlay in %s", got)
		}
		base := strings.Index(got, `fill="rgba(`)
		if base < 0 || base > strings.Index(got, overlay) {
			t.Errorf("base rectangle must come before the pattern overlay")
		}
	}
}

func TestRenderGridAndDots(t *testing.T) {
	cfg := Config{Color: "#000000", Alpha: 1, Pattern: Grid, CellSize: 16, PatternColor: "#123456"}
	got := Render(100, 100, cfg)
	if !strings.Contains(got, `<path d="M 16 0 L 0 0 0 16" fill="none" stroke="#123456" stroke-width="1"/>`) {
		t.Errorf("unexpected grid tile in %s", got)
	}

	cfg.Pattern = Dots
	cfg.CellSize = 25
	got = Render(100, 100, cfg)
	if !strings.Contains(got, `<circle cx="12.5" cy="12.5" r="1" fill="#123456"/>`) {
		t.Errorf("unexpected dots tile in %s", got)
	}
}

func TestRenderPermissive(t *testing.T) {
	cfg := Config{Color: "oops", Alpha: 2, Pattern: Dots, CellSize: -4, PatternColor: ""}
	got := Render(10, 10, cfg)
	if !strings.Contains(got, `width="20" height="20"`) {
		t.Errorf("invalid cell size should fall back to the default: %s", got)
	}
	if !strings.Contains(got, `fill="#e5e7eb"`) {
		t.Errorf("invalid pattern color should fall back to the neutral color: %s", got)
	}

	cfg.Pattern = "stripes"
	if got := Render(10, 10, cfg); strings.Contains(got, "<pattern") {
		t.Errorf("unknown patterns should render as none: %s", got)
	}
}

func TestValidate(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatal(err)
	}
	for _, test := range []struct {
		cfg  Config
		want error
	}{
		{Config{Color: "#fff", Alpha: 1}, ErrInvalidColor},
		{Config{Color: "#ffffff", Alpha: 1.5}, ErrInvalidAlpha},
		{Config{Color: "#ffffff", Alpha: math.NaN()}, ErrInvalidAlpha},
		{Config{Color: "#ffffff", Alpha: 1, Pattern: "waves"}, ErrInvalidPattern},
		{Config{Color: "#ffffff", Alpha: 1, Pattern: Grid, CellSize: 0, PatternColor: "#000000"}, ErrInvalidCellSize},
		{Config{Color: "#ffffff", Alpha: 1, Pattern: Dots, CellSize: 4, PatternColor: "black"}, ErrInvalidColor},
	} {
		if err := test.cfg.Validate(); !errors.Is(err, test.want) {
			t.Errorf("%v: expected %v, got %v", test.cfg, test.want, err)
		}
	}
	// the pattern color is not used by the checkerboard
	cfg := Config{Color: "ffffff", Alpha: 0, Pattern: Checkerboard, CellSize: 8}
	if err := cfg.Validate(); err != nil {
		t.Error(err)
	}
}

func TestParsePattern(t *testing.T) {
	for s, want := range map[string]Pattern{"": None, "GRID": Grid, "dots": Dots, "checkerboard": Checkerboard} {
		if got, err := ParsePattern(s); err != nil || got != want {
			t.Errorf("%s: expected %s, got %s (%v)", s, want, got, err)
		}
	}
	if _, err := ParsePattern("zigzag"); !errors.Is(err, ErrInvalidPattern) {
		t.Errorf("expected ErrInvalidPattern, got %v", err)
	}
}

func TestColors(t *testing.T) {
	cfg := Config{Color: "#102030", Alpha: 0.5, Pattern: Grid, PatternColor: "#405060"}
	if got := cfg.BaseColor(); got != (color.NRGBA{0x10, 0x20, 0x30, 128}) {
		t.Errorf("unexpected base color %v", got)
	}
	if got := cfg.TileColor(); got != (color.NRGBA{0x40, 0x50, 0x60, 0xff}) {
		t.Errorf("unexpected tile color %v", got)
	}
	cfg.Pattern = Checkerboard
	if got := cfg.TileColor(); got != (color.NRGBA{0xe5, 0xe7, 0xeb, 0xff}) {
		t.Errorf("unexpected checkerboard color %v", got)
	}
}
