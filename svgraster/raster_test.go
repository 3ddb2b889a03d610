package svgraster

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/benoitkugler/svgmerge/svgbg"
	"github.com/benoitkugler/svgmerge/svgplace"
)

var canvas = svgplace.Canvas{Width: 40, Height: 20}

const (
	blueSquare = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"><rect width="10" height="10" fill="blue"/></svg>`
	// content overflowing its viewBox
	redOverflow = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"><rect x="-10" y="0" width="100" height="10" fill="#f00"/></svg>`
)

var (
	transparent = color.RGBA{}
	blue        = color.RGBA{B: 0xff, A: 0xff}
	red         = color.RGBA{R: 0xff, A: 0xff}
	white       = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

func checkPixel(t *testing.T, img *image.RGBA, x, y int, expected color.RGBA) {
	t.Helper()
	if got := img.RGBAAt(x, y); got != expected {
		t.Errorf("pixel (%d, %d): expected %v, got %v", x, y, expected, got)
	}
}

func TestPreviewInstances(t *testing.T) {
	instances := []svgplace.Instance{
		{ID: "a", Markup: blueSquare, X: 10, Y: 0, Width: 10, Height: 10},
		{ID: "b", Markup: redOverflow, X: 15, Y: 5, Width: 10, Height: 10},
		{ID: "c", Markup: "<svg><g></svg>", X: 0, Y: 0, Width: 40, Height: 20},
	}
	res, err := Preview(instances, canvas, nil, 1)
	if err != nil {
		t.Fatal(err)
	}
	if b := res.Image.Bounds(); b.Dx() != 40 || b.Dy() != 20 {
		t.Fatalf("unexpected bounds %v", b)
	}
	if len(res.Skipped) != 1 || res.Skipped[0] != "c" {
		t.Errorf("expected c to be skipped, got %v", res.Skipped)
	}
	checkPixel(t, res.Image, 5, 5, transparent)
	checkPixel(t, res.Image, 12, 2, blue)
	// later instances are painted over earlier ones
	checkPixel(t, res.Image, 17, 7, red)
	// content outside the placement rectangle is clipped
	checkPixel(t, res.Image, 12, 7, blue)
	checkPixel(t, res.Image, 30, 7, transparent)
}

func TestPreviewScale(t *testing.T) {
	instances := []svgplace.Instance{{ID: "a", Markup: blueSquare, X: 10, Y: 0, Width: 10, Height: 10}}
	res, err := Preview(instances, canvas, nil, 2)
	if err != nil {
		t.Fatal(err)
	}
	if b := res.Image.Bounds(); b.Dx() != 80 || b.Dy() != 40 {
		t.Fatalf("unexpected bounds %v", b)
	}
	checkPixel(t, res.Image, 25, 15, blue)
	checkPixel(t, res.Image, 45, 15, transparent)

	if _, err := Preview(nil, canvas, nil, 0); !errors.Is(err, ErrInvalidScale) {
		t.Errorf("expected ErrInvalidScale, got %v", err)
	}
	if _, err := Preview(nil, svgplace.Canvas{Width: 1e6, Height: 1e6}, nil, 1); !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}

func TestPreviewBackground(t *testing.T) {
	bg := svgbg.Default()
	bg.Color = "#ff0000"
	res, err := Preview(nil, canvas, &bg, 1)
	if err != nil {
		t.Fatal(err)
	}
	checkPixel(t, res.Image, 10, 10, red)

	bg = svgbg.Default()
	bg.Pattern = svgbg.Checkerboard
	bg.CellSize = 20
	res, err = Preview(nil, canvas, &bg, 1)
	if err != nil {
		t.Fatal(err)
	}
	neutral := color.RGBA{R: 0xe5, G: 0xe7, B: 0xeb, A: 0xff}
	checkPixel(t, res.Image, 5, 5, neutral)
	checkPixel(t, res.Image, 15, 5, white)
	checkPixel(t, res.Image, 15, 15, neutral)
	checkPixel(t, res.Image, 25, 5, neutral)

	// the background is painted under the instances
	instances := []svgplace.Instance{{ID: "a", Markup: blueSquare, X: 0, Y: 0, Width: 10, Height: 10}}
	res, err = Preview(instances, canvas, &bg, 1)
	if err != nil {
		t.Fatal(err)
	}
	checkPixel(t, res.Image, 5, 5, blue)
}

func TestRasterIcon(t *testing.T) {
	img, err := RasterIcon(`<svg xmlns="http://www.w3.org/2000/svg" width="12" height="8"><rect width="6" height="8" fill="blue"/></svg>`, 2)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 24 || b.Dy() != 16 {
		t.Fatalf("unexpected bounds %v", b)
	}
	checkPixel(t, img, 5, 5, blue)
	checkPixel(t, img, 20, 5, transparent)

	if _, err := RasterIcon("not svg", 1); err == nil {
		t.Error("expected error")
	}
}

func TestEncodePNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		t.Fatal(err)
	}
	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("invalid png: %s", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Errorf("unexpected bounds %v", decoded.Bounds())
	}
}
