package svgraster

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/benoitkugler/svgmerge/svgbg"
	"github.com/benoitkugler/svgmerge/svgdoc"
	"github.com/benoitkugler/svgmerge/svgicon"
	"github.com/benoitkugler/svgmerge/svgpath"
	"github.com/benoitkugler/svgmerge/svgplace"
)

const (
	// MaxPixels bounds the size of the rendered images.
	MaxPixels = 1 << 26
	// maxTiles bounds the number of background tiles drawn;
	// denser patterns are not drawn.
	maxTiles = 1 << 18
)

var (
	ErrInvalidScale = errors.New("svgraster: scale must be a positive number")
	ErrTooLarge     = errors.New("svgraster: image is too large")
)

// Result is a rendered preview.
type Result struct {
	Image *image.RGBA
	// Skipped are the ids of the instances whose markup
	// could not be read.
	Skipped []string
}

func imageSize(width, height, scale float64) (int, int, error) {
	if !(scale > 0) || math.IsInf(scale, 0) {
		return 0, 0, ErrInvalidScale
	}
	w, h := math.Ceil(width*scale), math.Ceil(height*scale)
	if !(w > 0 && h > 0) || w*h > MaxPixels {
		return 0, 0, fmt.Errorf("%w: %gx%g pixels", ErrTooLarge, w, h)
	}
	return int(w), int(h), nil
}

// Preview rasterizes a composition the way Compose lays it out:
// the background first (if any), then every instance in stored order,
// each one clipped to its placement rectangle.
// `scale` is the number of pixels per canvas unit.
func Preview(instances []svgplace.Instance, canvas svgplace.Canvas, background *svgbg.Config, scale float64) (Result, error) {
	w, h, err := imageSize(canvas.Width, canvas.Height, scale)
	if err != nil {
		return Result{}, err
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if background != nil {
		drawBackground(NewImageRenderer(img), canvas, *background, scale)
	}

	var out Result
	for _, inst := range instances {
		icon, err := svgicon.ReadIcon(inst.Markup, svgicon.IgnoreErrorMode)
		if err != nil {
			out.Skipped = append(out.Skipped, inst.ID)
			continue
		}
		drawClipped(img, icon, inst.X*scale, inst.Y*scale, inst.Width*scale, inst.Height*scale)
	}
	out.Image = img
	return out, nil
}

// drawClipped renders `icon` in the rectangle (x, y, w, h) of `img`,
// through an intermediate image covering the visible part of the rectangle.
func drawClipped(img *image.RGBA, icon *svgicon.Icon, x, y, w, h float64) {
	if !(w > 0 && h > 0) {
		return
	}
	bounds := img.Bounds()
	x0, y0 := math.Max(x, 0), math.Max(y, 0)
	x1, y1 := math.Min(x+w, float64(bounds.Dx())), math.Min(y+h, float64(bounds.Dy()))
	if !(x0 < x1 && y0 < y1) {
		return
	}
	visible := image.Rect(int(math.Floor(x0)), int(math.Floor(y0)), int(math.Ceil(x1)), int(math.Ceil(y1)))
	tmp := image.NewRGBA(image.Rect(0, 0, visible.Dx(), visible.Dy()))
	icon.SetTarget(x-float64(visible.Min.X), y-float64(visible.Min.Y), w, h)
	icon.Draw(NewImageRenderer(tmp), 1)
	draw.Draw(img, visible, tmp, image.Point{}, draw.Over)
}

// drawBackground paints the base color and the pattern of `cfg`,
// mirroring svgbg.Render.
func drawBackground(rd *Renderer, canvas svgplace.Canvas, cfg svgbg.Config, scale float64) {
	m := svgpath.Identity.Scale(scale, scale)
	var base svgpath.Path
	base.AddRect(0, 0, canvas.Width, canvas.Height)
	rd.FillPath(base, m, cfg.BaseColor())

	cell := cfg.Cell()
	nx, ny := math.Ceil(canvas.Width/cell), math.Ceil(canvas.Height/cell)
	if nx*ny > maxTiles {
		return
	}
	paint := cfg.TileColor()
	var tiles svgpath.Path
	switch cfg.Pattern {
	case svgbg.Grid:
		// the top and left edges of every tile
		for i := 0.; i < nx; i++ {
			tiles.AddPolyline([]float64{i * cell, 0, i * cell, canvas.Height}, false)
		}
		for j := 0.; j < ny; j++ {
			tiles.AddPolyline([]float64{0, j * cell, canvas.Width, j * cell}, false)
		}
		rd.StrokePath(tiles, m, paint, scale)
		return
	case svgbg.Dots:
		for i := 0.; i < nx; i++ {
			for j := 0.; j < ny; j++ {
				tiles.AddEllipse(i*cell+cell/2, j*cell+cell/2, 1, 1)
			}
		}
	case svgbg.Checkerboard:
		half := cell / 2
		for i := 0.; i < nx; i++ {
			for j := 0.; j < ny; j++ {
				tiles.AddRect(i*cell, j*cell, half, half)
				tiles.AddRect(i*cell+half, j*cell+half, half, half)
			}
		}
	default:
		return
	}
	// tiles overflowing the canvas are clipped
	rd.FillPath(tiles, m, paint)
}

// RasterIcon renders the document `markup` at its native size,
// multiplied by `scale`.
func RasterIcon(markup string, scale float64) (*image.RGBA, error) {
	icon, err := svgicon.ReadIcon(markup, svgicon.WarnErrorMode)
	if err != nil {
		return nil, err
	}
	vb := icon.ViewBox
	if vb.W <= 0 || vb.H <= 0 {
		vb = svgdoc.Bounds{W: svgdoc.Fallback.Width, H: svgdoc.Fallback.Height}
	}
	w, h, err := imageSize(vb.W, vb.H, scale)
	if err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	icon.SetTarget(0, 0, vb.W*scale, vb.H*scale)
	icon.Draw(NewImageRenderer(img), 1)
	return img, nil
}

// EncodePNG writes `img` in PNG format.
func EncodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}
