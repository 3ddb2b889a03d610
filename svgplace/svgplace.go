// Package svgplace holds the placement model of the editor: the library of
// source documents and the board of instances placed on the canvas.
//
// Instances own a copy of the markup they were created from, so that
// removing a source never affects the board.
package svgplace

import (
	"errors"
	"fmt"
	"math"

	"github.com/benoitkugler/svgmerge/svgdoc"
	"github.com/google/uuid"
)

const (
	// MinCanvasWidth and MinCanvasHeight are the smallest canvas the editor offers.
	MinCanvasWidth  = 400
	MinCanvasHeight = 300
	// MinInstanceSize is the smallest side an instance may be resized to.
	MinInstanceSize = 20
)

var (
	ErrDegenerateSize  = errors.New("svgplace: width and height must be positive")
	ErrUnknownInstance = errors.New("svgplace: unknown instance")
	ErrUnknownSource   = errors.New("svgplace: unknown source")
	ErrInvalidCanvas   = errors.New("svgplace: canvas dimensions must be positive")
)

// IDGenerator returns unique identifiers.
type IDGenerator func() string

// UUIDv7 returns time ordered identifiers.
func UUIDv7() string { return uuid.Must(uuid.NewV7()).String() }

// Source is an uploaded or fetched document, stored in the library.
type Source struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Markup string `json:"-"`
	// OriginURL is the address the document was fetched from, if any.
	OriginURL string `json:"originUrl,omitempty"`
}

// Instance is one occurrence of a source placed on the canvas.
// X, Y is the top left corner, in canvas coordinates.
type Instance struct {
	ID       string
	SourceID string // weak reference, the source may have been removed
	Name     string
	Markup   string
	X, Y     float64
	Width    float64
	Height   float64
}

// Canvas is the size of the composition.
type Canvas struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// DefaultCanvas is the canvas of a new session.
var DefaultCanvas = Canvas{Width: 1600, Height: 800}

// Validate checks that both sides are finite and positive.
func (c Canvas) Validate() error {
	if !isPositive(c.Width) || !isPositive(c.Height) {
		return fmt.Errorf("%w: %v x %v", ErrInvalidCanvas, c.Width, c.Height)
	}
	return nil
}

// Clamp applies the minimum sizes offered by the editor.
func (c Canvas) Clamp() Canvas {
	return Canvas{Width: math.Max(c.Width, MinCanvasWidth), Height: math.Max(c.Height, MinCanvasHeight)}
}

func isPositive(f float64) bool { return f > 0 && !math.IsInf(f, 0) }

// Library stores the source documents, in insertion order.
type Library struct {
	newID   IDGenerator
	sources []Source
}

// NewLibrary returns an empty library. If `newID` is nil, UUIDv7 is used.
func NewLibrary(newID IDGenerator) *Library {
	if newID == nil {
		newID = UUIDv7
	}
	return &Library{newID: newID}
}

// Add stores a new source and returns it.
func (l *Library) Add(name, markup, originURL string) Source {
	src := Source{ID: l.newID(), Name: name, Markup: markup, OriginURL: originURL}
	l.sources = append(l.sources, src)
	return src
}

// Get returns the source with the given id.
func (l *Library) Get(id string) (Source, bool) {
	for _, src := range l.sources {
		if src.ID == id {
			return src, true
		}
	}
	return Source{}, false
}

// List returns a copy of the sources, in insertion order.
func (l *Library) List() []Source { return append([]Source(nil), l.sources...) }

// Remove deletes the source `id`. Placed instances are not affected.
func (l *Library) Remove(id string) error {
	for i, src := range l.sources {
		if src.ID == id {
			l.sources = append(l.sources[:i], l.sources[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownSource, id)
}

// Board is the canvas and the instances placed on it.
// The order of the instances is the paint order.
type Board struct {
	newID     IDGenerator
	canvas    Canvas
	instances []Instance
}

// NewBoard returns an empty board. If `newID` is nil, UUIDv7 is used.
func NewBoard(canvas Canvas, newID IDGenerator) (*Board, error) {
	if err := canvas.Validate(); err != nil {
		return nil, err
	}
	if newID == nil {
		newID = UUIDv7
	}
	return &Board{newID: newID, canvas: canvas}, nil
}

// Canvas returns the current canvas size.
func (b *Board) Canvas() Canvas { return b.canvas }

// ResizeCanvas accepts any positive size. Instances are not moved.
func (b *Board) ResizeCanvas(c Canvas) error {
	if err := c.Validate(); err != nil {
		return err
	}
	b.canvas = c
	return nil
}

// Place creates an instance of `src` at its native size `dims`, centred on
// the canvas point (cx, cy), as when dropping a source onto the canvas.
func (b *Board) Place(src Source, dims svgdoc.Dimensions, cx, cy float64) (Instance, error) {
	inst := Instance{
		SourceID: src.ID,
		Name:     src.Name,
		Markup:   src.Markup,
		X:        cx - dims.Width/2,
		Y:        cy - dims.Height/2,
		Width:    dims.Width,
		Height:   dims.Height,
	}
	return b.Add(inst)
}

// Add appends `inst` on top of the existing instances.
// An ID is assigned if `inst.ID` is empty.
func (b *Board) Add(inst Instance) (Instance, error) {
	if !isPositive(inst.Width) || !isPositive(inst.Height) {
		return Instance{}, fmt.Errorf("%w: %v x %v", ErrDegenerateSize, inst.Width, inst.Height)
	}
	if inst.ID == "" {
		inst.ID = b.newID()
	}
	b.instances = append(b.instances, inst)
	return inst, nil
}

func (b *Board) index(id string) (int, error) {
	for i, inst := range b.instances {
		if inst.ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrUnknownInstance, id)
}

// Get returns the instance `id`.
func (b *Board) Get(id string) (Instance, error) {
	i, err := b.index(id)
	if err != nil {
		return Instance{}, err
	}
	return b.instances[i], nil
}

// Move sets the top left corner of the instance. Negative positions are valid.
func (b *Board) Move(id string, x, y float64) (Instance, error) {
	i, err := b.index(id)
	if err != nil {
		return Instance{}, err
	}
	b.instances[i].X, b.instances[i].Y = x, y
	return b.instances[i], nil
}

// Resize sets the width of the instance, adjusting its height to keep the
// current aspect ratio. Both sides are kept above MinInstanceSize.
func (b *Board) Resize(id string, width float64) (Instance, error) {
	i, err := b.index(id)
	if err != nil {
		return Instance{}, err
	}
	if math.IsNaN(width) || math.IsInf(width, 0) {
		return Instance{}, fmt.Errorf("%w: width %v", ErrDegenerateSize, width)
	}
	inst := &b.instances[i]
	ratio := inst.Height / inst.Width
	w := math.Max(MinInstanceSize, width)
	h := math.Max(MinInstanceSize, w*ratio)
	inst.Width, inst.Height = w, h
	return *inst, nil
}

// SetSize sets an explicit, possibly non uniform, size.
func (b *Board) SetSize(id string, width, height float64) (Instance, error) {
	if !isPositive(width) || !isPositive(height) {
		return Instance{}, fmt.Errorf("%w: %v x %v", ErrDegenerateSize, width, height)
	}
	i, err := b.index(id)
	if err != nil {
		return Instance{}, err
	}
	b.instances[i].Width, b.instances[i].Height = width, height
	return b.instances[i], nil
}

// Remove deletes the instance, preserving the order of the others.
func (b *Board) Remove(id string) error {
	i, err := b.index(id)
	if err != nil {
		return err
	}
	b.instances = append(b.instances[:i], b.instances[i+1:]...)
	return nil
}

// Instances returns a copy of the instances, in paint order.
func (b *Board) Instances() []Instance { return append([]Instance(nil), b.instances...) }

// Len returns the number of placed instances.
func (b *Board) Len() int { return len(b.instances) }
