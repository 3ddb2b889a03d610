package svgmerge

import (
	"bufio"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/benoitkugler/svgmerge/svgbg"
	"github.com/benoitkugler/svgmerge/svgplace"
	"gopkg.in/yaml.v3"
)

// LayoutVersion is written in saved layouts. Adding a field bumps
// the minor version; any 1.x layout may be read.
const LayoutVersion = "1.1"

var (
	ErrUnsupportedVersion = errors.New("svgmerge: unsupported layout version")
	ErrInvalidContent     = errors.New("svgmerge: invalid instance content")
)

// Layout is the saved form of a composition.
type Layout struct {
	Version    string           `json:"version" yaml:"version"`
	Canvas     svgplace.Canvas  `json:"canvas" yaml:"canvas"`
	Background *svgbg.Config    `json:"background,omitempty" yaml:"background,omitempty"`
	Instances  []LayoutInstance `json:"instances" yaml:"instances"`
}

// LayoutInstance is the saved form of a placed instance.
type LayoutInstance struct {
	ID       string  `json:"id" yaml:"id"`
	SourceID string  `json:"sourceId" yaml:"source_id"`
	Name     string  `json:"name,omitempty" yaml:"name,omitempty"`
	X        float64 `json:"x" yaml:"x"`
	Y        float64 `json:"y" yaml:"y"`
	Width    float64 `json:"width" yaml:"width"`
	Height   float64 `json:"height" yaml:"height"`
	// Content is the base64 encoded markup.
	Content string `json:"content" yaml:"content"`
	// SourceURL is the origin of the source document, when it was fetched
	// (since 1.1).
	SourceURL string `json:"sourceUrl,omitempty" yaml:"source_url,omitempty"`
}

// SourceLookup resolves a source by id. It is used to attach the origin URL
// of the sources still present in the library.
type SourceLookup func(id string) (svgplace.Source, bool)

// NewLayout returns the saved form of the composition. `lookup` may be nil.
func NewLayout(instances []svgplace.Instance, canvas svgplace.Canvas, background *svgbg.Config, lookup SourceLookup) Layout {
	out := Layout{
		Version:   LayoutVersion,
		Canvas:    canvas,
		Instances: make([]LayoutInstance, len(instances)),
	}
	if background != nil {
		bg := *background
		out.Background = &bg
	}
	for i, inst := range instances {
		li := LayoutInstance{
			ID:       inst.ID,
			SourceID: inst.SourceID,
			Name:     inst.Name,
			X:        inst.X,
			Y:        inst.Y,
			Width:    inst.Width,
			Height:   inst.Height,
			Content:  base64.StdEncoding.EncodeToString([]byte(inst.Markup)),
		}
		if lookup != nil {
			if src, ok := lookup(inst.SourceID); ok {
				li.SourceURL = src.OriginURL
			}
		}
		out.Instances[i] = li
	}
	return out
}

// CheckVersion accepts any 1.x layout.
func (l Layout) CheckVersion() error {
	major, _, _ := strings.Cut(l.Version, ".")
	if major != "1" {
		return fmt.Errorf("%w: %q", ErrUnsupportedVersion, l.Version)
	}
	return nil
}

// PlacedInstances decodes the saved instances.
func (l Layout) PlacedInstances() ([]svgplace.Instance, error) {
	out := make([]svgplace.Instance, len(l.Instances))
	for i, li := range l.Instances {
		content, err := base64.StdEncoding.DecodeString(li.Content)
		if err != nil {
			return nil, fmt.Errorf("%w (instance %s): %s", ErrInvalidContent, li.ID, err)
		}
		out[i] = svgplace.Instance{
			ID:       li.ID,
			SourceID: li.SourceID,
			Name:     li.Name,
			Markup:   string(content),
			X:        li.X,
			Y:        li.Y,
			Width:    li.Width,
			Height:   li.Height,
		}
	}
	return out, nil
}

// Board rebuilds the placement model. `newID` is used for instances
// saved without id, and may be nil.
func (l Layout) Board(newID svgplace.IDGenerator) (*svgplace.Board, error) {
	if err := l.CheckVersion(); err != nil {
		return nil, err
	}
	instances, err := l.PlacedInstances()
	if err != nil {
		return nil, err
	}
	board, err := svgplace.NewBoard(l.Canvas, newID)
	if err != nil {
		return nil, err
	}
	for _, inst := range instances {
		if _, err := board.Add(inst); err != nil {
			return nil, fmt.Errorf("instance %s: %w", inst.ID, err)
		}
	}
	return board, nil
}

// Compose checks and decodes the layout, then composes it.
func (l Layout) Compose() (Result, error) {
	board, err := l.Board(nil)
	if err != nil {
		return Result{}, err
	}
	return Compose(board.Instances(), board.Canvas(), l.Background), nil
}

// WriteJSON writes an indented JSON encoding of the layout.
func (l Layout) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(l)
}

// WriteYAML writes the YAML encoding of the layout.
func (l Layout) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(l); err != nil {
		return err
	}
	return enc.Close()
}

// ReadLayoutJSON decodes a JSON layout and checks its version.
func ReadLayoutJSON(r io.Reader) (Layout, error) {
	var l Layout
	if err := json.NewDecoder(r).Decode(&l); err != nil {
		return Layout{}, fmt.Errorf("decoding layout: %w", err)
	}
	return l, l.CheckVersion()
}

// ReadLayoutYAML decodes a YAML layout and checks its version.
func ReadLayoutYAML(r io.Reader) (Layout, error) {
	var l Layout
	if err := yaml.NewDecoder(r).Decode(&l); err != nil {
		return Layout{}, fmt.Errorf("decoding layout: %w", err)
	}
	return l, l.CheckVersion()
}

// ReadLayout accepts both encodings: JSON documents start with '{'.
func ReadLayout(r io.Reader) (Layout, error) {
	br := bufio.NewReader(r)
	for {
		c, _, err := br.ReadRune()
		if err != nil {
			return Layout{}, fmt.Errorf("decoding layout: %w", err)
		}
		if strings.ContainsRune(" \t\r\n\ufeff", c) {
			continue
		}
		if err := br.UnreadRune(); err != nil {
			return Layout{}, err
		}
		if c == '{' {
			return ReadLayoutJSON(br)
		}
		return ReadLayoutYAML(br)
	}
}
