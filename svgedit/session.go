// Package svgedit is the editing session of the merge tool: it ties the
// library of sources, the board, the backdrop and the export engine together,
// and enforces the preconditions the core packages leave to their caller.
package svgedit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"sync"

	"github.com/benoitkugler/svgmerge/svgbg"
	"github.com/benoitkugler/svgmerge/svgclean"
	"github.com/benoitkugler/svgmerge/svgdoc"
	"github.com/benoitkugler/svgmerge/svgfetch"
	"github.com/benoitkugler/svgmerge/svgmerge"
	"github.com/benoitkugler/svgmerge/svgplace"
	"github.com/benoitkugler/svgmerge/svgraster"
)

var (
	ErrNothingToExport = errors.New("svgedit: no instance on the canvas to export")
	ErrNotSVG          = errors.New("svgedit: content is not an SVG document")
)

// Fetcher downloads remote documents. *svgfetch.Fetcher implements it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*svgfetch.Result, error)
}

// Options configures a new session. The zero value is valid.
type Options struct {
	Canvas     svgplace.Canvas // Default: svgplace.DefaultCanvas.
	Background *svgbg.Config   // Default: svgbg.Default().
	Logger     *slog.Logger    // Default: slog.Default().
	NewID      svgplace.IDGenerator
}

// Session is one editing session. It is safe for concurrent use.
type Session struct {
	mu         sync.Mutex
	logger     *slog.Logger
	newID      svgplace.IDGenerator
	library    *svgplace.Library
	board      *svgplace.Board
	background svgbg.Config
}

// New returns an empty session.
func New(opts Options) (*Session, error) {
	if opts.Canvas == (svgplace.Canvas{}) {
		opts.Canvas = svgplace.DefaultCanvas
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	bg := svgbg.Default()
	if opts.Background != nil {
		bg = *opts.Background
	}
	board, err := svgplace.NewBoard(opts.Canvas, opts.NewID)
	if err != nil {
		return nil, err
	}
	return &Session{
		logger:     opts.Logger,
		newID:      opts.NewID,
		library:    svgplace.NewLibrary(opts.NewID),
		board:      board,
		background: bg,
	}, nil
}

// AcceptsFile reports whether an uploaded file should be read as SVG:
// either its content type or its extension says so.
func AcceptsFile(name, contentType string) bool {
	return strings.HasPrefix(strings.ToLower(contentType), "image/svg+xml") ||
		strings.EqualFold(path.Ext(name), ".svg")
}

// Upload sanitizes `markup` and stores it in the library.
// `originURL` is empty for local files.
func (s *Session) Upload(name, markup, originURL string) (svgplace.Source, error) {
	if !strings.Contains(markup, "<svg") {
		return svgplace.Source{}, fmt.Errorf("%w: %s", ErrNotSVG, name)
	}
	clean := svgclean.Sanitize(markup)

	s.mu.Lock()
	defer s.mu.Unlock()
	src := s.library.Add(name, clean, originURL)
	s.logger.Debug("source added", "id", src.ID, "name", name, "origin", originURL)
	return src, nil
}

// UploadDataURI decodes a data: URI and uploads its content.
func (s *Session) UploadDataURI(name, uri string) (svgplace.Source, error) {
	mediaType, content, err := svgfetch.DecodeDataURI(uri)
	if err != nil {
		return svgplace.Source{}, err
	}
	if !svgfetch.LooksLikeSVG(content, mediaType) {
		return svgplace.Source{}, fmt.Errorf("%w: %s", ErrNotSVG, name)
	}
	return s.Upload(name, content, "")
}

// Import fetches the document at `url` and uploads it.
// The source is named after the last segment of the URL.
func (s *Session) Import(ctx context.Context, fetcher Fetcher, url string) (svgplace.Source, error) {
	res, err := fetcher.Fetch(ctx, url)
	if err != nil {
		return svgplace.Source{}, err
	}
	return s.Upload(sourceName(res.URL), res.Content, res.URL)
}

func sourceName(url string) string {
	url, _, _ = strings.Cut(url, "?")
	name := path.Base(url)
	if name == "." || name == "/" || name == "" {
		return "remote.svg"
	}
	return name
}

// Sources returns the library content, in insertion order.
func (s *Session) Sources() []svgplace.Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.library.List()
}

// DeleteSource removes a source from the library. Its instances stay on the canvas.
func (s *Session) DeleteSource(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.library.Remove(id)
}

// Drop places the source `sourceID` at its native size, centred on (cx, cy).
func (s *Session) Drop(sourceID string, cx, cy float64) (svgplace.Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	src, ok := s.library.Get(sourceID)
	if !ok {
		return svgplace.Instance{}, fmt.Errorf("%w: %s", svgplace.ErrUnknownSource, sourceID)
	}
	dims := svgdoc.ExtractDimensions(src.Markup)
	inst, err := s.board.Place(src, dims, cx, cy)
	if err != nil {
		return svgplace.Instance{}, err
	}
	s.logger.Debug("instance placed", "id", inst.ID, "source", sourceID, "bounds", svgdoc.Bounds{X: inst.X, Y: inst.Y, W: inst.Width, H: inst.Height})
	return inst, nil
}

// Move sets the top left corner of an instance.
func (s *Session) Move(id string, x, y float64) (svgplace.Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Move(id, x, y)
}

// Resize sets the width of an instance, keeping its aspect ratio.
func (s *Session) Resize(id string, width float64) (svgplace.Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Resize(id, width)
}

// Remove deletes an instance from the canvas.
func (s *Session) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Remove(id)
}

// Instances returns the placed instances, in paint order.
func (s *Session) Instances() []svgplace.Instance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Instances()
}

// Canvas returns the canvas size.
func (s *Session) Canvas() svgplace.Canvas {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Canvas()
}

// ResizeCanvas changes the canvas size, applying the editor minimums.
func (s *Session) ResizeCanvas(c svgplace.Canvas) error {
	return s.SetCanvas(c.Clamp())
}

// SetCanvas changes the canvas size to any positive size.
// Instances are not moved.
func (s *Session) SetCanvas(c svgplace.Canvas) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.ResizeCanvas(c)
}

// Background returns the current backdrop.
func (s *Session) Background() svgbg.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.background
}

// SetBackground validates and applies a new backdrop.
func (s *Session) SetBackground(bg svgbg.Config) error {
	if err := bg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.background = bg
	return nil
}

// Export returns the composite document.
// An empty canvas is rejected with ErrNothingToExport.
func (s *Session) Export() (string, error) {
	s.mu.Lock()
	instances, canvas, bg := s.board.Instances(), s.board.Canvas(), s.background
	s.mu.Unlock()

	return export(s.logger, instances, canvas, &bg)
}

// export composes the instances, logging the skipped ones.
func export(logger *slog.Logger, instances []svgplace.Instance, canvas svgplace.Canvas, bg *svgbg.Config) (string, error) {
	if len(instances) == 0 {
		return "", ErrNothingToExport
	}
	res := svgmerge.Compose(instances, canvas, bg)
	if len(res.Skipped) != 0 {
		logger.Warn("instances skipped from export", "ids", res.Skipped)
	}
	logger.Debug("export done", "included", res.Included, "size", len(res.Document))
	return res.Document, nil
}

// ExportLayout validates and exports a saved layout, as the export
// route does for a layout sent by a client.
func ExportLayout(logger *slog.Logger, l svgmerge.Layout) (string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	board, err := l.Board(nil)
	if err != nil {
		return "", err
	}
	if err := validateBackground(l.Background); err != nil {
		return "", err
	}
	return export(logger, board.Instances(), board.Canvas(), l.Background)
}

// validateBackground accepts a missing backdrop.
func validateBackground(bg *svgbg.Config) error {
	if bg == nil {
		return nil
	}
	return bg.Validate()
}

// Layout returns the saved form of the session.
func (s *Session) Layout() svgmerge.Layout {
	s.mu.Lock()
	defer s.mu.Unlock()
	bg := s.background
	return svgmerge.NewLayout(s.board.Instances(), s.board.Canvas(), &bg, s.library.Get)
}

// Restore replaces the board (and the backdrop, if saved) with the content
// of `l`. The library is not modified. On error, the session is unchanged.
func (s *Session) Restore(l svgmerge.Layout) error {
	board, err := l.Board(s.newID)
	if err != nil {
		return err
	}
	if err := validateBackground(l.Background); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.board = board
	if l.Background != nil {
		s.background = *l.Background
	}
	s.logger.Info("layout restored", "version", l.Version, "instances", board.Len())
	return nil
}

// Preview writes a PNG rendering of the composition.
// `scale` is the number of pixels per canvas unit.
func (s *Session) Preview(w io.Writer, scale float64) error {
	s.mu.Lock()
	instances, canvas, bg := s.board.Instances(), s.board.Canvas(), s.background
	s.mu.Unlock()

	return preview(s.logger, w, instances, canvas, &bg, scale)
}

// PreviewLayout writes a PNG rendering of a saved layout.
func PreviewLayout(logger *slog.Logger, w io.Writer, l svgmerge.Layout, scale float64) error {
	if logger == nil {
		logger = slog.Default()
	}
	board, err := l.Board(nil)
	if err != nil {
		return err
	}
	if err := validateBackground(l.Background); err != nil {
		return err
	}
	return preview(logger, w, board.Instances(), board.Canvas(), l.Background, scale)
}

func preview(logger *slog.Logger, w io.Writer, instances []svgplace.Instance, canvas svgplace.Canvas, bg *svgbg.Config, scale float64) error {
	res, err := svgraster.Preview(instances, canvas, bg, scale)
	if err != nil {
		return err
	}
	if len(res.Skipped) != 0 {
		logger.Warn("instances skipped from preview", "ids", res.Skipped)
	}
	var buf bytes.Buffer
	if err := svgraster.EncodePNG(&buf, res.Image); err != nil {
		return fmt.Errorf("encoding preview: %w", err)
	}
	_, err = buf.WriteTo(w)
	return err
}
