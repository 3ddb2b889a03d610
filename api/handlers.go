package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/benoitkugler/svgmerge/svgbg"
	"github.com/benoitkugler/svgmerge/svgclean"
	"github.com/benoitkugler/svgmerge/svgdoc"
	"github.com/benoitkugler/svgmerge/svgedit"
	"github.com/benoitkugler/svgmerge/svgfetch"
	"github.com/benoitkugler/svgmerge/svgmerge"
	"github.com/benoitkugler/svgmerge/svgplace"
	"github.com/benoitkugler/svgmerge/svgraster"
)

const (
	svgContentType     = "image/svg+xml; charset=utf-8"
	msgNothingToExport = "No SVGs on canvas to export"
)

var (
	errMissingURL  = errors.New("URL is required")
	errNoFetcher   = errors.New("fetching is disabled")
	errEmptyBody   = errors.New("request body is empty")
	errInvalidBody = errors.New("invalid request body")
)

type fetchRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	var req fetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %s", errInvalidBody, err))
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		s.writeError(w, r, errMissingURL)
		return
	}
	if s.fetcher == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": errNoFetcher.Error()})
		return
	}
	res, err := s.fetcher.Fetch(r.Context(), req.URL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDimensions(w http.ResponseWriter, r *http.Request) {
	markup, err := readBody(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	dims := svgdoc.ExtractDimensions(markup)
	writeJSON(w, http.StatusOK, map[string]float64{"width": dims.Width, "height": dims.Height})
}

func (s *Server) handleSanitize(w http.ResponseWriter, r *http.Request) {
	markup, err := readBody(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", svgContentType)
	io.WriteString(w, svgclean.Sanitize(markup))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	layout, err := readLayout(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := svgedit.ExportLayout(s.logger, layout)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", svgContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="merged.svg"`)
	io.WriteString(w, doc)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	scale := 1.
	if v := r.URL.Query().Get("scale"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("%w: %q", svgraster.ErrInvalidScale, v))
			return
		}
		scale = f
	}
	layout, err := readLayout(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := svgedit.PreviewLayout(s.logger, &buf, layout, scale); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	buf.WriteTo(w)
}

func readBody(r *http.Request) (string, error) {
	b, err := io.ReadAll(r.Body)
	if err != nil {
		return "", err
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return "", errEmptyBody
	}
	return string(b), nil
}

func readLayout(r *http.Request) (svgmerge.Layout, error) {
	l, err := svgmerge.ReadLayoutJSON(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || errors.Is(err, svgmerge.ErrUnsupportedVersion) {
			return l, err
		}
		return l, fmt.Errorf("%w: %s", errInvalidBody, err)
	}
	return l, nil
}

// statusOf maps the errors of the core packages to HTTP status codes.
func statusOf(err error) int {
	var (
		statusErr *svgfetch.StatusError
		maxErr    *http.MaxBytesError
	)
	switch {
	case errors.As(err, &statusErr):
		return statusErr.Code
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, svgfetch.ErrTimeout):
		return http.StatusRequestTimeout
	case errors.Is(err, errMissingURL),
		errors.Is(err, errEmptyBody),
		errors.Is(err, errInvalidBody),
		errors.Is(err, svgedit.ErrNothingToExport),
		errors.Is(err, svgfetch.ErrInvalidURL),
		errors.Is(err, svgfetch.ErrPrivateAddress),
		errors.Is(err, svgfetch.ErrEmptyResponse),
		errors.Is(err, svgfetch.ErrNotSVG),
		errors.Is(err, svgfetch.ErrTooLarge),
		errors.Is(err, svgmerge.ErrUnsupportedVersion),
		errors.Is(err, svgmerge.ErrInvalidContent),
		errors.Is(err, svgplace.ErrDegenerateSize),
		errors.Is(err, svgplace.ErrInvalidCanvas),
		errors.Is(err, svgraster.ErrInvalidScale),
		errors.Is(err, svgraster.ErrTooLarge),
		errors.Is(err, svgbg.ErrInvalidColor),
		errors.Is(err, svgbg.ErrInvalidAlpha),
		errors.Is(err, svgbg.ErrInvalidPattern),
		errors.Is(err, svgbg.ErrInvalidCellSize):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusOf(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "status", code, "error", err)
	}
	writeJSON(w, code, map[string]string{"error": userMessage(err)})
}

// userMessage returns the text shown to the user for `err`.
func userMessage(err error) string {
	if errors.Is(err, svgedit.ErrNothingToExport) {
		return msgNothingToExport
	}
	return err.Error()
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
