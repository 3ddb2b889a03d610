package svgfetch

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var ErrInvalidDataURI = errors.New("svgfetch: invalid data URI")

const defaultDataMediaType = "text/plain;charset=US-ASCII"

// DecodeDataURI decodes `data:<media type>[;base64],<payload>` URIs,
// returning the media type (without the base64 marker) and the payload.
func DecodeDataURI(uri string) (mediaType, content string, err error) {
	uri = strings.TrimSpace(uri)
	if len(uri) < 5 || !strings.EqualFold(uri[:5], "data:") {
		return "", "", fmt.Errorf("%w: missing data: scheme", ErrInvalidDataURI)
	}
	meta, payload, ok := strings.Cut(uri[5:], ",")
	if !ok {
		return "", "", fmt.Errorf("%w: missing comma", ErrInvalidDataURI)
	}

	isBase64 := false
	if i := strings.LastIndex(meta, ";"); i >= 0 && strings.EqualFold(strings.TrimSpace(meta[i+1:]), "base64") {
		isBase64 = true
		meta = meta[:i]
	}
	mediaType = strings.TrimSpace(meta)
	if mediaType == "" {
		mediaType = defaultDataMediaType
	}

	if isBase64 {
		payload = strings.Map(func(r rune) rune {
			if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
				return -1
			}
			return r
		}, payload)
		if unescaped, err := url.PathUnescape(payload); err == nil {
			payload = unescaped
		}
		b, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			b, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
			if err != nil {
				return "", "", fmt.Errorf("%w: %s", ErrInvalidDataURI, err)
			}
		}
		return mediaType, string(b), nil
	}

	text, err := url.PathUnescape(payload)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidDataURI, err)
	}
	return mediaType, text, nil
}
