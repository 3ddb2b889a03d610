// Package svgfetch retrieves SVG documents from remote URLs and data URIs,
// before they are handed to the editor.
//
// The fetcher only allows http(s) targets on public addresses, including
// on redirects.
package svgfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultUserAgent identifies the fetcher to remote servers.
	DefaultUserAgent = "MergeSVG/1.0 (+https://github.com/whiteSHADOW1234/MergeSVG)"
	defaultAccept    = "image/svg+xml,text/plain,*/*"
	githubAccept     = "application/vnd.github.v3.raw"
	maxRedirects     = 5
)

var (
	ErrInvalidURL     = errors.New("svgfetch: invalid URL format")
	ErrPrivateAddress = errors.New("svgfetch: URL targets a private or loopback address")
	ErrEmptyResponse  = errors.New("svgfetch: empty response from URL")
	ErrNotSVG         = errors.New("svgfetch: URL does not contain valid SVG content")
	ErrTimeout        = errors.New("svgfetch: request timeout, URL took too long to respond")
	ErrTooLarge       = errors.New("svgfetch: response is too large")
)

// StatusError is returned when the server answers with a non 2xx status.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Status)
}

// Result is a fetched document.
type Result struct {
	Content     string `json:"content"`
	ContentType string `json:"contentType"`
	URL         string `json:"url"`
}

// Config configures the fetcher.
type Config struct {
	Timeout   time.Duration // Default: 10s.
	MaxBytes  int64         // Default: 5 MiB.
	UserAgent string
	// URLValidator is called on the target and on every redirect.
	// Default: ValidateURL.
	URLValidator func(string) error
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = 5 << 20
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.URLValidator == nil {
		c.URLValidator = ValidateURL
	}
}

// Fetcher downloads SVG documents.
type Fetcher struct {
	client *http.Client
	config Config
}

// New returns a Fetcher, validating redirects with `cfg.URLValidator`.
func New(cfg Config) *Fetcher {
	cfg.defaults()
	validate := cfg.URLValidator
	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("too many redirects (%d)", len(via))
				}
				if err := validate(req.URL.String()); err != nil {
					return fmt.Errorf("redirect blocked: %w", err)
				}
				return nil
			},
		},
		config: cfg,
	}
}

// Fetch downloads the document at `rawURL`. The returned content is only
// checked for plausibility: it still has to be sanitized by the caller.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidURL
	}
	if err := f.config.URLValidator(u.String()); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	if strings.Contains(strings.ToLower(u.Hostname()), "github") {
		req.Header.Set("Accept", githubAccept)
	} else {
		req.Header.Set("Accept", defaultAccept)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, wrapTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBytes+1))
	if err != nil {
		return nil, wrapTransport(err)
	}
	if int64(len(body)) > f.config.MaxBytes {
		return nil, fmt.Errorf("%w (max %d bytes)", ErrTooLarge, f.config.MaxBytes)
	}

	content := string(body)
	contentType := resp.Header.Get("Content-Type")
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyResponse
	}
	if !LooksLikeSVG(content, contentType) {
		return nil, ErrNotSVG
	}
	return &Result{Content: content, ContentType: contentType, URL: rawURL}, nil
}

func wrapTransport(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %s", ErrTimeout, err)
	}
	return fmt.Errorf("failed to fetch SVG: %w", err)
}

// LooksLikeSVG is a shallow check: the content contains an svg tag,
// or the server declared an SVG content type.
func LooksLikeSVG(content, contentType string) bool {
	return strings.Contains(content, "<svg") || strings.Contains(strings.ToLower(contentType), "svg")
}

// ValidateURL checks that `rawURL` uses http or https, has a host and
// does not resolve to a private or loopback address.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidURL, err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("%w: scheme %q", ErrInvalidURL, u.Scheme)
	}
	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}

	if ip := net.ParseIP(host); ip != nil {
		if isPrivateIP(ip) {
			return ErrPrivateAddress
		}
		return nil
	}

	addrs, err := net.LookupHost(host)
	if err != nil {
		// the request itself will report the resolution error
		return nil
	}
	for _, a := range addrs {
		if ip := net.ParseIP(a); ip != nil && isPrivateIP(ip) {
			return ErrPrivateAddress
		}
	}
	return nil
}

func isPrivateIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast()
}
