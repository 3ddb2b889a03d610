package svgfetch

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// noopValidator allows all URLs, since test servers listen on loopback.
func noopValidator(_ string) error { return nil }

const logo = `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"/>`

func TestFetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != DefaultUserAgent {
			t.Errorf("user agent: got %q", ua)
		}
		if accept := r.Header.Get("Accept"); accept != "image/svg+xml,text/plain,*/*" {
			t.Errorf("accept: got %q", accept)
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Write([]byte(logo))
	}))
	defer srv.Close()

	f := New(Config{URLValidator: noopValidator})
	res, err := f.Fetch(context.Background(), srv.URL+"/logo.svg")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if res.Content != logo || res.ContentType != "image/svg+xml" || res.URL != srv.URL+"/logo.svg" {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestFetchRejections(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/empty":
			w.Write([]byte("  \n "))
		case "/html":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte("<html><body>nope</body></html>"))
		case "/typed":
			w.Header().Set("Content-Type", "image/svg+xml")
			w.Write([]byte("<?xml version='1.0'?><!-- no root yet -->"))
		case "/big":
			w.Write([]byte("<svg>" + strings.Repeat("x", 100) + "</svg>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := New(Config{URLValidator: noopValidator, MaxBytes: 64})
	ctx := context.Background()

	if _, err := f.Fetch(ctx, srv.URL+"/empty"); !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("empty: got %v", err)
	}
	if _, err := f.Fetch(ctx, srv.URL+"/html"); !errors.Is(err, ErrNotSVG) {
		t.Errorf("html: got %v", err)
	}
	if _, err := f.Fetch(ctx, srv.URL+"/typed"); err != nil {
		t.Errorf("svg content type should be accepted: %v", err)
	}
	if _, err := f.Fetch(ctx, srv.URL+"/big"); !errors.Is(err, ErrTooLarge) {
		t.Errorf("big: got %v", err)
	}

	_, err := f.Fetch(ctx, srv.URL+"/missing")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusNotFound {
		t.Errorf("missing: got %v", err)
	} else if statusErr.Error() != "HTTP 404: Not Found" {
		t.Errorf("unexpected message %q", statusErr.Error())
	}

	for _, u := range []string{"ftp://example.com/a.svg", "not a url", "", "https://"} {
		if _, err := f.Fetch(ctx, u); !errors.Is(err, ErrInvalidURL) {
			t.Errorf("%q: expected ErrInvalidURL, got %v", u, err)
		}
	}
}

func TestFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
		w.Write([]byte(logo))
	}))
	defer srv.Close()

	f := New(Config{URLValidator: noopValidator, Timeout: 50 * time.Millisecond})
	if _, err := f.Fetch(context.Background(), srv.URL); !errors.Is(err, ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}
}

func TestFetchRedirectValidated(t *testing.T) {
	var target *httptest.Server
	target = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/start" {
			http.Redirect(w, r, target.URL+"/internal", http.StatusFound)
			return
		}
		w.Write([]byte(logo))
	}))
	defer target.Close()

	blocked := errors.New("blocked")
	validator := func(u string) error {
		if strings.HasSuffix(u, "/internal") {
			return blocked
		}
		return nil
	}
	f := New(Config{URLValidator: validator})
	if _, err := f.Fetch(context.Background(), target.URL+"/start"); !errors.Is(err, blocked) {
		t.Errorf("expected redirect to be blocked, got %v", err)
	}
}

func TestGithubAccept(t *testing.T) {
	var accept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accept = r.Header.Get("Accept")
		w.Write([]byte(logo))
	}))
	defer srv.Close()

	// route a github host name to the test server
	f := New(Config{URLValidator: noopValidator})
	f.client.Transport = &http.Transport{
		DialContext: func(ctx context.Context, network, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, network, srv.Listener.Addr().String())
		},
	}
	if _, err := f.Fetch(context.Background(), "http://raw.githubusercontent.com/a/b.svg"); err != nil {
		t.Fatal(err)
	}
	if accept != "application/vnd.github.v3.raw" {
		t.Errorf("unexpected accept header %q", accept)
	}
}

func TestValidateURL(t *testing.T) {
	for _, u := range []string{
		"http://127.0.0.1/a.svg",
		"http://10.1.2.3/",
		"https://192.168.0.1:8443/x",
		"http://[::1]/",
		"http://169.254.169.254/latest/meta-data",
		"http://0.0.0.0/",
	} {
		if err := ValidateURL(u); !errors.Is(err, ErrPrivateAddress) {
			t.Errorf("%s: expected ErrPrivateAddress, got %v", u, err)
		}
	}
	for _, u := range []string{"file:///etc/passwd", "javascript:alert(1)", "http:///path"} {
		if err := ValidateURL(u); !errors.Is(err, ErrInvalidURL) {
			t.Errorf("%s: expected ErrInvalidURL, got %v", u, err)
		}
	}
	if err := ValidateURL("https://93.184.216.34/logo.svg"); err != nil {
		t.Errorf("public address rejected: %v", err)
	}
}

func TestLooksLikeSVG(t *testing.T) {
	if !LooksLikeSVG("<?xml version='1.0'?>\n<svg/>", "") {
		t.Error("svg tag not detected")
	}
	if !LooksLikeSVG("garbage", "image/SVG+xml") {
		t.Error("content type not detected")
	}
	if LooksLikeSVG("<html/>", "text/html") {
		t.Error("html accepted")
	}
}

func TestDecodeDataURI(t *testing.T) {
	for _, test := range []struct {
		uri, media, content string
	}{
		{"data:image/svg+xml;base64,PHN2Zy8+", "image/svg+xml", "<svg/>"},
		{"DATA:image/svg+xml;BASE64,PHN2Zy8+", "image/svg+xml", "<svg/>"},
		{"data:image/svg+xml;charset=utf-8,%3Csvg%20width%3D%221%22%2F%3E", "image/svg+xml;charset=utf-8", `<svg width="1"/>`},
		{"data:,a+b", "text/plain;charset=US-ASCII", "a+b"},
	} {
		media, content, err := DecodeDataURI(test.uri)
		if err != nil {
			t.Fatalf("%s: %v", test.uri, err)
		}
		if media != test.media || content != test.content {
			t.Errorf("%s: got %q %q", test.uri, media, content)
		}
	}
	for _, uri := range []string{"http://x", "data:image/svg+xml;base64", "data:;base64,!!!", "data:,%zz"} {
		if _, _, err := DecodeDataURI(uri); !errors.Is(err, ErrInvalidDataURI) {
			t.Errorf("%s: expected ErrInvalidDataURI, got %v", uri, err)
		}
	}
}
