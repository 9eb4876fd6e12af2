package network

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
)

func fastClient(t *testing.T, opts ...ClientOption) *Client {
	t.Helper()
	opts = append([]ClientOption{WithRetryWait(time.Millisecond, 2*time.Millisecond)}, opts...)
	client, err := NewClient(opts...)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

func TestNewClientDefaults(t *testing.T) {
	client, err := NewClient()
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if client.timeout != 30*time.Second {
		t.Errorf("default timeout = %v, want 30s", client.timeout)
	}
	if client.retryMax != 3 {
		t.Errorf("default retryMax = %d, want 3", client.retryMax)
	}
	if client.userAgent != DefaultUserAgent {
		t.Errorf("default userAgent = %q", client.userAgent)
	}
}

func TestClientOptions(t *testing.T) {
	client, err := NewClient(
		WithTimeout(time.Minute),
		WithUserAgent("TestAgent/1.0"),
		WithRetryMax(7),
		WithMaxBodySize(42),
	)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if client.timeout != time.Minute || client.http.HTTPClient.Timeout != time.Minute {
		t.Errorf("timeout = %v / %v, want 1m", client.timeout, client.http.HTTPClient.Timeout)
	}
	if client.http.RetryMax != 7 {
		t.Errorf("RetryMax = %d, want 7", client.http.RetryMax)
	}
	if client.maxBodySize != 42 {
		t.Errorf("maxBodySize = %d, want 42", client.maxBodySize)
	}
}

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if got := r.Header.Get("User-Agent"); got != "TestAgent/1.0" {
			t.Errorf("User-Agent = %q", got)
		}
		w.Header().Set("Content-Type", "text/html; charset=UTF-8")
		w.Write([]byte("<title>hi</title>"))
	}))
	defer server.Close()

	client := fastClient(t, WithUserAgent("TestAgent/1.0"))
	resp, err := client.Fetch(context.Background(), server.URL+"/page")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if string(resp.Body) != "<title>hi</title>" {
		t.Errorf("Body = %q", resp.Body)
	}
	if resp.MediaType() != "text/html" {
		t.Errorf("MediaType() = %q", resp.MediaType())
	}
	if resp.URL != server.URL+"/page" {
		t.Errorf("URL = %q", resp.URL)
	}
}

func TestFetchFollowsRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/final" {
			w.Write([]byte("final"))
			return
		}
		http.Redirect(w, r, "/final", http.StatusFound)
	}))
	defer server.Close()

	resp, err := fastClient(t).Fetch(context.Background(), server.URL+"/start")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if resp.URL != server.URL+"/final" || string(resp.Body) != "final" {
		t.Errorf("got %q from %q", resp.Body, resp.URL)
	}
}

func TestFetchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	resp, err := fastClient(t).Fetch(context.Background(), server.URL+"/missing")
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("Fetch() error = %v, want *HTTPError", err)
	}
	if httpErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", httpErr.StatusCode)
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("response should accompany the HTTP error: %+v", resp)
	}
}

func TestFetchRetries(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	resp, err := fastClient(t, WithRetryMax(3)).Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(resp.Body) != "ok" || atomic.LoadInt32(&attempts) != 3 {
		t.Errorf("body %q after %d attempts", resp.Body, attempts)
	}
}

func TestFetchRetriesExhausted(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := fastClient(t, WithRetryMax(1)).Fetch(context.Background(), server.URL)
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("Fetch() error = %v, want 502 HTTPError", err)
	}
	if got := atomic.LoadInt32(&attempts); got != 2 {
		t.Errorf("attempts = %d, want 2", got)
	}
}

func TestFetchMaxBodySize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 100)))
	}))
	defer server.Close()

	_, err := fastClient(t, WithMaxBodySize(10)).Fetch(context.Background(), server.URL)
	if !errors.Is(err, ErrBodyTooLarge) {
		t.Fatalf("Fetch() error = %v, want ErrBodyTooLarge", err)
	}
	resp, err := fastClient(t, WithMaxBodySize(100)).Fetch(context.Background(), server.URL)
	if err != nil || len(resp.Body) != 100 {
		t.Fatalf("body at the limit should be accepted: %v", err)
	}
}

func TestFetchCookies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/set" {
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
			return
		}
		c, err := r.Cookie("session")
		if err != nil {
			w.Write([]byte("none"))
			return
		}
		w.Write([]byte(c.Value))
	}))
	defer server.Close()

	client := fastClient(t)
	ctx := context.Background()
	if _, err := client.Fetch(ctx, server.URL+"/set"); err != nil {
		t.Fatalf("Fetch(/set) error = %v", err)
	}
	resp, err := client.Fetch(ctx, server.URL+"/get")
	if err != nil {
		t.Fatalf("Fetch(/get) error = %v", err)
	}
	if string(resp.Body) != "abc" {
		t.Errorf("cookie not sent back, got %q", resp.Body)
	}

	u, _ := url.Parse(server.URL)
	if cookies := client.Cookies(u); len(cookies) != 1 {
		t.Errorf("Cookies() = %v", cookies)
	}
	if err := client.ClearCookies(); err != nil {
		t.Fatalf("ClearCookies() error = %v", err)
	}
	resp, _ = client.Fetch(ctx, server.URL+"/get")
	if string(resp.Body) != "none" {
		t.Errorf("cookie survived ClearCookies, got %q", resp.Body)
	}
}

func TestFetchCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("late"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := fastClient(t).Fetch(ctx, server.URL); !errors.Is(err, context.Canceled) {
		t.Errorf("Fetch() error = %v, want context.Canceled", err)
	}
}

func TestFetchWithCache(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.URL.Path == "/private" {
			w.Header().Set("Cache-Control", "no-store")
		} else {
			w.Header().Set("Cache-Control", "max-age=60")
		}
		w.Write([]byte("body"))
	}))
	defer server.Close()

	client := fastClient(t, WithCache(NewCache(10)))
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		resp, err := client.Fetch(ctx, server.URL+"/shared")
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if (i > 0) != resp.Cached {
			t.Errorf("request %d: Cached = %v", i, resp.Cached)
		}
	}
	client.Fetch(ctx, server.URL+"/private")
	client.Fetch(ctx, server.URL+"/private")
	if got := atomic.LoadInt32(&hits); got != 3 {
		t.Errorf("server hits = %d, want 3", got)
	}
}

func TestFetchDataURL(t *testing.T) {
	resp, err := fastClient(t).Fetch(context.Background(), "data:text/javascript,alert(1)")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(resp.Body) != "alert(1)" || !IsJavaScriptContentType(resp.ContentType) {
		t.Errorf("got %q (%s)", resp.Body, resp.ContentType)
	}
}

func TestFetchFileURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	if err := os.WriteFile(path, []byte("<p>local</p>"), 0o600); err != nil {
		t.Fatal(err)
	}

	client := fastClient(t)
	resp, err := client.Fetch(context.Background(), FileURL(path))
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(resp.Body) != "<p>local</p>" || !IsHTMLContentType(resp.ContentType) {
		t.Errorf("got %q (%s)", resp.Body, resp.ContentType)
	}
	if _, err := client.Fetch(context.Background(), FileURL(filepath.Join(dir, "missing.js"))); err == nil {
		t.Error("missing file should fail")
	}
}

func TestFetchRejectsRelativeAndUnknownSchemes(t *testing.T) {
	client := fastClient(t)
	for _, u := range []string{"page.html", "ftp://example.com/x"} {
		if _, err := client.Fetch(context.Background(), u); err == nil {
			t.Errorf("Fetch(%q) should fail", u)
		}
	}
}

func TestScriptLoader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/app.js" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/javascript")
		w.Write([]byte("var loaded = true;"))
	}))
	defer server.Close()

	load := fastClient(t).ScriptLoader()
	src, err := load(context.Background(), server.URL+"/app.js")
	if err != nil || src != "var loaded = true;" {
		t.Fatalf("load = %q, %v", src, err)
	}
	if _, err := load(context.Background(), server.URL+"/nope.js"); err == nil {
		t.Error("404 script should fail")
	}
}
