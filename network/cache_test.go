package network

import (
	"net/http"
	"testing"
	"time"
)

func cachedResponse(header, value string) *Response {
	h := http.Header{}
	if header != "" {
		h.Set(header, value)
	}
	return &Response{StatusCode: 200, Headers: h, Body: []byte("body")}
}

func TestCacheFreshness(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := NewCache(10)
	cache.now = func() time.Time { return now }

	cache.Set("http://example.com/a", cachedResponse("Cache-Control", "public, max-age=60"))
	cache.Set("http://example.com/b", cachedResponse("", ""))
	cache.Set("http://example.com/c", cachedResponse("Expires", now.Add(10*time.Second).Format(http.TimeFormat)))

	for _, u := range []string{"http://example.com/a", "http://example.com/b", "http://example.com/c"} {
		resp, ok := cache.Get(u)
		if !ok || !resp.Cached || string(resp.Body) != "body" {
			t.Errorf("Get(%q) = %+v, %v", u, resp, ok)
		}
	}

	now = now.Add(30 * time.Second)
	if _, ok := cache.Get("http://example.com/c"); ok {
		t.Error("entry past Expires should be gone")
	}
	if _, ok := cache.Get("http://example.com/a"); !ok {
		t.Error("entry within max-age should be served")
	}

	now = now.Add(time.Minute)
	if _, ok := cache.Get("http://example.com/a"); ok {
		t.Error("entry past max-age should be gone")
	}
	if _, ok := cache.Get("http://example.com/b"); !ok {
		t.Error("entry within default freshness should be served")
	}
}

func TestCacheReturnsCopies(t *testing.T) {
	cache := NewCache(10)
	stored := cachedResponse("Cache-Control", "max-age=60")
	cache.Set("http://example.com/a", stored)
	stored.Body[0] = 'X'
	stored.Headers.Set("X-Changed", "1")

	first, ok := cache.Get("http://example.com/a")
	if !ok {
		t.Fatal("entry missing")
	}
	first.Body[0] = 'Y'
	first.Headers.Set("X-Changed", "2")

	second, _ := cache.Get("http://example.com/a")
	if string(second.Body) != "body" {
		t.Errorf("cached body = %q, want %q", second.Body, "body")
	}
	if second.Headers.Get("X-Changed") != "" {
		t.Errorf("cached headers were modified: %v", second.Headers)
	}
	if stored.Cached {
		t.Error("Get marked the stored response as cached")
	}
}

func TestCacheRefusesUncacheable(t *testing.T) {
	cache := NewCache(10)
	tests := []struct{ header, value string }{
		{"Cache-Control", "no-store"},
		{"Cache-Control", "No-Cache"},
		{"Cache-Control", "max-age=0"},
		{"Cache-Control", "max-age=soon"},
		{"Expires", "Thu, 01 Jan 1970 00:00:00 GMT"},
		{"Expires", "garbage"},
	}
	for _, tt := range tests {
		cache.Set("http://example.com/x", cachedResponse(tt.header, tt.value))
		if cache.Len() != 0 {
			t.Errorf("%s: %s was stored", tt.header, tt.value)
			cache.Clear()
		}
	}
}

func TestCacheEviction(t *testing.T) {
	now := time.Now()
	cache := NewCache(2)
	cache.now = func() time.Time { return now }

	for _, u := range []string{"a", "b", "c"} {
		cache.Set(u, cachedResponse("", ""))
		now = now.Add(time.Second)
	}
	if cache.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", cache.Len())
	}
	if _, ok := cache.Get("a"); ok {
		t.Error("oldest entry should have been evicted")
	}
	cache.Set("b", cachedResponse("", ""))
	if cache.Len() != 2 {
		t.Errorf("replacing an entry should not evict, Len() = %d", cache.Len())
	}
}
