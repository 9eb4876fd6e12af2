package network

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// defaultFreshness applies to responses without max-age or Expires.
const defaultFreshness = 5 * time.Minute

type cacheEntry struct {
	resp     *Response
	storedAt time.Time
	maxAge   time.Duration
}

func (e *cacheEntry) fresh(now time.Time) bool {
	return now.Sub(e.storedAt) < e.maxAge
}

// Cache is an in-memory store of successful GET responses keyed by URL.
// It honours Cache-Control no-store, no-cache and max-age, and Expires.
type Cache struct {
	entries map[string]*cacheEntry
	maxSize int
	now     func() time.Time
	mu      sync.Mutex
}

// NewCache creates a cache holding at most maxSize entries.
func NewCache(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &Cache{
		entries: make(map[string]*cacheEntry),
		maxSize: maxSize,
		now:     time.Now,
	}
}

// Get returns a copy of the stored response for url while it is fresh.
func (c *Cache) Get(url string) (*Response, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[url]
	if !ok {
		return nil, false
	}
	if !e.fresh(c.now()) {
		delete(c.entries, url)
		return nil, false
	}
	resp := cloneResponse(e.resp)
	resp.Cached = true
	return resp, true
}

// Set stores resp under url unless its headers forbid it.
func (c *Cache) Set(url string, resp *Response) {
	maxAge, ok := freshnessLifetime(resp.Headers, c.now())
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[url]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}
	c.entries[url] = &cacheEntry{resp: cloneResponse(resp), storedAt: c.now(), maxAge: maxAge}
}

// cloneResponse copies resp so callers never share Body or Headers with
// a stored entry.
func cloneResponse(resp *Response) *Response {
	c := *resp
	c.Headers = resp.Headers.Clone()
	c.Body = bytes.Clone(resp.Body)
	return &c
}

// Len returns the number of stored entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// evictOldest must be called with c.mu held.
func (c *Cache) evictOldest() {
	var oldest string
	var oldestAt time.Time
	for url, e := range c.entries {
		if oldest == "" || e.storedAt.Before(oldestAt) {
			oldest, oldestAt = url, e.storedAt
		}
	}
	delete(c.entries, oldest)
}

// freshnessLifetime reports how long a response with headers h may be
// served from cache, and false when it must not be stored.
func freshnessLifetime(h http.Header, now time.Time) (time.Duration, bool) {
	cc := cacheDirectives(h.Get("Cache-Control"))
	if _, ok := cc["no-store"]; ok {
		return 0, false
	}
	if _, ok := cc["no-cache"]; ok {
		return 0, false
	}
	if v, ok := cc["max-age"]; ok {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	if exp := h.Get("Expires"); exp != "" {
		t, err := http.ParseTime(exp)
		if err != nil || !t.After(now) {
			return 0, false
		}
		return t.Sub(now), true
	}
	return defaultFreshness, true
}

// cacheDirectives splits a Cache-Control value into lowercased directives.
func cacheDirectives(value string) map[string]string {
	out := make(map[string]string)
	for _, d := range strings.Split(value, ",") {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		name, arg, _ := strings.Cut(d, "=")
		out[strings.ToLower(strings.TrimSpace(name))] = strings.Trim(strings.TrimSpace(arg), `"`)
	}
	return out
}
