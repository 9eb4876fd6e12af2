// Package network fetches pages and scripts over HTTP, from data: URLs and
// from the local filesystem.
package network

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/net/publicsuffix"
)

// ErrBodyTooLarge is returned when a response body exceeds the client's
// size limit.
var ErrBodyTooLarge = errors.New("response body too large")

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "htmlemu/1.0"

// Client is an HTTP client with cookie support, retries and a body size
// limit.
type Client struct {
	http      *retryablehttp.Client
	cookieJar http.CookieJar
	cache     *Cache
	log       zerolog.Logger

	timeout      time.Duration
	userAgent    string
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration
	maxBodySize  int64

	mu sync.RWMutex
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the per-attempt request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithRetryMax sets how many times a failed request is retried.
func WithRetryMax(n int) ClientOption {
	return func(c *Client) {
		c.retryMax = n
	}
}

// WithRetryWait sets the bounds of the wait between retries.
func WithRetryWait(min, max time.Duration) ClientOption {
	return func(c *Client) {
		c.retryWaitMin = min
		c.retryWaitMax = max
	}
}

// WithMaxBodySize limits the number of body bytes read from a response.
// Zero or less disables the limit.
func WithMaxBodySize(n int64) ClientOption {
	return func(c *Client) {
		c.maxBodySize = n
	}
}

// WithLogger sets the logger used for request and retry logging.
func WithLogger(l zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.log = l
	}
}

// WithCache serves repeated GETs from cache while the stored response is
// fresh.
func WithCache(cache *Cache) ClientOption {
	return func(c *Client) {
		c.cache = cache
	}
}

// NewClient creates a new HTTP client with the given options.
func NewClient(opts ...ClientOption) (*Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{
		PublicSuffixList: publicsuffix.List,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create cookie jar")
	}

	c := &Client{
		cookieJar:    jar,
		log:          zerolog.Nop(),
		timeout:      30 * time.Second,
		userAgent:    DefaultUserAgent,
		retryMax:     3,
		retryWaitMin: 500 * time.Millisecond,
		retryWaitMax: 5 * time.Second,
		maxBodySize:  10 << 20,
	}
	for _, opt := range opts {
		opt(c)
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient.Jar = jar
	rc.HTTPClient.Timeout = c.timeout
	rc.RetryMax = c.retryMax
	rc.RetryWaitMin = c.retryWaitMin
	rc.RetryWaitMax = c.retryWaitMax
	rc.Logger = &retryLogAdapter{log: c.log}
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	c.http = rc

	return c, nil
}

// Response is a fetched resource.
type Response struct {
	URL         string // final URL after redirects
	StatusCode  int
	Status      string
	Headers     http.Header
	ContentType string
	Body        []byte
	Cached      bool
}

// MediaType returns the lowercased media type of the response.
func (r *Response) MediaType() string {
	mediaType, _ := ParseContentType(r.ContentType)
	return mediaType
}

// HTTPError is returned for responses outside the 2xx range.
type HTTPError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("GET %s: %s", e.URL, e.Status)
}

// Fetch retrieves rawURL. http and https URLs go over the network, data:
// URLs are decoded in place and file: URLs are read from disk. A non-2xx
// HTTP status is returned as an *HTTPError.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, errors.Wrapf(err, "parse %q", rawURL)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return c.fetchHTTP(ctx, u.String())
	case "data":
		return fetchData(rawURL)
	case "file":
		return c.fetchFile(u)
	case "":
		return nil, errors.Errorf("fetch %q: URL is not absolute", rawURL)
	}
	return nil, errors.Errorf("fetch %q: unsupported scheme %q", rawURL, u.Scheme)
}

func (c *Client) fetchHTTP(ctx context.Context, rawURL string) (*Response, error) {
	if c.cache != nil {
		if resp, ok := c.cache.Get(rawURL); ok {
			c.log.Debug().Str("url", rawURL).Msg("cache hit")
			return resp, nil
		}
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	c.mu.RLock()
	hc := c.http
	c.mu.RUnlock()

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s", rawURL)
	}
	defer resp.Body.Close()

	body, err := c.readBody(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s", rawURL)
	}

	out := &Response{
		URL:         resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		Status:      resp.Status,
		Headers:     resp.Header,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}
	c.log.Debug().
		Str("url", rawURL).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("elapsed", time.Since(start)).
		Msg("fetched")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, &HTTPError{URL: rawURL, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	if c.cache != nil {
		c.cache.Set(rawURL, out)
	}
	return out, nil
}

func (c *Client) readBody(r io.Reader) ([]byte, error) {
	if c.maxBodySize <= 0 {
		return io.ReadAll(r)
	}
	body, err := io.ReadAll(io.LimitReader(r, c.maxBodySize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > c.maxBodySize {
		return nil, errors.Wrapf(ErrBodyTooLarge, "limit %d bytes", c.maxBodySize)
	}
	return body, nil
}

func (c *Client) fetchFile(u *url.URL) (*Response, error) {
	path := u.Path
	if path == "" {
		path = u.Opaque
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open file URL")
	}
	defer f.Close()

	body, err := c.readBody(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return &Response{
		URL:         u.String(),
		StatusCode:  http.StatusOK,
		Status:      "200 OK",
		ContentType: GuessContentType(path),
		Body:        body,
	}, nil
}

func fetchData(rawURL string) (*Response, error) {
	d, err := ParseDataURL(rawURL)
	if err != nil {
		return nil, err
	}
	contentType := d.MediaType
	if d.Charset != "" {
		contentType += ";charset=" + d.Charset
	}
	return &Response{
		URL:         rawURL,
		StatusCode:  http.StatusOK,
		Status:      "200 OK",
		ContentType: contentType,
		Body:        d.Data,
	}, nil
}

// SetCookies sets cookies for a URL.
func (c *Client) SetCookies(u *url.URL, cookies []*http.Cookie) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	c.cookieJar.SetCookies(u, cookies)
}

// Cookies returns the cookies for a URL.
func (c *Client) Cookies(u *url.URL) []*http.Cookie {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cookieJar.Cookies(u)
}

// ClearCookies replaces the cookie jar with an empty one.
func (c *Client) ClearCookies() error {
	jar, err := cookiejar.New(&cookiejar.Options{
		PublicSuffixList: publicsuffix.List,
	})
	if err != nil {
		return errors.Wrap(err, "create cookie jar")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cookieJar = jar
	c.http.HTTPClient.Jar = jar
	return nil
}

// ScriptLoader returns a function that fetches script sources, suitable for
// js.ScriptExecutor.SetScriptLoader.
func (c *Client) ScriptLoader() func(ctx context.Context, src string) (string, error) {
	return func(ctx context.Context, src string) (string, error) {
		resp, err := c.Fetch(ctx, src)
		if err != nil {
			return "", err
		}
		return string(resp.Body), nil
	}
}
