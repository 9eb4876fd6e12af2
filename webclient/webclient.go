// Package webclient loads HTML pages into a scripted DOM the way a
// configured browser would, and exposes what the page's scripts produced.
package webclient

import (
	"context"
	"strings"

	"github.com/chrisuehlinger/htmlemu/browser"
	"github.com/chrisuehlinger/htmlemu/dom"
	"github.com/chrisuehlinger/htmlemu/js"
	"github.com/chrisuehlinger/htmlemu/network"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// WebClient creates pages for one browser profile. Pages share the
// client's cookie jar and response cache.
type WebClient struct {
	cfg      Config
	registry *browser.Registry
	profile  *browser.Profile
	net      *network.Client
	log      zerolog.Logger
}

// New validates cfg, resolves the browser profile and builds the HTTP
// client.
func New(cfg Config) (*WebClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	registry := browser.NewRegistry()
	if cfg.ProfilesFile != "" {
		r, err := browser.LoadProfilesFile(cfg.ProfilesFile)
		if err != nil {
			return nil, errors.Wrap(err, "load browser profiles")
		}
		registry = r
	}
	profile, err := registry.Lookup(cfg.Browser)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidConfig, "%v (known: %s)", err, strings.Join(registry.Names(), ", "))
	}

	log := cfg.Logger.With().Str("browser", profile.Name).Logger()
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = profile.UserAgent
	}
	netClient, err := network.NewClient(
		network.WithTimeout(cfg.HTTPTimeout),
		network.WithUserAgent(userAgent),
		network.WithRetryMax(cfg.RetryMax),
		network.WithMaxBodySize(cfg.MaxBodySize),
		network.WithCache(network.NewCache(0)),
		network.WithLogger(log.With().Str("component", "network").Logger()),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create network client")
	}

	return &WebClient{
		cfg:      cfg,
		registry: registry,
		profile:  profile,
		net:      netClient,
		log:      log,
	}, nil
}

// Profile returns a copy of the emulated browser profile.
func (c *WebClient) Profile() *browser.Profile {
	return c.profile.Clone()
}

// Network returns the HTTP client used for pages and scripts.
func (c *WebClient) Network() *network.Client {
	return c.net
}

// LoadHTML builds a page from src as if it had been served from pageURL.
// An empty pageURL loads the page as about:blank. Script errors do not fail
// the load; they are reported by Page.Errors.
func (c *WebClient) LoadHTML(ctx context.Context, src, pageURL string) (*Page, error) {
	if pageURL == "" {
		pageURL = "about:blank"
	}
	profile := c.profile.Clone()
	log := c.log.With().Str("url", pageURL).Logger()

	doc, err := dom.ParseHTML(src, dom.WithProfile(profile), dom.WithURL(pageURL))
	if err != nil {
		return nil, errors.Wrap(err, "parse page")
	}

	runtime := js.NewRuntime(js.WithProfile(profile), js.WithLogger(log))
	executor := js.NewScriptExecutor(runtime)
	executor.SetScriptLoader(c.net.ScriptLoader())

	log.Debug().Msg("loading page")
	executor.Load(ctx, doc, c.cfg.JSTimeBudget)
	if err := ctx.Err(); err != nil {
		executor.Cleanup()
		return nil, errors.Wrap(err, "load page")
	}

	page := &Page{doc: doc, executor: executor, log: log}
	log.Debug().
		Int("alerts", len(page.Alerts())).
		Int("errors", len(page.Errors())).
		Msg("page loaded")
	return page, nil
}

// GetPage fetches rawURL and loads the response as a page. Relative script
// sources resolve against the final URL after redirects.
func (c *WebClient) GetPage(ctx context.Context, rawURL string) (*Page, error) {
	resp, err := c.net.Fetch(ctx, rawURL)
	if err != nil {
		return nil, errors.Wrap(err, "get page")
	}
	if mt := resp.MediaType(); !network.IsHTMLContentType(resp.ContentType) && mt != "text/plain" && mt != "application/octet-stream" {
		return nil, errors.Errorf("get page %s: unsupported content type %q", resp.URL, resp.ContentType)
	}
	return c.LoadHTML(ctx, string(resp.Body), resp.URL)
}
