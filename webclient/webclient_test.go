package webclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, browserName string) *WebClient {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Browser = browserName
	cfg.RetryMax = 0
	c, err := New(cfg)
	require.NoError(t, err)
	return c
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty browser", func(c *Config) { c.Browser = "" }},
		{"negative budget", func(c *Config) { c.JSTimeBudget = -time.Second }},
		{"zero timeout", func(c *Config) { c.HTTPTimeout = 0 }},
		{"negative retries", func(c *Config) { c.RetryMax = -1 }},
		{"negative body limit", func(c *Config) { c.MaxBodySize = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			assert.True(t, errors.Is(err, ErrInvalidConfig), "Validate() = %v", err)
			_, err = New(cfg)
			assert.True(t, errors.Is(err, ErrInvalidConfig), "New() = %v", err)
		})
	}
}

func TestNewUnknownBrowser(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Browser = "netscape"
	_, err := New(cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.Contains(t, err.Error(), "firefox-esr")
}

func TestNewSelectsProfile(t *testing.T) {
	c := newClient(t, "Firefox")
	assert.Equal(t, "firefox", c.Profile().Name)

	page, err := c.LoadHTML(context.Background(), `<script>alert(navigator.userAgent.indexOf('Firefox/') > 0)</script>`, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"true"}, page.Alerts())
}

func TestProfilesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[profile.chrome-old]
base = "chrome"
user_agent = "OldChrome/1.0"

[profile.chrome-old.quirks]
dialog_request_close = false
`), 0o600))

	cfg := DefaultConfig()
	cfg.Browser = "chrome-old"
	cfg.ProfilesFile = path
	c, err := New(cfg)
	require.NoError(t, err)

	page, err := c.LoadHTML(context.Background(), `<dialog id="d"></dialog><script>
		alert(typeof document.getElementById('d').requestClose);
		alert(navigator.userAgent);
	</script>`, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"undefined", "OldChrome/1.0"}, page.Alerts())

	cfg.ProfilesFile = filepath.Join(t.TempDir(), "missing.toml")
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestLoadHTML(t *testing.T) {
	c := newClient(t, "chrome")
	page, err := c.LoadHTML(context.Background(), `<!DOCTYPE html>
<html><head><title>Start</title></head>
<body onload="document.title = document.title + ' loaded'">
<script>alert(location.href); broken(</script>
<script>alert('still running')</script>
</body></html>`, "http://example.com/index.html")
	require.NoError(t, err)

	assert.Equal(t, "Start loaded", page.Title())
	assert.Equal(t, "http://example.com/index.html", page.URL())
	assert.Equal(t, []string{"still running"}, page.Alerts())
	require.Len(t, page.Errors(), 1)
	assert.Contains(t, page.Errors()[0].Error(), "SyntaxError")
	assert.Equal(t, "HTML", page.Document().DocumentElement().TagName())
}

func TestEvaluate(t *testing.T) {
	c := newClient(t, "chrome")
	page, err := c.LoadHTML(context.Background(), `<div id="x">text</div>`, "")
	require.NoError(t, err)

	tests := []struct {
		code string
		want string
	}{
		{"document.getElementById('x').textContent", "text"},
		{"1 + 1", "2"},
		{"undefined", "undefined"},
		{"null", "null"},
		{"[1, 2]", "1,2"},
		{"({})", "[object Object]"},
	}
	for _, tt := range tests {
		got, err := page.Evaluate(tt.code)
		require.NoError(t, err, tt.code)
		assert.Equal(t, tt.want, got, tt.code)
	}

	_, err = page.Evaluate("nope()")
	assert.Error(t, err)

	_, err = page.Evaluate("Promise.resolve().then(function() { alert('micro'); })")
	require.NoError(t, err)
	assert.Equal(t, []string{"micro"}, page.Alerts())
}

func TestRunJobs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.JSTimeBudget = 100 * time.Millisecond
	c, err := New(cfg)
	require.NoError(t, err)

	page, err := c.LoadHTML(context.Background(), `<script>
		setTimeout(function() { alert('early'); }, 50);
		setTimeout(function() { alert('late'); }, 1000);
	</script>`, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"early"}, page.Alerts())

	assert.Equal(t, 1, page.RunJobs(time.Second))
	assert.Equal(t, []string{"early", "late"}, page.Alerts())
	assert.Equal(t, 0, page.RunJobs(time.Second))
}

func TestLoadHTMLCanceled(t *testing.T) {
	c := newClient(t, "chrome")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.LoadHTML(ctx, `<script>alert(1)</script>`, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestLoadHTMLDeadlineStopsRunawayScript(t *testing.T) {
	c := newClient(t, "chrome")
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := c.LoadHTML(ctx, `<script>while (true) {}</script>`, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "LoadHTML() = %v", err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestGetPage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/app/index.html", http.StatusFound)
	})
	mux.HandleFunc("/app/index.html", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "seen", Value: "1", Path: "/"})
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><head><title>Remote</title><script src="main.js"></script></head>
<body><script>alert(window.fromScript + ' ' + document.URL.slice(-15))</script></body></html>`))
	})
	mux.HandleFunc("/app/main.js", func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("seen"); err != nil {
			http.Error(w, "no cookie", http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "text/javascript")
		w.Write([]byte(`var fromScript = 'external';`))
	})
	mux.HandleFunc("/image.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte{0x89, 'P', 'N', 'G'})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := newClient(t, "edge")
	page, err := c.GetPage(context.Background(), server.URL+"/start")
	require.NoError(t, err)
	assert.Equal(t, "Remote", page.Title())
	assert.Equal(t, server.URL+"/app/index.html", page.URL())
	assert.Equal(t, []string{"external /app/index.html"}, page.Alerts())
	assert.Empty(t, page.Errors())

	_, err = c.GetPage(context.Background(), server.URL+"/missing")
	assert.Error(t, err)
	_, err = c.GetPage(context.Background(), server.URL+"/image.png")
	assert.Error(t, err)
}

func TestGetPageFromFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"),
		[]byte(`<title>Local</title><script src="lib.js"></script><script>alert(lib())</script>`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib.js"),
		[]byte(`function lib() { return 'from file'; }`), 0o600))

	c := newClient(t, "chrome")
	page, err := c.GetPage(context.Background(), "file://"+filepath.ToSlash(filepath.Join(dir, "index.html")))
	require.NoError(t, err)
	assert.Equal(t, "Local", page.Title())
	assert.Equal(t, []string{"from file"}, page.Alerts())
}

func TestPageClose(t *testing.T) {
	c := newClient(t, "chrome")
	page, err := c.LoadHTML(context.Background(), `<script>setTimeout(function() { alert('x'); }, 60000);</script>`, "")
	require.NoError(t, err)
	page.Close()
	assert.Equal(t, 0, page.RunJobs(time.Hour))
	assert.Empty(t, page.Alerts())
}
