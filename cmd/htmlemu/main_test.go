package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunPrintsAlertsAndTitle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(`<title>CLI</title>
<script>alert('one'); alert(typeof document.getElementById)</script>
<script>oops()</script>`), 0o600))

	var stdout, stderr bytes.Buffer
	code := run([]string{"-browser", "firefox", path}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Equal(t, "one\nfunction\nCLI\n", stdout.String())
	assert.Contains(t, stderr.String(), "script error:")
	assert.Contains(t, stderr.String(), "oops")
}

func TestRunUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, exitUsage, run(nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Usage: htmlemu")

	stderr.Reset()
	assert.Equal(t, exitUsage, run([]string{"-bogus"}, &stdout, &stderr))

	stderr.Reset()
	assert.Equal(t, exitUsage, run([]string{"-browser", "mosaic", "page.html"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "invalid webclient config")
	assert.Empty(t, stdout.String())
}

func TestRunLoadFailure(t *testing.T) {
	var stdout, stderr bytes.Buffer
	missing := filepath.Join(t.TempDir(), "missing.html")
	assert.Equal(t, exitLoadFailure, run([]string{missing}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Error:")
}

func TestPageURL(t *testing.T) {
	for _, raw := range []string{"http://example.com/", "file:///tmp/x.html", "data:text/html,hi"} {
		got, err := pageURL(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, got)
	}

	got, err := pageURL("/tmp/page.html")
	require.NoError(t, err)
	assert.Equal(t, "file:///tmp/page.html", got)
}
