package network

import (
	"encoding/base64"
	"mime"
	"net/url"
	"path"
	"strings"

	"github.com/pkg/errors"
)

// ResolveURL resolves ref against base. An empty ref yields base; data:,
// javascript: and other absolute refs are returned unchanged.
func ResolveURL(base, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return base, nil
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", errors.Wrapf(err, "invalid reference URL %q", ref)
	}
	if refURL.IsAbs() {
		return ref, nil
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", errors.Wrapf(err, "invalid base URL %q", base)
	}
	if !baseURL.IsAbs() {
		return "", errors.Errorf("base URL %q is not absolute", base)
	}
	return baseURL.ResolveReference(refURL).String(), nil
}

// FileURL returns the file: URL of an absolute filesystem path.
func FileURL(absPath string) string {
	return (&url.URL{Scheme: "file", Path: absPath}).String()
}

// DataURL is a parsed data: URL.
type DataURL struct {
	MediaType string
	Charset   string
	Base64    bool
	Data      []byte
}

// ParseDataURL parses data:[<mediatype>][;base64],<data>.
func ParseDataURL(rawURL string) (*DataURL, error) {
	if !strings.HasPrefix(strings.ToLower(rawURL), "data:") {
		return nil, errors.Errorf("%q is not a data URL", rawURL)
	}
	content := rawURL[len("data:"):]
	comma := strings.Index(content, ",")
	if comma < 0 {
		return nil, errors.New("invalid data URL: missing comma")
	}
	metadata, data := content[:comma], content[comma+1:]

	d := &DataURL{MediaType: "text/plain", Charset: "US-ASCII"}
	for i, part := range strings.Split(metadata, ";") {
		part = strings.TrimSpace(part)
		switch {
		case i == 0 && part != "" && !strings.Contains(part, "=") && part != "base64":
			d.MediaType = strings.ToLower(part)
		case strings.EqualFold(part, "base64"):
			d.Base64 = true
		case strings.HasPrefix(strings.ToLower(part), "charset="):
			d.Charset = part[len("charset="):]
		}
	}

	if d.Base64 {
		unescaped, err := url.PathUnescape(data)
		if err != nil {
			unescaped = data
		}
		decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(unescaped))
		if err != nil {
			return nil, errors.Wrap(err, "decode base64 data URL")
		}
		d.Data = decoded
		return d, nil
	}
	decoded, err := url.PathUnescape(data)
	if err != nil {
		return nil, errors.Wrap(err, "decode data URL")
	}
	d.Data = []byte(decoded)
	return d, nil
}

// ParseContentType returns the lowercased media type and charset of a
// Content-Type header value.
func ParseContentType(contentType string) (mediaType, charset string) {
	if strings.TrimSpace(contentType) == "" {
		return "application/octet-stream", ""
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
		return mediaType, ""
	}
	return mediaType, strings.ToLower(params["charset"])
}

// IsHTMLContentType reports whether contentType denotes an HTML document.
func IsHTMLContentType(contentType string) bool {
	mediaType, _ := ParseContentType(contentType)
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

// IsJavaScriptContentType reports whether contentType denotes a script.
func IsJavaScriptContentType(contentType string) bool {
	mediaType, _ := ParseContentType(contentType)
	switch mediaType {
	case "text/javascript", "application/javascript", "application/x-javascript", "application/ecmascript":
		return true
	}
	return false
}

// GuessContentType derives a content type from a file extension.
func GuessContentType(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".html", ".htm":
		return "text/html; charset=utf-8"
	case ".js", ".mjs":
		return "text/javascript; charset=utf-8"
	case "":
		return "application/octet-stream"
	}
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}
