// Package browser describes the browsers whose behaviour the engine emulates.
//
// A Profile carries the identification strings exposed through navigator
// and the set of quirk switches consulted by the dom and js packages where
// shipping browsers disagree.
package browser

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnknownProfile is returned when a profile name is not registered.
var ErrUnknownProfile = errors.New("unknown browser profile")

// Quirks are the behaviour switches that differ between browsers.
type Quirks struct {
	// DialogShowThrowsWhenModal makes show() on a modally open dialog throw
	// InvalidStateError instead of returning silently.
	DialogShowThrowsWhenModal bool `toml:"dialog_show_throws_when_modal"`

	// DialogRequestClose exposes HTMLDialogElement.prototype.requestClose.
	DialogRequestClose bool `toml:"dialog_request_close"`

	// OptionsMaxLength is the largest value accepted by the
	// HTMLOptionsCollection length setter. Larger values are ignored.
	OptionsMaxLength int `toml:"options_max_length"`

	// AlertUndefinedWhenEmpty records "undefined" for alert() called
	// without arguments.
	AlertUndefinedWhenEmpty bool `toml:"alert_undefined_when_empty"`
}

// Profile identifies an emulated browser.
type Profile struct {
	Name      string `toml:"name"`
	UserAgent string `toml:"user_agent"`
	Vendor    string `toml:"vendor"`
	Platform  string `toml:"platform"`
	Quirks    Quirks `toml:"quirks"`
}

// Clone returns a copy of p.
func (p *Profile) Clone() *Profile {
	c := *p
	return &c
}

// IsFirefox reports whether the profile identifies as Firefox.
func (p *Profile) IsFirefox() bool {
	return strings.Contains(p.UserAgent, "Firefox/")
}

const defaultOptionsMaxLength = 100000

// Chrome returns the Chrome profile.
func Chrome() *Profile {
	return &Profile{
		Name:      "chrome",
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/141.0.0.0 Safari/537.36",
		Vendor:    "Google Inc.",
		Platform:  "Win32",
		Quirks: Quirks{
			DialogShowThrowsWhenModal: true,
			DialogRequestClose:        true,
			OptionsMaxLength:          defaultOptionsMaxLength,
			AlertUndefinedWhenEmpty:   true,
		},
	}
}

// Edge returns the Edge profile.
func Edge() *Profile {
	p := Chrome()
	p.Name = "edge"
	p.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/141.0.0.0 Safari/537.36 Edg/141.0.0.0"
	return p
}

// Firefox returns the Firefox profile.
func Firefox() *Profile {
	return &Profile{
		Name:      "firefox",
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:143.0) Gecko/20100101 Firefox/143.0",
		Vendor:    "",
		Platform:  "Win32",
		Quirks: Quirks{
			DialogShowThrowsWhenModal: true,
			DialogRequestClose:        false,
			OptionsMaxLength:          defaultOptionsMaxLength,
			AlertUndefinedWhenEmpty:   true,
		},
	}
}

// FirefoxESR returns the Firefox extended support release profile.
func FirefoxESR() *Profile {
	p := Firefox()
	p.Name = "firefox-esr"
	p.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:140.0) Gecko/20100101 Firefox/140.0"
	p.Quirks.DialogShowThrowsWhenModal = false
	return p
}

// Default returns the profile used when none is configured.
func Default() *Profile {
	return Chrome()
}

// Registry maps lowercase profile names to profiles.
type Registry struct {
	profiles map[string]*Profile
}

// NewRegistry returns a registry holding the built-in profiles.
func NewRegistry() *Registry {
	r := &Registry{profiles: make(map[string]*Profile)}
	for _, p := range []*Profile{Chrome(), Edge(), Firefox(), FirefoxESR()} {
		r.profiles[p.Name] = p
	}
	return r
}

// Register adds or replaces a profile.
func (r *Registry) Register(p *Profile) {
	r.profiles[strings.ToLower(p.Name)] = p
}

// Lookup returns a copy of the named profile.
func (r *Registry) Lookup(name string) (*Profile, error) {
	p, ok := r.profiles[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownProfile, "%q", name)
	}
	return p.Clone(), nil
}

// Names returns the registered profile names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns a built-in profile by name.
func Lookup(name string) (*Profile, error) {
	return NewRegistry().Lookup(name)
}
