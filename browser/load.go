package browser

import (
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// LoadProfiles reads profile definitions from r into a registry that also
// holds the built-in profiles. Fields not present in a table are inherited
// from its base profile (Chrome when no base is set):
//
//	[profile.chrome-old]
//	base = "chrome"
//	user_agent = "..."
//	[profile.chrome-old.quirks]
//	dialog_request_close = false
func LoadProfiles(r io.Reader) (*Registry, error) {
	var file profileFile
	md, err := toml.NewDecoder(r).Decode(&file)
	if err != nil {
		return nil, errors.Wrap(err, "decode profiles")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.Errorf("decode profiles: unknown keys %s", strings.Join(keys, ", "))
	}

	reg := NewRegistry()
	// Base profiles resolve against built-ins only so the result does not
	// depend on map iteration order.
	builtins := NewRegistry()
	for name, table := range file.Profile {
		baseName := "chrome"
		if table.Base != "" {
			baseName = table.Base
		}
		p, err := builtins.Lookup(baseName)
		if err != nil {
			return nil, errors.Wrapf(err, "profile %q base", name)
		}
		p.Name = strings.ToLower(name)
		if err := table.apply(p); err != nil {
			return nil, errors.Wrapf(err, "profile %q", name)
		}
		reg.Register(p)
	}
	return reg, nil
}

// LoadProfilesFile reads profile definitions from a TOML file.
func LoadProfilesFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open profiles")
	}
	defer f.Close()
	return LoadProfiles(f)
}

type profileFile struct {
	Profile map[string]profileTable `toml:"profile"`
}

// profileTable holds one [profile.X] table. Nil fields are inherited from
// the base profile.
type profileTable struct {
	Base      string      `toml:"base"`
	UserAgent *string     `toml:"user_agent"`
	Vendor    *string     `toml:"vendor"`
	Platform  *string     `toml:"platform"`
	Quirks    quirksTable `toml:"quirks"`
}

type quirksTable struct {
	DialogShowThrowsWhenModal *bool `toml:"dialog_show_throws_when_modal"`
	DialogRequestClose        *bool `toml:"dialog_request_close"`
	OptionsMaxLength          *int  `toml:"options_max_length"`
	AlertUndefinedWhenEmpty   *bool `toml:"alert_undefined_when_empty"`
}

func (t profileTable) apply(p *Profile) error {
	if t.UserAgent != nil {
		p.UserAgent = *t.UserAgent
	}
	if t.Vendor != nil {
		p.Vendor = *t.Vendor
	}
	if t.Platform != nil {
		p.Platform = *t.Platform
	}

	q := t.Quirks
	if q.DialogShowThrowsWhenModal != nil {
		p.Quirks.DialogShowThrowsWhenModal = *q.DialogShowThrowsWhenModal
	}
	if q.DialogRequestClose != nil {
		p.Quirks.DialogRequestClose = *q.DialogRequestClose
	}
	if q.AlertUndefinedWhenEmpty != nil {
		p.Quirks.AlertUndefinedWhenEmpty = *q.AlertUndefinedWhenEmpty
	}
	if q.OptionsMaxLength != nil {
		if *q.OptionsMaxLength < 0 {
			return errors.Errorf("quirks.options_max_length: must not be negative, got %d", *q.OptionsMaxLength)
		}
		p.Quirks.OptionsMaxLength = *q.OptionsMaxLength
	}
	return nil
}
