package webclient

import (
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ErrInvalidConfig is returned by Validate and New for unusable settings.
var ErrInvalidConfig = errors.New("invalid webclient config")

// Config configures a WebClient.
type Config struct {
	// Browser names the emulated browser profile.
	Browser string

	// ProfilesFile is an optional TOML file that adds or overrides
	// browser profiles.
	ProfilesFile string

	// JSTimeBudget bounds the virtual time timers may advance after the
	// load event.
	JSTimeBudget time.Duration

	// HTTPTimeout is the per-attempt timeout of page and script requests.
	HTTPTimeout time.Duration

	// RetryMax is how many times a failed request is retried.
	RetryMax int

	// MaxBodySize limits the size of fetched pages and scripts. Zero
	// disables the limit.
	MaxBodySize int64

	// UserAgent overrides the profile's user agent on HTTP requests.
	UserAgent string

	Logger zerolog.Logger
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Browser:      "chrome",
		JSTimeBudget: 5 * time.Second,
		HTTPTimeout:  30 * time.Second,
		RetryMax:     2,
		MaxBodySize:  10 << 20,
		Logger:       zerolog.Nop(),
	}
}

// Validate reports the first unusable setting.
func (c Config) Validate() error {
	switch {
	case c.Browser == "":
		return errors.Wrap(ErrInvalidConfig, "browser is empty")
	case c.JSTimeBudget < 0:
		return errors.Wrapf(ErrInvalidConfig, "negative JS time budget %v", c.JSTimeBudget)
	case c.HTTPTimeout <= 0:
		return errors.Wrapf(ErrInvalidConfig, "HTTP timeout must be positive, got %v", c.HTTPTimeout)
	case c.RetryMax < 0:
		return errors.Wrapf(ErrInvalidConfig, "negative retry count %d", c.RetryMax)
	case c.MaxBodySize < 0:
		return errors.Wrapf(ErrInvalidConfig, "negative body size limit %d", c.MaxBodySize)
	}
	return nil
}
