package httpsession

import (
	"net/http"
	"time"
)

const (
	// DefaultCookieName is the session cookie name (and store key prefix)
	// used when WithCookieName is not given.
	DefaultCookieName = "HTTPSESSION"

	// DefaultCookiePath is the cookie path used when WithPath is not given.
	DefaultCookiePath = "/"
)

type config struct {
	cookieName string
	domain     string
	path       string
	maxAge     time.Duration
	secure     bool
	httpOnly   bool
	sameSite   http.SameSite
	keyFactory KeyFactory
	encode     EncodeFunc
	decode     DecodeFunc
	metrics    *Metrics
}

func defaultConfig() config {
	return config{
		cookieName: DefaultCookieName,
		path:       DefaultCookiePath,
		httpOnly:   true,
		sameSite:   http.SameSiteLaxMode,
		keyFactory: HexKeyFactory,
		encode:     EncodeJSON,
		decode:     DecodeJSON,
	}
}

// Option configures the cookie contract shared by all storage backends.
// Options are applied once, by the backend constructor.
type Option func(*config)

// WithCookieName sets the session cookie name. The name doubles as the store
// key prefix: records live at "{name}_{identity}". Empty names are ignored.
func WithCookieName(name string) Option {
	return func(c *config) {
		if name != "" {
			c.cookieName = name
		}
	}
}

// WithDomain sets the cookie Domain attribute.
func WithDomain(domain string) Option {
	return func(c *config) { c.domain = domain }
}

// WithPath sets the cookie Path attribute. Empty paths are ignored.
func WithPath(path string) Option {
	return func(c *config) {
		if path != "" {
			c.path = path
		}
	}
}

// WithMaxAge sets the default TTL applied to both the cookie and the store
// record. Zero (the default) means no expiry: a browser session cookie and a
// record that never expires. Negative values normalize to zero.
func WithMaxAge(d time.Duration) Option {
	return func(c *config) {
		if d < 0 {
			d = 0
		}
		c.maxAge = d
	}
}

// WithSecure sets the cookie Secure attribute. Defaults to false.
func WithSecure(secure bool) Option {
	return func(c *config) { c.secure = secure }
}

// WithHTTPOnly sets the cookie HttpOnly attribute. Defaults to true.
func WithHTTPOnly(httpOnly bool) Option {
	return func(c *config) { c.httpOnly = httpOnly }
}

// WithSameSite sets the cookie SameSite attribute. Defaults to Lax.
func WithSameSite(mode http.SameSite) Option {
	return func(c *config) { c.sameSite = mode }
}

// WithKeyFactory replaces the identity generator used for fresh sessions.
// Nil factories are ignored.
func WithKeyFactory(f KeyFactory) Option {
	return func(c *config) {
		if f != nil {
			c.keyFactory = f
		}
	}
}

// WithEncoder replaces the serializer's encode half. Nil funcs are ignored.
func WithEncoder(f EncodeFunc) Option {
	return func(c *config) {
		if f != nil {
			c.encode = f
		}
	}
}

// WithDecoder replaces the serializer's decode half. Nil funcs are ignored.
func WithDecoder(f DecodeFunc) Option {
	return func(c *config) {
		if f != nil {
			c.decode = f
		}
	}
}

// WithMetrics attaches a collector. Backends record load and save outcomes
// on it; nil (the default) disables recording.
func WithMetrics(m *Metrics) Option {
	return func(c *config) { c.metrics = m }
}
