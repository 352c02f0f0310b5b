package httpsession

import (
	"net/http"
	"time"
)

// Base implements the cookie half of the [Storage] contract: reading the
// identity cookie from requests, reissuing or clearing it on responses, and
// mapping identities to store keys. Storage backends embed a *Base and add
// their record I/O on top.
type Base struct {
	cfg config
}

// NewBase resolves opts against the defaults.
func NewBase(opts ...Option) *Base {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Base{cfg: cfg}
}

// CookieName returns the configured session cookie name.
func (b *Base) CookieName() string { return b.cfg.cookieName }

// MaxAge returns the configured default TTL. Zero means no expiry.
func (b *Base) MaxAge() time.Duration { return b.cfg.maxAge }

// Key maps an identity to its store key: "{cookie_name}_{identity}".
func (b *Base) Key(identity string) string {
	return b.cfg.cookieName + "_" + identity
}

// NewSession returns a fresh session carrying the configured default TTL.
func (b *Base) NewSession() *Session { return NewSession(b.cfg.maxAge) }

// RestoreSession rebuilds a session from a decoded record. Nil data restores
// an empty session that keeps its identity.
func (b *Base) RestoreSession(identity string, data map[string]any) *Session {
	return RestoreSession(identity, data, b.cfg.maxAge)
}

// GenerateKey produces a fresh identity through the configured key factory.
func (b *Base) GenerateKey() (string, error) { return b.cfg.keyFactory() }

// EncodeData serializes the session's data with the configured encoder. Nil
// data encodes as an empty structure.
func (b *Base) EncodeData(s *Session) (string, error) { return b.cfg.encode(s.Data()) }

// DecodeData parses a record payload with the configured decoder.
func (b *Base) DecodeData(raw string) (map[string]any, error) { return b.cfg.decode(raw) }

// Metrics returns the attached collector. May be nil; all collector methods
// tolerate a nil receiver.
func (b *Base) Metrics() *Metrics { return b.cfg.metrics }

// LoadCookie returns the raw session cookie value carried by r.
func (b *Base) LoadCookie(r *http.Request) (string, bool) {
	c, err := r.Cookie(b.cfg.cookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// SaveCookie sets the session cookie on w. An empty value clears the cookie
// client-side (empty-valued, already expired); any other value is (re)issued
// with the configured attributes and the given TTL. A zero TTL produces a
// browser session cookie.
func (b *Base) SaveCookie(w http.ResponseWriter, value string, maxAge time.Duration) {
	cookie := &http.Cookie{
		Name:     b.cfg.cookieName,
		Value:    value,
		Domain:   b.cfg.domain,
		Path:     b.cfg.path,
		Secure:   b.cfg.secure,
		HttpOnly: b.cfg.httpOnly,
		SameSite: b.cfg.sameSite,
	}
	if value == "" {
		cookie.MaxAge = -1
		cookie.Expires = time.Unix(1, 0)
	} else if maxAge > 0 {
		cookie.MaxAge = int(maxAge / time.Second)
		cookie.Expires = time.Now().Add(maxAge)
	}
	http.SetCookie(w, cookie)
}
