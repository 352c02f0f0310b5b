package httpsession

import (
	"sort"
	"time"
)

// Session is the per-request mutable key-value payload round-tripped through
// a cookie-identified store record.
//
// A Session is constructed fresh on every load and discarded after save;
// instances are never cached across requests. Methods are not safe for
// concurrent use: a session belongs to exactly one request.
type Session struct {
	identity string
	data     map[string]any
	maxAge   time.Duration
	isNew    bool
	changed  bool
}

// NewSession returns a fresh session with no identity and no data.
func NewSession(maxAge time.Duration) *Session {
	return &Session{
		data:   make(map[string]any),
		maxAge: maxAge,
		isNew:  true,
	}
}

// RestoreSession returns a session rebuilt from a store record. identity is
// the cookie-carried key the record was found under. data may be nil when
// the record payload was corrupt; the identity survives, the data does not.
func RestoreSession(identity string, data map[string]any, maxAge time.Duration) *Session {
	s := &Session{
		identity: identity,
		data:     make(map[string]any, len(data)),
		maxAge:   maxAge,
	}
	for k, v := range data {
		s.data[k] = v
	}
	return s
}

// Identity returns the opaque store key, or "" for a session with no prior
// record.
func (s *Session) Identity() string { return s.identity }

// IsNew reports whether no valid prior session was found on load.
func (s *Session) IsNew() bool { return s.isNew }

// Empty reports whether the session carries no data, regardless of freshness.
func (s *Session) Empty() bool { return len(s.data) == 0 }

// Len returns the number of entries.
func (s *Session) Len() int { return len(s.data) }

// Changed reports whether the session was mutated since construction. The
// middleware saves only changed sessions.
func (s *Session) Changed() bool { return s.changed }

// MaxAge returns the TTL applied to both the cookie and the store record.
// Zero means no expiry.
func (s *Session) MaxAge() time.Duration { return s.maxAge }

// SetMaxAge overrides the TTL for this session only.
func (s *Session) SetMaxAge(d time.Duration) {
	if d < 0 {
		d = 0
	}
	s.maxAge = d
	s.changed = true
}

// Get returns the value stored under key.
func (s *Session) Get(key string) (any, bool) {
	v, ok := s.data[key]
	return v, ok
}

// Set stores value under key and marks the session changed.
func (s *Session) Set(key string, value any) {
	s.data[key] = value
	s.changed = true
}

// Delete removes key. Deleting an absent key is a no-op and does not mark
// the session changed.
func (s *Session) Delete(key string) {
	if _, ok := s.data[key]; !ok {
		return
	}
	delete(s.data, key)
	s.changed = true
}

// Clear removes every entry and marks the session changed.
func (s *Session) Clear() {
	s.data = make(map[string]any)
	s.changed = true
}

// Invalidate empties the session so the next save clears the cookie (for
// stored sessions) and rewrites the record empty.
func (s *Session) Invalidate() {
	s.Clear()
}

// SetNewIdentity pins the key a fresh session will be stored under,
// replacing the key-factory choice at save time. An empty identity reverts
// to the key factory. Restored sessions keep the key their cookie presented
// and return ErrSessionNotNew.
func (s *Session) SetNewIdentity(identity string) error {
	if !s.isNew {
		return ErrSessionNotNew
	}
	s.identity = identity
	return nil
}

// Data returns a copy of the underlying mapping, suitable for encoding.
func (s *Session) Data() map[string]any {
	out := make(map[string]any, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}

// Keys returns the entry keys in sorted order.
func (s *Session) Keys() []string {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
