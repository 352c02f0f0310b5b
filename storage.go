package httpsession

import "net/http"

// Storage is the load/save contract every session backend implements.
//
// Load recovers the request's prior session or constructs a fresh one; it
// returns an error only for transport failures. A missing record yields a
// fresh session (the stale key is never reused) and a corrupt record yields
// an empty non-new session that keeps the presented key.
//
// Save always performs both halves of the write: the cookie step (issue a
// generated key for fresh sessions, clear the cookie for emptied sessions,
// re-set it otherwise) and the store write at "{cookie_name}_{key}" with the
// session's TTL.
type Storage interface {
	// NewSession returns a fresh, empty session carrying the backend's
	// configured default TTL.
	NewSession() *Session

	// Load reads the session cookie from r and recovers the matching record.
	Load(r *http.Request) (*Session, error)

	// Save persists s and (re)issues or clears the session cookie on w.
	Save(w http.ResponseWriter, r *http.Request, s *Session) error
}
