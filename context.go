package httpsession

import "net/http"

type sessionContextKey struct{}

// requestState is the per-request slot the middleware installs. Get and New
// fill it lazily, so at most one Load happens per request.
type requestState struct {
	storage Storage
	session *Session
}

func stateFromRequest(r *http.Request) (*requestState, bool) {
	state, ok := r.Context().Value(sessionContextKey{}).(*requestState)
	return state, ok
}
