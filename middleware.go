package httpsession

import (
	"context"
	"log/slog"
	"net/http"
)

// Middleware returns a net/http middleware that makes storage available to
// handlers through [Get] and [New] and persists a changed session onto the
// response.
//
// net/http forbids header mutation once the response body has started, so
// the save runs immediately before the handler's first WriteHeader or Write
// (or after the handler returns, when it wrote nothing). A failed save
// suppresses the handler's response and yields a plain 500; the error is
// also logged.
func Middleware(storage Storage) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state := &requestState{storage: storage}
			r = r.WithContext(context.WithValue(r.Context(), sessionContextKey{}, state))

			sw := &saveWriter{ResponseWriter: w, req: r, state: state}
			next.ServeHTTP(sw, r)
			sw.commit()
		})
	}
}

// Get returns the request's session, loading it through the installed
// storage on first use and caching it for the rest of the request.
func Get(r *http.Request) (*Session, error) {
	state, ok := stateFromRequest(r)
	if !ok {
		return nil, ErrNotInstalled
	}
	if state.storage == nil {
		return nil, ErrNilStorage
	}
	if state.session != nil {
		return state.session, nil
	}
	sess, err := state.storage.Load(r)
	if err != nil {
		return nil, err
	}
	state.session = sess
	return sess, nil
}

// New discards whatever session the request carried and caches a fresh one.
// The old store record, if any, is left to expire; only the cookie moves to
// the new session on save.
func New(r *http.Request) (*Session, error) {
	state, ok := stateFromRequest(r)
	if !ok {
		return nil, ErrNotInstalled
	}
	if state.storage == nil {
		return nil, ErrNilStorage
	}
	sess := state.storage.NewSession()
	state.session = sess
	return sess, nil
}

// saveWriter defers the session save until the response is about to start.
type saveWriter struct {
	http.ResponseWriter
	req       *http.Request
	state     *requestState
	committed bool
	failed    bool
}

func (w *saveWriter) WriteHeader(code int) {
	w.commit()
	if w.failed {
		return
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *saveWriter) Write(p []byte) (int, error) {
	w.commit()
	if w.failed {
		return len(p), nil
	}
	return w.ResponseWriter.Write(p)
}

// Flush keeps streaming handlers working behind the wrapper.
func (w *saveWriter) Flush() {
	w.commit()
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap supports http.ResponseController.
func (w *saveWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

func (w *saveWriter) commit() {
	if w.committed {
		return
	}
	w.committed = true

	sess := w.state.session
	if sess == nil || !sess.Changed() {
		return
	}
	if err := w.state.storage.Save(w.ResponseWriter, w.req, sess); err != nil {
		slog.Error("httpsession: session save failed", "error", err)
		w.failed = true
		http.Error(w.ResponseWriter, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
