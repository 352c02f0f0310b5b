package httpsession

import "errors"

// ErrNotInstalled is returned by Get and New when the request did not pass
// through the session middleware.
var ErrNotInstalled = errors.New("session middleware not installed")

// ErrNilStorage is returned when the middleware was installed with a nil Storage.
var ErrNilStorage = errors.New("nil session storage")

// ErrSessionNotNew is returned by SetNewIdentity for sessions restored from a
// store record. A restored session keeps the key its cookie presented.
var ErrSessionNotNew = errors.New("cannot change identity of a stored session")
