package cookiestore

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/hexxet/httpsession"
)

// maxValueSize is the ceiling browsers reliably accept for one cookie,
// minus headroom for the name and attributes.
const maxValueSize = 4000

// ErrValueTooLong is returned by Save when the encoded payload exceeds the
// browser cookie budget.
var ErrValueTooLong = errors.New("cookiestore: encoded session exceeds cookie size limit")

// Store is a client-side session store: the cookie is the record.
type Store struct {
	*httpsession.Base
}

var _ httpsession.Storage = (*Store)(nil)

// New creates a cookie-backed [Store].
func New(opts ...httpsession.Option) *Store {
	return &Store{Base: httpsession.NewBase(opts...)}
}

// Load rebuilds the session from the cookie payload. No cookie, or a
// payload that fails to decode, yields a fresh session.
func (s *Store) Load(r *http.Request) (*httpsession.Session, error) {
	raw, ok := s.LoadCookie(r)
	if !ok {
		s.Metrics().Inc(httpsession.MetricLoadFresh)
		return s.NewSession(), nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		s.Metrics().Inc(httpsession.MetricLoadCorrupt)
		return s.NewSession(), nil
	}

	data, err := s.DecodeData(string(decoded))
	if err != nil {
		s.Metrics().Inc(httpsession.MetricLoadCorrupt)
		return s.NewSession(), nil
	}

	s.Metrics().Inc(httpsession.MetricLoadHit)
	return s.RestoreSession("", data), nil
}

// Save writes the session into the cookie. An emptied session clears the
// cookie instead.
func (s *Store) Save(w http.ResponseWriter, r *http.Request, sess *httpsession.Session) error {
	if sess.Empty() {
		s.SaveCookie(w, "", sess.MaxAge())
		s.Metrics().Inc(httpsession.MetricSaveClear)
		return nil
	}

	payload, err := s.EncodeData(sess)
	if err != nil {
		return err
	}

	value := base64.RawURLEncoding.EncodeToString([]byte(payload))
	if len(value) > maxValueSize {
		return ErrValueTooLong
	}

	s.SaveCookie(w, value, sess.MaxAge())
	if sess.IsNew() {
		s.Metrics().Inc(httpsession.MetricSaveNewKey)
	} else {
		s.Metrics().Inc(httpsession.MetricSaveReissue)
	}
	return nil
}
