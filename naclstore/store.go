package naclstore

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/crypto/nacl/secretbox"

	"github.com/hexxet/httpsession"
)

// KeySize is the required secret key length in bytes.
const KeySize = 32

const nonceSize = 24

// ErrKeySize is returned by [New] when the key is not exactly [KeySize]
// bytes.
var ErrKeySize = errors.New("naclstore: key must be exactly 32 bytes")

// Store is a client-side session store whose cookie payload is sealed with
// NaCl secretbox.
type Store struct {
	*httpsession.Base
	key [KeySize]byte
}

var _ httpsession.Storage = (*Store)(nil)

// New creates a sealed cookie [Store]. The key must be 32 bytes of
// uniformly random material; rotating it invalidates every live session.
func New(key []byte, opts ...httpsession.Option) (*Store, error) {
	if len(key) != KeySize {
		return nil, ErrKeySize
	}

	s := &Store{Base: httpsession.NewBase(opts...)}
	copy(s.key[:], key)
	return s, nil
}

// Load rebuilds the session from the sealed cookie. No cookie, or a box
// that fails to open, yields a fresh session.
func (s *Store) Load(r *http.Request) (*httpsession.Session, error) {
	raw, ok := s.LoadCookie(r)
	if !ok {
		s.Metrics().Inc(httpsession.MetricLoadFresh)
		return s.NewSession(), nil
	}

	payload, ok := s.open(raw)
	if !ok {
		s.Metrics().Inc(httpsession.MetricLoadCorrupt)
		return s.NewSession(), nil
	}

	data, err := s.DecodeData(payload)
	if err != nil {
		s.Metrics().Inc(httpsession.MetricLoadCorrupt)
		return s.NewSession(), nil
	}

	s.Metrics().Inc(httpsession.MetricLoadHit)
	return s.RestoreSession("", data), nil
}

// Save seals the session into the cookie. An emptied session clears the
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

	value, err := s.seal(payload)
	if err != nil {
		return err
	}

	s.SaveCookie(w, value, sess.MaxAge())
	if sess.IsNew() {
		s.Metrics().Inc(httpsession.MetricSaveNewKey)
	} else {
		s.Metrics().Inc(httpsession.MetricSaveReissue)
	}
	return nil
}

func (s *Store) seal(payload string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("naclstore: generate nonce: %w", err)
	}

	box := secretbox.Seal(nonce[:], []byte(payload), &nonce, &s.key)
	return base64.RawURLEncoding.EncodeToString(box), nil
}

func (s *Store) open(value string) (string, bool) {
	box, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil || len(box) < nonceSize+secretbox.Overhead {
		return "", false
	}

	var nonce [nonceSize]byte
	copy(nonce[:], box[:nonceSize])

	payload, ok := secretbox.Open(nil, box[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", false
	}
	return string(payload), true
}
