package jwtstore

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hexxet/httpsession"
)

// ErrNoKey is returned by [New] when the signing key is empty.
var ErrNoKey = errors.New("jwtstore: empty signing key")

type sessionClaims struct {
	Data map[string]any `json:"dat"`
	jwt.RegisteredClaims
}

// Store is a client-side session store whose cookie value is a signed JWT.
type Store struct {
	*httpsession.Base
	key    []byte
	parser *jwt.Parser
}

var _ httpsession.Storage = (*Store)(nil)

// New creates a JWT-backed [Store]. Rotating the key invalidates every live
// session.
func New(key []byte, opts ...httpsession.Option) (*Store, error) {
	if len(key) == 0 {
		return nil, ErrNoKey
	}

	return &Store{
		Base:   httpsession.NewBase(opts...),
		key:    append([]byte(nil), key...),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}, nil
}

// Load rebuilds the session from the token in the cookie. No cookie, an
// expired token, or a token that fails validation all yield a fresh
// session.
func (s *Store) Load(r *http.Request) (*httpsession.Session, error) {
	raw, ok := s.LoadCookie(r)
	if !ok {
		s.Metrics().Inc(httpsession.MetricLoadFresh)
		return s.NewSession(), nil
	}

	claims := &sessionClaims{}
	token, err := s.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	})
	if err != nil || !token.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			s.Metrics().Inc(httpsession.MetricLoadMiss)
		} else {
			s.Metrics().Inc(httpsession.MetricLoadCorrupt)
		}
		return s.NewSession(), nil
	}

	s.Metrics().Inc(httpsession.MetricLoadHit)
	return s.RestoreSession("", claims.Data), nil
}

// Save signs the session into the cookie. An emptied session clears the
// cookie instead. A positive max age becomes the token's exp claim; zero
// issues a token that never expires.
func (s *Store) Save(w http.ResponseWriter, r *http.Request, sess *httpsession.Session) error {
	if sess.Empty() {
		s.SaveCookie(w, "", sess.MaxAge())
		s.Metrics().Inc(httpsession.MetricSaveClear)
		return nil
	}

	now := time.Now()
	claims := sessionClaims{
		Data: sess.Data(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if maxAge := sess.MaxAge(); maxAge > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(maxAge))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return fmt.Errorf("jwtstore: sign session: %w", err)
	}

	s.SaveCookie(w, signed, sess.MaxAge())
	if sess.IsNew() {
		s.Metrics().Inc(httpsession.MetricSaveNewKey)
	} else {
		s.Metrics().Inc(httpsession.MetricSaveReissue)
	}
	return nil
}
