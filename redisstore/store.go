package redisstore

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hexxet/httpsession"
)

// ErrNilClient is returned by [New] when no Redis client is supplied.
var ErrNilClient = errors.New("redisstore: nil redis client")

// ErrRedisUnavailable wraps transport-level Redis failures on Load and Save.
var ErrRedisUnavailable = errors.New("redis unavailable")

// Store is a Redis-backed session store.
//
//	Performance: 1 GET per load, 1 SET per save.
type Store struct {
	*httpsession.Base
	redis redis.UniversalClient
}

var _ httpsession.Storage = (*Store)(nil)

// New creates a [Store] on top of an existing Redis client. The client is
// borrowed: closing it stays the caller's job.
func New(client redis.UniversalClient, opts ...httpsession.Option) (*Store, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	return &Store{
		Base:  httpsession.NewBase(opts...),
		redis: client,
	}, nil
}

// Load restores the session named by the request's cookie. No cookie, or a
// cookie whose record expired or was deleted, yields a fresh session; the
// presented key is never reused. A record that exists but fails to decode
// yields an empty session that keeps its key, so the next save overwrites
// the corrupt record in place.
func (s *Store) Load(r *http.Request) (*httpsession.Session, error) {
	key, ok := s.LoadCookie(r)
	if !ok {
		s.Metrics().Inc(httpsession.MetricLoadFresh)
		return s.NewSession(), nil
	}

	start := time.Now()
	raw, err := s.redis.Get(r.Context(), s.Key(key)).Result()
	rtt := time.Since(start)
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	s.Metrics().Observe(httpsession.MetricLoadLatency, rtt)

	if errors.Is(err, redis.Nil) {
		s.Metrics().Inc(httpsession.MetricLoadMiss)
		return s.NewSession(), nil
	}

	data, err := s.DecodeData(raw)
	if err != nil {
		s.Metrics().Inc(httpsession.MetricLoadCorrupt)
		return s.RestoreSession(key, nil), nil
	}

	s.Metrics().Inc(httpsession.MetricLoadHit)
	return s.RestoreSession(key, data), nil
}

// Save writes the session record and (re)issues the cookie. Fresh sessions
// get a generated key unless one was pinned with SetNewIdentity; stored
// sessions that were emptied keep their record but have the cookie cleared.
// The record is written in every case, with the session's max age as TTL.
func (s *Store) Save(w http.ResponseWriter, r *http.Request, sess *httpsession.Session) error {
	identity := sess.Identity()

	switch {
	case identity == "":
		key, err := s.GenerateKey()
		if err != nil {
			return err
		}
		identity = key
		s.SaveCookie(w, identity, sess.MaxAge())
		s.Metrics().Inc(httpsession.MetricSaveNewKey)
	case sess.Empty():
		s.SaveCookie(w, "", sess.MaxAge())
		s.Metrics().Inc(httpsession.MetricSaveClear)
	default:
		s.SaveCookie(w, identity, sess.MaxAge())
		s.Metrics().Inc(httpsession.MetricSaveReissue)
	}

	payload, err := s.EncodeData(sess)
	if err != nil {
		return err
	}

	if err := s.redis.Set(r.Context(), s.Key(identity), payload, sess.MaxAge()).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// Close is a no-op. The Redis client is borrowed and stays open.
func (s *Store) Close() error { return nil }
