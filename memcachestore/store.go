package memcachestore

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/hexxet/httpsession"
)

// memcached treats larger expiration values as absolute unix timestamps.
const maxRelativeExpiration = 60 * 60 * 24 * 30

// ErrNilClient is returned by [New] when no client is supplied.
var ErrNilClient = errors.New("memcachestore: nil memcache client")

// ErrMemcacheUnavailable wraps transport-level memcached failures on Load
// and Save.
var ErrMemcacheUnavailable = errors.New("memcache unavailable")

// Client is the slice of *memcache.Client the store needs.
type Client interface {
	Get(key string) (*memcache.Item, error)
	Set(item *memcache.Item) error
}

// Store is a memcached-backed session store.
type Store struct {
	*httpsession.Base
	client Client
}

var _ httpsession.Storage = (*Store)(nil)

// New creates a [Store] on top of an existing client, typically a
// *memcache.Client. The client is borrowed.
func New(client Client, opts ...httpsession.Option) (*Store, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	return &Store{
		Base:   httpsession.NewBase(opts...),
		client: client,
	}, nil
}

// Load restores the session named by the request's cookie. Cache misses,
// including evictions, yield a fresh session; items that fail to decode
// yield an empty session keeping its key.
func (s *Store) Load(r *http.Request) (*httpsession.Session, error) {
	key, ok := s.LoadCookie(r)
	if !ok {
		s.Metrics().Inc(httpsession.MetricLoadFresh)
		return s.NewSession(), nil
	}

	start := time.Now()
	item, err := s.client.Get(s.Key(key))
	rtt := time.Since(start)
	if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		return nil, fmt.Errorf("%w: %v", ErrMemcacheUnavailable, err)
	}
	s.Metrics().Observe(httpsession.MetricLoadLatency, rtt)

	if errors.Is(err, memcache.ErrCacheMiss) {
		s.Metrics().Inc(httpsession.MetricLoadMiss)
		return s.NewSession(), nil
	}

	data, err := s.DecodeData(string(item.Value))
	if err != nil {
		s.Metrics().Inc(httpsession.MetricLoadCorrupt)
		return s.RestoreSession(key, nil), nil
	}

	s.Metrics().Inc(httpsession.MetricLoadHit)
	return s.RestoreSession(key, data), nil
}

// Save writes the session item and (re)issues the cookie, mirroring the
// Redis backend's contract.
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

	item := &memcache.Item{
		Key:        s.Key(identity),
		Value:      []byte(payload),
		Expiration: expiration(sess.MaxAge()),
	}
	if err := s.client.Set(item); err != nil {
		return fmt.Errorf("%w: %v", ErrMemcacheUnavailable, err)
	}

	return nil
}

// Close is a no-op. The memcache client is borrowed and stays open.
func (s *Store) Close() error { return nil }

func expiration(maxAge time.Duration) int32 {
	if maxAge <= 0 {
		return 0
	}
	secs := int64(maxAge / time.Second)
	if secs == 0 {
		secs = 1
	}
	if secs > maxRelativeExpiration {
		return int32(time.Now().Add(maxAge).Unix())
	}
	return int32(secs)
}
