package memstore

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/hexxet/httpsession"
)

type record struct {
	payload   string
	expiresAt time.Time
}

func (rec record) expired(now time.Time) bool {
	return !rec.expiresAt.IsZero() && now.After(rec.expiresAt)
}

// Store is an in-memory session store.
type Store struct {
	*httpsession.Base

	mu      sync.RWMutex
	records map[string]record
	stop    chan struct{}
	done    chan struct{}
}

var _ httpsession.Storage = (*Store)(nil)

// New creates an empty in-memory [Store].
func New(opts ...httpsession.Option) *Store {
	return &Store{
		Base:    httpsession.NewBase(opts...),
		records: make(map[string]record),
	}
}

// Load restores the session named by the request's cookie. Missing and
// expired records both yield a fresh session; records that fail to decode
// yield an empty session keeping its key.
func (s *Store) Load(r *http.Request) (*httpsession.Session, error) {
	key, ok := s.LoadCookie(r)
	if !ok {
		s.Metrics().Inc(httpsession.MetricLoadFresh)
		return s.NewSession(), nil
	}

	start := time.Now()
	s.mu.RLock()
	rec, found := s.records[s.Key(key)]
	s.mu.RUnlock()
	s.Metrics().Observe(httpsession.MetricLoadLatency, time.Since(start))

	if !found || rec.expired(time.Now()) {
		s.Metrics().Inc(httpsession.MetricLoadMiss)
		return s.NewSession(), nil
	}

	data, err := s.DecodeData(rec.payload)
	if err != nil {
		s.Metrics().Inc(httpsession.MetricLoadCorrupt)
		return s.RestoreSession(key, nil), nil
	}

	s.Metrics().Inc(httpsession.MetricLoadHit)
	return s.RestoreSession(key, data), nil
}

// Save writes the session record and (re)issues the cookie, mirroring the
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

	var expiresAt time.Time
	if sess.MaxAge() > 0 {
		expiresAt = time.Now().Add(sess.MaxAge())
	}

	s.mu.Lock()
	s.records[s.Key(identity)] = record{payload: payload, expiresAt: expiresAt}
	s.mu.Unlock()

	return nil
}

// Len counts live records, excluding expired ones not yet evicted.
func (s *Store) Len() int {
	now := time.Now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, rec := range s.records {
		if !rec.expired(now) {
			n++
		}
	}
	return n
}

// StartCleanup begins periodic eviction of expired records. Without it,
// expired records are merely skipped on load and linger in memory. Calling
// it again while a cleanup loop runs is a no-op.
func (s *Store) StartCleanup(interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	s.mu.Lock()
	if s.stop != nil {
		s.mu.Unlock()
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stop, s.done
	s.mu.Unlock()

	go s.cleanupLoop(interval, stop, done)
}

func (s *Store) cleanupLoop(interval time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.evictExpired(time.Now())
		case <-stop:
			return
		}
	}
}

func (s *Store) evictExpired(now time.Time) {
	s.mu.Lock()
	evicted := 0
	for key, rec := range s.records {
		if rec.expired(now) {
			delete(s.records, key)
			evicted++
		}
	}
	s.mu.Unlock()

	if evicted > 0 {
		slog.Debug("memstore: evicted expired sessions", "count", evicted)
	}
}

// Close stops the cleanup loop, if one was started, and waits for it to
// exit. The store remains usable; Close only releases the goroutine.
func (s *Store) Close() error {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
	return nil
}
