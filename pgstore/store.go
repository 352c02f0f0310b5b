package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hexxet/httpsession"
)

// ErrNilDB is returned by [New] when no database handle is supplied.
var ErrNilDB = errors.New("pgstore: nil database handle")

// ErrDatabaseUnavailable wraps driver-level failures on Load and Save.
var ErrDatabaseUnavailable = errors.New("database unavailable")

const (
	loadQuery = `SELECT data FROM sessions WHERE key = $1 AND (expires_at IS NULL OR expires_at > NOW())`

	saveQuery = `INSERT INTO sessions (key, data, expires_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, expires_at = EXCLUDED.expires_at`

	cleanupQuery = `DELETE FROM sessions WHERE expires_at IS NOT NULL AND expires_at <= NOW()`
)

// Store is a PostgreSQL-backed session store.
type Store struct {
	*httpsession.Base
	db     *sql.DB
	cancel context.CancelFunc
	done   chan struct{}
}

var _ httpsession.Storage = (*Store)(nil)

// New creates a [Store] on top of an existing database handle. The handle
// is borrowed: closing it stays the caller's job.
func New(db *sql.DB, opts ...httpsession.Option) (*Store, error) {
	if db == nil {
		return nil, ErrNilDB
	}
	return &Store{
		Base: httpsession.NewBase(opts...),
		db:   db,
	}, nil
}

// Load restores the session named by the request's cookie. Missing rows and
// rows past their expires_at both yield a fresh session; rows that fail to
// decode yield an empty session keeping its key.
func (s *Store) Load(r *http.Request) (*httpsession.Session, error) {
	key, ok := s.LoadCookie(r)
	if !ok {
		s.Metrics().Inc(httpsession.MetricLoadFresh)
		return s.NewSession(), nil
	}

	start := time.Now()
	var raw string
	err := s.db.QueryRowContext(r.Context(), loadQuery, s.Key(key)).Scan(&raw)
	rtt := time.Since(start)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseUnavailable, err)
	}
	s.Metrics().Observe(httpsession.MetricLoadLatency, rtt)

	if errors.Is(err, sql.ErrNoRows) {
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

// Save upserts the session row and (re)issues the cookie, mirroring the
// Redis backend's contract. A zero max age stores with NULL expires_at.
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

	var expires sql.NullTime
	if sess.MaxAge() > 0 {
		expires = sql.NullTime{Time: time.Now().Add(sess.MaxAge()), Valid: true}
	}

	if _, err := s.db.ExecContext(r.Context(), saveQuery, s.Key(identity), payload, expires); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseUnavailable, err)
	}

	return nil
}

// Cleanup removes expired rows.
func (s *Store) Cleanup(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, cleanupQuery); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseUnavailable, err)
	}
	return nil
}

// StartCleanup starts a background goroutine that periodically removes
// expired rows. The goroutine is stopped by [Store.Close].
func (s *Store) StartCleanup(interval time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.Cleanup(ctx); err != nil {
					slog.Warn("pgstore: session cleanup failed", "error", err)
				}
			}
		}
	}()
}

// Close stops the cleanup goroutine and waits for it to exit. It is safe to
// call Close even if StartCleanup was never called. The database handle
// stays open.
func (s *Store) Close() error {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
	return nil
}
