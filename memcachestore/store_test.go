package memcachestore

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/hexxet/httpsession"
)

type fakeClient struct {
	items map[string]*memcache.Item
	err   error
}

func newFakeClient() *fakeClient {
	return &fakeClient{items: map[string]*memcache.Item{}}
}

func (c *fakeClient) Get(key string) (*memcache.Item, error) {
	if c.err != nil {
		return nil, c.err
	}
	item, ok := c.items[key]
	if !ok {
		return nil, memcache.ErrCacheMiss
	}
	return item, nil
}

func (c *fakeClient) Set(item *memcache.Item) error {
	if c.err != nil {
		return c.err
	}
	c.items[item.Key] = item
	return nil
}

func newTestStore(t *testing.T, opts ...httpsession.Option) (*Store, *fakeClient) {
	t.Helper()

	client := newFakeClient()
	store, err := New(client, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return store, client
}

func requestWithCookie(value string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: httpsession.DefaultCookieName, Value: value})
	return r
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == httpsession.DefaultCookieName {
			return c
		}
	}
	t.Fatalf("cookie %q not set on response", httpsession.DefaultCookieName)
	return nil
}

func TestNewNilClient(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrNilClient) {
		t.Fatalf("expected ErrNilClient, got %v", err)
	}
}

func TestLoadMissReturnsFresh(t *testing.T) {
	store, _ := newTestStore(t)

	sess, err := store.Load(requestWithCookie("gone"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !sess.IsNew() || sess.Identity() != "" {
		t.Fatalf("evicted keys must not be reused, got new=%v identity=%q",
			sess.IsNew(), sess.Identity())
	}
}

func TestRoundTrip(t *testing.T) {
	store, client := newTestStore(t)

	sess := store.NewSession()
	sess.Set("user", "alice")

	w := httptest.NewRecorder()
	if err := store.Save(w, httptest.NewRequest(http.MethodGet, "/", nil), sess); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	key := sessionCookie(t, w).Value

	if _, ok := client.items["HTTPSESSION_"+key]; !ok {
		t.Fatalf("item not written, have %v", client.items)
	}

	got, err := store.Load(requestWithCookie(key))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.IsNew() {
		t.Fatal("round-tripped session must not be new")
	}
	if v, _ := got.Get("user"); v != "alice" {
		t.Fatalf("expected user=alice, got %v", v)
	}
}

func TestLoadCorruptItemKeepsKey(t *testing.T) {
	store, client := newTestStore(t)
	client.items["HTTPSESSION_abc"] = &memcache.Item{
		Key:   "HTTPSESSION_abc",
		Value: []byte("not json"),
	}

	sess, err := store.Load(requestWithCookie("abc"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if sess.IsNew() || sess.Identity() != "abc" || !sess.Empty() {
		t.Fatalf("expected stored empty session keeping key, got new=%v identity=%q len=%d",
			sess.IsNew(), sess.Identity(), sess.Len())
	}
}

func TestLoadTransportError(t *testing.T) {
	store, client := newTestStore(t)
	client.err = errors.New("memcache: no servers configured")

	if _, err := store.Load(requestWithCookie("abc")); !errors.Is(err, ErrMemcacheUnavailable) {
		t.Fatalf("expected ErrMemcacheUnavailable, got %v", err)
	}
}

func TestSaveTransportError(t *testing.T) {
	store, client := newTestStore(t)
	client.err = errors.New("memcache: write failed")

	sess := store.NewSession()
	sess.Set("user", "alice")

	w := httptest.NewRecorder()
	if err := store.Save(w, httptest.NewRequest(http.MethodGet, "/", nil), sess); !errors.Is(err, ErrMemcacheUnavailable) {
		t.Fatalf("expected ErrMemcacheUnavailable, got %v", err)
	}
}

func TestSaveEmptiedSessionClearsCookieButWritesItem(t *testing.T) {
	store, client := newTestStore(t)
	client.items["HTTPSESSION_abc"] = &memcache.Item{
		Key:   "HTTPSESSION_abc",
		Value: []byte(`{"user":"alice"}`),
	}

	r := requestWithCookie("abc")
	sess, err := store.Load(r)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	sess.Invalidate()

	w := httptest.NewRecorder()
	if err := store.Save(w, r, sess); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if c := sessionCookie(t, w); c.Value != "" || c.MaxAge >= 0 {
		t.Fatalf("expected cleared cookie, got value=%q MaxAge=%d", c.Value, c.MaxAge)
	}
	item, ok := client.items["HTTPSESSION_abc"]
	if !ok {
		t.Fatal("item must still be written on clear")
	}
	if string(item.Value) != "{}" {
		t.Fatalf("expected empty item, got %q", item.Value)
	}
}

func TestSaveSetsExpiration(t *testing.T) {
	store, client := newTestStore(t, httpsession.WithMaxAge(time.Hour))

	sess := store.NewSession()
	sess.Set("user", "alice")

	w := httptest.NewRecorder()
	if err := store.Save(w, httptest.NewRequest(http.MethodGet, "/", nil), sess); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	key := sessionCookie(t, w).Value
	item := client.items["HTTPSESSION_"+key]
	if item.Expiration != 3600 {
		t.Fatalf("expected Expiration 3600, got %d", item.Expiration)
	}
}

func TestExpirationMapping(t *testing.T) {
	if got := expiration(0); got != 0 {
		t.Fatalf("zero max age must map to 0, got %d", got)
	}
	if got := expiration(500 * time.Millisecond); got != 1 {
		t.Fatalf("sub-second max age must round up to 1, got %d", got)
	}
	if got := expiration(time.Hour); got != 3600 {
		t.Fatalf("expected 3600, got %d", got)
	}

	long := 45 * 24 * time.Hour
	got := expiration(long)
	want := time.Now().Add(long).Unix()
	if int64(got) < want-5 || int64(got) > want+5 {
		t.Fatalf("TTLs beyond thirty days must become absolute timestamps, got %d want about %d", got, want)
	}
}
