package naclstore

import (
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hexxet/httpsession"
)

func testKey(b byte) []byte {
	key := make([]byte, KeySize)
	for i := range key {
		key[i] = b
	}
	return key
}

func newTestStore(t *testing.T, opts ...httpsession.Option) *Store {
	t.Helper()
	store, err := New(testKey(0x42), opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return store
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

func TestNewRejectsBadKeySizes(t *testing.T) {
	for _, n := range []int{0, 16, 31, 33, 64} {
		if _, err := New(make([]byte, n)); !errors.Is(err, ErrKeySize) {
			t.Fatalf("key of %d bytes: expected ErrKeySize, got %v", n, err)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	store := newTestStore(t)

	sess := store.NewSession()
	sess.Set("user", "alice")

	w := httptest.NewRecorder()
	if err := store.Save(w, httptest.NewRequest(http.MethodGet, "/", nil), sess); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	value := sessionCookie(t, w).Value

	got, err := store.Load(requestWithCookie(value))
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

func TestCookieHidesPlaintext(t *testing.T) {
	store := newTestStore(t)

	sess := store.NewSession()
	sess.Set("user", "alice-plaintext-marker")

	w := httptest.NewRecorder()
	if err := store.Save(w, httptest.NewRequest(http.MethodGet, "/", nil), sess); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	value := sessionCookie(t, w).Value
	box, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		t.Fatalf("cookie value must be base64url: %v", err)
	}
	if string(box) == "" || string(box) == `{"user":"alice-plaintext-marker"}` {
		t.Fatal("payload must not appear in the clear")
	}
}

func TestTamperedBoxLoadsFresh(t *testing.T) {
	store := newTestStore(t)

	sess := store.NewSession()
	sess.Set("user", "alice")

	w := httptest.NewRecorder()
	if err := store.Save(w, httptest.NewRequest(http.MethodGet, "/", nil), sess); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	value := sessionCookie(t, w).Value

	box, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	box[len(box)-1] ^= 0xFF
	tampered := base64.RawURLEncoding.EncodeToString(box)

	got, err := store.Load(requestWithCookie(tampered))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !got.IsNew() || !got.Empty() {
		t.Fatal("tampered cookie must load fresh")
	}
}

func TestWrongKeyLoadsFresh(t *testing.T) {
	sealer := newTestStore(t)

	sess := sealer.NewSession()
	sess.Set("user", "alice")

	w := httptest.NewRecorder()
	if err := sealer.Save(w, httptest.NewRequest(http.MethodGet, "/", nil), sess); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	value := sessionCookie(t, w).Value

	opener, err := New(testKey(0x99))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	got, err := opener.Load(requestWithCookie(value))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !got.IsNew() {
		t.Fatal("a rotated key must invalidate old cookies")
	}
}

func TestTruncatedAndGarbageCookiesLoadFresh(t *testing.T) {
	store := newTestStore(t)

	for _, raw := range []string{
		"%%%not-base64%%%",
		base64.RawURLEncoding.EncodeToString([]byte("short")),
	} {
		got, err := store.Load(requestWithCookie(raw))
		if err != nil {
			t.Fatalf("Load(%q) failed: %v", raw, err)
		}
		if !got.IsNew() {
			t.Fatalf("cookie %q must load fresh", raw)
		}
	}
}

func TestSaveEmptiedSessionClearsCookie(t *testing.T) {
	store := newTestStore(t)

	sess := store.NewSession()
	sess.Set("user", "alice")
	w := httptest.NewRecorder()
	if err := store.Save(w, httptest.NewRequest(http.MethodGet, "/", nil), sess); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	value := sessionCookie(t, w).Value

	loaded, err := store.Load(requestWithCookie(value))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	loaded.Invalidate()

	w = httptest.NewRecorder()
	if err := store.Save(w, requestWithCookie(value), loaded); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if c := sessionCookie(t, w); c.Value != "" || c.MaxAge >= 0 {
		t.Fatalf("expected cleared cookie, got value=%q MaxAge=%d", c.Value, c.MaxAge)
	}
}

func TestNoncesDiffer(t *testing.T) {
	store := newTestStore(t)

	seal := func() string {
		sess := store.NewSession()
		sess.Set("user", "alice")
		w := httptest.NewRecorder()
		if err := store.Save(w, httptest.NewRequest(http.MethodGet, "/", nil), sess); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		return sessionCookie(t, w).Value
	}

	if seal() == seal() {
		t.Fatal("identical payloads must seal to different cookie values")
	}
}
