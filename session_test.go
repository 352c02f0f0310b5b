package httpsession

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestNewSessionFresh(t *testing.T) {
	s := NewSession(time.Hour)

	if !s.IsNew() {
		t.Fatal("expected fresh session to be new")
	}
	if s.Identity() != "" {
		t.Fatalf("expected empty identity, got %q", s.Identity())
	}
	if !s.Empty() || s.Len() != 0 {
		t.Fatal("expected fresh session to be empty")
	}
	if s.Changed() {
		t.Fatal("fresh session must not count as changed")
	}
	if s.MaxAge() != time.Hour {
		t.Fatalf("expected max age 1h, got %v", s.MaxAge())
	}
}

func TestSessionSetGetDelete(t *testing.T) {
	s := NewSession(0)

	s.Set("user", "alice")
	if !s.Changed() {
		t.Fatal("Set must mark the session changed")
	}
	v, ok := s.Get("user")
	if !ok || v != "alice" {
		t.Fatalf("expected alice, got %v (ok=%v)", v, ok)
	}

	s.Delete("user")
	if _, ok := s.Get("user"); ok {
		t.Fatal("expected user to be deleted")
	}
}

func TestSessionDeleteAbsentKeyNoChange(t *testing.T) {
	s := NewSession(0)
	s.Delete("missing")

	if s.Changed() {
		t.Fatal("deleting an absent key must not mark the session changed")
	}
}

func TestSessionClearEmptiesData(t *testing.T) {
	s := NewSession(0)
	s.Set("a", 1)
	s.Set("b", 2)

	s.Clear()
	if !s.Empty() {
		t.Fatalf("expected empty session after Clear, got %d entries", s.Len())
	}
	if !s.Changed() {
		t.Fatal("Clear must mark the session changed")
	}
}

func TestSessionInvalidateEmptiesData(t *testing.T) {
	s := RestoreSession("k1", map[string]any{"user": "alice"}, time.Hour)

	s.Invalidate()
	if !s.Empty() {
		t.Fatal("expected empty session after Invalidate")
	}
	if !s.Changed() {
		t.Fatal("Invalidate must mark the session changed")
	}
	if s.Identity() != "k1" {
		t.Fatalf("identity must survive Invalidate, got %q", s.Identity())
	}
}

func TestRestoreSessionCopiesData(t *testing.T) {
	src := map[string]any{"user": "alice"}
	s := RestoreSession("k1", src, time.Hour)

	src["user"] = "mallory"
	if v, _ := s.Get("user"); v != "alice" {
		t.Fatalf("expected restored data to be copied, got %v", v)
	}

	if s.IsNew() {
		t.Fatal("restored session must not be new")
	}
	if s.Changed() {
		t.Fatal("restored session must not count as changed")
	}
	if s.Identity() != "k1" {
		t.Fatalf("expected identity k1, got %q", s.Identity())
	}
}

func TestRestoreSessionNilData(t *testing.T) {
	s := RestoreSession("k1", nil, 0)

	if !s.Empty() {
		t.Fatal("expected empty session for nil data")
	}
	if s.Identity() != "k1" {
		t.Fatalf("expected identity k1, got %q", s.Identity())
	}
	if s.IsNew() {
		t.Fatal("restored session must not be new even with nil data")
	}

	s.Set("x", 1)
	if v, ok := s.Get("x"); !ok || v != 1 {
		t.Fatal("expected restored session with nil data to accept writes")
	}
}

func TestSetNewIdentityOnFreshSession(t *testing.T) {
	s := NewSession(0)

	if err := s.SetNewIdentity("pinned"); err != nil {
		t.Fatalf("SetNewIdentity failed: %v", err)
	}
	if s.Identity() != "pinned" {
		t.Fatalf("expected pinned identity, got %q", s.Identity())
	}

	if err := s.SetNewIdentity(""); err != nil {
		t.Fatalf("SetNewIdentity revert failed: %v", err)
	}
	if s.Identity() != "" {
		t.Fatalf("expected empty identity after revert, got %q", s.Identity())
	}
}

func TestSetNewIdentityRejectsRestoredSession(t *testing.T) {
	s := RestoreSession("k1", map[string]any{}, 0)

	if err := s.SetNewIdentity("other"); !errors.Is(err, ErrSessionNotNew) {
		t.Fatalf("expected ErrSessionNotNew, got %v", err)
	}
	if s.Identity() != "k1" {
		t.Fatalf("identity must not change, got %q", s.Identity())
	}
}

func TestSetMaxAgeNormalizesNegative(t *testing.T) {
	s := NewSession(time.Hour)

	s.SetMaxAge(-time.Minute)
	if s.MaxAge() != 0 {
		t.Fatalf("expected negative max age to normalize to 0, got %v", s.MaxAge())
	}
	if !s.Changed() {
		t.Fatal("SetMaxAge must mark the session changed")
	}
}

func TestSessionDataReturnsCopy(t *testing.T) {
	s := NewSession(0)
	s.Set("user", "alice")

	data := s.Data()
	data["user"] = "mallory"

	if v, _ := s.Get("user"); v != "alice" {
		t.Fatalf("mutating the Data copy must not affect the session, got %v", v)
	}
}

func TestSessionKeysSorted(t *testing.T) {
	s := NewSession(0)
	s.Set("zeta", 1)
	s.Set("alpha", 2)
	s.Set("mid", 3)

	want := []string{"alpha", "mid", "zeta"}
	if got := s.Keys(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
