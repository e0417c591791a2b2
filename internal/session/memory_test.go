package session

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore_ExpiredSession_IsNotReturned(t *testing.T) {
	s := NewMemoryStore(time.Minute, 0)
	defer s.Stop()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	sess, err := s.Open(context.Background(), "identity-1", "a@x.com")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	now = now.Add(2 * time.Minute)

	got, err := s.Lookup(context.Background(), sess.Token)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if got != nil {
		t.Errorf("expired session returned: %+v", got)
	}
}

func TestMemoryStore_Sweep_RemovesOnlyExpired(t *testing.T) {
	s := NewMemoryStore(time.Minute, 0)
	defer s.Stop()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	if _, err := s.Open(context.Background(), "old", "old@x.com"); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	now = now.Add(45 * time.Second)
	fresh, err := s.Open(context.Background(), "fresh", "fresh@x.com")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	now = now.Add(30 * time.Second)

	if removed := s.Sweep(); removed != 1 {
		t.Errorf("Sweep removed %d, want 1", removed)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}

	got, _ := s.Lookup(context.Background(), fresh.Token)
	if got == nil {
		t.Error("fresh session should survive sweep")
	}
}

func TestMemoryStore_LookupReturnsCopy(t *testing.T) {
	s := NewMemoryStore(time.Hour, 0)
	defer s.Stop()

	sess, _ := s.Open(context.Background(), "identity-1", "a@x.com")

	got, _ := s.Lookup(context.Background(), sess.Token)
	got.DisplayName = "tampered"

	again, _ := s.Lookup(context.Background(), sess.Token)
	if again.DisplayName != "a@x.com" {
		t.Errorf("stored session was mutated through a returned pointer: %q", again.DisplayName)
	}
}

func TestMemoryStore_CleanupLoop_SweepsInBackground(t *testing.T) {
	s := NewMemoryStore(time.Millisecond, 5*time.Millisecond)
	defer s.Stop()

	if _, err := s.Open(context.Background(), "identity-1", "a@x.com"); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if s.Len() == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Error("expired session was not swept by background loop")
}

func TestMemoryStore_Stop_IsIdempotent(t *testing.T) {
	s := NewMemoryStore(time.Hour, time.Minute)
	s.Stop()
	s.Stop()
}
