package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore(ttl time.Duration, max int) (*SessionStore, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	st := NewSessionStore(ttl, max)
	st.now = clock.Now
	return st, clock
}

func TestSessionStore_CreateGet(t *testing.T) {
	st, _ := newTestStore(time.Hour, 0)

	sess, err := st.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := st.Get(sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != sess {
		t.Error("Get returned a different session")
	}

	for _, id := range []string{"", "not-a-uuid", "6ba7b810-9dad-11d1-80b4-00c04fd430c8"} {
		if _, err := st.Get(id); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Get(%q) = %v, want ErrSessionNotFound", id, err)
		}
	}
}

func TestSessionStore_Expiry(t *testing.T) {
	st, clock := newTestStore(30*time.Minute, 0)

	sess, _ := st.Create()
	clock.Advance(20 * time.Minute)
	if _, err := st.Get(sess.ID); err != nil {
		t.Fatalf("Get before expiry: %v", err)
	}

	// Get refreshed the session, so another 20 minutes is still fine.
	clock.Advance(20 * time.Minute)
	if _, err := st.Get(sess.ID); err != nil {
		t.Fatalf("Get after refresh: %v", err)
	}

	clock.Advance(31 * time.Minute)
	if _, err := st.Get(sess.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get after expiry = %v, want ErrSessionNotFound", err)
	}
	if removed := st.Sweep(); removed != 1 {
		t.Errorf("Sweep() = %d, want 1", removed)
	}
	if st.Len() != 0 {
		t.Errorf("Len() = %d, want 0", st.Len())
	}
}

func TestSessionStore_MaxSessions(t *testing.T) {
	st, clock := newTestStore(time.Minute, 2)

	if _, err := st.Create(); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Create(); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Create(); !errors.Is(err, ErrTooManySessions) {
		t.Fatalf("third Create = %v, want ErrTooManySessions", err)
	}

	// Expired sessions make room.
	clock.Advance(2 * time.Minute)
	if _, err := st.Create(); err != nil {
		t.Errorf("Create after expiry: %v", err)
	}
	if st.Len() != 1 {
		t.Errorf("Len() = %d, want 1", st.Len())
	}
}

func TestSessionStore_RunJanitor(t *testing.T) {
	st, clock := newTestStore(time.Minute, 0)
	if _, err := st.Create(); err != nil {
		t.Fatal(err)
	}
	clock.Advance(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	swept := make(chan int, 4)
	done := make(chan struct{})
	go func() {
		st.RunJanitor(ctx, 10*time.Millisecond, func(n int) { swept <- n })
		close(done)
	}()

	select {
	case n := <-swept:
		if n != 0 {
			t.Errorf("remaining after sweep = %d, want 0", n)
		}
	case <-time.After(time.Second):
		t.Fatal("janitor did not sweep")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop after cancel")
	}
}
