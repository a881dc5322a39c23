package session

import (
	"sync"
	"testing"
	"time"

	"github.com/hyperjump/kaiwa/internal/models"
)

func TestSession_MergeAttributes(t *testing.T) {
	s := &Session{Email: "a@b.com"}
	s.MergeAttributes("X", "")
	if s.Name != "X" {
		t.Errorf("name = %q, want X", s.Name)
	}
	if s.Email != "a@b.com" {
		t.Errorf("email = %q, want a@b.com", s.Email)
	}

	// A later extraction must not overwrite known values.
	s.MergeAttributes("Y", "other@c.com")
	if s.Name != "X" || s.Email != "a@b.com" {
		t.Errorf("attributes overwritten: %q %q", s.Name, s.Email)
	}

	// An empty extraction must not clear anything.
	s.MergeAttributes("", "")
	if s.Name != "X" || s.Email != "a@b.com" {
		t.Errorf("attributes cleared: %q %q", s.Name, s.Email)
	}
}

func TestStore_AcquireCreatesAndReuses(t *testing.T) {
	store := NewStore(0)
	defer store.Close()

	sess, release := store.Acquire("abc")
	sess.Append(models.RoleUser, "hello")
	release()

	again, release := store.Acquire("abc")
	defer release()
	if len(again.History) != 1 || again.History[0].Text != "hello" {
		t.Errorf("history = %v", again.History)
	}
	if store.Len() != 1 {
		t.Errorf("Len = %d", store.Len())
	}
}

func TestStore_MintsIDWhenMissing(t *testing.T) {
	store := NewStore(0)
	defer store.Close()

	sess, release := store.Acquire("")
	defer release()
	if sess.ID == "" {
		t.Fatal("expected minted session id")
	}
}

func TestStore_SerializesTurnsPerSession(t *testing.T) {
	store := NewStore(0)
	defer store.Close()

	const turns = 50
	var wg sync.WaitGroup
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess, release := store.Acquire("same")
			defer release()
			// Read-modify-write that would race without serialization.
			n := len(sess.History)
			sess.Append(models.RoleUser, "turn")
			if len(sess.History) != n+1 {
				t.Error("interleaved mutation")
			}
		}()
	}
	wg.Wait()

	sess, release := store.Acquire("same")
	defer release()
	if len(sess.History) != turns {
		t.Errorf("history length = %d, want %d", len(sess.History), turns)
	}
}

func TestStore_EvictsIdleSessions(t *testing.T) {
	store := NewStore(10 * time.Millisecond)
	defer store.Close()

	_, release := store.Acquire("old")
	release()

	store.mu.Lock()
	store.sessions["old"].lastActive = time.Now().Add(-time.Minute)
	store.mu.Unlock()
	store.evictIdle()

	if store.Len() != 0 {
		t.Errorf("expected eviction, Len = %d", store.Len())
	}
}

func TestStore_DoesNotEvictInFlightSession(t *testing.T) {
	store := NewStore(10 * time.Millisecond)
	defer store.Close()

	_, release := store.Acquire("busy")
	store.mu.Lock()
	store.sessions["busy"].lastActive = time.Now().Add(-time.Minute)
	store.mu.Unlock()
	store.evictIdle()
	if store.Len() != 1 {
		t.Errorf("in-flight session evicted")
	}
	release()
}
