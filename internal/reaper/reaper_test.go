package reaper

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu      sync.Mutex
	expiry  map[string]time.Time
	sweeps  int
	failErr error
}

func newMemStore() *memStore {
	return &memStore{expiry: make(map[string]time.Time)}
}

func (s *memStore) add(token string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expiry[token] = expiresAt
}

func (s *memStore) DeleteExpiredBefore(instant time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweeps++
	if s.failErr != nil {
		return 0, s.failErr
	}
	var deleted int64
	for token, expiresAt := range s.expiry {
		if expiresAt.Before(instant) {
			delete(s.expiry, token)
			deleted++
		}
	}
	return deleted, nil
}

func (s *memStore) remaining() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var tokens []string
	for token := range s.expiry {
		tokens = append(tokens, token)
	}
	return tokens
}

func (s *memStore) sweepCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweeps
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSweep_RemovesOnlyExpired(t *testing.T) {
	store := newMemStore()
	now := time.Now()
	store.add("dead-1", now.Add(-time.Hour))
	store.add("dead-2", now.Add(-time.Minute))
	store.add("live-1", now.Add(time.Hour))
	store.add("live-2", now.Add(24*time.Hour))

	New(store, time.Hour, discardLogger()).Sweep()

	remaining := store.remaining()
	assert.ElementsMatch(t, []string{"live-1", "live-2"}, remaining)
}

func TestSweep_ErrorDoesNotPropagate(t *testing.T) {
	store := newMemStore()
	store.failErr = errors.New("db down")

	// Must not panic; the failure stays inside the reaper.
	New(store, time.Hour, discardLogger()).Sweep()
	assert.Equal(t, 1, store.sweepCount())
}

func TestRun_SweepsUntilCancelled(t *testing.T) {
	store := newMemStore()
	store.add("dead", time.Now().Add(-time.Hour))

	r := New(store, 5*time.Millisecond, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return store.sweepCount() >= 2
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop after cancellation")
	}

	assert.Empty(t, store.remaining())
}
