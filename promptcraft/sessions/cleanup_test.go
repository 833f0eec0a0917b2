package sessions

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakePurger struct {
	mu          sync.Mutex
	sessionCuts []time.Time
	linkCuts    []time.Time
	sessionErr  error
}

func (f *fakePurger) DeleteExpiredSessions(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessionCuts = append(f.sessionCuts, before)
	return 2, f.sessionErr
}

func (f *fakePurger) DeleteExpiredMagicLinks(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.linkCuts = append(f.linkCuts, before)
	return 1, nil
}

func (f *fakePurger) passes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.linkCuts)
}

func TestPurge_UsesCurrentTime(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	repo := &fakePurger{}

	svc := NewCleanupService(repo, time.Minute)
	svc.now = func() time.Time { return now }
	svc.purge(context.Background())

	assert.Equal(t, []time.Time{now}, repo.sessionCuts)
	assert.Equal(t, []time.Time{now}, repo.linkCuts)
}

func TestPurge_SessionFailureStillPurgesLinks(t *testing.T) {
	repo := &fakePurger{sessionErr: errors.New("db down")}

	NewCleanupService(repo, time.Minute).purge(context.Background())

	assert.Len(t, repo.linkCuts, 1)
}

func TestStart_StopsOnCancel(t *testing.T) {
	repo := &fakePurger{}
	svc := NewCleanupService(repo, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		svc.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return repo.passes() >= 2 }, time.Second, 5*time.Millisecond)

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup service did not stop")
	}
}
