package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePurger struct {
	mu      sync.Mutex
	cutoffs []time.Time
	err     error
	called  chan struct{}
}

func (p *fakePurger) PurgeRead(_ context.Context, olderThan time.Time) (int64, error) {
	p.mu.Lock()
	p.cutoffs = append(p.cutoffs, olderThan)
	p.mu.Unlock()
	select {
	case p.called <- struct{}{}:
	default:
	}
	return 3, p.err
}

func TestSchedulerPurgesOnStart(t *testing.T) {
	purger := &fakePurger{called: make(chan struct{}, 1)}
	s := NewScheduler(purger, 30, zap.NewNop())
	now := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.Start(context.Background())

	select {
	case <-purger.called:
	case <-time.After(time.Second):
		t.Fatal("purge was not called on start")
	}
	s.Stop()

	purger.mu.Lock()
	defer purger.mu.Unlock()
	require.Len(t, purger.cutoffs, 1)
	assert.Equal(t, now.Add(-30*24*time.Hour), purger.cutoffs[0])
}

func TestSchedulerDisabled(t *testing.T) {
	purger := &fakePurger{called: make(chan struct{}, 1), err: errors.New("unused")}
	s := NewScheduler(purger, 0, zap.NewNop())

	s.Start(context.Background())
	s.Stop()

	assert.Empty(t, purger.cutoffs)
}

func TestSchedulerStopsOnContextCancel(t *testing.T) {
	purger := &fakePurger{called: make(chan struct{}, 1), err: errors.New("db down")}
	s := NewScheduler(purger, 1, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	<-purger.called
	cancel()

	select {
	case <-s.done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
	s.Stop()
}
