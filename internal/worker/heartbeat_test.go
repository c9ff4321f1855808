package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource []uuid.UUID

func (s staticSource) OnlineUserIDs() []uuid.UUID { return s }

type recordingBeats struct {
	mu   sync.Mutex
	hits map[uuid.UUID]int
	fail uuid.UUID
}

func (r *recordingBeats) Heartbeat(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id == r.fail {
		return errors.New("redis down")
	}
	if r.hits == nil {
		r.hits = make(map[uuid.UUID]int)
	}
	r.hits[id]++
	return nil
}

func (r *recordingBeats) count(id uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hits[id]
}

func TestRefreshOnceSkipsFailures(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	beats := &recordingBeats{fail: b}
	p := NewPresenceRefresher(staticSource{a, b, c}, beats, time.Minute, nil)

	assert.Equal(t, 2, p.RefreshOnce(context.Background()))
	assert.Equal(t, 1, beats.count(a))
	assert.Equal(t, 0, beats.count(b))
	assert.Equal(t, 1, beats.count(c))
}

func TestRunnerStopsWithContext(t *testing.T) {
	a := uuid.New()
	beats := &recordingBeats{}
	ctx, cancel := context.WithCancel(context.Background())

	NewRunner(NewPresenceRefresher(staticSource{a}, beats, 5*time.Millisecond, nil)).Start(ctx)
	require.Eventually(t, func() bool { return beats.count(a) >= 2 }, time.Second, 5*time.Millisecond)

	cancel()
	time.Sleep(20 * time.Millisecond)
	settled := beats.count(a)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, settled, beats.count(a))
}

func TestDefaultRefresherInterval(t *testing.T) {
	p := DefaultRefresher(staticSource{}, &recordingBeats{}, 90*time.Second, nil)
	assert.Equal(t, 30*time.Second, p.interval)

	p = DefaultRefresher(staticSource{}, &recordingBeats{}, 0, nil)
	assert.Equal(t, 100*time.Second, p.interval)
}
