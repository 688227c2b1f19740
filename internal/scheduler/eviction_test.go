package scheduler

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-chat-be/internal/repository/memory"
	"doc-chat-be/pkg/events"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

func newTestScheduler(threshold, interval time.Duration) (*EvictionScheduler, *memory.SessionRepository, *gochannel.GoChannel) {
	repo := memory.NewSessionRepository()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	publisher := events.NewPublisher(pubSub)
	return NewEvictionScheduler(repo, publisher, threshold, interval, nopLogger{}), repo, pubSub
}

func backdate(repo *memory.SessionRepository, sessionID string, by time.Duration) {
	s := repo.GetOrCreate(sessionID)
	s.Mu.Lock()
	s.LastActivity = time.Now().Add(-by)
	s.Mu.Unlock()
}

func TestSweepRemovesOnlyIdleSessions(t *testing.T) {
	scheduler, repo, _ := newTestScheduler(2*time.Hour, 10*time.Minute)

	backdate(repo, "stale", 3*time.Hour)
	backdate(repo, "recent", 5*time.Minute)
	repo.GetOrCreate("fresh")

	scheduler.sweep(time.Now())

	_, ok := repo.Get("stale")
	assert.False(t, ok, "idle session should be removed")
	_, ok = repo.Get("recent")
	assert.True(t, ok, "session inside the threshold should survive")
	_, ok = repo.Get("fresh")
	assert.True(t, ok)
	assert.Equal(t, 2, repo.Count())
}

func TestSweepAtExactThresholdKeepsSession(t *testing.T) {
	scheduler, repo, _ := newTestScheduler(2*time.Hour, 10*time.Minute)

	now := time.Now()
	s := repo.GetOrCreate("border")
	s.Mu.Lock()
	s.LastActivity = now.Add(-2 * time.Hour)
	s.Mu.Unlock()

	scheduler.sweep(now)

	_, ok := repo.Get("border")
	assert.True(t, ok, "eviction requires idle time strictly beyond the threshold")
}

func TestSweepPublishesEvictionEvent(t *testing.T) {
	scheduler, repo, pubSub := newTestScheduler(2*time.Hour, 10*time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	messages, err := pubSub.Subscribe(ctx, events.TopicSystemEvents)
	require.NoError(t, err)

	backdate(repo, "stale", 3*time.Hour)
	scheduler.sweep(time.Now())

	select {
	case msg := <-messages:
		msg.Ack()
		var envelope events.Envelope
		require.NoError(t, json.Unmarshal(msg.Payload, &envelope))
		assert.Equal(t, events.TypeSessionEvicted, envelope.Type)
		assert.Equal(t, "stale", envelope.Data["session_id"])
		assert.NotEmpty(t, envelope.Data["idle_for"])
	case <-ctx.Done():
		t.Fatal("no eviction event published")
	}
}

func TestSweepEmptyStoreIsNoOp(t *testing.T) {
	scheduler, repo, _ := newTestScheduler(2*time.Hour, 10*time.Minute)

	scheduler.sweep(time.Now())

	assert.Equal(t, 0, repo.Count())
}

func TestRunStopsOnContextCancel(t *testing.T) {
	scheduler, _, _ := newTestScheduler(2*time.Hour, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		scheduler.Run(ctx)
		close(done)
	}()

	// Let at least one tick fire before stopping.
	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}
}

func TestSweepTicksEvictOverTime(t *testing.T) {
	scheduler, repo, _ := newTestScheduler(time.Hour, 20*time.Millisecond)

	backdate(repo, "stale", 2*time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go scheduler.Run(ctx)

	assert.Eventually(t, func() bool {
		_, ok := repo.Get("stale")
		return !ok
	}, 2*time.Second, 10*time.Millisecond, "running scheduler should evict the idle session")
}
