package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/project-registry/internal/core/domain"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.ProjectEvent
	block  chan struct{}
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.ProjectEvent) error {
	if p.block != nil {
		<-p.block
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) snapshot() []domain.ProjectEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.ProjectEvent(nil), p.events...)
}

func TestDispatcher_PreservesPerProjectOrder(t *testing.T) {
	pub := &recordingPublisher{}
	d := NewDispatcher(4, pub, zerolog.Nop())
	d.Start(context.Background())

	types := []domain.ProjectEventType{domain.ProjectCreated, domain.ProjectUpdated, domain.ProjectDeleted}
	for projectID := int64(1); projectID <= 10; projectID++ {
		for _, typ := range types {
			require.True(t, d.Enqueue(domain.ProjectEvent{Type: typ, ProjectID: projectID}))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Close(ctx))

	events := pub.snapshot()
	require.Len(t, events, 30)

	seen := map[int64][]domain.ProjectEventType{}
	for _, e := range events {
		seen[e.ProjectID] = append(seen[e.ProjectID], e.Type)
	}
	for projectID, got := range seen {
		assert.Equal(t, types, got, "project %d", projectID)
	}
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	pub := &recordingPublisher{block: make(chan struct{})}
	d := NewDispatcher(1, pub, zerolog.Nop())
	d.Start(context.Background())

	// one event may be held by the blocked worker, the rest fill the buffer
	accepted := 0
	for i := 0; i < channelBuffer+2; i++ {
		if d.Enqueue(domain.ProjectEvent{Type: domain.ProjectCreated, ProjectID: 1}) {
			accepted++
		}
	}
	assert.Less(t, accepted, channelBuffer+2)
	assert.GreaterOrEqual(t, accepted, channelBuffer)

	close(pub.block)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Close(ctx))
	assert.Len(t, pub.snapshot(), accepted)
}

func TestDispatcher_EnqueueAfterClose(t *testing.T) {
	d := NewDispatcher(2, &recordingPublisher{}, zerolog.Nop())
	d.Start(context.Background())
	require.NoError(t, d.Close(context.Background()))

	assert.False(t, d.Enqueue(domain.ProjectEvent{ProjectID: 1}))
	assert.NoError(t, d.Close(context.Background()))
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(8, &recordingPublisher{}, zerolog.Nop())
	for id := int64(0); id < 100; id++ {
		idx := d.shardIndex(id)
		assert.Equal(t, idx, d.shardIndex(id))
		assert.True(t, idx >= 0 && idx < 8)
	}
}
