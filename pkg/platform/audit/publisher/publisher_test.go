package publisher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "zkid/pkg/domain-errors"
	audit "zkid/pkg/platform/audit"
	"zkid/pkg/platform/audit/store/memory"
)

// blockingStore holds every Append until release is closed.
type blockingStore struct {
	*memory.InMemoryStore
	release chan struct{}
	once    sync.Once
}

func (s *blockingStore) Append(ctx context.Context, e audit.Event) error {
	<-s.release
	return s.InMemoryStore.Append(ctx, e)
}

func (s *blockingStore) unblock() { s.once.Do(func() { close(s.release) }) }

type failingStore struct {
	*memory.InMemoryStore
	err error
}

func (s failingStore) Append(context.Context, audit.Event) error { return s.err }

func TestEmitInline(t *testing.T) {
	ctx := context.Background()

	t.Run("stamps missing timestamp", func(t *testing.T) {
		store := memory.NewInMemoryStore()
		before := time.Now()
		require.NoError(t, New(store).Emit(ctx, audit.Event{Subject: "alice", Action: string(audit.EventCredentialIssued)}))

		events, err := store.ListBySubject(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.False(t, events[0].Timestamp.Before(before))
	})

	t.Run("keeps caller timestamp", func(t *testing.T) {
		store := memory.NewInMemoryStore()
		at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
		require.NoError(t, New(store).Emit(ctx, audit.Event{Subject: "alice", Timestamp: at}))

		events, _ := store.ListBySubject(ctx, "alice")
		require.Len(t, events, 1)
		assert.Equal(t, at, events[0].Timestamp)
	})

	t.Run("surfaces store error", func(t *testing.T) {
		boom := errors.New("disk full")
		err := New(failingStore{memory.NewInMemoryStore(), boom}).Emit(ctx, audit.Event{Action: "x"})
		require.ErrorIs(t, err, boom)
	})
}

func TestBufferedDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := New(store, WithBuffer(8))

	for range 5 {
		require.NoError(t, pub.Emit(context.Background(), audit.Event{Subject: "alice", Action: "x"}))
	}
	pub.Close()
	pub.Close()

	events, err := store.ListBySubject(context.Background(), "alice")
	require.NoError(t, err)
	assert.Len(t, events, 5)

	err = pub.Emit(context.Background(), audit.Event{Subject: "alice"})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}

func TestBufferedFullQueueDrops(t *testing.T) {
	store := &blockingStore{InMemoryStore: memory.NewInMemoryStore(), release: make(chan struct{})}
	pub := New(store, WithBuffer(1))
	t.Cleanup(func() {
		store.unblock()
		pub.Close()
	})

	// One event is held by the worker, one fills the queue.
	require.NoError(t, pub.Emit(context.Background(), audit.Event{Subject: "a"}))
	require.Eventually(t, func() bool { return len(pub.queue) == 0 }, time.Second, time.Millisecond)
	require.NoError(t, pub.Emit(context.Background(), audit.Event{Subject: "b"}))

	err := pub.Emit(context.Background(), audit.Event{Subject: "c"})
	require.Error(t, err)
	assert.Equal(t, uint64(1), pub.Dropped())
}
