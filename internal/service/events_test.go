package service

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rinatiamaev/salesFactoryNew/internal/model"
	"github.com/rinatiamaev/salesFactoryNew/internal/queue"
	"github.com/rinatiamaev/salesFactoryNew/internal/repository"
)

// blockingPublisher stands in for a broker that hangs until released.
type blockingPublisher struct {
	recordingPublisher
	started chan struct{}
	release chan struct{}
}

func newBlockingPublisher() *blockingPublisher {
	return &blockingPublisher{started: make(chan struct{}, 16), release: make(chan struct{})}
}

func (b *blockingPublisher) Publish(ctx context.Context, ev queue.OrderEvent) error {
	b.started <- struct{}{}
	<-b.release
	return b.recordingPublisher.Publish(ctx, ev)
}

func TestAsyncPublisherKeepsWritesFast(t *testing.T) {
	stub := newBlockingPublisher()
	var logs bytes.Buffer
	async := NewAsyncPublisher(stub, 8, log.New(&logs, "", 0))
	o := NewOrders(repository.NewMemoryRowRepo(), repository.NewMemoryTableRepo(), async, log.New(&logs, "", 0))

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := o.CreateRow(ctx, client1, model.RowInput{Name: "Latte", Price: 3.5})
		require.NoError(t, err)
	}
	assert.Less(t, time.Since(start), time.Second)

	<-stub.started
	assert.Empty(t, stub.kinds(), "broker still blocked")

	close(stub.release)
	closeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, async.Close(closeCtx))
	assert.Equal(t, []string{queue.RowCreated, queue.RowCreated, queue.RowCreated}, stub.kinds())
	assert.Empty(t, logs.String())
}

func TestAsyncPublisherDropsWhenFull(t *testing.T) {
	stub := newBlockingPublisher()
	async := NewAsyncPublisher(stub, 1, log.New(&bytes.Buffer{}, "", 0))

	require.NoError(t, async.Publish(ctx, queue.OrderEvent{Kind: queue.RowCreated}))
	<-stub.started
	require.NoError(t, async.Publish(ctx, queue.OrderEvent{Kind: queue.RowUpdated}))

	err := async.Publish(ctx, queue.OrderEvent{Kind: queue.RowDeleted})
	assert.ErrorIs(t, err, ErrEventDropped)
	assert.ErrorContains(t, err, queue.RowDeleted)

	close(stub.release)
	require.NoError(t, async.Close(context.Background()))
	assert.Equal(t, []string{queue.RowCreated, queue.RowUpdated}, stub.kinds())
	assert.ErrorIs(t, async.Publish(ctx, queue.OrderEvent{Kind: queue.RowCreated}), ErrPublisherClosed)
}

func TestAsyncPublisherCloseHonoursDeadline(t *testing.T) {
	stub := newBlockingPublisher()
	defer close(stub.release)
	async := NewAsyncPublisher(stub, 1, nil)
	require.NoError(t, async.Publish(ctx, queue.OrderEvent{Kind: queue.RowCreated}))
	<-stub.started

	closeCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, async.Close(closeCtx), context.DeadlineExceeded)
}

func TestAsyncPublisherLogsDeliveryFailure(t *testing.T) {
	rec := &recordingPublisher{err: errors.New("broker down")}
	var logs bytes.Buffer
	async := NewAsyncPublisher(rec, 4, log.New(&logs, "", 0))
	require.NoError(t, async.Publish(ctx, queue.OrderEvent{Kind: queue.TableCreated}))
	require.NoError(t, async.Close(context.Background()))
	assert.Contains(t, logs.String(), "events: deliver table.created failed: broker down")

	assert.Panics(t, func() { NewAsyncPublisher(nil, 1, nil) })
}
