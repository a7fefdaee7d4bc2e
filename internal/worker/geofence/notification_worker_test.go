package geofence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/geo-routing-microservice/internal/domain"
)

type fakeStream struct {
	mu       sync.Mutex
	messages chan domain.StreamMessage
	acked    []string
	groups   []string
	groupErr error
}

func newFakeStream(msgs ...domain.StreamMessage) *fakeStream {
	ch := make(chan domain.StreamMessage, len(msgs))
	for _, m := range msgs {
		ch <- m
	}
	return &fakeStream{messages: ch}
}

func (f *fakeStream) CreateConsumerGroup(_ context.Context, stream, group string) error {
	f.groups = append(f.groups, stream+"|"+group)
	return f.groupErr
}

func (f *fakeStream) ConsumeStream(_ context.Context, _, _, _ string) (<-chan domain.StreamMessage, error) {
	return f.messages, nil
}

func (f *fakeStream) AckMessage(_ context.Context, _, _, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acked = append(f.acked, id)
	return nil
}

func (f *fakeStream) PublishToStream(context.Context, string, interface{}) (string, error) {
	return "", nil
}

func (f *fakeStream) Acked() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.acked...)
}

type fakeProcessor struct {
	mu     sync.Mutex
	events []domain.PositionUpdateEvent
	err    error
}

func (f *fakeProcessor) ProcessPositionUpdate(_ context.Context, event domain.PositionUpdateEvent) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return 1, f.err
}

func TestNotificationWorker_ProcessesAndAcks(t *testing.T) {
	stream := newFakeStream(
		domain.StreamMessage{ID: "1-0", Data: `{"entity_type":"agent","entity_id":"courier-1","lat":40.7128,"lng":-74.006}`},
		domain.StreamMessage{ID: "2-0", Data: `not json`},
		domain.StreamMessage{ID: "3-0", Data: `{"entity_type":"agent","entity_id":"courier-1","lat":95,"lng":0}`},
		domain.StreamMessage{ID: "4-0", Data: `{"entity_type":"client","entity_id":"7","lat":40.75,"lng":-73.98}`},
	)
	close(stream.messages)
	processor := &fakeProcessor{}

	w := NewNotificationWorker(stream, processor, "geo-workers", zap.NewNop())
	require.NoError(t, w.Start(context.Background()))

	assert.Equal(t, []string{domain.StreamPositionUpdate + "|geo-workers"}, stream.groups)
	assert.Equal(t, []string{"1-0", "2-0", "3-0", "4-0"}, stream.Acked())
	require.Len(t, processor.events, 2)
	assert.Equal(t, "courier-1", processor.events[0].EntityID)
	assert.Equal(t, "client:7", processor.events[1].Recipient())

	stats := w.Stats()
	assert.Equal(t, int64(2), stats.Processed)
	assert.Equal(t, int64(2), stats.Failed)
}

func TestNotificationWorker_AcksOnProcessingError(t *testing.T) {
	stream := newFakeStream(
		domain.StreamMessage{ID: "1-0", Data: `{"entity_type":"agent","entity_id":"a","lat":1,"lng":1}`},
	)
	close(stream.messages)
	processor := &fakeProcessor{err: errors.New("publish failed")}

	w := NewNotificationWorker(stream, processor, "geo-workers", zap.NewNop())
	require.NoError(t, w.Start(context.Background()))

	assert.Equal(t, []string{"1-0"}, stream.Acked())
	assert.Equal(t, int64(1), w.Stats().Failed)
}

func TestNotificationWorker_ConsumerGroupError(t *testing.T) {
	stream := newFakeStream()
	stream.groupErr = errors.New("redis down")

	w := NewNotificationWorker(stream, &fakeProcessor{}, "geo-workers", zap.NewNop())
	assert.Error(t, w.Start(context.Background()))
}

func TestNotificationWorker_Stop(t *testing.T) {
	stream := newFakeStream()
	w := NewNotificationWorker(stream, &fakeProcessor{}, "geo-workers", zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- w.Start(context.Background()) }()

	require.NoError(t, w.Stop())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
	assert.True(t, w.IsStopped())
	assert.Equal(t, "geofence-notification", w.Name())
}
