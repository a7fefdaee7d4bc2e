package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestBaseWorker_StopIsIdempotent(t *testing.T) {
	w := NewBaseWorker("test", "group", zap.NewNop())
	assert.False(t, w.IsStopped())

	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
	assert.True(t, w.IsStopped())
	assert.Equal(t, "group", w.ConsumerGroup())
}

func TestBaseWorker_WithStop(t *testing.T) {
	w := NewBaseWorker("test", "", zap.NewNop())
	ctx, cancel := w.WithStop(context.Background())
	defer cancel()

	assert.NoError(t, ctx.Err())
	_ = w.Stop()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled on Stop")
	}
}

func TestBaseWorker_Sleep(t *testing.T) {
	w := NewBaseWorker("test", "", zap.NewNop())
	assert.True(t, w.Sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, w.Sleep(ctx, time.Hour))

	_ = w.Stop()
	assert.False(t, w.Sleep(context.Background(), time.Hour))
}

func TestBaseWorker_Stats(t *testing.T) {
	w := NewBaseWorker("test", "", zap.NewNop())
	w.RecordProcessed()
	w.AddProcessed(4)
	w.RecordFailed()

	assert.Equal(t, Stats{Processed: 5, Failed: 1}, w.Stats())
}
