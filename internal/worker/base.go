package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// BaseWorker содержит общую логику для всех воркеров
type BaseWorker struct {
	name          string
	consumerGroup string
	logger        *zap.Logger

	stopChan chan struct{}
	stopOnce sync.Once

	processed atomic.Int64
	failed    atomic.Int64
}

// NewBaseWorker создает новый BaseWorker. consumerGroup пуст у воркеров, не читающих стримы.
func NewBaseWorker(name, consumerGroup string, logger *zap.Logger) *BaseWorker {
	return &BaseWorker{
		name:          name,
		consumerGroup: consumerGroup,
		logger:        logger.With(zap.String("worker", name)),
		stopChan:      make(chan struct{}),
	}
}

// Name возвращает имя воркера
func (w *BaseWorker) Name() string {
	return w.name
}

// Stop останавливает воркер
func (w *BaseWorker) Stop() error {
	w.stopOnce.Do(func() {
		w.logger.Info("Stopping worker")
		close(w.stopChan)
	})
	return nil
}

// IsStopped проверяет, остановлен ли воркер
func (w *BaseWorker) IsStopped() bool {
	select {
	case <-w.stopChan:
		return true
	default:
		return false
	}
}

// StopChan возвращает канал остановки
func (w *BaseWorker) StopChan() <-chan struct{} {
	return w.stopChan
}

// WithStop возвращает контекст, отменяемый при Stop или отмене родителя
func (w *BaseWorker) WithStop(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		select {
		case <-w.stopChan:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// Sleep ждёт d. false - воркер остановлен или контекст отменён.
func (w *BaseWorker) Sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-w.stopChan:
		return false
	case <-ctx.Done():
		return false
	}
}

// ConsumerGroup возвращает имя consumer group
func (w *BaseWorker) ConsumerGroup() string {
	return w.consumerGroup
}

// Logger возвращает логгер
func (w *BaseWorker) Logger() *zap.Logger {
	return w.logger
}

func (w *BaseWorker) RecordProcessed() { w.processed.Add(1) }

func (w *BaseWorker) AddProcessed(n int) { w.processed.Add(int64(n)) }

func (w *BaseWorker) RecordFailed() { w.failed.Add(1) }

// Stats возвращает текущие счётчики
func (w *BaseWorker) Stats() Stats {
	return Stats{
		Processed: w.processed.Load(),
		Failed:    w.failed.Load(),
	}
}
