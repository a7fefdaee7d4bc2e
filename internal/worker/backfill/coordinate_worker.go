package backfill

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/geo-routing-microservice/internal/worker"
)

// CoordinateBackfiller - геокодирование сущностей без координат (GeocodingUseCase)
type CoordinateBackfiller interface {
	BackfillVendorCoordinates(ctx context.Context, limit int) (int, error)
	BackfillClientCoordinates(ctx context.Context, limit int) (int, error)
}

// CoordinateWorker периодически заполняет координаты заведений и клиентов по адресу
type CoordinateWorker struct {
	*worker.BaseWorker
	backfiller CoordinateBackfiller
	interval   time.Duration
	batchSize  int
}

func NewCoordinateWorker(
	backfiller CoordinateBackfiller,
	interval time.Duration,
	batchSize int,
	logger *zap.Logger,
) *CoordinateWorker {
	return &CoordinateWorker{
		BaseWorker: worker.NewBaseWorker("coordinate-backfill", "", logger),
		backfiller: backfiller,
		interval:   interval,
		batchSize:  batchSize,
	}
}

// Start выполняет проход сразу и затем каждые interval
func (w *CoordinateWorker) Start(ctx context.Context) error {
	w.Logger().Info("Starting CoordinateWorker",
		zap.Duration("interval", w.interval),
		zap.Int("batch_size", w.batchSize))

	for {
		w.RunOnce(ctx)
		if !w.Sleep(ctx, w.interval) {
			w.Logger().Info("Worker stopped", zap.Int64("updated", w.Stats().Processed))
			return nil
		}
	}
}

// RunOnce выполняет один проход: заведения, затем клиенты
func (w *CoordinateWorker) RunOnce(ctx context.Context) (vendors, clients int) {
	logger := w.Logger()

	vendors, err := w.backfiller.BackfillVendorCoordinates(ctx, w.batchSize)
	if err != nil {
		logger.Error("Vendor backfill failed", zap.Error(err))
		w.RecordFailed()
	}

	clients, err = w.backfiller.BackfillClientCoordinates(ctx, w.batchSize)
	if err != nil {
		logger.Error("Client backfill failed", zap.Error(err))
		w.RecordFailed()
	}

	w.AddProcessed(vendors + clients)

	if vendors+clients > 0 {
		logger.Info("Coordinates backfilled",
			zap.Int("vendors", vendors),
			zap.Int("clients", clients))
	}
	return vendors, clients
}
