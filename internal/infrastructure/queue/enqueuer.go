package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// Enqueuer encola tareas del ledger en la cola configurada.
type Enqueuer struct {
	client *asynq.Client
	queue  string
	log    *logger.Logger
}

// NewEnqueuer construye el encolador. queue vacío usa "default".
func NewEnqueuer(client *asynq.Client, queue string, log *logger.Logger) *Enqueuer {
	if queue == "" {
		queue = "default"
	}
	return &Enqueuer{client: client, queue: queue, log: log.Named("queue")}
}

// EnqueueReconcile encola la reconciliación de un producto (o de todos si productID es vacío).
func (e *Enqueuer) EnqueueReconcile(ctx context.Context, productID string) (string, string, error) {
	task, err := NewReconcileTask(productID,
		asynq.Queue(e.queue),
		asynq.MaxRetry(5),
		asynq.Timeout(5*time.Minute),
		asynq.Retention(24*time.Hour),
	)
	if err != nil {
		return "", "", err
	}
	info, err := e.client.EnqueueContext(ctx, task)
	if err != nil {
		e.log.Error().Err(err).Str("product_id", productID).Msg("no se pudo encolar la reconciliación")
		return "", "", fmt.Errorf("%w: encolar %s: %v", domain.ErrStoreUnavailable, TypeReconcileStock, err)
	}
	e.log.Info().
		Str("task_id", info.ID).
		Str("queue", info.Queue).
		Str("product_id", productID).
		Msg("reconciliación encolada")
	return info.ID, info.Queue, nil
}
