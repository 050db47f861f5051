package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// Reconciler operaciones del ledger que ejecuta el worker.
type Reconciler interface {
	ReconcileStock(ctx context.Context, productID string) (*inventory.ReconcileResult, error)
	ReconcileAll(ctx context.Context) ([]*inventory.ReconcileResult, error)
}

// ReconcileProcessor procesa TypeReconcileStock.
type ReconcileProcessor struct {
	ledger Reconciler
	log    *logger.Logger
}

// NewReconcileProcessor construye el procesador.
func NewReconcileProcessor(ledger Reconciler, log *logger.Logger) *ReconcileProcessor {
	return &ReconcileProcessor{ledger: ledger, log: log.Named("reconcile")}
}

// Register asocia los handlers al mux del worker.
func (p *ReconcileProcessor) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeReconcileStock, p.ProcessTask)
}

// ProcessTask reconcilia el producto del payload. Solo las fallas del almacén se reintentan.
func (p *ReconcileProcessor) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload ReconcilePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("payload inválido: %v: %w", err, asynq.SkipRetry)
	}

	if payload.ProductID == "" {
		results, err := p.ledger.ReconcileAll(ctx)
		corrected := 0
		for _, r := range results {
			if r.Corrected {
				corrected++
			}
		}
		p.log.Info().Int("products", len(results)).Int("corrected", corrected).Msg("reconciliación completa")
		return retryable(err)
	}

	res, err := p.ledger.ReconcileStock(ctx, payload.ProductID)
	if err != nil {
		p.log.Warn().Err(err).Str("product_id", payload.ProductID).Msg("reconciliación fallida")
		return retryable(err)
	}
	p.log.Info().
		Str("product_id", res.ProductID).
		Int64("cached", res.Cached).
		Int64("stock", res.Replayed).
		Bool("corrected", res.Corrected).
		Msg("reconciliación de producto")
	return nil
}

func retryable(err error) error {
	if err == nil || domain.Retryable(err) {
		return err
	}
	return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
}
