package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción del almacén, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de inventario.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
		journalRepo repository.JournalRepository,
	) error) error
}

// IDAllocator asigna IDs legibles (CAT001, prov001, prod001, mov001).
type IDAllocator interface {
	Allocate(ctx context.Context, t entity.EntityType) (string, error)
}

// Tipos de evento del ledger.
const (
	EventMovementRecorded = "movement.recorded"
	EventMovementDeleted  = "movement.deleted"
	EventStockReconciled  = "stock.reconciled"
)

// Event notificación publicada después de confirmar un cambio en el ledger.
type Event struct {
	ID            string              `json:"id"`
	Type          string              `json:"type"`
	MovementID    string              `json:"movement_id,omitempty"`
	ProductID     string              `json:"product_id"`
	MovementType  entity.MovementType `json:"movement_type,omitempty"`
	Quantity      int64               `json:"quantity,omitempty"`
	Stock         int64               `json:"stock"`
	StockAdjusted bool                `json:"stock_adjusted"`
	OccurredAt    time.Time           `json:"occurred_at"`
}

// EventPublisher publica eventos del ledger (Kafka u otro bus).
type EventPublisher interface {
	Publish(ctx context.Context, evt Event) error
}

// NoopPublisher descarta los eventos (sin broker configurado).
type NoopPublisher struct{}

// Publish no hace nada.
func (NoopPublisher) Publish(context.Context, Event) error { return nil }
