package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// Estrategias de asignación de IDs.
const (
	StrategyCounter = "counter"
	StrategyScan    = "scan"
)

// CounterAllocator asigna IDs con el incremento atómico del contador de la secuencia.
// Seguro ante concurrencia: dos llamadas nunca obtienen el mismo número.
type CounterAllocator struct {
	counters repository.CounterRepository
}

// NewCounterAllocator construye la estrategia por contador.
func NewCounterAllocator(counters repository.CounterRepository) *CounterAllocator {
	return &CounterAllocator{counters: counters}
}

// Allocate incrementa el contador y formatea el ID.
func (a *CounterAllocator) Allocate(ctx context.Context, t entity.EntityType) (string, error) {
	if t.Prefix() == "" {
		return "", fmt.Errorf("%w: tipo de entidad %q", domain.ErrInvalidInput, t)
	}
	n, err := a.counters.Next(ctx, t.Sequence())
	if err != nil {
		return "", err
	}
	return inventory.FormatID(t.Prefix(), n), nil
}

// ScanAllocator asigna el máximo sufijo existente + 1 recorriendo la colección.
// No es seguro ante concurrencia: dos llamadas simultáneas pueden obtener el mismo ID
// (la creación posterior falla con domain.ErrDuplicate).
type ScanAllocator struct {
	store repository.DocumentStore
}

// NewScanAllocator construye la estrategia por escaneo.
func NewScanAllocator(store repository.DocumentStore) *ScanAllocator {
	return &ScanAllocator{store: store}
}

// Allocate lista los IDs de la colección y devuelve el siguiente.
// Colección vacía: …001. Falla del almacén: domain.ErrStoreUnavailable, nunca un ID.
func (a *ScanAllocator) Allocate(ctx context.Context, t entity.EntityType) (string, error) {
	if t.Prefix() == "" {
		return "", fmt.Errorf("%w: tipo de entidad %q", domain.ErrInvalidInput, t)
	}
	docs, err := a.store.List(ctx, t.Sequence())
	if err != nil {
		return "", err
	}
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return inventory.NextIDFromExisting(t.Prefix(), ids), nil
}

// NewAllocator elige la estrategia configurada (LEDGER_ID_STRATEGY). Vacío = counter.
func NewAllocator(strategy string, store repository.DocumentStore, counters repository.CounterRepository) (IDAllocator, error) {
	switch strategy {
	case "", StrategyCounter:
		return NewCounterAllocator(counters), nil
	case StrategyScan:
		return NewScanAllocator(store), nil
	default:
		return nil, fmt.Errorf("%w: estrategia de IDs %q", domain.ErrInvalidInput, strategy)
	}
}
