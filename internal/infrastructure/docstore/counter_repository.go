package docstore

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.CounterRepository = (*CounterRepo)(nil)

// CounterRepo contadores en la colección counters: {sequence: n}.
type CounterRepo struct {
	store repository.DocumentStore
}

// NewCounterRepository construye el adaptador.
func NewCounterRepository(store repository.DocumentStore) *CounterRepo {
	return &CounterRepo{store: store}
}

// Next incremento atómico; un contador ausente se crea en 1 con la misma primitiva.
func (r *CounterRepo) Next(ctx context.Context, sequence string) (int64, error) {
	return r.store.Increment(ctx, repository.CollectionCounters, sequence, "sequence", 1)
}
