package docstore

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// Ensure TxRunner implements inventory.TxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks del ledger dentro de la transacción del almacén.
type TxRunner struct {
	store repository.TransactionalStore
}

// NewTxRunner construye el runner sobre un almacén transaccional (PostgreSQL o Redis).
func NewTxRunner(store repository.TransactionalStore) *TxRunner {
	return &TxRunner{store: store}
}

// Run abre la transacción, ejecuta fn con repos atados a ella y confirma o descarta.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
	journalRepo repository.JournalRepository,
) error) error {
	return r.store.RunInTx(ctx, func(tx repository.DocumentStore) error {
		return fn(NewMovementRepository(tx), NewProductRepository(tx), NewJournalRepository(tx))
	})
}
