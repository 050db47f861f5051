package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// JournalRepository diario de compensaciones.
type JournalRepository interface {
	Create(ctx context.Context, entry *entity.JournalEntry) error
	List(ctx context.Context) ([]*entity.JournalEntry, error)
}
