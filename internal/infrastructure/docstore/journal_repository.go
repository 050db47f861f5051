package docstore

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.JournalRepository = (*JournalRepo)(nil)

// JournalRepo diario de compensaciones sobre el almacén de documentos.
type JournalRepo struct {
	store repository.DocumentStore
}

// NewJournalRepository construye el adaptador.
func NewJournalRepository(store repository.DocumentStore) *JournalRepo {
	return &JournalRepo{store: store}
}

// Create registra un asiento.
func (r *JournalRepo) Create(ctx context.Context, e *entity.JournalEntry) error {
	return r.store.Create(ctx, repository.CollectionJournal, e.ID, repository.Fields{
		"kind":       e.Kind,
		"movementId": e.MovementID,
		"productId":  e.ProductID,
		"type":       string(e.Type),
		"quantity":   e.Quantity,
		"note":       e.Note,
		"timestamp":  formatTime(e.Timestamp),
	})
}

// List lista todos los asientos.
func (r *JournalRepo) List(ctx context.Context) ([]*entity.JournalEntry, error) {
	docs, err := r.store.List(ctx, repository.CollectionJournal)
	if err != nil {
		return nil, err
	}
	list := make([]*entity.JournalEntry, 0, len(docs))
	for _, d := range docs {
		list = append(list, &entity.JournalEntry{
			ID:         d.ID,
			Kind:       fieldString(d.Fields, "kind"),
			MovementID: fieldString(d.Fields, "movementId"),
			ProductID:  fieldString(d.Fields, "productId"),
			Type:       entity.MovementType(fieldString(d.Fields, "type")),
			Quantity:   fieldInt(d.Fields, "quantity"),
			Note:       fieldString(d.Fields, "note"),
			Timestamp:  fieldTime(d.Fields, "timestamp"),
		})
	}
	return list, nil
}
