package docstore

import (
	"context"
	"errors"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del libro de movimientos sobre el almacén de documentos.
type MovementRepo struct {
	store repository.DocumentStore
}

// NewMovementRepository construye el adaptador. Pasar almacén o almacén de tx.
func NewMovementRepository(store repository.DocumentStore) *MovementRepo {
	return &MovementRepo{store: store}
}

// Create agrega un movimiento al ledger. Falla con domain.ErrDuplicate si el ID ya existe.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	f := repository.Fields{
		"productId": m.ProductID,
		"type":      string(m.Type),
		"quantity":  m.Quantity,
		"note":      m.Note,
		"timestamp": formatTime(m.Timestamp),
	}
	if m.CreatedBy != "" {
		f["createdBy"] = m.CreatedBy
	}
	return r.store.Create(ctx, repository.CollectionMovements, m.ID, f)
}

// GetByID obtiene un movimiento por ID; (nil, nil) si no existe.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	doc, err := r.store.Get(ctx, repository.CollectionMovements, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toMovement(doc), nil
}

// List lista todo el ledger.
func (r *MovementRepo) List(ctx context.Context) ([]*entity.Movement, error) {
	docs, err := r.store.List(ctx, repository.CollectionMovements)
	if err != nil {
		return nil, err
	}
	list := make([]*entity.Movement, 0, len(docs))
	for _, d := range docs {
		list = append(list, toMovement(d))
	}
	return list, nil
}

// ListByProduct filtra el ledger por producto.
func (r *MovementRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.Movement, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	list := make([]*entity.Movement, 0, len(all))
	for _, m := range all {
		if m.ProductID == productID {
			list = append(list, m)
		}
	}
	return list, nil
}

// Delete elimina un movimiento (ruta de corrección; el llamador revierte su efecto).
func (r *MovementRepo) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, repository.CollectionMovements, id)
}

func toMovement(d *repository.Document) *entity.Movement {
	t, ok := entity.ParseMovementType(fieldString(d.Fields, "type"))
	if !ok {
		t = entity.MovementType(fieldString(d.Fields, "type"))
	}
	return &entity.Movement{
		ID:        d.ID,
		ProductID: fieldString(d.Fields, "productId"),
		Type:      t,
		Quantity:  fieldInt(d.Fields, "quantity"),
		Note:      fieldString(d.Fields, "note"),
		Timestamp: fieldTime(d.Fields, "timestamp"),
		CreatedBy: fieldString(d.Fields, "createdBy"),
	}
}
