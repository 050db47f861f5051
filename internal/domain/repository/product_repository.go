package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID devuelve (nil, nil) si no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// Update persiste los campos de catálogo. Nunca escribe Stock.
	Update(ctx context.Context, product *entity.Product) error
	// AdjustStock suma delta al stock de forma atómica y devuelve el nuevo valor (usado solo por el ledger).
	AdjustStock(ctx context.Context, productID string, delta int64) (int64, error)
	// SetStock sobrescribe el stock cacheado (reconciliación desde el ledger).
	SetStock(ctx context.Context, productID string, stock int64) error
	List(ctx context.Context) ([]*entity.Product, error)
	Delete(ctx context.Context, id string) error
}
