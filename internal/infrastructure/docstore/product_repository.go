package docstore

import (
	"context"
	"errors"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const fieldStock = "stock"

// ProductRepo implementación de ProductRepository sobre el almacén de documentos (usable con almacén o tx).
type ProductRepo struct {
	store repository.DocumentStore
}

// NewProductRepository construye el adaptador de persistencia para productos.
func NewProductRepository(store repository.DocumentStore) *ProductRepo {
	return &ProductRepo{store: store}
}

// Create persiste un nuevo producto con su stock inicial.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	return r.store.Create(ctx, repository.CollectionProducts, p.ID, repository.Fields{
		"name":         p.Name,
		"category":     p.Category,
		"supplier":     p.Supplier,
		"description":  p.Description,
		fieldStock:     p.Stock,
		"initialStock": p.InitialStock,
		"price":        p.Price.String(),
		"createdAt":    formatTime(p.CreatedAt),
		"updatedAt":    formatTime(p.UpdatedAt),
	})
}

// GetByID obtiene un producto por ID; (nil, nil) si no existe.
// Dentro de una transacción la lectura bloquea/observa el documento.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	doc, err := r.store.Get(ctx, repository.CollectionProducts, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toProduct(doc), nil
}

// Update actualiza los campos de catálogo. No toca stock (se maneja vía movimientos).
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	return r.store.Update(ctx, repository.CollectionProducts, p.ID, repository.Fields{
		"name":        p.Name,
		"category":    p.Category,
		"supplier":    p.Supplier,
		"description": p.Description,
		"price":       p.Price.String(),
		"updatedAt":   formatTime(p.UpdatedAt),
	})
}

// AdjustStock incremento/decremento atómico del stock (usado por el motor de inventario).
func (r *ProductRepo) AdjustStock(ctx context.Context, productID string, delta int64) (int64, error) {
	return r.store.Increment(ctx, repository.CollectionProducts, productID, fieldStock, delta)
}

// SetStock sobrescribe el stock cacheado con el valor re-proyectado desde el ledger.
func (r *ProductRepo) SetStock(ctx context.Context, productID string, stock int64) error {
	return r.store.Update(ctx, repository.CollectionProducts, productID, repository.Fields{fieldStock: stock})
}

// List lista todos los productos.
func (r *ProductRepo) List(ctx context.Context) ([]*entity.Product, error) {
	docs, err := r.store.List(ctx, repository.CollectionProducts)
	if err != nil {
		return nil, err
	}
	list := make([]*entity.Product, 0, len(docs))
	for _, d := range docs {
		list = append(list, toProduct(d))
	}
	return list, nil
}

// Delete elimina un producto por ID. Sus movimientos quedan en el ledger.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, repository.CollectionProducts, id)
}

func toProduct(d *repository.Document) *entity.Product {
	return &entity.Product{
		ID:           d.ID,
		Name:         fieldString(d.Fields, "name"),
		Category:     fieldString(d.Fields, "category"),
		Supplier:     fieldString(d.Fields, "supplier"),
		Description:  fieldString(d.Fields, "description"),
		Stock:        fieldInt(d.Fields, fieldStock),
		InitialStock: fieldInt(d.Fields, "initialStock"),
		Price:        fieldDecimal(d.Fields, "price"),
		CreatedAt:    fieldTime(d.Fields, "createdAt"),
		UpdatedAt:    fieldTime(d.Fields, "updatedAt"),
	}
}
