package docstore

import (
	"context"
	"errors"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var (
	_ repository.CategoryRepository = (*CategoryRepo)(nil)
	_ repository.SupplierRepository = (*SupplierRepo)(nil)
)

// namedFields campos comunes de Category y Supplier; createdAt vacío no se escribe (update).
func namedFields(name, createdAt, updatedAt string) repository.Fields {
	f := repository.Fields{"name": name, "updatedAt": updatedAt}
	if createdAt != "" {
		f["createdAt"] = createdAt
	}
	return f
}

// CategoryRepo implementación de CategoryRepository sobre el almacén de documentos.
type CategoryRepo struct {
	store repository.DocumentStore
}

// NewCategoryRepository construye el adaptador. Pasar el almacén o el almacén de una tx.
func NewCategoryRepository(store repository.DocumentStore) *CategoryRepo {
	return &CategoryRepo{store: store}
}

// Create persiste una nueva categoría.
func (r *CategoryRepo) Create(ctx context.Context, c *entity.Category) error {
	return r.store.Create(ctx, repository.CollectionCategories, c.ID,
		namedFields(c.Name, formatTime(c.CreatedAt), formatTime(c.UpdatedAt)))
}

// GetByID obtiene una categoría por ID; (nil, nil) si no existe.
func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	doc, err := r.store.Get(ctx, repository.CollectionCategories, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toCategory(doc), nil
}

// Update actualiza el nombre.
func (r *CategoryRepo) Update(ctx context.Context, c *entity.Category) error {
	return r.store.Update(ctx, repository.CollectionCategories, c.ID,
		namedFields(c.Name, "", formatTime(c.UpdatedAt)))
}

// List lista todas las categorías.
func (r *CategoryRepo) List(ctx context.Context) ([]*entity.Category, error) {
	docs, err := r.store.List(ctx, repository.CollectionCategories)
	if err != nil {
		return nil, err
	}
	list := make([]*entity.Category, 0, len(docs))
	for _, d := range docs {
		list = append(list, toCategory(d))
	}
	return list, nil
}

// Delete elimina una categoría. No revisa productos que la referencian.
func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, repository.CollectionCategories, id)
}

func toCategory(d *repository.Document) *entity.Category {
	return &entity.Category{
		ID:        d.ID,
		Name:      fieldString(d.Fields, "name"),
		CreatedAt: fieldTime(d.Fields, "createdAt"),
		UpdatedAt: fieldTime(d.Fields, "updatedAt"),
	}
}

// SupplierRepo implementación de SupplierRepository sobre el almacén de documentos.
type SupplierRepo struct {
	store repository.DocumentStore
}

// NewSupplierRepository construye el adaptador.
func NewSupplierRepository(store repository.DocumentStore) *SupplierRepo {
	return &SupplierRepo{store: store}
}

// Create persiste un nuevo proveedor.
func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	return r.store.Create(ctx, repository.CollectionSuppliers, s.ID,
		namedFields(s.Name, formatTime(s.CreatedAt), formatTime(s.UpdatedAt)))
}

// GetByID obtiene un proveedor por ID; (nil, nil) si no existe.
func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	doc, err := r.store.Get(ctx, repository.CollectionSuppliers, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toSupplier(doc), nil
}

// Update actualiza el nombre.
func (r *SupplierRepo) Update(ctx context.Context, s *entity.Supplier) error {
	return r.store.Update(ctx, repository.CollectionSuppliers, s.ID,
		namedFields(s.Name, "", formatTime(s.UpdatedAt)))
}

// List lista todos los proveedores.
func (r *SupplierRepo) List(ctx context.Context) ([]*entity.Supplier, error) {
	docs, err := r.store.List(ctx, repository.CollectionSuppliers)
	if err != nil {
		return nil, err
	}
	list := make([]*entity.Supplier, 0, len(docs))
	for _, d := range docs {
		list = append(list, toSupplier(d))
	}
	return list, nil
}

// Delete elimina un proveedor.
func (r *SupplierRepo) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, repository.CollectionSuppliers, id)
}

func toSupplier(d *repository.Document) *entity.Supplier {
	return &entity.Supplier{
		ID:        d.ID,
		Name:      fieldString(d.Fields, "name"),
		CreatedAt: fieldTime(d.Fields, "createdAt"),
		UpdatedAt: fieldTime(d.Fields, "updatedAt"),
	}
}
