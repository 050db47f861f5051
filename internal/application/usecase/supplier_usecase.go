package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// SupplierUseCase casos de uso CRUD para proveedores.
type SupplierUseCase struct {
	repo repository.SupplierRepository
	ids  inventory.IDAllocator
	log  *logger.Logger
}

// NewSupplierUseCase construye el caso de uso.
func NewSupplierUseCase(repo repository.SupplierRepository, ids inventory.IDAllocator, log *logger.Logger) *SupplierUseCase {
	return &SupplierUseCase{repo: repo, ids: ids, log: log}
}

// Create asigna el ID (prov###) y persiste el proveedor.
func (uc *SupplierUseCase) Create(ctx context.Context, in dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	name, err := requiredName(in.Name)
	if err != nil {
		return nil, err
	}
	id, err := uc.ids.Allocate(ctx, entity.EntitySupplier)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sup := &entity.Supplier{ID: id, Name: name, CreatedAt: now, UpdatedAt: now}
	if err := uc.repo.Create(ctx, sup); err != nil {
		return nil, err
	}
	uc.log.Info().Str("supplier_id", id).Str("name", name).Msg("proveedor creado")
	return toSupplierResponse(sup), nil
}

// GetByID obtiene un proveedor por ID.
func (uc *SupplierUseCase) GetByID(ctx context.Context, id string) (*dto.SupplierResponse, error) {
	sup, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sup == nil {
		return nil, fmt.Errorf("proveedor %s: %w", id, domain.ErrNotFound)
	}
	return toSupplierResponse(sup), nil
}

// Update renombra el proveedor.
func (uc *SupplierUseCase) Update(ctx context.Context, id string, in dto.UpdateSupplierRequest) (*dto.SupplierResponse, error) {
	name, err := requiredName(in.Name)
	if err != nil {
		return nil, err
	}
	sup, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sup == nil {
		return nil, fmt.Errorf("proveedor %s: %w", id, domain.ErrNotFound)
	}
	sup.Name = name
	sup.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, sup); err != nil {
		return nil, err
	}
	return toSupplierResponse(sup), nil
}

// List lista todos los proveedores.
func (uc *SupplierUseCase) List(ctx context.Context) ([]dto.SupplierResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SupplierResponse, 0, len(list))
	for _, sup := range list {
		out = append(out, *toSupplierResponse(sup))
	}
	return out, nil
}

// Delete elimina el proveedor sin revisar productos que lo referencian.
func (uc *SupplierUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.log.Info().Str("supplier_id", id).Msg("proveedor eliminado")
	return nil
}

func toSupplierResponse(sup *entity.Supplier) *dto.SupplierResponse {
	return &dto.SupplierResponse{ID: sup.ID, Name: sup.Name, CreatedAt: sup.CreatedAt, UpdatedAt: sup.UpdatedAt}
}
