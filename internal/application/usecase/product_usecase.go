package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// ProductUseCase casos de uso CRUD para productos. Stock se maneja vía movimientos.
type ProductUseCase struct {
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
	supplierRepo repository.SupplierRepository
	ids          inventory.IDAllocator
	log          *logger.Logger
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	repo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	supplierRepo repository.SupplierRepository,
	ids inventory.IDAllocator,
	log *logger.Logger,
) *ProductUseCase {
	return &ProductUseCase{repo: repo, categoryRepo: categoryRepo, supplierRepo: supplierRepo, ids: ids, log: log}
}

// Create valida y crea un producto. El stock enviado queda como stock inicial del ledger.
// Categoría y proveedor se guardan tal como llegan (sin validar que existan).
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	name, err := requiredName(in.Name)
	if err != nil {
		return nil, err
	}
	stock, err := parseStock(in.Stock)
	if err != nil {
		return nil, err
	}
	price, err := parsePrice(in.Price)
	if err != nil {
		return nil, err
	}
	id, err := uc.ids.Allocate(ctx, entity.EntityProduct)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	p := &entity.Product{
		ID:           id,
		Name:         name,
		Category:     strings.TrimSpace(in.Category),
		Supplier:     strings.TrimSpace(in.Supplier),
		Description:  strings.TrimSpace(in.Description),
		Stock:        stock,
		InitialStock: stock,
		Price:        price,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	uc.log.Info().Str("product_id", id).Int64("stock", stock).Msg("producto creado")
	names, err := uc.loadNames(ctx)
	if err != nil {
		return nil, err
	}
	return names.toResponse(p), nil
}

// GetByID obtiene un producto con categoría y proveedor resueltos.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
	}
	names, err := uc.loadNames(ctx)
	if err != nil {
		return nil, err
	}
	return names.toResponse(p), nil
}

// Update actualiza campos de catálogo. No permite modificar Stock (se maneja vía movimientos).
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
	}
	if in.Name != nil {
		name, err := requiredName(*in.Name)
		if err != nil {
			return nil, err
		}
		p.Name = name
	}
	if in.Category != nil {
		p.Category = strings.TrimSpace(*in.Category)
	}
	if in.Supplier != nil {
		p.Supplier = strings.TrimSpace(*in.Supplier)
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		price, err := parsePrice(*in.Price)
		if err != nil {
			return nil, err
		}
		p.Price = price
	}
	p.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	names, err := uc.loadNames(ctx)
	if err != nil {
		return nil, err
	}
	return names.toResponse(p), nil
}

// List lista productos con referencias resueltas. Las referencias huérfanas se muestran tal cual.
func (uc *ProductUseCase) List(ctx context.Context) ([]dto.ProductResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	names, err := uc.loadNames(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, *names.toResponse(p))
	}
	return out, nil
}

// Delete elimina un producto. Sus movimientos permanecen en el ledger.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.log.Info().Str("product_id", id).Msg("producto eliminado")
	return nil
}

// refNames índices ID → nombre para resolver referencias débiles.
type refNames struct {
	categories map[string]string
	suppliers  map[string]string
}

func (uc *ProductUseCase) loadNames(ctx context.Context) (*refNames, error) {
	cats, err := uc.categoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	sups, err := uc.supplierRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	n := &refNames{categories: make(map[string]string, len(cats)), suppliers: make(map[string]string, len(sups))}
	for _, c := range cats {
		n.categories[c.ID] = c.Name
	}
	for _, s := range sups {
		n.suppliers[s.ID] = s.Name
	}
	return n, nil
}

// resolveRef devuelve el nombre actual si ref es un ID conocido; si no, ref tal cual (nombre heredado u huérfano).
func resolveRef(index map[string]string, ref string) string {
	if name, ok := index[ref]; ok {
		return name
	}
	return ref
}

func (n *refNames) toResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		Category:     p.Category,
		CategoryName: resolveRef(n.categories, p.Category),
		Supplier:     p.Supplier,
		SupplierName: resolveRef(n.suppliers, p.Supplier),
		Description:  p.Description,
		Stock:        p.Stock,
		InitialStock: p.InitialStock,
		Price:        p.Price,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func parseStock(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: stock debe ser un entero no negativo (%q)", domain.ErrInvalidInput, s)
	}
	return n, nil
}

func parsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: precio debe ser un número mayor que cero (%q)", domain.ErrInvalidInput, s)
	}
	return d, nil
}
