package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
// Stock y Price llegan como texto del formulario y se validan en el caso de uso.
type CreateProductRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Category    string `json:"category"`
	Supplier    string `json:"supplier"`
	Description string `json:"description"`
	Stock       string `json:"stock" validate:"required"`
	Price       string `json:"price" validate:"required"`
}

// UpdateProductRequest entrada para actualizar un producto (sin Stock: se maneja vía movimientos).
type UpdateProductRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Category    *string `json:"category"`
	Supplier    *string `json:"supplier"`
	Description *string `json:"description"`
	Price       *string `json:"price"`
}

// ProductResponse salida de un producto. CategoryName/SupplierName son la referencia resuelta.
type ProductResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	CategoryName string          `json:"category_name"`
	Supplier     string          `json:"supplier"`
	SupplierName string          `json:"supplier_name"`
	Description  string          `json:"description"`
	Stock        int64           `json:"stock"`
	InitialStock int64           `json:"initial_stock"`
	Price        decimal.Decimal `json:"price"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
