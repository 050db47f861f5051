package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del inventario.
// Category y Supplier guardan la referencia tal como llegó (ID o nombre heredado);
// el nombre visible se resuelve al leer. Stock es una proyección del libro de
// movimientos: solo lo modifica el ledger.
type Product struct {
	ID           string
	Name         string
	Category     string
	Supplier     string
	Description  string
	Stock        int64
	InitialStock int64 // stock al crear el producto; base para re-proyectar desde el ledger
	Price        decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
