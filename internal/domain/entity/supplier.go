package entity

import "time"

// Supplier representa un proveedor. Mismo ciclo de vida que Category.
type Supplier struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
