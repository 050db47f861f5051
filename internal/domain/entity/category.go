package entity

import "time"

// Category representa una categoría de productos. Solo Name es editable tras la creación.
type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
