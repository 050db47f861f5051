package entity

// EntityType identifica una secuencia de IDs legibles (CAT001, prov001, ...).
type EntityType string

const (
	EntityCategory EntityType = "category"
	EntitySupplier EntityType = "supplier"
	EntityProduct  EntityType = "product"
	EntityMovement EntityType = "movement"
)

// Prefix prefijo fijo del ID legible.
func (t EntityType) Prefix() string {
	switch t {
	case EntityCategory:
		return "CAT"
	case EntitySupplier:
		return "prov"
	case EntityProduct:
		return "prod"
	case EntityMovement:
		return "mov"
	}
	return ""
}

// Sequence nombre del registro contador (colección counters) de la entidad.
func (t EntityType) Sequence() string {
	switch t {
	case EntityCategory:
		return "categories"
	case EntitySupplier:
		return "suppliers"
	case EntityProduct:
		return "products"
	case EntityMovement:
		return "movements"
	}
	return ""
}

// Counter registro persistido usado para asignar IDs de forma atómica.
type Counter struct {
	Name     string
	Sequence int64
}
