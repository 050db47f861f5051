package repository

import "context"

// Colecciones lógicas del almacén de documentos.
const (
	CollectionCategories = "categories"
	CollectionSuppliers  = "suppliers"
	CollectionProducts   = "products"
	CollectionMovements  = "movements"
	CollectionCounters   = "counters"
	CollectionJournal    = "journal"
)

// Fields campos de un documento. Los adaptadores pueden devolver los valores
// como string (Redis) o como tipos JSON (PostgreSQL); la conversión la hacen los repositorios.
type Fields map[string]any

// Document documento con su ID.
type Document struct {
	ID     string
	Fields Fields
}

// DocumentStore puerto genérico de persistencia (get/list/create/update/delete + incremento atómico).
// Toda falla del backend se devuelve envuelta en domain.ErrStoreUnavailable.
type DocumentStore interface {
	// Get devuelve domain.ErrNotFound si el documento no existe.
	Get(ctx context.Context, collection, id string) (*Document, error)
	List(ctx context.Context, collection string) ([]*Document, error)
	// Create devuelve domain.ErrDuplicate si ya existe un documento con ese ID.
	Create(ctx context.Context, collection, id string, fields Fields) error
	// Update mezcla los campos dados; domain.ErrNotFound si no existe.
	Update(ctx context.Context, collection, id string, fields Fields) error
	// Delete es idempotente.
	Delete(ctx context.Context, collection, id string) error
	// Increment suma delta al campo entero de forma atómica y devuelve el valor resultante.
	// Si el documento o el campo no existen se crean partiendo de cero.
	Increment(ctx context.Context, collection, id, field string, delta int64) (int64, error)
}

// TransactionalStore almacén que además ofrece una frontera transaccional.
// Dentro de fn, las lecturas bloquean/observan el documento leído y las escrituras
// se confirman juntas o ninguna.
type TransactionalStore interface {
	DocumentStore
	RunInTx(ctx context.Context, fn func(tx DocumentStore) error) error
}
