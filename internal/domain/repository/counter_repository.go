package repository

import "context"

// CounterRepository contadores atómicos por secuencia de IDs.
type CounterRepository interface {
	// Next incrementa el contador y devuelve el nuevo valor (1 si no existía).
	Next(ctx context.Context, sequence string) (int64, error)
}
