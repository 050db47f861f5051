package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrInsufficientStock = errors.New("stock insuficiente")
	// ErrConflict: la transacción optimista agotó sus intentos por escrituras concurrentes.
	ErrConflict = errors.New("conflicto de escritura concurrente")
	// ErrStoreUnavailable envuelve cualquier fallo del almacén de documentos (red, timeout, tx abortada).
	ErrStoreUnavailable = errors.New("almacén de datos no disponible")
)

// Códigos estables por categoría de error, para que la capa de presentación
// distinga stock insuficiente de una falla transitoria del almacén.
const (
	CodeInvalidInput      = "INVALID_INPUT"
	CodeNotFound          = "NOT_FOUND"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeStoreUnavailable  = "STORE_UNAVAILABLE"
	CodeDuplicate         = "DUPLICATE"
	CodeConflict          = "CONFLICT"
	CodeInternal          = "INTERNAL"
)

// Code devuelve el código de categoría del error (INTERNAL si no es un error de dominio).
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalidInput
	case errors.Is(err, ErrInsufficientStock):
		return CodeInsufficientStock
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrDuplicate):
		return CodeDuplicate
	case errors.Is(err, ErrConflict):
		return CodeConflict
	case errors.Is(err, ErrStoreUnavailable):
		return CodeStoreUnavailable
	default:
		return CodeInternal
	}
}

// Retryable indica si el llamador puede reintentar la operación.
// Solo las fallas del almacén y los conflictos agotados lo son; el motor no
// reintenta por encima de la transacción.
func Retryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable) || errors.Is(err, ErrConflict)
}
