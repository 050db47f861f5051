package inventory

import "github.com/jhoicas/inventario-ledger/internal/domain/entity"

// CanExit valida que una salida no deje el stock en negativo (servicio de dominio puro).
// quantity == currentStock está permitido: deja el stock exactamente en cero.
func CanExit(currentStock, quantity int64) bool {
	return quantity <= currentStock
}

// StockDelta ajuste que un movimiento aplica al stock del producto al registrarse.
func StockDelta(t entity.MovementType, quantity int64) int64 {
	if t == entity.MovementTypeExit {
		return -quantity
	}
	return quantity
}

// ReversalDelta ajuste compensatorio al eliminar un movimiento (espejo de StockDelta).
func ReversalDelta(t entity.MovementType, quantity int64) int64 {
	return -StockDelta(t, quantity)
}

// CanReverse indica si aplicar la reversión deja el stock >= 0.
// La reversión de una salida siempre suma; la de una entrada puede consumir
// stock que salidas posteriores ya usaron.
func CanReverse(currentStock int64, t entity.MovementType, quantity int64) bool {
	return currentStock+ReversalDelta(t, quantity) >= 0
}
