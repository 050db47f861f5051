// Package queue encola y procesa tareas en segundo plano del ledger (asynq sobre Redis).
package queue

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// TypeReconcileStock re-proyecta el stock desde el ledger.
const TypeReconcileStock = "ledger:reconcile_stock"

// ReconcilePayload ProductID vacío = todos los productos.
type ReconcilePayload struct {
	ProductID string `json:"product_id"`
}

// NewReconcileTask construye la tarea de reconciliación.
func NewReconcileTask(productID string, opts ...asynq.Option) (*asynq.Task, error) {
	b, err := json.Marshal(ReconcilePayload{ProductID: productID})
	if err != nil {
		return nil, fmt.Errorf("queue: serializar payload: %w", err)
	}
	return asynq.NewTask(TypeReconcileStock, b, opts...), nil
}
