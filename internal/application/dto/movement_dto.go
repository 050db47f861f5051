package dto

import "time"

// RecordMovementRequest entrada para registrar un movimiento.
// Type acepta entry/exit y los valores heredados entrada/salida.
type RecordMovementRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Type      string `json:"type" validate:"required"`
	Quantity  int64  `json:"quantity" validate:"required,gt=0"`
	Note      string `json:"note"`
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Type      string    `json:"type"`
	Quantity  int64     `json:"quantity"`
	Note      string    `json:"note"`
	Timestamp time.Time `json:"timestamp"`
	CreatedBy string    `json:"created_by,omitempty"`
}

// RecordMovementResponse movimiento creado y stock resultante del producto.
type RecordMovementResponse struct {
	Movement MovementResponse `json:"movement"`
	Stock    int64            `json:"stock"`
}

// DeleteMovementResponse resultado de eliminar un movimiento.
type DeleteMovementResponse struct {
	Movement      MovementResponse `json:"movement"`
	Stock         int64            `json:"stock"`
	StockAdjusted bool             `json:"stock_adjusted"`
	JournalID     string           `json:"journal_id,omitempty"`
	Warning       string           `json:"warning,omitempty"`
}

// KardexLineResponse una fila del kardex.
type KardexLineResponse struct {
	MovementID string    `json:"movement_id"`
	Type       string    `json:"type"`
	Quantity   int64     `json:"quantity"`
	Note       string    `json:"note"`
	Timestamp  time.Time `json:"timestamp"`
	Balance    int64     `json:"balance"`
}

// KardexResponse kardex del producto.
type KardexResponse struct {
	ProductID    string               `json:"product_id"`
	ProductName  string               `json:"product_name"`
	InitialStock int64                `json:"initial_stock"`
	Stock        int64                `json:"stock"`
	FinalBalance int64                `json:"final_balance"`
	Lines        []KardexLineResponse `json:"lines"`
}

// ReconcileRequest encolar reconciliación; ProductID vacío = todos los productos.
type ReconcileRequest struct {
	ProductID string `json:"product_id"`
}

// ReconcileResponse confirmación del encolado.
type ReconcileResponse struct {
	TaskID    string `json:"task_id"`
	ProductID string `json:"product_id,omitempty"`
	Queue     string `json:"queue"`
}
