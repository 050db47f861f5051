package entity

import "time"

// Tipos de asiento del diario de compensación.
const (
	JournalKindOrphanReversal = "orphan_reversal" // movimiento eliminado sin producto: stock no ajustado
	JournalKindStockDrift     = "stock_drift"     // reconciliación corrigió el stock cacheado
)

// JournalEntry deja constancia de ajustes que no pasaron por el flujo normal del ledger.
type JournalEntry struct {
	ID         string
	Kind       string
	MovementID string
	ProductID  string
	Type       MovementType
	Quantity   int64
	Note       string
	Timestamp  time.Time
}
