package inventory

import (
	"sort"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// KardexLine una fila del kardex: el movimiento y el saldo resultante.
type KardexLine struct {
	MovementID string
	Type       entity.MovementType
	Quantity   int64
	Note       string
	Timestamp  time.Time
	Balance    int64
}

// ReplayStock re-proyecta el stock desde el ledger: initial + Σentradas − Σsalidas.
// Solo considera los movimientos del producto indicado.
func ReplayStock(productID string, initial int64, movements []*entity.Movement) int64 {
	stock := initial
	for _, m := range movements {
		if m == nil || m.ProductID != productID {
			continue
		}
		stock += StockDelta(m.Type, m.Quantity)
	}
	return stock
}

// BuildKardex ordena los movimientos del producto por fecha (desempate por ID)
// y calcula el saldo acumulado a partir de initial.
func BuildKardex(productID string, initial int64, movements []*entity.Movement) []KardexLine {
	own := make([]*entity.Movement, 0, len(movements))
	for _, m := range movements {
		if m != nil && m.ProductID == productID {
			own = append(own, m)
		}
	}
	sort.SliceStable(own, func(i, j int) bool {
		if own[i].Timestamp.Equal(own[j].Timestamp) {
			return own[i].ID < own[j].ID
		}
		return own[i].Timestamp.Before(own[j].Timestamp)
	})
	lines := make([]KardexLine, 0, len(own))
	balance := initial
	for _, m := range own {
		balance += StockDelta(m.Type, m.Quantity)
		lines = append(lines, KardexLine{
			MovementID: m.ID,
			Type:       m.Type,
			Quantity:   m.Quantity,
			Note:       m.Note,
			Timestamp:  m.Timestamp,
			Balance:    balance,
		})
	}
	return lines
}
