package inventory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
)

func movimientos() []*entity.Movement {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return []*entity.Movement{
		{ID: "mov003", ProductID: "prod001", Type: entity.MovementTypeExit, Quantity: 60, Timestamp: base.Add(2 * time.Hour)},
		{ID: "mov001", ProductID: "prod001", Type: entity.MovementTypeEntry, Quantity: 20, Timestamp: base},
		{ID: "mov002", ProductID: "prod002", Type: entity.MovementTypeEntry, Quantity: 7, Timestamp: base.Add(time.Hour)},
	}
}

func TestReplayStock_SoloDelProducto(t *testing.T) {
	assert.Equal(t, int64(10), inventory.ReplayStock("prod001", 50, movimientos()))
	assert.Equal(t, int64(7), inventory.ReplayStock("prod002", 0, movimientos()))
	assert.Equal(t, int64(3), inventory.ReplayStock("prod404", 3, movimientos()), "sin movimientos queda la base")
}

func TestBuildKardex_OrdenYSaldo(t *testing.T) {
	lines := inventory.BuildKardex("prod001", 50, movimientos())
	require.Len(t, lines, 2)

	assert.Equal(t, "mov001", lines[0].MovementID)
	assert.Equal(t, int64(70), lines[0].Balance)
	assert.Equal(t, "mov003", lines[1].MovementID)
	assert.Equal(t, int64(10), lines[1].Balance)
}
