package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
)

func TestCanExit_Limites(t *testing.T) {
	assert.True(t, inventory.CanExit(10, 10), "salida igual al stock deja el stock en cero")
	assert.False(t, inventory.CanExit(10, 11), "salida mayor al stock debe rechazarse")
	assert.True(t, inventory.CanExit(10, 1))
	assert.False(t, inventory.CanExit(0, 1))
}

func TestStockDelta_EntradaYSalida(t *testing.T) {
	assert.Equal(t, int64(20), inventory.StockDelta(entity.MovementTypeEntry, 20))
	assert.Equal(t, int64(-20), inventory.StockDelta(entity.MovementTypeExit, 20))
	assert.Equal(t, int64(-20), inventory.ReversalDelta(entity.MovementTypeEntry, 20))
	assert.Equal(t, int64(20), inventory.ReversalDelta(entity.MovementTypeExit, 20))
}

// Escenario D: stock 10 tras entrada +20 y salida −60; revertir la entrada dejaría −10.
func TestCanReverse_EntradaYaConsumida(t *testing.T) {
	assert.False(t, inventory.CanReverse(10, entity.MovementTypeEntry, 20))
	assert.True(t, inventory.CanReverse(10, entity.MovementTypeEntry, 10))
	assert.True(t, inventory.CanReverse(0, entity.MovementTypeExit, 5), "revertir una salida siempre es válido")
}

// Cualquier secuencia de salidas que pasan el guard mantiene el stock >= 0.
func TestGuard_StockNuncaNegativo(t *testing.T) {
	stock := int64(50)
	ops := []struct {
		t entity.MovementType
		q int64
	}{
		{entity.MovementTypeExit, 30},
		{entity.MovementTypeExit, 30},
		{entity.MovementTypeEntry, 5},
		{entity.MovementTypeExit, 25},
		{entity.MovementTypeExit, 1},
		{entity.MovementTypeEntry, 100},
		{entity.MovementTypeExit, 100},
	}
	for _, op := range ops {
		if op.t == entity.MovementTypeExit && !inventory.CanExit(stock, op.q) {
			continue
		}
		stock += inventory.StockDelta(op.t, op.q)
		assert.GreaterOrEqual(t, stock, int64(0))
	}
	assert.Equal(t, int64(0), stock)
}
