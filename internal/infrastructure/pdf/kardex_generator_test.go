package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

func TestRenderKardex_GeneraPDF(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	report := &inventory.KardexReport{
		Product: &entity.Product{
			ID: "prod001", Name: "Leche entera", Category: "CAT001", Supplier: "prov002",
			Stock: 3, InitialStock: 10, Price: decimal.RequireFromString("2.50"),
		},
		Lines: []inventory.KardexLine{
			{MovementID: "mov001", Type: entity.MovementTypeEntry, Quantity: 5, Timestamp: ts, Balance: 15},
			{MovementID: "mov002", Type: entity.MovementTypeExit, Quantity: 12, Note: "venta", Timestamp: ts.Add(time.Hour), Balance: 3},
		},
		FinalBalance: 3,
	}

	doc, err := NewKardexGenerator().RenderKardex(report)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")), "debe ser un documento PDF")
}

func TestRenderKardex_SinProducto(t *testing.T) {
	_, err := NewKardexGenerator().RenderKardex(&inventory.KardexReport{})
	assert.Error(t, err)
}

func TestFormatQty(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{25000, "25.000"},
		{1000000, "1.000.000"},
		{-100, "-100"},
		{-1200, "-1.200"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatQty(tt.in))
	}
}
