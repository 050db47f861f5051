// Package pdf genera el kardex de un producto en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Producto + ID        │  KARDEX + fecha de emisión  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: Categoría / Proveedor / Precio / Stock inicial    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Movimiento | Tipo | Entrada | Salida | Saldo│
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Saldo del ledger / Stock registrado               │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 170, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// KardexGenerator implementa el renderizado del kardex usando Maroto v2.
type KardexGenerator struct {
	now func() time.Time
}

// NewKardexGenerator construye el generador.
func NewKardexGenerator() *KardexGenerator { return &KardexGenerator{now: time.Now} }

// RenderKardex genera el PDF y devuelve sus bytes.
func (g *KardexGenerator) RenderKardex(report *inventory.KardexReport) ([]byte, error) {
	if report == nil || report.Product == nil {
		return nil, fmt.Errorf("pdf: kardex sin producto")
	}
	p := report.Product

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Kardex "+p.ID, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(p, g.now()))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(p))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(openingRow(p.InitialStock))
	m.AddRows(tableLineRows(report.Lines)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(report))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(p *entity.Product, issued time.Time) core.Row {
	return row.New(20).Add(
		col.New(5).Add(
			text.New(p.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("ID: "+p.ID, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(3).Add(code.NewBar(p.ID, props.Barcode{Percent: 80, Center: true})),
		col.New(4).Add(
			text.New("KARDEX DE INVENTARIO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("Emitido: "+issued.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func summaryRow(p *entity.Product) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New(fmt.Sprintf("Categoría: %s   |   Proveedor: %s   |   Precio: $%s",
				nonEmpty(p.Category, "—"),
				nonEmpty(p.Supplier, "—"),
				p.Price.StringFixed(2),
			), props.Text{Size: 8, Top: 2, Color: colorGray}),
			text.New("Stock inicial: "+formatQty(p.InitialStock), props.Text{
				Style: fontstyle.Bold, Size: 8, Top: 7,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Fecha", 2, align.Left),
		h("Movimiento", 2, align.Left),
		h("Nota", 3, align.Left),
		h("Entrada", 1, align.Right),
		h("Salida", 2, align.Right),
		h("Saldo", 2, align.Right),
	)
}

func openingRow(initial int64) core.Row {
	return row.New(6).Add(
		col.New(7).Add(text.New("Saldo inicial", props.Text{Size: 8, Style: fontstyle.Italic, Top: 1, Left: 1})),
		col.New(3),
		col.New(2).Add(text.New(formatQty(initial), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
	)
}

// tableLineRows: una fila por movimiento; la columna que no aplica queda vacía.
func tableLineRows(lines []inventory.KardexLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		in, out := "", ""
		if l.Type == entity.MovementTypeEntry {
			in = formatQty(l.Quantity)
		} else {
			out = formatQty(l.Quantity)
		}
		balance := props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1}
		if l.Balance < 0 {
			balance.Color = colorAlert
		}
		result = append(result, row.New(6).Add(
			col.New(2).Add(text.New(l.Timestamp.Format("02/01/2006 15:04"), props.Text{Size: 7.5, Top: 1, Left: 1})),
			col.New(2).Add(text.New(l.MovementID, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(l.Note, props.Text{Size: 7.5, Top: 1, Left: 1, Color: colorGray})),
			col.New(1).Add(text.New(in, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(out, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(formatQty(l.Balance), balance)),
		))
	}
	return result
}

// totalsRow: saldo según el ledger frente al stock registrado; si difieren se resalta.
func totalsRow(report *inventory.KardexReport) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	stockProps := props.Text{Size: 9, Align: align.Right, Right: 1, Top: 5}
	if report.FinalBalance != report.Product.Stock {
		stockProps.Color = colorAlert
		stockProps.Style = fontstyle.Bold
	}
	return row.New(14).Add(
		col.New(6),
		col.New(4).Add(
			label("Saldo según movimientos:"),
			text.New("Stock registrado:", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: 5}),
		),
		col.New(2).Add(
			text.New(formatQty(report.FinalBalance), props.Text{Size: 9, Align: align.Right, Right: 1}),
			text.New(formatQty(report.Product.Stock), stockProps),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatQty inserta puntos de miles. Ej: 25000 → "25.000", -1200 → "-1.200".
func formatQty(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return sign + s
	}
	buf := make([]byte, 0, len(s)+len(s)/3)
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + string(buf)
}
