// Package pdf genera el comprobante de compra en PDF (A4, una página).
//
// Layout:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: nombre de la tienda emisora │ N° compra + fecha     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  DATOS: cliente / tienda / estado                            │
//	│  TABLA: Producto | Cant. | Total                             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con el ID + leyenda (y fecha de archivo)         │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"strings"
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
	"github.com/shopspring/decimal"

	"github.com/jhoicas/purchases-api/internal/application/purchase"
	"github.com/jhoicas/purchases-api/internal/domain/entity"
)

var _ purchase.ReceiptGenerator = (*ReceiptGenerator)(nil)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ReceiptGenerator implementa purchase.ReceiptGenerator usando Maroto v2.
type ReceiptGenerator struct {
	issuer string
}

// NewReceiptGenerator construye el generador. issuer aparece en la cabecera (APP_NAME).
func NewReceiptGenerator(issuer string) *ReceiptGenerator {
	return &ReceiptGenerator{issuer: issuer}
}

// GenerateReceiptPDF genera el PDF y devuelve sus bytes. archivedAt != nil marca el comprobante como histórico.
func (g *ReceiptGenerator) GenerateReceiptPDF(_ context.Context, p entity.Purchase, archivedAt *time.Time) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(fmt.Sprintf("Comprobante de compra %d", p.ID), true).
		WithAuthor(g.issuer, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.issuer, p))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(detailsRow(p))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(tableHeaderRow(), tableRow(p))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(footerRows(p, archivedAt)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(issuer string, p entity.Purchase) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(issuer, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Tienda #%d", p.StoreID), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("COMPROBANTE DE COMPRA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("N° %06d", p.ID), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+p.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func detailsRow(p entity.Purchase) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("DATOS DE LA COMPRA", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Cliente: #%d   |   Estado: %s   |   Actualizada: %s",
				p.UserID, p.Status, p.UpdatedAt.Format("02/01/2006 15:04"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Producto", 6, align.Left),
		h("Cant.", 2, align.Center),
		h("Total", 4, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func tableRow(p entity.Purchase) core.Row {
	return row.New(8).Add(
		col.New(6).Add(text.New(fmt.Sprintf("Producto #%d", p.ProductID), props.Text{Size: 9, Top: 2, Left: 1})),
		col.New(2).Add(text.New(strconv.Itoa(p.Quantity), props.Text{Size: 9, Align: align.Center, Top: 2})),
		col.New(4).Add(text.New("$"+formatMoney(p.TotalAmount), props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 2, Right: 1,
		})),
	)
}

func footerRows(p entity.Purchase, archivedAt *time.Time) []core.Row {
	legend := "Conserve este comprobante como soporte de su compra."
	if archivedAt != nil {
		legend = "Compra archivada el " + archivedAt.Format("02/01/2006 15:04") + ". " + legend
	}
	return []core.Row{
		row.New(3),
		row.New(40).Add(
			col.New(4).Add(code.NewQr(fmt.Sprintf("purchase:%d", p.ID), props.Rect{Percent: 95, Center: true})),
			col.New(8).Add(
				text.New("Escanee el código QR para consultar\nel estado de la compra.", props.Text{
					Size: 8, Top: 4, Left: 3, Color: colorGray,
				}),
				text.New(legend, props.Text{Size: 7, Top: 20, Left: 3, Color: colorGray}),
			),
		),
	}
}

// formatMoney formatea con puntos de miles y coma decimal. Ej: 1234567.5 → "1.234.567,50".
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + string(buf) + "," + frac
}
