// Package pdf renders the customer quote with maroto/v2. The document lists
// every accepted line with its three price columns, the pending terms, and a
// QR code pointing at the stored copy when one exists.
package pdf

import (
	"fmt"
	"time"

	"corralon_backend/internal/order"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	qrcode "github.com/skip2/go-qrcode"
)

// ── Colour palette ──────────────────────────────────────────────────────

var (
	colorPrimary   = &props.Color{Red: 17, Green: 24, Blue: 39}
	colorSecondary = &props.Color{Red: 107, Green: 114, Blue: 128}
	colorAccent    = &props.Color{Red: 194, Green: 65, Blue: 12}
	colorTableHead = &props.Color{Red: 255, Green: 237, Blue: 213}
	colorTableAlt  = &props.Color{Red: 249, Green: 250, Blue: 251}
	colorBorder    = &props.Color{Red: 226, Green: 232, Blue: 240}
)

const qrSize = 256

// ── Data struct ─────────────────────────────────────────────────────────

// QuoteDocument holds everything printed on the quote.
type QuoteDocument struct {
	Number       string
	BusinessName string
	CustomerID   string
	CreatedAt    time.Time
	ValidUntil   time.Time

	Items    []order.Item
	Totals   order.Amounts
	NotFound []string

	CashPercent     float64
	TransferPercent float64

	// DownloadURL is encoded as a QR code when set.
	DownloadURL string
	Location    *time.Location
}

// FileName is the attachment name sent to the customer.
func (d QuoteDocument) FileName() string {
	return "presupuesto-" + d.Number + ".pdf"
}

// GenerateQuotePDF renders the document.
func GenerateQuotePDF(data QuoteDocument) ([]byte, error) {
	cfg := config.NewBuilder().
		WithLeftMargin(15).
		WithTopMargin(12).
		WithRightMargin(15).
		Build()

	m := maroto.New(cfg)

	if err := m.RegisterFooter(buildFooter(data)); err != nil {
		return nil, fmt.Errorf("register footer: %w", err)
	}

	m.AddRows(buildHeader(data)...)
	m.AddRows(row.New(1).WithStyle(&props.Cell{
		BorderType:  border.Bottom,
		BorderColor: colorBorder,
	}))
	m.AddRows(row.New(6))

	m.AddRows(buildItemsTable(data)...)
	m.AddRows(row.New(4))
	m.AddRows(buildTotalsBlock(data)...)

	if len(data.NotFound) > 0 {
		m.AddRows(row.New(6))
		m.AddRows(buildPendingBlock(data.NotFound)...)
	}

	m.AddRows(row.New(8))
	m.AddRows(buildTerms(data)...)

	if data.DownloadURL != "" {
		qr, err := qrcode.Encode(data.DownloadURL, qrcode.Medium, qrSize)
		if err != nil {
			return nil, fmt.Errorf("encode qr: %w", err)
		}
		m.AddRows(row.New(6))
		m.AddRows(buildQRBlock(qr)...)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate PDF: %w", err)
	}

	return doc.GetBytes(), nil
}

// ── Header ──────────────────────────────────────────────────────────────

func buildHeader(data QuoteDocument) []core.Row {
	loc := data.location()
	return []core.Row{
		row.New(20).Add(
			col.New(6).Add(
				text.New(data.BusinessName, props.Text{
					Size:  14,
					Style: fontstyle.Bold,
					Color: colorPrimary,
					Top:   4,
				}),
			),
			col.New(6).Add(
				text.New("PRESUPUESTO", props.Text{
					Size:  22,
					Style: fontstyle.Bold,
					Align: align.Right,
					Color: colorAccent,
				}),
				text.New(data.Number, props.Text{
					Size:  11,
					Align: align.Right,
					Color: colorSecondary,
					Top:   11,
				}),
			),
		),
		row.New(5).Add(
			col.New(6).Add(text.New("Fecha: "+data.CreatedAt.In(loc).Format("02/01/2006 15:04"), props.Text{Size: 8, Color: colorSecondary})),
			col.New(6).Add(text.New("Válido hasta: "+data.ValidUntil.In(loc).Format("02/01/2006"), props.Text{Size: 8, Color: colorSecondary, Align: align.Right})),
		),
	}
}

// ── Line items table ────────────────────────────────────────────────────

func buildItemsTable(data QuoteDocument) []core.Row {
	headerStyle := props.Text{Size: 7.5, Style: fontstyle.Bold, Color: colorPrimary, Top: 1.5}
	headerStyleRight := props.Text{Size: 7.5, Style: fontstyle.Bold, Color: colorPrimary, Align: align.Right, Top: 1.5}

	rows := []core.Row{
		row.New(7).Add(
			col.New(5).Add(text.New("Producto", headerStyle)),
			col.New(1).Add(text.New("Cant.", headerStyleRight)),
			col.New(2).Add(text.New("Lista", headerStyleRight)),
			col.New(2).Add(text.New("Efectivo", headerStyleRight)),
			col.New(2).Add(text.New("Transferencia", headerStyleRight)),
		).WithStyle(&props.Cell{
			BackgroundColor: colorTableHead,
			BorderType:      border.Bottom,
			BorderColor:     colorBorder,
		}),
	}

	for i, item := range data.Items {
		rows = append(rows, buildItemRow(item, i))
	}
	return rows
}

func buildItemRow(item order.Item, idx int) core.Row {
	normalStyle := props.Text{Size: 8, Color: colorPrimary, Top: 1}
	rightStyle := props.Text{Size: 8, Color: colorPrimary, Align: align.Right, Top: 1}

	r := row.New(7).Add(
		col.New(5).Add(text.New(item.Title, normalStyle)),
		col.New(1).Add(text.New(order.FormatQty(item.Qty), rightStyle)),
		col.New(2).Add(text.New(order.FormatMoney(item.Amounts.List), rightStyle)),
		col.New(2).Add(text.New(order.FormatMoney(item.Amounts.Cash), rightStyle)),
		col.New(2).Add(text.New(order.FormatMoney(item.Amounts.Transfer), rightStyle)),
	)

	if idx%2 == 1 {
		r.WithStyle(&props.Cell{BackgroundColor: colorTableAlt})
	}
	return r
}

// ── Totals block ────────────────────────────────────────────────────────

func buildTotalsBlock(data QuoteDocument) []core.Row {
	labelStyle := props.Text{Size: 9, Color: colorSecondary, Align: align.Right}
	valueStyle := props.Text{Size: 9, Color: colorPrimary, Align: align.Right}
	strongStyle := props.Text{Size: 11, Style: fontstyle.Bold, Color: colorAccent, Align: align.Right}

	return []core.Row{
		row.New(1).WithStyle(&props.Cell{BorderType: border.Bottom, BorderColor: colorBorder}),
		row.New(3),
		row.New(6).Add(
			col.New(9).Add(text.New("Total lista", labelStyle)),
			col.New(3).Add(text.New(order.FormatMoney(data.Totals.List), valueStyle)),
		),
		row.New(6).Add(
			col.New(9).Add(text.New(fmt.Sprintf("Total transferencia (%s off)", percent(data.TransferPercent)), labelStyle)),
			col.New(3).Add(text.New(order.FormatMoney(data.Totals.Transfer), valueStyle)),
		),
		row.New(8).Add(
			col.New(9).Add(text.New(fmt.Sprintf("Total efectivo (%s off)", percent(data.CashPercent)), props.Text{Size: 11, Style: fontstyle.Bold, Color: colorPrimary, Align: align.Right})),
			col.New(3).Add(text.New(order.FormatMoney(data.Totals.Cash), strongStyle)),
		),
	}
}

// ── Pending terms ───────────────────────────────────────────────────────

func buildPendingBlock(terms []string) []core.Row {
	rows := []core.Row{
		row.New(7).Add(col.New(12).Add(text.New("SIN COTIZAR (consultar con un asesor)", props.Text{
			Size:  8,
			Style: fontstyle.Bold,
			Color: colorAccent,
		}))),
	}
	for _, t := range terms {
		rows = append(rows, row.New(5).Add(col.New(12).Add(text.New("• "+t, props.Text{Size: 8, Color: colorSecondary}))))
	}
	return rows
}

// ── Terms ───────────────────────────────────────────────────────────────

func buildTerms(data QuoteDocument) []core.Row {
	lines := []string{
		"Precios sujetos a disponibilidad de stock.",
		validityText(validityDays(data)),
		"El flete se cotiza aparte según la zona de entrega.",
	}
	rows := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, row.New(5).Add(col.New(12).Add(text.New(l, props.Text{Size: 7.5, Color: colorSecondary}))))
	}
	return rows
}

// ── QR ──────────────────────────────────────────────────────────────────

func buildQRBlock(png []byte) []core.Row {
	return []core.Row{
		row.New(30).Add(
			col.New(9).Add(text.New("Escaneá el código para descargar este presupuesto.", props.Text{
				Size:  8,
				Color: colorSecondary,
				Top:   12,
			})),
			col.New(3).Add(image.NewFromBytes(png, extension.Png, props.Rect{Percent: 100, Center: true})),
		),
	}
}

// ── Footer ──────────────────────────────────────────────────────────────

func buildFooter(data QuoteDocument) core.Row {
	return row.New(10).Add(
		col.New(12).Add(
			text.New(data.BusinessName+"  ·  "+data.Number, props.Text{
				Size:  6.5,
				Color: colorSecondary,
				Align: align.Center,
				Top:   4,
			}),
		),
	).WithStyle(&props.Cell{
		BorderType:  border.Top,
		BorderColor: colorBorder,
	})
}

// ── Helpers ─────────────────────────────────────────────────────────────

func (d QuoteDocument) location() *time.Location {
	if d.Location != nil {
		return d.Location
	}
	return time.UTC
}

func validityDays(d QuoteDocument) int {
	days := int(d.ValidUntil.Sub(d.CreatedAt).Hours()+12) / 24
	if days < 1 {
		return 1
	}
	return days
}

func validityText(days int) string {
	if days == 1 {
		return "Validez de precios: 1 día."
	}
	return fmt.Sprintf("Validez de precios: %d días.", days)
}

func percent(f float64) string {
	return fmt.Sprintf("%.0f%%", f*100)
}
