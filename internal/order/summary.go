package order

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const summaryTitleWidth = 19

// SummaryOptions configures RenderSummary.
type SummaryOptions struct {
	ValidityDays int
	FreightNote  string
}

// RenderSummary builds the chat summary: a compact monospace table, the cash
// total, validity and freight notes, and the pending terms.
func RenderSummary(items []Item, pending []string, opts SummaryOptions) string {
	if len(items) == 0 && len(pending) == 0 {
		return "📝 Tu presupuesto está vacío.\n\nEnviame tu lista de materiales para empezar."
	}

	var b strings.Builder
	if len(items) > 0 {
		b.WriteString("🧾 *Presupuesto*\n```\n")
		b.WriteString("CANT PRODUCTO           TOTAL\n")
		b.WriteString(strings.Repeat("-", 30) + "\n")
		for _, it := range items {
			fmt.Fprintf(&b, "%-4s %s %10s\n",
				FormatQty(it.Qty), pad(it.Title, summaryTitleWidth), FormatMoney(it.Amounts.List))
		}
		b.WriteString("```\n\n")
		fmt.Fprintf(&b, "💵 *TOTAL: %s*\n\n", FormatMoney(Totals(items).Cash))
		b.WriteString("_*Precio de referencia en efectivo_\n\n")
		b.WriteString(ValidityLine(opts.ValidityDays))
		if opts.FreightNote != "" {
			b.WriteString("\n\n" + opts.FreightNote)
		}
	}
	if len(pending) > 0 {
		if len(items) > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("⚠️ *Pendientes / especiales*")
		for _, p := range pending {
			b.WriteString("\n• " + p)
		}
	}
	return b.String()
}

// RenderList numbers the lines for edit prompts.
func RenderList(items []Item) string {
	var b strings.Builder
	for i, it := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s x %s (%s)", i+1, it.Title, FormatQty(it.Qty), FormatMoney(it.Amounts.List))
	}
	return b.String()
}

// ValidityLine states how long the prices hold.
func ValidityLine(days int) string {
	if days <= 1 {
		return "🕘 Validez de precios: 1 día."
	}
	return fmt.Sprintf("🕘 Validez de precios: %d días.", days)
}

func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n > width {
		r := []rune(s)
		return string(r[:width-1]) + "…"
	}
	return s + strings.Repeat(" ", width-n)
}
