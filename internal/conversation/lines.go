package conversation

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"corralon_backend/internal/catalog"
	"corralon_backend/internal/clarify"
	"corralon_backend/internal/intent"
	"corralon_backend/internal/matcher"
	"corralon_backend/internal/order"
	"corralon_backend/internal/quantity"
	"corralon_backend/internal/segment"
	"corralon_backend/internal/textnorm"
)

// progressLines is the list size from which a "reading your list" notice is
// sent first.
const progressLines = 3

// requestLine turns a raw line into the normalized product request and its
// quantity. ok is false for lines that carry no product text.
func (e *Engine) requestLine(raw string) (string, float64, bool) {
	folded := intent.StripFiller(textnorm.SpokenToDigits(textnorm.Fold(raw)))
	if folded == "" || intent.IsGreeting(folded) {
		return "", 0, false
	}
	qty, rest := quantity.Extract(e.matcher.Normalize(folded))
	if utf8.RuneCountInString(rest) < 2 || e.vocab.IsReserved(rest) {
		return "", 0, false
	}
	return rest, qty, true
}

// accept prices a matched variant, converting presentation words in the
// request into the catalog unit.
func (e *Engine) accept(request string, item catalog.Item, variant catalog.Variant, qty float64) order.Item {
	title := catalog.DisplayTitle(item, variant)
	if converted, ok := e.vocab.Units.Convert(request, title, qty); ok {
		qty = converted
	}
	return order.NewItem(item, variant, qty, e.settings.Discounts)
}

// add handles an Add intent: an existing line named by the terms grows,
// anything else goes through the list pipeline.
func (t *turn) add(in intent.Intent) {
	if !in.List && in.Terms != "" && len(t.st.Items) > 0 {
		if idx, ok := findLine(in.Terms, t.st.Items); ok {
			qty := in.Qty
			if qty <= 0 {
				qty = 1
			}
			t.setQty(idx, t.st.Items[idx].Qty+qty)
			return
		}
	}
	t.addLines(t.text)
}

// addLines matches every line of text and commits all outcomes at once.
func (t *turn) addLines(text string) {
	lines := segment.Segment(text)
	if len(lines) >= progressLines {
		t.say("Estoy leyendo tu lista y buscando los productos en el catálogo… 🧱🔍")
	}

	items := t.st.Items
	touched := t.st.Touched
	var added []order.Item
	var pending []clarify.Clarification
	var missing []string

	for _, raw := range lines {
		req, qty, ok := t.e.requestLine(raw)
		if !ok {
			continue
		}
		switch r := t.e.matcher.Match(req, t.snap, qty).(type) {
		case matcher.Accepted:
			it := t.e.accept(req, r.Item, r.Variant, r.Qty)
			var idx int
			items, idx = order.Merge(items, it)
			touched = idx + 1
			added = append(added, it)
		case matcher.Clarify:
			pending = append(pending, r.Clarification)
		case matcher.NotFound:
			missing = append(missing, strings.TrimSpace(raw))
		}
	}

	if len(added) == 0 && len(pending) == 0 && len(missing) == 0 {
		t.unknown()
		return
	}

	t.st.Items = items
	t.st.Touched = touched
	t.recordMissing(missing)

	if len(pending) > 0 {
		if len(added) > 0 {
			t.say(addedMessage(added))
		}
		if len(pending) > 1 {
			t.say(fmt.Sprintf("Necesito que me aclares %d productos, de a uno 👇", len(pending)))
		}
		t.st.Awaiting = ClarificationQueue{Active: pending[0], Queue: pending[1:]}
		t.present(pending[0])
		return
	}

	if len(added) == 0 {
		t.say(notFoundMessage(missing))
		return
	}
	t.showSummary()
}

func (t *turn) recordMissing(missing []string) {
	if len(missing) == 0 {
		return
	}
	for _, m := range missing {
		if !slices.Contains(t.st.NotFound, m) {
			t.st.NotFound = append(t.st.NotFound, m)
		}
	}
	t.emit(RecordNotFound{Terms: missing})
}

func addedMessage(items []order.Item) string {
	var b strings.Builder
	b.WriteString("Agregué:")
	for _, it := range items {
		fmt.Fprintf(&b, "\n✅ *%s x %s*", order.FormatQty(it.Qty), it.Title)
	}
	return b.String()
}

func notFoundMessage(missing []string) string {
	var b strings.Builder
	b.WriteString("No encontré en el catálogo:")
	for _, m := range missing {
		b.WriteString("\n• " + m)
	}
	b.WriteString("\n\nProbá escribirlo de otra forma (por ejemplo *cemento 50kg*) o escribí *ASESOR* para hablar con una persona.")
	return b.String()
}

// present shows a clarification as a list prompt when it fits, otherwise as
// numbered text.
func (t *turn) present(c clarify.Clarification) {
	if len(c.Options) <= MaxListRows {
		rows := make([]Row, len(c.Options))
		for i, o := range c.Options {
			rows[i] = Row{
				ID:          clarify.RowID(i),
				Title:       truncate(o.Title, maxRowTitle),
				Description: truncate(optionDescription(o), maxRowDescription),
			}
		}
		t.emit(SendList{Text: c.Question, ButtonLabel: "Ver opciones", Section: "Opciones", Rows: rows})
		return
	}

	var b strings.Builder
	b.WriteString(c.Question + "\n")
	for i, o := range c.Options {
		fmt.Fprintf(&b, "\n%d. *%s*", i+1, o.Title)
		if o.PriceCents > 0 {
			b.WriteString(" " + order.FormatMoney(o.PriceCents))
		}
	}
	b.WriteString("\n\n👇 Respondé con el número de la opción.")
	t.say(b.String())
}

func optionDescription(o clarify.Option) string {
	if o.PriceCents <= 0 {
		return o.Title
	}
	return order.FormatMoney(o.PriceCents) + " · " + o.Title
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

// priceLookup answers "precio de X": a single match becomes an offer to add
// it, several become an option list.
func (t *turn) priceLookup(terms string, qty float64) {
	req, extracted, ok := t.e.requestLine(terms)
	if !ok {
		t.unknown()
		return
	}
	if qty <= 0 {
		qty = extracted
	}
	switch r := t.e.matcher.Match(req, t.snap, qty).(type) {
	case matcher.Accepted:
		t.offer(req, r.Item, r.Variant, r.Qty)
	case matcher.Clarify:
		c := r.Clarification
		t.st.Awaiting = OptionSelect{Purpose: SelectPrice, Question: c.Question, Options: c.Options, Qty: c.Qty}
		t.present(c)
	default:
		t.recordMissing([]string{terms})
		t.say(notFoundMessage([]string{terms}))
	}
}

// offer quotes one variant and asks whether to add it.
func (t *turn) offer(request string, item catalog.Item, variant catalog.Variant, qty float64) {
	line := t.e.accept(request, item, variant, qty)
	unit := order.Compute(variant.PriceCents, variant.CompareAtCents, 1, t.e.settings.Discounts)
	t.st.Awaiting = AddConfirm{Purpose: ConfirmAdd, ItemID: item.ID, VariantID: variant.ID, Qty: line.Qty}
	t.emit(SendButtons{
		Text: fmt.Sprintf("💲 *%s*\nLista: %s\nEfectivo: %s\nTransferencia: %s\n\n¿Lo agrego x %s al presupuesto?",
			line.Title,
			order.FormatMoney(unit.List),
			order.FormatMoney(unit.Cash),
			order.FormatMoney(unit.Transfer),
			order.FormatQty(line.Qty)),
		Buttons: []Button{
			{ID: ButtonAddYes, Title: "✅ Sí, agregar"},
			{ID: ButtonAddNo, Title: "❌ No"},
		},
	})
}

// listCategory offers the variants of a product family.
func (t *turn) listCategory(terms string) {
	cands := t.e.matcher.Family(terms, t.snap, MaxListRows)
	if len(cands) == 0 {
		t.recordMissing([]string{terms})
		t.say(fmt.Sprintf("No encontré productos de *%s* en el catálogo.", terms))
		return
	}
	c := clarify.Build(terms, cands, 1)
	c.Question = fmt.Sprintf("Estos son los productos de *%s* que tenemos. Elegí uno para agregarlo 👇", terms)
	t.st.Awaiting = OptionSelect{Purpose: SelectCategory, Question: c.Question, Options: c.Options, Qty: 1}
	t.present(c)
}

// lookup resolves an option against the current snapshot.
func (t *turn) lookup(itemID, variantID string) (catalog.Item, catalog.Variant, bool) {
	item, ok := t.snap.Find(itemID)
	if !ok {
		return catalog.Item{}, catalog.Variant{}, false
	}
	variant, ok := item.Variant(variantID)
	return item, variant, ok
}
