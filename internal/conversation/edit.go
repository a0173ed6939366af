package conversation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"corralon_backend/internal/clarify"
	"corralon_backend/internal/intent"
	"corralon_backend/internal/order"
	"corralon_backend/internal/textnorm"
)

var (
	itemRowRe  = regexp.MustCompile(`^item_(\d+)$`)
	bareNumRe  = regexp.MustCompile(`^(?:el |la |item |linea |producto |nro |numero )?(\d+)$`)
	penultRe   = regexp.MustCompile(`\bpenultim[oa]\b`)
	lastRe     = regexp.MustCompile(`\bultim[oa]\b`)
	anaphoraRe = regexp.MustCompile(`\b(ese|esa|eso|el mismo|la misma|lo mismo|el anterior)\b`)
	editQtyRe  = regexp.MustCompile(`^(?:quiero |son |pone(?:le|me)? |cambia(?:lo|la)? a |dejalo en |dejala en |que sean )?(\d+(?:[.,]\d+)?)(?: \pL+)?$`)
)

func (t *turn) startEdit() {
	switch len(t.st.Items) {
	case 0:
		t.say("Tu presupuesto está vacío, no hay nada para editar.")
		return
	case 1:
		t.startVariantEdit(0)
		return
	}

	t.st.Awaiting = ItemEditSelect{}
	if len(t.st.Items) > MaxListRows {
		t.say("¿Qué producto querés cambiar? Respondé con el número:\n\n" + order.RenderList(t.st.Items))
		return
	}
	rows := make([]Row, len(t.st.Items))
	for i, it := range t.st.Items {
		rows[i] = Row{
			ID:          "item_" + strconv.Itoa(i+1),
			Title:       truncate(it.Title, maxRowTitle),
			Description: truncate(fmt.Sprintf("%s x %s", order.FormatQty(it.Qty), order.FormatMoney(it.Amounts.List)), maxRowDescription),
		}
	}
	t.emit(SendList{Text: "¿Qué producto querés cambiar?", ButtonLabel: "Ver productos", Section: "Productos", Rows: rows})
}

func isEditExit(in intent.Intent, folded string) bool {
	return in.Kind == intent.Cancel || in.Kind == intent.ExitHint || folded == "no" || skipRe.MatchString(folded)
}

func (t *turn) exitEdit() {
	t.st.Awaiting = nil
	t.say("Edición cancelada.")
	t.showSummary()
}

func (t *turn) resolveItemEdit(in intent.Intent) {
	if isEditExit(in, t.folded) {
		t.exitEdit()
		return
	}
	idx, ok := t.pickLine(t.text)
	if !ok {
		t.say("No reconocí el producto. Elegí uno de la lista o escribí *CANCELAR* para salir de la edición.")
		t.st.Awaiting = nil
		t.startEdit()
		return
	}
	t.startVariantEdit(idx)
}

// pickLine resolves a reply that names an order line by row id, number,
// positional reference or title words.
func (t *turn) pickLine(text string) (int, bool) {
	raw := strings.TrimSpace(text)
	if m := itemRowRe.FindStringSubmatch(raw); m != nil {
		return t.lineAt(m[1])
	}
	folded := textnorm.SpokenToDigits(textnorm.Fold(raw))
	if m := bareNumRe.FindStringSubmatch(folded); m != nil {
		return t.lineAt(m[1])
	}
	if idx, ok := t.resolveRef(folded); ok {
		return idx, true
	}
	return findLine(folded, t.st.Items)
}

func (t *turn) lineAt(raw string) (int, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > len(t.st.Items) {
		return 0, false
	}
	return n - 1, true
}

// startVariantEdit offers the products of the same family as line idx.
func (t *turn) startVariantEdit(idx int) {
	it := t.st.Items[idx]
	var options []clarify.Option
	if family := t.e.matcher.Category(it.Title); family != "" {
		options = clarify.Build(family, t.e.matcher.Family(family, t.snap, MaxListRows), it.Qty).Options
	}
	t.st.Awaiting = VariantEditSelect{Index: idx, Options: options}
	t.st.Touched = idx + 1

	if len(options) == 0 {
		t.say(fmt.Sprintf("Editando *%s* (x %s). Escribí la nueva cantidad.", it.Title, order.FormatQty(it.Qty)))
		return
	}
	t.present(clarify.Clarification{
		Question: fmt.Sprintf("Editando *%s* (x %s). Elegí el reemplazo o escribí la nueva cantidad.", it.Title, order.FormatQty(it.Qty)),
		Qty:      it.Qty,
		Options:  options,
	})
}

func (t *turn) resolveVariantEdit(aw VariantEditSelect, in intent.Intent) {
	if isEditExit(in, t.folded) {
		t.exitEdit()
		return
	}
	if aw.Index < 0 || aw.Index >= len(t.st.Items) {
		t.st.Awaiting = nil
		t.showSummary()
		return
	}

	if idx, ok := clarify.Resolve(t.text, aw.Options); ok {
		opt := aw.Options[idx]
		item, variant, found := t.lookup(opt.ItemID, opt.VariantID)
		if !found {
			t.say("Ese producto ya no está disponible en el catálogo.")
			t.exitEdit()
			return
		}
		cur := t.st.Items[aw.Index]
		items, at := order.Replace(t.st.Items, aw.Index, order.NewItem(item, variant, cur.Qty, t.e.settings.Discounts))
		t.st.Items = items
		t.st.Touched = at + 1
		t.st.Awaiting = nil
		t.say(fmt.Sprintf("✅ Cambié *%s* por *%s*.", cur.Title, opt.Title))
		t.showSummary()
		return
	}

	if m := editQtyRe.FindStringSubmatch(t.folded); m != nil {
		if qty, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64); err == nil {
			t.st.Awaiting = nil
			t.setQty(aw.Index, qty)
			return
		}
	}

	t.say("No reconocí la opción. Elegí un producto de la lista, escribí la nueva cantidad o *CANCELAR* para salir.")
	if len(aw.Options) > 0 {
		t.present(clarify.Clarification{Question: "Opciones:", Options: aw.Options})
	}
}

// setQty updates a line quantity, removing the line at zero, and shows the
// summary.
func (t *turn) setQty(idx int, qty float64) {
	if qty <= 0 {
		t.removeAt(idx)
		return
	}
	items, ok := order.SetQty(t.st.Items, idx, qty)
	if !ok {
		t.say("No encontré ese producto en tu presupuesto.")
		return
	}
	t.st.Items = items
	t.st.Touched = idx + 1
	t.say(fmt.Sprintf("✅ *%s* ahora x %s.", items[idx].Title, order.FormatQty(qty)))
	t.showSummary()
}

func (t *turn) removeAt(idx int) {
	if idx < 0 || idx >= len(t.st.Items) {
		t.say("No encontré ese producto en tu presupuesto.")
		return
	}
	title := t.st.Items[idx].Title
	items, _ := order.Remove(t.st.Items, idx)
	t.st.Items = items
	t.st.Touched = min(idx, len(items)-1) + 1
	t.say(fmt.Sprintf("🗑️ Quité *%s*.", title))
	t.showSummary()
}

func (t *turn) removeIndex(n int) {
	if n < 1 || n > len(t.st.Items) {
		t.badIndex(n)
		return
	}
	t.removeAt(n - 1)
}

func (t *turn) changeIndex(n int, qty float64) {
	if n < 1 || n > len(t.st.Items) {
		t.badIndex(n)
		return
	}
	if qty > largeQtyLimit {
		it := t.st.Items[n-1]
		t.st.Awaiting = AddConfirm{Purpose: ConfirmSetQty, Index: n - 1, Qty: qty}
		t.emit(SendButtons{
			Text: fmt.Sprintf("⚠️ ¿Confirmás *%s* unidades de *%s*?", order.FormatQty(qty), it.Title),
			Buttons: []Button{
				{ID: ButtonAddYes, Title: "✅ Sí"},
				{ID: ButtonAddNo, Title: "❌ No"},
			},
		})
		return
	}
	t.setQty(n-1, qty)
}

func (t *turn) badIndex(n int) {
	if len(t.st.Items) == 0 {
		t.say("Tu presupuesto está vacío.")
		return
	}
	t.say(fmt.Sprintf("No existe el producto %d. Estos son los que tenés:\n\n%s", n, order.RenderList(t.st.Items)))
}

func (t *turn) removeLast() {
	idx, ok := t.st.touchedIndex()
	if !ok {
		idx = len(t.st.Items) - 1
	}
	if idx < 0 {
		t.say("Tu presupuesto está vacío.")
		return
	}
	t.removeAt(idx)
}

// relative applies "sumale N", "sacale N", double and half to a referenced
// line.
func (t *turn) relative(in intent.Intent) {
	target := strings.TrimSpace(in.Target)
	idx, ok := t.resolveRef(target)
	if !ok && (in.Kind == intent.RelAdd || in.Kind == intent.RelSub) {
		idx, ok = findLine(target, t.st.Items)
	}
	if !ok && (in.Kind == intent.RelDouble || in.Kind == intent.RelHalf) {
		idx, ok = t.st.touchedIndex()
	}
	if !ok {
		t.unresolvedLine()
		return
	}

	cur := t.st.Items[idx].Qty
	step := math.Max(1, in.Qty)
	var qty float64
	switch in.Kind {
	case intent.RelAdd:
		qty = cur + step
	case intent.RelSub:
		qty = math.Max(0, cur-step)
	case intent.RelDouble:
		qty = cur * 2
	case intent.RelHalf:
		qty = math.Max(1, math.Round(cur/2))
	}
	t.setQty(idx, qty)
}

func (t *turn) naturalRemove(in intent.Intent) {
	if len(t.st.Items) == 0 {
		t.say("Tu presupuesto está vacío.")
		return
	}
	if in.Terms == "" && in.Qty > 0 && in.Qty == math.Trunc(in.Qty) {
		t.removeIndex(int(in.Qty))
		return
	}
	idx, ok := t.targetLine(in.Terms)
	if !ok {
		t.unresolvedLine()
		return
	}
	if cur := t.st.Items[idx].Qty; in.Qty > 0 && in.Qty < cur {
		t.setQty(idx, cur-in.Qty)
		return
	}
	t.removeAt(idx)
}

func (t *turn) naturalChange(in intent.Intent) {
	if len(t.st.Items) == 0 {
		t.say("Tu presupuesto está vacío.")
		return
	}
	idx, ok := t.targetLine(in.Terms)
	if !ok {
		t.unresolvedLine()
		return
	}
	if in.Qty <= 0 {
		t.startVariantEdit(idx)
		return
	}
	if in.Qty > largeQtyLimit {
		t.changeIndex(idx+1, in.Qty)
		return
	}
	t.setQty(idx, in.Qty)
}

func (t *turn) targetLine(terms string) (int, bool) {
	if terms == "" {
		return t.st.touchedIndex()
	}
	if idx, ok := t.resolveRef(terms); ok {
		return idx, true
	}
	return findLine(terms, t.st.Items)
}

func (t *turn) unresolvedLine() {
	if len(t.st.Items) == 0 {
		t.say("Tu presupuesto está vacío.")
		return
	}
	t.say("No pude identificar el producto. Estos son los que tenés:\n\n" + order.RenderList(t.st.Items) +
		"\n\nPodés escribir por ejemplo *quitar 2* o *cambiar 1 x 5*.")
}

// resolveRef maps positional references ("el 2", "el segundo", "el último",
// "eso") to a line index.
func (t *turn) resolveRef(folded string) (int, bool) {
	folded = textnorm.SpokenToDigits(textnorm.Fold(folded))
	n := len(t.st.Items)
	if n == 0 || folded == "" {
		return 0, false
	}
	if m := bareNumRe.FindStringSubmatch(folded); m != nil {
		return t.lineAt(m[1])
	}
	if k, ok := clarify.Ordinal(folded); ok {
		if k <= n {
			return k - 1, true
		}
		return 0, false
	}
	if penultRe.MatchString(folded) {
		if n >= 2 {
			return n - 2, true
		}
		return 0, false
	}
	if lastRe.MatchString(folded) {
		return n - 1, true
	}
	if anaphoraRe.MatchString(folded) {
		return t.st.touchedIndex()
	}
	return 0, false
}

// findLine resolves free-text terms to an order line: normalized substring
// containment first, then word overlap with numeric agreement. Ambiguous
// terms resolve to nothing.
func findLine(terms string, items []order.Item) (int, bool) {
	search := textnorm.Fold(terms)
	if len(search) < 2 || len(items) == 0 {
		return 0, false
	}

	titles := make([]string, len(items))
	for i, it := range items {
		titles[i] = textnorm.Fold(it.Title)
	}

	if idx, n := uniqueMatch(titles, func(title string) bool {
		return strings.Contains(title, search) || strings.Contains(search, title)
	}); n > 0 {
		return idx, n == 1
	}

	words, numbers := significant(search)
	if len(words) == 0 {
		return 0, false
	}
	need := min(2, len(words))
	idx, n := uniqueMatch(titles, func(title string) bool {
		titleWords, titleNumbers := significant(title)
		for num := range numbers {
			if !titleNumbers[num] {
				return false
			}
		}
		hits := 0
		for _, w := range words {
			for _, tw := range titleWords {
				if strings.Contains(tw, w) || strings.Contains(w, tw) {
					hits++
					break
				}
			}
		}
		return hits >= need
	})
	return idx, n == 1
}

func uniqueMatch(titles []string, match func(string) bool) (int, int) {
	idx, n := -1, 0
	for i, title := range titles {
		if match(title) {
			if n == 0 {
				idx = i
			}
			n++
		}
	}
	return idx, n
}

var connectors = map[string]bool{"del": true, "con": true, "por": true, "para": true, "los": true, "las": true, "una": true}

// significant splits folded text into words longer than two letters and
// numeric tokens.
func significant(folded string) ([]string, map[string]bool) {
	var words []string
	numbers := make(map[string]bool)
	for _, w := range textnorm.Tokens(folded) {
		switch {
		case textnorm.IsNumeral(w):
			numbers[w] = true
		case len(w) > 2 && !connectors[w]:
			words = append(words, textnorm.Singular(w))
		}
	}
	return words, numbers
}
