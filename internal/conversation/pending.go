package conversation

import (
	"fmt"
	"regexp"

	"corralon_backend/internal/clarify"
	"corralon_backend/internal/intent"
	"corralon_backend/internal/order"
)

var skipRe = regexp.MustCompile(`^(ninguno|ninguna|ninguno de esos|ninguna de esas|saltear|saltealo|salteala|omitir|siguiente)$`)

func (t *turn) resolveCancel() {
	switch {
	case cancelYesRe.MatchString(t.folded) || intent.IsYes(t.text):
		t.cancel()
	case intent.IsNo(t.text):
		t.st.Awaiting = nil
		t.say("Perfecto, seguimos con tu presupuesto 👍")
		t.showSummary()
	default:
		t.askCancel()
	}
}

func (t *turn) resolveAddConfirm(aw AddConfirm) {
	switch {
	case intent.IsYes(t.text):
		t.st.Awaiting = nil
		t.confirmAdd(aw)
	case intent.IsNo(t.text):
		t.st.Awaiting = nil
		if aw.Purpose == ConfirmSetQty {
			t.say("Listo, dejé la cantidad como estaba.")
		} else {
			t.say("Listo, no lo agrego.")
		}
		t.showSummary()
	default:
		t.emit(SendButtons{
			Text: "Respondé *SÍ* o *NO*, por favor.",
			Buttons: []Button{
				{ID: ButtonAddYes, Title: "✅ Sí"},
				{ID: ButtonAddNo, Title: "❌ No"},
			},
		})
	}
}

func (t *turn) confirmAdd(aw AddConfirm) {
	if aw.Purpose == ConfirmSetQty {
		if aw.Index < 0 || aw.Index >= len(t.st.Items) {
			t.say("Ese producto ya no está en tu presupuesto.")
			t.showSummary()
			return
		}
		t.setQty(aw.Index, aw.Qty)
		return
	}
	item, variant, ok := t.lookup(aw.ItemID, aw.VariantID)
	if !ok {
		t.say("Ese producto ya no está disponible en el catálogo.")
		t.showSummary()
		return
	}
	t.merge(order.NewItem(item, variant, aw.Qty, t.e.settings.Discounts))
	t.showSummary()
}

// resolveOption handles a pick from a price or category listing.
func (t *turn) resolveOption(aw OptionSelect) {
	if skipRe.MatchString(t.folded) || intent.IsNo(t.text) {
		t.st.Awaiting = nil
		t.say("Listo, no agrego nada.")
		return
	}
	idx, ok := clarify.Resolve(t.text, aw.Options)
	if !ok {
		t.say("No reconocí la opción. Elegí una de la lista o escribí *NINGUNO*.")
		t.present(clarify.Clarification{Question: aw.Question, Qty: aw.Qty, Options: aw.Options})
		return
	}
	opt := aw.Options[idx]
	item, variant, found := t.lookup(opt.ItemID, opt.VariantID)
	if !found {
		t.st.Awaiting = nil
		t.say("Ese producto ya no está disponible en el catálogo.")
		return
	}
	t.st.Awaiting = nil
	if aw.Purpose == SelectPrice {
		t.offer(opt.Title, item, variant, aw.Qty)
		return
	}
	t.merge(t.e.accept(opt.Title, item, variant, aw.Qty))
	t.showSummary()
}

// resolveQueue answers the active clarification. A miss re-prompts and
// leaves the queue as it was; a hit or a skip advances it.
func (t *turn) resolveQueue(aw ClarificationQueue) {
	active := aw.Active
	if skipRe.MatchString(t.folded) {
		t.recordMissing([]string{active.Line})
		t.say(fmt.Sprintf("Salteé *%s*, queda en pendientes.", active.Line))
		t.advance(aw)
		return
	}

	idx, ok := clarify.Resolve(t.text, active.Options)
	if !ok {
		t.say("No reconocí la opción. Elegí una de la lista o escribí *NINGUNO* para saltear este producto.")
		t.present(active)
		return
	}
	opt := active.Options[idx]
	item, variant, found := t.lookup(opt.ItemID, opt.VariantID)
	if !found {
		t.recordMissing([]string{active.Line})
		t.say(fmt.Sprintf("*%s* ya no está disponible, lo dejé en pendientes.", opt.Title))
		t.advance(aw)
		return
	}
	it := t.e.accept(active.Line, item, variant, active.Qty)
	t.merge(it)
	t.say(fmt.Sprintf("✅ Agregado: *%s x %s*", order.FormatQty(it.Qty), it.Title))
	t.advance(aw)
}

func (t *turn) advance(aw ClarificationQueue) {
	if len(aw.Queue) == 0 {
		t.st.Awaiting = nil
		t.showSummary()
		return
	}
	next := ClarificationQueue{Active: aw.Queue[0], Queue: aw.Queue[1:]}
	t.st.Awaiting = next
	t.present(next.Active)
}

// merge adds a priced line and marks it as the last touched one.
func (t *turn) merge(it order.Item) {
	items, idx := order.Merge(t.st.Items, it)
	t.st.Items = items
	t.st.Touched = idx + 1
}
