// Package conversation resolves one inbound message against the stored
// conversation state. It is pure: ResolveTurn returns the next state and the
// actions to deliver, and never performs I/O.
package conversation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"corralon_backend/internal/catalog"
	"corralon_backend/internal/intent"
	"corralon_backend/internal/matcher"
	"corralon_backend/internal/order"
	"corralon_backend/internal/textnorm"
	"corralon_backend/internal/vocab"
)

// Quick-reply identifiers. The inbound shell maps them back to commands.
const (
	ButtonFinalize  = "finalize"
	ButtonEdit      = "edit"
	ButtonCancel    = "confirm_no"
	ButtonCancelYes = "cancel_yes"
	ButtonCancelNo  = "cancel_no"
	ButtonAddYes    = "confirm_add_yes"
	ButtonAddNo     = "confirm_add_no"
)

// unknownLimit is the number of consecutive unclassified messages after which
// a human is suggested.
const unknownLimit = 3

// largeQtyLimit triggers a confirmation before an index change is applied.
const largeQtyLimit = 1000

// Settings are the business parameters of the engine.
type Settings struct {
	BusinessName string
	Discounts    order.Discounts
	ValidityDays int
	// Now and NewID are overridable for tests.
	Now   func() time.Time
	NewID func() string
}

// Engine is safe for concurrent use; all per-conversation data travels in
// State.
type Engine struct {
	matcher  *matcher.Matcher
	intents  *intent.Classifier
	vocab    *vocab.Vocabulary
	settings Settings
}

// NewEngine wires the matcher, classifier and vocabulary together.
func NewEngine(m *matcher.Matcher, c *intent.Classifier, v *vocab.Vocabulary, s Settings) *Engine {
	if s.Now == nil {
		s.Now = time.Now
	}
	if s.NewID == nil {
		s.NewID = shortID
	}
	if s.ValidityDays <= 0 {
		s.ValidityDays = 1
	}
	return &Engine{matcher: m, intents: c, vocab: v, settings: s}
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}

var cancelYesRe = regexp.MustCompile(`^cancelar si$`)

// turn accumulates the outcome of one ResolveTurn call.
type turn struct {
	e      *Engine
	st     State
	snap   *catalog.Snapshot
	text   string
	folded string
	out    []Action
}

// ResolveTurn applies text to state. The input state is never modified; the
// returned state is the one to persist unless an EndSession action is
// present.
func (e *Engine) ResolveTurn(state State, text string, snap *catalog.Snapshot) (State, []Action) {
	t := &turn{
		e:      e,
		st:     state.Clone(),
		snap:   snap,
		text:   strings.TrimSpace(text),
		folded: textnorm.SpokenToDigits(textnorm.Fold(text)),
	}
	if t.st.StartedAt.IsZero() {
		t.st.StartedAt = e.settings.Now()
	}

	in := e.intents.Classify(t.text)

	// A fresh multi-line list starts a new quote unless an edit is underway.
	if in.List && !editing(t.st.Awaiting) {
		t.st = State{StartedAt: t.st.StartedAt}
	}

	switch aw := t.st.Awaiting.(type) {
	case ItemEditSelect:
		t.resolveItemEdit(in)
	case VariantEditSelect:
		t.resolveVariantEdit(aw, in)
	case CancelConfirm:
		t.resolveCancel()
	case AddConfirm:
		t.resolveAddConfirm(aw)
	case OptionSelect:
		t.resolveOption(aw)
	case ClarificationQueue:
		t.resolveQueue(aw)
	default:
		t.dispatch(in)
	}
	return t.st, t.out
}

func editing(aw Awaiting) bool {
	switch aw.(type) {
	case ItemEditSelect, VariantEditSelect:
		return true
	}
	return false
}

func (t *turn) emit(a ...Action) {
	t.out = append(t.out, a...)
}

func (t *turn) say(text string) {
	t.out = append(t.out, SendText{Text: text})
}

func (t *turn) render(reply string) string {
	s := t.e.settings
	return vocab.Render(reply, s.BusinessName, s.Discounts.Cash, s.Discounts.Transfer)
}

func (t *turn) dispatch(in intent.Intent) {
	if in.Kind != intent.Unknown {
		t.st.UnknownCount = 0
	}
	replies := t.e.vocab.Replies

	switch in.Kind {
	case intent.Help:
		t.say(t.render(replies.Help))
	case intent.View:
		t.showSummary()
	case intent.Confirm:
		t.finalize()
	case intent.Edit:
		t.startEdit()
	case intent.Cancel:
		t.askCancel()
	case intent.ExitHint:
		t.say("Para salir del presupuesto escribí *CANCELAR*. Para generarlo escribí *CONFIRMAR*.")
	case intent.Human:
		t.say(t.render(replies.HumanRequested))
		t.emit(Handoff{Reason: "requested"})
	case intent.Start:
		t.greet()
	case intent.RemoveIndex:
		t.removeIndex(in.Index)
	case intent.ChangeIndex:
		t.changeIndex(in.Index, in.Qty)
	case intent.RelAdd, intent.RelSub, intent.RelDouble, intent.RelHalf:
		t.relative(in)
	case intent.RemoveLast:
		t.removeLast()
	case intent.Remove:
		t.naturalRemove(in)
	case intent.Change:
		t.naturalChange(in)
	case intent.Add:
		t.add(in)
	case intent.Price:
		t.priceLookup(in.Terms, in.Qty)
	case intent.ListCategory:
		t.listCategory(in.Terms)
	case intent.FAQHours:
		t.say(t.render(replies.Hours))
	case intent.FAQLocation:
		t.say(t.render(replies.Location))
	case intent.FAQPayment:
		t.say(t.render(replies.Payment))
	case intent.FAQDelivery:
		t.say(t.render(replies.Delivery))
	case intent.FAQStock:
		t.say(t.render(replies.Stock))
	default:
		t.unknown()
	}
}

func (t *turn) greet() {
	if len(t.st.Items) > 0 {
		t.say("Seguimos con tu presupuesto. Acá va el estado 👇")
		t.showSummary()
		return
	}
	t.say(t.render(t.e.vocab.Replies.Greeting))
}

func (t *turn) unknown() {
	t.st.UnknownCount++
	t.emit(RecordUnknown{Text: t.text})
	if t.st.UnknownCount >= unknownLimit {
		t.st.UnknownCount = 0
		t.say(t.render(t.e.vocab.Replies.Handoff))
		return
	}
	t.say("No te entendí 🤔. Mandame tu lista de materiales (por ejemplo *10 cemento*) o escribí *AYUDA*.")
}

func (t *turn) askCancel() {
	if cancelYesRe.MatchString(t.folded) {
		t.cancel()
		return
	}
	t.st.Awaiting = CancelConfirm{}
	t.emit(SendButtons{
		Text: "¿Seguro que querés cancelar el presupuesto? Se borran todos los productos.",
		Buttons: []Button{
			{ID: ButtonCancelYes, Title: "✅ Sí, cancelar"},
			{ID: ButtonCancelNo, Title: "↩️ No, seguir"},
		},
	})
}

func (t *turn) cancel() {
	t.st = State{}
	t.say("Presupuesto cancelado ✅. Cuando quieras, mandame una nueva lista.")
	t.emit(EndSession{})
}

func (t *turn) finalize() {
	if len(t.st.Items) == 0 {
		t.say("Tu presupuesto está vacío. Mandame tu lista de materiales para empezar.")
		return
	}
	now := t.e.settings.Now()
	q := Quote{
		Number:     fmt.Sprintf("P-%s-%s", now.Format("20060102"), t.e.settings.NewID()),
		Items:      t.st.Items,
		Totals:     order.Totals(t.st.Items),
		NotFound:   t.st.NotFound,
		CreatedAt:  now,
		ValidUntil: now.AddDate(0, 0, t.e.settings.ValidityDays),
	}
	t.st = State{}
	t.say("Generando tu presupuesto en PDF… 📄")
	t.emit(EmitQuote{Quote: q}, EndSession{})
}

func (t *turn) summaryOptions() order.SummaryOptions {
	return order.SummaryOptions{
		ValidityDays: t.e.settings.ValidityDays,
		FreightNote:  t.render(t.e.vocab.Replies.FreightNote),
	}
}

// showSummary sends the order table followed by the action buttons.
func (t *turn) showSummary() {
	t.say(order.RenderSummary(t.st.Items, t.st.NotFound, t.summaryOptions()))
	if len(t.st.Items) == 0 {
		return
	}
	t.emit(SendButtons{
		Text: "¿Qué querés hacer?",
		Buttons: []Button{
			{ID: ButtonFinalize, Title: "✅ Finalizar"},
			{ID: ButtonEdit, Title: "✏️ Editar"},
			{ID: ButtonCancel, Title: "❌ Cancelar"},
		},
	})
}
