// Package intent classifies a free-text customer message into the command it
// most likely expresses. Rules are checked in a fixed precedence order so
// that navigation words win over product text.
package intent

import (
	"regexp"
	"strconv"
	"strings"

	"corralon_backend/internal/quantity"
	"corralon_backend/internal/segment"
	"corralon_backend/internal/textnorm"
)

// Kind names a classified command.
type Kind string

const (
	Unknown      Kind = "unknown"
	Add          Kind = "add"
	Help         Kind = "help"
	View         Kind = "view"
	Confirm      Kind = "confirm"
	Edit         Kind = "edit"
	Cancel       Kind = "cancel"
	ExitHint     Kind = "exit_hint"
	Human        Kind = "human"
	Start        Kind = "start"
	Yes          Kind = "yes"
	No           Kind = "no"
	RemoveIndex  Kind = "remove_index"
	ChangeIndex  Kind = "change_index"
	RelAdd       Kind = "rel_add"
	RelSub       Kind = "rel_sub"
	RelDouble    Kind = "rel_double"
	RelHalf      Kind = "rel_half"
	RemoveLast   Kind = "remove_last"
	Remove       Kind = "remove"
	Change       Kind = "change"
	Price        Kind = "price"
	ListCategory Kind = "list_category"
	FAQHours     Kind = "faq_hours"
	FAQLocation  Kind = "faq_location"
	FAQPayment   Kind = "faq_payment"
	FAQDelivery  Kind = "faq_delivery"
	FAQStock     Kind = "faq_stock"
)

// DynamicKinds are the kinds an administrator may attach phrases to.
var DynamicKinds = []Kind{View, Confirm, Cancel, Human, Start}

// Intent is a classified message. Qty is zero when the message names none.
type Intent struct {
	Kind   Kind
	Index  int
	Qty    float64
	Terms  string
	Target string
	// List is set when the message looked like a multi-item materials list.
	List bool
}

// PhraseSource matches administrator-defined phrases against folded text.
type PhraseSource interface {
	MatchPhrase(folded string) (Kind, bool)
}

// Classifier is safe for concurrent use.
type Classifier struct {
	phrases PhraseSource
}

// New returns a classifier. phrases may be nil.
func New(phrases PhraseSource) *Classifier {
	return &Classifier{phrases: phrases}
}

var (
	yesRe      = regexp.MustCompile(`\b(si|dale|ok|okay|okey|oki|confirmo|perfecto|joya|va|de una|listo|mandalo|enviame|enviar|pasalo|hacelo|cerralo)\b`)
	noRe       = regexp.MustCompile(`\b(no|nop|nope|mejor no|dejalo|dejemoslo|mas tarde|paso|no gracias|seguimos|continuar|continua)\b`)
	viewRe     = regexp.MustCompile(`\b(ver|resumen|mostrar|mostrame|listado|detalle|estado|como va|status|tabla)\b`)
	confirmRe  = regexp.MustCompile(`\b(confirmar|cerrar\s*presupuesto|finalizar|generar|hacer\s*pdf|enviar\s*pdf|mandar\s*pdf|mandalo|mandame\s*el\s*pdf|cerralo|ok|listo|confirmo)\b`)
	editRe     = regexp.MustCompile(`\b(editar|edit|modificar lista|cambiar lista)\b`)
	cancelRe   = regexp.MustCompile(`\b(cancelar|cancelalo|cancelame|cerrar|terminar|descartar|borrar\s*todo|vaciar|abortar)\b`)
	exitRe     = regexp.MustCompile(`\b(salir|volver|menu)\b`)
	humanRe    = regexp.MustCompile(`\b(asesor|humano|vendedor|me atiende alguien|persona)\b`)
	helpRe     = regexp.MustCompile(`\b(ayuda|help|como funciona|comandos?)\b`)
	greetingRe = regexp.MustCompile(`^(hola|buen dia|buenos dias|buenas|buenas tardes|buenas noches|que tal|menu|inicio|start|hello|hi|ahola|holaa|holis)( (hola|buen dia|buenos dias|buenas|que tal))*$`)

	removeIndexRe = regexp.MustCompile(`^quitar (\d+)$`)
	changeIndexRe = regexp.MustCompile(`^cambiar (\d+) ?x ?(\d+(?:[.,]\d+)?)$`)
	relAddRe      = regexp.MustCompile(`\b(?:sumale|agregale|sumar) (\d+(?:[.,]\d+)?) al? (.+)`)
	relSubRe      = regexp.MustCompile(`\b(?:sacale|quitale|restale) (\d+(?:[.,]\d+)?) al? (.+)`)
	relDoubleRe   = regexp.MustCompile(`\b(duplicalo|duplicar|al doble)\b`)
	relHalfRe     = regexp.MustCompile(`\b(a la mitad|mitad|dividilo en 2|partilo en 2|media cantidad)\b`)
	removeLastRe  = regexp.MustCompile(`^(sacalo|quitalo|borralo|eliminalo)$`)

	addVerbRe    = regexp.MustCompile(`\b(agreg|sum|quiero|necesit|pone|ponelo|trae|manda|presupuestame|pasame)\w*`)
	removeVerbRe = regexp.MustCompile(`\b(sac|quit|borr|elimin)\w*|\bsin\b`)
	changeVerbRe = regexp.MustCompile(`\b(cambi|modific|dejalo|dejarlo|llevalo|subilo|bajalo|ajustalo|ajustar)\w*`)
	priceRe      = regexp.MustCompile(`\b(precio|costo|cuanto sale|cuanto esta|tenes|hay|disponible)\b`)
	categoryRe   = regexp.MustCompile(`\bque ([\pL\d/ -]+?) (tenes|hay|disponibles?)\b`)

	hoursRe    = regexp.MustCompile(`\b(horarios?|abren|cierran|abierto|cerrado)\b`)
	locationRe = regexp.MustCompile(`\b(ubicacion|donde estan|direccion|como llego)\b`)
	paymentRe  = regexp.MustCompile(`\b(pagos?|tarjeta|efectivo|transferencia|mercado ?pago|mp)\b`)
	deliveryRe = regexp.MustCompile(`\b(envios?|envian|reparto|delivery|entregan)\b`)
	stockRe    = regexp.MustCompile(`\b(stock|disponible|entra|ingresa)\b`)

	fillerRe = regexp.MustCompile(`\b(agrega(me|le)?|agregar|suma(me|le|r)?|pone(me|le|lo)?|presupuesta(me)?|pasa(me)?|quiero|queria|necesito|necesitaria|traeme|mandame|` +
		`saca(me|le|lo)?|sacar|quita(me|le|lo)?|quitar|borra(me|le|lo)?|borrar|elimina(me|le|lo)?|eliminar|` +
		`cambia(me|le|lo)?|cambiar|modifica(me|le|lo)?|modificar|dejalo en|llevalo a|` +
		`precio( de)?|precios|costo|cuanto sale|cuanto esta|hay|tenes|disponible|` +
		`por favor|porfa|pf|gracias|hola|buenas|buen dia|menu|inicio|el|la|los|las)\b`)
)

// Classify returns the intent of text.
func (c *Classifier) Classify(text string) Intent {
	raw := strings.TrimSpace(text)
	t := textnorm.SpokenToDigits(textnorm.Fold(raw))
	if t == "" {
		return Intent{Kind: Unknown}
	}

	if segment.IsLikelyList(raw) {
		return Intent{Kind: Add, List: true}
	}

	switch {
	case helpRe.MatchString(t):
		return Intent{Kind: Help}
	case viewRe.MatchString(t):
		return Intent{Kind: View}
	case confirmRe.MatchString(t):
		return Intent{Kind: Confirm}
	case editRe.MatchString(t):
		return Intent{Kind: Edit}
	case cancelRe.MatchString(t):
		return Intent{Kind: Cancel}
	case exitRe.MatchString(t):
		return Intent{Kind: ExitHint}
	case humanRe.MatchString(t):
		return Intent{Kind: Human}
	}

	if c.phrases != nil {
		if k, ok := c.phrases.MatchPhrase(t); ok {
			return Intent{Kind: k}
		}
	}

	if greetingRe.MatchString(t) {
		return Intent{Kind: Start}
	}
	if yesRe.MatchString(t) {
		return Intent{Kind: Yes}
	}
	if noRe.MatchString(t) {
		return Intent{Kind: No}
	}

	if m := removeIndexRe.FindStringSubmatch(t); m != nil {
		n, _ := strconv.Atoi(m[1])
		return Intent{Kind: RemoveIndex, Index: n}
	}
	if m := changeIndexRe.FindStringSubmatch(t); m != nil {
		n, _ := strconv.Atoi(m[1])
		return Intent{Kind: ChangeIndex, Index: n, Qty: parseNumber(m[2])}
	}
	if m := relAddRe.FindStringSubmatch(t); m != nil {
		return Intent{Kind: RelAdd, Qty: parseNumber(m[1]), Target: m[2]}
	}
	if m := relSubRe.FindStringSubmatch(t); m != nil {
		return Intent{Kind: RelSub, Qty: parseNumber(m[1]), Target: m[2]}
	}
	if relDoubleRe.MatchString(t) {
		return Intent{Kind: RelDouble, Target: t}
	}
	if relHalfRe.MatchString(t) {
		return Intent{Kind: RelHalf, Target: t}
	}
	if removeLastRe.MatchString(t) {
		return Intent{Kind: RemoveLast}
	}

	terms := StripFiller(t)
	var qty float64
	if q, rest, ok := quantity.Explicit(terms); ok {
		qty, terms = q, rest
	}

	switch {
	case addVerbRe.MatchString(t) && !removeVerbRe.MatchString(t):
		return Intent{Kind: Add, Qty: qty, Terms: terms}
	case removeVerbRe.MatchString(t):
		return Intent{Kind: Remove, Qty: qty, Terms: terms}
	case changeVerbRe.MatchString(t):
		return Intent{Kind: Change, Qty: qty, Terms: terms}
	}

	if m := categoryRe.FindStringSubmatch(t); m != nil {
		return Intent{Kind: ListCategory, Terms: strings.TrimSpace(m[1])}
	}
	if priceRe.MatchString(t) && terms != "" {
		return Intent{Kind: Price, Qty: qty, Terms: terms}
	}

	switch {
	case hoursRe.MatchString(t):
		return Intent{Kind: FAQHours}
	case locationRe.MatchString(t):
		return Intent{Kind: FAQLocation}
	case paymentRe.MatchString(t):
		return Intent{Kind: FAQPayment}
	case deliveryRe.MatchString(t):
		return Intent{Kind: FAQDelivery}
	case stockRe.MatchString(t):
		return Intent{Kind: FAQStock, Terms: terms}
	}

	if terms != "" {
		return Intent{Kind: Add, Qty: qty, Terms: terms}
	}
	return Intent{Kind: Unknown}
}

var (
	strictYes = regexp.MustCompile(`^(si|dale|ok|okay|okey|de una|va|joya|perfecto|confirmo)\b`)
	strictNo  = regexp.MustCompile(`^(no|nop|nope|mejor no|dejalo|dejemoslo|mas tarde|paso)\b`)
)

// IsYes reports an affirmative answer to a pending confirmation. It is
// anchored at the start so product text is never read as consent.
func IsYes(text string) bool {
	return strictYes.MatchString(textnorm.Fold(text))
}

// IsNo reports a negative answer to a pending confirmation.
func IsNo(text string) bool {
	return strictNo.MatchString(textnorm.Fold(text))
}

// IsGreeting reports a bare greeting.
func IsGreeting(text string) bool {
	return greetingRe.MatchString(textnorm.Fold(text))
}

// StripFiller removes command verbs, price words and courtesy phrases,
// leaving the product terms.
func StripFiller(folded string) string {
	words := strings.Fields(fillerRe.ReplaceAllString(folded, " "))
	for len(words) > 0 && (words[0] == "de" || words[0] == "del") {
		words = words[1:]
	}
	return strings.Join(words, " ")
}

func parseNumber(raw string) float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return 0
	}
	return v
}
