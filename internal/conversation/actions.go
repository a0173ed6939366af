package conversation

import (
	"time"

	"corralon_backend/internal/order"
)

// Action is an instruction for the delivery shell. The engine never performs
// I/O; the shell executes actions in order.
type Action interface {
	isAction()
}

// Button is one quick-reply button.
type Button struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Row is one entry of a list prompt.
type Row struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// SendText delivers a plain message.
type SendText struct {
	Text string
}

// SendButtons delivers text with at most three quick replies.
type SendButtons struct {
	Text    string
	Buttons []Button
}

// SendList delivers a list prompt with at most ten rows.
type SendList struct {
	Text        string
	ButtonLabel string
	Section     string
	Rows        []Row
}

// Quote is a finalized order ready to be rendered and stored.
type Quote struct {
	Number     string
	Items      []order.Item
	Totals     order.Amounts
	NotFound   []string
	CreatedAt  time.Time
	ValidUntil time.Time
}

// EmitQuote asks the shell to render, store and send the quote document.
type EmitQuote struct {
	Quote Quote
}

// RecordNotFound stores request terms that matched nothing.
type RecordNotFound struct {
	Terms []string
}

// RecordUnknown stores a message no rule classified.
type RecordUnknown struct {
	Text string
}

// Handoff signals that the customer asked for, or was offered, a human.
type Handoff struct {
	Reason string
}

// EndSession asks the shell to clear the stored state.
type EndSession struct{}

func (SendText) isAction()       {}
func (SendButtons) isAction()    {}
func (SendList) isAction()       {}
func (EmitQuote) isAction()      {}
func (RecordNotFound) isAction() {}
func (RecordUnknown) isAction()  {}
func (Handoff) isAction()        {}
func (EndSession) isAction()     {}

const (
	// MaxButtons is the gateway limit for quick replies.
	MaxButtons = 3
	// MaxListRows is the gateway limit for list prompts.
	MaxListRows = 10
	// maxRowTitle is the gateway limit for a list row title.
	maxRowTitle = 24
	// maxRowDescription is the gateway limit for a list row description.
	maxRowDescription = 72
)
