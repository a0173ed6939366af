package conversation

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"corralon_backend/internal/clarify"
	"corralon_backend/internal/order"
)

// State is everything remembered about one conversation between turns.
type State struct {
	Items    []order.Item
	NotFound []string
	// Awaiting is the single pending question, nil when idle.
	Awaiting Awaiting
	// Touched is the 1-based index of the last line added or edited, 0 if none.
	Touched      int
	UnknownCount int
	StartedAt    time.Time
}

// Awaiting is one of CancelConfirm, AddConfirm, OptionSelect,
// ClarificationQueue, ItemEditSelect or VariantEditSelect.
type Awaiting interface {
	Kind() string
	isAwaiting()
}

// CancelConfirm waits for a yes/no before discarding the quote.
type CancelConfirm struct{}

// AddConfirm purposes.
const (
	ConfirmAdd    = "add"
	ConfirmSetQty = "set_qty"
)

// AddConfirm waits for a yes/no on a proposed line or a large quantity change.
type AddConfirm struct {
	Purpose   string  `json:"purpose"`
	ItemID    string  `json:"itemId,omitempty"`
	VariantID string  `json:"variantId,omitempty"`
	Index     int     `json:"index,omitempty"`
	Qty       float64 `json:"qty"`
}

// OptionSelect purposes.
const (
	SelectPrice    = "price"
	SelectCategory = "category"
)

// OptionSelect waits for a pick among a single option list.
type OptionSelect struct {
	Purpose  string           `json:"purpose"`
	Question string           `json:"question"`
	Options  []clarify.Option `json:"options"`
	Qty      float64          `json:"qty"`
}

// ClarificationQueue holds the active clarification and the ones behind it,
// all raised by the same message.
type ClarificationQueue struct {
	Active clarify.Clarification   `json:"active"`
	Queue  []clarify.Clarification `json:"queue,omitempty"`
}

// ItemEditSelect waits for the customer to pick which line to edit.
type ItemEditSelect struct{}

// VariantEditSelect waits for a replacement variant or a new quantity for
// line Index.
type VariantEditSelect struct {
	Index   int              `json:"index"`
	Options []clarify.Option `json:"options"`
}

func (CancelConfirm) Kind() string      { return "cancel_confirm" }
func (AddConfirm) Kind() string         { return "add_confirm" }
func (OptionSelect) Kind() string       { return "option_select" }
func (ClarificationQueue) Kind() string { return "clarification_queue" }
func (ItemEditSelect) Kind() string     { return "item_edit_select" }
func (VariantEditSelect) Kind() string  { return "variant_edit_select" }

func (CancelConfirm) isAwaiting()      {}
func (AddConfirm) isAwaiting()         {}
func (OptionSelect) isAwaiting()       {}
func (ClarificationQueue) isAwaiting() {}
func (ItemEditSelect) isAwaiting()     {}
func (VariantEditSelect) isAwaiting()  {}

// AwaitingKind names the pending question, "idle" when there is none.
func (s State) AwaitingKind() string {
	if s.Awaiting == nil {
		return "idle"
	}
	return s.Awaiting.Kind()
}

// Clone copies the slices so the result can be mutated freely. Awaiting
// values are never modified in place and are shared.
func (s State) Clone() State {
	s.Items = slices.Clone(s.Items)
	s.NotFound = slices.Clone(s.NotFound)
	return s
}

func (s State) touchedIndex() (int, bool) {
	if s.Touched <= 0 || s.Touched > len(s.Items) {
		return 0, false
	}
	return s.Touched - 1, true
}

type stateJSON struct {
	Items        []order.Item  `json:"items"`
	NotFound     []string      `json:"notFound,omitempty"`
	Awaiting     *awaitingJSON `json:"awaiting,omitempty"`
	Touched      int           `json:"touched,omitempty"`
	UnknownCount int           `json:"unknownCount,omitempty"`
	StartedAt    time.Time     `json:"startedAt"`
}

type awaitingJSON struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data,omitempty"`
}

// MarshalJSON writes Awaiting as a {kind, data} envelope.
func (s State) MarshalJSON() ([]byte, error) {
	out := stateJSON{
		Items:        s.Items,
		NotFound:     s.NotFound,
		Touched:      s.Touched,
		UnknownCount: s.UnknownCount,
		StartedAt:    s.StartedAt,
	}
	if s.Awaiting != nil {
		data, err := json.Marshal(s.Awaiting)
		if err != nil {
			return nil, err
		}
		out.Awaiting = &awaitingJSON{Kind: s.Awaiting.Kind(), Data: data}
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the envelope written by MarshalJSON.
func (s *State) UnmarshalJSON(b []byte) error {
	var in stateJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*s = State{
		Items:        in.Items,
		NotFound:     in.NotFound,
		Touched:      in.Touched,
		UnknownCount: in.UnknownCount,
		StartedAt:    in.StartedAt,
	}
	if in.Awaiting == nil {
		return nil
	}
	aw, err := decodeAwaiting(in.Awaiting.Kind, in.Awaiting.Data)
	if err != nil {
		return err
	}
	s.Awaiting = aw
	return nil
}

func decodeAwaiting(kind string, data json.RawMessage) (Awaiting, error) {
	switch kind {
	case CancelConfirm{}.Kind():
		return CancelConfirm{}, nil
	case ItemEditSelect{}.Kind():
		return ItemEditSelect{}, nil
	case AddConfirm{}.Kind():
		var v AddConfirm
		if err := decodeData(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case OptionSelect{}.Kind():
		var v OptionSelect
		if err := decodeData(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case ClarificationQueue{}.Kind():
		var v ClarificationQueue
		if err := decodeData(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case VariantEditSelect{}.Kind():
		var v VariantEditSelect
		if err := decodeData(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unknown awaiting kind %q", kind)
	}
}

func decodeData(data json.RawMessage, dst any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}
