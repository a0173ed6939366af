package matcher

import (
	"corralon_backend/internal/catalog"
	"corralon_backend/internal/clarify"
)

// Stage names the cascade step that produced a result.
type Stage string

const (
	StageDefault  Stage = "default"
	StageGeneric  Stage = "generic"
	StageStrong   Stage = "strong"
	StageGlossary Stage = "glossary"
	StageFallback Stage = "fallback"
	StageNone     Stage = "none"
)

// Result is one of Accepted, Clarify or NotFound.
type Result interface {
	Outcome() string
	Stage() Stage
	isResult()
}

// Accepted means a single variant was chosen.
type Accepted struct {
	Line    string
	Qty     float64
	Item    catalog.Item
	Variant catalog.Variant
	By      Stage
	Score   float64
}

// Clarify means the customer has to choose among options.
type Clarify struct {
	Clarification clarify.Clarification
	By            Stage
	Score         float64
}

// NotFound means no acceptable candidate exists.
type NotFound struct {
	Line string
	Qty  float64
}

func (Accepted) Outcome() string { return "accepted" }
func (Clarify) Outcome() string  { return "clarify" }
func (NotFound) Outcome() string { return "not_found" }

func (a Accepted) Stage() Stage { return a.By }
func (c Clarify) Stage() Stage  { return c.By }
func (NotFound) Stage() Stage   { return StageNone }

func (Accepted) isResult() {}
func (Clarify) isResult()  {}
func (NotFound) isResult() {}
