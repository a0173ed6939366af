package matcher

import "corralon_backend/internal/catalog"

// Trace records how the cascade reached its result.
type Trace struct {
	Normalized string
	Terms      []string
	Strong     []string
	Steps      []TraceStep
}

// TraceStep lists the candidates one stage considered, best first.
type TraceStep struct {
	Stage      Stage
	Candidates []TraceCandidate
}

// TraceCandidate is a scored title.
type TraceCandidate struct {
	Title string
	Score float64
}

const maxTraceCandidates = 8

func (t *Trace) add(stage Stage, cands []scored) {
	if t == nil {
		return
	}
	step := TraceStep{Stage: stage}
	for i, c := range cands {
		if i == maxTraceCandidates {
			break
		}
		step.Candidates = append(step.Candidates, TraceCandidate{
			Title: catalog.DisplayTitle(c.e.cand.Item, c.e.cand.Variant),
			Score: c.score,
		})
	}
	t.Steps = append(t.Steps, step)
}
