package agentlisp

import (
	"context"
	"time"

	"github.com/aretw0/agentlisp/pkg/lang"
	"github.com/aretw0/agentlisp/pkg/machine"
)

// StepEvent describes a single machine transition.
type StepEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Phase     machine.Phase `json:"phase"`
	ExprKind  lang.ExprKind `json:"expr_kind,omitempty"`
	Depth     int           `json:"depth"`
}

// EffectEvent describes a suspension on an effect boundary.
type EffectEvent struct {
	Timestamp time.Time          `json:"timestamp"`
	Kind      machine.EffectKind `json:"kind"`
	Text      string             `json:"text,omitempty"`
	Question  string             `json:"question,omitempty"`
}

// DoneEvent describes the completion of a program.
type DoneEvent struct {
	Timestamp time.Time  `json:"timestamp"`
	Value     lang.Value `json:"value"`
}

// Hooks defines callbacks for engine observability. Nil callbacks are
// skipped.
type Hooks struct {
	OnStep   func(context.Context, *StepEvent)
	OnEffect func(context.Context, *EffectEvent)
	OnDone   func(context.Context, *DoneEvent)
}
