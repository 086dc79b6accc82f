package ports

import (
	"context"

	"github.com/aretw0/agentlisp/pkg/machine"
)

// EffectHandler defines how effect requests are fulfilled. The evaluator
// suspends with a request, and the host implements this interface to
// perform the interaction and produce the result the program resumes with.
type EffectHandler interface {
	Handle(ctx context.Context, req *machine.EffectRequest) (*machine.EffectResult, error)
}

// EffectHandlerFunc adapts a function to the EffectHandler interface.
type EffectHandlerFunc func(ctx context.Context, req *machine.EffectRequest) (*machine.EffectResult, error)

func (f EffectHandlerFunc) Handle(ctx context.Context, req *machine.EffectRequest) (*machine.EffectResult, error) {
	return f(ctx, req)
}
