package machine

import "github.com/aretw0/agentlisp/pkg/lang"

// Env maps variable names to values and carries a reference to the
// program's function table. Extending an Env never mutates it: Extend
// copies the bindings and returns a new Env sharing the same table, so
// older states holding the previous Env are unaffected.
//
// Only the bindings are serialized. The function table is re-attached via
// Hydrate after a state is loaded from a store.
type Env struct {
	Bindings map[string]lang.Value `json:"bindings"`

	funcs map[string]lang.FunctionDef
}

// NewEnv creates the initial environment: no bindings, full function table.
func NewEnv(program *lang.Program) *Env {
	return &Env{
		Bindings: make(map[string]lang.Value),
		funcs:    program.Table(),
	}
}

// Lookup resolves a variable.
func (e *Env) Lookup(name string) (lang.Value, error) {
	v, ok := e.Bindings[name]
	if !ok {
		return lang.Value{}, &lang.UndefinedVariableError{Name: name}
	}
	return v, nil
}

// Extend returns a new environment with one additional binding. An existing
// binding for the same name is overwritten in the copy, never in place.
func (e *Env) Extend(name string, value lang.Value) *Env {
	next := make(map[string]lang.Value, len(e.Bindings)+1)
	for k, v := range e.Bindings {
		next[k] = v
	}
	next[name] = value
	return &Env{Bindings: next, funcs: e.funcs}
}

// ExtendMany applies Extend pairwise in order. If the slices have unequal
// length only the shorter length's worth of pairs is applied; arity is the
// caller's concern, not the environment's.
func (e *Env) ExtendMany(names []string, values []lang.Value) *Env {
	n := len(names)
	if len(values) < n {
		n = len(values)
	}
	next := make(map[string]lang.Value, len(e.Bindings)+n)
	for k, v := range e.Bindings {
		next[k] = v
	}
	for i := 0; i < n; i++ {
		next[names[i]] = values[i]
	}
	return &Env{Bindings: next, funcs: e.funcs}
}

// Function resolves a function definition from the shared table.
func (e *Env) Function(name string) (lang.FunctionDef, error) {
	fn, ok := e.funcs[name]
	if !ok {
		return lang.FunctionDef{}, &lang.UndefinedFunctionError{Name: name}
	}
	return fn, nil
}

// fresh returns an environment with no bindings but the same function
// table. Function bodies evaluate in such an environment: calls are flat,
// a callee never sees the caller's bindings.
func (e *Env) fresh() *Env {
	return &Env{Bindings: make(map[string]lang.Value), funcs: e.funcs}
}

// attach re-binds the shared function table after deserialization.
func (e *Env) attach(table map[string]lang.FunctionDef) {
	e.funcs = table
}
