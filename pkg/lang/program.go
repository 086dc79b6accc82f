package lang

// MainFunction is the entrypoint every program must define.
const MainFunction = "main"

// FunctionDef is a flat, global, named function. There are no closures:
// a body can reference only its own parameters and other functions.
type FunctionDef struct {
	Name   string   `json:"name"`
	Params []string `json:"params,omitempty"`
	Body   *Expr    `json:"body"`
}

// Arity returns the declared parameter count.
func (f FunctionDef) Arity() int { return len(f.Params) }

// Program is an ordered sequence of function definitions.
type Program struct {
	Functions []FunctionDef `json:"functions"`
}

// Main returns the main function definition, or nil if absent.
func (p *Program) Main() *FunctionDef {
	for i := range p.Functions {
		if p.Functions[i].Name == MainFunction {
			return &p.Functions[i]
		}
	}
	return nil
}

// Function returns the definition with the given name, or nil.
func (p *Program) Function(name string) *FunctionDef {
	for i := range p.Functions {
		if p.Functions[i].Name == name {
			return &p.Functions[i]
		}
	}
	return nil
}

// Table builds the shared name -> definition lookup table. The table is
// constructed once at program load and referenced (never copied) by every
// environment derived from it.
func (p *Program) Table() map[string]FunctionDef {
	table := make(map[string]FunctionDef, len(p.Functions))
	for _, fn := range p.Functions {
		if _, exists := table[fn.Name]; exists {
			// Validate rejects duplicates; keep first occurrence if the
			// caller skipped validation.
			continue
		}
		table[fn.Name] = fn
	}
	return table
}

// Validate checks the invariants a program must satisfy before evaluation
// starts: at least one function, a zero-parameter main, and no duplicate
// function names. Duplicates are an error rather than a silent shadowing
// rule; the first-wins behavior of earlier versions hid typos.
func (p *Program) Validate() error {
	if len(p.Functions) == 0 {
		return ErrNoFunctions
	}

	seen := make(map[string]bool, len(p.Functions))
	for _, fn := range p.Functions {
		if seen[fn.Name] {
			return &DuplicateFunctionError{Name: fn.Name}
		}
		seen[fn.Name] = true
	}

	main := p.Main()
	if main == nil {
		return ErrNoMain
	}
	if main.Arity() != 0 {
		return ErrMainArity
	}
	return nil
}
