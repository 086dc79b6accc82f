package lang

// ExprKind discriminates expression variants.
type ExprKind string

const (
	ExprInt    ExprKind = "int"
	ExprString ExprKind = "string"
	ExprVar    ExprKind = "var"
	ExprIf     ExprKind = "if"
	ExprLet    ExprKind = "let"
	ExprCall   ExprKind = "call"

	// Effect forms. These are the only expressions that can suspend an
	// evaluation: they produce an effect request instead of a value.
	ExprWrite ExprKind = "write"
	ExprRead  ExprKind = "read"
	ExprTell  ExprKind = "tell"
	ExprAsk   ExprKind = "ask"
)

// Expr is a node in the expression tree. Like the rest of the model it is a
// single struct with a Kind discriminator; only the fields relevant to the
// Kind are populated. The tree is built once and never mutated.
type Expr struct {
	Kind ExprKind `json:"kind"`

	// ExprInt / ExprString payloads.
	Int int64  `json:"int,omitempty"`
	Str string `json:"str,omitempty"`

	// Name is the variable name (ExprVar) or the callee (ExprCall).
	Name string `json:"name,omitempty"`

	// ExprIf branches.
	Cond *Expr `json:"cond,omitempty"`
	Then *Expr `json:"then,omitempty"`
	Else *Expr `json:"else,omitempty"`

	// ExprLet bindings and body.
	Bindings []Binding `json:"bindings,omitempty"`
	Body     *Expr     `json:"body,omitempty"`

	// ExprCall arguments, evaluated left to right.
	Args []*Expr `json:"args,omitempty"`

	// Operand of write, tell and ask. Read takes no operand.
	Arg *Expr `json:"arg,omitempty"`
}

// Binding is a single (name, value expression) pair in a let form.
type Binding struct {
	Name  string `json:"name"`
	Value *Expr  `json:"value"`
}

// Literal returns the value of a literal expression, or ok=false when the
// expression still requires evaluation.
func (e *Expr) Literal() (Value, bool) {
	switch e.Kind {
	case ExprInt:
		return IntValue(e.Int), true
	case ExprString:
		return TextValue(e.Str), true
	}
	return Value{}, false
}

// Constructors. These double as a small builder API for programs assembled
// in Go code instead of parsed from source.

// IntLit builds an integer literal.
func IntLit(n int64) *Expr { return &Expr{Kind: ExprInt, Int: n} }

// StrLit builds a string literal.
func StrLit(s string) *Expr { return &Expr{Kind: ExprString, Str: s} }

// Var builds a variable reference.
func Var(name string) *Expr { return &Expr{Kind: ExprVar, Name: name} }

// If builds a conditional. The condition decides by truthiness.
func If(cond, then, els *Expr) *Expr {
	return &Expr{Kind: ExprIf, Cond: cond, Then: then, Else: els}
}

// Let builds a let form with ordered bindings.
func Let(bindings []Binding, body *Expr) *Expr {
	return &Expr{Kind: ExprLet, Bindings: bindings, Body: body}
}

// Bind builds a single let binding.
func Bind(name string, value *Expr) Binding {
	return Binding{Name: name, Value: value}
}

// Call builds a function call.
func Call(name string, args ...*Expr) *Expr {
	return &Expr{Kind: ExprCall, Name: name, Args: args}
}

// Write builds a write effect form (emit text to the host).
func Write(arg *Expr) *Expr { return &Expr{Kind: ExprWrite, Arg: arg} }

// Read builds a read effect form (request a line of input from the host).
func Read() *Expr { return &Expr{Kind: ExprRead} }

// Tell builds a tell effect form (append text to the oracle conversation).
func Tell(arg *Expr) *Expr { return &Expr{Kind: ExprTell, Arg: arg} }

// Ask builds an ask effect form (pose a question to the oracle).
func Ask(arg *Expr) *Expr { return &Expr{Kind: ExprAsk, Arg: arg} }
