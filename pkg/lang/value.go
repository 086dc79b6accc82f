package lang

import "strconv"

// ValueKind discriminates the two runtime value types.
type ValueKind string

const (
	// ValueInt is a fixed-width signed integer.
	ValueInt ValueKind = "int"
	// ValueText is a UTF-8 string.
	ValueText ValueKind = "text"
)

// Value is the result of evaluating an expression: either an integer or text.
// It is a closed union; the Kind field selects which payload field is valid.
type Value struct {
	Kind ValueKind `json:"kind"`
	Int  int64     `json:"int,omitempty"`
	Text string    `json:"text,omitempty"`
}

// IntValue wraps an integer as a Value.
func IntValue(n int64) Value {
	return Value{Kind: ValueInt, Int: n}
}

// TextValue wraps a string as a Value.
func TextValue(s string) Value {
	return Value{Kind: ValueText, Text: s}
}

// Truthy reports whether the value counts as true in a conditional:
// integers are truthy iff nonzero, text is truthy iff non-empty.
func (v Value) Truthy() bool {
	switch v.Kind {
	case ValueInt:
		return v.Int != 0
	case ValueText:
		return v.Text != ""
	}
	return false
}

// String returns the display form of the value. This is the stringification
// used when a value crosses an effect boundary (write, tell, ask).
func (v Value) String() string {
	if v.Kind == ValueInt {
		return strconv.FormatInt(v.Int, 10)
	}
	return v.Text
}
