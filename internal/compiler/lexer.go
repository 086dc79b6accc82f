package compiler

import "fmt"

// ParseError reports a syntax problem with the byte offset it was detected
// at.
type ParseError struct {
	Reason string
	Pos    int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s", e.Pos, e.Reason)
}

// sexpr is a tokenized s-expression: an atom, a strLit or a list.
type sexpr interface{}

// atom is a bare token: an identifier, keyword or number.
type atom string

// strLit is the decoded content of a double-quoted string literal.
type strLit string

// list is a parenthesized sequence.
type list []sexpr

// tokenizer walks raw source and produces nested s-expressions.
type tokenizer struct {
	src string
	pos int
}

func newTokenizer(src string) *tokenizer {
	return &tokenizer{src: src}
}

func (t *tokenizer) peek() (byte, bool) {
	if t.pos >= len(t.src) {
		return 0, false
	}
	return t.src[t.pos], true
}

func (t *tokenizer) advance() (byte, bool) {
	c, ok := t.peek()
	if ok {
		t.pos++
	}
	return c, ok
}

// skipBlank consumes whitespace and line comments (";" to end of line).
func (t *tokenizer) skipBlank() {
	for {
		c, ok := t.peek()
		if !ok {
			return
		}
		switch c {
		case ' ', '\t', '\n', '\r':
			t.pos++
		case ';':
			for {
				c, ok := t.advance()
				if !ok || c == '\n' {
					break
				}
			}
		default:
			return
		}
	}
}

// next reads the next s-expression, or nil at end of input.
func (t *tokenizer) next() (sexpr, error) {
	t.skipBlank()

	c, ok := t.peek()
	if !ok {
		return nil, nil
	}

	switch c {
	case '(':
		start := t.pos
		t.pos++
		var items list
		for {
			t.skipBlank()
			c, ok := t.peek()
			if !ok {
				return nil, &ParseError{Reason: "unterminated list", Pos: start}
			}
			if c == ')' {
				t.pos++
				return items, nil
			}
			item, err := t.next()
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}

	case ')':
		return nil, &ParseError{Reason: "unexpected closing parenthesis", Pos: t.pos}

	case '"':
		return t.readString()

	default:
		return t.readAtom(), nil
	}
}

// readString decodes a double-quoted literal, handling the \n \t \\ \"
// escapes.
func (t *tokenizer) readString() (sexpr, error) {
	start := t.pos
	t.pos++ // opening quote

	var out []byte
	for {
		c, ok := t.advance()
		if !ok {
			return nil, &ParseError{Reason: "unterminated string literal", Pos: start}
		}
		switch c {
		case '"':
			return strLit(out), nil
		case '\\':
			esc, ok := t.advance()
			if !ok {
				return nil, &ParseError{Reason: "unterminated string literal", Pos: start}
			}
			switch esc {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case '\\':
				out = append(out, '\\')
			case '"':
				out = append(out, '"')
			default:
				return nil, &ParseError{
					Reason: fmt.Sprintf("unknown escape sequence \\%c", esc),
					Pos:    t.pos - 2,
				}
			}
		default:
			out = append(out, c)
		}
	}
}

func (t *tokenizer) readAtom() sexpr {
	start := t.pos
	for {
		c, ok := t.peek()
		if !ok || c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '(' || c == ')' || c == ';' {
			break
		}
		t.pos++
	}
	return atom(t.src[start:t.pos])
}
