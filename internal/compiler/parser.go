// Package compiler turns AgentLisp source text into the lang data model.
//
// The surface syntax is parenthesized: a program is a sequence of
// (defun name (params...) body) forms, and bodies are built from the
// special forms if, let, write, read, tell and ask plus function calls,
// integer literals, string literals and variable references.
package compiler

import (
	"fmt"
	"strconv"

	"github.com/aretw0/agentlisp/pkg/lang"
)

// ParseProgram parses complete source text into a Program. The result is
// syntactically sound; callers still run Program.Validate before
// evaluating (main presence, duplicate names).
func ParseProgram(src string) (*lang.Program, error) {
	tok := newTokenizer(src)
	var program lang.Program

	for {
		sx, err := tok.next()
		if err != nil {
			return nil, err
		}
		if sx == nil {
			break
		}
		fn, err := parseDefun(sx)
		if err != nil {
			return nil, err
		}
		program.Functions = append(program.Functions, *fn)
	}

	if len(program.Functions) == 0 {
		return nil, &ParseError{Reason: "program must contain at least one function"}
	}
	return &program, nil
}

func parseDefun(sx sexpr) (*lang.FunctionDef, error) {
	items, ok := sx.(list)
	if !ok {
		return nil, &ParseError{Reason: "top-level form must be a (defun ...) list"}
	}
	if len(items) != 4 {
		return nil, &ParseError{Reason: "defun must have form (defun name (params) body)"}
	}
	if head, ok := items[0].(atom); !ok || head != "defun" {
		return nil, &ParseError{Reason: "top-level form must start with defun"}
	}

	name, ok := items[1].(atom)
	if !ok {
		return nil, &ParseError{Reason: "function name must be an identifier"}
	}

	paramList, ok := items[2].(list)
	if !ok {
		return nil, &ParseError{Reason: "function parameters must be a list"}
	}
	params := make([]string, 0, len(paramList))
	for _, p := range paramList {
		id, ok := p.(atom)
		if !ok {
			return nil, &ParseError{Reason: "function parameter must be an identifier"}
		}
		params = append(params, string(id))
	}

	body, err := parseExpr(items[3])
	if err != nil {
		return nil, err
	}

	return &lang.FunctionDef{Name: string(name), Params: params, Body: body}, nil
}

func parseExpr(sx sexpr) (*lang.Expr, error) {
	switch v := sx.(type) {
	case strLit:
		return lang.StrLit(string(v)), nil

	case atom:
		if n, err := strconv.ParseInt(string(v), 10, 64); err == nil {
			return lang.IntLit(n), nil
		} else if isNumeric(string(v)) {
			return nil, &ParseError{Reason: fmt.Sprintf("integer literal out of range: %s", v)}
		}
		return lang.Var(string(v)), nil

	case list:
		return parseForm(v)
	}

	return nil, &ParseError{Reason: fmt.Sprintf("invalid expression: %v", sx)}
}

func parseForm(items list) (*lang.Expr, error) {
	if len(items) == 0 {
		return nil, &ParseError{Reason: "empty list is not a valid expression"}
	}

	head, ok := items[0].(atom)
	if !ok {
		return nil, &ParseError{Reason: "form head must be an identifier"}
	}

	switch head {
	case "if":
		if len(items) != 4 {
			return nil, &ParseError{Reason: "if requires 3 arguments: condition, then, else"}
		}
		cond, err := parseExpr(items[1])
		if err != nil {
			return nil, err
		}
		then, err := parseExpr(items[2])
		if err != nil {
			return nil, err
		}
		els, err := parseExpr(items[3])
		if err != nil {
			return nil, err
		}
		return lang.If(cond, then, els), nil

	case "let":
		if len(items) != 3 {
			return nil, &ParseError{Reason: "let requires 2 arguments: bindings and body"}
		}
		bindingList, ok := items[1].(list)
		if !ok {
			return nil, &ParseError{Reason: "let bindings must be a list"}
		}
		bindings := make([]lang.Binding, 0, len(bindingList))
		for _, b := range bindingList {
			pair, ok := b.(list)
			if !ok || len(pair) != 2 {
				return nil, &ParseError{Reason: "each let binding must be a (name value) pair"}
			}
			name, ok := pair[0].(atom)
			if !ok {
				return nil, &ParseError{Reason: "binding name must be an identifier"}
			}
			value, err := parseExpr(pair[1])
			if err != nil {
				return nil, err
			}
			bindings = append(bindings, lang.Bind(string(name), value))
		}
		body, err := parseExpr(items[2])
		if err != nil {
			return nil, err
		}
		return lang.Let(bindings, body), nil

	case "write", "tell", "ask":
		if len(items) != 2 {
			return nil, &ParseError{Reason: fmt.Sprintf("%s requires exactly 1 argument", head)}
		}
		arg, err := parseExpr(items[1])
		if err != nil {
			return nil, err
		}
		switch head {
		case "write":
			return lang.Write(arg), nil
		case "tell":
			return lang.Tell(arg), nil
		default:
			return lang.Ask(arg), nil
		}

	case "read":
		if len(items) != 1 {
			return nil, &ParseError{Reason: "read takes no arguments"}
		}
		return lang.Read(), nil
	}

	// Anything else is a function call.
	args := make([]*lang.Expr, 0, len(items)-1)
	for _, item := range items[1:] {
		arg, err := parseExpr(item)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return lang.Call(string(head), args...), nil
}

// isNumeric reports whether an atom looks like an integer literal, so that
// out-of-range numbers fail parsing instead of silently becoming variables.
func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[0] == '-' || s[0] == '+' {
		if len(s) == 1 {
			return false
		}
		i = 1
	}
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
