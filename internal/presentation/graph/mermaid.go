package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/agentlisp/pkg/lang"
)

// Overlay contains dynamic state data to visualize on the graph.
type Overlay struct {
	CurrentFunction string
}

// GenerateMermaid produces a Mermaid flowchart syntax string for the call
// graph of a program. Functions are nodes, static calls are edges.
// It applies semantic styling:
// - main (entrypoint): ((Circle))
// - Functions that read or ask: [/Parallelogram/] (input)
// - Functions that only write or tell: [[Subroutine]]
// - Pure functions: [Rectangle]
// Recursive calls are drawn as dotted self-edges.
func GenerateMermaid(program *lang.Program, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, fn := range program.Functions {
		safeID := sanitizeMermaidID(fn.Name)
		effects := collectEffects(fn.Body)

		// Node Shape based on effect profile
		opener, closer := "[", "]"
		switch {
		case fn.Name == "main":
			opener, closer = "((", "))" // Circle
		case effects["read"] || effects["ask"]:
			opener, closer = "[/", "/]" // Parallelogram (Input)
		case effects["write"] || effects["tell"]:
			opener, closer = "[[", "]]" // Subroutine
		}

		label := fn.Name
		if kinds := effectList(effects); len(kinds) > 0 {
			// Annotate node with its effect kinds
			label = fmt.Sprintf("%s <br/> %s", fn.Name, strings.Join(kinds, ", "))
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label, closer))

		// Call edges (deduplicated, source order)
		seen := make(map[string]bool)
		for _, callee := range collectCalls(fn.Body) {
			if seen[callee] {
				continue
			}
			seen[callee] = true

			safeTo := sanitizeMermaidID(callee)
			arrow := "-->"
			if callee == fn.Name {
				arrow = "-.->" // recursion
			}
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeID, arrow, safeTo))
		}
	}

	// Apply Overlay Styles
	if overlay != nil && overlay.CurrentFunction != "" {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentFunction)))
	}

	return sb.String()
}

// collectCalls walks an expression tree and returns called function names in
// source order, with repeats.
func collectCalls(e *lang.Expr) []string {
	var out []string
	walk(e, func(e *lang.Expr) {
		if e.Kind == lang.ExprCall {
			out = append(out, e.Name)
		}
	})
	return out
}

func collectEffects(e *lang.Expr) map[string]bool {
	effects := make(map[string]bool)
	walk(e, func(e *lang.Expr) {
		switch e.Kind {
		case lang.ExprRead:
			effects["read"] = true
		case lang.ExprWrite:
			effects["write"] = true
		case lang.ExprTell:
			effects["tell"] = true
		case lang.ExprAsk:
			effects["ask"] = true
		}
	})
	return effects
}

func effectList(effects map[string]bool) []string {
	kinds := make([]string, 0, len(effects))
	for k := range effects {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

func walk(e *lang.Expr, visit func(*lang.Expr)) {
	if e == nil {
		return
	}
	visit(e)
	walk(e.Cond, visit)
	walk(e.Then, visit)
	walk(e.Else, visit)
	for _, b := range e.Bindings {
		walk(b.Value, visit)
	}
	walk(e.Body, visit)
	walk(e.Arg, visit)
	for _, a := range e.Args {
		walk(a, visit)
	}
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
