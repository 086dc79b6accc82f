/*
Package agentlisp is a resumable evaluator for a small Lisp dialect designed
for agent workflows. Programs suspend whenever they need the outside world
(reading input, writing output, asking an agent a question), and every
suspension point is plain data that can be persisted and resumed later, by
a different process if need be.

It implements an explicit small-step machine: instead of a native call
stack, evaluation carries a serializable stack of continuation frames, so
"where the program is" survives a JSON round-trip.

# Key Features

  - Resumable Execution: Any effect boundary can be saved, shipped and
    resumed ("Durable Execution").
  - Deterministic Stepping: Given the same state and effect result, the
    transition is always reproducible.
  - Hexagonal Architecture: The evaluator core is decoupled from adapters
    (Storage, CLI, HTTP, MCP).

# Usage

Initialize the engine from a source file, then drive states through the
run loop. The engine itself holds no session state.

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/agentlisp"
		"github.com/aretw0/agentlisp/pkg/machine"
	)

	func main() {
		eng, err := agentlisp.NewFromSource(`
			(defun main ()
			  (let ((name (read)))
			    (write name)))
		`)
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		state, err := eng.Start()
		if err != nil {
			log.Fatal(err)
		}

		for {
			state, err = eng.RunToBoundary(ctx, state)
			if err != nil {
				log.Fatal(err)
			}
			if state.Terminal() {
				fmt.Println("result:", state.Value)
				return
			}

			// The program suspended; fulfill the effect and resume.
			var answer string
			switch state.Effect.Kind {
			case machine.EffectRead, machine.EffectAsk:
				fmt.Scanln(&answer)
			default:
				fmt.Println(state.Effect.Text)
			}
			state, err = eng.Resume(ctx, state, answer)
			if err != nil {
				log.Fatal(err)
			}
		}
	}
*/
package agentlisp
