/*
Package runner implements the execution loop and I/O orchestration for the
AgentLisp engine.

It acts as the bridge between the evaluator core and the outside world. The
runner drives states to their effect boundaries, persists them through an
optional StateStore, and fulfills effects through pluggable handlers: user
I/O goes through an IOHandler strategy (Text vs JSON), agent questions go
through an OracleFunc.

# Key Components

  - Runner: The main orchestrator of the boundary-resume loop.
  - IOHandler: Decouples how effects surface to the host (CLI, JSON, etc.).
  - TextHandler: A standard implementation for interactive CLI usage.
  - Transcript: The conversation log an Oracle answers against.

# Usage

	r := runner.NewRunner(
		runner.WithEngine(engine),
		runner.WithSessionID("user-1"),
		runner.WithHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)

	if _, err := r.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package runner
