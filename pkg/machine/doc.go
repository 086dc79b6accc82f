// Package machine implements the resumable abstract machine that evaluates
// AgentLisp programs.
//
// The machine never relies on the Go call stack to remember pending work.
// "The rest of the computation" is an explicit stack of Frame values inside
// a State, so evaluation can stop at any effect boundary, be serialized,
// and be resumed later by a different caller.
//
// Transitions are pure: Step and StepWithEffect take a State and produce a
// new State without mutating their input. Two copies of the same state,
// stepped with the same effect results, evolve identically.
package machine
