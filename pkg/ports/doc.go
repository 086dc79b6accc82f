/*
Package ports defines the driven ports (interfaces) for the AgentLisp engine.

These interfaces decouple the evaluator core from external implementations,
allowing the engine to work with various storage backends, effect handlers
and concurrency coordinators.

# Key Interfaces

  - Evaluator: Drives a program's machine states step by step.
  - StateStore: Persists and loads suspended session State.
  - EffectHandler: Fulfills the effect requests a program suspends on.
  - DistributedLocker: Provides distributed locking for handling concurrent
    session access.
*/
package ports
