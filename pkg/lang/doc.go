// Package lang defines the AgentLisp data model: values, expressions,
// function definitions and programs.
//
// Everything in this package is immutable by convention. A Program is built
// once by the parser (or via the expression constructors) and is read-only
// for the lifetime of an evaluation. Expressions are modeled as a single
// struct with a Kind discriminator so that states containing them can be
// serialized and inspected without any custom marshaling.
package lang
