package lang

import (
	"errors"
	"fmt"
)

// Program validation errors.
var (
	// ErrNoFunctions is returned for a program without any definitions.
	ErrNoFunctions = errors.New("program must contain at least one function")

	// ErrNoMain is returned when no main function is defined.
	ErrNoMain = errors.New("program must define a main function")

	// ErrMainArity is returned when main declares parameters.
	ErrMainArity = errors.New("main must take no parameters")
)

// DuplicateFunctionError reports two definitions sharing one name.
type DuplicateFunctionError struct {
	Name string
}

func (e *DuplicateFunctionError) Error() string {
	return fmt.Sprintf("duplicate function definition: %s", e.Name)
}

// UndefinedVariableError reports a failed variable lookup. All evaluation
// errors are fatal to the run; the language has no in-program recovery.
type UndefinedVariableError struct {
	Name string
}

func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("undefined variable: %s", e.Name)
}

// UndefinedFunctionError reports a call to an unknown function.
type UndefinedFunctionError struct {
	Name string
}

func (e *UndefinedFunctionError) Error() string {
	return fmt.Sprintf("undefined function: %s", e.Name)
}

// ArityError reports a call whose argument count does not match the
// function's declared parameter count.
type ArityError struct {
	Function string
	Want     int
	Got      int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("function %s expects %d arguments, got %d", e.Function, e.Want, e.Got)
}
