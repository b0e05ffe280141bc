package module

import (
	"errors"
	"fmt"
)

//ArgumentErrorKind says what was wrong with an operator's request
type ArgumentErrorKind int

const (
	ExclusionAlreadyExists ArgumentErrorKind = iota
	NoSuchExclusion
	ExclusionLimit
	ActionLimit
	IndexOutOfRange
	MissingMessage
	InvalidModule
	InvalidAction
	InvalidExclusion
)

//ArgumentError is a problem with a configuration request which should be reported back to the operator verbatim.
//It is never logged as a failure.
type ArgumentError struct {
	Kind  ArgumentErrorKind
	Count int
	Limit int
	Index int
	Value string
}

func (e *ArgumentError) Error() string {
	switch e.Kind {
	case ExclusionAlreadyExists:
		return "That exclusion already exists"
	case NoSuchExclusion:
		return "No such exclusion"
	case ExclusionLimit:
		return fmt.Sprintf("There are already %d out of %d exclusions defined for this module", e.Count, e.Limit)
	case ActionLimit:
		return fmt.Sprintf("There are already %d out of %d actions defined for this module", e.Count, e.Limit)
	case IndexOutOfRange:
		return fmt.Sprintf("The index %d is out of range", e.Index)
	case MissingMessage:
		return "That action requires a message"
	case InvalidModule:
		return fmt.Sprintf("No such module: %v", e.Value)
	case InvalidAction:
		return fmt.Sprintf("No such action: %v", e.Value)
	case InvalidExclusion:
		return fmt.Sprintf("Exclusions must be a user or a role, not %v", e.Value)
	default:
		return "Invalid argument"
	}
}

//IsArgumentError returns true if err is, or wraps, an ArgumentError
func IsArgumentError(err error) bool {
	var argErr *ArgumentError
	return errors.As(err, &argErr)
}
