package checker

import (
	"errors"
	"fmt"

	"github.com/roach88/tsg/internal/ast"
)

// CheckErrorCode categorizes check errors.
type CheckErrorCode string

const (
	// ErrCodeExpectedListValue: a for-loop source is not * or +.
	ErrCodeExpectedListValue CheckErrorCode = "EXPECTED_LIST_VALUE"

	// ErrCodeExpectedOptionalValue: a some/none condition value is not ?.
	ErrCodeExpectedOptionalValue CheckErrorCode = "EXPECTED_OPTIONAL_VALUE"

	// ErrCodeUndefinedSyntaxCapture: a capture is not bound by the stanza's
	// own pattern.
	ErrCodeUndefinedSyntaxCapture CheckErrorCode = "UNDEFINED_SYNTAX_CAPTURE"

	// ErrCodeVariable: a scoping violation; Err holds the variables error.
	ErrCodeVariable CheckErrorCode = "VARIABLE"
)

// CheckError is the error returned by Check.
type CheckError struct {
	Code     CheckErrorCode
	Location ast.Location

	// Name is the capture name (without @) or the variable's display form.
	Name string

	// Err is the underlying scoping error for ErrCodeVariable.
	Err error
}

// Error implements the error interface.
func (e *CheckError) Error() string {
	switch e.Code {
	case ErrCodeExpectedListValue:
		return fmt.Sprintf("Expected list value at %s", e.Location)
	case ErrCodeExpectedOptionalValue:
		return fmt.Sprintf("Expected optional value at %s", e.Location)
	case ErrCodeUndefinedSyntaxCapture:
		return fmt.Sprintf("Undefined syntax capture @%s at %s", e.Name, e.Location)
	case ErrCodeVariable:
		return fmt.Sprintf("%v: %s", e.Err, e.Name)
	default:
		return fmt.Sprintf("%s at %s", e.Code, e.Location)
	}
}

// Unwrap returns the underlying scoping error, if any.
func (e *CheckError) Unwrap() error {
	return e.Err
}

func hasCode(err error, code CheckErrorCode) bool {
	var ce *CheckError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// IsExpectedListValue returns true if err is an ErrCodeExpectedListValue
// check error. Uses errors.As to handle wrapped errors.
func IsExpectedListValue(err error) bool {
	return hasCode(err, ErrCodeExpectedListValue)
}

// IsExpectedOptionalValue returns true if err is an
// ErrCodeExpectedOptionalValue check error.
func IsExpectedOptionalValue(err error) bool {
	return hasCode(err, ErrCodeExpectedOptionalValue)
}

// IsUndefinedSyntaxCapture returns true if err is an
// ErrCodeUndefinedSyntaxCapture check error.
func IsUndefinedSyntaxCapture(err error) bool {
	return hasCode(err, ErrCodeUndefinedSyntaxCapture)
}

// IsVariableError returns true if err is a scoping violation. Match the
// specific violation with errors.Is against the variables sentinels.
func IsVariableError(err error) bool {
	return hasCode(err, ErrCodeVariable)
}

func expectedListValue(loc ast.Location) *CheckError {
	return &CheckError{Code: ErrCodeExpectedListValue, Location: loc}
}

func expectedOptionalValue(loc ast.Location) *CheckError {
	return &CheckError{Code: ErrCodeExpectedOptionalValue, Location: loc}
}

func undefinedSyntaxCapture(name string, loc ast.Location) *CheckError {
	return &CheckError{Code: ErrCodeUndefinedSyntaxCapture, Name: name, Location: loc}
}

func variableError(err error, name string, loc ast.Location) *CheckError {
	return &CheckError{Code: ErrCodeVariable, Name: name, Location: loc, Err: err}
}
