package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownMetalLevel is returned when an edit targets a tier that cannot carry a rate change.
	ErrUnknownMetalLevel = errors.New("unknown metal level")

	// ErrNoSelection is returned when a state or rating area selection resolves to nothing.
	ErrNoSelection = errors.New("no state or rating area selected")
)

// EmptyInputError is returned when a reducer is asked to reduce an empty group
type EmptyInputError struct {
	Op string
}

func (e *EmptyInputError) Error() string {
	if e.Op == "" {
		return "empty input"
	}
	return fmt.Sprintf("%s: empty input", e.Op)
}

// InvalidPercentageError is returned when an edited rate change cannot be read as a number
type InvalidPercentageError struct {
	Issuer     string
	MetalLevel MetalLevel
	Value      any
	Err        error
}

func (e *InvalidPercentageError) Error() string {
	msg := fmt.Sprintf("invalid percentage %v for %s / %s", e.Value, e.Issuer, e.MetalLevel)
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidPercentageError) Unwrap() error {
	return e.Err
}

// NewInvalidPercentageError creates a new InvalidPercentageError.
func NewInvalidPercentageError(issuer string, level MetalLevel, value any, err error) error {
	return &InvalidPercentageError{
		Issuer:     issuer,
		MetalLevel: level,
		Value:      value,
		Err:        err,
	}
}
