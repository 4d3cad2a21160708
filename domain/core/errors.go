package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// ErrConfig covers structural misconfiguration discovered before or
	// during setup. Fatal: the run aborts before any check executes.
	ErrConfig           = errors.New("invalid configuration")
	ErrUnmappedRole     = fmt.Errorf("%w: unmapped role", ErrConfig)
	ErrInvalidThreshold = fmt.Errorf("%w: threshold out of range", ErrConfig)
	ErrUnknownOperator  = fmt.Errorf("%w: unknown operator", ErrConfig)

	// ErrCheckExecution means a single check could not complete against
	// otherwise-valid config and data. The runner recovers it locally as a
	// FAIL result; sibling checks keep running.
	ErrCheckExecution = errors.New("check execution failed")

	// Input errors
	ErrEmptyDataset = errors.New("dataset has no rows")
	ErrNotFound     = errors.New("resource not found")
	ErrRunNotFound  = fmt.Errorf("%w: run", ErrNotFound)
)

// Error constructors with context
func NewUnmappedRoleError(role, column string) error {
	return fmt.Errorf("%w: role %q maps to column %q not present in any row", ErrUnmappedRole, role, column)
}

func NewThresholdError(check, name string, value float64) error {
	return fmt.Errorf("%w: %s.%s = %v, want [0,1]", ErrInvalidThreshold, check, name, value)
}

func NewCheckError(check string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrCheckExecution, check, err)
}

// Error checking helpers
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfig)
}

func IsCheckExecutionError(err error) bool {
	return errors.Is(err, ErrCheckExecution)
}
