package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingPrerequisite = errors.New("missing prerequisite step")
	ErrUnknownStep         = errors.New("unknown pipeline step")
	ErrFileNotFound        = errors.New("file not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrExternalCall        = errors.New("external model call failed")
	ErrTemporary           = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// PrerequisiteError names the first incomplete step blocking a requested run.
type PrerequisiteError struct {
	Missing Step
}

func (e *PrerequisiteError) Error() string {
	return fmt.Sprintf("missing prerequisite step: %s", e.Missing)
}

func (e *PrerequisiteError) Unwrap() error {
	return ErrMissingPrerequisite
}
