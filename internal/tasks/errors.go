package tasks

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when no task matches both id and owner.
// Absence and foreign ownership are deliberately indistinguishable.
var ErrNotFound = errors.New("task not found")

// StoreError wraps an underlying persistence failure.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("task store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
