package modelanalyzer

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField matches every *MissingFieldError.
	ErrMissingField = errors.New("missing field")
	// ErrNotFound matches every *NotFoundError.
	ErrNotFound = errors.New("not found")
)

// MissingFieldError is returned when a queried attribute is absent from the graph.
type MissingFieldError struct {
	Field string
	// Node is the node the field was expected on, empty for graph level fields.
	Node string
}

func (e *MissingFieldError) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("field %s missing on node %s", e.Field, e.Node)
	}
	return fmt.Sprintf("field %s missing from network", e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// NotFoundError is returned when no node plays the queried role.
type NotFoundError struct {
	Role string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s found in network", e.Role)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
