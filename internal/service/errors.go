package service

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated      = errors.New("authentication required")
	ErrAsanaNotFound        = errors.New("asana not found")
	ErrImageNotFound        = errors.New("some images not found")
	ErrOwnershipDenied      = errors.New("caller is not the creator of this asana")
	ErrSystemAsanaImmutable = errors.New("system asanas do not accept image uploads")
	ErrInvalidOrderSet      = errors.New("display orders must be unique and within range")
	ErrSlotsExhausted       = errors.New("no free image slot available")
)

// InvalidInputError names the violated input constraint.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return e.Reason
}

func invalidInput(format string, args ...any) error {
	return &InvalidInputError{Reason: fmt.Sprintf(format, args...)}
}

// CapacityError reports an image cap that would be exceeded.
type CapacityError struct {
	Current int
	Limit   int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("image limit reached: %d of %d slots used", e.Current, e.Limit)
}
