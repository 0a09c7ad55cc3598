package domain

import (
	"errors"
	"fmt"
)

// ErrEntityNotFound is returned when an owning entity required by an update is absent.
var ErrEntityNotFound = errors.New("entity not found")

// EntityNotFound wraps ErrEntityNotFound with the entity kind and id.
func EntityNotFound(kind, id string) error {
	return fmt.Errorf("%w: %s %s", ErrEntityNotFound, kind, id)
}
