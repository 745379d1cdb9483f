package errors

import (
	"fmt"

	"github.com/oudaybenrhouma/ghalinino-api/internal/domain"
)

// ErrNotFound is returned when a resource is not found
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized is returned when authentication fails
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrConflict is returned when there's a conflict (e.g., idempotency)
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "conflict"
}

// ErrValidation is returned when validation fails. MessageKey refers to the
// i18n catalog so the API layer can localize it.
type ErrValidation struct {
	Message    string
	MessageKey string
	Fields     map[string]string
}

func (e *ErrValidation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// ErrStockConflict is returned when a requested quantity exceeds live stock.
// Available carries the authoritative quantity so callers can name it.
type ErrStockConflict struct {
	ProductID string
	Requested int
	Available int
}

func (e *ErrStockConflict) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// ErrMinimumOrder is returned when a wholesale order is below the minimum
type ErrMinimumOrder struct {
	Minimum   int64
	Total     int64
	Remaining int64
}

func (e *ErrMinimumOrder) Error() string {
	return fmt.Sprintf("wholesale minimum order not met: %d millimes short of %d",
		e.Remaining, e.Minimum)
}

// ErrInvalidStateTransition is returned when an invalid state transition is attempted
type ErrInvalidStateTransition struct {
	From domain.OrderStatus
	To   domain.OrderStatus
}

func (e *ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}
