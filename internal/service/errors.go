package service

import (
	"errors"
	"fmt"
)

// Error kinds. Callers classify failures with errors.Is against these.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrForbidden        = errors.New("forbidden")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrConflict         = errors.New("conflict")
	ErrExhausted        = errors.New("exhausted")
	ErrStoreUnavailable = errors.New("store unavailable")
)

var (
	ErrUserNotFound         = fmt.Errorf("user: %w", ErrNotFound)
	ErrProductNotFound      = fmt.Errorf("product: %w", ErrNotFound)
	ErrOrderNotFound        = fmt.Errorf("order: %w", ErrNotFound)
	ErrStatusNotFound       = fmt.Errorf("order status: %w", ErrNotFound)
	ErrEmptyItems           = fmt.Errorf("order has no items: %w", ErrInvalidArgument)
	ErrQuantityInvalid      = fmt.Errorf("quantity must be > 0: %w", ErrInvalidArgument)
	ErrDeliveryBeforeOrder  = fmt.Errorf("delivery date cannot precede order date: %w", ErrInvalidArgument)
	ErrInsufficientStock    = fmt.Errorf("insufficient stock: %w", ErrInvalidArgument)
	ErrTransitionNotAllowed = fmt.Errorf("status transition not allowed: %w", ErrInvalidArgument)
	ErrInvalidProduct       = fmt.Errorf("invalid product: %w", ErrInvalidArgument)
	ErrArticleExists        = fmt.Errorf("article already exists: %w", ErrConflict)
	ErrProductInUse         = fmt.Errorf("product is referenced by orders: %w", ErrConflict)
	ErrOrderNumberExhausted = fmt.Errorf("order number: %w: %w", ErrExhausted, ErrConflict)
	ErrInvalidCredentials   = fmt.Errorf("invalid login or password: %w", ErrUnauthorized)
	ErrUnknownRole          = errors.New("unknown role")
)

// storeErr marks a persistence failure as transient for callers.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
