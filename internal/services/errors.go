// Package services defines the business logic for carts, orders, and user
// profiles. This file centralizes common service-level error values so that
// they can be consistently returned by service methods and checked by
// callers.
//
// These errors are intended for internal use by the service layer;
// translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

var (
	// ErrInvalidInput is returned when a checkout request arrives with an
	// empty cart or no phone number.
	ErrInvalidInput = errors.New("invalid checkout input")

	// ErrNoResolvableItems is returned when none of the cart's line items
	// could be matched against the order backend's catalog.
	ErrNoResolvableItems = errors.New("no resolvable items in cart")

	// ErrOrderBackend wraps failures from the order backend when creating a
	// draft order. No retry is attempted.
	ErrOrderBackend = errors.New("order backend error")

	// ErrUnknownGateway is returned for a checkout with a gateway name
	// other than click or payme.
	ErrUnknownGateway = errors.New("unknown payment gateway")
)
