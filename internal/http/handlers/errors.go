// Package handlers implements the HTTP endpoints consumed by the storefront
// web view.
//
// This file defines the stable error codes for the failure envelope.
//
// Codes are lowercase snake_case. Generic codes mirror HTTP status
// semantics; domain codes name the operation that failed when the status
// alone is ambiguous.
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeCatalogFailed  = "catalog_failed"
	ErrCodeCartFailed     = "cart_failed"
	ErrCodeOrdersFailed   = "orders_failed"
	ErrCodeCheckoutFailed = "checkout_failed"
	ErrCodeEmptyOrder     = "no_resolvable_items"
)
