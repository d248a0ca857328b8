package service

import "errors"

// Expected failure modes, surfaced to handlers for status mapping.
// Validation and not-found cases are distinct so the transport layer can
// answer 400 vs 404; anything else is treated as a store failure.
var (
	// ErrInvalidID marks a malformed identifier in the request path, so read
	// endpoints can answer 400 instead of treating it as a store failure.
	ErrInvalidID = errors.New("malformed identifier")

	ErrOrderNotFound    = errors.New("order not found")
	ErrSpendingNotFound = errors.New("spending not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrReportNotFound   = errors.New("report not found")

	ErrNotCreditOrder     = errors.New("order is not a credit order")
	ErrCreditInfoMissing  = errors.New("credit data not found for this order")
	ErrCreditSettled      = errors.New("debt is already fully paid")
	ErrPaymentExceedsDebt = errors.New("payment amount exceeds remaining debt")
)
