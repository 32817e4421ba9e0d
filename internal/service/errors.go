// Package service implements the application operations over the storage
// port and the ledger core. Each mutating operation executes its reads,
// balance recomputation, and writes inside one storage transaction.
package service

import "errors"

var (
	// ErrDuplicatePayment marks a payment creation matching an identical
	// payment within the debounce window.
	ErrDuplicatePayment = errors.New("identical payment was just recorded")

	// ErrBalanceNotSettled marks a member removal or group deletion attempted
	// while an outstanding balance remains.
	ErrBalanceNotSettled = errors.New("balance is not settled")

	// ErrInvalidAmount marks a non-positive payment amount.
	ErrInvalidAmount = errors.New("amount must be positive")
)
