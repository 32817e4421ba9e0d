package ledger

import "errors"

// ErrInvariantViolation marks a broken accounting invariant: shares that do
// not sum to an expense total, a group whose balances do not sum to zero, or
// a settlement plan that cannot zero both sides. Operations fail loudly on
// it; nothing auto-corrects.
var ErrInvariantViolation = errors.New("ledger invariant violation")
