package models

import "github.com/shopspring/decimal"

// Payment represents a direct transfer between two group members, either
// user-initiated or produced by executing a settlement suggestion.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string

	// GroupID is the group this payment belongs to.
	GroupID string

	// FromUserID is the member who paid (debtor settling up).
	FromUserID string

	// ToUserID is the member who received the payment.
	ToUserID string

	// Amount is the transferred amount; always positive.
	Amount decimal.Decimal

	// Note is an optional description.
	Note string

	// CreatedBy is the user ID who recorded the payment.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the payment was recorded.
	CreatedAt int64
}
