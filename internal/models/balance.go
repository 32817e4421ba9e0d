package models

import "github.com/shopspring/decimal"

// UserBalance is one member's computed net position. Ephemeral: recomputed
// from the transaction history, never stored as ground truth.
type UserBalance struct {
	UserID      string
	DisplayName string

	// Balance is signed: positive = the group owes this member,
	// negative = this member owes the group.
	Balance decimal.Decimal
}

// Settlement is a suggested transfer from a debtor to a creditor that drives
// both balances toward zero. Produced transiently by the planner; executing
// one materializes a Payment, the settlement itself is never persisted.
type Settlement struct {
	FromUserID string
	ToUserID   string
	Amount     decimal.Decimal
}
