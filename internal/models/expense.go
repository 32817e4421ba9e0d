package models

import "github.com/shopspring/decimal"

// Expense represents an amount paid by one member on behalf of the group,
// split into per-member shares.
//
// Invariant: the share amounts sum exactly to Total. Input violating this is
// rejected at create/update time, never silently rescaled.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// PayerID is the member who paid the full amount.
	PayerID string

	// Description is a human-readable label (e.g., "Groceries").
	Description string

	// Total is the full expense amount paid by PayerID.
	Total decimal.Decimal

	// Shares is the portion of Total attributed to each participant.
	Shares []ExpenseShare

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// ExpenseShare is one participant's portion of an expense.
type ExpenseShare struct {
	UserID string
	Amount decimal.Decimal
}

// Participants returns the user IDs referenced by this expense: the payer
// plus every share holder. Used to determine whose balances a mutation
// affects.
func (e *Expense) Participants() []string {
	seen := make(map[string]bool, len(e.Shares)+1)
	ids := make([]string, 0, len(e.Shares)+1)
	if e.PayerID != "" && !seen[e.PayerID] {
		seen[e.PayerID] = true
		ids = append(ids, e.PayerID)
	}
	for _, s := range e.Shares {
		if !seen[s.UserID] {
			seen[s.UserID] = true
			ids = append(ids, s.UserID)
		}
	}
	return ids
}
