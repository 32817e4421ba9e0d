package models

import "github.com/shopspring/decimal"

// Group represents a set of members who share expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates").
	Name string

	// CreatedBy is the user ID of the group creator.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// Membership joins a user to a group and carries the denormalized balance.
type Membership struct {
	GroupID string
	UserID  string

	// NetBalance is the cached net position of this member. It is a read
	// optimization, never the source of truth: positive means the group owes
	// the member, negative means the member owes the group. It must always be
	// re-derivable from the group's expense and payment history.
	NetBalance decimal.Decimal

	// JoinedAt is the Unix timestamp when the user joined the group.
	JoinedAt int64
}
