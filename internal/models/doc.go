// Package models defines the core domain models for the split-bills service.
//
// # Models
//
//   - User: registered account identified by email
//   - Group: a set of members who share expenses
//   - Membership: join entity between users and groups, carrying the
//     denormalized net-balance cache
//   - Expense: an amount paid by one member and split into per-member shares
//   - Payment: a direct transfer between two members
//   - UserBalance: a member's computed net position (ephemeral)
//   - Settlement: a suggested transfer produced by the planner (never stored)
//
// # Design principles
//
//  1. Amounts are exact decimals (shopspring/decimal), never floats.
//  2. Membership.NetBalance is a read optimization only; it must always be
//     re-derivable from the expense/payment history.
//  3. Relationships use ID strings instead of pointers to avoid circular
//     references.
package models
