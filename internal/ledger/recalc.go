package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/AvavSam/split-bills/internal/models"
	"github.com/AvavSam/split-bills/internal/money"
)

// Tx is the transactional view the recomputation functions need. The storage
// layer's transaction handle satisfies it; passing the handle explicitly
// keeps the cache write inside the caller's transaction, atomic with the
// mutation that triggered it.
type Tx interface {
	ExpensesByGroup(ctx context.Context, groupID string) ([]models.Expense, error)
	PaymentsByGroup(ctx context.Context, groupID string) ([]models.Payment, error)
	MemberIDs(ctx context.Context, groupID string) ([]string, error)
	SetNetBalance(ctx context.Context, groupID, userID string, balance decimal.Decimal) error
}

// RecalculateUserBalance recomputes one member's net position from the full
// current transaction set and persists it into the membership cache. It never
// trusts a prior cached value or applies a delta, so it is idempotent and
// order-independent under concurrent mutation.
func RecalculateUserBalance(ctx context.Context, tx Tx, groupID, userID string) (decimal.Decimal, error) {
	expenses, err := tx.ExpensesByGroup(ctx, groupID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read expenses: %w", err)
	}
	payments, err := tx.PaymentsByGroup(ctx, groupID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read payments: %w", err)
	}

	balance := money.Round2(NetBalance(userID, expenses, payments))
	if err := tx.SetNetBalance(ctx, groupID, userID, balance); err != nil {
		return decimal.Zero, fmt.Errorf("failed to write balance cache: %w", err)
	}
	return balance, nil
}

// RecalculateUsersBalances recomputes every user in the set. Callers must
// pass the union of pre- and post-mutation participants of the changed
// record: an edit can move an expense to a different payer or drop a share
// holder, and both the old and new parties need fresh balances.
func RecalculateUsersBalances(ctx context.Context, tx Tx, groupID string, userIDs []string) error {
	expenses, err := tx.ExpensesByGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to read expenses: %w", err)
	}
	payments, err := tx.PaymentsByGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to read payments: %w", err)
	}

	balances := GroupBalances(expenses, payments)
	for _, userID := range userIDs {
		if err := tx.SetNetBalance(ctx, groupID, userID, money.Round2(balances[userID])); err != nil {
			return fmt.Errorf("failed to write balance cache for %s: %w", userID, err)
		}
	}
	return nil
}

// RecalculateAllGroupBalances refreshes the cache for every membership in the
// group. Reconciliation/repair path: it only ever rewrites the cache field,
// never the ledger facts.
func RecalculateAllGroupBalances(ctx context.Context, tx Tx, groupID string) error {
	members, err := tx.MemberIDs(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to list members: %w", err)
	}
	return RecalculateUsersBalances(ctx, tx, groupID, members)
}
