// Package ledger derives member balances from a group's expense and payment
// history and plans settlements that zero them.
//
// There is exactly one balance formula in this package (apply/applyPayment),
// and every computation — group-wide, single-user, cached recomputation —
// folds through it. Callers must never hand-roll the paid/owed/sent/received
// arithmetic inline; two parallel formulas drifting apart is the defect class
// this layout exists to prevent.
package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/AvavSam/split-bills/internal/models"
	"github.com/AvavSam/split-bills/internal/money"
)

// net(u) = Σ expense.Total where payer == u
//        − Σ share.Amount  where share user == u
//        + Σ payment.Amount where from == u
//        − Σ payment.Amount where to == u

func applyExpense(balances map[string]decimal.Decimal, e models.Expense) {
	balances[e.PayerID] = balances[e.PayerID].Add(e.Total)
	for _, s := range e.Shares {
		balances[s.UserID] = balances[s.UserID].Sub(s.Amount)
	}
}

func applyPayment(balances map[string]decimal.Decimal, p models.Payment) {
	balances[p.FromUserID] = balances[p.FromUserID].Add(p.Amount)
	balances[p.ToUserID] = balances[p.ToUserID].Sub(p.Amount)
}

// GroupBalances folds the group's full transaction history into the net
// position of every member referenced by it. Pure function: no side effects,
// idempotent for a fixed history.
func GroupBalances(expenses []models.Expense, payments []models.Payment) map[string]decimal.Decimal {
	balances := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		applyExpense(balances, e)
	}
	for _, p := range payments {
		applyPayment(balances, p)
	}
	return balances
}

// NetBalance computes one user's net position from the same fold as
// GroupBalances, restricted to the given user.
func NetBalance(userID string, expenses []models.Expense, payments []models.Payment) decimal.Decimal {
	return GroupBalances(expenses, payments)[userID]
}

// CheckConservation verifies that money is neither created nor destroyed:
// the net positions of all members must sum to zero within money.Epsilon.
func CheckConservation(balances map[string]decimal.Decimal) error {
	total := decimal.Zero
	for _, b := range balances {
		total = total.Add(b)
	}
	if !money.Settled(total) {
		return fmt.Errorf("%w: group balances sum to %s, want 0", ErrInvariantViolation, money.Format(total))
	}
	return nil
}

// ValidateShares verifies that the share amounts of an expense sum exactly to
// its total. Violations are rejected, never rescaled.
func ValidateShares(e *models.Expense) error {
	sum := decimal.Zero
	for _, s := range e.Shares {
		sum = sum.Add(s.Amount)
	}
	if !sum.Equal(e.Total) {
		return fmt.Errorf("%w: shares sum to %s, expense total is %s",
			ErrInvariantViolation, money.Format(sum), money.Format(e.Total))
	}
	return nil
}
