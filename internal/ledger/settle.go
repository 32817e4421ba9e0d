package ledger

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/AvavSam/split-bills/internal/models"
	"github.com/AvavSam/split-bills/internal/money"
)

// Settlements converts a snapshot of net balances into a small ordered list
// of debtor→creditor transfers that, if executed, bring every balance to
// zero.
//
// Greedy strategy: creditors and debtors are each sorted descending by
// magnitude (stable, so equal balances keep their input order), then matched
// with two cursors, transferring min(creditor remaining, debtor remaining)
// each step. A cursor advances once its side's remaining is within
// money.Epsilon of zero; both may advance in the same step when a transfer
// exhausts both exactly.
//
// Members already within Epsilon of zero produce no transfers. If one list
// exhausts while the other still holds more than Epsilon, the input violated
// conservation and an error is returned rather than dropping the residue.
func Settlements(balances []models.UserBalance) ([]models.Settlement, error) {
	type party struct {
		userID    string
		remaining decimal.Decimal
	}

	var creditors, debtors []party
	for _, b := range balances {
		switch {
		case b.Balance.Abs().LessThan(money.Epsilon):
			// Strictly below the tolerance: already settled, emits nothing.
			// A balance of exactly ±0.01 still gets its one transfer.
		case b.Balance.IsPositive():
			creditors = append(creditors, party{b.UserID, b.Balance})
		case b.Balance.IsNegative():
			debtors = append(debtors, party{b.UserID, b.Balance.Neg()})
		}
	}

	sort.SliceStable(creditors, func(i, j int) bool {
		return creditors[i].remaining.GreaterThan(creditors[j].remaining)
	})
	sort.SliceStable(debtors, func(i, j int) bool {
		return debtors[i].remaining.GreaterThan(debtors[j].remaining)
	})

	var plan []models.Settlement
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		transfer := money.Min(debtors[i].remaining, creditors[j].remaining)
		plan = append(plan, models.Settlement{
			FromUserID: debtors[i].userID,
			ToUserID:   creditors[j].userID,
			Amount:     transfer,
		})

		debtors[i].remaining = debtors[i].remaining.Sub(transfer)
		creditors[j].remaining = creditors[j].remaining.Sub(transfer)

		if money.Settled(debtors[i].remaining) {
			i++
		}
		if money.Settled(creditors[j].remaining) {
			j++
		}
	}

	// Conservation guarantees both lists exhaust together; a residue on
	// either side means the input balances were inconsistent.
	for ; i < len(debtors); i++ {
		if !money.Settled(debtors[i].remaining) {
			return nil, fmt.Errorf("%w: debtor %s left with %s unsettled",
				ErrInvariantViolation, debtors[i].userID, money.Format(debtors[i].remaining))
		}
	}
	for ; j < len(creditors); j++ {
		if !money.Settled(creditors[j].remaining) {
			return nil, fmt.Errorf("%w: creditor %s left with %s unsettled",
				ErrInvariantViolation, creditors[j].userID, money.Format(creditors[j].remaining))
		}
	}

	return plan, nil
}
