package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/AvavSam/split-bills/internal/models"
	"github.com/AvavSam/split-bills/internal/money"
)

// Item is a single line on a bill, assigned to one or more participants.
type Item struct {
	Description string
	Amount      decimal.Decimal
	Assigned    []string
}

// Remainder rule: after rounding each computed share to two decimals, the
// difference against the expense total is assigned in full to the first
// participant in input order. The rule is deliberate and centralized here so
// the produced shares always satisfy ValidateShares exactly.

// SplitEqually divides a total evenly among participants, producing shares
// that sum exactly to the rounded total.
func SplitEqually(total decimal.Decimal, participants []string) ([]models.ExpenseShare, error) {
	if len(participants) == 0 {
		return nil, fmt.Errorf("must have at least one participant")
	}

	total = money.Round2(total)
	each := money.Round2(total.Div(decimal.NewFromInt(int64(len(participants)))))

	shares := make([]models.ExpenseShare, len(participants))
	assigned := decimal.Zero
	for i, p := range participants {
		shares[i] = models.ExpenseShare{UserID: p, Amount: each}
		assigned = assigned.Add(each)
	}
	shares[0].Amount = shares[0].Amount.Add(total.Sub(assigned))
	return shares, nil
}

// SplitItems computes per-participant shares from itemized assignments with
// proportional tax: each person's share is their item subtotal scaled by
// total/subtotal, so the tax (total − subtotal) is distributed in proportion
// to what each person consumed. With no items the total splits equally.
func SplitItems(items []Item, total, subtotal decimal.Decimal, participants []string) ([]models.ExpenseShare, error) {
	if len(participants) == 0 {
		return nil, fmt.Errorf("must have at least one participant")
	}
	if len(items) == 0 {
		return SplitEqually(total, participants)
	}
	if subtotal.IsZero() {
		return nil, fmt.Errorf("subtotal cannot be zero")
	}

	subtotals := make(map[string]decimal.Decimal, len(participants))
	for _, p := range participants {
		subtotals[p] = decimal.Zero
	}

	for _, item := range items {
		if len(item.Assigned) == 0 {
			continue
		}
		perPerson := item.Amount.Div(decimal.NewFromInt(int64(len(item.Assigned))))
		for _, p := range item.Assigned {
			if _, ok := subtotals[p]; !ok {
				return nil, fmt.Errorf("item %q assigned to %q who is not a participant", item.Description, p)
			}
			subtotals[p] = subtotals[p].Add(perPerson)
		}
	}

	total = money.Round2(total)
	scale := total.Div(subtotal)

	shares := make([]models.ExpenseShare, len(participants))
	assigned := decimal.Zero
	for i, p := range participants {
		amount := money.Round2(subtotals[p].Mul(scale))
		shares[i] = models.ExpenseShare{UserID: p, Amount: amount}
		assigned = assigned.Add(amount)
	}
	shares[0].Amount = shares[0].Amount.Add(total.Sub(assigned))
	return shares, nil
}
