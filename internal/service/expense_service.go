package service

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/AvavSam/split-bills/internal/ledger"
	"github.com/AvavSam/split-bills/internal/models"
	"github.com/AvavSam/split-bills/internal/money"
	"github.com/AvavSam/split-bills/internal/storage"
)

// ExpenseService manages expenses and keeps the balance caches of every
// affected member consistent with the transaction history.
type ExpenseService struct {
	store storage.Store
}

// NewExpenseService creates a new ExpenseService with the given storage backend.
func NewExpenseService(store storage.Store) *ExpenseService {
	return &ExpenseService{store: store}
}

// CreateExpense validates and persists a new expense, then recomputes the
// balances of the payer and every share holder in the same transaction.
func (s *ExpenseService) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if err := ledger.ValidateShares(expense); err != nil {
		slog.Error("CreateExpense share validation failed", "group_id", expense.GroupID, "error", err)
		return err
	}
	if _, err := s.store.GetGroup(ctx, expense.GroupID); err != nil {
		return err
	}

	err := s.store.InTx(ctx, func(tx storage.Tx) error {
		if err := tx.InsertExpense(ctx, expense); err != nil {
			return err
		}
		return ledger.RecalculateUsersBalances(ctx, tx, expense.GroupID, expense.Participants())
	})
	if err != nil {
		slog.Error("CreateExpense failed", "group_id", expense.GroupID, "error", err)
		return err
	}

	slog.Info("Expense created", "expense_id", expense.ID, "group_id", expense.GroupID)
	return nil
}

// UpdateExpense rewrites an expense. The recomputation set is the union of
// pre- and post-mutation participants: an edit can move the expense to a
// different payer or drop a share holder, and both versions' parties need
// fresh balances.
func (s *ExpenseService) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	if err := ledger.ValidateShares(expense); err != nil {
		slog.Error("UpdateExpense share validation failed", "expense_id", expense.ID, "error", err)
		return err
	}

	existing, err := s.store.GetExpense(ctx, expense.ID)
	if err != nil {
		return err
	}
	expense.GroupID = existing.GroupID

	affected := unionIDs(existing.Participants(), expense.Participants())

	err = s.store.InTx(ctx, func(tx storage.Tx) error {
		if err := tx.UpdateExpense(ctx, expense); err != nil {
			return err
		}
		return ledger.RecalculateUsersBalances(ctx, tx, expense.GroupID, affected)
	})
	if err != nil {
		slog.Error("UpdateExpense failed", "expense_id", expense.ID, "error", err)
		return err
	}

	slog.Info("Expense updated", "expense_id", expense.ID, "group_id", expense.GroupID)
	return nil
}

// DeleteExpense removes an expense and recomputes its participants'
// balances.
func (s *ExpenseService) DeleteExpense(ctx context.Context, expenseID string) error {
	existing, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return err
	}

	err = s.store.InTx(ctx, func(tx storage.Tx) error {
		if err := tx.DeleteExpense(ctx, expenseID); err != nil {
			return err
		}
		return ledger.RecalculateUsersBalances(ctx, tx, existing.GroupID, existing.Participants())
	})
	if err != nil {
		slog.Error("DeleteExpense failed", "expense_id", expenseID, "error", err)
		return err
	}

	slog.Info("Expense deleted", "expense_id", expenseID, "group_id", existing.GroupID)
	return nil
}

// GetExpense retrieves one expense with its shares.
func (s *ExpenseService) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	return s.store.GetExpense(ctx, expenseID)
}

// ListExpenses retrieves every expense of a group.
func (s *ExpenseService) ListExpenses(ctx context.Context, groupID string) ([]models.Expense, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.store.ListExpensesByGroup(ctx, groupID)
}

// SplitEqually produces shares dividing a total evenly among participants.
func (s *ExpenseService) SplitEqually(total string, participants []string) ([]models.ExpenseShare, error) {
	t, err := parseAmount(total)
	if err != nil {
		return nil, err
	}
	return ledger.SplitEqually(t, participants)
}

// SplitItems produces shares from itemized assignments with proportional tax.
func (s *ExpenseService) SplitItems(items []ledger.Item, total, subtotal string, participants []string) ([]models.ExpenseShare, error) {
	t, err := parseAmount(total)
	if err != nil {
		return nil, err
	}
	sub, err := parseAmount(subtotal)
	if err != nil {
		return nil, err
	}
	return ledger.SplitItems(items, t, sub, participants)
}

func unionIDs(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, id := range a {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, id := range b {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func parseAmount(s string) (decimal.Decimal, error) {
	return money.Parse(s)
}
