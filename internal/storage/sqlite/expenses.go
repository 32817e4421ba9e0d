package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AvavSam/split-bills/internal/models"
	"github.com/AvavSam/split-bills/internal/storage"
)

// GetExpense retrieves an expense by ID, including its shares.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	return getExpense(ctx, s.db, expenseID)
}

// ListExpensesByGroup retrieves all expenses (with shares) for a group.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]models.Expense, error) {
	return expensesByGroup(ctx, s.db, groupID)
}

// ExpensesByGroup retrieves all expenses for a group inside the transaction.
func (t *sqliteTx) ExpensesByGroup(ctx context.Context, groupID string) ([]models.Expense, error) {
	return expensesByGroup(ctx, t.tx, groupID)
}

// InsertExpense persists an expense and its shares.
func (t *sqliteTx) InsertExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	_, err := t.tx.ExecContext(ctx,
		"INSERT INTO expenses (id, group_id, payer_id, description, total, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		expense.ID, expense.GroupID, expense.PayerID, expense.Description,
		storeAmount(expense.Total), expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	return insertShares(ctx, t.tx, expense)
}

// UpdateExpense rewrites an expense and replaces its shares.
func (t *sqliteTx) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	res, err := t.tx.ExecContext(ctx,
		"UPDATE expenses SET payer_id = ?, description = ?, total = ? WHERE id = ?",
		expense.PayerID, expense.Description, storeAmount(expense.Total), expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("expense %s: %w", expense.ID, storage.ErrNotFound)
	}

	if _, err := t.tx.ExecContext(ctx, "DELETE FROM expense_shares WHERE expense_id = ?", expense.ID); err != nil {
		return fmt.Errorf("failed to clear expense shares: %w", err)
	}
	return insertShares(ctx, t.tx, expense)
}

// DeleteExpense removes an expense; shares cascade.
func (t *sqliteTx) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := t.tx.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	return nil
}

func insertShares(ctx context.Context, q querier, expense *models.Expense) error {
	for _, share := range expense.Shares {
		_, err := q.ExecContext(ctx,
			"INSERT INTO expense_shares (expense_id, user_id, amount) VALUES (?, ?, ?)",
			expense.ID, share.UserID, storeAmount(share.Amount),
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense share: %w", err)
		}
	}
	return nil
}

func getExpense(ctx context.Context, q querier, expenseID string) (*models.Expense, error) {
	expense := &models.Expense{}
	var total string
	err := q.QueryRowContext(ctx,
		"SELECT id, group_id, payer_id, description, total, created_at FROM expenses WHERE id = ?",
		expenseID,
	).Scan(&expense.ID, &expense.GroupID, &expense.PayerID, &expense.Description, &total, &expense.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	if expense.Total, err = scanAmount(total); err != nil {
		return nil, err
	}

	if expense.Shares, err = sharesForExpense(ctx, q, expenseID); err != nil {
		return nil, err
	}
	return expense, nil
}

func sharesForExpense(ctx context.Context, q querier, expenseID string) ([]models.ExpenseShare, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT user_id, amount FROM expense_shares WHERE expense_id = ? ORDER BY user_id",
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense shares: %w", err)
	}
	defer rows.Close()

	var shares []models.ExpenseShare
	for rows.Next() {
		var share models.ExpenseShare
		var amount string
		if err := rows.Scan(&share.UserID, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan expense share: %w", err)
		}
		if share.Amount, err = scanAmount(amount); err != nil {
			return nil, err
		}
		shares = append(shares, share)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense shares: %w", err)
	}
	return shares, nil
}

func expensesByGroup(ctx context.Context, q querier, groupID string) ([]models.Expense, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id, group_id, payer_id, description, total, created_at FROM expenses WHERE group_id = ? ORDER BY created_at, id",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var expense models.Expense
		var total string
		if err := rows.Scan(&expense.ID, &expense.GroupID, &expense.PayerID,
			&expense.Description, &total, &expense.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		if expense.Total, err = scanAmount(total); err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	for i := range expenses {
		if expenses[i].Shares, err = sharesForExpense(ctx, q, expenses[i].ID); err != nil {
			return nil, err
		}
	}
	return expenses, nil
}
