package service

import (
	"context"
	"errors"
	"testing"

	"github.com/AvavSam/split-bills/internal/ledger"
	"github.com/AvavSam/split-bills/internal/models"
	"github.com/AvavSam/split-bills/internal/money"
	"github.com/AvavSam/split-bills/internal/storage"
)

func TestCreateExpenseUpdatesCaches(t *testing.T) {
	f, cleanup := newTestFixture(t)
	defer cleanup()

	groupID, ids := f.newGroup(t, "alice", "bob", "charlie")
	f.expense(t, groupID, ids["alice"], "90", map[string]string{
		ids["alice"]: "30", ids["bob"]: "30", ids["charlie"]: "30",
	})

	if got := f.cachedBalance(t, groupID, ids["alice"]); got != "60.00" {
		t.Errorf("alice cache = %s, want 60.00", got)
	}
	if got := f.cachedBalance(t, groupID, ids["bob"]); got != "-30.00" {
		t.Errorf("bob cache = %s, want -30.00", got)
	}
	if got := f.cachedBalance(t, groupID, ids["charlie"]); got != "-30.00" {
		t.Errorf("charlie cache = %s, want -30.00", got)
	}
}

func TestCreateExpenseRejectsUnbalancedShares(t *testing.T) {
	f, cleanup := newTestFixture(t)
	defer cleanup()
	ctx := context.Background()

	groupID, ids := f.newGroup(t, "alice", "bob")

	e := &models.Expense{
		GroupID: groupID,
		PayerID: ids["alice"],
		Total:   money.MustParse("30"),
		Shares: []models.ExpenseShare{
			{UserID: ids["bob"], Amount: money.MustParse("29.99")},
		},
	}
	err := f.expenses.CreateExpense(ctx, e)
	if !errors.Is(err, ledger.ErrInvariantViolation) {
		t.Fatalf("error = %v, want ErrInvariantViolation", err)
	}

	// Nothing was written, caches untouched.
	if got := f.cachedBalance(t, groupID, ids["alice"]); got != "0.00" {
		t.Errorf("alice cache = %s, want 0.00", got)
	}
	list, err := f.expenses.ListExpenses(ctx, groupID)
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("got %d expenses, want 0", len(list))
	}
}

func TestUpdateExpenseRecomputesOldParticipants(t *testing.T) {
	f, cleanup := newTestFixture(t)
	defer cleanup()
	ctx := context.Background()

	groupID, ids := f.newGroup(t, "alice", "bob", "charlie")
	e := f.expense(t, groupID, ids["alice"], "90", map[string]string{
		ids["alice"]: "30", ids["bob"]: "30", ids["charlie"]: "30",
	})

	// Rewrite the expense: bob paid, and charlie is no longer involved at
	// all. Charlie was a participant of the old version, so the update must
	// bring charlie's cache back to zero.
	updated := &models.Expense{
		ID:      e.ID,
		GroupID: groupID,
		PayerID: ids["bob"],
		Total:   money.MustParse("90"),
		Shares: []models.ExpenseShare{
			{UserID: ids["alice"], Amount: money.MustParse("45")},
			{UserID: ids["bob"], Amount: money.MustParse("45")},
		},
	}
	if err := f.expenses.UpdateExpense(ctx, updated); err != nil {
		t.Fatalf("UpdateExpense failed: %v", err)
	}

	if got := f.cachedBalance(t, groupID, ids["alice"]); got != "-45.00" {
		t.Errorf("alice cache = %s, want -45.00", got)
	}
	if got := f.cachedBalance(t, groupID, ids["bob"]); got != "45.00" {
		t.Errorf("bob cache = %s, want 45.00", got)
	}
	if got := f.cachedBalance(t, groupID, ids["charlie"]); got != "0.00" {
		t.Errorf("charlie cache = %s, want 0.00", got)
	}
}

func TestDeleteExpenseRestoresBalances(t *testing.T) {
	f, cleanup := newTestFixture(t)
	defer cleanup()
	ctx := context.Background()

	groupID, ids := f.newGroup(t, "alice", "bob")
	e := f.expense(t, groupID, ids["alice"], "50", map[string]string{
		ids["bob"]: "50",
	})

	if err := f.expenses.DeleteExpense(ctx, e.ID); err != nil {
		t.Fatalf("DeleteExpense failed: %v", err)
	}

	if got := f.cachedBalance(t, groupID, ids["alice"]); got != "0.00" {
		t.Errorf("alice cache = %s, want 0.00", got)
	}
	if got := f.cachedBalance(t, groupID, ids["bob"]); got != "0.00" {
		t.Errorf("bob cache = %s, want 0.00", got)
	}
	if _, err := f.expenses.GetExpense(ctx, e.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetExpense after delete: err = %v, want ErrNotFound", err)
	}
}

func TestCreateExpenseUnknownGroup(t *testing.T) {
	f, cleanup := newTestFixture(t)
	defer cleanup()

	_, ids := f.newGroup(t, "alice")

	e := &models.Expense{
		GroupID: "no-such-group",
		PayerID: ids["alice"],
		Total:   money.MustParse("10"),
		Shares:  []models.ExpenseShare{{UserID: ids["alice"], Amount: money.MustParse("10")}},
	}
	if err := f.expenses.CreateExpense(context.Background(), e); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
