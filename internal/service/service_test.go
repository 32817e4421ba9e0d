package service

import (
	"context"
	"os"
	"testing"

	"github.com/AvavSam/split-bills/internal/models"
	"github.com/AvavSam/split-bills/internal/money"
	"github.com/AvavSam/split-bills/internal/storage"
	"github.com/AvavSam/split-bills/internal/storage/sqlite"
)

// testFixture wires real services over a throwaway sqlite database.
type testFixture struct {
	store    storage.Store
	groups   *GroupService
	expenses *ExpenseService
	payments *PaymentService
	balances *BalanceService
}

func newTestFixture(t *testing.T) (*testFixture, func()) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	f := &testFixture{
		store:    store,
		groups:   NewGroupService(store),
		expenses: NewExpenseService(store),
		payments: NewPaymentService(store),
		balances: NewBalanceService(store),
	}
	return f, func() {
		store.Close()
		os.Remove(tmpFile.Name())
	}
}

// newGroup creates one user per name, a group owned by the first, and joins
// the rest. Returns the group ID and a name->userID map.
func (f *testFixture) newGroup(t *testing.T, names ...string) (string, map[string]string) {
	t.Helper()
	ctx := context.Background()

	ids := make(map[string]string, len(names))
	for _, name := range names {
		user := models.NewUser(name+"@example.com", name, "hash")
		if err := f.store.CreateUser(ctx, user); err != nil {
			t.Fatalf("failed to create user %s: %v", name, err)
		}
		ids[name] = user.ID
	}

	group, err := f.groups.CreateGroup(ctx, "Trip", ids[names[0]])
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	for _, name := range names[1:] {
		if err := f.groups.AddMember(ctx, group.ID, ids[name]); err != nil {
			t.Fatalf("AddMember failed: %v", err)
		}
	}
	return group.ID, ids
}

func (f *testFixture) expense(t *testing.T, groupID, payerID, total string, shares map[string]string) *models.Expense {
	t.Helper()

	e := &models.Expense{
		GroupID: groupID,
		PayerID: payerID,
		Total:   money.MustParse(total),
	}
	for userID, amount := range shares {
		e.Shares = append(e.Shares, models.ExpenseShare{UserID: userID, Amount: money.MustParse(amount)})
	}
	if err := f.expenses.CreateExpense(context.Background(), e); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	return e
}

// cachedBalance reads the stored per-member balance cache, formatted.
func (f *testFixture) cachedBalance(t *testing.T, groupID, userID string) string {
	t.Helper()

	m, err := f.store.GetMembership(context.Background(), groupID, userID)
	if err != nil {
		t.Fatalf("GetMembership failed: %v", err)
	}
	return money.Format(m.NetBalance)
}
