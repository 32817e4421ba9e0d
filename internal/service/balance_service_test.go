package service

import (
	"context"
	"testing"

	"github.com/AvavSam/split-bills/internal/money"
	"github.com/AvavSam/split-bills/internal/storage"
)

// seedUneven produces balances a=+130, b=+40, c=-10, d=-160.
func seedUneven(t *testing.T, f *testFixture) (string, map[string]string) {
	t.Helper()

	groupID, ids := f.newGroup(t, "a", "b", "c", "d")
	f.expense(t, groupID, ids["a"], "160", map[string]string{ids["d"]: "160"})
	f.expense(t, groupID, ids["b"], "50", map[string]string{
		ids["a"]: "30", ids["b"]: "10", ids["c"]: "10",
	})
	return groupID, ids
}

func TestGroupBalances(t *testing.T) {
	f, cleanup := newTestFixture(t)
	defer cleanup()
	ctx := context.Background()

	groupID, ids := seedUneven(t, f)

	balances, err := f.balances.GroupBalances(ctx, groupID)
	if err != nil {
		t.Fatalf("GroupBalances failed: %v", err)
	}
	if len(balances) != 4 {
		t.Fatalf("got %d balances, want 4", len(balances))
	}

	want := map[string]string{
		ids["a"]: "130.00", ids["b"]: "40.00", ids["c"]: "-10.00", ids["d"]: "-160.00",
	}
	for _, b := range balances {
		if money.Format(b.Balance) != want[b.UserID] {
			t.Errorf("net(%s) = %s, want %s", b.DisplayName, money.Format(b.Balance), want[b.UserID])
		}
		if b.DisplayName == "" {
			t.Errorf("missing display name for %s", b.UserID)
		}
	}
}

func TestSuggestSettlements(t *testing.T) {
	f, cleanup := newTestFixture(t)
	defer cleanup()
	ctx := context.Background()

	groupID, ids := seedUneven(t, f)

	suggestions, err := f.balances.SuggestSettlements(ctx, groupID)
	if err != nil {
		t.Fatalf("SuggestSettlements failed: %v", err)
	}

	want := []struct {
		from, to, amount string
	}{
		{ids["d"], ids["a"], "130.00"},
		{ids["d"], ids["b"], "30.00"},
		{ids["c"], ids["b"], "10.00"},
	}
	if len(suggestions) != len(want) {
		t.Fatalf("got %d suggestions, want %d: %+v", len(suggestions), len(want), suggestions)
	}
	for i, w := range want {
		s := suggestions[i]
		if s.From.ID != w.from || s.To.ID != w.to || s.Amount != w.amount {
			t.Errorf("suggestion[%d] = %s->%s %s, want %s->%s %s",
				i, s.From.ID, s.To.ID, s.Amount, w.from, w.to, w.amount)
		}
		if s.From.Name == "" || s.To.Name == "" {
			t.Errorf("suggestion[%d] missing party names", i)
		}
	}

	// Suggesting is a read: no payments were recorded.
	payments, err := f.payments.ListPayments(ctx, groupID)
	if err != nil {
		t.Fatalf("ListPayments failed: %v", err)
	}
	if len(payments) != 0 {
		t.Errorf("got %d payments after suggest, want 0", len(payments))
	}
}

func TestSettleAll(t *testing.T) {
	f, cleanup := newTestFixture(t)
	defer cleanup()
	ctx := context.Background()

	groupID, ids := seedUneven(t, f)

	payments, err := f.balances.SettleAll(ctx, groupID, ids["a"])
	if err != nil {
		t.Fatalf("SettleAll failed: %v", err)
	}
	if len(payments) != 3 {
		t.Fatalf("got %d payments, want 3", len(payments))
	}

	// Every member's balance lands on zero.
	for name, id := range ids {
		if got := f.cachedBalance(t, groupID, id); got != "0.00" {
			t.Errorf("%s cache = %s, want 0.00", name, got)
		}
	}
	balances, err := f.balances.GroupBalances(ctx, groupID)
	if err != nil {
		t.Fatalf("GroupBalances failed: %v", err)
	}
	for _, b := range balances {
		if !b.Balance.IsZero() {
			t.Errorf("net(%s) = %s after settle-all, want 0", b.UserID, money.Format(b.Balance))
		}
	}

	// A second settle-all finds nothing to do.
	again, err := f.balances.SettleAll(ctx, groupID, ids["a"])
	if err != nil {
		t.Fatalf("second SettleAll failed: %v", err)
	}
	if len(again) != 0 {
		t.Errorf("got %d payments on settled group, want 0", len(again))
	}
}

// hookedStore runs a callback once, right before the first transaction it
// opens. Simulates a competing writer committing between a request's
// pre-reads and its own transaction.
type hookedStore struct {
	storage.Store
	beforeTx func()
}

func (s *hookedStore) InTx(ctx context.Context, fn func(tx storage.Tx) error) error {
	if s.beforeTx != nil {
		hook := s.beforeTx
		s.beforeTx = nil
		hook()
	}
	return s.Store.InTx(ctx, fn)
}

func TestSettleAllUsesInTransactionBalances(t *testing.T) {
	f, cleanup := newTestFixture(t)
	defer cleanup()
	ctx := context.Background()

	groupID, ids := f.newGroup(t, "alice", "bob")
	f.expense(t, groupID, ids["alice"], "50", map[string]string{ids["bob"]: "50"})

	// A competing expense commits after the settle request starts but before
	// its transaction opens, flipping who owes whom. The plan must be built
	// from the state the transaction sees, not from an earlier snapshot.
	hooked := &hookedStore{Store: f.store, beforeTx: func() {
		f.expense(t, groupID, ids["bob"], "80", map[string]string{ids["alice"]: "80"})
	}}

	payments, err := NewBalanceService(hooked).SettleAll(ctx, groupID, ids["alice"])
	if err != nil {
		t.Fatalf("SettleAll failed: %v", err)
	}

	// After both expenses: alice +50-80 = -30, bob -50+80 = +30.
	if len(payments) != 1 {
		t.Fatalf("got %d payments, want 1: %+v", len(payments), payments)
	}
	p := payments[0]
	if p.FromUserID != ids["alice"] || p.ToUserID != ids["bob"] || money.Format(p.Amount) != "30.00" {
		t.Errorf("payment = %s->%s %s, want alice->bob 30.00",
			p.FromUserID, p.ToUserID, money.Format(p.Amount))
	}

	balances, err := f.balances.GroupBalances(ctx, groupID)
	if err != nil {
		t.Fatalf("GroupBalances failed: %v", err)
	}
	for _, b := range balances {
		if !b.Balance.IsZero() {
			t.Errorf("net(%s) = %s after settle-all, want 0", b.UserID, money.Format(b.Balance))
		}
	}
}

func TestReconcile(t *testing.T) {
	f, cleanup := newTestFixture(t)
	defer cleanup()
	ctx := context.Background()

	groupID, ids := f.newGroup(t, "alice", "bob")
	f.expense(t, groupID, ids["alice"], "50", map[string]string{ids["bob"]: "50"})

	// Tamper with bob's cache behind the services' back.
	err := f.store.InTx(ctx, func(tx storage.Tx) error {
		return tx.SetNetBalance(ctx, groupID, ids["bob"], money.MustParse("99.99"))
	})
	if err != nil {
		t.Fatalf("SetNetBalance failed: %v", err)
	}

	// Report only: drift is visible, cache stays wrong.
	drifts, err := f.balances.Reconcile(ctx, groupID, false)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if len(drifts) != 1 {
		t.Fatalf("got %d drifts, want 1: %+v", len(drifts), drifts)
	}
	if drifts[0].UserID != ids["bob"] || drifts[0].Cached != "99.99" || drifts[0].Computed != "-50.00" {
		t.Errorf("drift = %+v, want bob 99.99 vs -50.00", drifts[0])
	}
	if got := f.cachedBalance(t, groupID, ids["bob"]); got != "99.99" {
		t.Errorf("cache changed without repair: %s", got)
	}

	// Repair rewrites the cache but never the facts.
	if _, err := f.balances.Reconcile(ctx, groupID, true); err != nil {
		t.Fatalf("Reconcile repair failed: %v", err)
	}
	if got := f.cachedBalance(t, groupID, ids["bob"]); got != "-50.00" {
		t.Errorf("bob cache after repair = %s, want -50.00", got)
	}
	expenses, err := f.expenses.ListExpenses(ctx, groupID)
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(expenses) != 1 {
		t.Errorf("repair touched the expense history: %d expenses", len(expenses))
	}

	// Clean group reports no drift.
	drifts, err = f.balances.Reconcile(ctx, groupID, false)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if len(drifts) != 0 {
		t.Errorf("got %d drifts after repair, want 0", len(drifts))
	}
}
