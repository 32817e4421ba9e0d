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

// BalanceService exposes the read paths over the ledger: group balances,
// settlement suggestions, settle-all execution, and cache reconciliation.
type BalanceService struct {
	store storage.Store
}

// NewBalanceService creates a new BalanceService with the given storage backend.
func NewBalanceService(store storage.Store) *BalanceService {
	return &BalanceService{store: store}
}

// SettlementSuggestion is the presentation shape of one planned transfer.
type SettlementSuggestion struct {
	From   Party  `json:"from"`
	To     Party  `json:"to"`
	Amount string `json:"amount"`
}

// Party identifies one side of a suggested transfer.
type Party struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Drift reports one member whose cached balance disagrees with a fresh
// recomputation.
type Drift struct {
	UserID   string `json:"user_id"`
	Cached   string `json:"cached"`
	Computed string `json:"computed"`
}

// GroupBalances recomputes every member's net position from the group's full
// transaction history. Read path only: no caches are written, and the result
// is conservation-checked before it is returned.
func (s *BalanceService) GroupBalances(ctx context.Context, groupID string) ([]models.UserBalance, error) {
	memberships, err := s.store.ListMemberships(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}

	computed, err := s.computeBalances(ctx, groupID)
	if err != nil {
		return nil, err
	}

	balances := make([]models.UserBalance, 0, len(memberships))
	for _, m := range memberships {
		user, err := s.store.GetUserByID(ctx, m.UserID)
		if err != nil {
			return nil, err
		}
		balances = append(balances, models.UserBalance{
			UserID:      m.UserID,
			DisplayName: user.DisplayName,
			Balance:     money.Round2(computed[m.UserID]),
		})
	}
	return balances, nil
}

// SuggestSettlements runs the planner over the current balances and returns
// the transfers in presentation shape.
func (s *BalanceService) SuggestSettlements(ctx context.Context, groupID string) ([]SettlementSuggestion, error) {
	balances, err := s.GroupBalances(ctx, groupID)
	if err != nil {
		return nil, err
	}

	plan, err := ledger.Settlements(balances)
	if err != nil {
		slog.Error("SuggestSettlements planner failed", "group_id", groupID, "error", err)
		return nil, err
	}

	names := make(map[string]string, len(balances))
	for _, b := range balances {
		names[b.UserID] = b.DisplayName
	}

	suggestions := make([]SettlementSuggestion, len(plan))
	for i, st := range plan {
		suggestions[i] = SettlementSuggestion{
			From:   Party{ID: st.FromUserID, Name: names[st.FromUserID]},
			To:     Party{ID: st.ToUserID, Name: names[st.ToUserID]},
			Amount: money.Format(st.Amount),
		}
	}
	return suggestions, nil
}

// SettleAll materializes every suggested settlement as a payment in one
// atomic batch and refreshes every member's balance cache. The balance
// snapshot, the plan, the payment inserts and the recalculation all run in
// one transaction: a plan computed outside it could be stale by the time the
// payments land, and the emitted transfers would no longer drive the group to
// zero.
func (s *BalanceService) SettleAll(ctx context.Context, groupID, createdBy string) ([]models.Payment, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}

	var payments []models.Payment
	err := s.store.InTx(ctx, func(tx storage.Tx) error {
		expenses, err := tx.ExpensesByGroup(ctx, groupID)
		if err != nil {
			return err
		}
		pays, err := tx.PaymentsByGroup(ctx, groupID)
		if err != nil {
			return err
		}
		computed := ledger.GroupBalances(expenses, pays)
		if err := ledger.CheckConservation(computed); err != nil {
			return err
		}

		members, err := tx.MemberIDs(ctx, groupID)
		if err != nil {
			return err
		}
		balances := make([]models.UserBalance, 0, len(members))
		for _, id := range members {
			balances = append(balances, models.UserBalance{
				UserID:  id,
				Balance: money.Round2(computed[id]),
			})
		}

		plan, err := ledger.Settlements(balances)
		if err != nil {
			return err
		}
		if len(plan) == 0 {
			return nil
		}

		payments = make([]models.Payment, len(plan))
		for i, st := range plan {
			payments[i] = models.Payment{
				GroupID:    groupID,
				FromUserID: st.FromUserID,
				ToUserID:   st.ToUserID,
				Amount:     st.Amount,
				Note:       "settle up",
				CreatedBy:  createdBy,
			}
			if err := tx.InsertPayment(ctx, &payments[i]); err != nil {
				return err
			}
		}
		return ledger.RecalculateAllGroupBalances(ctx, tx, groupID)
	})
	if err != nil {
		slog.Error("SettleAll failed", "group_id", groupID, "error", err)
		return nil, err
	}

	slog.Info("Settled all balances", "group_id", groupID, "payments", len(payments))
	return payments, nil
}

// Reconcile compares every cached balance against a fresh recomputation and
// reports the discrepancies. With repair set, the caches are rewritten in one
// transaction; the underlying expense and payment records are never modified.
// Explicit operator action, not automatic.
func (s *BalanceService) Reconcile(ctx context.Context, groupID string, repair bool) ([]Drift, error) {
	memberships, err := s.store.ListMemberships(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}

	computed, err := s.computeBalances(ctx, groupID)
	if err != nil {
		return nil, err
	}

	var drifts []Drift
	for _, m := range memberships {
		want := money.Round2(computed[m.UserID])
		if !m.NetBalance.Equal(want) {
			drifts = append(drifts, Drift{
				UserID:   m.UserID,
				Cached:   money.Format(m.NetBalance),
				Computed: money.Format(want),
			})
		}
	}

	if repair && len(drifts) > 0 {
		err = s.store.InTx(ctx, func(tx storage.Tx) error {
			return ledger.RecalculateAllGroupBalances(ctx, tx, groupID)
		})
		if err != nil {
			slog.Error("Reconcile repair failed", "group_id", groupID, "error", err)
			return drifts, err
		}
		slog.Warn("Repaired balance cache drift", "group_id", groupID, "members", len(drifts))
	}
	return drifts, nil
}

// computeBalances folds the group history through the ledger and verifies
// conservation.
func (s *BalanceService) computeBalances(ctx context.Context, groupID string) (map[string]decimal.Decimal, error) {
	expenses, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	payments, err := s.store.ListPaymentsByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	balances := ledger.GroupBalances(expenses, payments)
	if err := ledger.CheckConservation(balances); err != nil {
		slog.Error("Group balances violate conservation", "group_id", groupID, "error", err)
		return nil, err
	}
	return balances, nil
}
