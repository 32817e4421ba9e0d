package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AvavSam/split-bills/internal/ledger"
	"github.com/AvavSam/split-bills/internal/models"
	"github.com/AvavSam/split-bills/internal/money"
	"github.com/AvavSam/split-bills/internal/storage"
)

// GroupService manages groups and memberships.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// CreateGroup creates a group; the creator becomes its first member.
func (s *GroupService) CreateGroup(ctx context.Context, name, createdBy string) (*models.Group, error) {
	if _, err := s.store.GetUserByID(ctx, createdBy); err != nil {
		return nil, err
	}

	group := &models.Group{Name: name, CreatedBy: createdBy}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "name", name, "error", err)
		return nil, err
	}

	slog.Info("Group created", "group_id", group.ID, "name", group.Name)
	return group, nil
}

// GetGroup retrieves a group by ID.
func (s *GroupService) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	return s.store.GetGroup(ctx, groupID)
}

// DeleteGroup removes a group. Refused while any member carries an
// outstanding balance: deleting the group would erase debts that were never
// settled. The guard recomputes positions from the transaction history inside
// the same transaction as the delete, so neither a stale cache nor a
// concurrent mutation can let debts slip out.
func (s *GroupService) DeleteGroup(ctx context.Context, groupID string) error {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return err
	}

	err := s.store.InTx(ctx, func(tx storage.Tx) error {
		expenses, err := tx.ExpensesByGroup(ctx, groupID)
		if err != nil {
			return err
		}
		payments, err := tx.PaymentsByGroup(ctx, groupID)
		if err != nil {
			return err
		}
		balances := ledger.GroupBalances(expenses, payments)
		members, err := tx.MemberIDs(ctx, groupID)
		if err != nil {
			return err
		}
		for _, id := range members {
			if net := money.Round2(balances[id]); !money.Settled(net) {
				return fmt.Errorf("%w: member %s has balance %s",
					ErrBalanceNotSettled, id, money.Format(net))
			}
		}
		return tx.DeleteGroup(ctx, groupID)
	})
	if err != nil {
		slog.Error("DeleteGroup failed", "group_id", groupID, "error", err)
		return err
	}
	slog.Info("Group deleted", "group_id", groupID)
	return nil
}

// AddMember joins a user to a group with a zero balance.
func (s *GroupService) AddMember(ctx context.Context, groupID, userID string) error {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return err
	}
	if _, err := s.store.GetUserByID(ctx, userID); err != nil {
		return err
	}

	if err := s.store.AddMember(ctx, groupID, userID); err != nil {
		slog.Error("AddMember failed", "group_id", groupID, "user_id", userID, "error", err)
		return err
	}
	slog.Info("Member added", "group_id", groupID, "user_id", userID)
	return nil
}

// RemoveMember removes a user from a group. Refused while the member's
// balance is outside the settled tolerance. Like DeleteGroup, the guard folds
// the transaction history in the same transaction as the delete.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, userID string) error {
	if _, err := s.store.GetMembership(ctx, groupID, userID); err != nil {
		return err
	}

	err := s.store.InTx(ctx, func(tx storage.Tx) error {
		expenses, err := tx.ExpensesByGroup(ctx, groupID)
		if err != nil {
			return err
		}
		payments, err := tx.PaymentsByGroup(ctx, groupID)
		if err != nil {
			return err
		}
		if net := money.Round2(ledger.NetBalance(userID, expenses, payments)); !money.Settled(net) {
			return fmt.Errorf("%w: member %s has balance %s",
				ErrBalanceNotSettled, userID, money.Format(net))
		}
		return tx.RemoveMember(ctx, groupID, userID)
	})
	if err != nil {
		slog.Error("RemoveMember failed", "group_id", groupID, "user_id", userID, "error", err)
		return err
	}
	slog.Info("Member removed", "group_id", groupID, "user_id", userID)
	return nil
}

// ListMembers returns every membership with its cached balance, join order
// first. Dashboard read path; the cache is refreshed by every mutation, so
// this avoids refolding the history per request.
func (s *GroupService) ListMembers(ctx context.Context, groupID string) ([]models.Membership, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.store.ListMemberships(ctx, groupID)
}
