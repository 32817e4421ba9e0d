package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AvavSam/split-bills/internal/ledger"
	"github.com/AvavSam/split-bills/internal/models"
	"github.com/AvavSam/split-bills/internal/storage"
)

// DuplicateWindow is the trailing window within which a payment with the
// same group, payer, receiver and amount is refused as a double submission.
//
// This is a best-effort debounce, not an idempotency guarantee: two distinct
// legitimate payments of the same amount between the same people inside the
// window are refused, and a replay after the window is accepted. A
// client-supplied idempotency key would close both gaps; the protocol does
// not carry one today.
const DuplicateWindow = 10 * time.Second

// PaymentService manages direct transfers between group members.
type PaymentService struct {
	store storage.Store
}

// NewPaymentService creates a new PaymentService with the given storage backend.
func NewPaymentService(store storage.Store) *PaymentService {
	return &PaymentService{store: store}
}

// CreatePayment records a transfer and recomputes both parties' balances in
// the same transaction. Duplicate submissions inside DuplicateWindow are
// refused with ErrDuplicatePayment.
func (s *PaymentService) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if !payment.Amount.IsPositive() {
		return fmt.Errorf("%w: got %s", ErrInvalidAmount, payment.Amount.String())
	}
	if payment.FromUserID == payment.ToUserID {
		return fmt.Errorf("%w: payer and receiver are the same user", ErrInvalidAmount)
	}
	if _, err := s.store.GetMembership(ctx, payment.GroupID, payment.FromUserID); err != nil {
		return err
	}
	if _, err := s.store.GetMembership(ctx, payment.GroupID, payment.ToUserID); err != nil {
		return err
	}

	err := s.store.InTx(ctx, func(tx storage.Tx) error {
		dup, err := tx.HasRecentPayment(ctx, payment.GroupID, payment.FromUserID, payment.ToUserID, payment.Amount, DuplicateWindow)
		if err != nil {
			return err
		}
		if dup {
			return fmt.Errorf("%w: %s -> %s for %s", ErrDuplicatePayment,
				payment.FromUserID, payment.ToUserID, payment.Amount.StringFixed(2))
		}
		if err := tx.InsertPayment(ctx, payment); err != nil {
			return err
		}
		return ledger.RecalculateUsersBalances(ctx, tx, payment.GroupID,
			[]string{payment.FromUserID, payment.ToUserID})
	})
	if err != nil {
		slog.Error("CreatePayment failed", "group_id", payment.GroupID, "error", err)
		return err
	}

	slog.Info("Payment created",
		"payment_id", payment.ID,
		"group_id", payment.GroupID,
		"from", payment.FromUserID,
		"to", payment.ToUserID,
	)
	return nil
}

// DeletePayment removes a payment and recomputes both parties' balances.
func (s *PaymentService) DeletePayment(ctx context.Context, paymentID string) error {
	existing, err := s.store.GetPayment(ctx, paymentID)
	if err != nil {
		return err
	}

	err = s.store.InTx(ctx, func(tx storage.Tx) error {
		if err := tx.DeletePayment(ctx, paymentID); err != nil {
			return err
		}
		return ledger.RecalculateUsersBalances(ctx, tx, existing.GroupID,
			[]string{existing.FromUserID, existing.ToUserID})
	})
	if err != nil {
		slog.Error("DeletePayment failed", "payment_id", paymentID, "error", err)
		return err
	}

	slog.Info("Payment deleted", "payment_id", paymentID, "group_id", existing.GroupID)
	return nil
}

// ListPayments retrieves every payment of a group.
func (s *PaymentService) ListPayments(ctx context.Context, groupID string) ([]models.Payment, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.store.ListPaymentsByGroup(ctx, groupID)
}
