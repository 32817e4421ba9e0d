package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AvavSam/split-bills/internal/models"
	"github.com/AvavSam/split-bills/internal/storage"
)

// GetPayment retrieves a payment by ID.
func (s *SQLiteStore) GetPayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	payment := &models.Payment{}
	var amount string
	var note sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, from_user_id, to_user_id, amount, note, created_by, created_at
		 FROM payments WHERE id = ?`,
		paymentID,
	).Scan(&payment.ID, &payment.GroupID, &payment.FromUserID, &payment.ToUserID,
		&amount, &note, &payment.CreatedBy, &payment.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("payment %s: %w", paymentID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	if payment.Amount, err = scanAmount(amount); err != nil {
		return nil, err
	}
	if note.Valid {
		payment.Note = note.String
	}
	return payment, nil
}

// ListPaymentsByGroup retrieves all payments for a group.
func (s *SQLiteStore) ListPaymentsByGroup(ctx context.Context, groupID string) ([]models.Payment, error) {
	return paymentsByGroup(ctx, s.db, groupID)
}

// PaymentsByGroup retrieves all payments for a group inside the transaction.
func (t *sqliteTx) PaymentsByGroup(ctx context.Context, groupID string) ([]models.Payment, error) {
	return paymentsByGroup(ctx, t.tx, groupID)
}

// InsertPayment persists a payment.
func (t *sqliteTx) InsertPayment(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if payment.CreatedAt == 0 {
		payment.CreatedAt = time.Now().Unix()
	}

	var note any
	if payment.Note != "" {
		note = payment.Note
	}

	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO payments (id, group_id, from_user_id, to_user_id, amount, note, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		payment.ID, payment.GroupID, payment.FromUserID, payment.ToUserID,
		storeAmount(payment.Amount), note, payment.CreatedBy, payment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

// DeletePayment removes a payment by ID.
func (t *sqliteTx) DeletePayment(ctx context.Context, paymentID string) error {
	res, err := t.tx.ExecContext(ctx, "DELETE FROM payments WHERE id = ?", paymentID)
	if err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("payment %s: %w", paymentID, storage.ErrNotFound)
	}
	return nil
}

// HasRecentPayment reports whether an identical payment (same group, payer,
// receiver and amount) exists within the trailing window.
func (t *sqliteTx) HasRecentPayment(ctx context.Context, groupID, fromID, toID string, amount decimal.Decimal, window time.Duration) (bool, error) {
	cutoff := time.Now().Add(-window).Unix()
	var one int
	err := t.tx.QueryRowContext(ctx,
		`SELECT 1 FROM payments
		 WHERE group_id = ? AND from_user_id = ? AND to_user_id = ? AND amount = ? AND created_at >= ?
		 LIMIT 1`,
		groupID, fromID, toID, storeAmount(amount), cutoff,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check recent payments: %w", err)
	}
	return true, nil
}

func paymentsByGroup(ctx context.Context, q querier, groupID string) ([]models.Payment, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, group_id, from_user_id, to_user_id, amount, note, created_by, created_at
		 FROM payments WHERE group_id = ? ORDER BY created_at, id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var payment models.Payment
		var amount string
		var note sql.NullString
		if err := rows.Scan(&payment.ID, &payment.GroupID, &payment.FromUserID, &payment.ToUserID,
			&amount, &note, &payment.CreatedBy, &payment.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		if payment.Amount, err = scanAmount(amount); err != nil {
			return nil, err
		}
		if note.Valid {
			payment.Note = note.String
		}
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}
	return payments, nil
}
