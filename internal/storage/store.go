// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AvavSam/split-bills/internal/models"
)

// ErrNotFound is returned when a referenced user, group, membership, expense
// or payment does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for ledger storage operations. This
// abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
//
// Read methods outside a transaction serve the read paths (dashboards,
// settlement suggestions). Every mutating operation runs through InTx so its
// writes and the balance recomputation they trigger commit atomically.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// Groups and memberships
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	DeleteGroup(ctx context.Context, groupID string) error
	AddMember(ctx context.Context, groupID, userID string) error
	RemoveMember(ctx context.Context, groupID, userID string) error
	GetMembership(ctx context.Context, groupID, userID string) (*models.Membership, error)
	ListMemberships(ctx context.Context, groupID string) ([]models.Membership, error)

	// Reads
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)
	ListExpensesByGroup(ctx context.Context, groupID string) ([]models.Expense, error)
	GetPayment(ctx context.Context, paymentID string) (*models.Payment, error)
	ListPaymentsByGroup(ctx context.Context, groupID string) ([]models.Payment, error)

	// InTx runs fn inside a single atomic transaction. If fn returns an
	// error, every write made through the handle is rolled back; no partial
	// state is ever observable.
	InTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any resources held by the store.
	Close() error
}

// Tx is the transactional handle passed to InTx callbacks. It carries the
// multi-row writes of one logical operation together with the balance-cache
// updates, and satisfies ledger.Tx.
type Tx interface {
	InsertExpense(ctx context.Context, expense *models.Expense) error
	UpdateExpense(ctx context.Context, expense *models.Expense) error
	DeleteExpense(ctx context.Context, expenseID string) error

	InsertPayment(ctx context.Context, payment *models.Payment) error
	DeletePayment(ctx context.Context, paymentID string) error

	// HasRecentPayment reports whether a payment with the same group, payer,
	// receiver and amount was created within the trailing window. Best-effort
	// double-submission debounce, not an idempotency key.
	HasRecentPayment(ctx context.Context, groupID, fromID, toID string, amount decimal.Decimal, window time.Duration) (bool, error)

	// DeleteGroup and RemoveMember run inside the transaction so the
	// settled-balance guard and the delete commit together; a concurrent
	// mutation can not slip between check and delete.
	DeleteGroup(ctx context.Context, groupID string) error
	RemoveMember(ctx context.Context, groupID, userID string) error

	ExpensesByGroup(ctx context.Context, groupID string) ([]models.Expense, error)
	PaymentsByGroup(ctx context.Context, groupID string) ([]models.Payment, error)
	MemberIDs(ctx context.Context, groupID string) ([]string, error)
	SetNetBalance(ctx context.Context, groupID, userID string, balance decimal.Decimal) error
}
