package transport

import (
	"github.com/AvavSam/split-bills/internal/models"
	"github.com/AvavSam/split-bills/internal/money"
	"github.com/AvavSam/split-bills/internal/service"
)

// Amounts cross the wire as two-decimal strings; they are parsed into exact
// decimals at the boundary and never touch floats.

type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	CreatedAt   int64  `json:"created_at"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type CreateGroupRequest struct {
	Name string `json:"name"`
}

type GroupRequest struct {
	GroupID string `json:"group_id"`
}

type Group struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedBy string `json:"created_by"`
	CreatedAt int64  `json:"created_at"`
}

type GroupResponse struct {
	Group Group `json:"group"`
}

type MemberRequest struct {
	GroupID string `json:"group_id"`
	UserID  string `json:"user_id"`
}

type Member struct {
	UserID     string `json:"user_id"`
	NetBalance string `json:"net_balance"`
	JoinedAt   int64  `json:"joined_at"`
}

type ListMembersResponse struct {
	Members []Member `json:"members"`
}

type Share struct {
	UserID string `json:"user_id"`
	Amount string `json:"amount"`
}

type Expense struct {
	ID          string  `json:"id"`
	GroupID     string  `json:"group_id"`
	PayerID     string  `json:"payer_id"`
	Description string  `json:"description"`
	Total       string  `json:"total"`
	Shares      []Share `json:"shares"`
	CreatedAt   int64   `json:"created_at"`
}

type CreateExpenseRequest struct {
	GroupID     string  `json:"group_id"`
	PayerID     string  `json:"payer_id"`
	Description string  `json:"description"`
	Total       string  `json:"total"`
	Shares      []Share `json:"shares"`
}

type UpdateExpenseRequest struct {
	ExpenseID   string  `json:"expense_id"`
	PayerID     string  `json:"payer_id"`
	Description string  `json:"description"`
	Total       string  `json:"total"`
	Shares      []Share `json:"shares"`
}

type ExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type ExpenseResponse struct {
	Expense Expense `json:"expense"`
}

type ListExpensesResponse struct {
	Expenses []Expense `json:"expenses"`
}

type Item struct {
	Description string   `json:"description"`
	Amount      string   `json:"amount"`
	Assigned    []string `json:"assigned"`
}

type PreviewSplitRequest struct {
	Total        string   `json:"total"`
	Subtotal     string   `json:"subtotal"`
	Items        []Item   `json:"items"`
	Participants []string `json:"participants"`
}

type PreviewSplitResponse struct {
	Shares []Share `json:"shares"`
}

type Payment struct {
	ID         string `json:"id"`
	GroupID    string `json:"group_id"`
	FromUserID string `json:"from_user_id"`
	ToUserID   string `json:"to_user_id"`
	Amount     string `json:"amount"`
	Note       string `json:"note,omitempty"`
	CreatedBy  string `json:"created_by"`
	CreatedAt  int64  `json:"created_at"`
}

type CreatePaymentRequest struct {
	GroupID  string `json:"group_id"`
	ToUserID string `json:"to_user_id"`
	Amount   string `json:"amount"`
	Note     string `json:"note,omitempty"`
}

type PaymentRequest struct {
	PaymentID string `json:"payment_id"`
}

type PaymentResponse struct {
	Payment Payment `json:"payment"`
}

type ListPaymentsResponse struct {
	Payments []Payment `json:"payments"`
}

type Balance struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Balance     string `json:"balance"`
}

type GroupBalancesResponse struct {
	Balances []Balance `json:"balances"`
}

type SuggestSettlementsResponse struct {
	Settlements []service.SettlementSuggestion `json:"settlements"`
}

type SettleAllResponse struct {
	Payments []Payment `json:"payments"`
}

type ReconcileRequest struct {
	GroupID string `json:"group_id"`
	Repair  bool   `json:"repair"`
}

type ReconcileResponse struct {
	Drifts []service.Drift `json:"drifts"`
}

type Empty struct{}

func toUser(u *models.User) User {
	return User{ID: u.ID, Email: u.Email, DisplayName: u.DisplayName, CreatedAt: u.CreatedAt}
}

func toExpense(e *models.Expense) Expense {
	shares := make([]Share, len(e.Shares))
	for i, s := range e.Shares {
		shares[i] = Share{UserID: s.UserID, Amount: money.Format(s.Amount)}
	}
	return Expense{
		ID:          e.ID,
		GroupID:     e.GroupID,
		PayerID:     e.PayerID,
		Description: e.Description,
		Total:       money.Format(e.Total),
		Shares:      shares,
		CreatedAt:   e.CreatedAt,
	}
}

func toPayment(p *models.Payment) Payment {
	return Payment{
		ID:         p.ID,
		GroupID:    p.GroupID,
		FromUserID: p.FromUserID,
		ToUserID:   p.ToUserID,
		Amount:     money.Format(p.Amount),
		Note:       p.Note,
		CreatedBy:  p.CreatedBy,
		CreatedAt:  p.CreatedAt,
	}
}
