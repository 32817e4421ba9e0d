package transport

import (
	"context"
	"fmt"

	"connectrpc.com/connect"

	"github.com/AvavSam/split-bills/internal/ledger"
	"github.com/AvavSam/split-bills/internal/middleware"
	"github.com/AvavSam/split-bills/internal/models"
	"github.com/AvavSam/split-bills/internal/money"
	"github.com/AvavSam/split-bills/internal/service"
)

// Server bundles the services behind the RPC surface.
type Server struct {
	Auth     *service.AuthService
	Groups   *service.GroupService
	Expenses *service.ExpenseService
	Payments *service.PaymentService
	Balances *service.BalanceService
}

func (s *Server) register(ctx context.Context, req *connect.Request[RegisterRequest]) (*connect.Response[AuthResponse], error) {
	user, token, err := s.Auth.Register(ctx, req.Msg.Email, req.Msg.DisplayName, req.Msg.Password)
	if err != nil {
		return nil, asConnectError(err)
	}
	return connect.NewResponse(&AuthResponse{User: toUser(user), Token: token}), nil
}

func (s *Server) login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[AuthResponse], error) {
	user, token, err := s.Auth.Login(ctx, req.Msg.Email, req.Msg.Password)
	if err != nil {
		return nil, asConnectError(err)
	}
	return connect.NewResponse(&AuthResponse{User: toUser(user), Token: token}), nil
}

func (s *Server) createGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[GroupResponse], error) {
	group, err := s.Groups.CreateGroup(ctx, req.Msg.Name, middleware.GetUserID(ctx))
	if err != nil {
		return nil, asConnectError(err)
	}
	return connect.NewResponse(&GroupResponse{Group: Group{
		ID: group.ID, Name: group.Name, CreatedBy: group.CreatedBy, CreatedAt: group.CreatedAt,
	}}), nil
}

func (s *Server) getGroup(ctx context.Context, req *connect.Request[GroupRequest]) (*connect.Response[GroupResponse], error) {
	group, err := s.Groups.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, asConnectError(err)
	}
	return connect.NewResponse(&GroupResponse{Group: Group{
		ID: group.ID, Name: group.Name, CreatedBy: group.CreatedBy, CreatedAt: group.CreatedAt,
	}}), nil
}

func (s *Server) deleteGroup(ctx context.Context, req *connect.Request[GroupRequest]) (*connect.Response[Empty], error) {
	if err := s.Groups.DeleteGroup(ctx, req.Msg.GroupID); err != nil {
		return nil, asConnectError(err)
	}
	return connect.NewResponse(&Empty{}), nil
}

func (s *Server) addMember(ctx context.Context, req *connect.Request[MemberRequest]) (*connect.Response[Empty], error) {
	if err := s.Groups.AddMember(ctx, req.Msg.GroupID, req.Msg.UserID); err != nil {
		return nil, asConnectError(err)
	}
	return connect.NewResponse(&Empty{}), nil
}

func (s *Server) removeMember(ctx context.Context, req *connect.Request[MemberRequest]) (*connect.Response[Empty], error) {
	if err := s.Groups.RemoveMember(ctx, req.Msg.GroupID, req.Msg.UserID); err != nil {
		return nil, asConnectError(err)
	}
	return connect.NewResponse(&Empty{}), nil
}

func (s *Server) listMembers(ctx context.Context, req *connect.Request[GroupRequest]) (*connect.Response[ListMembersResponse], error) {
	memberships, err := s.Groups.ListMembers(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, asConnectError(err)
	}
	members := make([]Member, len(memberships))
	for i, m := range memberships {
		members[i] = Member{UserID: m.UserID, NetBalance: money.Format(m.NetBalance), JoinedAt: m.JoinedAt}
	}
	return connect.NewResponse(&ListMembersResponse{Members: members}), nil
}

func (s *Server) createExpense(ctx context.Context, req *connect.Request[CreateExpenseRequest]) (*connect.Response[ExpenseResponse], error) {
	expense, err := expenseFromWire(req.Msg.GroupID, "", req.Msg.PayerID, req.Msg.Description, req.Msg.Total, req.Msg.Shares)
	if err != nil {
		return nil, asConnectError(err)
	}
	if err := s.Expenses.CreateExpense(ctx, expense); err != nil {
		return nil, asConnectError(err)
	}
	return connect.NewResponse(&ExpenseResponse{Expense: toExpense(expense)}), nil
}

func (s *Server) updateExpense(ctx context.Context, req *connect.Request[UpdateExpenseRequest]) (*connect.Response[ExpenseResponse], error) {
	expense, err := expenseFromWire("", req.Msg.ExpenseID, req.Msg.PayerID, req.Msg.Description, req.Msg.Total, req.Msg.Shares)
	if err != nil {
		return nil, asConnectError(err)
	}
	if err := s.Expenses.UpdateExpense(ctx, expense); err != nil {
		return nil, asConnectError(err)
	}
	// Re-read: the request struct has no creation timestamp, the row keeps
	// its original one.
	updated, err := s.Expenses.GetExpense(ctx, expense.ID)
	if err != nil {
		return nil, asConnectError(err)
	}
	return connect.NewResponse(&ExpenseResponse{Expense: toExpense(updated)}), nil
}

func (s *Server) deleteExpense(ctx context.Context, req *connect.Request[ExpenseRequest]) (*connect.Response[Empty], error) {
	if err := s.Expenses.DeleteExpense(ctx, req.Msg.ExpenseID); err != nil {
		return nil, asConnectError(err)
	}
	return connect.NewResponse(&Empty{}), nil
}

func (s *Server) getExpense(ctx context.Context, req *connect.Request[ExpenseRequest]) (*connect.Response[ExpenseResponse], error) {
	expense, err := s.Expenses.GetExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, asConnectError(err)
	}
	return connect.NewResponse(&ExpenseResponse{Expense: toExpense(expense)}), nil
}

func (s *Server) listExpenses(ctx context.Context, req *connect.Request[GroupRequest]) (*connect.Response[ListExpensesResponse], error) {
	expenses, err := s.Expenses.ListExpenses(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, asConnectError(err)
	}
	out := make([]Expense, len(expenses))
	for i := range expenses {
		out[i] = toExpense(&expenses[i])
	}
	return connect.NewResponse(&ListExpensesResponse{Expenses: out}), nil
}

func (s *Server) previewSplit(ctx context.Context, req *connect.Request[PreviewSplitRequest]) (*connect.Response[PreviewSplitResponse], error) {
	items := make([]ledger.Item, len(req.Msg.Items))
	for i, item := range req.Msg.Items {
		amount, err := money.Parse(item.Amount)
		if err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		items[i] = ledger.Item{Description: item.Description, Amount: amount, Assigned: item.Assigned}
	}

	var (
		shares []models.ExpenseShare
		err    error
	)
	if len(items) == 0 {
		shares, err = s.Expenses.SplitEqually(req.Msg.Total, req.Msg.Participants)
	} else {
		shares, err = s.Expenses.SplitItems(items, req.Msg.Total, req.Msg.Subtotal, req.Msg.Participants)
	}
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	out := make([]Share, len(shares))
	for i, sh := range shares {
		out[i] = Share{UserID: sh.UserID, Amount: money.Format(sh.Amount)}
	}
	return connect.NewResponse(&PreviewSplitResponse{Shares: out}), nil
}

func (s *Server) createPayment(ctx context.Context, req *connect.Request[CreatePaymentRequest]) (*connect.Response[PaymentResponse], error) {
	amount, err := money.Parse(req.Msg.Amount)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	userID := middleware.GetUserID(ctx)
	payment := &models.Payment{
		GroupID:    req.Msg.GroupID,
		FromUserID: userID,
		ToUserID:   req.Msg.ToUserID,
		Amount:     money.Round2(amount),
		Note:       req.Msg.Note,
		CreatedBy:  userID,
	}
	if err := s.Payments.CreatePayment(ctx, payment); err != nil {
		return nil, asConnectError(err)
	}
	return connect.NewResponse(&PaymentResponse{Payment: toPayment(payment)}), nil
}

func (s *Server) deletePayment(ctx context.Context, req *connect.Request[PaymentRequest]) (*connect.Response[Empty], error) {
	if err := s.Payments.DeletePayment(ctx, req.Msg.PaymentID); err != nil {
		return nil, asConnectError(err)
	}
	return connect.NewResponse(&Empty{}), nil
}

func (s *Server) listPayments(ctx context.Context, req *connect.Request[GroupRequest]) (*connect.Response[ListPaymentsResponse], error) {
	payments, err := s.Payments.ListPayments(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, asConnectError(err)
	}
	out := make([]Payment, len(payments))
	for i := range payments {
		out[i] = toPayment(&payments[i])
	}
	return connect.NewResponse(&ListPaymentsResponse{Payments: out}), nil
}

func (s *Server) groupBalances(ctx context.Context, req *connect.Request[GroupRequest]) (*connect.Response[GroupBalancesResponse], error) {
	balances, err := s.Balances.GroupBalances(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, asConnectError(err)
	}
	out := make([]Balance, len(balances))
	for i, b := range balances {
		out[i] = Balance{UserID: b.UserID, DisplayName: b.DisplayName, Balance: money.Format(b.Balance)}
	}
	return connect.NewResponse(&GroupBalancesResponse{Balances: out}), nil
}

func (s *Server) suggestSettlements(ctx context.Context, req *connect.Request[GroupRequest]) (*connect.Response[SuggestSettlementsResponse], error) {
	suggestions, err := s.Balances.SuggestSettlements(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, asConnectError(err)
	}
	return connect.NewResponse(&SuggestSettlementsResponse{Settlements: suggestions}), nil
}

func (s *Server) settleAll(ctx context.Context, req *connect.Request[GroupRequest]) (*connect.Response[SettleAllResponse], error) {
	payments, err := s.Balances.SettleAll(ctx, req.Msg.GroupID, middleware.GetUserID(ctx))
	if err != nil {
		return nil, asConnectError(err)
	}
	out := make([]Payment, len(payments))
	for i := range payments {
		out[i] = toPayment(&payments[i])
	}
	return connect.NewResponse(&SettleAllResponse{Payments: out}), nil
}

func (s *Server) reconcile(ctx context.Context, req *connect.Request[ReconcileRequest]) (*connect.Response[ReconcileResponse], error) {
	drifts, err := s.Balances.Reconcile(ctx, req.Msg.GroupID, req.Msg.Repair)
	if err != nil {
		return nil, asConnectError(err)
	}
	return connect.NewResponse(&ReconcileResponse{Drifts: drifts}), nil
}

func expenseFromWire(groupID, expenseID, payerID, description, total string, shares []Share) (*models.Expense, error) {
	t, err := money.Parse(total)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	expense := &models.Expense{
		ID:          expenseID,
		GroupID:     groupID,
		PayerID:     payerID,
		Description: description,
		Total:       money.Round2(t),
		Shares:      make([]models.ExpenseShare, len(shares)),
	}
	for i, sh := range shares {
		amount, err := money.Parse(sh.Amount)
		if err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument,
				fmt.Errorf("share for %s: %w", sh.UserID, err))
		}
		expense.Shares[i] = models.ExpenseShare{UserID: sh.UserID, Amount: amount}
	}
	return expense, nil
}
