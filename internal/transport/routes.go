package transport

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AvavSam/split-bills/internal/auth"
	"github.com/AvavSam/split-bills/internal/middleware"
)

// Procedure paths, Connect style: /<package>.<Service>/<Method>.
const (
	procRegister           = "/splitbills.v1.AuthService/Register"
	procLogin              = "/splitbills.v1.AuthService/Login"
	procCreateGroup        = "/splitbills.v1.GroupService/CreateGroup"
	procGetGroup           = "/splitbills.v1.GroupService/GetGroup"
	procDeleteGroup        = "/splitbills.v1.GroupService/DeleteGroup"
	procAddMember          = "/splitbills.v1.GroupService/AddMember"
	procRemoveMember       = "/splitbills.v1.GroupService/RemoveMember"
	procListMembers        = "/splitbills.v1.GroupService/ListMembers"
	procCreateExpense      = "/splitbills.v1.ExpenseService/CreateExpense"
	procUpdateExpense      = "/splitbills.v1.ExpenseService/UpdateExpense"
	procDeleteExpense      = "/splitbills.v1.ExpenseService/DeleteExpense"
	procGetExpense         = "/splitbills.v1.ExpenseService/GetExpense"
	procListExpenses       = "/splitbills.v1.ExpenseService/ListExpenses"
	procPreviewSplit       = "/splitbills.v1.ExpenseService/PreviewSplit"
	procCreatePayment      = "/splitbills.v1.PaymentService/CreatePayment"
	procDeletePayment      = "/splitbills.v1.PaymentService/DeletePayment"
	procListPayments       = "/splitbills.v1.PaymentService/ListPayments"
	procGroupBalances      = "/splitbills.v1.BalanceService/GroupBalances"
	procSuggestSettlements = "/splitbills.v1.BalanceService/SuggestSettlements"
	procSettleAll          = "/splitbills.v1.BalanceService/SettleAll"
	procReconcile          = "/splitbills.v1.BalanceService/Reconcile"
)

// NewMux wires every RPC onto a ServeMux together with /metrics and
// /healthz. Register and Login are the only unauthenticated procedures.
func NewMux(srv *Server, jwtManager *auth.JWTManager) *http.ServeMux {
	public := connect.WithOptions(
		connect.WithCodec(jsonCodec{}),
		connect.WithInterceptors(middleware.Metrics(), middleware.Logging()),
	)
	protected := connect.WithOptions(
		connect.WithCodec(jsonCodec{}),
		connect.WithInterceptors(middleware.Metrics(), middleware.Logging(), middleware.RequireAuth(jwtManager)),
	)

	mux := http.NewServeMux()

	handle(mux, procRegister, srv.register, public)
	handle(mux, procLogin, srv.login, public)

	handle(mux, procCreateGroup, srv.createGroup, protected)
	handle(mux, procGetGroup, srv.getGroup, protected)
	handle(mux, procDeleteGroup, srv.deleteGroup, protected)
	handle(mux, procAddMember, srv.addMember, protected)
	handle(mux, procRemoveMember, srv.removeMember, protected)
	handle(mux, procListMembers, srv.listMembers, protected)

	handle(mux, procCreateExpense, srv.createExpense, protected)
	handle(mux, procUpdateExpense, srv.updateExpense, protected)
	handle(mux, procDeleteExpense, srv.deleteExpense, protected)
	handle(mux, procGetExpense, srv.getExpense, protected)
	handle(mux, procListExpenses, srv.listExpenses, protected)
	handle(mux, procPreviewSplit, srv.previewSplit, protected)

	handle(mux, procCreatePayment, srv.createPayment, protected)
	handle(mux, procDeletePayment, srv.deletePayment, protected)
	handle(mux, procListPayments, srv.listPayments, protected)

	handle(mux, procGroupBalances, srv.groupBalances, protected)
	handle(mux, procSuggestSettlements, srv.suggestSettlements, protected)
	handle(mux, procSettleAll, srv.settleAll, protected)
	handle(mux, procReconcile, srv.reconcile, protected)

	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return mux
}

func handle[Req, Res any](
	mux *http.ServeMux,
	procedure string,
	fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error),
	opts connect.HandlerOption,
) {
	mux.Handle(procedure, connect.NewUnaryHandler(procedure, fn, opts))
}
