package transport

import (
	"errors"

	"connectrpc.com/connect"

	"github.com/AvavSam/split-bills/internal/auth"
	"github.com/AvavSam/split-bills/internal/ledger"
	"github.com/AvavSam/split-bills/internal/service"
	"github.com/AvavSam/split-bills/internal/storage"
)

// asConnectError maps domain errors onto Connect codes. Invariant violations
// on input are invalid arguments; conflicts (duplicate payment, unsettled
// balance) refuse the operation without partial state; anything unmapped is
// an internal fault.
func asConnectError(err error) *connect.Error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}

	switch {
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, ledger.ErrInvariantViolation):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, service.ErrInvalidAmount):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, service.ErrDuplicatePayment):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, service.ErrBalanceNotSettled):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, auth.ErrEmailExists):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, auth.ErrWeakPassword):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, auth.ErrInvalidCredentials):
		return connect.NewError(connect.CodeUnauthenticated, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
