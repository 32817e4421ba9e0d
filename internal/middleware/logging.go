package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
)

// Logging returns an interceptor that logs one line per RPC with the
// procedure, caller, duration and outcome. Connect errors log at warn with
// their code; anything else is an internal failure and logs at error.
func Logging() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()

			resp, err := next(ctx, req)

			attrs := []any{
				"procedure", req.Spec().Procedure,
				"user_id", GetUserID(ctx), // empty on pre-auth procedures
				"duration_ms", time.Since(start).Milliseconds(),
			}
			switch {
			case err == nil:
				slog.Info("RPC ok", attrs...)
			default:
				var cerr *connect.Error
				if errors.As(err, &cerr) {
					slog.Warn("RPC failed", append(attrs, "code", cerr.Code(), "error", cerr.Message())...)
				} else {
					slog.Error("RPC failed", append(attrs, "error", err)...)
				}
			}
			return resp, err
		}
	}
}
