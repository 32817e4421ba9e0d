package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/AvavSam/split-bills/internal/auth"
	"github.com/AvavSam/split-bills/internal/config"
	"github.com/AvavSam/split-bills/internal/service"
	"github.com/AvavSam/split-bills/internal/storage/sqlite"
	"github.com/AvavSam/split-bills/internal/transport"
	"github.com/AvavSam/split-bills/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	logging.Setup(cfg.LogLevel)

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)

	srv := &transport.Server{
		Auth:     service.NewAuthService(authenticator, jwtManager),
		Groups:   service.NewGroupService(store),
		Expenses: service.NewExpenseService(store),
		Payments: service.NewPaymentService(store),
		Balances: service.NewBalanceService(store),
	}

	mux := transport.NewMux(srv, jwtManager)

	// h2c enables HTTP/2 without TLS, required for Connect clients.
	handler := h2c.NewHandler(mux, &http2.Server{})

	addr := ":" + cfg.Port
	slog.Info("Server starting", "address", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
