package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/netutil"

	httpadapter "github.com/kirillkom/mail-check/internal/adapters/http"
	"github.com/kirillkom/mail-check/internal/bootstrap"
	"github.com/kirillkom/mail-check/internal/config"
	"github.com/kirillkom/mail-check/internal/observability/logging"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("dotenv_load_failed", "error", err)
		os.Exit(1)
	}
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger(bootstrap.ServiceName, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	csrfKey, err := cfg.CSRFKeyBytes()
	if err != nil {
		slog.Error("config_invalid", "error", err)
		os.Exit(1)
	}
	if csrfKey == nil {
		slog.Warn("csrf_key_generated", "hint", "set CSRF_KEY so tokens survive restarts")
	}

	app := bootstrap.New(cfg)
	router, err := httpadapter.NewRouter(app.Gateway, app.Previewer, httpadapter.Options{
		Metrics:          app.Metrics,
		BreakerStates:    app.Executor.States,
		RateLimitRPS:     cfg.APIRateLimitRPS,
		RateLimitBurst:   cfg.APIRateLimitBurst,
		MaxInFlight:      cfg.APIMaxInFlight,
		BackpressureWait: cfg.APIBackpressureWait,
		MaxUploadBytes:   cfg.MaxUploadBytes,
		SessionTTL:       cfg.SessionTTL,
		CSRFKey:          csrfKey,
		CookieSecure:     cfg.CookieSecure,
		TrustedOrigins:   cfg.TrustedOriginList(),
	})
	if err != nil {
		slog.Error("router_init_failed", "error", err)
		os.Exit(1)
	}
	defer router.Close()

	server := &http.Server{
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      cfg.BackendTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ln, err := net.Listen("tcp", ":"+cfg.APIPort)
	if err != nil {
		slog.Error("api_listen_failed", "port", cfg.APIPort, "error", err)
		os.Exit(1)
	}
	if cfg.APIMaxConnections > 0 {
		ln = netutil.LimitListener(ln, cfg.APIMaxConnections)
	}

	go func() {
		slog.Info("api_listening",
			"port", cfg.APIPort,
			"backend_url", cfg.BackendURL,
			"max_connections", cfg.APIMaxConnections,
		)
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api_server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api_shutdown_failed", "error", err)
	}
}
