package bootstrap

import (
	"github.com/sony/gobreaker/v2"

	"github.com/kirillkom/mail-check/internal/config"
	"github.com/kirillkom/mail-check/internal/core/usecase"
	"github.com/kirillkom/mail-check/internal/infrastructure/backend"
	"github.com/kirillkom/mail-check/internal/infrastructure/extractor/preview"
	"github.com/kirillkom/mail-check/internal/infrastructure/resilience"
	"github.com/kirillkom/mail-check/internal/observability/metrics"
)

const ServiceName = "mailcheck-api"

type App struct {
	Config config.Config

	Metrics   *metrics.HTTPServerMetrics
	Executor  *resilience.Executor
	Gateway   *usecase.ProxyGateway
	Previewer *preview.Extractor
}

func New(cfg config.Config) *App {
	httpMetrics := metrics.NewHTTPServerMetrics(ServiceName)

	breakerCfg := resilience.DefaultConfig()
	breakerCfg.BreakerEnabled = cfg.BackendBreakerEnabled
	executor := resilience.NewExecutor(breakerCfg)
	executor.OnStateChange(func(operation string, _, to gobreaker.State) {
		httpMetrics.SetCircuitOpen(operation, to != gobreaker.StateClosed)
	})

	client := backend.New(cfg.BackendURL, backend.Options{
		Timeout:  cfg.BackendTimeout,
		Executor: executor,
		Observer: httpMetrics,
	})

	return &App{
		Config:    cfg,
		Metrics:   httpMetrics,
		Executor:  executor,
		Gateway:   usecase.NewProxyGateway(client),
		Previewer: preview.NewExtractor(),
	}
}
