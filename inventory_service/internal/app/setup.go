// Package app contains the application setup for the inventory service.
package app

import (
	"log/slog"
	"net/http"

	"github.com/abgdnv/inventory/inventory_service/internal/config"
	"github.com/abgdnv/inventory/inventory_service/internal/notifier"
	"github.com/abgdnv/inventory/inventory_service/internal/service"
	"github.com/abgdnv/inventory/inventory_service/internal/store"
	grpcImpl "github.com/abgdnv/inventory/inventory_service/internal/transport/grpc"
	"github.com/abgdnv/inventory/inventory_service/internal/transport/rest"
	inventoryv1 "github.com/abgdnv/inventory/pkg/api/inventory/v1"
	"github.com/abgdnv/inventory/pkg/messaging"
	"github.com/abgdnv/inventory/pkg/server"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
)

const httpOperationName = "inventory-http"

type Dependencies struct {
	InventoryService service.InventoryService
	Logger           *slog.Logger
	// MetricsHandler serves /metrics. Nil disables the endpoint.
	MetricsHandler http.Handler
}

// NewNotifier returns the notification sender. Without a publisher messages are only logged,
// otherwise they are published as events behind a circuit breaker.
func NewNotifier(publisher messaging.Publisher, cfg config.NotifierConfig, logger *slog.Logger) service.Notifier {
	if publisher == nil {
		return notifier.NewLogNotifier(logger)
	}
	return notifier.NewBreakerNotifier(notifier.NewNatsNotifier(publisher), cfg.CircuitBreaker, logger)
}

func SetupDependencies(st store.Store, n service.Notifier, cfg config.NotifierConfig, meter metric.Meter, logger *slog.Logger) *Dependencies {
	dispatcher := service.NewDispatcher(n, service.DispatcherConfig{
		Recipient: cfg.Recipient,
		Timeout:   cfg.Timeout,
	}, logger, meter)

	return &Dependencies{
		InventoryService: service.NewService(st, dispatcher, meter, logger),
		Logger:           logger,
	}
}

// SetupHttpHandler initializes the routes and middleware of the inventory service.
// Used by tests to exercise the full HTTP stack.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	rest.NewHandler(deps.InventoryService, deps.Logger).RegisterRoutes(mux)
	if deps.MetricsHandler != nil {
		mux.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}
}

// SetupHttpServer creates and configures an HTTP server for the inventory service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}
	if cfg.Telemetry.TracingEnabled() {
		httpCfg.OperationName = httpOperationName
	}
	return server.NewHTTPServer(httpCfg, mux)
}

// SetupGrpcServer initializes the gRPC server for the inventory service.
func SetupGrpcServer(deps *Dependencies, reflectionEnabled bool) (*grpc.Server, *health.Server) {
	registerFunc := func(s *grpc.Server) {
		inventoryv1.RegisterInventoryServiceServer(s, grpcImpl.NewServer(deps.InventoryService, deps.Logger))
	}
	return server.NewGRPCServer(reflectionEnabled, registerFunc)
}
