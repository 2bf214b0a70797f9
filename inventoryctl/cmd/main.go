// Package main is inventoryctl, an operator CLI for the inventory gRPC API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/abgdnv/inventory/inventoryctl/internal/cli"
	"github.com/abgdnv/inventory/inventoryctl/internal/config"
	pb "github.com/abgdnv/inventory/pkg/api/inventory/v1"
	"github.com/abgdnv/inventory/pkg/bootstrap"
	"github.com/abgdnv/inventory/pkg/client/grpc/interceptors"
	"github.com/abgdnv/inventory/pkg/config/configloader"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const serviceName = "inventoryctl"

func main() {
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), cli.Usage)
		flag.PrintDefaults()
	}
	addr := flag.String("addr", "", "inventory gRPC address, overrides services.inventory.grpc.addr")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, *addr, flag.Args())
	switch {
	case err == nil:
	case errors.Is(err, cli.ErrUsage):
		log.Println(err)
		flag.Usage()
		os.Exit(2)
	case errors.Is(err, cli.ErrRejected):
		log.Println(err)
		os.Exit(3)
	default:
		log.Printf("inventoryctl failed: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, addr string, args []string) error {
	cfg, cfgErr := configloader.Load[*config.Config](serviceName)
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	if addr != "" {
		cfg.Services.Inventory.Grpc.Addr = addr
	}

	logger := bootstrap.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)
	logger.Debug("Configuration loaded", "config", cfg.String())

	conn, err := grpc.NewClient(
		cfg.Services.Inventory.Grpc.Addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithChainUnaryInterceptor(
			interceptors.NewCircuitBreaker("inventory-service-cb", cfg.Resilience.CircuitBreaker),
			interceptors.NewRetryInterceptor(cfg.Resilience.Retry),
			interceptors.UnaryClientTimeoutInterceptor(cfg.Services.Inventory.Grpc.Timeout),
		),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	)
	if err != nil {
		return fmt.Errorf("failed to create gRPC client connection: %w", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logger.Warn("failed to close gRPC connection", "error", err)
		}
	}()

	return cli.Run(ctx, pb.NewInventoryServiceClient(conn), args, os.Stdout)
}
