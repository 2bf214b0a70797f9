package interceptors

import (
	"context"
	"net"
	"testing"
	"time"

	pb "github.com/abgdnv/inventory/pkg/api/inventory/v1"
	"github.com/abgdnv/inventory/pkg/config"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// mockService is a mock implementation of the InventoryServiceServer for testing purposes.
// Not thread-safe, should be used in sequential tests only.
type mockService struct {
	pb.UnimplementedInventoryServiceServer

	callCount int32
	// responses - a queue of gRPC codes to return for each call.
	responses []codes.Code
}

// GetStockItem simulates a gRPC call and returns a pre-configured response.
func (s *mockService) GetStockItem(_ context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	s.callCount++

	if len(s.responses) > 0 {
		code := s.responses[0]
		s.responses = s.responses[1:] // Dequeue the first response code
		if code != codes.OK {
			return nil, status.Error(code, "mock error")
		}
	}

	return structpb.NewStruct(map[string]any{"productId": req.GetValue()})
}

// setResponses configures the sequence of responses for the test server.
func (s *mockService) setResponses(responses ...codes.Code) {
	s.responses = responses
	s.callCount = 0
}

// getCallCount returns the number of times the server has been called.
func (s *mockService) getCallCount() int32 {
	return s.callCount
}

// setupTestEnvironment creates a test gRPC server, a client with interceptors, and a cleanup function.
func setupTestEnvironment(t *testing.T) (client pb.InventoryServiceClient, service *mockService, cleanup func()) {
	t.Helper()

	lis := bufconn.Listen(1024 * 1024)
	service = &mockService{}

	grpcServer := grpc.NewServer()
	pb.RegisterInventoryServiceServer(grpcServer, service)

	go func() {
		_ = grpcServer.Serve(lis)
	}()

	retryCfg := config.RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 100 * time.Millisecond,
	}
	circuitBreakerCfg := config.CircuitBreakerConfig{
		ConsecutiveFailures: 5,
		ErrorRatePercent:    60,
		OpenTimeout:         5 * time.Second,
	}

	conn, err := grpc.NewClient("passthrough://bufnet",
		grpc.WithContextDialer(func(ctx context.Context, s string) (net.Conn, error) {
			return lis.Dial()
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithChainUnaryInterceptor(
			NewRetryInterceptor(retryCfg),
			NewCircuitBreaker("inventory-service-cb", circuitBreakerCfg),
		),
	)
	require.NoError(t, err)

	client = pb.NewInventoryServiceClient(conn)

	cleanup = func() {
		_ = conn.Close()
		grpcServer.Stop()
		_ = lis.Close()
	}

	return client, service, cleanup
}

func TestInterceptors_HappyPath(t *testing.T) {
	client, service, cleanup := setupTestEnvironment(t)
	defer cleanup()

	// given
	service.setResponses(codes.OK)

	// when
	_, err := client.GetStockItem(context.Background(), wrapperspb.Int64(1))

	// then
	require.NoError(t, err)
	require.Equal(t, int32(1), service.getCallCount(), "Server should be called exactly once")
}

func TestInterceptors_RetryOnTransientError(t *testing.T) {
	client, service, cleanup := setupTestEnvironment(t)
	defer cleanup()

	// given
	service.setResponses(codes.Unavailable, codes.Unavailable, codes.OK)

	// when
	_, err := client.GetStockItem(context.Background(), wrapperspb.Int64(1))

	// then
	require.NoError(t, err)
	require.Equal(t, int32(3), service.getCallCount(), "Server should be called exactly 3 times due to retries")
}

func TestInterceptors_NoRetryOnDataError(t *testing.T) {
	client, service, cleanup := setupTestEnvironment(t)
	defer cleanup()

	// given
	service.setResponses(codes.InvalidArgument)

	// when
	_, err := client.GetStockItem(context.Background(), wrapperspb.Int64(1))

	// then
	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok)
	require.Equal(t, codes.InvalidArgument, st.Code())
	require.Equal(t, int32(1), service.getCallCount(), "Server should be called exactly once, no retries on data error")
}

func TestInterceptors_CircuitBreakerOpens(t *testing.T) {
	client, service, cleanup := setupTestEnvironment(t)
	defer cleanup()

	// given
	// In order for the circuit breaker to open (ConsecutiveFailures > 5),
	// we need 2 calls, each of which will trigger 3 attempts (1 initial + 2 retries).
	// 2 * 3 = 6 failed attempts.
	service.setResponses(
		codes.Unavailable, codes.Unavailable, codes.Unavailable, // first call
		codes.Unavailable, codes.Unavailable, codes.Unavailable, // second call
	)

	// when: call 2 times, it should lead to circuit breaker opening.
	_, err := client.GetStockItem(context.Background(), wrapperspb.Int64(1))
	require.Error(t, err, "First call should fail")

	_, err = client.GetStockItem(context.Background(), wrapperspb.Int64(1))
	require.Error(t, err, "Second call should fail")

	// check if server was called 6 times (2 calls * 3 attempts).
	require.Equal(t, int32(6), service.getCallCount(), "Server should be called 6 times")

	// then: 3rd call should be immediately blocked.
	_, err = client.GetStockItem(context.Background(), wrapperspb.Int64(1))
	require.Error(t, err, "Third call should be blocked by circuit breaker")
	require.Contains(t, err.Error(), gobreaker.ErrOpenState.Error())

	// check if server was called 6 times (2 calls * 3 attempts).
	require.Equal(t, int32(6), service.getCallCount(), "Server call count should not change, circuit breaker should block the call")
}

func TestInterceptors_CircuitBreakerIgnoresBusinessRejections(t *testing.T) {
	client, service, cleanup := setupTestEnvironment(t)
	defer cleanup()

	// given
	responses := make([]codes.Code, 10)
	for i := range responses {
		if i%2 == 0 {
			responses[i] = codes.InvalidArgument
		} else {
			responses[i] = codes.FailedPrecondition
		}
	}
	service.setResponses(responses...)

	// when
	for i := 0; i < 10; i++ {
		_, err := client.GetStockItem(context.Background(), wrapperspb.Int64(1))
		// then
		require.Error(t, err)
		st, ok := status.FromError(err)
		require.True(t, ok)
		require.NotEqual(t, codes.Unavailable, st.Code())
	}

	// then
	require.Equal(t, int32(10), service.getCallCount(), "Server should be called exactly 10 times, circuit breaker should not trigger on business rejections")
}
