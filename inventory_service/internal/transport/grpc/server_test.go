package grpc

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	inverrors "github.com/abgdnv/inventory/inventory_service/internal/errors"
	"github.com/abgdnv/inventory/inventory_service/internal/service"
	inventoryv1 "github.com/abgdnv/inventory/pkg/api/inventory/v1"
	"github.com/abgdnv/inventory/pkg/logger"
	"github.com/abgdnv/inventory/pkg/server"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type MockInventoryService struct {
	mock.Mock
}

func (m *MockInventoryService) PlaceOrder(ctx context.Context, req service.OrderRequest) (service.OrderOutcome, error) {
	args := m.Called(ctx, req)
	var outcome service.OrderOutcome
	if args.Get(0) != nil {
		outcome = args.Get(0).(service.OrderOutcome)
	}
	return outcome, args.Error(1)
}

func (m *MockInventoryService) FindByID(ctx context.Context, id int64) (*service.StockItemDto, error) {
	args := m.Called(ctx, id)
	var item *service.StockItemDto
	if args.Get(0) != nil {
		item = args.Get(0).(*service.StockItemDto)
	}
	return item, args.Error(1)
}

// newBufClient starts the server on an in-memory listener and returns a connected client.
func newBufClient(t *testing.T, svc InventoryService) inventoryv1.InventoryServiceClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	grpcServer, _ := server.NewGRPCServer(false, func(s *grpc.Server) {
		inventoryv1.RegisterInventoryServiceServer(s, NewServer(svc, logger.Discard()))
	})
	go func() {
		_ = grpcServer.Serve(lis)
	}()
	t.Cleanup(grpcServer.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return inventoryv1.NewInventoryServiceClient(conn)
}

func TestServer_PlaceOrder(t *testing.T) {
	testCases := []struct {
		name            string
		request         map[string]any
		expectedReq     service.OrderRequest
		outcome         service.OrderOutcome
		err             error
		expectedCode    codes.Code
		expectedMessage string
		expectedResp    map[string]any
	}{
		{
			name:         "placed",
			request:      map[string]any{"productId": 3, "quantity": 2.0, "customerName": "Ada", "note": nil},
			expectedReq:  service.OrderRequest{"productId": "3", "quantity": "2", "customerName": "Ada"},
			outcome:      service.Placed{ProductID: 3, Remaining: 1},
			expectedCode: codes.OK,
			expectedResp: map[string]any{"status": "PLACED", "message": "Order placed successfully", "productId": float64(3), "newUnits": float64(1)},
		},
		{
			name:         "integral float quantity reads as integer",
			request:      map[string]any{"productId": 3, "quantity": 3.0},
			expectedReq:  service.OrderRequest{"productId": "3", "quantity": "3"},
			outcome:      service.Placed{ProductID: 3, Remaining: 0},
			expectedCode: codes.OK,
			expectedResp: map[string]any{"status": "PLACED", "message": "Order placed successfully", "productId": float64(3), "newUnits": float64(0)},
		},
		{
			name:            "fractional quantity is passed through",
			request:         map[string]any{"productId": "3", "quantity": 1.5},
			expectedReq:     service.OrderRequest{"productId": "3", "quantity": "1.5"},
			outcome:         service.Rejected{Reason: service.ReasonInvalidQuantity, Message: "quantity must be a number"},
			expectedCode:    codes.InvalidArgument,
			expectedMessage: "quantity must be a number",
			expectedResp:    map[string]any{"status": "FAILED", "message": "quantity must be a number"},
		},
		{
			name:            "not found",
			request:         map[string]any{"productName": "Gadget", "quantity": 1},
			expectedReq:     service.OrderRequest{"productName": "Gadget", "quantity": "1"},
			outcome:         service.Rejected{Reason: service.ReasonNotFound, Message: "Product not found"},
			expectedCode:    codes.NotFound,
			expectedMessage: "Product not found",
			expectedResp:    map[string]any{"status": "FAILED", "message": "Product not found"},
		},
		{
			name:            "insufficient stock",
			request:         map[string]any{"productId": 3, "quantity": 9, "vip": true},
			expectedReq:     service.OrderRequest{"productId": "3", "quantity": "9", "vip": "true"},
			outcome:         service.Rejected{Reason: service.ReasonInsufficientStock, Available: 1, Message: "Insufficient stock. Available: 1"},
			expectedCode:    codes.FailedPrecondition,
			expectedMessage: "Insufficient stock. Available: 1",
			expectedResp:    map[string]any{"status": "FAILED", "message": "Insufficient stock. Available: 1"},
		},
		{
			name:            "fault",
			request:         map[string]any{"productId": 3, "quantity": 1},
			expectedReq:     service.OrderRequest{"productId": "3", "quantity": "1"},
			err:             errors.New("connection reset"),
			expectedCode:    codes.Internal,
			expectedMessage: "Server error, please try again later",
		},
		{
			name:         "nested value",
			request:      map[string]any{"productId": map[string]any{"id": 3}, "quantity": 1},
			expectedCode: codes.InvalidArgument,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			mockSvc := new(MockInventoryService)
			if tc.expectedReq != nil {
				mockSvc.On("PlaceOrder", mock.Anything, tc.expectedReq).Return(tc.outcome, tc.err)
			}
			client := newBufClient(t, mockSvc)
			req, err := structpb.NewStruct(tc.request)
			require.NoError(t, err)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			// when
			res, err := client.PlaceOrder(ctx, req)

			// then
			if tc.expectedCode == codes.OK {
				require.NoError(t, err)
				assert.Equal(t, tc.expectedResp, res.AsMap())
			} else {
				require.Error(t, err)
				st, ok := status.FromError(err)
				require.True(t, ok)
				assert.Equal(t, tc.expectedCode, st.Code())
				if tc.expectedMessage != "" {
					assert.Equal(t, tc.expectedMessage, st.Message())
				}
				if tc.expectedResp != nil {
					require.Len(t, st.Details(), 1)
					detail, ok := st.Details()[0].(*structpb.Struct)
					require.True(t, ok)
					assert.Equal(t, tc.expectedResp, detail.AsMap())
				}
			}
			mockSvc.AssertExpectations(t)
		})
	}
}

func TestServer_GetStockItem(t *testing.T) {
	createdAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	item := &service.StockItemDto{
		ID: 3, Name: "Widget", Model: "W1", UnitPrice: decimal.RequireFromString("10.5"), Quantity: 4,
		TotalValue: decimal.NewFromInt(42), Status: "active", CreatedAt: createdAt, UpdatedAt: createdAt,
	}

	testCases := []struct {
		name         string
		id           int64
		found        *service.StockItemDto
		err          error
		expectedCode codes.Code
	}{
		{name: "found", id: 3, found: item, expectedCode: codes.OK},
		{name: "not found", id: 3, err: inverrors.ErrStockItemNotFound, expectedCode: codes.NotFound},
		{name: "internal error", id: 3, err: errors.New("boom"), expectedCode: codes.Internal},
		{name: "invalid id", id: 0, expectedCode: codes.InvalidArgument},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			mockSvc := new(MockInventoryService)
			if tc.id > 0 {
				mockSvc.On("FindByID", mock.Anything, tc.id).Return(tc.found, tc.err)
			}
			srv := NewServer(mockSvc, logger.Discard())

			// when
			res, err := srv.GetStockItem(context.Background(), wrapperspb.Int64(tc.id))

			// then
			if tc.expectedCode == codes.OK {
				require.NoError(t, err)
				assert.Equal(t, map[string]any{
					"productId":        float64(3),
					"productName":      "Widget",
					"model":            "W1",
					"pricePerQuantity": "10.5",
					"unit":             float64(4),
					"totalPrice":       "42",
					"status":           "active",
					"createdDate":      "2026-01-02T03:04:05Z",
					"updatedDate":      "2026-01-02T03:04:05Z",
				}, res.AsMap())
			} else {
				require.Nil(t, res)
				st, ok := status.FromError(err)
				require.True(t, ok)
				assert.Equal(t, tc.expectedCode, st.Code())
			}
			mockSvc.AssertExpectations(t)
		})
	}
}
