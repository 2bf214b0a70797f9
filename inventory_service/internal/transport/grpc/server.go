// Package grpc provides the gRPC transport of the inventory service.
package grpc

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	inverrors "github.com/abgdnv/inventory/inventory_service/internal/errors"
	"github.com/abgdnv/inventory/inventory_service/internal/service"
	inventoryv1 "github.com/abgdnv/inventory/pkg/api/inventory/v1"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// InventoryService is the part of the service layer exposed over gRPC.
type InventoryService interface {
	PlaceOrder(ctx context.Context, req service.OrderRequest) (service.OrderOutcome, error)
	FindByID(ctx context.Context, id int64) (*service.StockItemDto, error)
}

type Server struct {
	// Embed the unimplemented server for forward compatibility
	inventoryv1.UnimplementedInventoryServiceServer
	service InventoryService
	logger  *slog.Logger
}

func NewServer(service InventoryService, logger *slog.Logger) *Server {
	return &Server{
		service: service,
		logger:  logger.With("component", "grpc"),
	}
}

// PlaceOrder returns the order response map on success. A rejection is a status error whose
// details carry the same map.
func (s *Server) PlaceOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	orderReq, err := toOrderRequest(req)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid order request: %v", err)
	}

	s.logger.DebugContext(ctx, "received grpc request PlaceOrder", "request", orderReq)
	outcome, err := s.service.PlaceOrder(ctx, orderReq)
	if err != nil {
		s.logger.ErrorContext(ctx, "service.PlaceOrder failed", "error", err)
		return nil, status.Error(codes.Internal, "Server error, please try again later")
	}

	resp, err := structpb.NewStruct(outcome.Response())
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to encode order response", "error", err)
		return nil, status.Error(codes.Internal, "internal server error")
	}

	rejected, ok := outcome.(service.Rejected)
	if !ok {
		return resp, nil
	}
	s.logger.WarnContext(ctx, "order rejected", "reason", rejected.Reason)
	st := status.New(rejectionCode(rejected.Reason), rejected.Message)
	if detailed, detailErr := st.WithDetails(resp); detailErr == nil {
		st = detailed
	}
	return nil, st.Err()
}

func (s *Server) GetStockItem(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	id := req.GetValue()
	if id <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "invalid product ID: %d", id)
	}

	found, err := s.service.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, inverrors.ErrStockItemNotFound) {
			return nil, status.Errorf(codes.NotFound, "stock item %d not found", id)
		}
		s.logger.ErrorContext(ctx, "service.FindByID failed", "error", err)
		return nil, status.Error(codes.Internal, "internal server error")
	}

	resp, err := structpb.NewStruct(map[string]any{
		"productId":        found.ID,
		"productName":      found.Name,
		"model":            found.Model,
		"pricePerQuantity": found.UnitPrice.String(),
		"unit":             found.Quantity,
		"totalPrice":       found.TotalValue.String(),
		"status":           found.Status,
		"createdDate":      found.CreatedAt.Format(time.RFC3339),
		"updatedDate":      found.UpdatedAt.Format(time.RFC3339),
	})
	if err != nil {
		return nil, status.Error(codes.Internal, "internal server error")
	}
	return resp, nil
}

func rejectionCode(reason service.RejectReason) codes.Code {
	switch {
	case reason.IsClientError():
		return codes.InvalidArgument
	case reason == service.ReasonNotFound:
		return codes.NotFound
	default:
		return codes.FailedPrecondition
	}
}

// toOrderRequest flattens the scalar fields of req to strings.
// Integral numbers are rendered without a fraction, so 3 and 3.0 both become "3".
func toOrderRequest(req *structpb.Struct) (service.OrderRequest, error) {
	fields := req.GetFields()
	out := make(service.OrderRequest, len(fields))
	for k, v := range fields {
		switch kind := v.GetKind().(type) {
		case *structpb.Value_NullValue:
		case *structpb.Value_StringValue:
			out[k] = kind.StringValue
		case *structpb.Value_BoolValue:
			out[k] = strconv.FormatBool(kind.BoolValue)
		case *structpb.Value_NumberValue:
			out[k] = service.FormatNumber(kind.NumberValue)
		default:
			return nil, errors.New("field " + strconv.Quote(k) + " must be a scalar")
		}
	}
	return out, nil
}
