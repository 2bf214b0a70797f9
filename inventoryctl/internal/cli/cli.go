// Package cli implements the inventoryctl commands on top of the inventory gRPC client.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	pb "github.com/abgdnv/inventory/pkg/api/inventory/v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const Usage = `usage:
  inventoryctl order key=value [key=value ...]   place an order, e.g. order productName=Widget quantity=2
  inventoryctl get <id>                          show a stock item`

var (
	ErrUsage = errors.New("invalid usage")
	// ErrRejected is returned when the service answered with a business rejection.
	ErrRejected = errors.New("order rejected")
)

var printer = protojson.MarshalOptions{Multiline: true, Indent: "  "}

// Run executes the command in args and writes the response to out.
func Run(ctx context.Context, client pb.InventoryServiceClient, args []string, out io.Writer) error {
	if len(args) == 0 {
		return ErrUsage
	}
	switch args[0] {
	case "order":
		return placeOrder(ctx, client, args[1:], out)
	case "get":
		return getStockItem(ctx, client, args[1:], out)
	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
}

func placeOrder(ctx context.Context, client pb.InventoryServiceClient, args []string, out io.Writer) error {
	req, err := parseOrderArgs(args)
	if err != nil {
		return err
	}
	resp, err := client.PlaceOrder(ctx, req)
	if err != nil {
		if details, ok := rejectionDetails(err); ok {
			if perr := writeMessage(out, details); perr != nil {
				return perr
			}
			return fmt.Errorf("%w: %s", ErrRejected, status.Convert(err).Message())
		}
		return fmt.Errorf("failed to place order: %w", err)
	}
	return writeMessage(out, resp)
}

func getStockItem(ctx context.Context, client pb.InventoryServiceClient, args []string, out io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: get expects exactly one id", ErrUsage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("%w: invalid id %q", ErrUsage, args[0])
	}
	resp, err := client.GetStockItem(ctx, wrapperspb.Int64(id))
	if err != nil {
		return fmt.Errorf("failed to get stock item %d: %w", id, err)
	}
	return writeMessage(out, resp)
}

// parseOrderArgs turns key=value pairs into a request. Values stay strings, the server parses them.
func parseOrderArgs(args []string) (*structpb.Struct, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: order expects at least one key=value pair", ErrUsage)
	}
	fields := make(map[string]any, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: expected key=value, got %q", ErrUsage, arg)
		}
		fields[key] = value
	}
	return structpb.NewStruct(fields)
}

// rejectionDetails extracts the order response attached to a rejection status.
func rejectionDetails(err error) (*structpb.Struct, bool) {
	st, ok := status.FromError(err)
	if !ok {
		return nil, false
	}
	for _, d := range st.Details() {
		if s, ok := d.(*structpb.Struct); ok {
			return s, true
		}
	}
	return nil, false
}

func writeMessage(out io.Writer, m proto.Message) error {
	data, err := printer.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to format response: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
