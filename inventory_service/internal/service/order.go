package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// OrderRequest is the loosely typed order payload. Transports flatten JSON or protobuf scalars to strings.
type OrderRequest map[string]string

// Recognised OrderRequest keys.
const (
	KeyProductID       = "productId"
	KeyProductName     = "productName"
	KeyModel           = "model"
	KeyQuantity        = "quantity"
	KeyCustomerName    = "customerName"
	KeyCustomerAddress = "customerAddress"
)

// FormatNumber renders a numeric field for an OrderRequest. Integral values lose their fraction,
// so 3 and 3.0 both become "3" whichever transport carried them.
func FormatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// addressKeys lists the accepted customer address keys by priority.
var addressKeys = []string{KeyCustomerAddress, "address", "Address"}

const (
	DefaultCustomerName    = "Unknown Customer"
	DefaultCustomerAddress = "No address provided"
)

// ProductRef identifies the product an order is for. It is either ByProductID or ByNameModel.
type ProductRef interface {
	isProductRef()
}

type ByProductID struct {
	ID int64
}

// ByNameModel matches the name case-insensitively and, when Model is set, the model as well.
type ByNameModel struct {
	Name  string
	Model *string
}

func (ByProductID) isProductRef() {}
func (ByNameModel) isProductRef() {}

func (r ByProductID) String() string { return fmt.Sprintf("id=%d", r.ID) }

func (r ByNameModel) String() string {
	if r.Model == nil {
		return fmt.Sprintf("name=%q", r.Name)
	}
	return fmt.Sprintf("name=%q model=%q", r.Name, *r.Model)
}

// RejectReason classifies a rejected order.
type RejectReason string

const (
	ReasonInvalidQuantity   RejectReason = "invalid_quantity"
	ReasonInvalidReference  RejectReason = "invalid_reference"
	ReasonMissingReference  RejectReason = "missing_reference"
	ReasonNotFound          RejectReason = "not_found"
	ReasonInsufficientStock RejectReason = "insufficient_stock"
)

// IsClientError reports whether the request itself was malformed, as opposed to a business rejection.
func (r RejectReason) IsClientError() bool {
	switch r {
	case ReasonInvalidQuantity, ReasonInvalidReference, ReasonMissingReference:
		return true
	default:
		return false
	}
}

// OrderOutcome is either Placed or Rejected.
type OrderOutcome interface {
	// Response renders the outcome as the order endpoint payload.
	Response() map[string]any
	isOrderOutcome()
}

type Placed struct {
	ProductID int64
	Remaining int32
}

type Rejected struct {
	Reason RejectReason
	// Available is set for ReasonInsufficientStock.
	Available int32
	Message   string
}

func (Placed) isOrderOutcome()   {}
func (Rejected) isOrderOutcome() {}

const (
	StatusPlaced = "PLACED"
	StatusFailed = "FAILED"

	MessagePlaced = "Order placed successfully"
)

func (p Placed) Response() map[string]any {
	return map[string]any{
		"status":    StatusPlaced,
		"message":   MessagePlaced,
		"productId": p.ProductID,
		"newUnits":  p.Remaining,
	}
}

func (r Rejected) Response() map[string]any {
	return map[string]any{
		"status":  StatusFailed,
		"message": r.Message,
	}
}

func reject(reason RejectReason, message string) *Rejected {
	return &Rejected{Reason: reason, Message: message}
}

func insufficient(available int32) Rejected {
	return Rejected{
		Reason:    ReasonInsufficientStock,
		Available: available,
		Message:   fmt.Sprintf("Insufficient stock. Available: %d", available),
	}
}

var notFound = Rejected{Reason: ReasonNotFound, Message: "Product not found"}

// parseQuantity returns the requested positive quantity.
func parseQuantity(req OrderRequest) (int32, *Rejected) {
	raw, ok := req[KeyQuantity]
	if !ok {
		return 0, reject(ReasonInvalidQuantity, "quantity is required")
	}
	q, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 32)
	if err != nil {
		return 0, reject(ReasonInvalidQuantity, "quantity must be a number")
	}
	if q <= 0 {
		return 0, reject(ReasonInvalidQuantity, "quantity must be > 0")
	}
	return int32(q), nil
}

// parseRef resolves the product reference once. A productId key wins over productName.
func parseRef(req OrderRequest) (ProductRef, *Rejected) {
	if raw, ok := req[KeyProductID]; ok {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, reject(ReasonInvalidReference, "productId must be an integer")
		}
		return ByProductID{ID: id}, nil
	}
	name := strings.TrimSpace(req[KeyProductName])
	if name == "" {
		return nil, reject(ReasonMissingReference, "productId or productName required")
	}
	ref := ByNameModel{Name: name}
	if model := strings.TrimSpace(req[KeyModel]); model != "" {
		ref.Model = &model
	}
	return ref, nil
}

func customerName(req OrderRequest) string {
	if v := strings.TrimSpace(req[KeyCustomerName]); v != "" {
		return v
	}
	return DefaultCustomerName
}

// customerAddress takes the first address key present. A blank value falls back to the default.
func customerAddress(req OrderRequest) string {
	for _, k := range addressKeys {
		if v, ok := req[k]; ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
			return DefaultCustomerAddress
		}
	}
	return DefaultCustomerAddress
}
