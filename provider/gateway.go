package provider

import (
	"context"
	"errors"

	"github.com/mstgnz/eventpay/infra/config"
)

// OrderState is the gateway-side state of a checkout order
type OrderState string

const (
	StateCompleted OrderState = "COMPLETED"
	StateFailed    OrderState = "FAILED"
	StatePending   OrderState = "PENDING"
)

// OrderStatus is the authoritative status reported by a gateway
type OrderStatus struct {
	GatewayOrderID  string     `json:"gatewayOrderId,omitempty"`
	MerchantOrderID string     `json:"merchantOrderId"`
	State           OrderState `json:"state"`
	// Amount in the smallest currency unit
	Amount        int64  `json:"amount,omitempty"`
	TransactionID string `json:"transactionId,omitempty"`
	PaymentMode   string `json:"paymentMode,omitempty"`
}

// Gateway queries order status from a payment gateway
type Gateway interface {
	Name() string
	GetOrderStatus(ctx context.Context, merchantOrderID string) (*OrderStatus, error)
}

// Factory builds a gateway from application configuration
type Factory func(cfg *config.AppConfig) (Gateway, error)

var ErrMissingOrderID = errors.New("merchant order id is required")
