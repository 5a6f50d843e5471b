package stripe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mstgnz/eventpay/infra/logger"
	"github.com/mstgnz/eventpay/provider"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
)

// Gateway reads order status from Stripe PaymentIntents. The merchant
// order id is the PaymentIntent id returned at checkout.
type Gateway struct {
	intents paymentintent.Client
}

// New creates a Stripe gateway. A nil backend uses the default API backend.
func New(secretKey string, backend stripe.Backend) (*Gateway, error) {
	if !strings.HasPrefix(secretKey, "sk_") && !strings.HasPrefix(secretKey, "rk_") {
		return nil, errors.New("stripe: secretKey must start with sk_ or rk_")
	}
	if backend == nil {
		backend = stripe.GetBackend(stripe.APIBackend)
	}

	return &Gateway{
		intents: paymentintent.Client{B: backend, Key: secretKey},
	}, nil
}

func (g *Gateway) Name() string { return "stripe" }

// GetOrderStatus retrieves the PaymentIntent and maps its status
func (g *Gateway) GetOrderStatus(ctx context.Context, merchantOrderID string) (*provider.OrderStatus, error) {
	if merchantOrderID == "" {
		return nil, provider.ErrMissingOrderID
	}

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.intents.Get(merchantOrderID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("stripe: payment intent %s not found: %w", merchantOrderID, err)
		}
		return nil, fmt.Errorf("stripe: retrieve payment intent: %w", err)
	}

	status := &provider.OrderStatus{
		GatewayOrderID:  pi.ID,
		MerchantOrderID: merchantOrderID,
		State:           mapStatus(pi),
		Amount:          pi.Amount,
	}
	if pi.LatestCharge != nil {
		status.TransactionID = pi.LatestCharge.ID
	}
	if len(pi.PaymentMethodTypes) > 0 {
		status.PaymentMode = pi.PaymentMethodTypes[0]
	}

	logger.Debug("Stripe payment intent fetched", logger.LogContext{
		Provider: g.Name(),
		Fields:   map[string]any{"merchant_order_id": merchantOrderID, "status": string(pi.Status)},
	})

	return status, nil
}

func mapStatus(pi *stripe.PaymentIntent) provider.OrderState {
	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		return provider.StateCompleted
	case stripe.PaymentIntentStatusCanceled:
		return provider.StateFailed
	case stripe.PaymentIntentStatusRequiresPaymentMethod:
		// a declined attempt falls back to requires_payment_method
		if pi.LastPaymentError != nil {
			return provider.StateFailed
		}
		return provider.StatePending
	default:
		return provider.StatePending
	}
}
