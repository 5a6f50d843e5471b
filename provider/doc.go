// Package provider defines the payment gateway abstraction used by the
// order status reconciler.
//
// A gateway answers one question: what state is this merchant order in?
//
//	type Gateway interface {
//	    Name() string
//	    GetOrderStatus(ctx context.Context, merchantOrderID string) (*OrderStatus, error)
//	}
//
// Implementations live in sub-packages and register a factory in init:
//
//	func init() {
//	    provider.Register("phonepe", func(cfg *config.AppConfig) (provider.Gateway, error) {
//	        return New(Config{ClientID: cfg.PhonePeClientID, ...})
//	    })
//	}
//
// The binary blank-imports the gateways it ships and selects one by name:
//
//	gateway, err := provider.New(cfg.Gateway, cfg)
//
// Gateways that talk plain HTTP share ProviderHTTPClient, which applies
// default headers, timeouts and JSON/form encoding and returns *HTTPError
// for non-2xx responses.
//
// The razorpay sub-package is not a Gateway: Razorpay checkouts are
// confirmed client-side and only need signature verification.
package provider
