package stripe

import (
	"github.com/mstgnz/eventpay/infra/config"
	"github.com/mstgnz/eventpay/provider"
)

// Register Stripe gateway with the gateway registry
func init() {
	provider.Register("stripe", func(cfg *config.AppConfig) (provider.Gateway, error) {
		return New(cfg.StripeSecretKey, nil)
	})
}
