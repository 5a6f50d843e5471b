package phonepe

import (
	"github.com/mstgnz/eventpay/infra/config"
	"github.com/mstgnz/eventpay/provider"
)

func init() {
	provider.Register("phonepe", func(cfg *config.AppConfig) (provider.Gateway, error) {
		return New(Config{
			ClientID:      cfg.PhonePeClientID,
			ClientSecret:  cfg.PhonePeClientSecret,
			ClientVersion: cfg.PhonePeClientVersion,
			Production:    cfg.PhonePeEnv == "production",
			Timeout:       cfg.GatewayTimeout,

			InsecureSkipVerify: cfg.TLSInsecureSkipVerify,
		})
	})
}
