package phonepe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/mstgnz/eventpay/infra/logger"
	"github.com/mstgnz/eventpay/provider"
)

const (
	// API URLs
	sandboxBaseURL    = "https://api-preprod.phonepe.com/apis/pg-sandbox"
	sandboxAuthURL    = "https://api-preprod.phonepe.com/apis/pg-sandbox"
	productionBaseURL = "https://api.phonepe.com/apis/pg"
	productionAuthURL = "https://api.phonepe.com/apis/identity-manager"

	// API Endpoints
	endpointToken       = "/v1/oauth/token"
	endpointOrderStatus = "/checkout/v2/order/%s/status"

	// refresh this long before the token's expiry
	tokenRefreshSkew = 60 * time.Second
)

// Config holds PhonePe standard-checkout credentials
type Config struct {
	ClientID      string
	ClientSecret  string
	ClientVersion string
	Production    bool
	Timeout       time.Duration
	// BaseURL and AuthURL override the environment defaults
	BaseURL string
	AuthURL string

	InsecureSkipVerify bool
}

// Gateway implements provider.Gateway for PhonePe
type Gateway struct {
	cfg     Config
	client  *provider.ProviderHTTPClient
	authURL string

	mu          sync.Mutex
	token       string
	tokenType   string
	tokenExpiry time.Time
	now         func() time.Time
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   int64  `json:"expires_at"`
}

type orderStatusResponse struct {
	OrderID        string          `json:"orderId"`
	State          string          `json:"state"`
	Amount         int64           `json:"amount"`
	ExpireAt       int64           `json:"expireAt"`
	PaymentDetails []paymentDetail `json:"paymentDetails"`
}

type paymentDetail struct {
	PaymentMode   string `json:"paymentMode"`
	TransactionID string `json:"transactionId"`
	Timestamp     int64  `json:"timestamp"`
	Amount        int64  `json:"amount"`
	State         string `json:"state"`
	ErrorCode     string `json:"errorCode,omitempty"`
}

// New creates a PhonePe gateway
func New(cfg Config) (*Gateway, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("phonepe: clientId and clientSecret are required")
	}
	if cfg.ClientVersion == "" {
		cfg.ClientVersion = "1"
	}

	baseURL, authURL := sandboxBaseURL, sandboxAuthURL
	if cfg.Production {
		baseURL, authURL = productionBaseURL, productionAuthURL
	}
	if cfg.BaseURL != "" {
		baseURL = cfg.BaseURL
	}
	if cfg.AuthURL != "" {
		authURL = cfg.AuthURL
	}

	return &Gateway{
		cfg:     cfg,
		client:  provider.NewProviderHTTPClient(provider.CreateHTTPClientConfig(baseURL, cfg.InsecureSkipVerify, cfg.Timeout)),
		authURL: authURL,
		now:     time.Now,
	}, nil
}

func (g *Gateway) Name() string { return "phonepe" }

// GetOrderStatus fetches the order state for a merchant order id
func (g *Gateway) GetOrderStatus(ctx context.Context, merchantOrderID string) (*provider.OrderStatus, error) {
	if merchantOrderID == "" {
		return nil, provider.ErrMissingOrderID
	}

	authHeader, err := g.authorization(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := g.client.Get(ctx, &provider.HTTPRequest{
		Endpoint:    fmt.Sprintf(endpointOrderStatus, url.PathEscape(merchantOrderID)),
		Headers:     map[string]string{"Authorization": authHeader},
		QueryParams: map[string]string{"details": "false"},
	})
	if err != nil {
		var httpErr *provider.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusUnauthorized {
			g.invalidateToken()
		}
		return nil, fmt.Errorf("phonepe: order status: %w", err)
	}

	var body orderStatusResponse
	if err := g.client.ParseJSONResponse(resp, &body); err != nil {
		return nil, fmt.Errorf("phonepe: decode order status: %w", err)
	}

	status := &provider.OrderStatus{
		GatewayOrderID:  body.OrderID,
		MerchantOrderID: merchantOrderID,
		State:           provider.OrderState(body.State),
		Amount:          body.Amount,
	}
	if n := len(body.PaymentDetails); n > 0 {
		last := body.PaymentDetails[n-1]
		status.TransactionID = last.TransactionID
		status.PaymentMode = last.PaymentMode
	}

	logger.Debug("PhonePe order status fetched", logger.LogContext{
		Provider: g.Name(),
		Fields:   map[string]any{"merchant_order_id": merchantOrderID, "state": body.State},
	})

	return status, nil
}

// authorization returns the "O-Bearer <token>" header, fetching a new
// token when the cached one is missing or about to expire
func (g *Gateway) authorization(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.token != "" && g.now().Add(tokenRefreshSkew).Before(g.tokenExpiry) {
		return g.tokenType + " " + g.token, nil
	}

	resp, err := g.client.SendForm(ctx, &provider.HTTPRequest{
		Method:   http.MethodPost,
		Endpoint: g.authURL + endpointToken,
		FormData: map[string]string{
			"client_id":      g.cfg.ClientID,
			"client_secret":  g.cfg.ClientSecret,
			"client_version": g.cfg.ClientVersion,
			"grant_type":     "client_credentials",
		},
	})
	if err != nil {
		return "", fmt.Errorf("phonepe: fetch token: %w", err)
	}

	var tok tokenResponse
	if err := g.client.ParseJSONResponse(resp, &tok); err != nil {
		return "", fmt.Errorf("phonepe: decode token: %w", err)
	}
	if tok.AccessToken == "" {
		return "", errors.New("phonepe: empty access token")
	}

	g.token = tok.AccessToken
	g.tokenType = tok.TokenType
	if g.tokenType == "" {
		g.tokenType = "O-Bearer"
	}
	g.tokenExpiry = time.Unix(tok.ExpiresAt, 0)

	logger.Debug("PhonePe token refreshed", logger.LogContext{
		Provider: g.Name(),
		Fields:   map[string]any{"expires_at": strconv.FormatInt(tok.ExpiresAt, 10)},
	})

	return g.tokenType + " " + g.token, nil
}

func (g *Gateway) invalidateToken() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.token = ""
}
