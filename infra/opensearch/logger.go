package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
)

// PaymentEvent is one step of the verification / reconciliation audit trail
type PaymentEvent struct {
	Timestamp       time.Time `json:"timestamp"`
	Event           string    `json:"event"`
	Gateway         string    `json:"gateway,omitempty"`
	MerchantOrderID string    `json:"merchant_order_id,omitempty"`
	PaymentID       string    `json:"payment_id,omitempty"`
	CustomerEmail   string    `json:"customer_email,omitempty"`
	Amount          string    `json:"amount,omitempty"`
	State           string    `json:"state,omitempty"`
	Outcome         string    `json:"outcome,omitempty"`
	RequestID       string    `json:"request_id,omitempty"`
	Error           string    `json:"error,omitempty"`
}

// Logger handles OpenSearch logging operations
type Logger struct {
	client *Client
}

// NewLogger creates a new OpenSearch logger
func NewLogger(client *Client) *Logger {
	return &Logger{
		client: client,
	}
}

// LogSystemEvent logs a system event to OpenSearch
func (l *Logger) LogSystemEvent(ctx context.Context, log any) error {
	return l.index(ctx, SystemLogIndex, log)
}

// LogPaymentEvent records a payment audit event
func (l *Logger) LogPaymentEvent(ctx context.Context, event PaymentEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	return l.index(ctx, PaymentEventIndex, event)
}

func (l *Logger) index(ctx context.Context, indexName string, doc any) error {
	if l == nil || l.client == nil || !l.client.IsEnabled() {
		return nil
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	req := opensearchapi.IndexRequest{
		Index: indexName,
		Body:  bytes.NewReader(body),
	}

	res, err := req.Do(ctx, l.client.GetClient())
	if err != nil {
		return fmt.Errorf("failed to index document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("opensearch error: %s", res.String())
	}

	return nil
}
