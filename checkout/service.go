package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mstgnz/eventpay/infra/logger"
	"github.com/mstgnz/eventpay/infra/mail"
	"github.com/mstgnz/eventpay/infra/metrics"
	"github.com/mstgnz/eventpay/infra/opensearch"
	"github.com/mstgnz/eventpay/infra/store"
	"github.com/mstgnz/eventpay/provider"
	"github.com/mstgnz/eventpay/provider/razorpay"
)

// AuditLogger records payment events
type AuditLogger interface {
	LogPaymentEvent(ctx context.Context, event opensearch.PaymentEvent) error
}

// Options wires the service dependencies
type Options struct {
	Store    store.Store
	Gateway  provider.Gateway
	Mailer   mail.Mailer
	Verifier *razorpay.Verifier
	Validate *validator.Validate
	Audit    AuditLogger
	// AppURL is the public site root used in email links
	AppURL string
}

// Service verifies client-side payments and reconciles gateway orders
type Service struct {
	store    store.Store
	gateway  provider.Gateway
	mailer   mail.Mailer
	verifier *razorpay.Verifier
	validate *validator.Validate
	audit    AuditLogger
	appURL   string
	now      func() time.Time
}

// VerifyResult is returned for a stored payment
type VerifyResult struct {
	OrderID   string
	PaymentID string
}

// ReconcileResult tells the caller where to send the browser
type ReconcileResult struct {
	Outcome         Outcome
	MerchantOrderID string
}

func NewService(opts Options) *Service {
	v := opts.Validate
	if v == nil {
		v = validator.New()
	}
	return &Service{
		store:    opts.Store,
		gateway:  opts.Gateway,
		mailer:   opts.Mailer,
		verifier: opts.Verifier,
		validate: v,
		audit:    opts.Audit,
		appURL:   opts.AppURL,
		now:      time.Now,
	}
}

// GatewayName returns the configured gateway name, or "" when none is set
func (s *Service) GatewayName() string {
	if s.gateway == nil {
		return ""
	}
	return s.gateway.Name()
}

// VerifyPayment checks a Razorpay checkout signature and stores the payment
func (s *Service) VerifyPayment(ctx context.Context, req VerifyRequest) (*VerifyResult, error) {
	pc := req.Normalize()

	if err := s.checkConfirmation(pc); err != nil {
		metrics.SignatureVerificationsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	if s.verifier == nil {
		return nil, ErrNotConfigured
	}

	event := opensearch.PaymentEvent{
		Event:           "signature_verification",
		Gateway:         "razorpay",
		MerchantOrderID: pc.OrderID,
		PaymentID:       pc.PaymentID,
		CustomerEmail:   pc.Email,
		Amount:          pc.Amount.String(),
		RequestID:       logger.GetRequestID(ctx),
	}

	if !s.verifier.Verify(pc.OrderID, pc.PaymentID, pc.Signature) {
		metrics.SignatureVerificationsTotal.WithLabelValues("bad_signature").Inc()
		event.Outcome = "rejected"
		s.auditEvent(ctx, event)
		logger.FromContext(ctx).
			SetProvider("razorpay").
			AddField("order_id", pc.OrderID).
			AddField("payment_id", pc.PaymentID).
			Warn("Razorpay signature mismatch")
		return nil, ErrBadSignature
	}

	payment := &store.Payment{
		ID:        pc.PaymentID,
		OrderID:   pc.OrderID,
		Signature: pc.Signature,
		Name:      pc.Name,
		Email:     pc.Email,
		Phone:     pc.Phone,
		Amount:    pc.Amount,
		BasePrice: pc.BasePrice,
		GSTAmount: pc.GSTAmount,
		PassID:    pc.PassID,
		CreatedAt: s.now().UTC(),
	}

	if err := s.store.InsertPayment(ctx, payment); err != nil {
		metrics.SignatureVerificationsTotal.WithLabelValues("store_error").Inc()
		event.Outcome = "store_error"
		event.Error = err.Error()
		s.auditEvent(ctx, event)
		return nil, fmt.Errorf("insert payment %s: %w", pc.PaymentID, err)
	}

	metrics.SignatureVerificationsTotal.WithLabelValues("verified").Inc()
	event.Outcome = "stored"
	s.auditEvent(ctx, event)

	return &VerifyResult{OrderID: pc.OrderID, PaymentID: pc.PaymentID}, nil
}

// checkConfirmation maps validation failures to the client errors. Gateway
// parameters are checked before customer fields.
func (s *Service) checkConfirmation(pc PaymentConfirmation) error {
	err := s.validate.Struct(pc)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate confirmation: %w", err)
	}

	missingCustomer := false
	for _, fe := range verrs {
		switch fe.StructField() {
		case "OrderID", "PaymentID", "Signature":
			return ErrMissingPaymentParams
		case "Name", "Email":
			missingCustomer = true
		}
	}
	if missingCustomer {
		return ErrMissingCustomer
	}
	return fmt.Errorf("validate confirmation: %w", err)
}

// Reconcile asks the gateway for the order's state and, when completed,
// registers the order and sends the confirmation email. A registration is
// created at most once per order; losing the insert race means another
// call already fulfilled it.
func (s *Service) Reconcile(ctx context.Context, merchantOrderID string) (*ReconcileResult, error) {
	if merchantOrderID == "" {
		return nil, ErrMissingPaymentID
	}

	gatewayName := s.GatewayName()
	result := &ReconcileResult{MerchantOrderID: merchantOrderID}
	event := opensearch.PaymentEvent{
		Event:           "order_reconciliation",
		Gateway:         gatewayName,
		MerchantOrderID: merchantOrderID,
		RequestID:       logger.GetRequestID(ctx),
	}

	started := s.now()
	status, err := s.gateway.GetOrderStatus(ctx, merchantOrderID)
	metrics.GatewayRequestDuration.WithLabelValues(gatewayName).Observe(time.Since(started).Seconds())
	if err != nil {
		metrics.ReconciliationsTotal.WithLabelValues(gatewayName, "gateway_error").Inc()
		event.Outcome = "gateway_error"
		event.Error = err.Error()
		s.auditEvent(ctx, event)
		return nil, fmt.Errorf("get order status %s: %w", merchantOrderID, err)
	}
	event.State = string(status.State)
	event.PaymentID = status.TransactionID

	switch status.State {
	case provider.StateCompleted:
	case provider.StateFailed:
		result.Outcome = OutcomeFailed
		s.finish(ctx, event, result.Outcome)
		return result, nil
	default:
		metrics.ReconciliationsTotal.WithLabelValues(gatewayName, "not_completed").Inc()
		event.Outcome = "not_completed"
		s.auditEvent(ctx, event)
		return nil, fmt.Errorf("%w: state %s", ErrPaymentNotCompleted, status.State)
	}

	order, err := s.store.FindOrderByMerchantID(ctx, merchantOrderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.ReconciliationsTotal.WithLabelValues(gatewayName, "order_not_found").Inc()
			event.Outcome = "order_not_found"
			s.auditEvent(ctx, event)
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order %s: %w", merchantOrderID, err)
	}
	event.CustomerEmail = order.Email
	event.Amount = order.Amount.String()

	if order.PaymentStatus != store.StatusSuccess {
		order.PaymentStatus = store.StatusSuccess
	}

	reg := store.NewRegistration(order)
	reg.CreatedAt = s.now().UTC()
	if err := s.store.CreateRegistration(ctx, reg); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			result.Outcome = OutcomeAlreadyFulfilled
			s.finish(ctx, event, result.Outcome)
			return result, nil
		}
		return nil, fmt.Errorf("create registration %s: %w", merchantOrderID, err)
	}

	if !order.MailSent {
		if err := s.sendConfirmation(ctx, order, reg, merchantOrderID); err != nil {
			event.Outcome = "mail_error"
			event.Error = err.Error()
			s.auditEvent(ctx, event)
			return nil, err
		}
		order.MailSent = true
	}

	order.UpdatedAt = s.now().UTC()
	if err := s.store.SaveOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("save order %s: %w", merchantOrderID, err)
	}

	result.Outcome = OutcomeFulfilled
	s.finish(ctx, event, result.Outcome)
	return result, nil
}

// Registration returns the registration for a merchant order id
func (s *Service) Registration(ctx context.Context, merchantOrderID string) (*store.Registration, error) {
	reg, err := s.store.GetRegistration(ctx, merchantOrderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get registration %s: %w", merchantOrderID, err)
	}
	return reg, nil
}

func (s *Service) sendConfirmation(ctx context.Context, order *store.Order, reg *store.Registration, paymentID string) error {
	tmpl := mail.TemplateFor(order.Type)
	kind := string(order.Type)

	msg, err := tmpl.Render(mail.Data{PaymentID: paymentID, Registration: reg, AppURL: s.appURL})
	if err != nil {
		metrics.EmailsTotal.WithLabelValues(kind, "render_error").Inc()
		return fmt.Errorf("render confirmation %s: %w", paymentID, err)
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		metrics.EmailsTotal.WithLabelValues(kind, "send_error").Inc()
		return fmt.Errorf("send confirmation %s: %w", paymentID, err)
	}

	metrics.EmailsTotal.WithLabelValues(kind, "sent").Inc()
	logger.FromContext(ctx).
		AddField("merchant_order_id", paymentID).
		AddField("type", kind).
		Info("Confirmation email sent")
	return nil
}

func (s *Service) finish(ctx context.Context, event opensearch.PaymentEvent, outcome Outcome) {
	metrics.ReconciliationsTotal.WithLabelValues(event.Gateway, string(outcome)).Inc()
	event.Outcome = string(outcome)
	s.auditEvent(ctx, event)
}

// auditEvent never fails the request
func (s *Service) auditEvent(ctx context.Context, event opensearch.PaymentEvent) {
	if s.audit == nil {
		return
	}
	if err := s.audit.LogPaymentEvent(ctx, event); err != nil {
		logger.FromContext(ctx).
			SetProvider(event.Gateway).
			AddField("event", event.Event).
			AddField("error", err.Error()).
			Warn("Failed to write payment event")
	}
}
