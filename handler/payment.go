package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mstgnz/eventpay/checkout"
	"github.com/mstgnz/eventpay/infra/logger"
	"github.com/mstgnz/eventpay/infra/response"
	"github.com/mstgnz/eventpay/infra/store"
)

// CheckoutServiceInterface defines the payment verification operations
type CheckoutServiceInterface interface {
	VerifyPayment(ctx context.Context, req checkout.VerifyRequest) (*checkout.VerifyResult, error)
	Reconcile(ctx context.Context, merchantOrderID string) (*checkout.ReconcileResult, error)
	Registration(ctx context.Context, merchantOrderID string) (*store.Registration, error)
}

// PaymentHandler handles payment verification HTTP requests
type PaymentHandler struct {
	checkoutService CheckoutServiceInterface
	timeout         time.Duration
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(checkoutService CheckoutServiceInterface) *PaymentHandler {
	return &PaymentHandler{
		checkoutService: checkoutService,
		timeout:         30 * time.Second,
	}
}

type verifyPaymentResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
}

// VerifyRazorpayPayment checks a Razorpay checkout signature and stores the payment
func (h *PaymentHandler) VerifyRazorpayPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req checkout.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	res, err := h.checkoutService.VerifyPayment(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrMissingPaymentParams):
			response.Error(w, http.StatusBadRequest, "Missing payment verification parameters", nil)
		case errors.Is(err, checkout.ErrMissingCustomer):
			response.Error(w, http.StatusBadRequest, "Missing customer name or email", nil)
		case errors.Is(err, checkout.ErrBadSignature):
			response.Error(w, http.StatusBadRequest, "Payment verification failed (bad signature)", nil)
		default:
			logger.FromContext(r.Context()).
				SetProvider("razorpay").
				Error("Error verifying payment", err)
			response.Error(w, http.StatusInternalServerError, "Internal server error", nil)
		}
		return
	}

	_ = response.WriteJSON(w, http.StatusOK, verifyPaymentResponse{
		Success:   true,
		Message:   "Payment verified and stored",
		OrderID:   res.OrderID,
		PaymentID: res.PaymentID,
	})
}

// VerifyOrder reconciles an order with the gateway and redirects the
// browser to the confirmation or failure page
func (h *PaymentHandler) VerifyOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	merchantOrderID := r.URL.Query().Get("payment_id")
	if merchantOrderID == "" {
		response.Error(w, http.StatusBadRequest, "Missing payment_id parameter", nil)
		return
	}

	res, err := h.checkoutService.Reconcile(ctx, merchantOrderID)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrMissingPaymentID):
			response.Error(w, http.StatusBadRequest, "Missing payment_id parameter", nil)
		case errors.Is(err, checkout.ErrPaymentNotCompleted):
			response.Error(w, http.StatusBadRequest, "Something Went Wrong", nil)
		case errors.Is(err, checkout.ErrOrderNotFound):
			response.Error(w, http.StatusNotFound, "Order not found", nil)
		default:
			logger.FromContext(r.Context()).
				AddField("merchant_order_id", merchantOrderID).
				Error("Error processing payment verification", err)
			response.Error(w, http.StatusInternalServerError, "Failed to process payment verification", nil)
		}
		return
	}

	if res.Outcome == checkout.OutcomeFailed {
		http.Redirect(w, r, "/failed", http.StatusFound)
		return
	}

	http.Redirect(w, r, "/verify?payment_id="+url.QueryEscape(res.MerchantOrderID), http.StatusFound)
}

// GetRegistration returns the registration for a merchant order id
func (h *PaymentHandler) GetRegistration(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id := chi.URLParam(r, "id")
	if id == "" {
		response.Error(w, http.StatusBadRequest, "Missing registration ID", nil)
		return
	}

	reg, err := h.checkoutService.Registration(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "Registration not found", nil)
			return
		}
		logger.FromContext(r.Context()).
			AddField("merchant_order_id", id).
			Error("Error loading registration", err)
		response.Error(w, http.StatusInternalServerError, "Internal server error", nil)
		return
	}

	response.Success(w, http.StatusOK, "Registration retrieved", reg)
}
