package checkout

import (
	"github.com/shopspring/decimal"
)

// VerifyRequest is the body posted after a Razorpay checkout. Both the
// gateway's snake_case names and the frontend's camelCase names are
// accepted; Normalize resolves them.
type VerifyRequest struct {
	RazorpayOrderID   *string `json:"razorpay_order_id"`
	RazorpayPaymentID *string `json:"razorpay_payment_id"`
	RazorpaySignature *string `json:"razorpay_signature"`
	OrderID           *string `json:"orderId"`
	PaymentID         *string `json:"paymentId"`
	Signature         *string `json:"signature"`

	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Phone     string          `json:"phone"`
	Amount    decimal.Decimal `json:"amount"`
	BasePrice decimal.Decimal `json:"basePrice"`
	GSTAmount decimal.Decimal `json:"gstAmount"`
	PassID    string          `json:"passId"`
}

// PaymentConfirmation is a VerifyRequest with aliases resolved
type PaymentConfirmation struct {
	OrderID   string `validate:"required"`
	PaymentID string `validate:"required"`
	Signature string `validate:"required"`

	Name  string `validate:"required"`
	Email string `validate:"required"`
	Phone string

	Amount    decimal.Decimal
	BasePrice decimal.Decimal
	GSTAmount decimal.Decimal
	PassID    string
}

// Normalize resolves field aliases. A snake_case field that is present,
// even when empty, takes precedence over its camelCase alias.
func (r VerifyRequest) Normalize() PaymentConfirmation {
	return PaymentConfirmation{
		OrderID:   coalesce(r.RazorpayOrderID, r.OrderID),
		PaymentID: coalesce(r.RazorpayPaymentID, r.PaymentID),
		Signature: coalesce(r.RazorpaySignature, r.Signature),
		Name:      r.Name,
		Email:     r.Email,
		Phone:     r.Phone,
		Amount:    r.Amount,
		BasePrice: r.BasePrice,
		GSTAmount: r.GSTAmount,
		PassID:    r.PassID,
	}
}

func coalesce(primary, alias *string) string {
	if primary != nil {
		return *primary
	}
	if alias != nil {
		return *alias
	}
	return ""
}
