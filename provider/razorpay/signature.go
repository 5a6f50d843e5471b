// Package razorpay verifies Razorpay checkout callbacks.
package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

var ErrMissingSecret = errors.New("razorpay: key secret is not configured")

// Verifier checks checkout signatures with the account key secret
type Verifier struct {
	secret []byte
}

func NewVerifier(keySecret string) (*Verifier, error) {
	if keySecret == "" {
		return nil, ErrMissingSecret
	}
	return &Verifier{secret: []byte(keySecret)}, nil
}

// Sign returns the lowercase hex HMAC-SHA256 of "<orderID>|<paymentID>"
func (v *Verifier) Sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches exactly. Comparison is
// case-sensitive and constant-time.
func (v *Verifier) Verify(orderID, paymentID, signature string) bool {
	expected := v.Sign(orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
