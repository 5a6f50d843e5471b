package checkout

import "errors"

// Client-facing failures. Anything else returned by the service is internal.
var (
	ErrMissingPaymentParams = errors.New("missing payment verification parameters")
	ErrMissingCustomer      = errors.New("missing customer name or email")
	ErrBadSignature         = errors.New("payment verification failed (bad signature)")
	ErrMissingPaymentID     = errors.New("missing payment_id parameter")
	ErrPaymentNotCompleted  = errors.New("payment is not completed")
	ErrOrderNotFound        = errors.New("order not found")
	ErrNotConfigured        = errors.New("checkout: signature verification is not configured")
)

// Outcome is the result of a successful reconciliation call
type Outcome string

const (
	// OutcomeFulfilled means this call created the registration
	OutcomeFulfilled Outcome = "fulfilled"
	// OutcomeAlreadyFulfilled means a registration already existed
	OutcomeAlreadyFulfilled Outcome = "already_fulfilled"
	// OutcomeFailed means the gateway reported the payment as failed
	OutcomeFailed Outcome = "failed"
)
