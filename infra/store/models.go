package store

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegistrationType discriminates what an order pays for
type RegistrationType string

const (
	TypePass  RegistrationType = "pass"
	TypeEvent RegistrationType = "event"
)

// PaymentStatus is the local status of an order
type PaymentStatus string

const (
	StatusPending PaymentStatus = "PENDING"
	StatusSuccess PaymentStatus = "SUCCESS"
	StatusFailed  PaymentStatus = "FAILED"
)

// Participant is one attendee of a multi-person event registration
type Participant struct {
	Name string `json:"name" bson:"name"`
}

// Payment is a client-side checkout confirmed by signature. ID is the
// gateway payment id.
type Payment struct {
	ID        string          `json:"paymentId"`
	OrderID   string          `json:"orderId"`
	Signature string          `json:"signature"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Phone     string          `json:"phone,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	BasePrice decimal.Decimal `json:"basePrice"`
	GSTAmount decimal.Decimal `json:"gstAmount"`
	PassID    string          `json:"passId,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Order is created when checkout starts and updated by reconciliation
type Order struct {
	ID               string           `json:"id"`
	MerchantOrderID  string           `json:"merchantOrderId"`
	Name             string           `json:"name"`
	Email            string           `json:"email"`
	Phone            string           `json:"phone,omitempty"`
	Amount           decimal.Decimal  `json:"amount"`
	Type             RegistrationType `json:"type"`
	ClassID          string           `json:"classId"`
	NoOfParticipants int              `json:"noOfParticipants"`
	Participants     []Participant    `json:"participantsData"`
	PaymentStatus    PaymentStatus    `json:"paymentStatus"`
	MailSent         bool             `json:"mailSent"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`

	// docID is the _id as read from MongoDB
	docID any
}

// Registration marks an order as fulfilled. ID is the merchant order id.
type Registration struct {
	ID               string           `json:"id"`
	OrderID          string           `json:"orderId"`
	Signature        string           `json:"signature"`
	Name             string           `json:"name"`
	Email            string           `json:"email"`
	Phone            string           `json:"phone,omitempty"`
	Amount           decimal.Decimal  `json:"amount"`
	Type             RegistrationType `json:"type"`
	ClassID          string           `json:"classId"`
	NoOfParticipants int              `json:"noOfParticipants"`
	Participants     []Participant    `json:"participantsData"`
	CreatedAt        time.Time        `json:"createdAt"`
}

// NewRegistration copies the customer and registration fields of an order
func NewRegistration(o *Order) *Registration {
	participants := make([]Participant, len(o.Participants))
	copy(participants, o.Participants)

	return &Registration{
		ID:               o.MerchantOrderID,
		OrderID:          o.ID,
		Signature:        o.MerchantOrderID,
		Name:             o.Name,
		Email:            o.Email,
		Phone:            o.Phone,
		Amount:           o.Amount,
		Type:             o.Type,
		ClassID:          o.ClassID,
		NoOfParticipants: o.NoOfParticipants,
		Participants:     participants,
	}
}
