package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment methods
const (
	PaymentMethodCash = "cash"
	PaymentMethodCard = "card"
)

// Payment statuses. Cash payments start pending and need an operator
// verification before they settle any debt; card payments are "paid" as soon
// as the gateway confirms the intent.
const (
	PaymentStatusPendingVerification = "pending_verification"
	PaymentStatusPaid                = "paid"
	PaymentStatusVerified            = "verified"
	PaymentStatusRejected            = "rejected"
)

// CommissionPayment is one payment attempt against a seller's outstanding
// commission balance. Created once, mutated at most once (verification outcome).
type CommissionPayment struct {
	ID         primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	SellerID   primitive.ObjectID  `json:"sellerId" bson:"sellerId"`
	Amount     float64             `json:"amount" bson:"amount"`
	Method     string              `json:"method" bson:"method"`
	Status     string              `json:"status" bson:"status"`
	Reference  string              `json:"reference" bson:"reference"` // uuid, printed on receipts and QR codes
	IntentID   string              `json:"intentId,omitempty" bson:"intentId,omitempty"`
	Notes      string              `json:"notes,omitempty" bson:"notes,omitempty"`
	VerifiedBy *primitive.ObjectID `json:"verifiedBy,omitempty" bson:"verifiedBy,omitempty"`
	VerifiedAt *time.Time          `json:"verifiedAt,omitempty" bson:"verifiedAt,omitempty"`
	CreatedAt  time.Time           `json:"createdAt" bson:"createdAt"`
}

// CashPaymentRequest is the seller request body for submitting a cash payment
type CashPaymentRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Notes  string  `json:"notes"`
}

// CardIntentRequest is the seller request body for starting a card payment
type CardIntentRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// CardConfirmRequest is the seller request body for confirming a card payment
// after the gateway round trip
type CardConfirmRequest struct {
	IntentID string  `json:"intentId" validate:"required"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
}

// VerifyCashRequest is the operator request body for settling or rejecting a
// pending cash payment
type VerifyCashRequest struct {
	Outcome string `json:"outcome" validate:"required,oneof=verified rejected"`
	Notes   string `json:"notes"`
}

// PaymentStats aggregates a seller's payment history for the dashboard
type PaymentStats struct {
	TotalPaid       float64 `json:"totalPaid"`
	PendingCash     float64 `json:"pendingCash"`
	PaymentCount    int     `json:"paymentCount"`
	RejectedCount   int     `json:"rejectedCount"`
	OutstandingDue  float64 `json:"outstandingDue"`
	LastPaymentDate *string `json:"lastPaymentDate,omitempty"`
}
