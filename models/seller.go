package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Seller account statuses. "suspended" is applied automatically for
// non-payment and lifts as soon as the balance is settled; "deactivated" is
// applied manually by an operator and only an operator can lift it.
const (
	SellerStatusActive      = "active"
	SellerStatusSuspended   = "suspended"
	SellerStatusDeactivated = "deactivated"
)

// Default commission terms assigned at seller signup. Operators can adjust
// them per seller afterwards.
const (
	DefaultCommissionThreshold = 50000.0 // lifetime revenue before commission applies
	DefaultCommissionRate      = 10.0    // percent of period revenue
)

// Seller is a store account with its commission ledger. LifetimeEarnings and
// CommissionTotalDue are only mutated through conditional updates so that
// concurrent accruals and payments cannot lose writes.
type Seller struct {
	ID                  primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	StoreName           string             `json:"storeName" bson:"storeName"`
	OwnerName           string             `json:"ownerName" bson:"ownerName"`
	Email               string             `json:"email" bson:"email"`
	Password            string             `json:"password,omitempty" bson:"password"`
	Phone               string             `json:"phone,omitempty" bson:"phone"`
	Logo                string             `json:"logo,omitempty" bson:"logo"`
	Description         string             `json:"description,omitempty" bson:"description"`
	Rating              float64            `json:"rating" bson:"rating"`
	ReviewCount         int                `json:"reviewCount" bson:"reviewCount"`
	LifetimeEarnings    float64            `json:"lifetimeEarnings" bson:"lifetimeEarnings"`
	EarningsThisPeriod  float64            `json:"earningsThisPeriod" bson:"earningsThisPeriod"`
	CommissionThreshold float64            `json:"commissionThreshold" bson:"commissionThreshold"`
	CommissionRate      float64            `json:"commissionRate" bson:"commissionRate"` // percent
	CommissionTotalDue  float64            `json:"commissionTotalDue" bson:"commissionTotalDue"`
	AccountStatus       string             `json:"accountStatus" bson:"accountStatus"`
	DeactivationReason  string             `json:"deactivationReason,omitempty" bson:"deactivationReason,omitempty"`
	DeactivatedAt       *time.Time         `json:"deactivatedAt,omitempty" bson:"deactivatedAt,omitempty"`
	LastPaidDate        *time.Time         `json:"lastPaidDate,omitempty" bson:"lastPaidDate,omitempty"`
	NextDueDate         *time.Time         `json:"nextDueDate,omitempty" bson:"nextDueDate,omitempty"`
	CreatedAt           time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt           time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// SellerSignupRequest is the request body for seller registration
type SellerSignupRequest struct {
	StoreName string `json:"storeName" validate:"required"`
	OwnerName string `json:"ownerName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Phone     string `json:"phone"`
}

// SellerStatusRequest is the operator request body for manually activating or
// deactivating a seller account
type SellerStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active deactivated"`
	Reason string `json:"reason"`
}

// SellerCommissionSummary is what a seller sees on their commission page
type SellerCommissionSummary struct {
	SellerID            primitive.ObjectID `json:"sellerId"`
	StoreName           string             `json:"storeName"`
	AccountStatus       string             `json:"accountStatus"`
	LifetimeEarnings    float64            `json:"lifetimeEarnings"`
	EarningsThisPeriod  float64            `json:"earningsThisPeriod"`
	CommissionThreshold float64            `json:"commissionThreshold"`
	CommissionRate      float64            `json:"commissionRate"`
	CommissionTotalDue  float64            `json:"commissionTotalDue"`
	ThresholdReached    bool               `json:"thresholdReached"`
	NextDueDate         *time.Time         `json:"nextDueDate,omitempty"`
	LastPaidDate        *time.Time         `json:"lastPaidDate,omitempty"`
	UnpaidInvoices      int                `json:"unpaidInvoices"`
	OverdueInvoices     int                `json:"overdueInvoices"`
}
