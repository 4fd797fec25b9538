package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Invoice statuses. Transitions are one-way: unpaid -> paid, or
// unpaid -> overdue -> paid. An invoice is never deleted.
const (
	InvoiceStatusUnpaid  = "unpaid"
	InvoiceStatusPaid    = "paid"
	InvoiceStatusOverdue = "overdue"
)

// CommissionInvoice is the per-seller, per-period settlement record. The
// commission_invoices collection carries a unique index on
// {sellerId, month, year}, so generation is idempotent at the storage layer.
type CommissionInvoice struct {
	ID                primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	SellerID          primitive.ObjectID `json:"sellerId" bson:"sellerId"`
	Month             int                `json:"month" bson:"month"`
	Year              int                `json:"year" bson:"year"`
	PeriodRevenue     float64            `json:"periodRevenue" bson:"periodRevenue"`
	CommissionRate    float64            `json:"commissionRate" bson:"commissionRate"`
	CommissionApplies bool               `json:"commissionApplies" bson:"commissionApplies"`
	AmountDue         float64            `json:"amountDue" bson:"amountDue"`
	DueDate           time.Time          `json:"dueDate" bson:"dueDate"`
	Status            string             `json:"status" bson:"status"`
	PaidAt            *time.Time         `json:"paidAt,omitempty" bson:"paidAt,omitempty"`
	PaymentMethod     string             `json:"paymentMethod,omitempty" bson:"paymentMethod,omitempty"`
	PaymentRef        string             `json:"paymentRef,omitempty" bson:"paymentRef,omitempty"`
	CreatedAt         time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// AccrualRequest is the operator request body for triggering commission accrual
type AccrualRequest struct {
	Month int `json:"month" validate:"required,min=1,max=12"`
	Year  int `json:"year" validate:"required,min=2020"`
}

// AccrualResult summarizes one accrual run for one seller
type AccrualResult struct {
	SellerID          primitive.ObjectID `json:"sellerId"`
	Month             int                `json:"month"`
	Year              int                `json:"year"`
	PeriodRevenue     float64            `json:"periodRevenue"`
	LifetimeEarnings  float64            `json:"lifetimeEarnings"`
	CommissionApplies bool               `json:"commissionApplies"`
	CommissionAmount  float64            `json:"commissionAmount"`
	InvoiceID         primitive.ObjectID `json:"invoiceId,omitempty"`
}
