package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types produced by the commission and order workflows
const (
	NotificationTypeOrderStatus      = "order_status"
	NotificationTypeInvoiceCreated   = "invoice_created"
	NotificationTypeInvoiceOverdue   = "invoice_overdue"
	NotificationTypePaymentReceived  = "payment_received"
	NotificationTypePaymentRejected  = "payment_rejected"
	NotificationTypeAccountSuspended = "account_suspended"
	NotificationTypeAccountRestored  = "account_restored"
)

// Notification model
type Notification struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"` // receiving account (customer or seller)
	Title     string             `json:"title" bson:"title"`
	Message   string             `json:"message" bson:"message"`
	Type      string             `json:"type" bson:"type"`
	Data      interface{}        `json:"data,omitempty" bson:"data"`
	IsRead    bool               `json:"isRead" bson:"isRead"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}
