package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses. Revenue is only counted once an order reaches "delivered";
// a delivered order is immutable for commission purposes.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// OrderItem is one line of an order, attributing revenue to a single seller
type OrderItem struct {
	ProductID primitive.ObjectID `json:"productId" bson:"productId"`
	SellerID  primitive.ObjectID `json:"sellerId" bson:"sellerId"`
	Name      string             `json:"name" bson:"name"`
	UnitPrice float64            `json:"unitPrice" bson:"unitPrice"`
	Quantity  int                `json:"quantity" bson:"quantity"`
}

// Order represents a customer order
type Order struct {
	ID              primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	CustomerID      primitive.ObjectID `json:"customerId" bson:"customerId"`
	Items           []OrderItem        `json:"items" bson:"items"`
	Total           float64            `json:"total" bson:"total"`
	Status          string             `json:"status" bson:"status"`
	ShippingAddress string             `json:"shippingAddress" bson:"shippingAddress"`
	Phone           string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Note            string             `json:"note,omitempty" bson:"note,omitempty"`
	DeliveredAt     *time.Time         `json:"deliveredAt,omitempty" bson:"deliveredAt,omitempty"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// OrderItemRequest is one requested line when placing an order
type OrderItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// PlaceOrderRequest is the request body for placing an order
type PlaceOrderRequest struct {
	Items           []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	ShippingAddress string             `json:"shippingAddress" validate:"required"`
	Phone           string             `json:"phone"`
	Note            string             `json:"note"`
}

// OrderStatusRequest is the request body for order status updates
type OrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
}
