package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Feedback is a customer review of a delivered product
type Feedback struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ProductID  primitive.ObjectID `json:"productId" bson:"productId"`
	CustomerID primitive.ObjectID `json:"customerId" bson:"customerId"`
	OrderID    primitive.ObjectID `json:"orderId" bson:"orderId"`
	Rating     int                `json:"rating" bson:"rating"` // 1..5
	Comment    string             `json:"comment,omitempty" bson:"comment,omitempty"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
}

// FeedbackRequest is the request body for submitting a review
type FeedbackRequest struct {
	ProductID string `json:"productId" validate:"required"`
	OrderID   string `json:"orderId" validate:"required"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment"`
}
