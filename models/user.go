package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User types stored in JWT claims and checked by handlers
const (
	UserTypeCustomer = "customer"
	UserTypeSeller   = "seller"
	UserTypeOperator = "operator"
)

// User represents a customer or platform operator account.
// Sellers live in their own collection, see Seller.
type User struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	FullName       string             `json:"fullName" bson:"fullName"`
	Email          string             `json:"email" bson:"email"`
	Password       string             `json:"password,omitempty" bson:"password"`
	Phone          string             `json:"phone,omitempty" bson:"phone"`
	UserType       string             `json:"userType" bson:"userType"` // "customer" or "operator"
	ProfilePicture string             `json:"profilePicture,omitempty" bson:"profilePicture"`
	IsActive       bool               `json:"isActive" bson:"isActive"`
	LastActivityAt time.Time          `json:"lastActivityAt,omitempty" bson:"lastActivityAt,omitempty"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// SignupRequest is the request body for customer registration
type SignupRequest struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone"`
}

// LoginRequest is the request body for all account types
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	UserType string `json:"userType"` // optional, defaults to "customer"
}

// LoginResponse carries the issued tokens
type LoginResponse struct {
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken"`
	User         interface{} `json:"user"`
}
