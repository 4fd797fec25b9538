package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a catalog item belonging to one seller
type Product struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	SellerID    primitive.ObjectID `json:"sellerId" bson:"sellerId"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Category    string             `json:"category" bson:"category"` // e.g. "bouquet", "graduation_gift"
	Price       float64            `json:"price" bson:"price"`
	Stock       int                `json:"stock" bson:"stock"`
	Image       string             `json:"image,omitempty" bson:"image,omitempty"`
	Thumbnail   string             `json:"thumbnail,omitempty" bson:"thumbnail,omitempty"`
	IsAvailable bool               `json:"isAvailable" bson:"isAvailable"`
	Rating      float64            `json:"rating" bson:"rating"`
	ReviewCount int                `json:"reviewCount" bson:"reviewCount"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ProductRequest is the multipart form body for creating/updating a product.
// The image file is read separately from the form.
type ProductRequest struct {
	Name        string  `json:"name" form:"name" validate:"required"`
	Description string  `json:"description" form:"description"`
	Category    string  `json:"category" form:"category" validate:"required"`
	Price       float64 `json:"price" form:"price" validate:"required,gt=0"`
	Stock       int     `json:"stock" form:"stock" validate:"gte=0"`
}
