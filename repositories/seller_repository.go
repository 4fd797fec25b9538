package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/floracart/floracart_backend/models"
)

type SellerRepository struct {
	collection *mongo.Collection
}

func NewSellerRepository(db *mongo.Database) *SellerRepository {
	return &SellerRepository{
		collection: db.Collection("sellers"),
	}
}

func (r *SellerRepository) FindByID(ctx context.Context, sellerID primitive.ObjectID) (*models.Seller, error) {
	var seller models.Seller
	err := r.collection.FindOne(ctx, bson.M{"_id": sellerID}).Decode(&seller)
	if err != nil {
		return nil, err
	}
	return &seller, nil
}

func (r *SellerRepository) UpdateLogo(ctx context.Context, sellerID primitive.ObjectID, logoPath string) error {
	update := bson.M{
		"$set": bson.M{
			"logo":      logoPath,
			"updatedAt": time.Now(),
		},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": sellerID}, update)
	return err
}

func (r *SellerRepository) UpdateProfile(ctx context.Context, sellerID primitive.ObjectID, storeName, ownerName, phone, description string) error {
	set := bson.M{"updatedAt": time.Now()}
	if storeName != "" {
		set["storeName"] = storeName
	}
	if ownerName != "" {
		set["ownerName"] = ownerName
	}
	if phone != "" {
		set["phone"] = phone
	}
	if description != "" {
		set["description"] = description
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": sellerID}, bson.M{"$set": set})
	return err
}
