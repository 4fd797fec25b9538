// controllers/feedback_controller.go
package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/floracart/floracart_backend/models"
	"github.com/floracart/floracart_backend/utils"
)

// FeedbackController handles product reviews
type FeedbackController struct {
	DB *mongo.Database
}

// NewFeedbackController creates a new feedback controller
func NewFeedbackController(db *mongo.Database) *FeedbackController {
	return &FeedbackController{DB: db}
}

// SubmitFeedback records a review for a product the caller actually received:
// the referenced order must belong to them, be delivered, and contain the
// product. One review per customer per product per order.
func (fc *FeedbackController) SubmitFeedback(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	customerID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	var req models.FeedbackRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid product ID",
		})
	}
	orderID, err := primitive.ObjectIDFromHex(req.OrderID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid order ID",
		})
	}

	count, err := fc.DB.Collection("orders").CountDocuments(ctx, bson.M{
		"_id":             orderID,
		"customerId":      customerID,
		"status":          models.OrderStatusDelivered,
		"items.productId": productID,
	})
	if err != nil {
		log.Printf("Failed to check order %s for feedback: %v", orderID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to submit feedback",
		})
	}
	if count == 0 {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "You can only review products from your own delivered orders",
		})
	}

	existing, err := fc.DB.Collection("feedback").CountDocuments(ctx, bson.M{
		"productId":  productID,
		"customerId": customerID,
		"orderId":    orderID,
	})
	if err == nil && existing > 0 {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "You have already reviewed this product for this order",
		})
	}

	feedback := models.Feedback{
		ID:         primitive.NewObjectID(),
		ProductID:  productID,
		CustomerID: customerID,
		OrderID:    orderID,
		Rating:     req.Rating,
		Comment:    utils.SanitizeInput(req.Comment),
		CreatedAt:  time.Now(),
	}

	if _, err := fc.DB.Collection("feedback").InsertOne(ctx, feedback); err != nil {
		log.Printf("Failed to insert feedback: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to submit feedback",
		})
	}

	fc.refreshProductRating(ctx, productID)

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Feedback submitted successfully",
		Data:    feedback,
	})
}

// GetProductFeedback returns all reviews of a product, newest first. Public.
func (fc *FeedbackController) GetProductFeedback(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid product ID",
		})
	}

	cursor, err := fc.DB.Collection("feedback").Find(ctx, bson.M{"productId": productID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		log.Printf("Failed to list feedback for product %s: %v", productID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve feedback",
		})
	}
	defer cursor.Close(ctx)

	reviews := []models.Feedback{}
	if err := cursor.All(ctx, &reviews); err != nil {
		log.Printf("Failed to decode feedback for product %s: %v", productID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve feedback",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Feedback retrieved successfully",
		Data:    reviews,
	})
}

// refreshProductRating recomputes the product's average rating and review
// count from the feedback collection. Failures are logged only; the review
// itself is already stored.
func (fc *FeedbackController) refreshProductRating(ctx context.Context, productID primitive.ObjectID) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"productId": productID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"avg":   bson.M{"$avg": "$rating"},
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := fc.DB.Collection("feedback").Aggregate(ctx, pipeline)
	if err != nil {
		log.Printf("Failed to aggregate rating for product %s: %v", productID.Hex(), err)
		return
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Avg   float64 `bson:"avg"`
		Count int     `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil || len(rows) == 0 {
		return
	}

	_, err = fc.DB.Collection("products").UpdateOne(ctx,
		bson.M{"_id": productID},
		bson.M{"$set": bson.M{
			"rating":      rows[0].Avg,
			"reviewCount": rows[0].Count,
			"updatedAt":   time.Now(),
		}})
	if err != nil {
		log.Printf("Failed to update rating for product %s: %v", productID.Hex(), err)
	}
}
