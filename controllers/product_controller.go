// controllers/product_controller.go
package controllers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/floracart/floracart_backend/models"
	"github.com/floracart/floracart_backend/utils"
)

// ProductController handles the seller catalog and public storefront listing
type ProductController struct {
	DB *mongo.Database
}

// NewProductController creates a new product controller
func NewProductController(db *mongo.Database) *ProductController {
	return &ProductController{DB: db}
}

// CreateProduct adds a product to the calling seller's catalog. Accepts a
// multipart form with an optional image file.
func (pc *ProductController) CreateProduct(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sellerID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	var req models.ProductRequest
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

	now := time.Now()
	product := models.Product{
		ID:          primitive.NewObjectID(),
		SellerID:    sellerID,
		Name:        utils.SanitizeInput(req.Name),
		Description: utils.SanitizeInput(req.Description),
		Category:    utils.SanitizeInput(req.Category),
		Price:       req.Price,
		Stock:       req.Stock,
		IsAvailable: req.Stock > 0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if file, err := c.FormFile("image"); err == nil {
		imagePath, thumbPath, err := utils.SaveUploadedImage(file, "uploads/products")
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid product image: " + err.Error(),
			})
		}
		product.Image = imagePath
		product.Thumbnail = thumbPath
	}

	if _, err := pc.DB.Collection("products").InsertOne(ctx, product); err != nil {
		log.Printf("Failed to insert product: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create product",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Product created successfully",
		Data:    product,
	})
}

// UpdateProduct updates a product owned by the calling seller
func (pc *ProductController) UpdateProduct(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sellerID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid product ID",
		})
	}

	var req models.ProductRequest
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

	update := bson.M{"$set": bson.M{
		"name":        utils.SanitizeInput(req.Name),
		"description": utils.SanitizeInput(req.Description),
		"category":    utils.SanitizeInput(req.Category),
		"price":       req.Price,
		"stock":       req.Stock,
		"isAvailable": req.Stock > 0,
		"updatedAt":   time.Now(),
	}}

	if file, err := c.FormFile("image"); err == nil {
		imagePath, thumbPath, err := utils.SaveUploadedImage(file, "uploads/products")
		if err == nil {
			update["$set"].(bson.M)["image"] = imagePath
			update["$set"].(bson.M)["thumbnail"] = thumbPath
		}
	}

	res, err := pc.DB.Collection("products").UpdateOne(ctx,
		bson.M{"_id": productID, "sellerId": sellerID}, update)
	if err != nil {
		log.Printf("Failed to update product %s: %v", productID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update product",
		})
	}
	if res.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Product not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Product updated successfully",
	})
}

// DeleteProduct removes a product owned by the calling seller
func (pc *ProductController) DeleteProduct(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sellerID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid product ID",
		})
	}

	res, err := pc.DB.Collection("products").DeleteOne(ctx,
		bson.M{"_id": productID, "sellerId": sellerID})
	if err != nil {
		log.Printf("Failed to delete product %s: %v", productID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to delete product",
		})
	}
	if res.DeletedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Product not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Product deleted successfully",
	})
}

// GetProduct returns one product for the storefront
func (pc *ProductController) GetProduct(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid product ID",
		})
	}

	var product models.Product
	err = pc.DB.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Product not found",
			})
		}
		log.Printf("Failed to load product %s: %v", productID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve product",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Product retrieved successfully",
		Data:    product,
	})
}

// ListProducts returns the public storefront catalog with optional category
// filter and pagination
func (pc *ProductController) ListProducts(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{"isAvailable": true}
	if category := c.QueryParam("category"); category != "" {
		filter["category"] = category
	}
	if sellerIDStr := c.QueryParam("sellerId"); sellerIDStr != "" {
		if sellerID, err := primitive.ObjectIDFromHex(sellerIDStr); err == nil {
			filter["sellerId"] = sellerID
		}
	}

	limit := int64(50)
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		if n, err := strconv.ParseInt(limitStr, 10, 64); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	page := int64(0)
	if pageStr := c.QueryParam("page"); pageStr != "" {
		if n, err := strconv.ParseInt(pageStr, 10, 64); err == nil && n > 0 {
			page = n - 1
		}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit).
		SetSkip(page * limit)

	cursor, err := pc.DB.Collection("products").Find(ctx, filter, opts)
	if err != nil {
		log.Printf("Failed to list products: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve products",
		})
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		log.Printf("Failed to decode products: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve products",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Products retrieved successfully",
		Data:    products,
	})
}

// GetSellerProducts returns the calling seller's own catalog, including
// unavailable items
func (pc *ProductController) GetSellerProducts(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sellerID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	cursor, err := pc.DB.Collection("products").Find(ctx, bson.M{"sellerId": sellerID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		log.Printf("Failed to list seller products: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve products",
		})
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		log.Printf("Failed to decode seller products: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve products",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Products retrieved successfully",
		Data:    products,
	})
}
