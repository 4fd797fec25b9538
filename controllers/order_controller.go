// controllers/order_controller.go
package controllers

import (
	"context"
	"fmt"
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
	"github.com/floracart/floracart_backend/websocket"
)

// Allowed order status transitions. Delivered and cancelled are terminal:
// a delivered order is immutable revenue for commission purposes.
var orderTransitions = map[string][]string{
	models.OrderStatusPending:    {models.OrderStatusProcessing, models.OrderStatusCancelled},
	models.OrderStatusProcessing: {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped:    {models.OrderStatusDelivered},
}

// OrderController handles order placement and the status lifecycle
type OrderController struct {
	DB  *mongo.Database
	Hub *websocket.Hub
}

// NewOrderController creates a new order controller
func NewOrderController(db *mongo.Database, hub *websocket.Hub) *OrderController {
	return &OrderController{DB: db, Hub: hub}
}

// PlaceOrder creates an order for the calling customer. Line items are priced
// from the current catalog, never from the client, and stock is decremented
// with a conditional update so two orders cannot both take the last item.
func (oc *OrderController) PlaceOrder(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	customerID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	var req models.PlaceOrderRequest
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

	var items []models.OrderItem
	var total float64
	var reserved []models.OrderItem

	releaseReserved := func() {
		for _, item := range reserved {
			_, err := oc.DB.Collection("products").UpdateOne(ctx,
				bson.M{"_id": item.ProductID},
				bson.M{"$inc": bson.M{"stock": item.Quantity}})
			if err != nil {
				log.Printf("Failed to release reserved stock for product %s: %v", item.ProductID.Hex(), err)
			}
		}
	}

	for _, line := range req.Items {
		productID, err := primitive.ObjectIDFromHex(line.ProductID)
		if err != nil {
			releaseReserved()
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid product ID: " + line.ProductID,
			})
		}

		// Reserve stock and read the authoritative price in one conditional
		// update.
		var product models.Product
		err = oc.DB.Collection("products").FindOneAndUpdate(ctx,
			bson.M{"_id": productID, "isAvailable": true, "stock": bson.M{"$gte": line.Quantity}},
			bson.M{"$inc": bson.M{"stock": -line.Quantity}},
		).Decode(&product)
		if err != nil {
			releaseReserved()
			if err == mongo.ErrNoDocuments {
				return c.JSON(http.StatusConflict, models.Response{
					Status:  http.StatusConflict,
					Message: "Product unavailable or out of stock: " + line.ProductID,
				})
			}
			log.Printf("Failed to reserve stock for product %s: %v", productID.Hex(), err)
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to place order",
			})
		}

		item := models.OrderItem{
			ProductID: product.ID,
			SellerID:  product.SellerID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  line.Quantity,
		}
		items = append(items, item)
		reserved = append(reserved, item)
		total += product.Price * float64(line.Quantity)
	}

	now := time.Now()
	order := models.Order{
		ID:              primitive.NewObjectID(),
		CustomerID:      customerID,
		Items:           items,
		Total:           total,
		Status:          models.OrderStatusPending,
		ShippingAddress: utils.SanitizeInput(req.ShippingAddress),
		Phone:           utils.SanitizeInput(req.Phone),
		Note:            utils.SanitizeInput(req.Note),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if _, err := oc.DB.Collection("orders").InsertOne(ctx, order); err != nil {
		releaseReserved()
		log.Printf("Failed to insert order: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to place order",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Order placed successfully",
		Data:    order,
	})
}

// GetMyOrders returns the calling customer's orders, newest first
func (oc *OrderController) GetMyOrders(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	customerID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	cursor, err := oc.DB.Collection("orders").Find(ctx, bson.M{"customerId": customerID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		log.Printf("Failed to list orders: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve orders",
		})
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		log.Printf("Failed to decode orders: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve orders",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Orders retrieved successfully",
		Data:    orders,
	})
}

// GetSellerOrders returns orders containing at least one of the calling
// seller's items
func (oc *OrderController) GetSellerOrders(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sellerID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	filter := bson.M{"items.sellerId": sellerID}
	if status := c.QueryParam("status"); status != "" {
		filter["status"] = status
	}

	cursor, err := oc.DB.Collection("orders").Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		log.Printf("Failed to list seller orders: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve orders",
		})
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		log.Printf("Failed to decode seller orders: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve orders",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Orders retrieved successfully",
		Data:    orders,
	})
}

// UpdateOrderStatus advances an order along the status lifecycle. Sellers may
// only touch orders containing their items; operators may touch any order.
// Reaching "delivered" stamps deliveredAt, which fixes the order's settlement
// period for commission accrual.
func (oc *OrderController) UpdateOrderStatus(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	callerID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}
	callerType := utils.GetUserTypeFromToken(c)

	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid order ID",
		})
	}

	var req models.OrderStatusRequest
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

	var order models.Order
	err = oc.DB.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Order not found",
			})
		}
		log.Printf("Failed to load order %s: %v", orderID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve order",
		})
	}

	if callerType == models.UserTypeSeller && !orderContainsSeller(order, callerID) {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "This order does not contain your items",
		})
	}

	if !transitionAllowed(order.Status, req.Status) {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: fmt.Sprintf("Cannot change order status from %s to %s", order.Status, req.Status),
		})
	}

	now := time.Now()
	update := bson.M{"$set": bson.M{
		"status":    req.Status,
		"updatedAt": now,
	}}
	if req.Status == models.OrderStatusDelivered {
		update["$set"].(bson.M)["deliveredAt"] = now
	}

	// Filter on the previous status so concurrent updates cannot apply the
	// same transition twice.
	res, err := oc.DB.Collection("orders").UpdateOne(ctx,
		bson.M{"_id": orderID, "status": order.Status}, update)
	if err != nil {
		log.Printf("Failed to update order %s status: %v", orderID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update order status",
		})
	}
	if res.ModifiedCount == 0 {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Order status changed concurrently, please retry",
		})
	}

	utils.NotifyUser(oc.DB, oc.Hub, order.CustomerID, "Order update",
		fmt.Sprintf("Your order is now %s.", req.Status),
		models.NotificationTypeOrderStatus, map[string]string{
			"orderId": order.ID.Hex(),
			"status":  req.Status,
		})

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Order status updated successfully",
	})
}

func orderContainsSeller(order models.Order, sellerID primitive.ObjectID) bool {
	for _, item := range order.Items {
		if item.SellerID == sellerID {
			return true
		}
	}
	return false
}

func transitionAllowed(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
