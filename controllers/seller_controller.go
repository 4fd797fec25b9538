// controllers/seller_controller.go
package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/floracart/floracart_backend/models"
	"github.com/floracart/floracart_backend/services"
	"github.com/floracart/floracart_backend/utils"
	"github.com/floracart/floracart_backend/websocket"
)

const dashboardCacheKey = "floracart:cache:dashboard_stats"
const dashboardCacheTTL = 5 * time.Minute

// SellerController handles operator administration of seller accounts and the
// operator dashboard
type SellerController struct {
	DB      *mongo.Database
	Redis   *redis.Client
	Hub     *websocket.Hub
	Monitor *services.OverdueMonitor
}

// NewSellerController creates a new seller controller
func NewSellerController(db *mongo.Database, rdb *redis.Client, hub *websocket.Hub, monitor *services.OverdueMonitor) *SellerController {
	return &SellerController{DB: db, Redis: rdb, Hub: hub, Monitor: monitor}
}

// ListSellers returns all sellers for the operator console. An optional status
// query filters by account status.
func (sc *SellerController) ListSellers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if status := c.QueryParam("status"); status != "" {
		filter["accountStatus"] = status
	}

	cursor, err := sc.DB.Collection("sellers").Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		log.Printf("Failed to list sellers: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve sellers",
		})
	}
	defer cursor.Close(ctx)

	sellers := []models.Seller{}
	if err := cursor.All(ctx, &sellers); err != nil {
		log.Printf("Failed to decode sellers: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve sellers",
		})
	}
	for i := range sellers {
		sellers[i].Password = ""
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Sellers retrieved successfully",
		Data:    sellers,
	})
}

// GetSeller returns one seller with their open invoices for the operator console
func (sc *SellerController) GetSeller(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sellerID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid seller ID",
		})
	}

	var seller models.Seller
	err = sc.DB.Collection("sellers").FindOne(ctx, bson.M{"_id": sellerID}).Decode(&seller)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Seller not found",
			})
		}
		log.Printf("Failed to load seller %s: %v", sellerID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve seller",
		})
	}
	seller.Password = ""

	invoices := []models.CommissionInvoice{}
	cursor, err := sc.DB.Collection("commission_invoices").Find(ctx,
		bson.M{"sellerId": sellerID, "status": bson.M{"$in": bson.A{models.InvoiceStatusUnpaid, models.InvoiceStatusOverdue}}},
		options.Find().SetSort(bson.D{{Key: "year", Value: 1}, {Key: "month", Value: 1}}))
	if err == nil {
		if err := cursor.All(ctx, &invoices); err != nil {
			log.Printf("Failed to decode invoices for seller %s: %v", sellerID.Hex(), err)
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Seller retrieved successfully",
		Data: map[string]interface{}{
			"seller":       seller,
			"openInvoices": invoices,
		},
	})
}

// SetSellerStatus manually activates or deactivates a seller account. Operator
// only. Manual deactivation is the heavier hammer: unlike an automatic
// suspension it is not lifted by payment, only by this endpoint.
func (sc *SellerController) SetSellerStatus(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sellerID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid seller ID",
		})
	}

	var req models.SellerStatusRequest
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
	var update bson.M
	if req.Status == models.SellerStatusDeactivated {
		reason := utils.SanitizeInput(req.Reason)
		if reason == "" {
			reason = "deactivated by operator"
		}
		update = bson.M{"$set": bson.M{
			"accountStatus":      models.SellerStatusDeactivated,
			"deactivationReason": reason,
			"deactivatedAt":      now,
			"updatedAt":          now,
		}}
	} else {
		update = bson.M{
			"$set":   bson.M{"accountStatus": models.SellerStatusActive, "updatedAt": now},
			"$unset": bson.M{"deactivationReason": "", "deactivatedAt": ""},
		}
	}

	res, err := sc.DB.Collection("sellers").UpdateOne(ctx, bson.M{"_id": sellerID}, update)
	if err != nil {
		log.Printf("Failed to set status for seller %s: %v", sellerID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update seller status",
		})
	}
	if res.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Seller not found",
		})
	}

	if req.Status == models.SellerStatusDeactivated {
		utils.NotifyUser(sc.DB, sc.Hub, sellerID, "Store deactivated",
			"Your store has been deactivated by the platform. Contact support for details.",
			models.NotificationTypeAccountSuspended, nil)
	} else {
		utils.NotifyUser(sc.DB, sc.Hub, sellerID, "Store restored",
			"Your store has been reactivated. Welcome back.",
			models.NotificationTypeAccountRestored, nil)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Seller status updated successfully",
	})
}

// DashboardStats is the operator console landing view
type DashboardStats struct {
	TotalSellers      int64   `json:"totalSellers"`
	ActiveSellers     int64   `json:"activeSellers"`
	SuspendedSellers  int64   `json:"suspendedSellers"`
	TotalCustomers    int64   `json:"totalCustomers"`
	TotalProducts     int64   `json:"totalProducts"`
	OpenOrders        int64   `json:"openOrders"`
	OverdueInvoices   int64   `json:"overdueInvoices"`
	PendingCashChecks int64   `json:"pendingCashChecks"`
	CommissionOwed    float64 `json:"commissionOwed"`
	GeneratedAt       string  `json:"generatedAt"`
}

// GetDashboardStats returns platform-wide counters, cached in Redis for a few
// minutes because the operator console polls this endpoint.
func (sc *SellerController) GetDashboardStats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if sc.Redis != nil {
		if cached, err := sc.Redis.Get(ctx, dashboardCacheKey).Result(); err == nil {
			var stats DashboardStats
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				return c.JSON(http.StatusOK, models.Response{
					Status:  http.StatusOK,
					Message: "Dashboard stats retrieved successfully",
					Data:    stats,
				})
			}
		}
	}

	stats, err := sc.computeDashboardStats(ctx)
	if err != nil {
		log.Printf("Failed to compute dashboard stats: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve dashboard stats",
		})
	}

	if sc.Redis != nil {
		if payload, err := json.Marshal(stats); err == nil {
			if err := sc.Redis.Set(ctx, dashboardCacheKey, payload, dashboardCacheTTL).Err(); err != nil {
				log.Printf("Failed to cache dashboard stats: %v", err)
			}
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Dashboard stats retrieved successfully",
		Data:    stats,
	})
}

func (sc *SellerController) computeDashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{GeneratedAt: time.Now().Format(time.RFC3339)}

	counts := []struct {
		coll   string
		filter bson.M
		dest   *int64
	}{
		{"sellers", bson.M{}, &stats.TotalSellers},
		{"sellers", bson.M{"accountStatus": models.SellerStatusActive}, &stats.ActiveSellers},
		{"sellers", bson.M{"accountStatus": models.SellerStatusSuspended}, &stats.SuspendedSellers},
		{"users", bson.M{"userType": models.UserTypeCustomer}, &stats.TotalCustomers},
		{"products", bson.M{}, &stats.TotalProducts},
		{"orders", bson.M{"status": bson.M{"$in": bson.A{
			models.OrderStatusPending, models.OrderStatusProcessing, models.OrderStatusShipped,
		}}}, &stats.OpenOrders},
		{"commission_invoices", bson.M{"status": models.InvoiceStatusOverdue}, &stats.OverdueInvoices},
		{"commission_payments", bson.M{"status": models.PaymentStatusPendingVerification}, &stats.PendingCashChecks},
	}
	for _, q := range counts {
		n, err := sc.DB.Collection(q.coll).CountDocuments(ctx, q.filter)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", q.coll, err)
		}
		*q.dest = n
	}

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$commissionTotalDue"},
		}}},
	}
	cursor, err := sc.DB.Collection("sellers").Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to sum commission owed: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		stats.CommissionOwed = rows[0].Total
	}

	return stats, nil
}

// RunOverdueSweep triggers the overdue monitor on demand. Operator only; the
// same sweep also runs on the daily schedule.
func (sc *SellerController) RunOverdueSweep(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := sc.Monitor.Run(ctx)
	if err != nil {
		log.Printf("Manual overdue sweep failed: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Overdue sweep failed",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Overdue sweep completed",
		Data:    result,
	})
}
