// controllers/commission_controller.go
package controllers

import (
	"context"
	"errors"
	"fmt"
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
	"github.com/floracart/floracart_backend/services"
	"github.com/floracart/floracart_backend/utils"
)

// CommissionController exposes the accrual workflow: operator-triggered
// accrual runs and the seller-facing commission views.
type CommissionController struct {
	DB     *mongo.Database
	Engine *services.AccrualEngine
}

// NewCommissionController creates a new commission controller
func NewCommissionController(db *mongo.Database, engine *services.AccrualEngine) *CommissionController {
	return &CommissionController{DB: db, Engine: engine}
}

// TriggerAccrual runs commission accrual for one seller and one period.
// Operator only. Re-triggering the same period returns 409 and changes nothing.
func (cc *CommissionController) TriggerAccrual(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sellerID, err := primitive.ObjectIDFromHex(c.Param("sellerId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid seller ID",
		})
	}

	var req models.AccrualRequest
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

	result, err := cc.Engine.AccrueSellerPeriod(ctx, sellerID, req.Month, req.Year)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSellerNotFound):
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Seller not found",
			})
		case errors.Is(err, services.ErrInvoiceExists):
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: fmt.Sprintf("Commission for %d/%d has already been accrued for this seller", req.Month, req.Year),
			})
		default:
			log.Printf("Accrual failed for seller %s: %v", sellerID.Hex(), err)
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to run commission accrual",
			})
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Commission accrual completed",
		Data:    result,
	})
}

// RunPeriodClose runs accrual for every seller for the given period. Operator
// only; used to close a month manually or to re-drive a partially failed run.
func (cc *CommissionController) RunPeriodClose(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var req models.AccrualRequest
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

	processed, skipped, failed := cc.Engine.RunPeriodClose(ctx, req.Month, req.Year)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Period close completed",
		Data: map[string]int{
			"processed": processed,
			"skipped":   skipped,
			"failed":    failed,
		},
	})
}

// GetCommissionSummary returns the calling seller's commission position:
// lifetime earnings, threshold progress, outstanding balance and invoice counts.
func (cc *CommissionController) GetCommissionSummary(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sellerID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	var seller models.Seller
	err = cc.DB.Collection("sellers").FindOne(ctx, bson.M{"_id": sellerID}).Decode(&seller)
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
			Message: "Failed to retrieve commission summary",
		})
	}

	unpaid, err := cc.DB.Collection("commission_invoices").CountDocuments(ctx, bson.M{
		"sellerId": sellerID,
		"status":   models.InvoiceStatusUnpaid,
	})
	if err != nil {
		log.Printf("Failed to count unpaid invoices for seller %s: %v", sellerID.Hex(), err)
	}
	overdue, err := cc.DB.Collection("commission_invoices").CountDocuments(ctx, bson.M{
		"sellerId": sellerID,
		"status":   models.InvoiceStatusOverdue,
	})
	if err != nil {
		log.Printf("Failed to count overdue invoices for seller %s: %v", sellerID.Hex(), err)
	}

	summary := models.SellerCommissionSummary{
		SellerID:            seller.ID,
		StoreName:           seller.StoreName,
		AccountStatus:       seller.AccountStatus,
		LifetimeEarnings:    seller.LifetimeEarnings,
		EarningsThisPeriod:  seller.EarningsThisPeriod,
		CommissionThreshold: seller.CommissionThreshold,
		CommissionRate:      seller.CommissionRate,
		CommissionTotalDue:  seller.CommissionTotalDue,
		ThresholdReached:    seller.LifetimeEarnings >= seller.CommissionThreshold,
		NextDueDate:         seller.NextDueDate,
		LastPaidDate:        seller.LastPaidDate,
		UnpaidInvoices:      int(unpaid),
		OverdueInvoices:     int(overdue),
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Commission summary retrieved successfully",
		Data:    summary,
	})
}

// GetInvoices returns the calling seller's commission invoices, newest period
// first. An optional status query filters by invoice status.
func (cc *CommissionController) GetInvoices(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sellerID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	filter := bson.M{"sellerId": sellerID}
	if status := c.QueryParam("status"); status != "" {
		filter["status"] = status
	}

	cursor, err := cc.DB.Collection("commission_invoices").Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "year", Value: -1}, {Key: "month", Value: -1}}))
	if err != nil {
		log.Printf("Failed to list invoices for seller %s: %v", sellerID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve invoices",
		})
	}
	defer cursor.Close(ctx)

	invoices := []models.CommissionInvoice{}
	if err := cursor.All(ctx, &invoices); err != nil {
		log.Printf("Failed to decode invoices for seller %s: %v", sellerID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve invoices",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Invoices retrieved successfully",
		Data:    invoices,
	})
}

// GetInvoiceQR renders the payment reference for one of the caller's invoices
// as a QR code PNG, for the cash-at-counter flow.
func (cc *CommissionController) GetInvoiceQR(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sellerID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	invoiceID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid invoice ID",
		})
	}

	var invoice models.CommissionInvoice
	err = cc.DB.Collection("commission_invoices").FindOne(ctx,
		bson.M{"_id": invoiceID, "sellerId": sellerID}).Decode(&invoice)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Invoice not found",
			})
		}
		log.Printf("Failed to load invoice %s: %v", invoiceID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve invoice",
		})
	}

	size := 256
	if sizeStr := c.QueryParam("size"); sizeStr != "" {
		if n, err := strconv.Atoi(sizeStr); err == nil && n >= 64 && n <= 1024 {
			size = n
		}
	}

	content := fmt.Sprintf("floracart:invoice:%s:%d-%02d:%.2f",
		invoice.ID.Hex(), invoice.Year, invoice.Month, invoice.AmountDue)
	pngBytes, err := utils.GenerateQRCode(content, size)
	if err != nil {
		log.Printf("Failed to generate QR for invoice %s: %v", invoiceID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate QR code",
		})
	}

	return c.Blob(http.StatusOK, "image/png", pngBytes)
}
