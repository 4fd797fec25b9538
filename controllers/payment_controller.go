// controllers/payment_controller.go
package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
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

// PaymentController records commission payments. Cash payments wait for an
// operator to verify the money before they touch the ledger; card payments
// settle as soon as the gateway confirms the intent.
type PaymentController struct {
	DB      *mongo.Database
	Gateway *services.CardGatewayService
	Hub     *websocket.Hub
}

// NewPaymentController creates a new payment controller
func NewPaymentController(db *mongo.Database, gateway *services.CardGatewayService, hub *websocket.Hub) *PaymentController {
	return &PaymentController{DB: db, Gateway: gateway, Hub: hub}
}

// PayWithCash records a cash payment submitted by the seller. The ledger is
// untouched until an operator verifies the payment.
func (pc *PaymentController) PayWithCash(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sellerID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	var req models.CashPaymentRequest
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

	seller, errResp := pc.loadSeller(ctx, c, sellerID)
	if seller == nil {
		return errResp
	}

	if err := services.ValidatePaymentAmount(req.Amount, seller.CommissionTotalDue); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	payment := models.CommissionPayment{
		ID:        primitive.NewObjectID(),
		SellerID:  sellerID,
		Amount:    req.Amount,
		Method:    models.PaymentMethodCash,
		Status:    models.PaymentStatusPendingVerification,
		Reference: uuid.New().String(),
		Notes:     utils.SanitizeInput(req.Notes),
		CreatedAt: time.Now(),
	}

	if _, err := pc.DB.Collection("commission_payments").InsertOne(ctx, payment); err != nil {
		log.Printf("Failed to insert cash payment for seller %s: %v", sellerID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to record payment",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Cash payment recorded, awaiting verification",
		Data:    payment,
	})
}

// CreateCardPaymentIntent starts a card payment by asking the gateway for an
// intent. Nothing is persisted until the intent is confirmed.
func (pc *PaymentController) CreateCardPaymentIntent(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	sellerID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	var req models.CardIntentRequest
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

	seller, errResp := pc.loadSeller(ctx, c, sellerID)
	if seller == nil {
		return errResp
	}

	if err := services.ValidatePaymentAmount(req.Amount, seller.CommissionTotalDue); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	intent, err := pc.Gateway.CreateIntent(ctx, req.Amount, map[string]string{
		"sellerId":  sellerID.Hex(),
		"reference": uuid.New().String(),
		"purpose":   "commission_settlement",
	})
	if err != nil {
		log.Printf("Failed to create card intent for seller %s: %v", sellerID.Hex(), err)
		return c.JSON(http.StatusBadGateway, models.Response{
			Status:  http.StatusBadGateway,
			Message: "Card gateway is unavailable, please try again",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Card payment intent created",
		Data: models.CardIntentResponse{
			IntentID:     intent.ID,
			ClientSecret: intent.ClientSecret,
			Amount:       req.Amount,
		},
	})
}

// ConfirmCardPayment checks the intent status with the gateway and, if it
// succeeded, records the payment and settles the seller's balance.
func (pc *PaymentController) ConfirmCardPayment(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	sellerID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	var req models.CardConfirmRequest
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

	// Confirming the same intent twice must not settle twice. The unique index
	// on intentId rejects the duplicate insert below; this lookup just gives
	// the client a friendlier answer.
	count, err := pc.DB.Collection("commission_payments").CountDocuments(ctx, bson.M{"intentId": req.IntentID})
	if err == nil && count > 0 {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "This payment has already been recorded",
		})
	}

	intent, err := pc.Gateway.RetrieveIntent(ctx, req.IntentID)
	if err != nil {
		log.Printf("Failed to retrieve intent %s: %v", req.IntentID, err)
		return c.JSON(http.StatusBadGateway, models.Response{
			Status:  http.StatusBadGateway,
			Message: "Could not confirm payment with the card gateway",
		})
	}
	if intent.Status != models.IntentStatusSucceeded {
		return c.JSON(http.StatusPaymentRequired, models.Response{
			Status:  http.StatusPaymentRequired,
			Message: "Card payment has not succeeded (status: " + intent.Status + ")",
		})
	}

	payment := models.CommissionPayment{
		ID:        primitive.NewObjectID(),
		SellerID:  sellerID,
		Amount:    req.Amount,
		Method:    models.PaymentMethodCard,
		Status:    models.PaymentStatusPaid,
		Reference: uuid.New().String(),
		IntentID:  req.IntentID,
		CreatedAt: time.Now(),
	}

	if _, err := pc.DB.Collection("commission_payments").InsertOne(ctx, payment); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: "This payment has already been recorded",
			})
		}
		log.Printf("Failed to insert card payment for seller %s: %v", sellerID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to record payment",
		})
	}

	if err := pc.settlePayment(ctx, payment); err != nil {
		log.Printf("Failed to settle card payment %s: %v", payment.ID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Payment recorded but settlement failed, contact support",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Card payment confirmed and balance settled",
		Data:    payment,
	})
}

// VerifyCashPayment settles or rejects a pending cash payment. Operator only.
func (pc *PaymentController) VerifyCashPayment(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	operatorID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	paymentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid payment ID",
		})
	}

	var req models.VerifyCashRequest
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

	newStatus := models.PaymentStatusVerified
	if req.Outcome == "rejected" {
		newStatus = models.PaymentStatusRejected
	}

	now := time.Now()
	update := bson.M{"$set": bson.M{
		"status":     newStatus,
		"verifiedBy": operatorID,
		"verifiedAt": now,
	}}
	if req.Notes != "" {
		update["$set"].(bson.M)["notes"] = utils.SanitizeInput(req.Notes)
	}

	// Conditional on pending status so two operators cannot both settle the
	// same payment.
	var payment models.CommissionPayment
	err = pc.DB.Collection("commission_payments").FindOneAndUpdate(ctx,
		bson.M{"_id": paymentID, "status": models.PaymentStatusPendingVerification},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&payment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: "Payment not found or already processed",
			})
		}
		log.Printf("Failed to verify payment %s: %v", paymentID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to verify payment",
		})
	}

	if newStatus == models.PaymentStatusRejected {
		utils.NotifyUser(pc.DB, pc.Hub, payment.SellerID, "Cash payment rejected",
			fmt.Sprintf("Your cash payment of %.2f (ref %s) was rejected. Your balance is unchanged.", payment.Amount, payment.Reference),
			models.NotificationTypePaymentRejected, payment)
		return c.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: "Payment rejected",
			Data:    payment,
		})
	}

	if err := pc.settlePayment(ctx, payment); err != nil {
		log.Printf("Failed to settle cash payment %s: %v", payment.ID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Payment verified but settlement failed, contact support",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payment verified and balance settled",
		Data:    payment,
	})
}

// ListPendingCashPayments returns the operator verification queue, oldest first
func (pc *PaymentController) ListPendingCashPayments(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := pc.DB.Collection("commission_payments").Find(ctx,
		bson.M{"status": models.PaymentStatusPendingVerification},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		log.Printf("Failed to list pending payments: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve pending payments",
		})
	}
	defer cursor.Close(ctx)

	payments := []models.CommissionPayment{}
	if err := cursor.All(ctx, &payments); err != nil {
		log.Printf("Failed to decode pending payments: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve pending payments",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Pending payments retrieved successfully",
		Data:    payments,
	})
}

// GetPaymentHistory returns the calling seller's payments, newest first
func (pc *PaymentController) GetPaymentHistory(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sellerID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	cursor, err := pc.DB.Collection("commission_payments").Find(ctx,
		bson.M{"sellerId": sellerID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		log.Printf("Failed to list payments for seller %s: %v", sellerID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve payments",
		})
	}
	defer cursor.Close(ctx)

	payments := []models.CommissionPayment{}
	if err := cursor.All(ctx, &payments); err != nil {
		log.Printf("Failed to decode payments for seller %s: %v", sellerID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve payments",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payments retrieved successfully",
		Data:    payments,
	})
}

// GetPaymentStats aggregates the calling seller's payment history for the
// commission dashboard
func (pc *PaymentController) GetPaymentStats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sellerID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	seller, errResp := pc.loadSeller(ctx, c, sellerID)
	if seller == nil {
		return errResp
	}

	cursor, err := pc.DB.Collection("commission_payments").Find(ctx,
		bson.M{"sellerId": sellerID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		log.Printf("Failed to list payments for seller %s: %v", sellerID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve payment stats",
		})
	}
	defer cursor.Close(ctx)

	stats := models.PaymentStats{OutstandingDue: seller.CommissionTotalDue}
	for cursor.Next(ctx) {
		var p models.CommissionPayment
		if err := cursor.Decode(&p); err != nil {
			continue
		}
		stats.PaymentCount++
		switch p.Status {
		case models.PaymentStatusPaid, models.PaymentStatusVerified:
			stats.TotalPaid += p.Amount
			if stats.LastPaymentDate == nil {
				date := p.CreatedAt.Format(time.RFC3339)
				stats.LastPaymentDate = &date
			}
		case models.PaymentStatusPendingVerification:
			stats.PendingCash += p.Amount
		case models.PaymentStatusRejected:
			stats.RejectedCount++
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payment stats retrieved successfully",
		Data:    stats,
	})
}

// settlePayment applies a settled payment to the seller ledger: decrement the
// outstanding balance, mark covered invoices paid, and lift an automatic
// suspension once the balance reaches zero.
//
// The decrement is a conditional update with a balance guard, so two
// concurrent settlements cannot drive the balance negative. If the guard does
// not match (balance shrank since the payment was created), the balance is
// clamped to zero instead of rejecting money already taken.
func (pc *PaymentController) settlePayment(ctx context.Context, payment models.CommissionPayment) error {
	now := time.Now()

	res, err := pc.DB.Collection("sellers").UpdateOne(ctx,
		bson.M{"_id": payment.SellerID, "commissionTotalDue": bson.M{"$gte": payment.Amount}},
		bson.M{
			"$inc": bson.M{"commissionTotalDue": -payment.Amount},
			"$set": bson.M{"lastPaidDate": now, "updatedAt": now},
		})
	if err != nil {
		return fmt.Errorf("failed to decrement balance: %w", err)
	}
	if res.MatchedCount == 0 {
		_, err := pc.DB.Collection("sellers").UpdateOne(ctx,
			bson.M{"_id": payment.SellerID},
			bson.M{"$set": bson.M{"commissionTotalDue": 0, "lastPaidDate": now, "updatedAt": now}})
		if err != nil {
			return fmt.Errorf("failed to clamp balance: %w", err)
		}
		log.Printf("Settlement for seller %s exceeded remaining balance, clamped to zero", payment.SellerID.Hex())
	}

	if err := pc.markCoveredInvoices(ctx, payment); err != nil {
		log.Printf("Failed to mark invoices paid for seller %s: %v", payment.SellerID.Hex(), err)
	}

	var seller models.Seller
	if err := pc.DB.Collection("sellers").FindOne(ctx, bson.M{"_id": payment.SellerID}).Decode(&seller); err != nil {
		return fmt.Errorf("failed to reload seller: %w", err)
	}

	// Automatic suspensions lift as soon as the balance is settled. Manual
	// deactivations stay; only an operator reverses those.
	if seller.CommissionTotalDue <= 0 && seller.AccountStatus == models.SellerStatusSuspended {
		res, err := pc.DB.Collection("sellers").UpdateOne(ctx,
			bson.M{"_id": payment.SellerID, "accountStatus": models.SellerStatusSuspended},
			bson.M{
				"$set":   bson.M{"accountStatus": models.SellerStatusActive, "updatedAt": now},
				"$unset": bson.M{"deactivationReason": "", "deactivatedAt": ""},
			})
		if err != nil {
			log.Printf("Failed to reactivate seller %s: %v", payment.SellerID.Hex(), err)
		} else if res.ModifiedCount > 0 {
			log.Printf("Seller %s reactivated after settling commission balance", payment.SellerID.Hex())
			utils.NotifyUser(pc.DB, pc.Hub, payment.SellerID, "Store restored",
				"Your commission balance is settled and your store is active again.",
				models.NotificationTypeAccountRestored, nil)
		}
	}

	utils.NotifyUser(pc.DB, pc.Hub, payment.SellerID, "Payment received",
		fmt.Sprintf("Your %s payment of %.2f (ref %s) has been applied to your commission balance.",
			payment.Method, payment.Amount, payment.Reference),
		models.NotificationTypePaymentReceived, payment)

	return nil
}

// markCoveredInvoices walks the seller's open invoices oldest first and marks
// each one paid while the payment still covers its full amount. Partial
// coverage leaves the invoice open; the running balance on the seller document
// is the source of truth for what remains due.
func (pc *PaymentController) markCoveredInvoices(ctx context.Context, payment models.CommissionPayment) error {
	cursor, err := pc.DB.Collection("commission_invoices").Find(ctx,
		bson.M{
			"sellerId":  payment.SellerID,
			"status":    bson.M{"$in": bson.A{models.InvoiceStatusUnpaid, models.InvoiceStatusOverdue}},
			"amountDue": bson.M{"$gt": 0},
		},
		options.Find().SetSort(bson.D{{Key: "year", Value: 1}, {Key: "month", Value: 1}}))
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	remaining := payment.Amount
	now := time.Now()
	for cursor.Next(ctx) {
		var inv models.CommissionInvoice
		if err := cursor.Decode(&inv); err != nil {
			continue
		}
		if remaining < inv.AmountDue {
			break
		}

		res, err := pc.DB.Collection("commission_invoices").UpdateOne(ctx,
			bson.M{"_id": inv.ID, "status": bson.M{"$in": bson.A{models.InvoiceStatusUnpaid, models.InvoiceStatusOverdue}}},
			bson.M{"$set": bson.M{
				"status":        models.InvoiceStatusPaid,
				"paidAt":        now,
				"paymentMethod": payment.Method,
				"paymentRef":    payment.Reference,
				"updatedAt":     now,
			}})
		if err != nil {
			return err
		}
		if res.ModifiedCount > 0 {
			remaining -= inv.AmountDue
		}
	}
	return nil
}

func (pc *PaymentController) loadSeller(ctx context.Context, c echo.Context, sellerID primitive.ObjectID) (*models.Seller, error) {
	var seller models.Seller
	err := pc.DB.Collection("sellers").FindOne(ctx, bson.M{"_id": sellerID}).Decode(&seller)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Seller not found",
			})
		}
		log.Printf("Failed to load seller %s: %v", sellerID.Hex(), err)
		return nil, c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve seller",
		})
	}
	return &seller, nil
}
