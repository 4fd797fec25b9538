// services/accrual.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/floracart/floracart_backend/models"
	"github.com/floracart/floracart_backend/utils"
	"github.com/floracart/floracart_backend/websocket"
)

// Accrual errors matched by handlers
var (
	ErrSellerNotFound = errors.New("seller not found")
	ErrInvoiceExists  = errors.New("invoice already exists for this seller and period")
)

// AccrualEngine computes per-seller, per-period commission and writes the
// resulting invoice and seller ledger updates.
type AccrualEngine struct {
	DB  *mongo.Database
	Hub *websocket.Hub
}

// NewAccrualEngine creates a new accrual engine
func NewAccrualEngine(db *mongo.Database, hub *websocket.Hub) *AccrualEngine {
	return &AccrualEngine{DB: db, Hub: hub}
}

// AccrueSellerPeriod runs commission accrual for one seller and one settlement
// period.
//
// The invoice insert happens before any seller mutation: the unique index on
// {sellerId, month, year} rejects a second run for the same period, so the
// seller's lifetime earnings and due balance are applied at most once even
// under concurrent triggers.
func (e *AccrualEngine) AccrueSellerPeriod(ctx context.Context, sellerID primitive.ObjectID, month, year int) (*models.AccrualResult, error) {
	var seller models.Seller
	err := e.DB.Collection("sellers").FindOne(ctx, bson.M{"_id": sellerID}).Decode(&seller)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrSellerNotFound
		}
		return nil, fmt.Errorf("failed to load seller: %w", err)
	}

	periodRevenue, err := e.sellerPeriodRevenue(ctx, sellerID, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to sum period revenue: %w", err)
	}

	applies, commissionAmount := CommissionForPeriod(
		seller.LifetimeEarnings, periodRevenue, seller.CommissionThreshold, seller.CommissionRate)

	now := time.Now()
	dueDate := NextDueDate(month, year)

	invoice := models.CommissionInvoice{
		ID:                primitive.NewObjectID(),
		SellerID:          sellerID,
		Month:             month,
		Year:              year,
		PeriodRevenue:     periodRevenue,
		CommissionRate:    seller.CommissionRate,
		CommissionApplies: applies,
		AmountDue:         commissionAmount,
		DueDate:           dueDate,
		Status:            models.InvoiceStatusUnpaid,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if _, err := e.DB.Collection("commission_invoices").InsertOne(ctx, invoice); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrInvoiceExists
		}
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	update := bson.M{
		"$inc": bson.M{
			"lifetimeEarnings":   periodRevenue,
			"commissionTotalDue": commissionAmount,
		},
		"$set": bson.M{
			"earningsThisPeriod": periodRevenue,
			"updatedAt":          now,
		},
	}
	if applies {
		update["$set"].(bson.M)["nextDueDate"] = dueDate
	}

	if _, err := e.DB.Collection("sellers").UpdateOne(ctx, bson.M{"_id": sellerID}, update); err != nil {
		return nil, fmt.Errorf("failed to update seller ledger: %w", err)
	}

	if commissionAmount > 0 {
		utils.NotifyUser(e.DB, e.Hub, sellerID, "Commission invoice issued",
			fmt.Sprintf("Your commission for %d/%d is %.2f, due by %s.", month, year, commissionAmount, dueDate.Format("2006-01-02")),
			models.NotificationTypeInvoiceCreated, invoice)
	}

	log.Printf("Accrued seller %s period %d/%d: revenue=%.2f commission=%.2f (applies=%t)",
		sellerID.Hex(), month, year, periodRevenue, commissionAmount, applies)

	return &models.AccrualResult{
		SellerID:          sellerID,
		Month:             month,
		Year:              year,
		PeriodRevenue:     periodRevenue,
		LifetimeEarnings:  seller.LifetimeEarnings + periodRevenue,
		CommissionApplies: applies,
		CommissionAmount:  commissionAmount,
		InvoiceID:         invoice.ID,
	}, nil
}

// RunPeriodClose runs accrual for every seller for the given period. One
// seller's failure does not abort the rest; sellers that already have an
// invoice for the period are counted as skipped.
func (e *AccrualEngine) RunPeriodClose(ctx context.Context, month, year int) (processed, skipped, failed int) {
	cursor, err := e.DB.Collection("sellers").Find(ctx, bson.M{})
	if err != nil {
		log.Printf("Period close %d/%d: failed to list sellers: %v", month, year, err)
		return 0, 0, 0
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var seller models.Seller
		if err := cursor.Decode(&seller); err != nil {
			log.Printf("Period close %d/%d: failed to decode seller: %v", month, year, err)
			failed++
			continue
		}

		_, err := e.AccrueSellerPeriod(ctx, seller.ID, month, year)
		switch {
		case err == nil:
			processed++
		case errors.Is(err, ErrInvoiceExists):
			skipped++
		default:
			log.Printf("Period close %d/%d: accrual failed for seller %s: %v", month, year, seller.ID.Hex(), err)
			failed++
		}
	}

	log.Printf("Period close %d/%d complete: %d processed, %d skipped, %d failed", month, year, processed, skipped, failed)
	return processed, skipped, failed
}

// sellerPeriodRevenue sums unitPrice*quantity over line items belonging to the
// seller across orders delivered inside the period.
func (e *AccrualEngine) sellerPeriodRevenue(ctx context.Context, sellerID primitive.ObjectID, month, year int) (float64, error) {
	start, end := PeriodBounds(month, year)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"status":         models.OrderStatusDelivered,
			"deliveredAt":    bson.M{"$gte": start, "$lt": end},
			"items.sellerId": sellerID,
		}}},
		{{Key: "$unwind", Value: "$items"}},
		{{Key: "$match", Value: bson.M{"items.sellerId": sellerID}}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"revenue": bson.M{"$sum": bson.M{"$multiply": bson.A{"$items.unitPrice", "$items.quantity"}}},
		}}},
	}

	cursor, err := e.DB.Collection("orders").Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Revenue float64 `bson:"revenue"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Revenue, nil
}
