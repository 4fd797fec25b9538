// services/overdue_monitor.go
package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/floracart/floracart_backend/models"
	"github.com/floracart/floracart_backend/utils"
	"github.com/floracart/floracart_backend/websocket"
)

const overdueSweepLockKey = "floracart:lock:overdue_sweep"

// OverdueMonitor is the daily sweep that marks unpaid invoices overdue and
// suspends sellers whose grace period has elapsed. All transitions are one-way;
// reactivation happens only through the payment recorder.
type OverdueMonitor struct {
	DB    *mongo.Database
	Redis *redis.Client
	Hub   *websocket.Hub
}

// NewOverdueMonitor creates a new overdue monitor
func NewOverdueMonitor(db *mongo.Database, rdb *redis.Client, hub *websocket.Hub) *OverdueMonitor {
	return &OverdueMonitor{DB: db, Redis: rdb, Hub: hub}
}

// SweepResult counts what one monitor run did
type SweepResult struct {
	MarkedOverdue int `json:"markedOverdue"`
	Suspended     int `json:"suspended"`
	Failed        int `json:"failed"`
}

// Run executes one sweep. Each invoice and seller is handled individually so
// one bad record cannot abort the batch. Re-running is a no-op for entities
// already transitioned.
func (m *OverdueMonitor) Run(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	if !acquireSweepLock(ctx, m.Redis, overdueSweepLockKey, 10*time.Minute) {
		log.Println("Overdue sweep: another instance holds the lock, skipping")
		return result, nil
	}
	defer releaseSweepLock(ctx, m.Redis, overdueSweepLockKey)

	now := time.Now()

	// Pass 1: unpaid invoices past their due date become overdue. Zero-amount
	// invoices only record the period and can never become overdue.
	cursor, err := m.DB.Collection("commission_invoices").Find(ctx, bson.M{
		"status":    models.InvoiceStatusUnpaid,
		"amountDue": bson.M{"$gt": 0},
		"dueDate":   bson.M{"$lt": now},
	})
	if err != nil {
		return result, fmt.Errorf("failed to list unpaid invoices: %w", err)
	}

	var toCheck []models.CommissionInvoice
	for cursor.Next(ctx) {
		var inv models.CommissionInvoice
		if err := cursor.Decode(&inv); err != nil {
			log.Printf("Overdue sweep: failed to decode invoice: %v", err)
			result.Failed++
			continue
		}

		res, err := m.DB.Collection("commission_invoices").UpdateOne(ctx,
			bson.M{"_id": inv.ID, "status": models.InvoiceStatusUnpaid},
			bson.M{"$set": bson.M{"status": models.InvoiceStatusOverdue, "updatedAt": now}})
		if err != nil {
			log.Printf("Overdue sweep: failed to mark invoice %s overdue: %v", inv.ID.Hex(), err)
			result.Failed++
			continue
		}
		if res.ModifiedCount > 0 {
			result.MarkedOverdue++
			utils.NotifyUser(m.DB, m.Hub, inv.SellerID, "Commission invoice overdue",
				fmt.Sprintf("Your commission invoice for %d/%d (%.2f) is overdue. Please settle it to keep your store active.",
					inv.Month, inv.Year, inv.AmountDue),
				models.NotificationTypeInvoiceOverdue, inv)
		}
		inv.Status = models.InvoiceStatusOverdue
		toCheck = append(toCheck, inv)
	}
	cursor.Close(ctx)

	// Include invoices marked overdue on earlier runs whose grace period may
	// have elapsed since.
	prevCursor, err := m.DB.Collection("commission_invoices").Find(ctx, bson.M{
		"status":  models.InvoiceStatusOverdue,
		"dueDate": bson.M{"$lt": now.AddDate(0, 0, -GracePeriodDays)},
	})
	if err != nil {
		return result, fmt.Errorf("failed to list overdue invoices: %w", err)
	}
	for prevCursor.Next(ctx) {
		var inv models.CommissionInvoice
		if err := prevCursor.Decode(&inv); err != nil {
			log.Printf("Overdue sweep: failed to decode overdue invoice: %v", err)
			result.Failed++
			continue
		}
		toCheck = append(toCheck, inv)
	}
	prevCursor.Close(ctx)

	// Pass 2: suspend active sellers whose grace window has fully passed. The
	// conditional update on accountStatus makes the transition one-way and the
	// sweep idempotent; already-suspended sellers match nothing.
	suspendedSellers := make(map[string]bool)
	for _, inv := range toCheck {
		if !GraceElapsed(inv.DueDate, now) {
			continue
		}
		if suspendedSellers[inv.SellerID.Hex()] {
			continue
		}

		reason := fmt.Sprintf("overdue commission invoice %d/%d (%.2f due %s)",
			inv.Month, inv.Year, inv.AmountDue, inv.DueDate.Format("2006-01-02"))

		res, err := m.DB.Collection("sellers").UpdateOne(ctx,
			bson.M{"_id": inv.SellerID, "accountStatus": models.SellerStatusActive},
			bson.M{"$set": bson.M{
				"accountStatus":      models.SellerStatusSuspended,
				"deactivationReason": reason,
				"deactivatedAt":      now,
				"updatedAt":          now,
			}})
		if err != nil {
			log.Printf("Overdue sweep: failed to suspend seller %s: %v", inv.SellerID.Hex(), err)
			result.Failed++
			continue
		}
		if res.ModifiedCount == 0 {
			continue
		}

		suspendedSellers[inv.SellerID.Hex()] = true
		result.Suspended++
		log.Printf("Overdue sweep: suspended seller %s (%s)", inv.SellerID.Hex(), reason)

		utils.NotifyUser(m.DB, m.Hub, inv.SellerID, "Store suspended",
			"Your store has been suspended for non-payment of commission. Settle your outstanding balance to restore it.",
			models.NotificationTypeAccountSuspended, inv)
		m.emailSuspendedSeller(ctx, inv)
	}

	log.Printf("Overdue sweep complete: %d marked overdue, %d suspended, %d failed",
		result.MarkedOverdue, result.Suspended, result.Failed)
	return result, nil
}

// emailSuspendedSeller sends the suspension notice by email. Failures are
// logged only; the sweep outcome does not depend on SMTP.
func (m *OverdueMonitor) emailSuspendedSeller(ctx context.Context, inv models.CommissionInvoice) {
	var seller models.Seller
	err := m.DB.Collection("sellers").FindOne(ctx, bson.M{"_id": inv.SellerID}).Decode(&seller)
	if err != nil {
		log.Printf("Overdue sweep: failed to load seller %s for email: %v", inv.SellerID.Hex(), err)
		return
	}

	subject := "Your FloraCart store has been suspended"
	body := fmt.Sprintf("Dear %s,\n\nYour store %q has been suspended because the commission invoice for %d/%d (%.2f) "+
		"was not paid within the grace period.\n\nSettle your outstanding commission balance to restore your store.\n\nFloraCart",
		seller.OwnerName, seller.StoreName, inv.Month, inv.Year, inv.AmountDue)

	if err := utils.SendEmail(seller.Email, subject, body); err != nil {
		log.Printf("Overdue sweep: failed to email seller %s: %v", seller.Email, err)
	}
}
