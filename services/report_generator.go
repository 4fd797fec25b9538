// services/report_generator.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/floracart/floracart_backend/models"
	"github.com/floracart/floracart_backend/utils"
)

const reportSweepLockKey = "floracart:lock:monthly_report"

// ErrReportExists is returned when a report for the period was already generated
var ErrReportExists = errors.New("report already exists for this period")

// ReportGenerator produces the immutable platform-wide monthly snapshot. It
// only reads order, seller, and invoice state; it never mutates them.
type ReportGenerator struct {
	DB    *mongo.Database
	Redis *redis.Client
}

// NewReportGenerator creates a new report generator
func NewReportGenerator(db *mongo.Database, rdb *redis.Client) *ReportGenerator {
	return &ReportGenerator{DB: db, Redis: rdb}
}

// GenerateMonthlyReport assembles and persists the report for one closed
// period. The unique index on {month, year} makes generation idempotent: a
// second call returns ErrReportExists and the stored snapshot stays frozen.
func (g *ReportGenerator) GenerateMonthlyReport(ctx context.Context, month, year int) (*models.MonthlyReport, error) {
	start, end := PeriodBounds(month, year)

	ordersByStatus, totalOrders, err := g.orderCounts(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	revenueBySeller, deliveredRevenue, err := g.deliveredRevenue(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to sum delivered revenue: %w", err)
	}

	invoicesBySeller, collected, pending, err := g.invoiceTotals(ctx, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to sum invoices: %w", err)
	}

	activeSellers, err := g.DB.Collection("sellers").CountDocuments(ctx,
		bson.M{"accountStatus": models.SellerStatusActive})
	if err != nil {
		return nil, fmt.Errorf("failed to count active sellers: %w", err)
	}

	newCustomers, err := g.DB.Collection("users").CountDocuments(ctx, bson.M{
		"userType":  models.UserTypeCustomer,
		"createdAt": bson.M{"$gte": start, "$lt": end},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count new customers: %w", err)
	}

	names, err := g.sellerNames(ctx, revenueBySeller, invoicesBySeller)
	if err != nil {
		return nil, fmt.Errorf("failed to load seller names: %w", err)
	}

	report := models.MonthlyReport{
		ID:                  primitive.NewObjectID(),
		Month:               month,
		Year:                year,
		OrdersByStatus:      ordersByStatus,
		TotalOrders:         totalOrders,
		DeliveredRevenue:    deliveredRevenue,
		CommissionCollected: collected,
		CommissionPending:   pending,
		ActiveSellers:       int(activeSellers),
		NewCustomers:        int(newCustomers),
		SellerBreakdown:     BuildSellerBreakdown(revenueBySeller, invoicesBySeller, names),
		GeneratedAt:         time.Now(),
	}

	if _, err := g.DB.Collection("monthly_reports").InsertOne(ctx, report); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrReportExists
		}
		return nil, fmt.Errorf("failed to store report: %w", err)
	}

	log.Printf("Monthly report %d/%d generated: %d orders, revenue=%.2f, commission collected=%.2f pending=%.2f",
		month, year, totalOrders, deliveredRevenue, collected, pending)

	g.emailReport(report)

	return &report, nil
}

// RunPeriodClose generates the report for the period that just closed, guarded
// by the sweep lock. An already-existing report is treated as success.
func (g *ReportGenerator) RunPeriodClose(ctx context.Context, now time.Time) {
	if !acquireSweepLock(ctx, g.Redis, reportSweepLockKey, 10*time.Minute) {
		log.Println("Report sweep: another instance holds the lock, skipping")
		return
	}
	defer releaseSweepLock(ctx, g.Redis, reportSweepLockKey)

	month, year := PreviousPeriod(now)
	_, err := g.GenerateMonthlyReport(ctx, month, year)
	if err != nil && !errors.Is(err, ErrReportExists) {
		log.Printf("Report sweep: failed to generate %d/%d: %v", month, year, err)
	}
}

// BuildSellerBreakdown merges per-seller revenue and invoice state into report
// lines, largest revenue first. Sellers that only appear on one side still get
// a line.
func BuildSellerBreakdown(revenues map[primitive.ObjectID]float64,
	invoices map[primitive.ObjectID]models.CommissionInvoice,
	names map[primitive.ObjectID]string) []models.SellerReportLine {

	lines := make([]models.SellerReportLine, 0, len(revenues))
	seen := make(map[primitive.ObjectID]bool)

	appendLine := func(sellerID primitive.ObjectID) {
		if seen[sellerID] {
			return
		}
		seen[sellerID] = true

		line := models.SellerReportLine{
			SellerID:      sellerID,
			StoreName:     names[sellerID],
			Revenue:       revenues[sellerID],
			PaymentStatus: "no_invoice",
		}
		if inv, ok := invoices[sellerID]; ok {
			line.CommissionDue = inv.AmountDue
			line.PaymentStatus = inv.Status
		}
		lines = append(lines, line)
	}

	for sellerID := range revenues {
		appendLine(sellerID)
	}
	for sellerID := range invoices {
		appendLine(sellerID)
	}

	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Revenue != lines[j].Revenue {
			return lines[i].Revenue > lines[j].Revenue
		}
		return lines[i].SellerID.Hex() < lines[j].SellerID.Hex()
	})

	return lines
}

func (g *ReportGenerator) orderCounts(ctx context.Context, start, end time.Time) (map[string]int, int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"createdAt": bson.M{"$gte": start, "$lt": end}}}},
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}

	cursor, err := g.DB.Collection("orders").Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	byStatus := make(map[string]int)
	total := 0
	for cursor.Next(ctx) {
		var row struct {
			Status string `bson:"_id"`
			Count  int    `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, 0, err
		}
		byStatus[row.Status] = row.Count
		total += row.Count
	}
	return byStatus, total, nil
}

func (g *ReportGenerator) deliveredRevenue(ctx context.Context, start, end time.Time) (map[primitive.ObjectID]float64, float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"status":      models.OrderStatusDelivered,
			"deliveredAt": bson.M{"$gte": start, "$lt": end},
		}}},
		{{Key: "$unwind", Value: "$items"}},
		{{Key: "$group", Value: bson.M{
			"_id":     "$items.sellerId",
			"revenue": bson.M{"$sum": bson.M{"$multiply": bson.A{"$items.unitPrice", "$items.quantity"}}},
		}}},
	}

	cursor, err := g.DB.Collection("orders").Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	bySeller := make(map[primitive.ObjectID]float64)
	var total float64
	for cursor.Next(ctx) {
		var row struct {
			SellerID primitive.ObjectID `bson:"_id"`
			Revenue  float64            `bson:"revenue"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, 0, err
		}
		bySeller[row.SellerID] = row.Revenue
		total += row.Revenue
	}
	return bySeller, total, nil
}

func (g *ReportGenerator) invoiceTotals(ctx context.Context, month, year int) (map[primitive.ObjectID]models.CommissionInvoice, float64, float64, error) {
	cursor, err := g.DB.Collection("commission_invoices").Find(ctx, bson.M{"month": month, "year": year})
	if err != nil {
		return nil, 0, 0, err
	}
	defer cursor.Close(ctx)

	bySeller := make(map[primitive.ObjectID]models.CommissionInvoice)
	var collected, pending float64
	for cursor.Next(ctx) {
		var inv models.CommissionInvoice
		if err := cursor.Decode(&inv); err != nil {
			return nil, 0, 0, err
		}
		bySeller[inv.SellerID] = inv
		if inv.Status == models.InvoiceStatusPaid {
			collected += inv.AmountDue
		} else {
			pending += inv.AmountDue
		}
	}
	return bySeller, collected, pending, nil
}

func (g *ReportGenerator) sellerNames(ctx context.Context,
	revenues map[primitive.ObjectID]float64,
	invoices map[primitive.ObjectID]models.CommissionInvoice) (map[primitive.ObjectID]string, error) {

	ids := make([]primitive.ObjectID, 0, len(revenues)+len(invoices))
	for id := range revenues {
		ids = append(ids, id)
	}
	for id := range invoices {
		if _, ok := revenues[id]; !ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return map[primitive.ObjectID]string{}, nil
	}

	cursor, err := g.DB.Collection("sellers").Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	names := make(map[primitive.ObjectID]string)
	for cursor.Next(ctx) {
		var seller models.Seller
		if err := cursor.Decode(&seller); err != nil {
			return nil, err
		}
		names[seller.ID] = seller.StoreName
	}
	return names, nil
}

// emailReport sends the report summary to the platform operator address, if
// configured. SMTP failures are logged only.
func (g *ReportGenerator) emailReport(report models.MonthlyReport) {
	operatorEmail := utils.OperatorEmail()
	if operatorEmail == "" {
		return
	}

	subject := fmt.Sprintf("FloraCart monthly report %d/%d", report.Month, report.Year)
	body := fmt.Sprintf("Monthly report for %d/%d\n\n"+
		"Orders: %d\nDelivered revenue: %.2f\nCommission collected: %.2f\nCommission pending: %.2f\n"+
		"Active sellers: %d\nNew customers: %d\n",
		report.Month, report.Year, report.TotalOrders, report.DeliveredRevenue,
		report.CommissionCollected, report.CommissionPending, report.ActiveSellers, report.NewCustomers)

	if err := utils.SendEmail(operatorEmail, subject, body); err != nil {
		log.Printf("Failed to send report email: %v", err)
	}
}
