package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SellerReportLine is one seller's row in a monthly report
type SellerReportLine struct {
	SellerID      primitive.ObjectID `json:"sellerId" bson:"sellerId"`
	StoreName     string             `json:"storeName" bson:"storeName"`
	Revenue       float64            `json:"revenue" bson:"revenue"`
	CommissionDue float64            `json:"commissionDue" bson:"commissionDue"`
	PaymentStatus string             `json:"paymentStatus" bson:"paymentStatus"` // invoice status for the period, or "no_invoice"
}

// MonthlyReport is a frozen platform-wide snapshot for one closed period.
// The monthly_reports collection carries a unique index on {month, year};
// a report is never recomputed after generation.
type MonthlyReport struct {
	ID                  primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Month               int                `json:"month" bson:"month"`
	Year                int                `json:"year" bson:"year"`
	OrdersByStatus      map[string]int     `json:"ordersByStatus" bson:"ordersByStatus"`
	TotalOrders         int                `json:"totalOrders" bson:"totalOrders"`
	DeliveredRevenue    float64            `json:"deliveredRevenue" bson:"deliveredRevenue"`
	CommissionCollected float64            `json:"commissionCollected" bson:"commissionCollected"`
	CommissionPending   float64            `json:"commissionPending" bson:"commissionPending"`
	ActiveSellers       int                `json:"activeSellers" bson:"activeSellers"`
	NewCustomers        int                `json:"newCustomers" bson:"newCustomers"`
	SellerBreakdown     []SellerReportLine `json:"sellerBreakdown" bson:"sellerBreakdown"`
	GeneratedAt         time.Time          `json:"generatedAt" bson:"generatedAt"`
}
