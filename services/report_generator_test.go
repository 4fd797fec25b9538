package services

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/floracart/floracart_backend/models"
)

func TestBuildSellerBreakdown(t *testing.T) {
	sellerA := primitive.NewObjectID()
	sellerB := primitive.NewObjectID()
	sellerC := primitive.NewObjectID()

	revenues := map[primitive.ObjectID]float64{
		sellerA: 12000,
		sellerB: 30000,
	}
	invoices := map[primitive.ObjectID]models.CommissionInvoice{
		sellerB: {SellerID: sellerB, AmountDue: 3000, Status: models.InvoiceStatusUnpaid},
		sellerC: {SellerID: sellerC, AmountDue: 150, Status: models.InvoiceStatusOverdue},
	}
	names := map[primitive.ObjectID]string{
		sellerA: "Rose & Fern",
		sellerB: "Petal Works",
		sellerC: "Gift Garden",
	}

	lines := BuildSellerBreakdown(revenues, invoices, names)

	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}

	// Sorted by revenue descending
	if lines[0].SellerID != sellerB {
		t.Errorf("first line is %s, want the highest-revenue seller", lines[0].StoreName)
	}
	if lines[0].CommissionDue != 3000 || lines[0].PaymentStatus != models.InvoiceStatusUnpaid {
		t.Errorf("invoice state not merged: due=%.2f status=%s", lines[0].CommissionDue, lines[0].PaymentStatus)
	}

	if lines[1].SellerID != sellerA {
		t.Errorf("second line is %s, want Rose & Fern", lines[1].StoreName)
	}
	// Revenue but no invoice for the period
	if lines[1].PaymentStatus != "no_invoice" {
		t.Errorf("seller without invoice: status = %s, want no_invoice", lines[1].PaymentStatus)
	}

	// Invoice but no revenue this period still gets a line
	if lines[2].SellerID != sellerC {
		t.Errorf("third line is %s, want Gift Garden", lines[2].StoreName)
	}
	if lines[2].Revenue != 0 || lines[2].PaymentStatus != models.InvoiceStatusOverdue {
		t.Errorf("invoice-only seller: revenue=%.2f status=%s", lines[2].Revenue, lines[2].PaymentStatus)
	}
}

func TestBuildSellerBreakdownEmpty(t *testing.T) {
	lines := BuildSellerBreakdown(nil, nil, nil)
	if len(lines) != 0 {
		t.Errorf("got %d lines for empty input, want 0", len(lines))
	}
}

func TestBuildSellerBreakdownTieBreak(t *testing.T) {
	// Equal revenue sorts by seller id so the order is stable across runs
	sellerA := primitive.NewObjectID()
	sellerB := primitive.NewObjectID()

	revenues := map[primitive.ObjectID]float64{sellerA: 1000, sellerB: 1000}

	first := BuildSellerBreakdown(revenues, nil, nil)
	for i := 0; i < 5; i++ {
		again := BuildSellerBreakdown(revenues, nil, nil)
		if again[0].SellerID != first[0].SellerID || again[1].SellerID != first[1].SellerID {
			t.Fatal("breakdown order is not deterministic")
		}
	}
	if first[0].SellerID.Hex() > first[1].SellerID.Hex() {
		t.Error("tie not broken by ascending seller id")
	}
}
