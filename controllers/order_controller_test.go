package controllers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/floracart/floracart_backend/models"
)

func TestTransitionAllowed(t *testing.T) {
	allowed := []struct{ from, to string }{
		{models.OrderStatusPending, models.OrderStatusProcessing},
		{models.OrderStatusPending, models.OrderStatusCancelled},
		{models.OrderStatusProcessing, models.OrderStatusShipped},
		{models.OrderStatusProcessing, models.OrderStatusCancelled},
		{models.OrderStatusShipped, models.OrderStatusDelivered},
	}
	for _, tr := range allowed {
		if !transitionAllowed(tr.from, tr.to) {
			t.Errorf("%s -> %s should be allowed", tr.from, tr.to)
		}
	}

	denied := []struct{ from, to string }{
		{models.OrderStatusPending, models.OrderStatusDelivered},
		{models.OrderStatusShipped, models.OrderStatusCancelled},
		{models.OrderStatusDelivered, models.OrderStatusPending},
		{models.OrderStatusDelivered, models.OrderStatusCancelled},
		{models.OrderStatusCancelled, models.OrderStatusPending},
		{models.OrderStatusPending, models.OrderStatusPending},
	}
	for _, tr := range denied {
		if transitionAllowed(tr.from, tr.to) {
			t.Errorf("%s -> %s should be denied", tr.from, tr.to)
		}
	}
}

func TestOrderContainsSeller(t *testing.T) {
	sellerA := primitive.NewObjectID()
	sellerB := primitive.NewObjectID()
	outsider := primitive.NewObjectID()

	order := models.Order{
		Items: []models.OrderItem{
			{SellerID: sellerA, Name: "Tulip Bundle", UnitPrice: 25, Quantity: 2},
			{SellerID: sellerB, Name: "Graduation Bear", UnitPrice: 40, Quantity: 1},
		},
	}

	if !orderContainsSeller(order, sellerA) || !orderContainsSeller(order, sellerB) {
		t.Error("sellers with items in the order not recognized")
	}
	if orderContainsSeller(order, outsider) {
		t.Error("seller without items in the order recognized")
	}
}
