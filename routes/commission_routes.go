package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/floracart/floracart_backend/controllers"
	"github.com/floracart/floracart_backend/middleware"
	"github.com/floracart/floracart_backend/models"
	"github.com/floracart/floracart_backend/services"
	"github.com/floracart/floracart_backend/websocket"
)

// RegisterCommissionRoutes sets up the seller-facing commission and payment
// routes
func RegisterCommissionRoutes(e *echo.Echo, db *mongo.Database, hub *websocket.Hub,
	engine *services.AccrualEngine, gateway *services.CardGatewayService) {

	commissionController := controllers.NewCommissionController(db, engine)
	paymentController := controllers.NewPaymentController(db, gateway, hub)

	seller := e.Group("/api/seller/commission")
	seller.Use(middleware.JWTMiddleware())
	seller.Use(middleware.RequireUserType(models.UserTypeSeller))

	seller.GET("/summary", commissionController.GetCommissionSummary)
	seller.GET("/invoices", commissionController.GetInvoices)
	seller.GET("/invoices/:id/qr", commissionController.GetInvoiceQR)

	seller.POST("/pay/cash", paymentController.PayWithCash)
	seller.POST("/pay/card/intent", paymentController.CreateCardPaymentIntent)
	seller.POST("/pay/card/confirm", paymentController.ConfirmCardPayment)
	seller.GET("/payments", paymentController.GetPaymentHistory)
	seller.GET("/payments/stats", paymentController.GetPaymentStats)
}
