package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/floracart/floracart_backend/controllers"
	"github.com/floracart/floracart_backend/middleware"
	"github.com/floracart/floracart_backend/models"
	"github.com/floracart/floracart_backend/services"
	"github.com/floracart/floracart_backend/websocket"
)

// RegisterAdminRoutes sets up the operator console: seller administration,
// accrual triggers, payment verification and reports
func RegisterAdminRoutes(e *echo.Echo, db *mongo.Database, rdb *redis.Client, hub *websocket.Hub,
	engine *services.AccrualEngine, monitor *services.OverdueMonitor, generator *services.ReportGenerator) {

	sellerController := controllers.NewSellerController(db, rdb, hub, monitor)
	commissionController := controllers.NewCommissionController(db, engine)
	paymentController := controllers.NewPaymentController(db, nil, hub)
	reportController := controllers.NewReportController(db, generator)

	admin := e.Group("/api/admin")
	admin.Use(middleware.JWTMiddleware())
	admin.Use(middleware.RequireUserType(models.UserTypeOperator))

	// Seller administration
	admin.GET("/sellers", sellerController.ListSellers)
	admin.GET("/sellers/:id", sellerController.GetSeller)
	admin.PUT("/sellers/:id/status", sellerController.SetSellerStatus)

	// Commission accrual
	admin.POST("/commission/accrue/:sellerId", commissionController.TriggerAccrual)
	admin.POST("/commission/period-close", commissionController.RunPeriodClose)

	// Cash payment verification
	admin.GET("/payments/pending", paymentController.ListPendingCashPayments)
	admin.PUT("/payments/:id/verify", paymentController.VerifyCashPayment)

	// Sweeps and reports
	admin.POST("/sweeps/overdue", sellerController.RunOverdueSweep)
	admin.GET("/dashboard", sellerController.GetDashboardStats)
	admin.POST("/reports", reportController.GenerateReport)
	admin.GET("/reports", reportController.GetReports)
	admin.GET("/reports/:year/:month", reportController.GetReport)
}
