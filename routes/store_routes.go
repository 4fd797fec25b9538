package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/floracart/floracart_backend/controllers"
	"github.com/floracart/floracart_backend/middleware"
	"github.com/floracart/floracart_backend/models"
	"github.com/floracart/floracart_backend/repositories"
	"github.com/floracart/floracart_backend/websocket"
)

// RegisterStoreRoutes sets up the storefront: catalog, orders and reviews
func RegisterStoreRoutes(e *echo.Echo, db *mongo.Database, hub *websocket.Hub) {
	productController := controllers.NewProductController(db)
	orderController := controllers.NewOrderController(db, hub)
	feedbackController := controllers.NewFeedbackController(db)
	profileController := controllers.NewProfileController(repositories.NewSellerRepository(db))

	// Public catalog
	e.GET("/api/products", productController.ListProducts)
	e.GET("/api/products/:id", productController.GetProduct)
	e.GET("/api/products/:id/feedback", feedbackController.GetProductFeedback)

	// Customer routes
	customer := e.Group("/api/customer")
	customer.Use(middleware.JWTMiddleware())
	customer.Use(middleware.RequireUserType(models.UserTypeCustomer))
	customer.POST("/orders", orderController.PlaceOrder)
	customer.GET("/orders", orderController.GetMyOrders)
	customer.POST("/feedback", feedbackController.SubmitFeedback)

	// Seller catalog management
	seller := e.Group("/api/seller")
	seller.Use(middleware.JWTMiddleware())
	seller.Use(middleware.RequireUserType(models.UserTypeSeller))
	seller.POST("/products", productController.CreateProduct)
	seller.GET("/products", productController.GetSellerProducts)
	seller.PUT("/products/:id", productController.UpdateProduct)
	seller.DELETE("/products/:id", productController.DeleteProduct)
	seller.GET("/orders", orderController.GetSellerOrders)
	seller.GET("/profile", profileController.GetProfile)
	seller.PUT("/profile", profileController.UpdateProfile)
	seller.POST("/logo", profileController.UploadLogo)

	// Status updates come from sellers fulfilling orders or from operators
	status := e.Group("/api/orders")
	status.Use(middleware.JWTMiddleware())
	status.Use(middleware.RequireUserType(models.UserTypeSeller, models.UserTypeOperator))
	status.PUT("/:id/status", orderController.UpdateOrderStatus)
}
