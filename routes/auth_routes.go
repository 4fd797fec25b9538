package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/floracart/floracart_backend/controllers"
)

// RegisterAuthRoutes sets up the public authentication routes
func RegisterAuthRoutes(e *echo.Echo, db *mongo.Database) {
	authController := controllers.NewAuthController(db)

	e.POST("/api/auth/signup", authController.Signup)
	e.POST("/api/auth/signup-seller", authController.SellerSignup)
	e.POST("/api/auth/login", authController.Login)
}
