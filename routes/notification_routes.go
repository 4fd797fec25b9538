package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/floracart/floracart_backend/controllers"
	"github.com/floracart/floracart_backend/middleware"
	"github.com/floracart/floracart_backend/websocket"
)

// RegisterNotificationRoutes sets up the notification feed and the websocket
// subscription endpoint
func RegisterNotificationRoutes(e *echo.Echo, db *mongo.Database, hub *websocket.Hub) {
	notificationController := controllers.NewNotificationController(db, hub)

	notifications := e.Group("/api/notifications")
	notifications.Use(middleware.JWTMiddleware())

	notifications.GET("", notificationController.GetNotifications)
	notifications.PUT("/:id/read", notificationController.MarkRead)
	notifications.PUT("/read-all", notificationController.MarkAllRead)
	notifications.GET("/subscribe", notificationController.Subscribe)
}
