// utils/notification_utils.go
package utils

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/floracart/floracart_backend/models"
	"github.com/floracart/floracart_backend/websocket"
)

// SaveNotification saves a notification to the database
func SaveNotification(db *mongo.Database, userID primitive.ObjectID, title, message, notifType string, data interface{}) error {
	notification := models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      notifType,
		Data:      data,
		IsRead:    false,
		CreatedAt: time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := db.Collection("notifications").InsertOne(ctx, notification)
	return err
}

// NotifyUser persists a notification and pushes it to the user's websocket
// connection if one is open. Delivery problems are logged, never propagated:
// the workflows that notify must not fail on notification plumbing.
func NotifyUser(db *mongo.Database, hub *websocket.Hub, userID primitive.ObjectID, title, message, notifType string, data interface{}) {
	if err := SaveNotification(db, userID, title, message, notifType, data); err != nil {
		log.Printf("Failed to save notification for user %s: %v", userID.Hex(), err)
	}

	if hub == nil {
		return
	}
	if err := hub.SendToUser(userID, websocket.Notification{
		Type:    notifType,
		Title:   title,
		Message: message,
		Data:    data,
	}); err != nil {
		log.Printf("Failed to push notification to user %s: %v", userID.Hex(), err)
	}
}
