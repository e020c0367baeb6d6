// internal/domain/models/session.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session groups organisations and the notifications that brought them
// together. Accepting an officer request produces a new Session.
type Session struct {
	ID            primitive.ObjectID   `bson:"_id" json:"_id"`
	Organisations []primitive.ObjectID `bson:"organisations" json:"organisations"`
	Notifications []Notification       `bson:"notifications" json:"notifications"`
	CreatedAt     time.Time            `bson:"created_at" json:"createdAt"`
}
