// internal/domain/models/organisation.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Organisation is the primary managed entity. NameCI is always stored so
// lists can be sorted case/diacritic-insensitively.
type Organisation struct {
	ID            primitive.ObjectID   `bson:"_id" json:"_id"`
	Name          string               `bson:"name" json:"name"`
	NameCI        string               `bson:"name_ci" json:"-"`
	Type          string               `bson:"type" json:"type"`
	Contact       Contact              `bson:"contact" json:"contact"`
	Location      Location             `bson:"location" json:"location"`
	Employees     int64                `bson:"employees" json:"employees"`
	Notifications []Notification       `bson:"notifications" json:"notifications"`
	Requests      []primitive.ObjectID `bson:"requests" json:"requests"`
	PasswordHash  string               `bson:"password_hash,omitempty" json:"-"`
	CreatedAt     time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time            `bson:"updated_at" json:"updatedAt"`
}

// Contact holds how an organisation is reached. Email is unique across
// organisations and always stored lower-case.
type Contact struct {
	Email string `bson:"email" json:"email"`
	Phone string `bson:"phone,omitempty" json:"phone,omitempty"`
}

// Location is a planar long/lat pair. Distances between locations are
// plain Euclidean distances on these two numbers.
type Location struct {
	Long float64 `bson:"long" json:"long"`
	Lat  float64 `bson:"lat" json:"lat"`
}

// Notification is embedded in an Organisation (and copied into a Session
// when accepted). At identifies the notification within its organisation.
type Notification struct {
	At        time.Time           `bson:"at" json:"at"`
	Status    bool                `bson:"status" json:"status"`
	From      string              `bson:"from,omitempty" json:"from,omitempty"`
	Message   string              `bson:"message,omitempty" json:"message,omitempty"`
	RequestID *primitive.ObjectID `bson:"request_id,omitempty" json:"requestId,omitempty"`
}

// OrganisationDistance is one row of the proximity query.
type OrganisationDistance struct {
	ID       primitive.ObjectID `bson:"_id" json:"_id"`
	Name     string             `bson:"name" json:"name"`
	Type     string             `bson:"type" json:"type"`
	Location Location           `bson:"location" json:"location"`
	Distance float64            `bson:"distance" json:"distance"`
}
