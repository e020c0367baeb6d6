// internal/domain/models/request.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Request statuses.
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
)

// Request is an officer's request addressed to an organisation. The
// organisation keeps the request's ID in its Requests list.
type Request struct {
	ID             primitive.ObjectID `bson:"_id" json:"_id"`
	OrganisationID primitive.ObjectID `bson:"organisation_id" json:"organisationId"`
	From           string             `bson:"from" json:"from"`
	Message        string             `bson:"message" json:"message"`
	At             time.Time          `bson:"at" json:"at"`
	Status         string             `bson:"status" json:"status"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
}
