// internal/app/store/requests/requeststore.go
package requeststore

import (
	"context"
	"time"

	"github.com/dalemusser/orgdesk/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("requests")}
}

// Create inserts a pending request addressed to req.OrganisationID. A zero
// ID or At is filled in.
func (s *Store) Create(ctx context.Context, req models.Request) (models.Request, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	if req.At.IsZero() {
		req.At = now
	}
	req.At = req.At.UTC().Truncate(time.Millisecond)
	req.Status = models.RequestPending
	req.CreatedAt = now

	if _, err := s.c.InsertOne(ctx, req); err != nil {
		return models.Request{}, err
	}
	return req, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Request, error) {
	var req models.Request
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&req); err != nil {
		return models.Request{}, err
	}
	return req, nil
}

// MarkAccepted sets the status of request id, addressed to orgID, to
// accepted. A missing request, or one addressed elsewhere, is
// mongo.ErrNoDocuments.
func (s *Store) MarkAccepted(ctx context.Context, id, orgID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "organisation_id": orgID},
		bson.M{"$set": bson.M{"status": models.RequestAccepted}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
