// internal/app/store/sessions/store.go
package sessions

import (
	"context"
	"time"

	"github.com/dalemusser/orgdesk/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store manages the sessions that group organisations working together.
type Store struct {
	c *mongo.Collection
}

// New creates a new sessions Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("sessions")}
}

// Create inserts a session grouping orgIDs, seeded with the given
// notifications.
func (s *Store) Create(ctx context.Context, orgIDs []primitive.ObjectID, notifications []models.Notification) (models.Session, error) {
	if orgIDs == nil {
		orgIDs = []primitive.ObjectID{}
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	sess := models.Session{
		ID:            primitive.NewObjectID(),
		Organisations: orgIDs,
		Notifications: notifications,
		CreatedAt:     time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, sess); err != nil {
		return models.Session{}, err
	}
	return sess, nil
}

// GetByID returns a session by ID, or mongo.ErrNoDocuments.
func (s *Store) GetByID(ctx context.Context, sessionID primitive.ObjectID) (models.Session, error) {
	var sess models.Session
	if err := s.c.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&sess); err != nil {
		return models.Session{}, err
	}
	return sess, nil
}

// GetByOrganisation returns the sessions an organisation belongs to, most
// recent first.
func (s *Store) GetByOrganisation(ctx context.Context, orgID primitive.ObjectID, limit int64) ([]models.Session, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, bson.M{"organisations": orgID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Session{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
