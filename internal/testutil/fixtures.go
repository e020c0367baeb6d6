package testutil

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/orgdesk/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateOrganisation inserts an organisation of type typ at (long, lat).
// The contact email is derived from name.
func (f *Fixtures) CreateOrganisation(ctx context.Context, name, typ string, long, lat float64) models.Organisation {
	f.t.Helper()

	now := time.Now().UTC()
	org := models.Organisation{
		ID:            primitive.NewObjectID(),
		Name:          name,
		NameCI:        text.Fold(name),
		Type:          typ,
		Contact:       models.Contact{Email: strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com"},
		Location:      models.Location{Long: long, Lat: lat},
		Notifications: []models.Notification{},
		Requests:      []primitive.ObjectID{},
		PasswordHash:  "$2a$10$fixturefixturefixturefixturefixturefixturefixturefix",
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := f.db.Collection("organisations").InsertOne(ctx, org); err != nil {
		f.t.Fatalf("failed to create test organisation: %v", err)
	}
	return org
}

// AddNotification pushes a pending notification stamped at onto the
// organisation and returns it.
func (f *Fixtures) AddNotification(ctx context.Context, orgID primitive.ObjectID, at time.Time, from string) models.Notification {
	f.t.Helper()

	n := models.Notification{At: at.UTC().Truncate(time.Millisecond), From: from, Message: "assistance requested"}
	_, err := f.db.Collection("organisations").UpdateByID(ctx, orgID, map[string]any{
		"$push": map[string]any{"notifications": n},
	})
	if err != nil {
		f.t.Fatalf("failed to add test notification: %v", err)
	}
	return n
}

// CreateRequest inserts a pending request and links it to the organisation.
func (f *Fixtures) CreateRequest(ctx context.Context, orgID primitive.ObjectID, from, message string) models.Request {
	f.t.Helper()

	now := time.Now().UTC().Truncate(time.Millisecond)
	req := models.Request{
		ID:             primitive.NewObjectID(),
		OrganisationID: orgID,
		From:           from,
		Message:        message,
		At:             now,
		Status:         models.RequestPending,
		CreatedAt:      now,
	}
	if _, err := f.db.Collection("requests").InsertOne(ctx, req); err != nil {
		f.t.Fatalf("failed to create test request: %v", err)
	}
	_, err := f.db.Collection("organisations").UpdateByID(ctx, orgID, map[string]any{
		"$push": map[string]any{"requests": req.ID},
	})
	if err != nil {
		f.t.Fatalf("failed to link test request: %v", err)
	}
	return req
}

// CreateSession inserts a session grouping the given organisations.
func (f *Fixtures) CreateSession(ctx context.Context, orgIDs ...primitive.ObjectID) models.Session {
	f.t.Helper()

	sess := models.Session{
		ID:            primitive.NewObjectID(),
		Organisations: orgIDs,
		Notifications: []models.Notification{},
		CreatedAt:     time.Now().UTC(),
	}
	if sess.Organisations == nil {
		sess.Organisations = []primitive.ObjectID{}
	}
	if _, err := f.db.Collection("sessions").InsertOne(ctx, sess); err != nil {
		f.t.Fatalf("failed to create test session: %v", err)
	}
	return sess
}
