package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/dalemusser/orgdesk/internal/app/system/indexes"
	"github.com/dalemusser/orgdesk/internal/app/system/validators"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// EnvMongoURI overrides the server tests connect to.
const EnvMongoURI = "ORGDESK_TEST_MONGO_URI"

const defaultMongoURI = "mongodb://localhost:27017"

// TestContext returns a context with a generous deadline for test setup
// and assertions.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// SetupBareDB returns a fresh, uniquely named database that is dropped when
// the test ends. The test is skipped if no MongoDB server is reachable.
func SetupBareDB(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv(EnvMongoURI)
	if uri == "" {
		uri = defaultMongoURI
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(2*time.Second))
	if err != nil {
		t.Skipf("MongoDB not available (%s): %v", uri, err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		t.Skipf("MongoDB not available (%s): %v", uri, err)
	}

	db := client.Database("orgdesk_test_" + primitive.NewObjectID().Hex())

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	return db
}

// SetupTestDB is SetupBareDB plus the production validators and indexes,
// so unique constraints behave as they do in a deployed database.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()
	db := SetupBareDB(t)

	ctx, cancel := TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("validators.EnsureAll failed: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("indexes.EnsureAll failed: %v", err)
	}
	return db
}
