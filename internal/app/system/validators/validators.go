// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/orgdesk/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates the collections (if missing) and attaches JSON-Schema
// validators so writes that break the document shape are rejected by the
// server. Deployments without collMod/validators are logged and skipped.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("organisations", organisationsSchema())
	ensure("sessions", sessionsSchema())
	ensure("requests", requestsSchema())

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// IsValidationError reports whether err is the server rejecting a write
// because it fails a collection validator (DocumentValidationFailure).
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 121 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 121 {
		return true
	}
	return strings.Contains(err.Error(), "Document failed validation")
}

/* ---------------------- collection helpers ---------------------- */

func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	names, listErr := db.ListCollectionNames(ctx, bson.M{"name": name})
	if listErr == nil && len(names) > 0 {
		return false, nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func commandErrMatches(err error, code int32, phrases ...string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == code {
		return true
	}
	s := strings.ToLower(err.Error())
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func isNamespaceExistsErr(err error) bool {
	return commandErrMatches(err, 48, "already exists", "namespace exists")
}

func isNoSuchCommand(err error) bool {
	return commandErrMatches(err, 59, "no such command")
}

func isNotImplemented(err error) bool {
	return commandErrMatches(err, 115, "not implemented", "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func notificationSchema() bson.M {
	return bson.M{
		"bsonType": "object",
		"required": bson.A{"at", "status"},
		"properties": bson.M{
			"at":         bson.M{"bsonType": "date"},
			"status":     bson.M{"bsonType": "bool"},
			"from":       bson.M{"bsonType": "string"},
			"message":    bson.M{"bsonType": "string"},
			"request_id": bson.M{"bsonType": "objectId"},
		},
	}
}

func organisationsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "name_ci", "contact", "created_at"},
			"properties": bson.M{
				"name":    nonBlank,
				"name_ci": nonBlank,
				"type":    bson.M{"bsonType": "string"},
				"contact": bson.M{
					"bsonType": "object",
					"required": bson.A{"email"},
					"properties": bson.M{
						"email": bson.M{"bsonType": "string", "pattern": "^[^@\\s]+@[^@\\s]+$"},
						"phone": bson.M{"bsonType": "string"},
					},
				},
				"location": bson.M{
					"bsonType": "object",
					"properties": bson.M{
						"long": bson.M{"bsonType": "number"},
						"lat":  bson.M{"bsonType": "number"},
					},
				},
				"employees":     bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
				"notifications": bson.M{"bsonType": "array", "items": notificationSchema()},
				"requests":      bson.M{"bsonType": "array", "items": bson.M{"bsonType": "objectId"}},
				"created_at":    bson.M{"bsonType": "date"},
				"updated_at":    bson.M{"bsonType": "date"},
			},
		},
	}
}

func sessionsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"organisations", "notifications", "created_at"},
			"properties": bson.M{
				"organisations": bson.M{"bsonType": "array", "items": bson.M{"bsonType": "objectId"}},
				"notifications": bson.M{"bsonType": "array", "items": notificationSchema()},
				"created_at":    bson.M{"bsonType": "date"},
			},
		},
	}
}

func requestsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"organisation_id", "at", "status"},
			"properties": bson.M{
				"organisation_id": bson.M{"bsonType": "objectId"},
				"from":            bson.M{"bsonType": "string"},
				"message":         bson.M{"bsonType": "string"},
				"at":              bson.M{"bsonType": "date"},
				"status":          bson.M{"enum": bson.A{models.RequestPending, models.RequestAccepted}},
				"created_at":      bson.M{"bsonType": "date"},
			},
		},
	}
}
