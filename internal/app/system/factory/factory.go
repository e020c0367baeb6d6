// Package factory builds the read and delete handlers that every entity
// exposes the same way.
package factory

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/orgdesk/internal/app/system/apperr"
	"github.com/dalemusser/orgdesk/internal/app/system/jsonapi"
	"github.com/dalemusser/orgdesk/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Getter loads one entity by ID. A missing entity is mongo.ErrNoDocuments.
type Getter[T any] interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (T, error)
}

// Deleter removes one entity by ID and reports how many were removed.
type Deleter interface {
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
}

// IDFunc extracts the target ID from a request.
type IDFunc func(r *http.Request) (primitive.ObjectID, error)

// PathID reads the ObjectID from the chi URL parameter key.
func PathID(key string) IDFunc {
	return func(r *http.Request) (primitive.ObjectID, error) {
		return ParseID(chi.URLParam(r, key))
	}
}

// ParseID parses an ObjectID hex string; a malformed one is a 400.
func ParseID(hex string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(hex))
	if err != nil {
		return primitive.NilObjectID, apperr.Wrap(http.StatusBadRequest, "Invalid ID: "+hex, err)
	}
	return oid, nil
}

// GetOne responds with {status:"success", data:{name: entity}} or 404.
func GetOne[T any](name string, g Getter[T], id IDFunc, logger *zap.Logger) http.HandlerFunc {
	return jsonapi.Wrap(logger, func(w http.ResponseWriter, r *http.Request) error {
		oid, err := id(r)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()

		doc, err := g.GetByID(ctx, oid)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.NotFound("No " + name + " found with that ID")
		}
		if err != nil {
			return apperr.Internal("get "+name, err)
		}
		jsonapi.Success(w, http.StatusOK, name, doc)
		return nil
	})
}

// DeleteOne responds 204 on success or 404 when nothing was removed.
func DeleteOne(name string, d Deleter, id IDFunc, logger *zap.Logger) http.HandlerFunc {
	return jsonapi.Wrap(logger, func(w http.ResponseWriter, r *http.Request) error {
		oid, err := id(r)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()

		n, err := d.Delete(ctx, oid)
		if err != nil {
			return apperr.Internal("delete "+name, err)
		}
		if n == 0 {
			return apperr.NotFound("No " + name + " found with that ID")
		}
		logger.Info(name+" deleted", zap.String("id", oid.Hex()))
		jsonapi.NoContent(w)
		return nil
	})
}
