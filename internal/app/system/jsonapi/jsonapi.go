// Package jsonapi writes the JSON response envelope shared by every
// endpoint and funnels handler errors into a single error writer.
//
// Success responses look like
//
//	{ "status": "success", "data": { "<entity>": <value> } }
//
// and failures like
//
//	{ "status": "fail",  "message": "Organisation not found" }   // 4xx
//	{ "status": "error", "message": "Something went wrong" }     // 5xx
package jsonapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dalemusser/orgdesk/internal/app/system/apperr"
	"github.com/dalemusser/orgdesk/internal/app/system/reqlog"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Envelope statuses.
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

// MaxBodyBytes caps request bodies read by Decode.
const MaxBodyBytes = 1 << 20

// Envelope is the top-level response document.
type Envelope struct {
	Status  string         `json:"status"`
	Token   string         `json:"token,omitempty"`
	Message string         `json:"message,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// HandlerFunc is an HTTP handler that reports failure by returning an error
// instead of writing it.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Wrap adapts fn to http.HandlerFunc. Any error fn returns is written with
// WriteError; fn must not have written a response in that case.
func Wrap(logger *zap.Logger, fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			WriteError(w, r, logger, err)
		}
	}
}

// Write encodes env with the given status.
func Write(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// Success writes {status:"success", data:{key: value}}.
func Success(w http.ResponseWriter, status int, key string, value any) {
	Write(w, status, Envelope{
		Status: StatusSuccess,
		Data:   map[string]any{key: value},
	})
}

// NoContent writes an empty 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteError maps err to a status and writes the failure envelope.
// Server errors are logged with their cause; the client only sees a
// generic message.
func WriteError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	ae := classify(err)

	if !apperr.IsClient(ae.Status) {
		logger.Error("request failed",
			zap.String("request_id", reqlog.ID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("reason", ae.Message),
			zap.Error(err))
		Write(w, ae.Status, Envelope{Status: StatusError, Message: "Something went wrong"})
		return
	}

	logger.Debug("request rejected",
		zap.String("request_id", reqlog.ID(r.Context())),
		zap.Int("status", ae.Status),
		zap.String("message", ae.Message))
	Write(w, ae.Status, Envelope{Status: StatusFail, Message: ae.Message})
}

func classify(err error) *apperr.Error {
	if ae, ok := apperr.As(err); ok && ae.Status != 0 {
		return ae
	}
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperr.NotFound("No document found with that ID")
	case wafflemongo.IsDup(err):
		return apperr.Conflict("Duplicate field value")
	}
	return apperr.Internal("unhandled error", err)
}

// Decode reads a JSON body into v. Malformed or oversized bodies become a
// 400.
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.BadRequest("Request body is empty")
		}
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return apperr.New(http.StatusRequestEntityTooLarge, "Request body is too large")
		}
		return apperr.Wrap(http.StatusBadRequest, "Invalid JSON body", err)
	}
	return nil
}
