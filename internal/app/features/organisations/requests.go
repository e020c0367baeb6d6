// internal/app/features/organisations/requests.go
package organisations

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dalemusser/orgdesk/internal/app/system/apperr"
	"github.com/dalemusser/orgdesk/internal/app/system/factory"
	"github.com/dalemusser/orgdesk/internal/app/system/htmlsanitize"
	"github.com/dalemusser/orgdesk/internal/app/system/jsonapi"
	"github.com/dalemusser/orgdesk/internal/app/system/metrics"
	"github.com/dalemusser/orgdesk/internal/app/system/timeouts"
	"github.com/dalemusser/orgdesk/internal/app/system/txn"
	"github.com/dalemusser/orgdesk/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const errOrgNotFound = "Organization not found"

// ServeRequests lists the requests addressed to organisation {id}.
func (h *Handler) ServeRequests(w http.ResponseWriter, r *http.Request) {
	jsonapi.Wrap(h.Log, h.listRequests)(w, r)
}

func (h *Handler) listRequests(w http.ResponseWriter, r *http.Request) error {
	id, err := factory.PathID("id")(r)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	reqs, err := h.orgs.Requests(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound(errOrgNotFound)
	}
	if err != nil {
		return apperr.Internal("list requests", err)
	}
	jsonapi.Success(w, http.StatusOK, "requests", reqs)
	return nil
}

// HandleCreateRequest records an officer's request to organisation {id}
// and queues a pending notification for it.
func (h *Handler) HandleCreateRequest(w http.ResponseWriter, r *http.Request) {
	jsonapi.Wrap(h.Log, h.createRequest)(w, r)
}

func (h *Handler) createRequest(w http.ResponseWriter, r *http.Request) error {
	id, err := factory.PathID("id")(r)
	if err != nil {
		return err
	}

	var in requestInput
	if err := jsonapi.Decode(w, r, &in); err != nil {
		return err
	}
	from := htmlsanitize.PlainText(in.From)
	if from == "" {
		return apperr.BadRequest("Please say who the request is from")
	}
	at := time.Now().UTC()
	if in.At != nil {
		at = *in.At
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	req := models.Request{
		ID:             primitive.NewObjectID(),
		OrganisationID: id,
		From:           from,
		Message:        htmlsanitize.PlainText(in.Message),
		At:             at,
	}

	// Link first so a missing organisation fails before a request document
	// exists, with or without a transaction.
	var created models.Request
	err = txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		if err := h.orgs.AddRequest(ctx, id, req.ID, models.Notification{
			At:      req.At,
			From:    req.From,
			Message: req.Message,
		}); err != nil {
			return err
		}
		c, err := h.requests.Create(ctx, req)
		if err != nil {
			return err
		}
		created = c
		return nil
	})
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		metrics.CountOperation("request", metrics.OutcomeRejected)
		return apperr.NotFound(errOrgNotFound)
	case err != nil:
		metrics.CountOperation("request", metrics.OutcomeFailed)
		return apperr.Internal("create request", err)
	}

	metrics.CountOperation("request", metrics.OutcomeOK)
	h.Audit.RequestCreated(r.Context(), r, id, created.ID)
	h.Log.Info("request created",
		zap.String("organisation", id.Hex()),
		zap.String("request", created.ID.Hex()))
	jsonapi.Success(w, http.StatusCreated, "request", created)
	return nil
}
