// internal/app/features/organisations/accept.go
package organisations

import (
	"context"
	"errors"
	"net/http"

	organisationstore "github.com/dalemusser/orgdesk/internal/app/store/organisations"
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

// HandleAccept accepts an officer's request on behalf of organisation
// {id}: the matching notification is marked accepted and a session is
// opened for it. Both writes share one transaction where the deployment
// supports it.
func (h *Handler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	jsonapi.Wrap(h.Log, h.accept)(w, r)
}

func (h *Handler) accept(w http.ResponseWriter, r *http.Request) error {
	id, err := ownID("id")(r)
	if err != nil {
		return err
	}

	var in acceptInput
	if err := jsonapi.Decode(w, r, &in); err != nil {
		return err
	}
	if in.Request == nil || in.Request.At == nil {
		return apperr.BadRequest("Please provide the request and its at timestamp")
	}

	var requestID *primitive.ObjectID
	if in.Request.RequestID != "" {
		rid, err := factory.ParseID(in.Request.RequestID)
		if err != nil {
			return err
		}
		requestID = &rid
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "accept request")
	defer cancel()

	var sess models.Session
	err = txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		n, err := h.orgs.AcceptNotification(ctx, id, *in.Request.At)
		if err != nil {
			return err
		}

		if requestID != nil {
			if err := h.requests.MarkAccepted(ctx, *requestID, id); err != nil {
				if errors.Is(err, mongo.ErrNoDocuments) {
					return apperr.NotFound("No request found with that ID for this organisation")
				}
				return err
			}
			n.RequestID = requestID
		}
		if n.From == "" {
			n.From = htmlsanitize.PlainText(in.Request.From)
		}
		if n.Message == "" {
			n.Message = htmlsanitize.PlainText(in.Request.Message)
		}

		s, err := h.sessions.Create(ctx, []primitive.ObjectID{id}, []models.Notification{n})
		if err != nil {
			return err
		}
		sess = s
		return nil
	})

	if err != nil {
		if _, ok := apperr.As(err); ok {
			metrics.CountOperation("accept", metrics.OutcomeRejected)
			return err
		}
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			metrics.CountOperation("accept", metrics.OutcomeRejected)
			return apperr.NotFound(errOrgNotFound)
		case errors.Is(err, organisationstore.ErrNotificationNotFound):
			metrics.CountOperation("accept", metrics.OutcomeRejected)
			return apperr.NotFound("No notification found with that timestamp")
		case errors.Is(err, organisationstore.ErrAlreadyAccepted):
			metrics.CountOperation("accept", metrics.OutcomeRejected)
			return apperr.Conflict("This request has already been accepted")
		}
		metrics.CountOperation("accept", metrics.OutcomeFailed)
		return apperr.Internal("accept request", err)
	}

	metrics.CountOperation("accept", metrics.OutcomeOK)
	h.Audit.RequestAccepted(r.Context(), r, id, sess.ID, *in.Request.At)
	h.Log.Info("request accepted",
		zap.String("organisation", id.Hex()),
		zap.String("session", sess.ID.Hex()),
		zap.Time("at", in.Request.At.UTC()))
	jsonapi.Success(w, http.StatusOK, "session", sess)
	return nil
}
