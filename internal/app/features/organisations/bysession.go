// internal/app/features/organisations/bysession.go
package organisations

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/orgdesk/internal/app/system/apperr"
	"github.com/dalemusser/orgdesk/internal/app/system/factory"
	"github.com/dalemusser/orgdesk/internal/app/system/jsonapi"
	"github.com/dalemusser/orgdesk/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
)

// HandleBySession lists the organisations grouped in the session named by
// the body's _id. sessionId is accepted for compatibility and ignored.
func (h *Handler) HandleBySession(w http.ResponseWriter, r *http.Request) {
	jsonapi.Wrap(h.Log, h.bySession)(w, r)
}

func (h *Handler) bySession(w http.ResponseWriter, r *http.Request) error {
	var in refInput
	if err := jsonapi.Decode(w, r, &in); err != nil {
		return err
	}
	if in.ID == "" {
		return apperr.BadRequest("Please provide the session _id")
	}
	sessionID, err := factory.ParseID(in.ID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sess, err := h.sessions.GetByID(ctx, sessionID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound("No session found with that ID")
	}
	if err != nil {
		return apperr.Internal("load session", err)
	}

	orgs, err := h.orgs.GetByIDs(ctx, sess.Organisations)
	if err != nil {
		return apperr.Internal("load session organisations", err)
	}
	jsonapi.Success(w, http.StatusOK, "organisations", orgs)
	return nil
}
