// internal/app/features/organisations/get.go
package organisations

import (
	"net/http"

	"github.com/dalemusser/orgdesk/internal/app/system/apperr"
	"github.com/dalemusser/orgdesk/internal/app/system/authtoken"
	"github.com/dalemusser/orgdesk/internal/app/system/factory"
	"github.com/dalemusser/orgdesk/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeGet responds with one organisation by {id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	factory.GetOne[models.Organisation]("organisation", h.orgs, factory.PathID("id"), h.Log)(w, r)
}

// ServeMe responds with the organisation the request's token belongs to.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	factory.GetOne[models.Organisation]("organisation", h.orgs, tokenID, h.Log)(w, r)
}

// ownID reads the target from the URL parameter key and accepts it only
// when it is the caller's own organisation.
func ownID(key string) factory.IDFunc {
	return func(r *http.Request) (primitive.ObjectID, error) {
		id, err := factory.PathID(key)(r)
		if err != nil {
			return primitive.NilObjectID, err
		}
		if err := requireSelf(r, id); err != nil {
			return primitive.NilObjectID, err
		}
		return id, nil
	}
}

// requireSelf refuses with 403 unless the request's token belongs to target.
func requireSelf(r *http.Request, target primitive.ObjectID) error {
	caller, err := tokenID(r)
	if err != nil {
		return err
	}
	if caller != target {
		return apperr.New(http.StatusForbidden, errNotYours)
	}
	return nil
}

const errNotYours = "You do not have permission to change another organisation"

func tokenID(r *http.Request) (primitive.ObjectID, error) {
	id, ok := authtoken.OrganisationID(r.Context())
	if !ok {
		return primitive.NilObjectID, apperr.Unauthorized("You are not logged in. Please log in to get access.")
	}
	return id, nil
}
