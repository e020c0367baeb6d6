// internal/app/features/organisations/nearby.go
package organisations

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/orgdesk/internal/app/system/apperr"
	"github.com/dalemusser/orgdesk/internal/app/system/factory"
	"github.com/dalemusser/orgdesk/internal/app/system/jsonapi"
	"github.com/dalemusser/orgdesk/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// HandleNearby lists organisations of a type ordered by distance from the
// reference organisation named by the body's _id, nearest first. The
// reference organisation's own type is used when none is given.
func (h *Handler) HandleNearby(w http.ResponseWriter, r *http.Request) {
	jsonapi.Wrap(h.Log, h.nearby)(w, r)
}

func (h *Handler) nearby(w http.ResponseWriter, r *http.Request) error {
	var in refInput
	if err := jsonapi.Decode(w, r, &in); err != nil {
		return err
	}
	if in.ID == "" {
		return apperr.BadRequest("Please provide the reference organisation _id")
	}
	refID, err := factory.ParseID(in.ID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ref, err := h.orgs.GetByID(ctx, refID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound("No organisation found with that ID")
	}
	if err != nil {
		return apperr.Internal("load reference organisation", err)
	}

	typ := strings.TrimSpace(in.Type)
	if typ == "" {
		typ = ref.Type
	}

	out, err := h.orgs.NearestOfType(ctx, ref.Location, typ)
	if err != nil {
		return apperr.Internal("proximity query", err)
	}

	h.Log.Debug("nearby organisations",
		zap.String("ref", refID.Hex()),
		zap.String("type", typ),
		zap.Int("count", len(out)))
	jsonapi.Success(w, http.StatusOK, "organisations", out)
	return nil
}
