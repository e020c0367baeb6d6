// internal/app/features/organisations/update.go
package organisations

import (
	"context"
	"errors"
	"math"
	"net/http"

	organisationstore "github.com/dalemusser/orgdesk/internal/app/store/organisations"
	"github.com/dalemusser/orgdesk/internal/app/system/apperr"
	"github.com/dalemusser/orgdesk/internal/app/system/factory"
	"github.com/dalemusser/orgdesk/internal/app/system/fieldfilter"
	"github.com/dalemusser/orgdesk/internal/app/system/htmlsanitize"
	"github.com/dalemusser/orgdesk/internal/app/system/jsonapi"
	"github.com/dalemusser/orgdesk/internal/app/system/metrics"
	"github.com/dalemusser/orgdesk/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// updatable is the whitelist of body keys an update may change.
var updatable = []string{"name", "employees"}

const errPasswordRoute = "This route is not for password updates. Please use /updateMyPassword."

// HandleUpdate applies the whitelisted fields of the body to one
// organisation. The target comes from {id}, or the body's _id on the
// collection route.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	jsonapi.Wrap(h.Log, h.update)(w, r)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) error {
	var body map[string]any
	if err := jsonapi.Decode(w, r, &body); err != nil {
		return err
	}

	rawID := chi.URLParam(r, "id")
	if rawID == "" {
		rawID, _ = body["_id"].(string)
	}

	if fieldfilter.HasAny(body, "password", "passwordConfirm") {
		metrics.CountOperation("update", metrics.OutcomeRejected)
		var target *primitive.ObjectID
		if oid, err := primitive.ObjectIDFromHex(rawID); err == nil {
			target = &oid
		}
		h.Audit.PasswordUpdateRefused(r.Context(), r, target)
		return apperr.BadRequest(errPasswordRoute)
	}

	if rawID == "" {
		return apperr.BadRequest("Please provide the organisation _id")
	}
	id, err := factory.ParseID(rawID)
	if err != nil {
		return err
	}
	if err := requireSelf(r, id); err != nil {
		metrics.CountOperation("update", metrics.OutcomeRejected)
		return err
	}

	patch, err := patchFrom(fieldfilter.Filter(body, updatable...))
	if err != nil {
		metrics.CountOperation("update", metrics.OutcomeRejected)
		return err
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	org, err := h.orgs.Update(ctx, id, patch)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperr.NotFound("No organisation found with that ID")
	case errors.Is(err, organisationstore.ErrInvalidOrganisation):
		metrics.CountOperation("update", metrics.OutcomeRejected)
		return apperr.BadRequest("Invalid organisation data")
	case err != nil:
		metrics.CountOperation("update", metrics.OutcomeFailed)
		return apperr.Internal("update organisation", err)
	}

	metrics.CountOperation("update", metrics.OutcomeOK)
	fields := patch.Fields()
	h.Audit.OrgUpdated(r.Context(), r, id, fields)
	h.Log.Info("organisation updated", zap.String("id", id.Hex()), zap.Strings("fields", fields))
	jsonapi.Success(w, http.StatusOK, "organisation", org)
	return nil
}

// patchFrom validates the filtered body and converts it to a store patch.
func patchFrom(fields map[string]any) (organisationstore.Patch, error) {
	var p organisationstore.Patch

	if v, ok := fields["name"]; ok {
		s, isStr := v.(string)
		name := htmlsanitize.PlainText(s)
		if !isStr || name == "" {
			return p, apperr.BadRequest("Name must be a non-empty string")
		}
		p.Name = &name
	}

	if v, ok := fields["employees"]; ok {
		f, isNum := v.(float64)
		if !isNum || f < 0 || f != math.Trunc(f) || f > 1<<53 {
			return p, apperr.BadRequest("Employees must be a non-negative whole number")
		}
		n := int64(f)
		p.Employees = &n
	}

	if p.Empty() {
		return p, apperr.BadRequest("No updatable fields provided. Allowed: name, employees")
	}
	return p, nil
}
