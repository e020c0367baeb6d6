// internal/app/features/organisations/create.go
package organisations

import (
	"errors"
	"net/http"
	"strings"

	organisationstore "github.com/dalemusser/orgdesk/internal/app/store/organisations"
	"github.com/dalemusser/orgdesk/internal/app/system/apperr"
	"github.com/dalemusser/orgdesk/internal/app/system/htmlsanitize"
	"github.com/dalemusser/orgdesk/internal/app/system/inputval"
	"github.com/dalemusser/orgdesk/internal/app/system/jsonapi"
	"github.com/dalemusser/orgdesk/internal/app/system/metrics"
	"github.com/dalemusser/orgdesk/internal/app/system/timeouts"
	"github.com/dalemusser/orgdesk/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const errOrgExists = "Organisation already exists"

// HandleCreate registers a new organisation and signs it in.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	jsonapi.Wrap(h.Log, h.create)(w, r)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) error {
	var in createInput
	if err := jsonapi.Decode(w, r, &in); err != nil {
		return err
	}

	email := in.Email
	if strings.TrimSpace(email) == "" {
		email = in.Contact.Email
	}
	email = organisationstore.NormalizeEmail(email)
	name := htmlsanitize.PlainText(in.Name)

	var v inputval.Result
	v.Add(name == "", "Please provide the organisation name")
	v.Add(!inputval.IsValidEmail(email), "Please provide a valid email")
	v.Add(len(in.Password) < inputval.MinPasswordLen, "Password must be at least 8 characters")
	v.Add(in.Password != in.PasswordConfirm, "Passwords are not the same")
	v.Add(in.Employees != nil && *in.Employees < 0, "Employees cannot be negative")
	if v.HasErrors() {
		metrics.CountOperation("create", metrics.OutcomeRejected)
		return apperr.BadRequest(v.All())
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create organisation")
	defer cancel()

	exists, err := h.orgs.ExistsByEmail(ctx, email)
	if err != nil {
		return apperr.Internal("check organisation email", err)
	}
	if exists {
		metrics.CountOperation("create", metrics.OutcomeRejected)
		return apperr.Conflict(errOrgExists)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Internal("hash password", err)
	}

	org := models.Organisation{
		Name:         name,
		Type:         strings.TrimSpace(in.Type),
		Contact:      models.Contact{Email: email, Phone: strings.TrimSpace(in.Contact.Phone)},
		PasswordHash: string(hash),
	}
	if in.Location != nil {
		org.Location = *in.Location
	}
	if in.Employees != nil {
		org.Employees = *in.Employees
	}

	created, err := h.orgs.Create(ctx, org)
	switch {
	case errors.Is(err, organisationstore.ErrDuplicateOrganisation):
		metrics.CountOperation("create", metrics.OutcomeRejected)
		return apperr.Conflict(errOrgExists)
	case errors.Is(err, organisationstore.ErrInvalidOrganisation):
		metrics.CountOperation("create", metrics.OutcomeRejected)
		return apperr.BadRequest("Invalid organisation data")
	case err != nil:
		metrics.CountOperation("create", metrics.OutcomeFailed)
		return apperr.Internal("create organisation", err)
	}

	metrics.CountOperation("create", metrics.OutcomeOK)
	h.Audit.OrgCreated(r.Context(), r, created.ID, created.Contact.Email)
	h.Log.Info("organisation created",
		zap.String("id", created.ID.Hex()),
		zap.String("type", created.Type))
	return h.Tokens.Send(w, http.StatusCreated, created)
}
