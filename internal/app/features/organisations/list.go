// internal/app/features/organisations/list.go
package organisations

import (
	"context"
	"net/http"
	"strings"

	organisationstore "github.com/dalemusser/orgdesk/internal/app/store/organisations"
	"github.com/dalemusser/orgdesk/internal/app/system/apperr"
	"github.com/dalemusser/orgdesk/internal/app/system/jsonapi"
	"github.com/dalemusser/orgdesk/internal/app/system/paging"
	"github.com/dalemusser/orgdesk/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
)

// ServeList handles GET /organisations (optional ?q= name prefix, ?type=,
// and ?after= / ?before= cursors). Rows are ordered by name.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	jsonapi.Wrap(h.Log, h.list)(w, r)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) error {
	filter := organisationstore.ListFilter{
		Query: query.Search(r, "q"),
		Type:  strings.TrimSpace(query.Get(r, "type")),
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	orgs, page, err := h.orgs.List(ctx, filter, paging.FromRequest(r))
	if err != nil {
		return apperr.Internal("list organisations", err)
	}

	jsonapi.Write(w, http.StatusOK, jsonapi.Envelope{
		Status: jsonapi.StatusSuccess,
		Data: map[string]any{
			"organisations": orgs,
			"page":          page,
		},
	})
	return nil
}
