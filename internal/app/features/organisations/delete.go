// internal/app/features/organisations/delete.go
package organisations

import (
	"context"
	"net/http"

	"github.com/dalemusser/orgdesk/internal/app/system/factory"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HandleDelete removes the caller's own organisation {id}. Sessions and
// requests that reference it are kept.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	factory.DeleteOne("organisation", auditedDelete{h: h, r: r}, ownID("id"), h.Log)(w, r)
}

// auditedDelete records an audit event for each organisation removed.
type auditedDelete struct {
	h *Handler
	r *http.Request
}

func (d auditedDelete) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	n, err := d.h.orgs.Delete(ctx, id)
	if err == nil && n > 0 {
		d.h.Audit.OrgDeleted(ctx, d.r, id)
	}
	return n, err
}
