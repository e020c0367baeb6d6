// internal/app/features/organisations/handler.go
package organisations

import (
	organisationstore "github.com/dalemusser/orgdesk/internal/app/store/organisations"
	requeststore "github.com/dalemusser/orgdesk/internal/app/store/requests"
	"github.com/dalemusser/orgdesk/internal/app/store/sessions"
	"github.com/dalemusser/orgdesk/internal/app/system/auditlog"
	"github.com/dalemusser/orgdesk/internal/app/system/authtoken"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the feature-level entry point for Organisations.
type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	Tokens *authtoken.Issuer
	Audit  *auditlog.Logger

	orgs     *organisationstore.Store
	sessions *sessions.Store
	requests *requeststore.Store
}

// NewHandler constructs an Organisations handler. audit may be nil.
func NewHandler(db *mongo.Database, tokens *authtoken.Issuer, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		Tokens:   tokens,
		Audit:    audit,
		orgs:     organisationstore.New(db),
		sessions: sessions.New(db),
		requests: requeststore.New(db),
	}
}
