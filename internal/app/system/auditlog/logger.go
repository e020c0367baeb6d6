// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/orgdesk/internal/app/store/audit"
	"github.com/dalemusser/orgdesk/internal/app/system/authtoken"
	"github.com/dalemusser/orgdesk/internal/app/system/ratelimit"
	"github.com/dalemusser/orgdesk/internal/app/system/reqlog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destinations for a category of events.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"
	ModeLog = "log"
	ModeOff = "off"
)

// Config holds audit logging configuration.
type Config struct {
	// Organisation controls lifecycle events (create, update, delete,
	// requests, acceptances).
	Organisation string
	// Security controls refused or suspicious operations.
	Security string
}

// Logger records audit events to MongoDB (via audit.Store) and/or zap.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.OrganisationID != nil {
		fields = append(fields, zap.String("organisation_id", event.OrganisationID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event according to its category's mode.
// A nil Logger is a no-op. Storage failures are logged, never returned.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var mode string
	switch event.Category {
	case audit.CategoryOrganisation:
		mode = l.config.Organisation
	case audit.CategorySecurity:
		mode = l.config.Security
	default:
		mode = ModeAll
	}

	if mode == ModeOff || mode == "" {
		return
	}
	if mode == ModeAll || mode == ModeLog {
		l.logToZap(event)
	}
	if mode == ModeAll || mode == ModeDB {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType))
		}
	}
}

// fromRequest fills the request-derived fields of an event.
func fromRequest(r *http.Request, category, eventType string, orgID *primitive.ObjectID) audit.Event {
	e := audit.Event{
		Category:       category,
		EventType:      eventType,
		OrganisationID: orgID,
		IP:             ratelimit.ClientIP(r),
		UserAgent:      r.UserAgent(),
		RequestID:      reqlog.ID(r.Context()),
		Success:        true,
	}
	if actor, ok := authtoken.OrganisationID(r.Context()); ok {
		e.ActorID = &actor
	}
	return e
}

// --- Organisation Events ---

// OrgCreated logs a new organisation sign-up.
func (l *Logger) OrgCreated(ctx context.Context, r *http.Request, orgID primitive.ObjectID, email string) {
	e := fromRequest(r, audit.CategoryOrganisation, audit.EventOrgCreated, &orgID)
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

// OrgUpdated logs which fields an update changed.
func (l *Logger) OrgUpdated(ctx context.Context, r *http.Request, orgID primitive.ObjectID, fields []string) {
	e := fromRequest(r, audit.CategoryOrganisation, audit.EventOrgUpdated, &orgID)
	e.Details = map[string]string{"fields": strings.Join(fields, ",")}
	l.Log(ctx, e)
}

// OrgDeleted logs an organisation removal.
func (l *Logger) OrgDeleted(ctx context.Context, r *http.Request, orgID primitive.ObjectID) {
	l.Log(ctx, fromRequest(r, audit.CategoryOrganisation, audit.EventOrgDeleted, &orgID))
}

// RequestCreated logs an officer request addressed to an organisation.
func (l *Logger) RequestCreated(ctx context.Context, r *http.Request, orgID, requestID primitive.ObjectID) {
	e := fromRequest(r, audit.CategoryOrganisation, audit.EventRequestCreated, &orgID)
	e.Details = map[string]string{"request_id": requestID.Hex()}
	l.Log(ctx, e)
}

// RequestAccepted logs an accepted notification and the session it opened.
func (l *Logger) RequestAccepted(ctx context.Context, r *http.Request, orgID, sessionID primitive.ObjectID, at time.Time) {
	e := fromRequest(r, audit.CategoryOrganisation, audit.EventRequestAccepted, &orgID)
	e.Details = map[string]string{
		"session_id": sessionID.Hex(),
		"at":         at.UTC().Format(time.RFC3339Nano),
	}
	l.Log(ctx, e)
}

// --- Security Events ---

// PasswordUpdateRefused logs an update that tried to set password fields.
// orgID is nil when the target could not be determined.
func (l *Logger) PasswordUpdateRefused(ctx context.Context, r *http.Request, orgID *primitive.ObjectID) {
	e := fromRequest(r, audit.CategorySecurity, audit.EventPasswordViaPatch, orgID)
	e.Success = false
	e.FailureReason = "password fields in update body"
	l.Log(ctx, e)
}
