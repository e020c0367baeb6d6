package auditlog_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/orgdesk/internal/app/store/audit"
	"github.com/dalemusser/orgdesk/internal/app/system/auditlog"
	"github.com/dalemusser/orgdesk/internal/app/system/authtoken"
	"github.com/dalemusser/orgdesk/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_NilLogger(t *testing.T) {
	// nil logger should be a no-op (not panic)
	var logger *auditlog.Logger
	ctx, cancel := testutil.TestContext()
	defer cancel()
	req := httptest.NewRequest("GET", "/", nil)

	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.OrgCreated(ctx, req, primitive.NewObjectID(), "a@b.co")
	logger.PasswordUpdateRefused(ctx, req, nil)
}

func TestLogger_Modes(t *testing.T) {
	tests := []struct {
		mode       string
		wantStored int
		wantLogged int
	}{
		{auditlog.ModeOff, 0, 0},
		{auditlog.ModeDB, 1, 0},
		{auditlog.ModeLog, 0, 1},
		{auditlog.ModeAll, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			store := audit.New(db)
			core, logs := observer.New(zapcore.InfoLevel)
			ctx, cancel := testutil.TestContext()
			defer cancel()

			logger := auditlog.New(store, zap.New(core), auditlog.Config{Organisation: tt.mode, Security: tt.mode})
			orgID := primitive.NewObjectID()
			logger.OrgDeleted(ctx, httptest.NewRequest("DELETE", "/organisations/x", nil), orgID)

			events, err := store.GetByOrganisation(ctx, orgID, 10)
			if err != nil {
				t.Fatalf("GetByOrganisation failed: %v", err)
			}
			if len(events) != tt.wantStored {
				t.Errorf("stored: got %d, want %d", len(events), tt.wantStored)
			}
			if got := logs.FilterMessage("audit event").Len(); got != tt.wantLogged {
				t.Errorf("logged: got %d, want %d", got, tt.wantLogged)
			}
		})
	}
}

func TestLogger_RequestContext(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Organisation: auditlog.ModeDB, Security: auditlog.ModeDB})

	actor := primitive.NewObjectID()
	target := primitive.NewObjectID()
	req := httptest.NewRequest("PATCH", "/organisations/"+target.Hex(), nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	req.Header.Set("User-Agent", "AuditTest/1.0")
	req = req.WithContext(authtoken.WithOrganisationID(req.Context(), actor))

	logger.PasswordUpdateRefused(ctx, req, &target)
	logger.RequestAccepted(ctx, req, target, primitive.NewObjectID(), time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC))

	events, err := store.GetByOrganisation(ctx, target, 10)
	if err != nil {
		t.Fatalf("GetByOrganisation failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	for _, e := range events {
		if e.IP != "203.0.113.7" {
			t.Errorf("%s IP: got %q, want %q", e.EventType, e.IP, "203.0.113.7")
		}
		if e.UserAgent != "AuditTest/1.0" {
			t.Errorf("%s UserAgent: got %q", e.EventType, e.UserAgent)
		}
		if e.ActorID == nil || *e.ActorID != actor {
			t.Errorf("%s ActorID: got %v, want %v", e.EventType, e.ActorID, actor)
		}
		switch e.EventType {
		case audit.EventPasswordViaPatch:
			if e.Success || e.Category != audit.CategorySecurity {
				t.Errorf("refusal: got success=%v category=%q", e.Success, e.Category)
			}
		case audit.EventRequestAccepted:
			if e.Details["at"] != "2024-02-03T04:05:06Z" {
				t.Errorf("accepted at: got %q", e.Details["at"])
			}
		default:
			t.Errorf("unexpected event %q", e.EventType)
		}
	}
}
