// Package authtoken issues and verifies the signed tokens an organisation
// receives when it is created, and loads them back on later requests.
package authtoken

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/orgdesk/internal/app/system/apperr"
	"github.com/dalemusser/orgdesk/internal/app/system/jsonapi"
	"github.com/dalemusser/orgdesk/internal/domain/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ErrNoSecret is returned by NewIssuer when no signing secret is configured.
var ErrNoSecret = errors.New("authtoken: signing secret is empty")

// Claims identifies an organisation. Subject holds its ObjectID hex.
type Claims struct {
	jwt.RegisteredClaims
}

// Issuer signs HS256 tokens and writes them as a cookie plus response body.
type Issuer struct {
	secret     []byte
	ttl        time.Duration
	cookieName string
	secure     bool
}

// NewIssuer builds an Issuer. secure marks the cookie Secure (production).
func NewIssuer(secret string, ttl time.Duration, cookieName string, secure bool) (*Issuer, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	if ttl <= 0 {
		ttl = 90 * 24 * time.Hour
	}
	if cookieName == "" {
		cookieName = "jwt"
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, cookieName: cookieName, secure: secure}, nil
}

// Issue signs a token for orgID and returns it with its expiry.
func (i *Issuer) Issue(orgID primitive.ObjectID) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(i.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   orgID.Hex(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tok, exp, nil
}

// Parse verifies tok and returns the organisation ID it was issued for.
func (i *Issuer) Parse(tok string) (primitive.ObjectID, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tok, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return primitive.NilObjectID, err
	}
	return primitive.ObjectIDFromHex(claims.Subject)
}

// Send issues a token for org, sets it as an HttpOnly cookie and writes
//
//	{ "status":"success", "token":"…", "data":{ "organisation": org } }
func (i *Issuer) Send(w http.ResponseWriter, status int, org models.Organisation) error {
	tok, exp, err := i.Issue(org.ID)
	if err != nil {
		return apperr.Internal("sign token", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     i.cookieName,
		Value:    tok,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   i.secure,
		SameSite: http.SameSiteLaxMode,
	})
	jsonapi.Write(w, status, jsonapi.Envelope{
		Status: jsonapi.StatusSuccess,
		Token:  tok,
		Data:   map[string]any{"organisation": org},
	})
	return nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Request context                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

type ctxKey string

const orgIDKey ctxKey = "organisationID"

// OrganisationID returns the organisation the request's token was issued
// for, if LoadToken found a valid one.
func OrganisationID(ctx context.Context) (primitive.ObjectID, bool) {
	id, ok := ctx.Value(orgIDKey).(primitive.ObjectID)
	return id, ok
}

// WithOrganisationID returns ctx carrying id. Tests use it to skip signing.
func WithOrganisationID(ctx context.Context, id primitive.ObjectID) context.Context {
	return context.WithValue(ctx, orgIDKey, id)
}

func (i *Issuer) tokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie(i.cookieName); err == nil {
		return c.Value
	}
	return ""
}

// LoadToken puts the token's organisation ID into the request context when
// a valid bearer token or cookie is present. It never rejects a request.
func (i *Issuer) LoadToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tok := i.tokenFrom(r); tok != "" {
			if id, err := i.Parse(tok); err == nil {
				r = r.WithContext(WithOrganisationID(r.Context(), id))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireToken rejects requests that LoadToken did not authenticate.
func RequireToken(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := OrganisationID(r.Context()); !ok {
				jsonapi.WriteError(w, r, logger, apperr.Unauthorized("You are not logged in. Please log in to get access."))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
