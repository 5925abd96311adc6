// Package auth turns a backend-issued bearer token into a driver session.
// Authentication itself (login, password handling, token issuance) is the
// hosted backend's concern; this package only verifies its tokens and
// resolves the matching driver row.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/leveldesignagency/OnTimelyDriverPortal/internal/models"
	"github.com/leveldesignagency/OnTimelyDriverPortal/internal/response"
)

type contextKey string

const sessionKey contextKey = "driver_session"

// Session is the authenticated driver plus the raw token forwarded to the
// backend so row-level security still applies to every call made on the
// driver's behalf.
type Session struct {
	Driver models.Driver
	Token  string
}

// DriverResolver looks up the driver row for an authenticated backend user
// (implemented by repository.TripStore).
type DriverResolver interface {
	DriverByAuthUser(ctx context.Context, token, authUserID string) (*models.Driver, error)
}

// Middleware verifies the bearer token and injects the driver session into
// the request context. Requests without a driver record are rejected: the
// portal is for drivers only.
func Middleware(secret string, drivers DriverResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				response.Unauthorized(w, "Missing bearer token")
				return
			}

			claims, err := ValidateToken(token, secret)
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			driver, err := drivers.DriverByAuthUser(r.Context(), token, claims.Subject)
			if err != nil {
				response.BadGateway(w, err.Error())
				return
			}
			if driver == nil {
				response.Forbidden(w, "No driver profile for this account")
				return
			}

			ctx := withSession(r.Context(), Session{Driver: *driver, Token: token})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext retrieves the driver session placed by Middleware.
func FromContext(ctx context.Context) (Session, bool) {
	sess, ok := ctx.Value(sessionKey).(Session)
	return sess, ok
}

func withSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
