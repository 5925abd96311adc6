package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/leveldesignagency/OnTimelyDriverPortal/internal/models"
)

const testSecret = "unit-test-secret"

func signToken(t *testing.T, secret, subject string, expiresAt time.Time) string {
	t.Helper()
	claims := SessionClaims{
		Email: "driver@example.com",
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return signed
}

func TestValidateToken(t *testing.T) {
	future := time.Now().Add(time.Hour)

	t.Run("valid", func(t *testing.T) {
		token := signToken(t, testSecret, "u1", future)
		claims, err := ValidateToken(token, testSecret)
		if err != nil {
			t.Fatalf("ValidateToken returned error: %v", err)
		}
		if claims.Subject != "u1" {
			t.Errorf("Subject = %q, expected u1", claims.Subject)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := signToken(t, "other-secret", "u1", future)
		if _, err := ValidateToken(token, testSecret); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		token := signToken(t, testSecret, "u1", time.Now().Add(-time.Hour))
		if _, err := ValidateToken(token, testSecret); !errors.Is(err, ErrExpiredToken) {
			t.Errorf("expected ErrExpiredToken, got %v", err)
		}
	})

	t.Run("missing subject", func(t *testing.T) {
		token := signToken(t, testSecret, "", future)
		if _, err := ValidateToken(token, testSecret); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := ValidateToken("not.a.token", testSecret); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})
}

type fakeResolver struct {
	driver *models.Driver
	err    error

	gotToken string
	gotUser  string
}

func (f *fakeResolver) DriverByAuthUser(ctx context.Context, token, authUserID string) (*models.Driver, error) {
	f.gotToken = token
	f.gotUser = authUserID
	return f.driver, f.err
}

func runMiddleware(t *testing.T, resolver *fakeResolver, authorization string) (*httptest.ResponseRecorder, Session, bool) {
	t.Helper()

	var sess Session
	var found bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, found = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/trips", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()

	Middleware(testSecret, resolver)(next).ServeHTTP(rec, req)
	return rec, sess, found
}

func TestMiddleware_ValidSession(t *testing.T) {
	resolver := &fakeResolver{driver: &models.Driver{ID: "d1", AuthUserID: "u1", FullName: "Dana Petrov"}}
	token := signToken(t, testSecret, "u1", time.Now().Add(time.Hour))

	rec, sess, found := runMiddleware(t, resolver, "Bearer "+token)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}
	if !found {
		t.Fatal("session not placed in context")
	}
	if sess.Driver.ID != "d1" || sess.Token != token {
		t.Errorf("unexpected session %+v", sess)
	}
	if resolver.gotUser != "u1" {
		t.Errorf("resolver received auth user %q, expected u1", resolver.gotUser)
	}
	// The raw session token is forwarded so backend row-level security
	// applies to the lookup itself.
	if resolver.gotToken != token {
		t.Error("resolver did not receive the session token")
	}
}

func TestMiddleware_MissingToken(t *testing.T) {
	rec, _, _ := runMiddleware(t, &fakeResolver{}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, expected 401", rec.Code)
	}
}

func TestMiddleware_MalformedHeader(t *testing.T) {
	rec, _, _ := runMiddleware(t, &fakeResolver{}, "Token abc123")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, expected 401", rec.Code)
	}
}

func TestMiddleware_InvalidToken(t *testing.T) {
	token := signToken(t, "other-secret", "u1", time.Now().Add(time.Hour))
	rec, _, _ := runMiddleware(t, &fakeResolver{}, "Bearer "+token)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, expected 401", rec.Code)
	}
}

func TestMiddleware_NoDriverProfile(t *testing.T) {
	token := signToken(t, testSecret, "u1", time.Now().Add(time.Hour))
	rec, _, _ := runMiddleware(t, &fakeResolver{driver: nil}, "Bearer "+token)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, expected 403", rec.Code)
	}
}

func TestMiddleware_ResolverFailure(t *testing.T) {
	token := signToken(t, testSecret, "u1", time.Now().Add(time.Hour))
	resolver := &fakeResolver{err: errors.New("backend unreachable")}
	rec, _, _ := runMiddleware(t, resolver, "Bearer "+token)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, expected 502", rec.Code)
	}
}
