package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/lingopeer/lingopeer/internal/infra/appctx"
)

const testSecret = "test-secret"

func mintToken(t *testing.T, secret, subject, name string, expiry time.Duration) string {
	t.Helper()

	claims := identityClaims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

// runIdentity sends one request through the middleware and reports the
// response plus the identity the handler observed, if it ran.
func runIdentity(t *testing.T, debug bool, mutate func(*http.Request)) (*httptest.ResponseRecorder, *appctx.Identity) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	mutate(req)
	rec := httptest.NewRecorder()

	var seen *appctx.Identity
	handler := IdentityMiddleware(testSecret, debug)(func(c echo.Context) error {
		if ident, ok := appctx.IdentityFrom(c.Request().Context()); ok {
			seen = &ident
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(e.NewContext(req, rec)); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	return rec, seen
}

func TestIdentityFromCookie(t *testing.T) {
	token := mintToken(t, testSecret, "user-1", "Alice", time.Hour)

	rec, ident := runIdentity(t, false, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: "jwt", Value: token})
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ident == nil {
		t.Fatal("handler saw no identity")
	}
	if ident.ParticipantID != "user-1" || ident.DisplayName != "Alice" {
		t.Errorf("identity = %+v", ident)
	}
}

func TestIdentityFromQueryParam(t *testing.T) {
	// WebSocket handshakes cannot carry custom headers from browsers.
	token := mintToken(t, testSecret, "user-2", "Bob", time.Hour)

	rec, ident := runIdentity(t, false, func(req *http.Request) {
		q := req.URL.Query()
		q.Set("token", token)
		req.URL.RawQuery = q.Encode()
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ident == nil || ident.ParticipantID != "user-2" {
		t.Errorf("identity = %+v", ident)
	}
}

func TestIdentityRejected(t *testing.T) {
	for name, token := range map[string]string{
		"wrong secret": mintToken(t, "other-secret", "user-3", "Mallory", time.Hour),
		"expired":      mintToken(t, testSecret, "user-3", "Late", -time.Hour),
		"no subject":   mintToken(t, testSecret, "", "Anon", time.Hour),
		"garbage":      "not.a.jwt",
	} {
		t.Run(name, func(t *testing.T) {
			rec, ident := runIdentity(t, false, func(req *http.Request) {
				req.AddCookie(&http.Cookie{Name: "jwt", Value: token})
			})

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
			if ident != nil {
				t.Errorf("handler ran with identity %+v", ident)
			}
		})
	}
}

func TestIdentityMissingToken(t *testing.T) {
	rec, ident := runIdentity(t, false, func(*http.Request) {})

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if ident != nil {
		t.Errorf("handler ran with identity %+v", ident)
	}
}

func TestIdentityDebugFallback(t *testing.T) {
	rec, ident := runIdentity(t, true, func(req *http.Request) {
		q := req.URL.Query()
		q.Set("id", "dev-1")
		q.Set("name", "Dev")
		req.URL.RawQuery = q.Encode()
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ident == nil || ident.ParticipantID != "dev-1" || ident.DisplayName != "Dev" {
		t.Errorf("identity = %+v", ident)
	}
}

func TestIdentityDebugGeneratesID(t *testing.T) {
	rec, ident := runIdentity(t, true, func(*http.Request) {})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ident == nil || ident.ParticipantID == "" {
		t.Fatal("debug mode did not generate an identity")
	}
	if ident.DisplayName != ident.ParticipantID {
		t.Errorf("default display name %q should mirror the generated id %q", ident.DisplayName, ident.ParticipantID)
	}
}
