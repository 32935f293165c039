package middleware

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/lingopeer/lingopeer/internal/infra/appctx"
)

type identityClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// IdentityMiddleware extracts the caller identity from a token signed by
// the upstream auth service. The coordinator does not authenticate users;
// it only checks that the token was minted upstream. Browsers cannot set
// headers on a WebSocket handshake, so the token is also accepted as a
// query parameter. In debug mode bare id/name query parameters pass
// through for local testing.
func IdentityMiddleware(secret string, debug bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := tokenFrom(c)

			if raw == "" {
				if debug {
					return next(withDebugIdentity(c))
				}
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing identity token"})
			}

			token, err := jwt.ParseWithClaims(raw, &identityClaims{}, func(token *jwt.Token) (any, error) {
				return []byte(secret), nil
			})
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid or expired identity token"})
			}

			claims, ok := token.Claims.(*identityClaims)
			if !ok || !token.Valid || claims.Subject == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid identity token"})
			}

			c.SetRequest(
				c.Request().WithContext(
					appctx.WithIdentity(c.Request().Context(), appctx.Identity{
						ParticipantID: claims.Subject,
						DisplayName:   claims.Name,
					}),
				),
			)

			return next(c)
		}
	}
}

func tokenFrom(c echo.Context) string {
	if cookie, err := c.Cookie("jwt"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return c.QueryParam("token")
}

func withDebugIdentity(c echo.Context) echo.Context {
	id := c.QueryParam("id")
	if id == "" {
		id = uuid.NewString()
	}
	name := c.QueryParam("name")
	if name == "" {
		name = id
	}

	c.SetRequest(
		c.Request().WithContext(
			appctx.WithIdentity(c.Request().Context(), appctx.Identity{
				ParticipantID: id,
				DisplayName:   name,
			}),
		),
	)

	return c
}
