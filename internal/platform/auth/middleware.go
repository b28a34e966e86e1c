// Package auth provides an optional bearer-token gate for the deployment
// edge. The decision core itself never enforces the calling EHR's
// authentication; this middleware only verifies that an inbound request
// carries a JWT signed with the shared secret agreed with the caller.
package auth

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type contextKey string

const SubjectKey contextKey = "auth_subject"

type Claims struct {
	jwt.RegisteredClaims
}

// BearerGate returns middleware verifying an HS256-signed bearer token on
// every request. Requests without a valid token get 401 with a minimal JSON
// body; the handler chain never runs.
func BearerGate(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return unauthorized(c, "missing bearer token")
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
				return secret, nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !token.Valid {
				return unauthorized(c, "invalid bearer token")
			}

			c.Set(string(SubjectKey), claims.Subject)
			return next(c)
		}
	}
}

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, map[string]string{"error": msg})
}
