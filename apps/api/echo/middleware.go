package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"

	sessionsvc "github.com/trezcool/alama/services/session"
)

// revocationMiddleware rejects tokens revoked by logout. Must run after the JWT middleware.
func revocationMiddleware(sessions sessionsvc.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			if err = checkRevoked(ctx, sessions, claims); err != nil {
				return err
			}
			return next(ctx)
		}
	}
}

// idParam reads the ":id" path parameter. Malformed ids match no record.
func idParam(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id <= 0 {
		return 0, errHttpNotFound
	}
	return id, nil
}
