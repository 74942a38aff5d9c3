package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/darasa/core/user"
)

// roleMiddleware resolves the token's subject to their current User record and
// only lets holders of one of the given roles through. Resolution comes first
// so a subject that no longer exists is rejected as unauthenticated, not
// forbidden; the resolved User is cached on the context for the handler.
func roleMiddleware(svc user.ServiceInterface, roles ...user.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx, svc)
			if err != nil {
				return err
			}
			for _, role := range roles {
				if usr.Role == role {
					return next(ctx)
				}
			}
			return errHTTPForbidden
		}
	}
}
