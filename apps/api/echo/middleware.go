package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"
)

const bearerScheme = "Bearer"

// middleware returns the JWT auth middleware: it validates the bearer token and stores its Claims in the context.
func (a authenticator) middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			header := ctx.Request().Header.Get(echo.HeaderAuthorization)
			scheme, raw, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, bearerScheme) || strings.TrimSpace(raw) == "" {
				return errMissingToken
			}

			claims, err := a.parseToken(strings.TrimSpace(raw))
			if err != nil {
				return err
			}
			ctx.Set(contextClaimsKey, claims)
			return next(ctx)
		}
	}
}
