package middleware

import (
	appctx "github.com/Ramsey-B/peony/pkg/context"
	"github.com/labstack/echo/v4"
)

// TestAuth trusts the X-User-ID header. Only used when AUTH_ENABLED=false.
func TestAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if userID := c.Request().Header.Get(HeaderUserID); userID != "" {
				ctx := appctx.SetUserID(c.Request().Context(), userID)
				c.SetRequest(c.Request().WithContext(ctx))
			}
			return next(c)
		}
	}
}
