// Package handlers exposes the storefront and account API over echo.
package handlers

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"

	appctx "github.com/Ramsey-B/peony/pkg/context"
)

// GetUserID extracts the authenticated user from context
func GetUserID(c echo.Context) (string, error) {
	userID := appctx.GetUserID(c.Request().Context())
	if userID == "" {
		return "", Unauthorized("authentication required")
	}
	return userID, nil
}

// GetLocale returns the negotiated request locale
func GetLocale(c echo.Context, fallback string) string {
	if locale := appctx.GetLocale(c.Request().Context()); locale != "" {
		return locale
	}
	return fallback
}

// SuccessResponse returns a 200 OK with data
func SuccessResponse(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, data)
}

// NoContentResponse returns a 204 No Content
func NoContentResponse(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

// BadRequest returns a 400 Bad Request error
func BadRequest(message string) error {
	return httperror.NewHTTPError(http.StatusBadRequest, message)
}

// Unauthorized returns a 401 Unauthorized error
func Unauthorized(message string) error {
	return httperror.NewHTTPError(http.StatusUnauthorized, message)
}

func Forbidden(message string) error {
	return httperror.NewHTTPError(http.StatusForbidden, message)
}
