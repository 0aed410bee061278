package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/peony/pkg/models"
	"github.com/Ramsey-B/peony/pkg/utils"
)

type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	ApplyPatch(ctx context.Context, id string, patch models.ProfilePatch) (*models.User, error)
}

// UserHandler serves the signed-in customer's profile and address book
type UserHandler struct {
	users         UserStore
	sessionCookie string
}

func NewUserHandler(users UserStore, sessionCookie string) *UserHandler {
	return &UserHandler{users: users, sessionCookie: sessionCookie}
}

// RegisterRoutes mounts logout on public and the profile routes on authed.
func (h *UserHandler) RegisterRoutes(public, authed *echo.Group) {
	public.POST("/users/logout", h.Logout)

	u := authed.Group("/users")
	u.GET("/:id", h.Get)
	u.PATCH("/:id", h.Patch)
}

// Get handles GET /users/:id
func (h *UserHandler) Get(c echo.Context) error {
	id, err := h.self(c)
	if err != nil {
		return err
	}

	user, err := h.users.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return SuccessResponse(c, user)
}

// Patch handles PATCH /users/:id. Profile fields and the address book are saved together.
func (h *UserHandler) Patch(c echo.Context) error {
	id, err := h.self(c)
	if err != nil {
		return err
	}

	patch, err := utils.BindRequest[models.ProfilePatch](c)
	if err != nil {
		return err
	}

	user, err := h.users.ApplyPatch(c.Request().Context(), id, patch)
	if err != nil {
		return err
	}
	return SuccessResponse(c, user)
}

// Logout handles POST /users/logout by expiring the session cookie
func (h *UserHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     h.sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	return NoContentResponse(c)
}

func (h *UserHandler) self(c echo.Context) (string, error) {
	userID, err := GetUserID(c)
	if err != nil {
		return "", err
	}
	if c.Param("id") != userID {
		return "", Forbidden("cannot access another user's profile")
	}
	return userID, nil
}
