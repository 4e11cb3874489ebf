// Package profile provides self-service endpoints for the authenticated
// account: viewing and editing its own identity and changing its password.
// Profile edits flow through the session store's identity entry; the
// permission set and token are not reachable from this path.
package profile

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/playops/playops-admin/internal/auth"
	"github.com/playops/playops-admin/internal/config"
	"github.com/playops/playops-admin/internal/web/handler"
	"github.com/playops/playops-admin/internal/web/session"
)

// Path is the base path for profile endpoints.
const Path = handler.APIPath + "/profile"

// Service provides the profile endpoints.
type Service struct {
	handler.Service
	cfg       *config.Config
	authSvc   *auth.Service
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// passwordRequest is the change-password payload.
type passwordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, authSvc *auth.Service) error {
	if app == nil || cfg == nil || authSvc == nil {
		return errors.New("app, cfg or auth service is nil")
	}

	s.cfg = cfg
	s.authSvc = authSvc
	s.validator = validator.New()

	app.Get(Path, auth.RequireAuthenticated(), s.Get)
	app.Put(Path, auth.RequireAuthenticated(), s.Update)
	app.Post(Path+"/password", auth.RequireAuthenticated(), s.ChangePassword)

	return nil
}

// Get returns the session's identity and permission set.
func (s *Service) Get(c *fiber.Ctx) error {
	sess := auth.FromContext(c)

	return c.JSON(fiber.Map{
		"user":        sess.User,
		"permissions": sess.Permissions,
	})
}

// Update merges profile fields into the account and re-persists the session
// identity.
func (s *Service) Update(c *fiber.Ctx) error {
	sess := auth.FromContext(c)

	var in auth.ProfileUpdate

	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form data")
	}

	if err := s.validator.Struct(in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form data")
	}

	sid := c.Cookies(session.CookieName)

	user, err := s.authSvc.UpdateIdentity(c.UserContext(), sid, sess.User.ID, in)
	if err != nil {
		if errors.Is(err, session.ErrNotAuthenticated) {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}

		if errors.Is(err, auth.ErrEmailOrUsernameExists) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}

		return fiber.NewError(fiber.StatusInternalServerError, "failed to update profile")
	}

	return c.JSON(fiber.Map{"user": user})
}

// ChangePassword changes the account password after verifying the old one.
func (s *Service) ChangePassword(c *fiber.Ctx) error {
	sess := auth.FromContext(c)

	var req passwordRequest

	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form data")
	}

	if err := s.validator.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form data")
	}

	if len(req.NewPassword) < s.cfg.Auth.MinPasswordLength {
		return fiber.NewError(fiber.StatusBadRequest, "password too short")
	}

	err := s.authSvc.Provider().ChangePassword(c.UserContext(), sess.User.ID, req.OldPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidOldPassword) {
			return fiber.NewError(fiber.StatusForbidden, err.Error())
		}

		return fiber.NewError(fiber.StatusInternalServerError, "failed to change password")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
