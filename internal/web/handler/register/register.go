// Package register provides the self-service player registration endpoint.
// A successful registration behaves exactly like a successful login with the
// newly created identity.
package register

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/playops/playops-admin/internal/auth"
	"github.com/playops/playops-admin/internal/config"
	"github.com/playops/playops-admin/internal/token"
	"github.com/playops/playops-admin/internal/web/handler"
	"github.com/playops/playops-admin/internal/web/handler/login"
)

// Path is the path of the registration endpoint.
const Path = handler.APIPath + "/register"

// Service is the registration handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	authSvc   *auth.Service
	validator *validator.Validate
}

// Handler is the registration handler.
var Handler = Service{}

// Init initializes the registration handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, authSvc *auth.Service) error {
	if app == nil || cfg == nil || authSvc == nil {
		return errors.New("app, cfg or auth service is nil")
	}

	s.cfg = cfg
	s.authSvc = authSvc
	s.validator = validator.New()

	app.Post(Path, s.Post)

	return nil
}

// Post handles the registration form submission.
func (s *Service) Post(c *fiber.Ctx) error {
	var in auth.RegisterInput

	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form data")
	}

	if err := s.validator.Struct(in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form data")
	}

	if len(in.Password) < s.cfg.Auth.MinPasswordLength {
		return fiber.NewError(fiber.StatusBadRequest, "password too short")
	}

	sid, err := token.NewSessionID()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate session ID")
		return fiber.NewError(fiber.StatusInternalServerError, "internal server error")
	}

	sess, err := s.authSvc.Register(c.UserContext(), sid, in)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailOrUsernameExists):
			return fiber.NewError(fiber.StatusConflict, err.Error())
		case errors.Is(err, auth.ErrAccountUnavailable):
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		default:
			log.Error().Err(err).Msg("registration failed")
			return fiber.NewError(fiber.StatusInternalServerError, "internal server error")
		}
	}

	login.SetSessionCookie(c, s.cfg, sid)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":        sess.User,
		"permissions": sess.Permissions,
	})
}
