// Package login provides the login endpoint: the only way a session comes
// into existence besides registration.
package login

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/playops/playops-admin/internal/auth"
	"github.com/playops/playops-admin/internal/config"
	"github.com/playops/playops-admin/internal/perm"
	"github.com/playops/playops-admin/internal/token"
	"github.com/playops/playops-admin/internal/web/handler"
	"github.com/playops/playops-admin/internal/web/session"
)

// Path is the path of the login endpoint.
const Path = handler.APIPath + "/login"

// Service is the login handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	authSvc   *auth.Service
	validator *validator.Validate
}

// Handler is the login handler.
var Handler = Service{}

// request is the login form payload.
type request struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	OTPCode  string `json:"otp_code"`
}

// response is the successful login payload.
type response struct {
	User        interface{}       `json:"user"`
	Permissions []perm.Permission `json:"permissions"`
}

// Init initializes the login handler.
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

// Post handles the login form submission.
func (s *Service) Post(c *fiber.Ctx) error {
	var req request

	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form data")
	}

	if err := s.validator.Struct(req); err != nil {
		// same generic message as a failed credential check; the login
		// endpoint never explains what exactly was wrong
		return fiber.NewError(fiber.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
	}

	sid, err := token.NewSessionID()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate session ID")
		return fiber.NewError(fiber.StatusInternalServerError, "internal server error")
	}

	sess, err := s.authSvc.Login(c.UserContext(), sid, req.Email, req.Password, req.OTPCode)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrThrottled):
			return fiber.NewError(fiber.StatusTooManyRequests, err.Error())
		case errors.Is(err, auth.ErrAccountUnavailable):
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		default:
			return fiber.NewError(fiber.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
		}
	}

	SetSessionCookie(c, s.cfg, sid)

	return c.JSON(response{
		User:        sess.User,
		Permissions: sess.Permissions,
	})
}

// SetSessionCookie writes the session id cookie for an established session.
// Shared with the register handler.
func SetSessionCookie(c *fiber.Ctx, cfg *config.Config, sid string) {
	cookie := &fiber.Cookie{
		Name:     session.CookieName,
		Value:    sid,
		MaxAge:   int(cfg.Webserver.Session.ExpiryTime.Seconds()),
		Secure:   true,
		HTTPOnly: true,
		SameSite: "Lax",
	}

	if cfg.DevMode {
		cookie.Secure = false
	}

	c.Cookie(cookie)
}
