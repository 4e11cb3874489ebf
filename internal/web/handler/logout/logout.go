// Package logout provides the logout endpoint.
package logout

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/playops/playops-admin/internal/auth"
	"github.com/playops/playops-admin/internal/config"
	"github.com/playops/playops-admin/internal/web/handler"
	"github.com/playops/playops-admin/internal/web/session"
)

// Path is the path of the logout endpoint.
const Path = handler.APIPath + "/logout"

// Service is the logout handler service.
type Service struct {
	handler.Service
	cfg     *config.Config
	authSvc *auth.Service
}

// Handler is the logout handler.
var Handler = Service{}

// Init initializes the logout handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, authSvc *auth.Service) {
	if app == nil || cfg == nil || authSvc == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.authSvc = authSvc

	// logging out while logged out is fine, so no auth requirement here
	app.Post(Path, s.Post)
}

// Post clears the session. Idempotent: a second logout is a no-op.
func (s *Service) Post(c *fiber.Ctx) error {
	if sid := c.Cookies(session.CookieName); sid != "" {
		s.authSvc.Logout(c.UserContext(), sid)
	}

	c.Cookie(&fiber.Cookie{
		Name:     session.CookieName,
		Value:    "",
		MaxAge:   -1,
		Secure:   true,
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return c.SendStatus(fiber.StatusNoContent)
}
