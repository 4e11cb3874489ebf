// Package dashboard provides the back-office summary endpoint.
package dashboard

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/playops/playops-admin/internal/auth"
	"github.com/playops/playops-admin/internal/config"
	"github.com/playops/playops-admin/internal/db/models"
	"github.com/playops/playops-admin/internal/perm"
	"github.com/playops/playops-admin/internal/web/handler"
)

// Path is the path of the dashboard endpoint.
const Path = handler.APIPath + "/dashboard"

// Service provides the dashboard endpoint.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db

	app.Get(Path, auth.RequirePermission(perm.DashboardView), s.Get)
}

// Get returns headline counters for the back office landing view.
func (s *Service) Get(c *fiber.Ctx) error {
	var (
		players       int64
		pendingKYC    int64
		openTickets   int64
		activeBonuses int64
	)

	db := s.db.WithContext(c.UserContext())

	if err := db.Model(&models.User{}).
		Where("type = ?", models.AccountTypePlayer).
		Count(&players).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load dashboard")
	}

	if err := db.Model(&models.User{}).
		Where("type = ? AND kyc_status = ?", models.AccountTypePlayer, models.KYCStatusPending).
		Count(&pendingKYC).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load dashboard")
	}

	if err := db.Model(&models.SupportTicket{}).
		Where("status = ?", models.TicketStatusOpen).
		Count(&openTickets).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load dashboard")
	}

	if err := db.Model(&models.Bonus{}).
		Where("active = ?", true).
		Count(&activeBonuses).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load dashboard")
	}

	return c.JSON(fiber.Map{
		"players":        players,
		"pending_kyc":    pendingKYC,
		"open_tickets":   openTickets,
		"active_bonuses": activeBonuses,
	})
}
