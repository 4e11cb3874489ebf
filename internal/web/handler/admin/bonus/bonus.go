// Package bonus provides back-office endpoints for bonus campaigns.
package bonus

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/playops/playops-admin/internal/auth"
	"github.com/playops/playops-admin/internal/config"
	"github.com/playops/playops-admin/internal/db/models"
	"github.com/playops/playops-admin/internal/db/revert"
	"github.com/playops/playops-admin/internal/perm"
	"github.com/playops/playops-admin/internal/web/handler"
)

// Path is the base path for bonus management.
const Path = handler.AdminPath + "/bonuses"

// Service provides CRUD operations for bonus campaigns.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// upsertRequest carries the editable campaign fields.
type upsertRequest struct {
	Code        string     `json:"code" validate:"required,max=50"`
	Name        string     `json:"name" validate:"required,max=100"`
	Description string     `json:"description" validate:"max=255"`
	Amount      int64      `json:"amount" validate:"required,gt=0"`
	WagerFactor int        `json:"wager_factor" validate:"required,gte=1"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.validator = validator.New()

	app.Get(Path, auth.RequirePermission(perm.BonusView), s.List)
	app.Get(Path+"/:id", auth.RequirePermission(perm.BonusView), s.Get)
	app.Post(Path, auth.RequirePermission(perm.BonusManage), s.Create)
	app.Put(Path+"/:id", auth.RequirePermission(perm.BonusManage), s.Update)
	app.Post(Path+"/:id/activate", auth.RequirePermission(perm.BonusManage), s.Activate)
	app.Post(Path+"/:id/deactivate", auth.RequirePermission(perm.BonusManage), s.Deactivate)
	app.Delete(Path+"/:id", auth.RequirePermission(perm.BonusManage), s.Delete)
}

// List returns all campaigns.
func (s *Service) List(c *fiber.Ctx) error {
	var bonuses []models.Bonus

	if err := s.db.WithContext(c.UserContext()).Order("id").Find(&bonuses).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to list bonuses")
	}

	return c.JSON(fiber.Map{"bonuses": bonuses})
}

// Get returns one campaign.
func (s *Service) Get(c *fiber.Ctx) error {
	bonus, err := s.bonusFromParam(c)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"bonus": bonus})
}

// Create adds a campaign, initially inactive.
func (s *Service) Create(c *fiber.Ctx) error {
	var req upsertRequest

	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form data")
	}

	if err := s.validator.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form data")
	}

	bonus := models.Bonus{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Amount:      req.Amount,
		WagerFactor: req.WagerFactor,
		Active:      false,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
	}

	if err := s.db.WithContext(c.UserContext()).Create(&bonus).Error; err != nil {
		log.Error().Err(err).Str("code", req.Code).Msg("failed to create bonus")
		return fiber.NewError(fiber.StatusConflict, "failed to create bonus")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"bonus": bonus})
}

// Update edits a campaign.
func (s *Service) Update(c *fiber.Ctx) error {
	bonus, err := s.bonusFromParam(c)
	if err != nil {
		return err
	}

	var req upsertRequest

	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form data")
	}

	if err := s.validator.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form data")
	}

	err = revert.Save(s.db.WithContext(c.UserContext()), bonus, func(b *models.Bonus) {
		b.Code = req.Code
		b.Name = req.Name
		b.Description = req.Description
		b.Amount = req.Amount
		b.WagerFactor = req.WagerFactor
		b.StartsAt = req.StartsAt
		b.EndsAt = req.EndsAt
	})
	if err != nil {
		log.Error().Err(err).Uint("bonus_id", bonus.ID).Msg("failed to update bonus")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to update bonus")
	}

	return c.JSON(fiber.Map{"bonus": bonus})
}

// Activate opens the campaign for claims.
func (s *Service) Activate(c *fiber.Ctx) error {
	return s.setActive(c, true)
}

// Deactivate closes the campaign.
func (s *Service) Deactivate(c *fiber.Ctx) error {
	return s.setActive(c, false)
}

// Delete removes a campaign.
func (s *Service) Delete(c *fiber.Ctx) error {
	bonus, err := s.bonusFromParam(c)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(c.UserContext()).Delete(&models.Bonus{}, bonus.ID).Error; err != nil {
		log.Error().Err(err).Uint("bonus_id", bonus.ID).Msg("failed to delete bonus")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to delete bonus")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Service) setActive(c *fiber.Ctx, active bool) error {
	bonus, err := s.bonusFromParam(c)
	if err != nil {
		return err
	}

	err = revert.Updates(s.db.WithContext(c.UserContext()), bonus,
		map[string]interface{}{"active": active},
		func(b *models.Bonus) { b.Active = active },
	)
	if err != nil {
		log.Error().Err(err).Uint("bonus_id", bonus.ID).Msg("failed to change bonus state")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to change bonus state")
	}

	return c.JSON(fiber.Map{"bonus": bonus})
}

func (s *Service) bonusFromParam(c *fiber.Ctx) (*models.Bonus, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid bonus id")
	}

	var bonus models.Bonus

	dbErr := s.db.WithContext(c.UserContext()).First(&bonus, uint(id)).Error
	if errors.Is(dbErr, gorm.ErrRecordNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "bonus not found")
	}

	if dbErr != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "failed to load bonus")
	}

	return &bonus, nil
}
