// Package player provides back-office endpoints for managing player accounts:
// listing, inspection, profile edits, KYC decisions, bans, and deletion.
package player

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/playops/playops-admin/internal/auth"
	"github.com/playops/playops-admin/internal/config"
	"github.com/playops/playops-admin/internal/db/models"
	"github.com/playops/playops-admin/internal/perm"
	"github.com/playops/playops-admin/internal/web/handler"
)

const (
	// Path is the base path for player management.
	Path = handler.AdminPath + "/players"

	// DefaultPageSize for pagination.
	DefaultPageSize = 25
)

// Service provides CRUD operations for player accounts.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	authSvc   *auth.Service
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// updateRequest carries player fields an agent may edit.
type updateRequest struct {
	Username  *string `json:"username" validate:"omitempty,min=3,max=100"`
	FirstName *string `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
	Country   *string `json:"country" validate:"omitempty,len=2"`
}

// kycRequest carries a KYC review decision.
type kycRequest struct {
	Status models.KYCStatus `json:"status" validate:"required,oneof=pending verified rejected"`
}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authSvc *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.authSvc = authSvc
	s.validator = validator.New()

	app.Get(Path, auth.RequirePermission(perm.PlayerList), s.List)
	app.Get(Path+"/:id", auth.RequirePermission(perm.PlayerView), s.Get)
	app.Put(Path+"/:id", auth.RequirePermission(perm.PlayerUpdate), s.Update)
	app.Post(Path+"/:id/kyc", auth.RequirePermission(perm.KYCReview), s.ReviewKYC)
	app.Post(Path+"/:id/ban", auth.RequirePermission(perm.PlayerBan), s.Ban)
	app.Post(Path+"/:id/unban", auth.RequirePermission(perm.PlayerBan), s.Unban)
	app.Delete(Path+"/:id", auth.RequirePermission(perm.PlayerDelete), s.Delete)
}

// List returns players with pagination and optional search.
func (s *Service) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	pageSize := c.QueryInt("pageSize", DefaultPageSize)
	if pageSize < 1 || pageSize > 100 {
		pageSize = DefaultPageSize
	}

	search := c.Query("search", "")

	users, total, err := s.authSvc.Provider().ListUsers(
		c.UserContext(),
		models.AccountTypePlayer,
		search,
		pageSize,
		(page-1)*pageSize,
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to list players")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to list players")
	}

	return c.JSON(fiber.Map{
		"players":  users,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}

// Get returns one player.
func (s *Service) Get(c *fiber.Ctx) error {
	user, err := s.playerFromParam(c)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"player": user})
}

// Update edits player profile fields.
func (s *Service) Update(c *fiber.Ctx) error {
	user, err := s.playerFromParam(c)
	if err != nil {
		return err
	}

	var req updateRequest

	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form data")
	}

	if err := s.validator.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form data")
	}

	updated, err := s.authSvc.Provider().UpdateProfile(c.UserContext(), user.ID, auth.ProfileUpdate{
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Country:   req.Country,
	})
	if err != nil {
		if errors.Is(err, auth.ErrEmailOrUsernameExists) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}

		log.Error().Err(err).Uint64("player_id", user.ID).Msg("failed to update player")

		return fiber.NewError(fiber.StatusInternalServerError, "failed to update player")
	}

	return c.JSON(fiber.Map{"player": updated})
}

// ReviewKYC records a KYC decision for the player.
func (s *Service) ReviewKYC(c *fiber.Ctx) error {
	user, err := s.playerFromParam(c)
	if err != nil {
		return err
	}

	var req kycRequest

	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form data")
	}

	if err := s.validator.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form data")
	}

	if err := s.db.WithContext(c.UserContext()).Model(&models.User{}).
		Where("id = ?", user.ID).
		Update("kyc_status", req.Status).Error; err != nil {
		log.Error().Err(err).Uint64("player_id", user.ID).Msg("failed to update kyc status")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to update kyc status")
	}

	sess := auth.FromContext(c)
	log.Info().Uint64("player_id", user.ID).Uint64("reviewer_id", sess.User.ID).
		Str("status", string(req.Status)).Msg("kyc decision recorded")

	user.KYCStatus = req.Status

	return c.JSON(fiber.Map{"player": user})
}

// Ban deactivates the player account.
func (s *Service) Ban(c *fiber.Ctx) error {
	return s.setActive(c, false)
}

// Unban reactivates the player account.
func (s *Service) Unban(c *fiber.Ctx) error {
	return s.setActive(c, true)
}

// Delete soft deletes the player account.
func (s *Service) Delete(c *fiber.Ctx) error {
	user, err := s.playerFromParam(c)
	if err != nil {
		return err
	}

	if err := s.authSvc.Provider().DeleteUser(c.UserContext(), user.ID); err != nil {
		log.Error().Err(err).Uint64("player_id", user.ID).Msg("failed to delete player")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to delete player")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Service) setActive(c *fiber.Ctx, active bool) error {
	user, err := s.playerFromParam(c)
	if err != nil {
		return err
	}

	provider := s.authSvc.Provider()

	if active {
		err = provider.Unban(c.UserContext(), user.ID)
	} else {
		err = provider.Ban(c.UserContext(), user.ID)
	}

	if err != nil {
		log.Error().Err(err).Uint64("player_id", user.ID).Msg("failed to change player active state")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to change player state")
	}

	user.Active = active

	return c.JSON(fiber.Map{"player": user})
}

// playerFromParam loads the player referenced by the :id route parameter.
// Administrative accounts are not reachable through this handler.
func (s *Service) playerFromParam(c *fiber.Ctx) (*models.User, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid player id")
	}

	user, err := s.authSvc.Provider().GetUserByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "player not found")
		}

		return nil, fiber.NewError(fiber.StatusInternalServerError, "failed to load player")
	}

	if user.Type != models.AccountTypePlayer {
		return nil, fiber.NewError(fiber.StatusNotFound, "player not found")
	}

	return user, nil
}
