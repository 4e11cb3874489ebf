// Package note provides back-office endpoints for player notes.
package note

import (
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
	// PlayerNotesPath lists and creates notes under a player.
	PlayerNotesPath = handler.AdminPath + "/players/:id/notes"
	// NotePath addresses one note.
	NotePath = handler.AdminPath + "/notes/:id"
)

// Service provides CRUD operations for player notes.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// createRequest is the new-note payload.
type createRequest struct {
	Body   string `json:"body" validate:"required"`
	Pinned bool   `json:"pinned"`
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

	app.Get(PlayerNotesPath, auth.RequirePermission(perm.PlayerNotes), s.List)
	app.Post(PlayerNotesPath, auth.RequirePermission(perm.PlayerNotes), s.Create)
	app.Delete(NotePath, auth.RequirePermission(perm.PlayerNotes), s.Delete)
}

// List returns the notes for a player, pinned first.
func (s *Service) List(c *fiber.Ctx) error {
	playerID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid player id")
	}

	var notes []models.PlayerNote

	if err := s.db.WithContext(c.UserContext()).
		Where("player_id = ?", playerID).
		Order("pinned DESC, created_at DESC").
		Find(&notes).Error; err != nil {
		log.Error().Err(err).Uint64("player_id", playerID).Msg("failed to list notes")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to list notes")
	}

	return c.JSON(fiber.Map{"notes": notes})
}

// Create attaches a note to a player.
func (s *Service) Create(c *fiber.Ctx) error {
	playerID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid player id")
	}

	var req createRequest

	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form data")
	}

	if err := s.validator.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form data")
	}

	sess := auth.FromContext(c)

	note := models.PlayerNote{
		PlayerID: playerID,
		AuthorID: sess.User.ID,
		Body:     req.Body,
		Pinned:   req.Pinned,
	}

	if err := s.db.WithContext(c.UserContext()).Create(&note).Error; err != nil {
		log.Error().Err(err).Uint64("player_id", playerID).Msg("failed to create note")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to create note")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"note": note})
}

// Delete removes a note.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid note id")
	}

	result := s.db.WithContext(c.UserContext()).Delete(&models.PlayerNote{}, id)
	if result.Error != nil {
		log.Error().Err(result.Error).Uint64("note_id", id).Msg("failed to delete note")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to delete note")
	}

	if result.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "note not found")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
