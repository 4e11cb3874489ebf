// Package settings provides endpoints for platform settings.
package settings

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/playops/playops-admin/internal/auth"
	"github.com/playops/playops-admin/internal/config"
	settingctl "github.com/playops/playops-admin/internal/db/controller/setting"
	"github.com/playops/playops-admin/internal/perm"
	"github.com/playops/playops-admin/internal/web/handler"
)

const (
	// Path is the base path for platform settings.
	Path = handler.AdminPath + "/settings"

	// SettingPath addresses a single setting by name.
	SettingPath = Path + "/:name"
)

// Service provides CRUD operations for platform settings.
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

	app.Get(Path, auth.RequirePermission(perm.SettingsManage), s.List)
	app.Get(SettingPath, auth.RequirePermission(perm.SettingsManage), s.Get)
	app.Put(SettingPath, auth.RequirePermission(perm.SettingsManage), s.Set)
	app.Delete(SettingPath, auth.RequirePermission(perm.SettingsManage), s.Delete)
}

// List returns all settings.
func (s *Service) List(c *fiber.Ctx) error {
	settings, err := settingctl.GetAll(s.db.WithContext(c.UserContext()))
	if err != nil {
		log.Error().Err(err).Msg("failed to list settings")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to list settings")
	}

	out := make(fiber.Map, len(settings))
	for _, st := range settings {
		out[st.Name] = json.RawMessage(st.Value)
	}

	return c.JSON(fiber.Map{"settings": out})
}

// Get returns a single setting by name.
func (s *Service) Get(c *fiber.Ctx) error {
	st, err := settingctl.Get(s.db.WithContext(c.UserContext()), c.Params("name"))
	if err != nil {
		return mapControllerError(err)
	}

	return c.JSON(fiber.Map{"name": st.Name, "value": json.RawMessage(st.Value)})
}

// Set creates or updates a setting. The body must be valid JSON and is
// stored verbatim.
func (s *Service) Set(c *fiber.Ctx) error {
	body := c.Body()
	if !json.Valid(body) {
		return fiber.NewError(fiber.StatusBadRequest, "setting value must be valid JSON")
	}

	value := make([]byte, len(body))
	copy(value, body)

	st, err := settingctl.Set(s.db.WithContext(c.UserContext()), c.Params("name"), value)
	if err != nil {
		return mapControllerError(err)
	}

	return c.JSON(fiber.Map{"name": st.Name, "value": json.RawMessage(st.Value)})
}

// Delete removes a setting by name.
func (s *Service) Delete(c *fiber.Ctx) error {
	if err := settingctl.Delete(s.db.WithContext(c.UserContext()), c.Params("name")); err != nil {
		return mapControllerError(err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func mapControllerError(err error) error {
	switch {
	case errors.Is(err, settingctl.ErrSettingNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, settingctl.ErrSettingNameEmpty):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		log.Error().Err(err).Msg("settings operation failed")
		return fiber.NewError(fiber.StatusInternalServerError, "settings operation failed")
	}
}
