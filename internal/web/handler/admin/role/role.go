// Package role provides back-office endpoints for managing roles and their
// permission assignments. The system role is immutable here regardless of the
// acting session's permissions; see the role controller for the guard.
package role

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/playops/playops-admin/internal/auth"
	"github.com/playops/playops-admin/internal/config"
	rolectl "github.com/playops/playops-admin/internal/db/controller/role"
	"github.com/playops/playops-admin/internal/perm"
	"github.com/playops/playops-admin/internal/web/handler"
)

// Path is the base path for role management.
const Path = handler.AdminPath + "/roles"

// Service provides CRUD operations for roles.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// upsertRequest carries the editable role fields.
type upsertRequest struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Description string   `json:"description" validate:"max=255"`
	Permissions []string `json:"permissions"`
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

	app.Get(Path, auth.RequirePermission(perm.RolesManage), s.List)
	app.Get(Path+"/permissions", auth.RequirePermission(perm.RolesManage), s.Catalog)
	app.Post(Path, auth.RequirePermission(perm.RolesManage), s.Create)
	app.Put(Path+"/:id", auth.RequirePermission(perm.RolesManage), s.Update)
	app.Delete(Path+"/:id", auth.RequirePermission(perm.RolesManage), s.Delete)
}

// List returns all roles with their permission sets.
func (s *Service) List(c *fiber.Ctx) error {
	roles, err := rolectl.GetAll(s.db.WithContext(c.UserContext()))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to list roles")
	}

	out := make([]fiber.Map, 0, len(roles))

	for _, r := range roles {
		perms, err := rolectl.Permissions(s.db.WithContext(c.UserContext()), r.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to list roles")
		}

		out = append(out, fiber.Map{
			"role":        r,
			"permissions": perms,
		})
	}

	return c.JSON(fiber.Map{"roles": out})
}

// Catalog returns the closed permission vocabulary for role editors.
func (s *Service) Catalog(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"permissions": perm.All()})
}

// Create adds a role.
func (s *Service) Create(c *fiber.Ctx) error {
	req, err := s.parseUpsert(c)
	if err != nil {
		return err
	}

	r, err := rolectl.Create(
		s.db.WithContext(c.UserContext()),
		req.Name,
		req.Description,
		perm.FromStrings(req.Permissions),
	)
	if err != nil {
		return mapControllerError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"role": r})
}

// Update renames a role and replaces its permissions.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := s.idFromParam(c)
	if err != nil {
		return err
	}

	req, err := s.parseUpsert(c)
	if err != nil {
		return err
	}

	r, err := rolectl.Update(
		s.db.WithContext(c.UserContext()),
		id,
		req.Name,
		req.Description,
		perm.FromStrings(req.Permissions),
	)
	if err != nil {
		return mapControllerError(err)
	}

	return c.JSON(fiber.Map{"role": r})
}

// Delete removes a role.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := s.idFromParam(c)
	if err != nil {
		return err
	}

	if err := rolectl.Delete(s.db.WithContext(c.UserContext()), id); err != nil {
		return mapControllerError(err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Service) parseUpsert(c *fiber.Ctx) (*upsertRequest, error) {
	var req upsertRequest

	if err := c.BodyParser(&req); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid form data")
	}

	if err := s.validator.Struct(req); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid form data")
	}

	// reject tokens outside the vocabulary instead of dropping them silently
	for _, raw := range req.Permissions {
		if !perm.Valid(perm.Permission(raw)) {
			return nil, fiber.NewError(fiber.StatusBadRequest, rolectl.ErrUnknownPermission.Error())
		}
	}

	return &req, nil
}

func (s *Service) idFromParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid role id")
	}

	return uint(id), nil
}

func mapControllerError(err error) error {
	switch {
	case errors.Is(err, rolectl.ErrRoleNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, rolectl.ErrSystemRoleImmutable):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case errors.Is(err, rolectl.ErrRoleInUse),
		errors.Is(err, rolectl.ErrRoleNameExists):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, rolectl.ErrRoleNameEmpty),
		errors.Is(err, rolectl.ErrUnknownPermission):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		log.Error().Err(err).Msg("role operation failed")
		return fiber.NewError(fiber.StatusInternalServerError, "role operation failed")
	}
}
