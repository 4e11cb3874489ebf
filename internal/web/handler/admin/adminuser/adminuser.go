// Package adminuser provides back-office endpoints for managing
// administrative accounts and their role assignments.
package adminuser

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
	"github.com/playops/playops-admin/internal/db/models"
	"github.com/playops/playops-admin/internal/perm"
	"github.com/playops/playops-admin/internal/web/handler"
)

const (
	// Path is the base path for administrative account management.
	Path = handler.AdminPath + "/admins"

	// DefaultPageSize for pagination.
	DefaultPageSize = 25
)

// Service provides CRUD operations for administrative accounts.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	authSvc   *auth.Service
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// createRequest carries the new-admin fields.
type createRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Username  string `json:"username" validate:"required,min=3,max=100"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	RoleID    *uint  `json:"role_id"`
}

// assignRequest carries a role assignment.
type assignRequest struct {
	RoleID uint `json:"role_id" validate:"required"`
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

	app.Get(Path, auth.RequirePermission(perm.AdminsManage), s.List)
	app.Post(Path, auth.RequirePermission(perm.AdminsManage), s.Create)
	app.Put(Path+"/:id/role", auth.RequirePermission(perm.AdminsManage), s.AssignRole)
	app.Delete(Path+"/:id", auth.RequirePermission(perm.AdminsManage), s.Delete)
}

// List returns administrative accounts with their roles.
func (s *Service) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	pageSize := c.QueryInt("pageSize", DefaultPageSize)
	if pageSize < 1 || pageSize > 100 {
		pageSize = DefaultPageSize
	}

	var (
		admins []models.User
		total  int64
		query  = s.db.WithContext(c.UserContext()).Model(&models.User{}).
			Where("type = ?", models.AccountTypeAdmin)
	)

	if err := query.Count(&total).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to list admins")
	}

	if err := query.Preload("Role").
		Limit(pageSize).Offset((page - 1) * pageSize).Order("id").
		Find(&admins).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to list admins")
	}

	return c.JSON(fiber.Map{
		"admins":   admins,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}

// Create adds an administrative account.
func (s *Service) Create(c *fiber.Ctx) error {
	var req createRequest

	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form data")
	}

	if err := s.validator.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form data")
	}

	// the system role can only be seeded, never handed out
	if req.RoleID != nil {
		target, err := rolectl.Get(s.db.WithContext(c.UserContext()), *req.RoleID)
		if err != nil {
			return mapRoleError(err)
		}

		if target.IsSystem {
			return fiber.NewError(fiber.StatusForbidden, rolectl.ErrSystemRoleImmutable.Error())
		}
	}

	user, err := s.authSvc.Provider().CreateAdmin(
		c.UserContext(),
		req.Email,
		req.Username,
		req.Password,
		req.FirstName,
		req.LastName,
		req.RoleID,
	)
	if err != nil {
		if errors.Is(err, auth.ErrEmailOrUsernameExists) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}

		log.Error().Err(err).Msg("failed to create admin account")

		return fiber.NewError(fiber.StatusInternalServerError, "failed to create admin account")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"admin": user})
}

// AssignRole changes an administrative account's role. Takes effect for the
// holder at their next login; running sessions keep their pinned set.
func (s *Service) AssignRole(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid account id")
	}

	var req assignRequest

	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form data")
	}

	if err := s.validator.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form data")
	}

	if err := rolectl.Assign(s.db.WithContext(c.UserContext()), id, req.RoleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "account not found")
		}

		return mapRoleError(err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Delete soft deletes an administrative account. Holders of the system role
// cannot be deleted.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid account id")
	}

	var user models.User

	dbErr := s.db.WithContext(c.UserContext()).Preload("Role").First(&user, id).Error
	if errors.Is(dbErr, gorm.ErrRecordNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "account not found")
	}

	if dbErr != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load account")
	}

	if user.Type != models.AccountTypeAdmin {
		return fiber.NewError(fiber.StatusNotFound, "account not found")
	}

	if user.Role != nil && user.Role.IsSystem {
		return fiber.NewError(fiber.StatusForbidden, rolectl.ErrSystemRoleImmutable.Error())
	}

	if err := s.authSvc.Provider().DeleteUser(c.UserContext(), id); err != nil {
		log.Error().Err(err).Uint64("account_id", id).Msg("failed to delete admin account")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to delete admin account")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func mapRoleError(err error) error {
	switch {
	case errors.Is(err, rolectl.ErrRoleNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, rolectl.ErrSystemRoleImmutable):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	default:
		log.Error().Err(err).Msg("admin account operation failed")
		return fiber.NewError(fiber.StatusInternalServerError, "admin account operation failed")
	}
}
