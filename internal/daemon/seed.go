package daemon

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/playops/playops-admin/internal/config"
	"github.com/playops/playops-admin/internal/db/models"
	"github.com/playops/playops-admin/internal/perm"
)

const (
	// SuperadminRoleName is the undeletable role holding every permission.
	SuperadminRoleName = "superadmin"

	// SupportRoleName is a starter role for support staff.
	SupportRoleName = "support"

	defaultAdminEmail    = "admin@localhost"
	defaultAdminUsername = "admin"
	defaultAdminPassword = "changeme"
)

// seed brings a fresh database to a usable state: the full permission
// catalog, the system role, a support starter role, and one admin account.
// It is idempotent and safe to run at every startup.
func seed(_ *config.Config, db *gorm.DB) error {
	if err := seedPermissions(db); err != nil {
		return err
	}

	superadmin, err := seedRole(db, SuperadminRoleName, "full access to every back office area", true, perm.All())
	if err != nil {
		return err
	}

	_, err = seedRole(db, SupportRoleName, "player support and ticket handling", false, []perm.Permission{
		perm.DashboardView,
		perm.PlayerList,
		perm.PlayerView,
		perm.PlayerNotes,
		perm.TicketView,
		perm.TicketManage,
	})
	if err != nil {
		return err
	}

	return seedAdmin(db, superadmin)
}

// seedPermissions inserts any catalog entries the database does not have yet.
func seedPermissions(db *gorm.DB) error {
	for _, p := range perm.All() {
		resource, action, _ := strings.Cut(string(p), ".")

		record := models.Permission{
			Name:     string(p),
			Resource: resource,
			Action:   action,
		}

		err := db.Where("name = ?", string(p)).FirstOrCreate(&record).Error
		if err != nil {
			return fmt.Errorf("failed to seed permission %q: %w", p, err)
		}
	}

	return nil
}

func seedRole(db *gorm.DB, name, description string, system bool, perms []perm.Permission) (*models.Role, error) {
	var role models.Role

	err := db.Where("name = ?", name).First(&role).Error
	if err == nil {
		return &role, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up role %q: %w", name, err)
	}

	role = models.Role{
		Name:        name,
		Description: description,
		IsSystem:    system,
	}

	if err := db.Create(&role).Error; err != nil {
		return nil, fmt.Errorf("failed to seed role %q: %w", name, err)
	}

	for _, p := range perms {
		var permission models.Permission

		if err := db.Where("name = ?", string(p)).First(&permission).Error; err != nil {
			return nil, fmt.Errorf("failed to resolve permission %q: %w", p, err)
		}

		link := models.RolePermission{RoleID: role.ID, PermissionID: permission.ID}
		if err := db.Create(&link).Error; err != nil {
			return nil, fmt.Errorf("failed to assign permission %q to role %q: %w", p, name, err)
		}
	}

	log.Info().Str("role", name).Int("permissions", len(perms)).Msg("seeded role")

	return &role, nil
}

// seedAdmin creates the bootstrap administrator when no admin account exists.
func seedAdmin(db *gorm.DB, superadmin *models.Role) error {
	var count int64

	err := db.Model(&models.User{}).
		Where("type = ?", models.AccountTypeAdmin).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to count admin accounts: %w", err)
	}

	if count > 0 {
		return nil
	}

	admin := models.User{
		Active:   true,
		Email:    defaultAdminEmail,
		Username: defaultAdminUsername,
		Password: models.HashPassword(defaultAdminPassword),
		Type:     models.AccountTypeAdmin,
		RoleID:   &superadmin.ID,
	}

	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}

	log.Warn().Str("email", defaultAdminEmail).Msg("seeded bootstrap admin account, change its password")

	return nil
}
