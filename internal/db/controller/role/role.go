// Package role provides CRUD operations for roles and their permission
// assignments, enforcing the system-role guard: the distinguished super-admin
// role can never be modified, deleted, or stripped from its holders, no matter
// what permissions the acting session carries.
package role

import (
	"errors"

	"gorm.io/gorm"

	"github.com/playops/playops-admin/internal/db/models"
	"github.com/playops/playops-admin/internal/perm"
)

var (
	// ErrRoleNotFound is returned when a role is not found.
	ErrRoleNotFound = errors.New("role not found")
	// ErrRoleNameEmpty is returned when creating or renaming a role with an empty name.
	ErrRoleNameEmpty = errors.New("role name cannot be empty")
	// ErrRoleNameExists is returned when a role with the same name already exists.
	ErrRoleNameExists = errors.New("role with this name already exists")
	// ErrSystemRoleImmutable is returned on any attempt to update or delete the
	// system role, or to reassign one of its holders.
	ErrSystemRoleImmutable = errors.New("system role cannot be modified")
	// ErrRoleInUse is returned when deleting a role that still has holders.
	ErrRoleInUse = errors.New("role is assigned to one or more accounts")
	// ErrUnknownPermission is returned when a permission token outside the
	// closed vocabulary is submitted.
	ErrUnknownPermission = errors.New("unknown permission token")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Get retrieves a role by id.
func Get(db *gorm.DB, id uint) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var r models.Role

	result := db.First(&r, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}

		return nil, result.Error
	}

	return &r, nil
}

// GetAll retrieves all roles.
func GetAll(db *gorm.DB) ([]models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var roles []models.Role
	if err := db.Order("id").Find(&roles).Error; err != nil {
		return nil, err
	}

	return roles, nil
}

// Permissions returns the permission tokens assigned to a role. An unknown
// role id yields an empty set.
func Permissions(db *gorm.DB, roleID uint) ([]perm.Permission, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var names []string

	err := db.Table("permissions").
		Select("permissions.name").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", roleID).
		Pluck("permissions.name", &names).Error
	if err != nil {
		return nil, err
	}

	return perm.FromStrings(names), nil
}

// Create creates a role with the given permission tokens.
func Create(db *gorm.DB, name, description string, perms []perm.Permission) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if name == "" {
		return nil, ErrRoleNameEmpty
	}

	for _, p := range perms {
		if !perm.Valid(p) {
			return nil, ErrUnknownPermission
		}
	}

	r := models.Role{Name: name, Description: description}

	err := db.Transaction(func(tx *gorm.DB) error {
		var existing models.Role
		if err := tx.Where("name = ?", name).First(&existing).Error; err == nil {
			return ErrRoleNameExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(&r).Error; err != nil {
			return err
		}

		return assignPermissions(tx, r.ID, perms)
	})
	if err != nil {
		return nil, err
	}

	return &r, nil
}

// Update renames a role and replaces its permission assignments. The system
// role is rejected outright.
func Update(db *gorm.DB, id uint, name, description string, perms []perm.Permission) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if name == "" {
		return nil, ErrRoleNameEmpty
	}

	for _, p := range perms {
		if !perm.Valid(p) {
			return nil, ErrUnknownPermission
		}
	}

	r, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	if r.IsSystem {
		return nil, ErrSystemRoleImmutable
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		r.Name = name
		r.Description = description

		if err := tx.Save(r).Error; err != nil {
			return err
		}

		if err := tx.Where("role_id = ?", id).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}

		return assignPermissions(tx, id, perms)
	})
	if err != nil {
		return nil, err
	}

	return r, nil
}

// Delete removes a role. The system role and roles that still have holders
// are rejected.
func Delete(db *gorm.DB, id uint) error {
	if db == nil {
		return ErrDBNil
	}

	r, err := Get(db, id)
	if err != nil {
		return err
	}

	if r.IsSystem {
		return ErrSystemRoleImmutable
	}

	var holders int64
	if err := db.Model(&models.User{}).Where("role_id = ?", id).Count(&holders).Error; err != nil {
		return err
	}

	if holders > 0 {
		return ErrRoleInUse
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Role{}, id).Error
	})
}

// Assign sets an administrative account's role. Accounts holding the system
// role cannot be reassigned, and the system role cannot be handed out here.
func Assign(db *gorm.DB, userID uint64, roleID uint) error {
	if db == nil {
		return ErrDBNil
	}

	var user models.User
	if err := db.Preload("Role").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return gorm.ErrRecordNotFound
		}

		return err
	}

	if user.Role != nil && user.Role.IsSystem {
		return ErrSystemRoleImmutable
	}

	target, err := Get(db, roleID)
	if err != nil {
		return err
	}

	if target.IsSystem {
		return ErrSystemRoleImmutable
	}

	return db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("role_id", roleID).Error
}

// assignPermissions inserts role_permissions rows for the given tokens,
// creating vocabulary rows that are not present yet.
func assignPermissions(tx *gorm.DB, roleID uint, perms []perm.Permission) error {
	for _, p := range perms {
		var permission models.Permission

		if err := tx.Where("name = ?", string(p)).
			FirstOrCreate(&permission, models.Permission{Name: string(p)}).Error; err != nil {
			return err
		}

		if err := tx.Create(&models.RolePermission{
			RoleID:       roleID,
			PermissionID: permission.ID,
		}).Error; err != nil {
			return err
		}
	}

	return nil
}
