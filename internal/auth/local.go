package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pquerna/otp/totp"
	"gorm.io/gorm"

	"github.com/playops/playops-admin/internal/db/models"
)

const whereID = "id = ?"

// dummyHash is a valid Argon2id hash of a random throwaway value. When a login
// email is unknown we still compare against it so the unknown-email and
// wrong-password paths take comparable time.
const dummyHash = "$argon2id$v=19$m=65536,t=1,p=2$kP5zbmle0hGHSmPQhvZL4A$3H4tzHB/7cQ1Ts6nR1bklBzeLEBprJD8BJOw09WAR5o"

// LocalProvider handles credential verification and account maintenance
// against the local database.
type LocalProvider struct {
	db *gorm.DB
}

// NewLocalProvider creates a new local credential provider.
func NewLocalProvider(db *gorm.DB) *LocalProvider {
	return &LocalProvider{
		db: db,
	}
}

// Authenticate verifies an email/password pair, plus a TOTP code when the
// account has one enrolled. Every failure mode returns ErrInvalidCredentials;
// callers must not be able to distinguish an unknown email from a wrong
// password or a disabled account.
func (p *LocalProvider) Authenticate(ctx context.Context, email, password, otpCode string) (*models.User, error) {
	var user models.User

	err := p.db.WithContext(ctx).Where("email = ?", email).First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		// burn a comparison so timing matches the known-email path
		_ = (&models.User{Password: dummyHash}).VerifyPassword(password)
		return nil, ErrInvalidCredentials
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if !user.VerifyPassword(password) {
		return nil, ErrInvalidCredentials
	}

	if !user.Active {
		return nil, ErrInvalidCredentials
	}

	if user.TOTPSecret != "" {
		if !totp.Validate(otpCode, user.TOTPSecret) {
			return nil, ErrInvalidCredentials
		}
	}

	now := time.Now()
	user.LastLoginAt = &now
	p.db.WithContext(ctx).Model(&models.User{}).Where(whereID, user.ID).
		Update("last_login_at", now)

	return &user, nil
}

// RegisterInput carries the self-service registration fields.
type RegisterInput struct {
	Email     string `json:"email" validate:"required,email"`
	Username  string `json:"username" validate:"required,min=3,max=100"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	Country   string `json:"country" validate:"omitempty,len=2"`
}

// CreatePlayer creates a new player account from a registration.
func (p *LocalProvider) CreatePlayer(ctx context.Context, in RegisterInput) (*models.User, error) {
	var existing models.User

	err := p.db.WithContext(ctx).
		Where("email = ? OR username = ?", in.Email, in.Username).
		First(&existing).Error
	if err == nil {
		return nil, ErrEmailOrUsernameExists
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	user := models.User{
		Active:    true,
		Email:     in.Email,
		Username:  in.Username,
		Password:  models.HashPassword(in.Password),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Country:   in.Country,
		Type:      models.AccountTypePlayer,
		KYCStatus: models.KYCStatusPending,
	}

	if err := p.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// CreateAdmin creates a new administrative account with an optional role.
func (p *LocalProvider) CreateAdmin(
	ctx context.Context,
	email, username, password, firstName, lastName string,
	roleID *uint,
) (*models.User, error) {
	var existing models.User

	err := p.db.WithContext(ctx).
		Where("email = ? OR username = ?", email, username).
		First(&existing).Error
	if err == nil {
		return nil, ErrEmailOrUsernameExists
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	user := models.User{
		Active:    true,
		Email:     email,
		Username:  username,
		Password:  models.HashPassword(password),
		FirstName: firstName,
		LastName:  lastName,
		Type:      models.AccountTypeAdmin,
		RoleID:    roleID,
	}

	if err := p.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// ProfileUpdate carries the fields an account may change about itself.
// Role, type, and permissions are deliberately not representable here.
type ProfileUpdate struct {
	Username  *string `json:"username" validate:"omitempty,min=3,max=100"`
	FirstName *string `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
	Country   *string `json:"country" validate:"omitempty,len=2"`
}

// UpdateProfile merges the given fields into the account and returns the
// updated record.
func (p *LocalProvider) UpdateProfile(ctx context.Context, userID uint64, in ProfileUpdate) (*models.User, error) {
	updates := map[string]interface{}{}

	if in.Username != nil {
		var existing models.User

		err := p.db.WithContext(ctx).
			Where("username = ? AND id <> ?", *in.Username, userID).
			First(&existing).Error
		if err == nil {
			return nil, ErrEmailOrUsernameExists
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check existing user: %w", err)
		}

		updates["username"] = *in.Username
	}

	if in.FirstName != nil {
		updates["first_name"] = *in.FirstName
	}

	if in.LastName != nil {
		updates["last_name"] = *in.LastName
	}

	if in.Country != nil {
		updates["country"] = *in.Country
	}

	if len(updates) > 0 {
		if err := p.db.WithContext(ctx).Model(&models.User{}).
			Where(whereID, userID).
			Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
	}

	return p.GetUserByID(ctx, userID)
}

// ChangePassword changes an account's password after verifying the old one.
func (p *LocalProvider) ChangePassword(ctx context.Context, userID uint64, oldPassword, newPassword string) error {
	user, err := p.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if !user.VerifyPassword(oldPassword) {
		return ErrInvalidOldPassword
	}

	return p.db.WithContext(ctx).Model(&models.User{}).
		Where(whereID, userID).
		Update("password", models.HashPassword(newPassword)).Error
}

// Ban deactivates an account so it can no longer log in.
func (p *LocalProvider) Ban(ctx context.Context, userID uint64) error {
	return p.db.WithContext(ctx).Model(&models.User{}).
		Where(whereID, userID).
		Update("active", false).Error
}

// Unban reactivates a previously banned account.
func (p *LocalProvider) Unban(ctx context.Context, userID uint64) error {
	return p.db.WithContext(ctx).Model(&models.User{}).
		Where(whereID, userID).
		Update("active", true).Error
}

// DeleteUser soft deletes an account.
func (p *LocalProvider) DeleteUser(ctx context.Context, userID uint64) error {
	return p.db.WithContext(ctx).Delete(&models.User{}, userID).Error
}

// GetUserByID retrieves an account by ID.
func (p *LocalProvider) GetUserByID(ctx context.Context, userID uint64) (*models.User, error) {
	var user models.User

	err := p.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &user, nil
}

// ListUsers lists accounts of the given type with optional search and paging.
func (p *LocalProvider) ListUsers(
	ctx context.Context,
	accountType models.AccountType,
	search string,
	limit, offset int,
) ([]models.User, int64, error) {
	var (
		users []models.User
		total int64
	)

	query := p.db.WithContext(ctx).Model(&models.User{})

	if accountType != "" {
		query = query.Where("type = ?", accountType)
	}

	if search != "" {
		like := "%" + search + "%"
		query = query.Where(
			"email LIKE ? OR username LIKE ? OR first_name LIKE ? OR last_name LIKE ?",
			like, like, like, like,
		)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Limit(limit).Offset(offset).Order("id").Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}
