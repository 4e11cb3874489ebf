package models

import (
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
)

// AccountType distinguishes player accounts from administrative (back office) accounts.
type AccountType string

const (
	// AccountTypePlayer indicates a regular player account with no back-office access.
	AccountTypePlayer AccountType = "player"
	// AccountTypeAdmin indicates an administrative account whose permissions derive
	// from its assigned role.
	AccountTypeAdmin AccountType = "admin"
)

// KYCStatus represents the verification state of a player account.
type KYCStatus string

const (
	// KYCStatusPending indicates the account has not been reviewed yet.
	KYCStatusPending KYCStatus = "pending"
	// KYCStatusVerified indicates identity documents were reviewed and accepted.
	KYCStatusVerified KYCStatus = "verified"
	// KYCStatusRejected indicates identity documents were reviewed and rejected.
	KYCStatusRejected KYCStatus = "rejected"
)

// User represents an account in the system, either a player or a back-office
// administrator. Only administrative accounts carry a role reference; a player's
// permission set is always empty.
type User struct {
	// ID is the unique identifier for the account.
	ID uint64 `gorm:"primaryKey" json:"id"`
	// Active indicates whether the account may log in. Banning a player clears it.
	Active bool `json:"active"`
	// Email is the unique login identifier.
	Email string `gorm:"unique;size:255;not null" json:"email"`
	// Username is the public display name.
	Username string `gorm:"unique;size:100;not null" json:"username"`
	// Password is the Argon2id hashed password. Never serialized.
	Password string `gorm:"size:255" json:"-"`
	// FirstName is the account holder's first or given name.
	FirstName string `gorm:"size:100" json:"first_name"`
	// LastName is the account holder's last or family name.
	LastName string `gorm:"size:100" json:"last_name"`
	// Country is the ISO 3166-1 alpha-2 residence country code.
	Country string `gorm:"size:2" json:"country"`
	// Type indicates whether this is a player or an administrative account.
	Type AccountType `gorm:"type:varchar(20);not null;default:'player'" json:"type"`
	// KYCStatus is the verification state. Only meaningful for players.
	KYCStatus KYCStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"kyc_status"`
	// RoleID is the assigned role for administrative accounts, nil otherwise.
	RoleID *uint `gorm:"column:role_id" json:"role_id"`
	// Role is the associated role (RESTRICT keeps roles with holders undeletable).
	Role *Role `gorm:"foreignKey:RoleID;references:ID;constraint:OnDelete:RESTRICT,OnUpdate:CASCADE" json:"role,omitempty"`
	// TOTPSecret is the enrolled TOTP secret for two-factor login, empty if not enrolled.
	TOTPSecret string `gorm:"size:64" json:"-"`
	// LastLoginAt is the timestamp of the most recent successful login.
	LastLoginAt *time.Time `json:"last_login_at"`
	// CreatedAt is the timestamp when the account was created (managed by GORM).
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is the timestamp when the account was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updated_at"`
	// DeletedAt is the soft delete timestamp (nil if not deleted, managed by GORM).
	DeletedAt *time.Time `json:"-"`
}

// IsAdmin reports whether the account is administrative.
func (u *User) IsAdmin() bool {
	return u.Type == AccountTypeAdmin
}

// HashPassword hashes a plaintext password using the Argon2id algorithm.
// This function should be used when creating or updating account passwords.
func HashPassword(password string) string {
	hashedPassword, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		log.Fatal().Msgf("failed to hash password: %v", err)
	}

	return hashedPassword
}

// VerifyPassword verifies a plaintext password against the account's stored hash.
// It uses constant-time comparison to prevent timing attacks.
func (u *User) VerifyPassword(password string) bool {
	match, err := argon2id.ComparePasswordAndHash(password, u.Password)
	if err != nil {
		log.Error().Msgf("failed to verify password: %v", err)
		return false
	}

	return match
}
