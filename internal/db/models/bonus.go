package models

import "time"

// Bonus is a promotional campaign players can claim (welcome bonus, reload,
// free spins converted to a cash value, and so on).
type Bonus struct {
	// ID is the unique identifier for the bonus.
	ID uint `gorm:"primaryKey" json:"id"`
	// Code is the unique claim code entered by the player.
	Code string `gorm:"unique;size:50;not null" json:"code"`
	// Name is the display name of the campaign.
	Name string `gorm:"size:100;not null" json:"name"`
	// Description explains the campaign terms.
	Description string `gorm:"size:255" json:"description"`
	// Amount is the bonus value in minor currency units (cents).
	Amount int64 `gorm:"not null" json:"amount"`
	// WagerFactor is the multiple of the amount that must be wagered before withdrawal.
	WagerFactor int `gorm:"not null;default:1" json:"wager_factor"`
	// Active indicates whether the campaign can currently be claimed.
	Active bool `json:"active"`
	// StartsAt is the opening of the claim window, nil for immediate.
	StartsAt *time.Time `json:"starts_at"`
	// EndsAt is the close of the claim window, nil for open-ended.
	EndsAt *time.Time `json:"ends_at"`
	// CreatedAt is the timestamp when the bonus was created (managed by GORM).
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is the timestamp when the bonus was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the database table name for the Bonus model.
func (Bonus) TableName() string {
	return "bonuses"
}
