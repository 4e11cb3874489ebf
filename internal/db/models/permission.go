package models

import "time"

// Permission represents one entry of the closed permission vocabulary as stored
// in the database. The authoritative vocabulary lives in the perm package; rows
// here exist so roles can reference tokens relationally.
type Permission struct {
	// ID is the unique identifier for the permission.
	ID uint `gorm:"primaryKey" json:"id"`
	// Name is the unique permission token in resource.action format (e.g., "player.ban").
	Name string `gorm:"unique;size:100;not null" json:"name"`
	// Resource is the resource this permission applies to (e.g., "player", "ticket").
	Resource string `gorm:"size:100;not null" json:"resource"`
	// Action is the action allowed on the resource (e.g., "view", "manage", "ban").
	Action string `gorm:"size:50;not null" json:"action"`
	// Description provides a human-readable explanation of what this permission grants.
	Description string `gorm:"size:255" json:"description"`
	// CreatedAt is the timestamp when the permission was created (managed by GORM).
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is the timestamp when the permission was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the database table name for the Permission model.
func (Permission) TableName() string {
	return "permissions"
}
