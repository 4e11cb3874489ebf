package models

import "time"

// PlayerNote is a free-form annotation an agent attaches to a player account,
// visible only in the back office.
type PlayerNote struct {
	// ID is the unique identifier for the note.
	ID uint64 `gorm:"primaryKey" json:"id"`
	// PlayerID references the annotated player account.
	PlayerID uint64 `gorm:"index;not null" json:"player_id"`
	// AuthorID references the administrative account that wrote the note.
	AuthorID uint64 `gorm:"not null" json:"author_id"`
	// Body is the note text.
	Body string `gorm:"type:text;not null" json:"body"`
	// Pinned notes are surfaced first in the player view.
	Pinned bool `json:"pinned"`
	// CreatedAt is the timestamp when the note was created (managed by GORM).
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is the timestamp when the note was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the database table name for the PlayerNote model.
func (PlayerNote) TableName() string {
	return "player_notes"
}
