package models

import "time"

// TicketStatus represents the lifecycle state of a support ticket.
type TicketStatus string

const (
	// TicketStatusOpen indicates the ticket awaits a first response.
	TicketStatusOpen TicketStatus = "open"
	// TicketStatusPending indicates the ticket awaits a reply from the player.
	TicketStatusPending TicketStatus = "pending"
	// TicketStatusClosed indicates the ticket is resolved.
	TicketStatusClosed TicketStatus = "closed"
)

// SupportTicket is a support request raised by or on behalf of a player.
type SupportTicket struct {
	// ID is the unique identifier for the ticket.
	ID uint64 `gorm:"primaryKey" json:"id"`
	// Reference is the externally visible ticket reference (UUID), quoted in emails.
	Reference string `gorm:"unique;size:36;not null" json:"reference"`
	// PlayerID references the player the ticket belongs to.
	PlayerID uint64 `gorm:"index;not null" json:"player_id"`
	// Subject is the one-line summary.
	Subject string `gorm:"size:255;not null" json:"subject"`
	// Body is the initial message text.
	Body string `gorm:"type:text" json:"body"`
	// Status is the current lifecycle state.
	Status TicketStatus `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`
	// AssigneeID references the administrative account working the ticket, nil if unassigned.
	AssigneeID *uint64 `json:"assignee_id"`
	// CreatedAt is the timestamp when the ticket was created (managed by GORM).
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is the timestamp when the ticket was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the database table name for the SupportTicket model.
func (SupportTicket) TableName() string {
	return "support_tickets"
}

// TicketReply is one message in a support ticket's conversation thread.
type TicketReply struct {
	// ID is the unique identifier for the reply.
	ID uint64 `gorm:"primaryKey" json:"id"`
	// TicketID references the ticket this reply belongs to.
	TicketID uint64 `gorm:"index;not null" json:"ticket_id"`
	// AuthorID references the account (agent or player) that wrote the reply.
	AuthorID uint64 `gorm:"not null" json:"author_id"`
	// Body is the reply text.
	Body string `gorm:"type:text;not null" json:"body"`
	// CreatedAt is the timestamp when the reply was created (managed by GORM).
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the database table name for the TicketReply model.
func (TicketReply) TableName() string {
	return "ticket_replies"
}
