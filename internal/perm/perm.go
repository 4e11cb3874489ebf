// Package perm defines the closed vocabulary of permission tokens used for
// role-based access control.
//
// Tokens are atomic, non-hierarchical capability flags: holding one token never
// implies another. Because Permission is a distinct type with a fixed catalog of
// constants, referencing an unknown token is a compile-time error rather than a
// silently failing string comparison.
package perm

// Permission is a single capability token from the closed vocabulary.
type Permission string

const (
	// DashboardView allows viewing the back-office dashboard summary.
	DashboardView Permission = "dashboard.view"

	// PlayerList allows listing and searching player accounts.
	PlayerList Permission = "player.list"
	// PlayerView allows viewing a player account in detail.
	PlayerView Permission = "player.view"
	// PlayerUpdate allows editing player profile fields.
	PlayerUpdate Permission = "player.update"
	// PlayerBan allows banning and unbanning player accounts.
	PlayerBan Permission = "player.ban"
	// PlayerDelete allows deleting player accounts.
	PlayerDelete Permission = "player.delete"
	// PlayerNotes allows reading and writing player notes.
	PlayerNotes Permission = "player.notes"

	// KYCReview allows reviewing and deciding the KYC verification status of players.
	KYCReview Permission = "kyc.review"

	// TicketView allows viewing support tickets.
	TicketView Permission = "ticket.view"
	// TicketManage allows replying to, assigning, and closing support tickets.
	TicketManage Permission = "ticket.manage"

	// BonusView allows viewing bonus campaigns.
	BonusView Permission = "bonus.view"
	// BonusManage allows creating, editing, and toggling bonus campaigns.
	BonusManage Permission = "bonus.manage"

	// SettingsManage allows managing platform-wide settings.
	SettingsManage Permission = "admin.settings"
	// RolesManage allows managing roles and their permission assignments.
	RolesManage Permission = "admin.roles"
	// AdminsManage allows managing administrative accounts.
	AdminsManage Permission = "admin.users"
)

// All returns the complete permission catalog in a stable order. Used for
// seeding and for role editors that list assignable tokens.
func All() []Permission {
	return []Permission{
		DashboardView,
		PlayerList,
		PlayerView,
		PlayerUpdate,
		PlayerBan,
		PlayerDelete,
		PlayerNotes,
		KYCReview,
		TicketView,
		TicketManage,
		BonusView,
		BonusManage,
		SettingsManage,
		RolesManage,
		AdminsManage,
	}
}

// Valid reports whether p is part of the closed vocabulary. Inputs arriving
// over the wire (role editors) must be checked before being stored.
func Valid(p Permission) bool {
	for _, known := range All() {
		if p == known {
			return true
		}
	}

	return false
}

// FromStrings converts raw token strings to Permissions, dropping any value
// that is not part of the vocabulary.
func FromStrings(raw []string) []Permission {
	out := make([]Permission, 0, len(raw))

	for _, r := range raw {
		if p := Permission(r); Valid(p) {
			out = append(out, p)
		}
	}

	return out
}

// Strings converts a permission list to its raw string form for storage.
func Strings(perms []Permission) []string {
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		out = append(out, string(p))
	}

	return out
}
