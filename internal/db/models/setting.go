// Package models contains database model definitions.
package models

// Setting represents a platform configuration setting stored in the database
// (site name, maintenance banner, default currency, and similar).
type Setting struct {
	ID    uint64 `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"unique" json:"name"`
	Value []byte `gorm:"type:blob" json:"value"`
}
