// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents an account in the Inkwell application.
//
// Deactivated accounts keep their row (IsActive=false) so that authored posts
// stay attributable and username/email uniqueness holds across the whole
// table. There is no gorm soft-delete column on purpose: deactivation is an
// explicit state transition, not a hidden filter.
type User struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Username        string    `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email           string    `gorm:"uniqueIndex;not null" json:"email"`
	Password        string    `gorm:"not null" json:"-"`
	IsActive        bool      `gorm:"not null;default:true" json:"is_active"`
	IsAdmin         bool      `gorm:"not null;default:false" json:"is_admin"`
	IsSuperuser     bool      `gorm:"not null;default:false" json:"is_superuser"`
	IsVerifiedEmail bool      `gorm:"not null;default:false" json:"is_verified_email"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Posts           []Post    `gorm:"foreignKey:AuthorID" json:"posts,omitempty"`
}
