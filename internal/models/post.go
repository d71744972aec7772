// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Post represents a blog post in the Inkwell application.
//
// Unlike users, posts are hard-deleted: there is no DeletedAt column and
// Delete removes the row. The slug is derived from the title once at creation
// and is not recomputed when the title changes later.
type Post struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	AuthorID         uint      `gorm:"not null;index" json:"author_id"`
	Author           User      `gorm:"foreignKey:AuthorID" json:"-"`
	Slug             string    `gorm:"index;not null" json:"slug"`
	Title            string    `gorm:"size:100;not null" json:"title"`
	Text             string    `gorm:"type:text;not null" json:"text"`
	ShortDescription string    `gorm:"size:200;not null" json:"short_description"`
	PublishedAt      time.Time `gorm:"not null" json:"published_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
