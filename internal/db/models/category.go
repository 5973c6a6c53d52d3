package models

import (
	"time"

	"github.com/gosimple/slug"
)

// Category groups videos by topic. Names are unique regardless of case.
type Category struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Slug        string    `db:"slug" json:"slug"`
	Description string    `db:"description" json:"description"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// NewCategory creates an active Category with a slug derived from its name.
func NewCategory(name, description string) *Category {
	return &Category{
		Name:        name,
		Slug:        slug.Make(name),
		Description: description,
		IsActive:    true,
		CreatedAt:   time.Now(),
	}
}
