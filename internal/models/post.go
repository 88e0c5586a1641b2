// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Post is a blog article written by one author in one category.
// AuthorID is immutable after creation; CategoryID may change, in which case
// both the old and new category post counts are recomputed.
type Post struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Content       string    `json:"content"`
	Tags          []string  `json:"tags"`
	FeaturedImage *string   `json:"featured_image,omitempty"`
	AuthorID      string    `json:"author_id"`
	CategoryID    string    `json:"category_id"`
	IsPublished   bool      `json:"is_published"`
	ViewCount     int       `json:"view_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Joined projections populated by store methods.
	Author   *AuthorSummary   `json:"author,omitempty"`
	Category *CategorySummary `json:"category,omitempty"`
	Comments []Comment        `json:"comments,omitempty"`
}

// Comment is a reader comment on a post. Comments are append-only: the API
// exposes no edit or delete for individual comments.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`

	User *CommenterSummary `json:"user,omitempty"`
}
