// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"fmt"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
	"inkwell/internal/objectid"
)

// Comments returns the full comment sequence for a post, oldest first, each
// entry joined with the commenter's display summary.
func (s *PostStore) Comments(postID string) ([]models.Comment, error) {
	rows, err := s.db.Query(`
		SELECT cm.id, cm.post_id, cm.user_id, cm.content, cm.created_at,
		       u.name, u.avatar
		FROM comments cm
		JOIN users u ON u.id = cm.user_id
		WHERE cm.post_id = $1
		ORDER BY cm.created_at ASC
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		var (
			cm   models.Comment
			user models.CommenterSummary
		)
		if err := rows.Scan(
			&cm.ID, &cm.PostID, &cm.UserID, &cm.Content, &cm.CreatedAt,
			&user.Name, &user.Avatar,
		); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		user.ID = cm.UserID
		cm.User = &user
		comments = append(comments, cm)
	}
	return comments, rows.Err()
}

// AddComment appends a comment to a post and returns the refreshed, joined
// comment sequence. A missing post is NotFound; nothing is created for it.
func (s *PostStore) AddComment(postID, userID, content string) ([]models.Comment, error) {
	// A malformed id can never reference a post; don't let it reach the
	// CHAR(24) column, where an over-long value fails as a data error.
	if !objectid.IsValid(postID) {
		return nil, apperr.NotFound("Post not found")
	}

	_, err := s.db.Exec(`
		INSERT INTO comments (id, post_id, user_id, content)
		VALUES ($1, $2, $3, $4)
	`, objectid.New(), postID, userID, content)
	if isForeignKeyViolation(err) {
		return nil, apperr.NotFound("Post not found")
	}
	if err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}

	return s.Comments(postID)
}
