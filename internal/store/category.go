// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
	"inkwell/internal/objectid"
	"inkwell/internal/slug"
)

// CategoryStore manages categories in the database. It owns the post_count
// invariant: the column is always recomputed from the posts table, never
// maintained by deltas.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, slug, description, color, post_count, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description,
		&c.Color, &c.PostCount, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories ordered by name ascending.
func (s *CategoryStore) List() ([]models.Category, error) {
	rows, err := s.db.Query(`SELECT ` + categoryColumns + ` FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(id string) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindBySlug retrieves a category by slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(categorySlug string) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE slug = $1`, categorySlug)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

// Resolve finds a category by stable id when key has the id shape, by slug
// otherwise. A key matching neither yields NotFound.
func (s *CategoryStore) Resolve(key string) (*models.Category, error) {
	var (
		c   *models.Category
		err error
	)
	if objectid.IsValid(key) {
		c, err = s.FindByID(key)
	} else {
		c, err = s.FindBySlug(key)
	}
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.NotFound("Category not found")
	}
	return c, nil
}

// Create inserts a new category. The slug is derived from the name and the
// post count starts at zero. A duplicate name is a validation failure.
func (s *CategoryStore) Create(c *models.Category) (*models.Category, error) {
	if c.Color == "" {
		c.Color = models.DefaultCategoryColor
	}

	row := s.db.QueryRow(`
		INSERT INTO categories (id, name, slug, description, color)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+categoryColumns,
		objectid.New(), c.Name, slug.Generate(c.Name), c.Description, c.Color,
	)
	result, err := scanCategory(row)
	if isUniqueViolation(err) {
		return nil, apperr.Validation("Category name or slug already exists")
	}
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return result, nil
}

// Update modifies an existing category. The slug is re-derived from the
// name so it stays consistent after renames.
func (s *CategoryStore) Update(c *models.Category) (*models.Category, error) {
	row := s.db.QueryRow(`
		UPDATE categories SET
			name = $1, slug = $2, description = $3, color = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING `+categoryColumns,
		c.Name, slug.Generate(c.Name), c.Description, c.Color, c.ID,
	)
	result, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("Category not found")
	}
	if isUniqueViolation(err) {
		return nil, apperr.Validation("Category name or slug already exists")
	}
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return result, nil
}

// Delete removes a category. The delete is conditional on no posts
// referencing the category at delete time, so a post created between a
// stale read and the delete still blocks it.
func (s *CategoryStore) Delete(id string) error {
	res, err := s.db.Exec(`
		DELETE FROM categories
		WHERE id = $1
		  AND NOT EXISTS (SELECT 1 FROM posts WHERE posts.category_id = $1)
	`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category rows: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// Nothing deleted: either the category is missing or posts still
	// reference it.
	existing, err := s.FindByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperr.NotFound("Category not found")
	}
	return apperr.Conflict("Cannot delete category with existing posts")
}

// RecountPosts recomputes a category's post_count from the live posts
// relation in a single statement. It is idempotent: redundant invocations
// converge on the same value because the count is read from source, never
// incremented.
func (s *CategoryStore) RecountPosts(categoryID string) error {
	_, err := s.db.Exec(`
		UPDATE categories
		SET post_count = (SELECT COUNT(*) FROM posts WHERE posts.category_id = $1),
		    updated_at = NOW()
		WHERE id = $1
	`, categoryID)
	if err != nil {
		return fmt.Errorf("recount posts for category %s: %w", categoryID, err)
	}
	return nil
}
