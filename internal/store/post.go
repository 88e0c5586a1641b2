// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
	"inkwell/internal/objectid"
	"inkwell/internal/slug"
)

const (
	// DefaultPageLimit is the listing page size when the caller provides none.
	DefaultPageLimit = 10

	// SearchLimit caps the search result set.
	SearchLimit = 20
)

// PostStore handles all post and comment database operations.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// postSelect joins every post row with its author and category summaries so
// listings and single-post reads return display-ready data in one query.
const postSelect = `
	SELECT p.id, p.title, p.slug, p.content, p.tags, p.featured_image,
	       p.author_id, p.category_id, p.is_published, p.view_count,
	       p.created_at, p.updated_at,
	       a.name, a.email, a.avatar, a.bio,
	       c.name, c.slug, c.color
	FROM posts p
	JOIN users a ON a.id = p.author_id
	JOIN categories c ON c.id = p.category_id`

// scanPost scans one joined post row, decoding the tags JSON and attaching
// the author and category summaries.
func scanPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	var (
		p        models.Post
		tagsJSON []byte
		author   models.AuthorSummary
		category models.CategorySummary
	)
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Content, &tagsJSON, &p.FeaturedImage,
		&p.AuthorID, &p.CategoryID, &p.IsPublished, &p.ViewCount,
		&p.CreatedAt, &p.UpdatedAt,
		&author.Name, &author.Email, &author.Avatar, &author.Bio,
		&category.Name, &category.Slug, &category.Color,
	)
	if err != nil {
		return nil, err
	}

	p.Tags = []string{}
	if len(tagsJSON) > 0 {
		if err := json.Unmarshal(tagsJSON, &p.Tags); err != nil {
			return nil, fmt.Errorf("decode post tags: %w", err)
		}
	}

	author.ID = p.AuthorID
	category.ID = p.CategoryID
	p.Author = &author
	p.Category = &category
	return &p, nil
}

// ListOptions filter and paginate the post listing.
type ListOptions struct {
	CategoryID string // exact match, empty means all
	Published  *bool  // nil means no filter
	Page       int    // 1-based; values below 1 fall back to 1
	Limit      int    // values below 1 fall back to DefaultPageLimit
}

// Page is one page of a post listing with its pagination envelope values.
// Total counts every match regardless of pagination; Pages is
// ceil(Total/Limit), zero when nothing matched.
type Page struct {
	Posts []models.Post
	Count int
	Total int
	Page  int
	Pages int
}

// List returns a filtered, paginated page of posts sorted by creation date
// descending.
func (s *PostStore) List(opts ListOptions) (*Page, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 {
		opts.Limit = DefaultPageLimit
	}

	where := " WHERE 1=1"
	var args []any
	if opts.CategoryID != "" {
		args = append(args, opts.CategoryID)
		where += fmt.Sprintf(" AND p.category_id = $%d", len(args))
	}
	if opts.Published != nil {
		args = append(args, *opts.Published)
		where += fmt.Sprintf(" AND p.is_published = $%d", len(args))
	}

	var total int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM posts p`+where, args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}

	limitArg := len(args) + 1
	offsetArg := len(args) + 2
	args = append(args, opts.Limit, (opts.Page-1)*opts.Limit)

	rows, err := s.db.Query(
		postSelect+where+fmt.Sprintf(" ORDER BY p.created_at DESC LIMIT $%d OFFSET $%d", limitArg, offsetArg),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	pages := 0
	if total > 0 {
		pages = (total + opts.Limit - 1) / opts.Limit
	}

	return &Page{
		Posts: posts,
		Count: len(posts),
		Total: total,
		Page:  opts.Page,
		Pages: pages,
	}, nil
}

// FindByID retrieves a post by ID with author and category summaries.
// Returns nil if not found.
func (s *PostStore) FindByID(id string) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRow(postSelect+` WHERE p.id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// FindBySlug retrieves a post by slug. Returns nil if not found.
func (s *PostStore) FindBySlug(postSlug string) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRow(postSelect+` WHERE p.slug = $1`, postSlug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by slug: %w", err)
	}
	return p, nil
}

// Resolve finds a post by stable id when key has the id shape, by slug
// otherwise, with the comment sequence attached. A key matching neither
// yields NotFound.
func (s *PostStore) Resolve(key string) (*models.Post, error) {
	var (
		p   *models.Post
		err error
	)
	if objectid.IsValid(key) {
		p, err = s.FindByID(key)
	} else {
		p, err = s.FindBySlug(key)
	}
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("Post not found")
	}

	comments, err := s.Comments(p.ID)
	if err != nil {
		return nil, err
	}
	p.Comments = comments
	return p, nil
}

// Create inserts a new post. The slug is derived from the title at create
// time; a collision is broken with a short suffix from the fresh id so
// slug lookups always have a live key to hit.
func (s *PostStore) Create(p *models.Post) (*models.Post, error) {
	id := objectid.New()
	postSlug := slug.Generate(p.Title)
	if existing, err := s.FindBySlug(postSlug); err != nil {
		return nil, err
	} else if existing != nil {
		postSlug = slug.WithSuffix(postSlug, id[len(id)-6:])
	}

	tagsJSON, err := json.Marshal(normalizeTags(p.Tags))
	if err != nil {
		return nil, fmt.Errorf("encode post tags: %w", err)
	}

	var createdID string
	err = s.db.QueryRow(`
		INSERT INTO posts (id, title, slug, content, tags, featured_image,
		                   author_id, category_id, is_published)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, id, p.Title, postSlug, p.Content, tagsJSON, p.FeaturedImage,
		p.AuthorID, p.CategoryID, p.IsPublished,
	).Scan(&createdID)
	if isForeignKeyViolation(err) {
		return nil, apperr.Validation("Category does not exist")
	}
	if isUniqueViolation(err) {
		return nil, apperr.Validation("Post slug already exists")
	}
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	return s.FindByID(createdID)
}

// Update rewrites a post's mutable fields. The author and slug are fixed at
// creation and never change here; a category change is validated against
// the categories table by the foreign key.
func (s *PostStore) Update(p *models.Post) (*models.Post, error) {
	tagsJSON, err := json.Marshal(normalizeTags(p.Tags))
	if err != nil {
		return nil, fmt.Errorf("encode post tags: %w", err)
	}

	res, err := s.db.Exec(`
		UPDATE posts SET
			title = $1, content = $2, tags = $3, featured_image = $4,
			category_id = $5, is_published = $6, updated_at = NOW()
		WHERE id = $7
	`, p.Title, p.Content, tagsJSON, p.FeaturedImage,
		p.CategoryID, p.IsPublished, p.ID,
	)
	if isForeignKeyViolation(err) {
		return nil, apperr.Validation("Category does not exist")
	}
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update post rows: %w", err)
	}
	if affected == 0 {
		return nil, apperr.NotFound("Post not found")
	}

	return s.FindByID(p.ID)
}

// Delete removes a post by ID.
func (s *PostStore) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete post rows: %w", err)
	}
	if affected == 0 {
		return apperr.NotFound("Post not found")
	}
	return nil
}

// IncrementViewCount adds exactly one view to a post and returns the new
// count. Every successful single-post fetch calls this, with no
// deduplication and no upper bound.
func (s *PostStore) IncrementViewCount(id string) (int, error) {
	var count int
	err := s.db.QueryRow(`
		UPDATE posts SET view_count = view_count + 1 WHERE id = $1
		RETURNING view_count
	`, id).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, apperr.NotFound("Post not found")
	}
	if err != nil {
		return 0, fmt.Errorf("increment view count: %w", err)
	}
	return count, nil
}

// Search returns published posts whose title, content, or any tag contains
// q (case-insensitive), newest first, capped at SearchLimit. There is no
// relevance scoring.
func (s *PostStore) Search(q string) ([]models.Post, error) {
	pattern := likePattern(q)
	rows, err := s.db.Query(postSelect+`
		WHERE p.is_published
		  AND (p.title ILIKE $1
		       OR p.content ILIKE $1
		       OR EXISTS (
		           SELECT 1 FROM jsonb_array_elements_text(p.tags) AS tag
		           WHERE tag ILIKE $1
		       ))
		ORDER BY p.created_at DESC
		LIMIT $2
	`, pattern, SearchLimit)
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// ListByAuthor returns every post by one author, drafts included, newest
// first.
func (s *PostStore) ListByAuthor(authorID string) ([]models.Post, error) {
	rows, err := s.db.Query(postSelect+` WHERE p.author_id = $1 ORDER BY p.created_at DESC`, authorID)
	if err != nil {
		return nil, fmt.Errorf("list posts by author: %w", err)
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// normalizeTags guarantees a non-nil slice so empty tag sets encode as []
// instead of null.
func normalizeTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
