// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/apperr"
	"inkwell/internal/authz"
	"inkwell/internal/cache"
	"inkwell/internal/httputil"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/objectid"
	"inkwell/internal/storage"
	"inkwell/internal/store"
)

// Posts groups the post, comment, and search handlers.
type Posts struct {
	posts      *store.PostStore
	categories *store.CategoryStore
	listings   *cache.ListingCache
	storage    *storage.Client
}

// NewPosts creates a new Posts handler group. listings and objects may be
// nil when Valkey or object storage is not configured.
func NewPosts(posts *store.PostStore, categories *store.CategoryStore, listings *cache.ListingCache, objects *storage.Client) *Posts {
	return &Posts{posts: posts, categories: categories, listings: listings, storage: objects}
}

// List returns a filtered, paginated page of posts. Anonymous callers
// only ever see published posts; authenticated callers may pass
// published=true/false or omit it to see everything.
func (h *Posts) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := middleware.PrincipalFromCtx(r.Context())

	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = store.DefaultPageLimit
	}

	opts := store.ListOptions{Page: page, Limit: limit}

	switch q.Get("published") {
	case "true":
		published := true
		opts.Published = &published
	case "false":
		if p == nil {
			// Drafts are never exposed to anonymous callers.
			published := true
			opts.Published = &published
		} else {
			published := false
			opts.Published = &published
		}
	default:
		if p == nil {
			published := true
			opts.Published = &published
		}
	}

	// The cache only serves the fully public shape of the listing.
	cacheable := h.listings != nil && p == nil && q.Get("published") == ""
	cacheKey := cache.PostListKey(q.Get("category"), page, limit)
	if cacheable {
		if body, ok := h.listings.Get(r.Context(), cacheKey); ok {
			httputil.RespondCached(w, body)
			return
		}
	}

	if key := q.Get("category"); key != "" {
		id, ok, err := h.resolveCategoryKey(key)
		if err != nil {
			httputil.RespondError(w, err)
			return
		}
		if !ok {
			// Unknown category matches nothing.
			httputil.RespondList(w, []models.Post{}, 0, 0, page, 0)
			return
		}
		opts.CategoryID = id
	}

	result, err := h.posts.List(opts)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	body, err := httputil.MarshalList(result.Posts, result.Count, result.Total, result.Page, result.Pages)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	if cacheable {
		h.listings.Set(r.Context(), cacheKey, body)
	}
	httputil.RespondCached(w, body)
}

// resolveCategoryKey maps a category filter value (id or slug) to a
// category ID. ok is false when no such category exists.
func (h *Posts) resolveCategoryKey(key string) (string, bool, error) {
	if objectid.IsValid(key) {
		return key, true, nil
	}
	category, err := h.categories.FindBySlug(key)
	if err != nil {
		return "", false, err
	}
	if category == nil {
		return "", false, nil
	}
	return category.ID, true, nil
}

// Search returns published posts whose title, content, or tags contain
// the query substring, case-insensitively, newest first.
func (h *Posts) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		httputil.RespondError(w, apperr.Validation("Please provide a search query"))
		return
	}

	posts, err := h.posts.Search(q)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.RespondCount(w, posts, len(posts))
}

// MyPosts returns every post by the authenticated user, drafts included.
func (h *Posts) MyPosts(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromCtx(r.Context())

	posts, err := h.posts.ListByAuthor(p.ID)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.RespondCount(w, posts, len(posts))
}

// Get returns a single post by id or slug, with comments, and counts
// the view.
func (h *Posts) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.Resolve(chi.URLParam(r, "key"))
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	views, err := h.posts.IncrementViewCount(post.ID)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	post.ViewCount = views

	httputil.RespondData(w, http.StatusOK, post)
}

// Create adds a new post authored by the caller and refreshes the
// category's post count.
func (h *Posts) Create(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromCtx(r.Context())

	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.RespondError(w, err)
		return
	}

	post, err := h.posts.Create(&models.Post{
		Title:         req.Title,
		Content:       req.Content,
		Tags:          req.Tags,
		FeaturedImage: req.FeaturedImage,
		AuthorID:      p.ID,
		CategoryID:    req.Category,
		IsPublished:   req.IsPublished != nil && *req.IsPublished,
	})
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	h.recount(post.CategoryID)
	h.invalidate(r)
	httputil.RespondData(w, http.StatusCreated, post)
}

// Update changes a post's fields. Optional fields missing from the body
// keep their stored values. Only the owner or an admin may update; moving
// the post to another category refreshes both counters.
func (h *Posts) Update(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromCtx(r.Context())
	id := chi.URLParam(r, "id")

	existing, err := h.posts.FindByID(id)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	if existing == nil {
		httputil.RespondError(w, apperr.NotFound("Post not found"))
		return
	}
	if !authz.CanModify(p, existing.AuthorID) {
		httputil.RespondError(w, apperr.Forbidden("Not authorized to update this post"))
		return
	}

	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.RespondError(w, err)
		return
	}

	prevCategory := existing.CategoryID

	// Overlay the request onto the stored post so omitted optional
	// fields survive the update.
	existing.Title = req.Title
	existing.Content = req.Content
	existing.CategoryID = req.Category
	if req.Tags != nil {
		existing.Tags = req.Tags
	}
	if req.FeaturedImage != nil {
		existing.FeaturedImage = req.FeaturedImage
	}
	if req.IsPublished != nil {
		existing.IsPublished = *req.IsPublished
	}

	post, err := h.posts.Update(existing)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	h.recount(post.CategoryID)
	if prevCategory != post.CategoryID {
		h.recount(prevCategory)
	}
	h.invalidate(r)
	httputil.RespondData(w, http.StatusOK, post)
}

// Delete removes a post. Only the owner or an admin may delete.
func (h *Posts) Delete(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromCtx(r.Context())
	id := chi.URLParam(r, "id")

	existing, err := h.posts.FindByID(id)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	if existing == nil {
		httputil.RespondError(w, apperr.NotFound("Post not found"))
		return
	}
	if !authz.CanModify(p, existing.AuthorID) {
		httputil.RespondError(w, apperr.Forbidden("Not authorized to delete this post"))
		return
	}

	if err := h.posts.Delete(id); err != nil {
		httputil.RespondError(w, err)
		return
	}

	// Remove the featured image object if it lives in our bucket.
	if h.storage != nil && existing.FeaturedImage != nil {
		if key, ok := h.storage.ExtractKey(*existing.FeaturedImage); ok {
			if err := h.storage.Delete(r.Context(), key); err != nil {
				slog.Warn("featured image cleanup failed", "key", key, "error", err)
			}
		}
	}

	h.recount(existing.CategoryID)
	h.invalidate(r)
	httputil.RespondData(w, http.StatusOK, struct{}{})
}

// AddComment appends a comment to a post and returns the refreshed
// comment sequence.
func (h *Posts) AddComment(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromCtx(r.Context())

	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.RespondError(w, err)
		return
	}

	comments, err := h.posts.AddComment(chi.URLParam(r, "id"), p.ID, req.Content)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.RespondData(w, http.StatusCreated, comments)
}

// recount refreshes a category's denormalized post count. Failures are
// logged, not surfaced: the next write converges the counter again.
func (h *Posts) recount(categoryID string) {
	if err := h.categories.RecountPosts(categoryID); err != nil {
		slog.Error("category recount failed", "category", categoryID, "error", err)
	}
}

func (h *Posts) invalidate(r *http.Request) {
	if h.listings != nil {
		h.listings.InvalidateAll(r.Context())
	}
}
