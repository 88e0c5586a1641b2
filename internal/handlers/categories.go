// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/apperr"
	"inkwell/internal/cache"
	"inkwell/internal/httputil"
	"inkwell/internal/models"
	"inkwell/internal/store"
)

// Categories groups the category CRUD handlers. Reads are public and
// served from the listing cache when warm; writes are admin-only (the
// router enforces that) and invalidate the cache.
type Categories struct {
	categories *store.CategoryStore
	listings   *cache.ListingCache
}

// NewCategories creates a new Categories handler group.
func NewCategories(categories *store.CategoryStore, listings *cache.ListingCache) *Categories {
	return &Categories{categories: categories, listings: listings}
}

// List returns all categories sorted by name.
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	if h.listings != nil {
		if body, ok := h.listings.Get(r.Context(), cache.CategoryListKey()); ok {
			httputil.RespondCached(w, body)
			return
		}
	}

	categories, err := h.categories.List()
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	body, err := httputil.MarshalCount(categories, len(categories))
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	if h.listings != nil {
		h.listings.Set(r.Context(), cache.CategoryListKey(), body)
	}
	httputil.RespondCached(w, body)
}

// Get returns a single category by id or slug.
func (h *Categories) Get(w http.ResponseWriter, r *http.Request) {
	category, err := h.categories.Resolve(chi.URLParam(r, "key"))
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondData(w, http.StatusOK, category)
}

// Create adds a new category.
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.RespondError(w, err)
		return
	}

	category, err := h.categories.Create(&models.Category{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	h.invalidate(r)
	httputil.RespondData(w, http.StatusCreated, category)
}

// Update changes a category's fields; the slug is re-derived from the name.
// Description and color missing from the body keep their stored values.
func (h *Categories) Update(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.RespondError(w, err)
		return
	}

	existing, err := h.categories.FindByID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	if existing == nil {
		httputil.RespondError(w, apperr.NotFound("Category not found"))
		return
	}

	existing.Name = req.Name
	if req.Description != nil {
		existing.Description = req.Description
	}
	if req.Color != "" {
		existing.Color = req.Color
	}

	category, err := h.categories.Update(existing)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	h.invalidate(r)
	httputil.RespondData(w, http.StatusOK, category)
}

// Delete removes a category. Categories that still have posts are
// protected and the delete is rejected.
func (h *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.categories.Delete(chi.URLParam(r, "id")); err != nil {
		httputil.RespondError(w, err)
		return
	}

	h.invalidate(r)
	httputil.RespondData(w, http.StatusOK, struct{}{})
}

func (h *Categories) invalidate(r *http.Request) {
	if h.listings != nil {
		h.listings.InvalidateAll(r.Context())
	}
}
