package store

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
)

func TestPostCreateDerivesSlugAndJoins(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	author := createTestUser(t, db, models.RoleAuthor)
	cat := createTestCategory(t, db)

	title := "My First Post " + suffix()
	p, err := s.Create(&models.Post{
		Title:       title,
		Content:     "Hello, world.",
		Tags:        []string{"Go", "Testing"},
		AuthorID:    author.ID,
		CategoryID:  cat.ID,
		IsPublished: true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM posts WHERE id = $1", p.ID) })

	if !strings.HasPrefix(p.Slug, "my-first-post") {
		t.Errorf("slug: got %q", p.Slug)
	}
	if p.ViewCount != 0 {
		t.Errorf("view_count: got %d, want 0", p.ViewCount)
	}
	if p.Author == nil || p.Author.Name != author.Name {
		t.Errorf("author summary not joined: %+v", p.Author)
	}
	if p.Category == nil || p.Category.Slug != cat.Slug {
		t.Errorf("category summary not joined: %+v", p.Category)
	}
	if len(p.Tags) != 2 {
		t.Errorf("tags: got %v", p.Tags)
	}
}

func TestPostCreateSlugCollision(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	author := createTestUser(t, db, models.RoleAuthor)
	cat := createTestCategory(t, db)

	title := "Collision Title " + suffix()
	first, err := s.Create(&models.Post{Title: title, Content: "a", AuthorID: author.ID, CategoryID: cat.ID})
	if err != nil {
		t.Fatalf("first Create: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM posts WHERE id = $1", first.ID) })

	second, err := s.Create(&models.Post{Title: title, Content: "b", AuthorID: author.ID, CategoryID: cat.ID})
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM posts WHERE id = $1", second.ID) })

	if first.Slug == second.Slug {
		t.Errorf("slug collision not broken: both %q", first.Slug)
	}
	if !strings.HasPrefix(second.Slug, first.Slug) {
		t.Errorf("second slug %q should extend %q", second.Slug, first.Slug)
	}
}

func TestPostCreateUnknownCategory(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	author := createTestUser(t, db, models.RoleAuthor)

	_, err := s.Create(&models.Post{
		Title:      "Orphan " + suffix(),
		Content:    "x",
		AuthorID:   author.ID,
		CategoryID: "ffffffffffffffffffffffff",
	})
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Status != http.StatusBadRequest {
		t.Errorf("expected validation error for unknown category, got %v", err)
	}
}

func TestPostResolveDualKey(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	author := createTestUser(t, db, models.RoleAuthor)
	cat := createTestCategory(t, db)
	p := createTestPost(t, db, author.ID, cat.ID, true)

	byID, err := s.Resolve(p.ID)
	if err != nil {
		t.Fatalf("Resolve by id: %v", err)
	}
	if byID.ID != p.ID {
		t.Errorf("resolve by id returned %s", byID.ID)
	}
	if byID.Comments == nil {
		t.Error("comments not attached on resolve")
	}

	bySlug, err := s.Resolve(p.Slug)
	if err != nil {
		t.Fatalf("Resolve by slug: %v", err)
	}
	if bySlug.ID != p.ID {
		t.Errorf("resolve by slug returned %s", bySlug.ID)
	}

	var appErr *apperr.Error
	if _, err := s.Resolve("ffffffffffffffffffffffff"); !errors.As(err, &appErr) || appErr.Status != http.StatusNotFound {
		t.Errorf("missing id: expected NotFound, got %v", err)
	}
}

func TestPostListPagination(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	author := createTestUser(t, db, models.RoleAuthor)
	cat := createTestCategory(t, db)

	// 25 published posts with strictly decreasing ages so ordering and
	// page boundaries are deterministic.
	for i := 0; i < 25; i++ {
		p := createTestPost(t, db, author.ID, cat.ID, true)
		if _, err := db.Exec(
			"UPDATE posts SET created_at = NOW() - make_interval(secs => $1) WHERE id = $2",
			25-i, p.ID,
		); err != nil {
			t.Fatalf("space created_at: %v", err)
		}
	}

	published := true
	seen := make(map[string]bool)

	page1, err := s.List(ListOptions{CategoryID: cat.ID, Published: &published, Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("List page 1: %v", err)
	}
	if page1.Count != 10 || page1.Total != 25 || page1.Pages != 3 {
		t.Errorf("page 1: count=%d total=%d pages=%d", page1.Count, page1.Total, page1.Pages)
	}
	for _, p := range page1.Posts {
		seen[p.ID] = true
	}

	page2, err := s.List(ListOptions{CategoryID: cat.ID, Published: &published, Page: 2, Limit: 10})
	if err != nil {
		t.Fatalf("List page 2: %v", err)
	}
	if page2.Count != 10 {
		t.Errorf("page 2 count: got %d, want 10", page2.Count)
	}
	for _, p := range page2.Posts {
		if seen[p.ID] {
			t.Errorf("post %s appears on both page 1 and page 2", p.ID)
		}
		seen[p.ID] = true
	}

	page3, err := s.List(ListOptions{CategoryID: cat.ID, Published: &published, Page: 3, Limit: 10})
	if err != nil {
		t.Fatalf("List page 3: %v", err)
	}
	if page3.Count != 5 {
		t.Errorf("page 3 count: got %d, want 5", page3.Count)
	}

	page4, err := s.List(ListOptions{CategoryID: cat.ID, Published: &published, Page: 4, Limit: 10})
	if err != nil {
		t.Fatalf("List page 4: %v", err)
	}
	if page4.Count != 0 || len(page4.Posts) != 0 || page4.Pages != 3 {
		t.Errorf("page 4: count=%d len=%d pages=%d", page4.Count, len(page4.Posts), page4.Pages)
	}

	// Newest first within a page.
	for i := 1; i < len(page1.Posts); i++ {
		if page1.Posts[i-1].CreatedAt.Before(page1.Posts[i].CreatedAt) {
			t.Fatal("page 1 not sorted by created_at descending")
		}
	}
}

func TestPostListDefaultsAndEmpty(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	cat := createTestCategory(t, db)

	// Out-of-range page and limit fall back to defaults.
	page, err := s.List(ListOptions{CategoryID: cat.ID, Page: -3, Limit: 0})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Page != 1 {
		t.Errorf("page: got %d, want 1", page.Page)
	}
	if page.Count != 0 || page.Total != 0 || page.Pages != 0 {
		t.Errorf("empty listing: count=%d total=%d pages=%d", page.Count, page.Total, page.Pages)
	}
	if page.Posts == nil {
		t.Error("empty listing should be an empty slice, not nil")
	}
}

func TestPostListPublishedFilter(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	author := createTestUser(t, db, models.RoleAuthor)
	cat := createTestCategory(t, db)
	createTestPost(t, db, author.ID, cat.ID, true)
	draft := createTestPost(t, db, author.ID, cat.ID, false)

	published := true
	page, err := s.List(ListOptions{CategoryID: cat.ID, Published: &published})
	if err != nil {
		t.Fatalf("List published: %v", err)
	}
	for _, p := range page.Posts {
		if !p.IsPublished {
			t.Errorf("draft %s leaked into published listing", p.ID)
		}
	}

	unpublished := false
	page, err = s.List(ListOptions{CategoryID: cat.ID, Published: &unpublished})
	if err != nil {
		t.Fatalf("List drafts: %v", err)
	}
	if page.Total != 1 || page.Posts[0].ID != draft.ID {
		t.Errorf("draft listing: total=%d", page.Total)
	}

	// No filter returns both.
	page, err = s.List(ListOptions{CategoryID: cat.ID})
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if page.Total != 2 {
		t.Errorf("unfiltered total: got %d, want 2", page.Total)
	}
}

func TestPostUpdateWritesMutableFields(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	author := createTestUser(t, db, models.RoleAuthor)
	cat := createTestCategory(t, db)
	p := createTestPost(t, db, author.ID, cat.ID, false)

	img := "uploads/" + suffix() + ".jpg"
	p.Content = "Updated content."
	p.FeaturedImage = &img
	p.IsPublished = true

	updated, err := s.Update(p)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Content != "Updated content." {
		t.Errorf("content: got %q", updated.Content)
	}
	if updated.FeaturedImage == nil || *updated.FeaturedImage != img {
		t.Errorf("featured_image: got %v", updated.FeaturedImage)
	}
	if !updated.IsPublished {
		t.Error("is_published not updated")
	}
	if updated.Slug != p.Slug {
		t.Errorf("slug changed on update: %q -> %q", p.Slug, updated.Slug)
	}
	if updated.AuthorID != author.ID {
		t.Errorf("author changed on update: %s", updated.AuthorID)
	}
}

func TestPostIncrementViewCount(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	author := createTestUser(t, db, models.RoleAuthor)
	cat := createTestCategory(t, db)
	p := createTestPost(t, db, author.ID, cat.ID, true)

	before := p.ViewCount
	if _, err := s.IncrementViewCount(p.ID); err != nil {
		t.Fatalf("first increment: %v", err)
	}
	after, err := s.IncrementViewCount(p.ID)
	if err != nil {
		t.Fatalf("second increment: %v", err)
	}
	if after != before+2 {
		t.Errorf("view_count: got %d, want %d", after, before+2)
	}

	var appErr *apperr.Error
	if _, err := s.IncrementViewCount("ffffffffffffffffffffffff"); !errors.As(err, &appErr) || appErr.Status != http.StatusNotFound {
		t.Errorf("missing post: expected NotFound, got %v", err)
	}
}

func TestPostSearch(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	author := createTestUser(t, db, models.RoleAuthor)
	cat := createTestCategory(t, db)

	marker := suffix()
	published, err := s.Create(&models.Post{
		Title:       "Kubernetes Deep Dive " + marker,
		Content:     "All about pods.",
		Tags:        []string{"DevOps" + marker},
		AuthorID:    author.ID,
		CategoryID:  cat.ID,
		IsPublished: true,
	})
	if err != nil {
		t.Fatalf("create published: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM posts WHERE id = $1", published.ID) })

	draft, err := s.Create(&models.Post{
		Title:       "Draft Kubernetes Notes " + marker,
		Content:     "Not ready.",
		AuthorID:    author.ID,
		CategoryID:  cat.ID,
		IsPublished: false,
	})
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM posts WHERE id = $1", draft.ID) })

	// Case-differing title match.
	results, err := s.Search("kubernetes deep dive " + marker)
	if err != nil {
		t.Fatalf("Search title: %v", err)
	}
	if len(results) != 1 || results[0].ID != published.ID {
		t.Errorf("title search: got %d results", len(results))
	}

	// Case-differing tag match.
	results, err = s.Search("devops" + marker)
	if err != nil {
		t.Fatalf("Search tag: %v", err)
	}
	if len(results) != 1 || results[0].ID != published.ID {
		t.Errorf("tag search: got %d results", len(results))
	}

	// Drafts never appear even when they match.
	results, err = s.Search("draft kubernetes notes " + marker)
	if err != nil {
		t.Fatalf("Search draft: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("draft leaked into search: %d results", len(results))
	}
}

func TestPostSearchLimit(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	author := createTestUser(t, db, models.RoleAuthor)
	cat := createTestCategory(t, db)

	marker := suffix()
	for i := 0; i < SearchLimit+5; i++ {
		p, err := s.Create(&models.Post{
			Title:       fmt.Sprintf("Bulk %s no %d", marker, i),
			Content:     "bulk",
			AuthorID:    author.ID,
			CategoryID:  cat.ID,
			IsPublished: true,
		})
		if err != nil {
			t.Fatalf("create bulk post %d: %v", i, err)
		}
		t.Cleanup(func() { db.Exec("DELETE FROM posts WHERE id = $1", p.ID) })
	}

	results, err := s.Search("bulk " + marker)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != SearchLimit {
		t.Errorf("search results: got %d, want %d", len(results), SearchLimit)
	}
}

func TestPostDelete(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	author := createTestUser(t, db, models.RoleAuthor)
	cat := createTestCategory(t, db)
	p := createTestPost(t, db, author.ID, cat.ID, true)

	if err := s.Delete(p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var appErr *apperr.Error
	if err := s.Delete(p.ID); !errors.As(err, &appErr) || appErr.Status != http.StatusNotFound {
		t.Errorf("second delete: expected NotFound, got %v", err)
	}
}

func TestPostListByAuthor(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	author := createTestUser(t, db, models.RoleAuthor)
	other := createTestUser(t, db, models.RoleAuthor)
	cat := createTestCategory(t, db)

	createTestPost(t, db, author.ID, cat.ID, true)
	createTestPost(t, db, author.ID, cat.ID, false)
	createTestPost(t, db, other.ID, cat.ID, true)

	posts, err := s.ListByAuthor(author.ID)
	if err != nil {
		t.Fatalf("ListByAuthor: %v", err)
	}
	if len(posts) != 2 {
		t.Errorf("got %d posts, want 2 (drafts included)", len(posts))
	}
	for _, p := range posts {
		if p.AuthorID != author.ID {
			t.Errorf("foreign post %s in author listing", p.ID)
		}
	}
}
