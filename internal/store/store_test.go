// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"inkwell/internal/database"
	"inkwell/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "inkwell")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "inkwell")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// suffix returns a short random string for unique test fixture names.
func suffix() string {
	return uuid.NewString()[:8]
}

// createTestUser inserts a user with a unique email and registers cleanup.
func createTestUser(t *testing.T, db *sql.DB, role models.Role) *models.User {
	t.Helper()

	s := NewUserStore(db)
	email := "store-test-" + suffix() + "@example.com"
	u, err := s.Create(email, "secret123", "Store Tester", role)
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM users WHERE id = $1", u.ID) })
	return u
}

// createTestCategory inserts a category with a unique name and registers cleanup.
func createTestCategory(t *testing.T, db *sql.DB) *models.Category {
	t.Helper()

	s := NewCategoryStore(db)
	c, err := s.Create(&models.Category{Name: "Test Category " + suffix()})
	if err != nil {
		t.Fatalf("create test category: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM categories WHERE id = $1", c.ID) })
	return c
}

// createTestPost inserts a post and registers cleanup. Comments cascade.
func createTestPost(t *testing.T, db *sql.DB, authorID, categoryID string, published bool) *models.Post {
	t.Helper()

	s := NewPostStore(db)
	p, err := s.Create(&models.Post{
		Title:       "Store Test Post " + suffix(),
		Content:     "Store test content.",
		Tags:        []string{"testing"},
		AuthorID:    authorID,
		CategoryID:  categoryID,
		IsPublished: published,
	})
	if err != nil {
		t.Fatalf("create test post: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM posts WHERE id = $1", p.ID) })
	return p
}

// livePostCount reads the authoritative relationship count for a category.
func livePostCount(t *testing.T, db *sql.DB, categoryID string) int {
	t.Helper()

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM posts WHERE category_id = $1", categoryID).Scan(&n); err != nil {
		t.Fatalf("live post count: %v", err)
	}
	return n
}

// storedPostCount reads the denormalized counter on the category row.
func storedPostCount(t *testing.T, db *sql.DB, categoryID string) int {
	t.Helper()

	var n int
	if err := db.QueryRow("SELECT post_count FROM categories WHERE id = $1", categoryID).Scan(&n); err != nil {
		t.Fatalf("stored post count: %v", err)
	}
	return n
}
