// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler
// integration tests. Tests are skipped when PostgreSQL or Valkey are
// unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"ferrecms/internal/cache"
	"ferrecms/internal/database"
	"ferrecms/internal/middleware"
	"ferrecms/internal/models"
	"ferrecms/internal/render"
	"ferrecms/internal/session"
	"ferrecms/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "ferrecms")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "ferrecms")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		// Clean up test session and cache keys.
		for _, pattern := range []string{"session:*", "page:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests. Object
// storage and mail stay nil: handlers must degrade without them.
type testEnv struct {
	DB         *sql.DB
	Valkey     *redis.Client
	Renderer   *render.Renderer
	Sessions   *session.Store
	Categories *store.CategoryStore
	Brands     *store.BrandStore
	Products   *store.ProductStore
	Images     *store.ProductImageStore
	Slides     *store.SlideStore
	Site       *store.SiteInfoStore
	Inquiries  *store.InquiryStore
	Users      *store.UserStore
	PageCache  *cache.PageCache
	Admin      *Admin
	Auth       *Auth
	Public     *Public
}

// newTestEnv creates a complete test environment with all handler
// dependencies.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	renderer, err := render.New(true)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	sessions := session.NewStore(vk)
	categories := store.NewCategoryStore(db)
	brands := store.NewBrandStore(db)
	products := store.NewProductStore(db)
	images := store.NewProductImageStore(db)
	slides := store.NewSlideStore(db)
	site := store.NewSiteInfoStore(db)
	inquiries := store.NewInquiryStore(db)
	users := store.NewUserStore(db)
	pageCache := cache.NewPageCache(vk, 1*time.Minute)

	admin := NewAdmin(renderer, categories, brands, products, images, slides, site, inquiries, pageCache, nil)
	auth := NewAuth(renderer, sessions, users)
	public := NewPublic(renderer, categories, brands, products, images, slides, site, inquiries, pageCache, nil, nil)

	return &testEnv{
		DB:         db,
		Valkey:     vk,
		Renderer:   renderer,
		Sessions:   sessions,
		Categories: categories,
		Brands:     brands,
		Products:   products,
		Images:     images,
		Slides:     slides,
		Site:       site,
		Inquiries:  inquiries,
		Users:      users,
		PageCache:  pageCache,
		Admin:      admin,
		Auth:       auth,
		Public:     public,
	}
}

// adminSession returns session data for a fully authenticated admin.
func adminSession() *session.Data {
	return &session.Data{
		UserID:    uuid.New(),
		Username:  "admin-test",
		IsAdmin:   true,
		TwoFADone: true,
		CreatedAt: time.Now(),
	}
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// ensureSiteInfo creates the single site_info record when absent and
// returns the current one.
func ensureSiteInfo(t *testing.T, env *testEnv) *models.SiteInfo {
	t.Helper()

	site, err := env.Site.Get()
	if err != nil {
		t.Fatalf("site Get: %v", err)
	}
	if site != nil {
		return site
	}
	site, err = env.Site.Upsert(&models.SiteInfo{StoreName: "Ferretería Test"})
	if err != nil {
		t.Fatalf("site Upsert: %v", err)
	}
	return site
}

// setInquiriesEnabled forces the inquiry feature flag to a known state.
func setInquiriesEnabled(t *testing.T, env *testEnv, enabled bool) {
	t.Helper()

	ensureSiteInfo(t, env)
	if _, err := env.DB.Exec(`UPDATE site_info SET inquiries_enabled = $1`, enabled); err != nil {
		t.Fatalf("set inquiries_enabled: %v", err)
	}
}

// cleanCategoriesByID removes test categories, children first.
func cleanCategoriesByID(t *testing.T, db *sql.DB, ids ...uuid.UUID) {
	t.Helper()
	for i := len(ids) - 1; i >= 0; i-- {
		db.Exec(`DELETE FROM categories WHERE id = $1`, ids[i])
	}
}

// cleanProductsByName removes test products by exact name.
func cleanProductsByName(t *testing.T, db *sql.DB, names ...string) {
	t.Helper()
	for _, n := range names {
		db.Exec(`DELETE FROM products WHERE name = $1`, n)
	}
}

// cleanBrandsByName removes test brands by exact name.
func cleanBrandsByName(t *testing.T, db *sql.DB, names ...string) {
	t.Helper()
	for _, n := range names {
		db.Exec(`DELETE FROM brands WHERE name = $1`, n)
	}
}

// cleanCategoriesByName removes test categories by exact name.
func cleanCategoriesByName(t *testing.T, db *sql.DB, names ...string) {
	t.Helper()
	for _, n := range names {
		db.Exec(`DELETE FROM categories WHERE name = $1`, n)
	}
}

// cleanSlides removes test slides by filename.
func cleanSlides(t *testing.T, db *sql.DB, filenames ...string) {
	t.Helper()
	for _, f := range filenames {
		db.Exec(`DELETE FROM slides WHERE filename = $1`, f)
	}
}
