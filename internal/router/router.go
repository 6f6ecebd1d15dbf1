// Package router sets up all HTTP routes and middleware chains for
// FerreCMS. It organizes routes into public and admin groups with
// appropriate middleware stacks.
package router

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ferrecms/internal/handlers"
	"ferrecms/internal/middleware"
	"ferrecms/internal/session"
	"ferrecms/web"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(sessionStore *session.Store, admin *handlers.Admin, auth *handlers.Auth, public *handlers.Public) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(sessionStore))

	// Health check — no auth, no CSRF.
	r.Get("/health", healthHandler)

	// Static assets.
	staticFS, _ := fs.Sub(web.StaticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Login attempts and public form submissions are rate limited per IP.
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)
	inquiryLimiter := middleware.NewRateLimiter(5, time.Minute)

	// Admin routes — require authentication and CSRF protection.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.CSRF)

		// Auth pages — accessible without a session.
		r.Get("/login", auth.LoginPage)
		r.With(loginLimiter.Middleware).Post("/login", auth.LoginSubmit)
		r.Post("/logout", auth.Logout)

		// 2FA — requires auth but NOT completed 2FA.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/2fa/setup", auth.TwoFASetupPage)
			r.Post("/2fa/setup", auth.TwoFAVerifySubmit)
			r.Get("/2fa/verify", auth.TwoFAVerifyPage)
			r.Post("/2fa/verify", auth.TwoFAVerifySubmit)
		})

		// Authenticated + 2FA-verified admin area.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)
			r.Use(middleware.RequireAdmin)

			r.Get("/", admin.Dashboard)

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", admin.CategoriesList)
				r.Post("/", admin.CategoryCreate)
				r.Get("/{id}/edit", admin.CategoryEdit)
				r.Post("/{id}", admin.CategoryUpdate)
				r.Post("/{id}/delete", admin.CategoryDelete)
			})

			r.Route("/brands", func(r chi.Router) {
				r.Get("/", admin.BrandsList)
				r.Post("/", admin.BrandCreate)
				r.Post("/{id}/toggle", admin.BrandToggle)
				r.Post("/{id}/delete", admin.BrandDelete)
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", admin.ProductsList)
				r.Get("/new", admin.ProductNew)
				r.Post("/", admin.ProductCreate)
				r.Get("/import", admin.ProductImportForm)
				r.Post("/import", admin.ProductImport)
				r.Get("/{id}/edit", admin.ProductEdit)
				r.Post("/{id}", admin.ProductUpdate)
				r.Post("/{id}/feature", admin.ProductFeature)
				r.Post("/{id}/delete", admin.ProductDelete)
				r.Post("/{id}/images", admin.ProductImagesAdd)
				r.Post("/{id}/images/reorder", admin.ProductImagesReorder)
				r.Post("/{id}/images/{imageID}/delete", admin.ProductImageDelete)
			})

			r.Route("/slides", func(r chi.Router) {
				r.Get("/", admin.SlidesList)
				r.Post("/", admin.SlidesUpload)
				r.Get("/{id}/edit", admin.SlideEdit)
				r.Post("/{id}", admin.SlideUpdate)
				r.Post("/{id}/toggle", admin.SlideToggle)
				r.Post("/{id}/delete", admin.SlideDelete)
			})

			r.Route("/inquiries", func(r chi.Router) {
				r.Get("/", admin.InquiriesList)
				r.Get("/{id}", admin.InquiryDetail)
				r.Post("/{id}/delete", admin.InquiryDelete)
			})

			r.Get("/site", admin.SiteInfoForm)
			r.Post("/site", admin.SiteInfoSave)
			r.Post("/site/inquiries/toggle", admin.SiteInquiriesToggle)
		})
	})

	// Public storefront.
	r.Get("/", public.Home)
	r.Get("/c/{slug}", public.Category)
	r.Get("/p/{id}", public.Product)
	r.Get("/search", public.Search)
	r.Get("/brands", public.Brands)
	r.Get("/marca/{slug}", public.Brand)
	r.Get("/contact", public.Contact)

	r.Group(func(r chi.Router) {
		r.Use(middleware.CSRF)
		r.Get("/consultas", public.InquiryForm)
		r.With(inquiryLimiter.Middleware).Post("/consultas", public.InquirySubmit)
	})

	// JSON API.
	r.Get("/api/products", public.APIProducts)

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
