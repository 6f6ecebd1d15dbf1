// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"ferrecms/internal/cache"
	"ferrecms/internal/catalog"
	"ferrecms/internal/render"
	"ferrecms/internal/storage"
	"ferrecms/internal/store"
)

// Admin groups the admin panel HTTP handlers and their dependencies.
type Admin struct {
	renderer      *render.Renderer
	categoryStore *store.CategoryStore
	brandStore    *store.BrandStore
	productStore  *store.ProductStore
	imageStore    *store.ProductImageStore
	slideStore    *store.SlideStore
	siteStore     *store.SiteInfoStore
	inquiryStore  *store.InquiryStore
	pageCache     *cache.PageCache
	storageClient *storage.Client
}

// NewAdmin creates the admin handler group. storageClient may be nil if
// object storage is not configured.
func NewAdmin(
	renderer *render.Renderer,
	categoryStore *store.CategoryStore,
	brandStore *store.BrandStore,
	productStore *store.ProductStore,
	imageStore *store.ProductImageStore,
	slideStore *store.SlideStore,
	siteStore *store.SiteInfoStore,
	inquiryStore *store.InquiryStore,
	pageCache *cache.PageCache,
	storageClient *storage.Client,
) *Admin {
	return &Admin{
		renderer:      renderer,
		categoryStore: categoryStore,
		brandStore:    brandStore,
		productStore:  productStore,
		imageStore:    imageStore,
		slideStore:    slideStore,
		siteStore:     siteStore,
		inquiryStore:  inquiryStore,
		pageCache:     pageCache,
		storageClient: storageClient,
	}
}

// invalidateCatalog drops the public page cache after a catalog mutation.
func (a *Admin) invalidateCatalog(r *http.Request) {
	if a.pageCache != nil {
		a.pageCache.InvalidateAll(r.Context())
	}
}

// adminData builds the base template data shared by all admin pages.
func (a *Admin) adminData() map[string]any {
	data := map[string]any{}
	if unread, err := a.inquiryStore.UnreadCount(); err == nil && unread > 0 {
		data["unread"] = unread
	}
	return data
}

// Dashboard renders the admin panel with catalog stats.
func (a *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	productCount, _ := a.productStore.Count()
	categories, _ := a.categoryStore.List()
	brands, _ := a.brandStore.List()
	unread, _ := a.inquiryStore.UnreadCount()

	data := a.adminData()
	data["productCount"] = productCount
	data["categoryCount"] = len(categories)
	data["brandCount"] = len(brands)
	data["unread"] = unread

	a.renderer.Page(w, r, "dashboard", &render.PageData{
		Title:   "Panel",
		Section: "dashboard",
		Data:    data,
	})
}

// --- Categories ---

// CategoriesList renders the category management page with the tree
// flattened for display.
func (a *Admin) CategoriesList(w http.ResponseWriter, r *http.Request) {
	tree, err := a.categoryStore.FlatTree()
	if err != nil {
		slog.Error("load category tree failed", "error", err)
	}

	data := a.adminData()
	data["tree"] = tree

	a.renderer.Page(w, r, "categories", &render.PageData{
		Title:   "Categorías",
		Section: "categories",
		Data:    data,
	})
}

// CategoryCreate handles the new category form submission.
func (a *Admin) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("name"))
	if msg := validateCategoryName(name); msg != "" {
		a.categoriesError(w, r, msg)
		return
	}

	var parentID *uuid.UUID
	if id, ok := catalog.ParseUUID(r.FormValue("parent_id")); ok {
		parentID = &id
	}

	if _, err := a.categoryStore.Create(name, parentID); err != nil {
		slog.Error("category create failed", "name", name, "error", err)
		a.categoriesError(w, r, storeErrorMessage(err))
		return
	}

	a.invalidateCatalog(r)
	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

// CategoryEdit renders the category edit form.
func (a *Admin) CategoryEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	cat, err := a.categoryStore.FindByID(id)
	if err != nil || cat == nil {
		http.NotFound(w, r)
		return
	}

	tree, _ := a.categoryStore.FlatTree()

	data := a.adminData()
	data["category"] = cat
	data["tree"] = tree

	a.renderer.Page(w, r, "category_form", &render.PageData{
		Title:   "Editar categoría",
		Section: "categories",
		Data:    data,
	})
}

// CategoryUpdate handles the category edit form submission. Reparenting
// is validated against cycles before anything is written.
func (a *Admin) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if msg := validateCategoryName(name); msg != "" {
		a.categoriesError(w, r, msg)
		return
	}

	var parentID *uuid.UUID
	if pid, ok := catalog.ParseUUID(r.FormValue("parent_id")); ok {
		parentID = &pid
	}

	if _, err := a.categoryStore.Update(id, name, parentID); err != nil {
		slog.Error("category update failed", "id", id, "error", err)
		a.categoriesError(w, r, storeErrorMessage(err))
		return
	}

	a.invalidateCatalog(r)
	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

// CategoryDelete removes a category. Categories with children or with
// products refuse deletion.
func (a *Admin) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := a.categoryStore.Delete(id); err != nil {
		slog.Warn("category delete refused", "id", id, "error", err)
		a.categoriesError(w, r, storeErrorMessage(err))
		return
	}

	a.invalidateCatalog(r)
	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

// categoriesError re-renders the category list with an error flash.
func (a *Admin) categoriesError(w http.ResponseWriter, r *http.Request, msg string) {
	tree, _ := a.categoryStore.FlatTree()

	data := a.adminData()
	data["tree"] = tree

	a.renderer.Page(w, r, "categories", &render.PageData{
		Title:   "Categorías",
		Section: "categories",
		Flashes: []render.Flash{{Type: "error", Message: msg}},
		Data:    data,
	})
}

// --- Brands ---

// BrandsList renders the brand management page.
func (a *Admin) BrandsList(w http.ResponseWriter, r *http.Request) {
	brands, err := a.brandStore.List()
	if err != nil {
		slog.Error("list brands failed", "error", err)
	}

	data := a.adminData()
	data["brands"] = brands

	a.renderer.Page(w, r, "brands", &render.PageData{
		Title:   "Marcas",
		Section: "brands",
		Data:    data,
	})
}

// BrandCreate handles the new brand form submission. New brands start
// visible.
func (a *Admin) BrandCreate(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("name"))
	if msg := validateCategoryName(name); msg != "" {
		a.brandsError(w, r, msg)
		return
	}

	if _, err := a.brandStore.Create(name, true); err != nil {
		slog.Error("brand create failed", "name", name, "error", err)
		a.brandsError(w, r, storeErrorMessage(err))
		return
	}

	a.invalidateCatalog(r)
	http.Redirect(w, r, "/admin/brands", http.StatusSeeOther)
}

// BrandToggle flips a brand's public visibility.
func (a *Admin) BrandToggle(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if _, err := a.brandStore.ToggleVisible(id); err != nil {
		slog.Error("brand toggle failed", "id", id, "error", err)
		a.brandsError(w, r, storeErrorMessage(err))
		return
	}

	a.invalidateCatalog(r)
	http.Redirect(w, r, "/admin/brands", http.StatusSeeOther)
}

// BrandDelete removes a brand. Brands with products refuse deletion.
func (a *Admin) BrandDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := a.brandStore.Delete(id); err != nil {
		slog.Warn("brand delete refused", "id", id, "error", err)
		a.brandsError(w, r, storeErrorMessage(err))
		return
	}

	a.invalidateCatalog(r)
	http.Redirect(w, r, "/admin/brands", http.StatusSeeOther)
}

// brandsError re-renders the brand list with an error flash.
func (a *Admin) brandsError(w http.ResponseWriter, r *http.Request, msg string) {
	brands, _ := a.brandStore.List()

	data := a.adminData()
	data["brands"] = brands

	a.renderer.Page(w, r, "brands", &render.PageData{
		Title:   "Marcas",
		Section: "brands",
		Flashes: []render.Flash{{Type: "error", Message: msg}},
		Data:    data,
	})
}

// storeErrorMessage maps store errors to user-facing Spanish messages.
// Conflicts name the colliding value when the store could derive one, so
// a failed CSV import tells the admin which code or name collided.
func storeErrorMessage(err error) string {
	var conflict *store.ConflictError
	switch {
	case errors.As(err, &conflict):
		if conflict.Value != "" {
			return fmt.Sprintf("Ya existe un registro con el valor %q.", conflict.Value)
		}
		return "Ya existe un registro con ese nombre."
	case store.IsInvalidOp(err):
		return "La operación no es válida: " + err.Error()
	case errors.Is(err, store.ErrNotFound):
		return "El registro no existe."
	default:
		return "Ocurrió un error inesperado."
	}
}
