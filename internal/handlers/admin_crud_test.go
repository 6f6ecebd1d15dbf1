// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"

	"ferrecms/internal/cache"
	"ferrecms/internal/catalog"
	"ferrecms/internal/models"
	"ferrecms/internal/store"
)

// --- Pure helpers ---

func TestStoreErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"conflict with value", &store.ConflictError{Value: "MART-01"}, `Ya existe un registro con el valor "MART-01".`},
		{"conflict without value", &store.ConflictError{}, "Ya existe un registro con ese nombre."},
		{"invalid op", &store.InvalidOpError{Reason: "category has subcategories"}, "La operación no es válida: category has subcategories"},
		{"not found", store.ErrNotFound, "El registro no existe."},
		{"anything else", errors.New("boom"), "Ocurrió un error inesperado."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := storeErrorMessage(tt.err); got != tt.want {
				t.Errorf("storeErrorMessage = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGalleryUploadPlan(t *testing.T) {
	mkFiles := func(n int) []*multipart.FileHeader {
		files := make([]*multipart.FileHeader, n)
		for i := range files {
			files[i] = &multipart.FileHeader{Filename: fmt.Sprintf("f%d.jpg", i)}
		}
		return files
	}

	tests := []struct {
		name        string
		current     int
		files       int
		wantUpload  int
		wantSkipped int
	}{
		{"empty gallery", 0, 3, 3, 0},
		{"fits exactly", models.MaxGalleryImages - 3, 3, 3, 0},
		{"partial room", models.MaxGalleryImages - 1, 3, 1, 2},
		{"full gallery", models.MaxGalleryImages, 2, 0, 2},
		{"over-full gallery", models.MaxGalleryImages + 2, 1, 0, 1},
		{"no files", 0, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upload, skipped := galleryUploadPlan(tt.current, mkFiles(tt.files))
			if len(upload) != tt.wantUpload || skipped != tt.wantSkipped {
				t.Errorf("galleryUploadPlan(%d, %d files) = %d uploads, %d skipped; want %d, %d",
					tt.current, tt.files, len(upload), skipped, tt.wantUpload, tt.wantSkipped)
			}
		})
	}
}

// --- Dashboard ---

func TestDashboard_Returns200(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req = req.WithContext(ctxWithSession(req.Context(), adminSession()))

	rec := httptest.NewRecorder()
	env.Admin.Dashboard(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Dashboard: got status %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("Dashboard: Content-Type = %q, want text/html", ct)
	}
}

// --- Categories ---

func postForm(handler http.HandlerFunc, target string, form url.Values, mutate func(*http.Request) *http.Request) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = req.WithContext(ctxWithSession(req.Context(), adminSession()))
	if mutate != nil {
		req = mutate(req)
	}

	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestCategoryCreate_ValidData_Redirects(t *testing.T) {
	env := newTestEnv(t)

	name := "Cat Handler Create " + uuid.New().String()[:8]
	t.Cleanup(func() { cleanCategoriesByName(t, env.DB, name) })

	form := url.Values{}
	form.Set("name", name)

	rec := postForm(env.Admin.CategoryCreate, "/admin/categories", form, nil)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("CategoryCreate: got status %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/admin/categories" {
		t.Errorf("CategoryCreate: redirect to %q, want /admin/categories", loc)
	}
}

func TestCategoryCreate_EmptyName_ReRendersWithError(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{}
	form.Set("name", "   ")

	rec := postForm(env.Admin.CategoryCreate, "/admin/categories", form, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("CategoryCreate empty name: got status %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "El nombre es obligatorio.") {
		t.Error("CategoryCreate empty name: expected the validation message in the response")
	}
}

func TestCategoryUpdate_ReparentIntoOwnSubtree_Rejected(t *testing.T) {
	env := newTestEnv(t)

	suffix := uuid.New().String()[:8]
	parent, err := env.Categories.Create("Cat Cycle Parent "+suffix, nil)
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}
	child, err := env.Categories.Create("Cat Cycle Child "+suffix, &parent.ID)
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	t.Cleanup(func() { cleanCategoriesByID(t, env.DB, parent.ID, child.ID) })

	form := url.Values{}
	form.Set("name", parent.Name)
	form.Set("parent_id", child.ID.String())

	rec := postForm(env.Admin.CategoryUpdate, "/admin/categories/"+parent.ID.String(), form, func(r *http.Request) *http.Request {
		return withChiURLParam(r, "id", parent.ID.String())
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("CategoryUpdate cycle: got status %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "La operación no es válida") {
		t.Error("CategoryUpdate cycle: expected the rejection message in the response")
	}

	// The parent must be untouched.
	reloaded, err := env.Categories.FindByID(parent.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("reload parent: %v", err)
	}
	if reloaded.ParentID != nil {
		t.Error("CategoryUpdate cycle: parent was reparented despite the rejection")
	}
}

// --- Brands ---

func TestBrandCreate_DuplicateName_ShowsCollidingValue(t *testing.T) {
	env := newTestEnv(t)

	name := "Brand Dup " + uuid.New().String()[:8]
	t.Cleanup(func() { cleanBrandsByName(t, env.DB, name) })

	if _, err := env.Brands.Create(name, true); err != nil {
		t.Fatalf("create brand: %v", err)
	}

	form := url.Values{}
	form.Set("name", name)

	rec := postForm(env.Admin.BrandCreate, "/admin/brands", form, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("BrandCreate duplicate: got status %d, want %d", rec.Code, http.StatusOK)
	}
	// The error must identify which value collided, not just say "duplicate".
	if !strings.Contains(rec.Body.String(), name) {
		t.Errorf("BrandCreate duplicate: expected the colliding name %q in the response", name)
	}
}

// --- Products ---

func TestProductCreate_ValidData_RedirectsToEdit(t *testing.T) {
	env := newTestEnv(t)

	name := "Prod Handler Create " + uuid.New().String()[:8]
	t.Cleanup(func() { cleanProductsByName(t, env.DB, name) })

	form := url.Values{}
	form.Set("name", name)
	form.Set("price", "1.234,56")
	form.Set("in_stock", "1")

	rec := postForm(env.Admin.ProductCreate, "/admin/products", form, nil)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("ProductCreate: got status %d, want %d", rec.Code, http.StatusSeeOther)
	}
	loc := rec.Header().Get("Location")
	if !strings.HasPrefix(loc, "/admin/products/") || !strings.HasSuffix(loc, "/edit") {
		t.Errorf("ProductCreate: redirect to %q, want the product edit page", loc)
	}
}

func TestProductCreate_BadPrice_ReRendersForm(t *testing.T) {
	env := newTestEnv(t)

	name := "Prod Bad Price " + uuid.New().String()[:8]

	form := url.Values{}
	form.Set("name", name)
	form.Set("price", "abc")

	rec := postForm(env.Admin.ProductCreate, "/admin/products", form, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("ProductCreate bad price: got status %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "El precio no es válido") {
		t.Error("ProductCreate bad price: expected the price validation message")
	}

	// Unlike the public filters, the admin form fails closed: nothing saved.
	products, total, err := env.Products.Search(catalog.Filter{Text: name}, catalog.Pagination{Page: 1, PerPage: catalog.DefaultPageSize})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 0 || len(products) != 0 {
		t.Error("ProductCreate bad price: product was created despite the invalid price")
	}
}

// --- Gallery ---

func TestProductImagesAdd_FullGallery_ReportsSkipped(t *testing.T) {
	env := newTestEnv(t)

	name := "Prod Gallery Full " + uuid.New().String()[:8]
	product, err := env.Products.Create(store.ProductInput{Name: name, InStock: true})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	t.Cleanup(func() { cleanProductsByName(t, env.DB, name) })

	filenames := make([]string, models.MaxGalleryImages)
	for i := range filenames {
		filenames[i] = fmt.Sprintf("https://cdn.test/products/full-%d.jpg", i)
	}
	if added, _, err := env.Images.Append(product.ID, filenames); err != nil || added != models.MaxGalleryImages {
		t.Fatalf("fill gallery: added %d, err %v", added, err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("images", "extra.jpg")
	if err != nil {
		t.Fatalf("multipart: %v", err)
	}
	fw.Write([]byte("jpeg-bytes"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/admin/products/"+product.ID.String()+"/images", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = req.WithContext(ctxWithSession(req.Context(), adminSession()))
	req = withChiURLParam(req, "id", product.ID.String())

	rec := httptest.NewRecorder()
	env.Admin.ProductImagesAdd(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("ProductImagesAdd full gallery: got status %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "Se omitió 1 imagen") {
		t.Error("ProductImagesAdd full gallery: expected the skip report in the response")
	}

	images, err := env.Images.ListByProduct(product.ID)
	if err != nil {
		t.Fatalf("list gallery: %v", err)
	}
	if len(images) != models.MaxGalleryImages {
		t.Errorf("gallery has %d entries after over-cap upload, want %d", len(images), models.MaxGalleryImages)
	}
}

// --- Slides ---

func TestSlideUpdate_ChangesOrderAndVisibility(t *testing.T) {
	env := newTestEnv(t)

	filename := "https://cdn.test/slides/edit-" + uuid.New().String()[:8] + ".jpg"
	slide, err := env.Slides.Create(filename, 1, true)
	if err != nil {
		t.Fatalf("create slide: %v", err)
	}
	t.Cleanup(func() { cleanSlides(t, env.DB, filename) })

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("sort_order", "5")
	// No visible field: the checkbox is unchecked.
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/admin/slides/"+slide.ID.String(), &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = req.WithContext(ctxWithSession(req.Context(), adminSession()))
	req = withChiURLParam(req, "id", slide.ID.String())

	rec := httptest.NewRecorder()
	env.Admin.SlideUpdate(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("SlideUpdate: got status %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/admin/slides" {
		t.Errorf("SlideUpdate: redirect to %q, want /admin/slides", loc)
	}

	updated, err := env.Slides.FindByID(slide.ID)
	if err != nil || updated == nil {
		t.Fatalf("reload slide: %v", err)
	}
	if updated.SortOrder != 5 {
		t.Errorf("SortOrder = %d, want 5", updated.SortOrder)
	}
	if updated.Visible {
		t.Error("slide still visible after unchecking the box")
	}
}

func TestSlideUpdate_BadSortOrder_ReRendersForm(t *testing.T) {
	env := newTestEnv(t)

	filename := "https://cdn.test/slides/badorder-" + uuid.New().String()[:8] + ".jpg"
	slide, err := env.Slides.Create(filename, 1, true)
	if err != nil {
		t.Fatalf("create slide: %v", err)
	}
	t.Cleanup(func() { cleanSlides(t, env.DB, filename) })

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("sort_order", "abc")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/admin/slides/"+slide.ID.String(), &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = req.WithContext(ctxWithSession(req.Context(), adminSession()))
	req = withChiURLParam(req, "id", slide.ID.String())

	rec := httptest.NewRecorder()
	env.Admin.SlideUpdate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("SlideUpdate bad order: got status %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "El orden debe ser un número.") {
		t.Error("SlideUpdate bad order: expected the validation message")
	}
}

// --- Page cache ---

func TestCatalogMutationInvalidatesPageCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	key := cache.RequestKey("/", url.Values{})
	env.PageCache.Set(ctx, key, []byte("<html>stale home</html>"))
	if _, ok := env.PageCache.Get(ctx, key); !ok {
		t.Fatal("priming the page cache failed")
	}

	name := "Brand Cache Bust " + uuid.New().String()[:8]
	t.Cleanup(func() { cleanBrandsByName(t, env.DB, name) })

	form := url.Values{}
	form.Set("name", name)
	rec := postForm(env.Admin.BrandCreate, "/admin/brands", form, nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("BrandCreate: got status %d, want %d", rec.Code, http.StatusSeeOther)
	}

	if _, ok := env.PageCache.Get(ctx, key); ok {
		t.Error("page cache still serves the stale page after a catalog mutation")
	}
}
