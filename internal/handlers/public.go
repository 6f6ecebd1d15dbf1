// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for FerreCMS. Handlers are
// grouped by concern (public, admin, auth) and receive their dependencies
// through the handler struct.
package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"ferrecms/internal/cache"
	"ferrecms/internal/catalog"
	"ferrecms/internal/mailer"
	"ferrecms/internal/middleware"
	"ferrecms/internal/models"
	"ferrecms/internal/render"
	"ferrecms/internal/storage"
	"ferrecms/internal/store"
)

const (
	homeSlideLimit    = 8
	homeProductLimit  = 8
	homeFeaturedLimit = 4
)

// Public groups the storefront HTTP handlers and their dependencies.
// storageClient and mail may be nil when those services are unconfigured.
type Public struct {
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
	mail          mailer.Client
}

// NewPublic creates the public handler group.
func NewPublic(
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
	mail mailer.Client,
) *Public {
	return &Public{
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
		mail:          mail,
	}
}

// cachedPage serves a public page through the full-page cache. The render
// function is only called on a miss; its output is stored and replayed for
// subsequent requests until the TTL expires or the catalog changes.
func (p *Public) cachedPage(w http.ResponseWriter, r *http.Request, renderPage func(w *bytes.Buffer) error) {
	key := cache.RequestKey(r.URL.Path, r.URL.Query())

	if p.pageCache != nil {
		if html, ok := p.pageCache.Get(r.Context(), key); ok {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write(html)
			return
		}
	}

	var buf bytes.Buffer
	if err := renderPage(&buf); err != nil {
		slog.Error("render page failed", "path", r.URL.Path, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if p.pageCache != nil {
		p.pageCache.Set(r.Context(), key, buf.Bytes())
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// baseData loads the data every public page needs: root categories for the
// nav and the site info record for header and footer.
func (p *Public) baseData() map[string]any {
	data := map[string]any{}
	if roots, err := p.categoryStore.Roots(); err == nil {
		data["categories"] = roots
	}
	if site, err := p.siteStore.Get(); err == nil && site != nil {
		data["site"] = site
	}
	return data
}

// Home renders the storefront homepage: carousel, featured products, and
// the latest arrivals.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	p.cachedPage(w, r, func(buf *bytes.Buffer) error {
		data := p.baseData()

		if slides, err := p.slideStore.ListVisible(homeSlideLimit); err == nil {
			data["slides"] = slides
		}
		if featured, err := p.productStore.ListFeatured(homeFeaturedLimit); err == nil {
			data["featured"] = featured
		}
		latest, err := p.productStore.ListLatest(homeProductLimit)
		if err != nil {
			return err
		}
		data["latest"] = latest

		return p.renderer.Render(buf, r, "home", &render.PageData{
			Title: "Inicio",
			Data:  data,
		})
	})
}

// Category renders a category listing page with its subcategories,
// breadcrumbs, brand/stock/price filters, and paginated products. The
// product scope is the category's whole subtree, so a parent category
// shows the products of its children too.
func (p *Public) Category(w http.ResponseWriter, r *http.Request) {
	categorySlug := chi.URLParam(r, "slug")

	cat, err := p.categoryStore.FindBySlug(categorySlug)
	if err != nil {
		slog.Error("category lookup failed", "slug", categorySlug, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if cat == nil {
		http.NotFound(w, r)
		return
	}

	p.cachedPage(w, r, func(buf *bytes.Buffer) error {
		subtree, err := p.categoryStore.SubtreeIDs(cat.ID)
		if err != nil {
			return err
		}

		filter := catalog.ParseFilter(r.URL.Query())
		filter.CategoryIDs = subtree

		page := catalog.ParsePagination(r.URL.Query())
		products, total, err := p.productStore.Search(filter, page)
		if err != nil {
			return err
		}
		page = page.Paginate(total)

		data := p.baseData()
		data["category"] = cat
		data["products"] = products
		data["page"] = page
		data["filterBrand"] = filter.BrandID
		data["filterStock"] = string(filter.Stock)
		data["priceMin"] = r.URL.Query().Get("pmin")
		data["priceMax"] = r.URL.Query().Get("pmax")

		if crumbs, err := p.categoryStore.Breadcrumbs(cat.ID); err == nil {
			data["crumbs"] = crumbs
		}
		if children, err := p.categoryStore.List(); err == nil {
			var direct []models.Category
			for _, c := range children {
				if c.ParentID != nil && *c.ParentID == cat.ID {
					direct = append(direct, c)
				}
			}
			data["children"] = direct
		}
		if brands, err := p.brandStore.ListByCategoryIDs(subtree); err == nil {
			data["brands"] = brands
		}

		return p.renderer.Render(buf, r, "category", &render.PageData{
			Title: cat.Name,
			Data:  data,
		})
	})
}

// Search renders global free-text search results. A category parameter
// narrows the scope to that category's subtree, like the listing pages.
// Every active filter is echoed back so the form repopulates. Not cached:
// the key space is unbounded.
func (p *Public) Search(w http.ResponseWriter, r *http.Request) {
	filter := catalog.ParseFilter(r.URL.Query())
	page := catalog.ParsePagination(r.URL.Query())

	var searchCat *models.Category
	if catID, ok := catalog.ParseUUID(r.URL.Query().Get("category")); ok {
		if cat, err := p.categoryStore.FindByID(catID); err == nil && cat != nil {
			searchCat = cat
			if subtree, err := p.categoryStore.SubtreeIDs(cat.ID); err == nil {
				filter.CategoryIDs = subtree
			}
		}
	}

	products, total, err := p.productStore.Search(filter, page)
	if err != nil {
		slog.Error("product search failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	page = page.Paginate(total)

	data := p.baseData()
	data["query"] = filter.Text
	data["code"] = filter.SKU
	data["searchCategory"] = searchCat
	data["filterBrand"] = filter.BrandID
	data["filterStock"] = string(filter.Stock)
	data["priceMin"] = r.URL.Query().Get("pmin")
	data["priceMax"] = r.URL.Query().Get("pmax")
	data["products"] = products
	data["page"] = page

	if tree, err := p.categoryStore.FlatTree(); err == nil {
		data["tree"] = tree
	}
	if brands, err := p.brandStore.ListVisible(); err == nil {
		data["filterBrands"] = brands
	}

	p.renderer.Page(w, r, "search", &render.PageData{
		Title: "Búsqueda",
		Data:  data,
	})
}

// Product renders a single product detail page with its gallery and
// category breadcrumbs.
func (p *Public) Product(w http.ResponseWriter, r *http.Request) {
	id, ok := catalog.ParseUUID(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	product, err := p.productStore.FindByID(id)
	if err != nil {
		slog.Error("product lookup failed", "id", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if product == nil {
		http.NotFound(w, r)
		return
	}

	p.cachedPage(w, r, func(buf *bytes.Buffer) error {
		data := p.baseData()
		data["product"] = product

		if images, err := p.imageStore.ListByProduct(product.ID); err == nil {
			data["images"] = images
		}
		if product.CategoryID != nil {
			if crumbs, err := p.categoryStore.Breadcrumbs(*product.CategoryID); err == nil {
				data["crumbs"] = crumbs
			}
		}
		if product.BrandID != nil {
			if brand, err := p.brandStore.FindByID(*product.BrandID); err == nil && brand != nil {
				product.BrandName = &brand.Name
			}
		}

		return p.renderer.Render(buf, r, "product", &render.PageData{
			Title: product.Name,
			Data:  data,
		})
	})
}

// Brands renders the list of visible brands.
func (p *Public) Brands(w http.ResponseWriter, r *http.Request) {
	p.cachedPage(w, r, func(buf *bytes.Buffer) error {
		brands, err := p.brandStore.ListVisible()
		if err != nil {
			return err
		}

		data := p.baseData()
		data["brands"] = brands

		return p.renderer.Render(buf, r, "brands", &render.PageData{
			Title: "Marcas",
			Data:  data,
		})
	})
}

// Brand renders a single brand's paginated products along with the
// categories its products appear in. Hidden brands 404.
func (p *Public) Brand(w http.ResponseWriter, r *http.Request) {
	brandSlug := chi.URLParam(r, "slug")

	brand, err := p.brandStore.FindVisibleBySlug(brandSlug)
	if err != nil {
		slog.Error("brand lookup failed", "slug", brandSlug, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if brand == nil {
		http.NotFound(w, r)
		return
	}

	p.cachedPage(w, r, func(buf *bytes.Buffer) error {
		filter := catalog.Filter{BrandID: &brand.ID}
		page := catalog.ParsePagination(r.URL.Query())

		products, total, err := p.productStore.Search(filter, page)
		if err != nil {
			return err
		}
		page = page.Paginate(total)

		data := p.baseData()
		data["brand"] = brand
		data["products"] = products
		data["page"] = page

		if catIDs, err := p.productStore.CategoryIDsForBrand(brand.ID); err == nil && len(catIDs) > 0 {
			if cats, err := p.categoryStore.FindByIDs(catIDs); err == nil {
				data["brandCategories"] = cats
			}
		}

		return p.renderer.Render(buf, r, "brand", &render.PageData{
			Title: brand.Name,
			Data:  data,
		})
	})
}

// Contact renders the static contact information page.
func (p *Public) Contact(w http.ResponseWriter, r *http.Request) {
	p.cachedPage(w, r, func(buf *bytes.Buffer) error {
		return p.renderer.Render(buf, r, "contact", &render.PageData{
			Title: "Contacto",
			Data:  p.baseData(),
		})
	})
}

// inquiriesOpen reports whether the inquiry form is reachable for this
// request. Logged-in admins can always preview the form, even while the
// feature flag keeps it hidden from visitors.
func (p *Public) inquiriesOpen(r *http.Request) bool {
	site, _ := p.siteStore.Get()
	if site != nil && site.InquiriesEnabled {
		return true
	}
	sess := middleware.SessionFromCtx(r.Context())
	return sess != nil && sess.IsAdmin
}

// InquiryForm renders the public inquiry form. Returns 404 when the
// feature is disabled in site settings.
func (p *Public) InquiryForm(w http.ResponseWriter, r *http.Request) {
	if !p.inquiriesOpen(r) {
		http.NotFound(w, r)
		return
	}

	data := p.baseData()
	p.renderer.Page(w, r, "consultas", &render.PageData{
		Title: "Consultas",
		Data:  data,
	})
}

// InquirySubmit processes an inquiry submission: validates the fields,
// uploads up to three images, persists the record, and sends notification
// mail best-effort. The inquiry is saved even when mail delivery fails.
func (p *Public) InquirySubmit(w http.ResponseWriter, r *http.Request) {
	if !p.inquiriesOpen(r) {
		http.NotFound(w, r)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	phone := strings.TrimSpace(r.FormValue("phone"))
	message := strings.TrimSpace(r.FormValue("message"))

	if msg := validateInquiry(name, email, message); msg != "" {
		data := p.baseData()
		data["formName"] = name
		data["formEmail"] = email
		data["formPhone"] = phone
		data["formMessage"] = message
		p.renderer.Page(w, r, "consultas", &render.PageData{
			Title:   "Consultas",
			Flashes: []render.Flash{{Type: "error", Message: msg}},
			Data:    data,
		})
		return
	}

	images := p.uploadInquiryImages(r)

	inquiry := &models.Inquiry{
		Name:    name,
		Email:   email,
		Message: message,
		Images:  images,
	}
	if phone != "" {
		inquiry.Phone = &phone
	}

	saved, err := p.inquiryStore.Create(inquiry)
	if err != nil {
		slog.Error("inquiry create failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if site, _ := p.siteStore.Get(); site != nil {
		p.notifyInquiry(site, saved)
	}

	data := p.baseData()
	p.renderer.Page(w, r, "consultas", &render.PageData{
		Title:   "Consultas",
		Flashes: []render.Flash{{Type: "success", Message: "Recibimos tu consulta. Te vamos a responder a la brevedad."}},
		Data:    data,
	})
}

// uploadInquiryImages stores up to MaxInquiryImages attachments in object
// storage. Upload failures skip the file rather than failing the inquiry.
func (p *Public) uploadInquiryImages(r *http.Request) []string {
	if p.storageClient == nil || r.MultipartForm == nil {
		return nil
	}

	var urls []string
	for _, fh := range r.MultipartForm.File["images"] {
		if len(urls) >= models.MaxInquiryImages {
			break
		}
		url, err := p.uploadOne(r, fh, storage.FolderInquiries)
		if err != nil {
			slog.Warn("inquiry image upload failed", "file", fh.Filename, "error", err)
			continue
		}
		urls = append(urls, url)
	}
	return urls
}

// uploadOne streams a single multipart file to object storage and returns
// its public URL.
func (p *Public) uploadOne(r *http.Request, fh *multipart.FileHeader, folder string) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	key, err := p.storageClient.Upload(
		r.Context(), folder, fh.Filename,
		fh.Header.Get("Content-Type"), f, fh.Size,
	)
	if err != nil {
		return "", err
	}
	return p.storageClient.FileURL(key), nil
}

// notifyInquiry sends the admin notification and the visitor auto-reply.
// Both are best-effort.
func (p *Public) notifyInquiry(site *models.SiteInfo, inquiry *models.Inquiry) {
	if p.mail == nil || site.Email == nil {
		return
	}

	phone := ""
	if inquiry.Phone != nil {
		phone = *inquiry.Phone
	}
	payload := map[string]any{
		"Name":    inquiry.Name,
		"Email":   inquiry.Email,
		"Phone":   phone,
		"Message": inquiry.Message,
		"Images":  inquiry.Images,
	}

	if _, err := p.mail.Send(mailer.InquiryNotifyTemplate, site.StoreName, *site.Email, payload); err != nil {
		slog.Warn("inquiry notification mail failed", "error", err)
	}
	if _, err := p.mail.Send(mailer.InquiryReplyTemplate, inquiry.Name, inquiry.Email, payload); err != nil {
		slog.Warn("inquiry auto-reply mail failed", "error", err)
	}
}

// APIProducts returns filtered, paginated products as JSON. It accepts the
// same query parameters as the HTML listing pages, plus category for the
// subtree scope.
func (p *Public) APIProducts(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("ids"); raw != "" {
		p.apiProductsByIDs(w, raw)
		return
	}

	filter := catalog.ParseFilter(r.URL.Query())
	page := catalog.ParsePagination(r.URL.Query())

	if catID, ok := catalog.ParseUUID(r.URL.Query().Get("category")); ok {
		subtree, err := p.categoryStore.SubtreeIDs(catID)
		if err == nil {
			filter.CategoryIDs = subtree
		}
	}

	products, total, err := p.productStore.Search(filter, page)
	if err != nil {
		slog.Error("api product search failed", "error", err)
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	page = page.Paginate(total)

	if products == nil {
		products = []models.Product{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"products":    products,
		"total":       total,
		"page":        page.Page,
		"per_page":    page.PerPage,
		"total_pages": page.TotalPages,
	})
}

// apiIDLimit caps how many products one ids request can hydrate.
const apiIDLimit = 30

// apiProductsByIDs serves the ids mode of the products API: a comma
// separated id list, unparseable entries skipped, capped at apiIDLimit.
func (p *Public) apiProductsByIDs(w http.ResponseWriter, raw string) {
	var ids []uuid.UUID
	for _, part := range strings.Split(raw, ",") {
		if id, ok := catalog.ParseUUID(part); ok {
			ids = append(ids, id)
			if len(ids) == apiIDLimit {
				break
			}
		}
	}

	products, err := p.productStore.FindByIDs(ids)
	if err != nil {
		slog.Error("api product lookup failed", "error", err)
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	if products == nil {
		products = []models.Product{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"products": products,
		"total":    len(products),
	})
}

// parseIDParam reads a uuid path parameter, writing a 404 on failure.
func parseIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, ok := catalog.ParseUUID(chi.URLParam(r, name))
	if !ok {
		http.NotFound(w, r)
	}
	return id, ok
}
